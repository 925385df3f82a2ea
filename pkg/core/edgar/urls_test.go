package edgar

import "testing"

func TestIndexURL(t *testing.T) {
	got := IndexURL(DefaultBaseURL, "1011006", "0001193125-10-043149")
	want := "https://www.sec.gov/Archives/edgar/data/1011006/000119312510043149/0001193125-10-043149-index.html"
	if got != want {
		t.Errorf("IndexURL() = %s, want %s", got, want)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/Archives/edgar/data/1/2/ex10.htm", "https://www.sec.gov/Archives/edgar/data/1/2/ex10.htm"},
		{"https://www.sec.gov/Archives/a.htm", "https://www.sec.gov/Archives/a.htm"},
		{"http://example.com/x", "http://example.com/x"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(DefaultBaseURL, tt.href); got != tt.want {
			t.Errorf("AbsoluteURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}

	index := IndexURL(DefaultBaseURL, "1011006", "0001193125-10-043149")
	want := "https://www.sec.gov/Archives/edgar/data/1011006/000119312510043149/ex10-1.htm"
	if got := AbsoluteURL(index, "ex10-1.htm"); got != want {
		t.Errorf("AbsoluteURL(index, ex10-1.htm) = %q, want %q", got, want)
	}
}

func TestUnwrapInlineViewer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/ix?doc=/Archives/edgar/data/1/2/a10k.htm", "/Archives/edgar/data/1/2/a10k.htm"},
		{"/Archives/edgar/data/1/2/a10k.htm", "/Archives/edgar/data/1/2/a10k.htm"},
		{"/ix?foo=bar", "/ix?foo=bar"},
	}
	for _, tt := range tests {
		if got := UnwrapInlineViewer(tt.in); got != tt.want {
			t.Errorf("UnwrapInlineViewer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsArchiveHost(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://www.sec.gov/Archives/a.htm", true},
		{"https://sec.gov/a.htm", true},
		{"https://notsec.gov/a.htm", false},
		{"https://example.com/sec.gov", false},
		{"/Archives/a.htm", false},
	}
	for _, tt := range tests {
		if got := IsArchiveHost(tt.href, DefaultDomain); got != tt.want {
			t.Errorf("IsArchiveHost(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}
