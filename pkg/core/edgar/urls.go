package edgar

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the public EDGAR archive host.
	DefaultBaseURL = "https://www.sec.gov"
	// DefaultDomain is the registrable domain whose links count as archive links.
	DefaultDomain = "sec.gov"

	indexPathFormat = "%s/Archives/edgar/data/%s/%s/%s-index.html"
)

// IndexURL builds the filing index page URL:
// {base}/Archives/edgar/data/{cik}/{accessionNoDashes}/{accession}-index.html
func IndexURL(baseURL, cik, accession string) string {
	accessionNoDashes := strings.ReplaceAll(accession, "-", "")
	return fmt.Sprintf(indexPathFormat, strings.TrimRight(baseURL, "/"), cik, accessionNoDashes, accession)
}

// AbsoluteURL resolves href against baseURL, usually the page the link was
// found on. Absolute http(s) links are returned unchanged.
func AbsoluteURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + href
	}
	return base.ResolveReference(ref).String()
}

// UnwrapInlineViewer turns an inline XBRL viewer link ("/ix?doc=/Archives/...")
// into a direct link to the document. Other links are returned unchanged.
func UnwrapInlineViewer(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Path != "/ix" {
		return href
	}
	doc := u.Query().Get("doc")
	if doc == "" {
		return href
	}
	out := url.URL{Scheme: u.Scheme, Host: u.Host, Path: doc}
	return out.String()
}

// IsArchiveHost reports whether href is an absolute link whose host is domain
// or one of its subdomains.
func IsArchiveHost(href, domain string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(domain)
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
