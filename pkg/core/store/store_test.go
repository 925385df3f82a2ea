package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"exhibit_scout/pkg/core/filing"
)

func testFiling(name, form string) filing.Filing {
	return filing.Filing{
		EntityID:   "320193",
		EntityName: name,
		Accession:  "0001193125-10-043149",
		FormType:   form,
		FilingDate: time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("out")

	tests := []struct {
		name    string
		f       filing.Filing
		wantDir string
	}{
		{"plain", testFiling("Acme", "10-K"), filepath.Join("out", "Acme", "2020", "10-K", "0001193125-10-043149")},
		{"amendment", testFiling("Acme", "S-1/A"), filepath.Join("out", "Acme", "2020", "S-1_A", "0001193125-10-043149")},
		{"slash in name", testFiling("A/B Corp", "8-K"), filepath.Join("out", "A_B Corp", "2020", "8-K", "0001193125-10-043149")},
		{"no name", testFiling("", "10-Q"), filepath.Join("out", "320193", "2020", "10-Q", "0001193125-10-043149")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.AccessionDir(tt.f); got != tt.wantDir {
				t.Errorf("AccessionDir() = %q, want %q", got, tt.wantDir)
			}
			if got, want := l.ExhibitPath(tt.f, "10.1"), filepath.Join(tt.wantDir, "10.1.html"); got != want {
				t.Errorf("ExhibitPath() = %q, want %q", got, want)
			}
			if got, want := l.OverflowPath(tt.f), filepath.Join(tt.wantDir, "extras.txt"); got != want {
				t.Errorf("OverflowPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestCSVManifestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "exhibits_log.csv")
	m := NewCSVManifest(path)
	ctx := context.Background()

	rows := []filing.ManifestRow{
		{Entity: "Acme", Year: "2020", FormType: "10-K", Accession: "a-1", Identifier: "10.1", Description: "License Agreement"},
		{Entity: "Acme, Inc.", Year: "2020", FormType: "S-1_A", Accession: "a-2", Identifier: "10.2", Description: `Lease "Main St"`},
	}
	for _, r := range rows {
		if err := m.AppendManifestRow(ctx, r); err != nil {
			t.Fatalf("AppendManifestRow() error = %v", err)
		}
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("ReadManifest() returned %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestCSVManifestConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exhibits_log.csv")
	m := NewCSVManifest(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row := filing.ManifestRow{Entity: "Acme", Year: "2020", FormType: "10-K", Accession: "a", Identifier: "10.1", Description: "lease"}
			if err := m.AppendManifestRow(context.Background(), row); err != nil {
				t.Errorf("AppendManifestRow() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if len(got) != 20 {
		t.Errorf("ReadManifest() returned %d rows, want 20", len(got))
	}
}

func TestOverflowAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Acme", "2020", "10-K", "acc", "extras.txt")
	o := NewOverflowFile()

	if err := o.AppendOverflow(path, "10.1", "license agreement dated 2020"); err != nil {
		t.Fatalf("AppendOverflow() error = %v", err)
	}
	if err := o.AppendOverflow(path, "10.2", "royalty agreement"); err != nil {
		t.Fatalf("AppendOverflow() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "10.1:license agreement dated 2020\n10.2:royalty agreement\n"
	if string(data) != want {
		t.Errorf("extras.txt = %q, want %q", data, want)
	}
}

type failingSink struct{ err error }

func (s failingSink) AppendManifestRow(context.Context, filing.ManifestRow) error { return s.err }

func TestMultiManifestTriesEverySink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exhibits_log.csv")
	boom := errors.New("boom")
	mm := MultiManifest{failingSink{boom}, NewCSVManifest(path)}

	err := mm.AppendManifestRow(context.Background(), filing.ManifestRow{Entity: "Acme", Identifier: "10.1"})
	if !errors.Is(err, boom) {
		t.Errorf("AppendManifestRow() error = %v, want %v", err, boom)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("csv sink got %d rows, want 1", len(got))
	}
}

func TestManifestRepoWithoutPool(t *testing.T) {
	r := NewManifestRepo(nil, "run")
	if err := r.AppendManifestRow(context.Background(), filing.ManifestRow{}); err == nil {
		t.Error("AppendManifestRow() with nil pool: expected error")
	}
	if err := r.EnsureSchema(context.Background()); err == nil {
		t.Error("EnsureSchema() with nil pool: expected error")
	}
}

func TestOpenPoolDisabled(t *testing.T) {
	pool, err := OpenPool(context.Background(), "")
	if err != nil || pool != nil {
		t.Errorf("OpenPool(\"\") = %v, %v; want nil, nil", pool, err)
	}
}
