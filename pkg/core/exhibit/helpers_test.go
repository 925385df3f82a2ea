package exhibit

import (
	"context"
	"errors"
	"path"
	"testing"
	"time"

	"exhibit_scout/pkg/core/dom"
	"exhibit_scout/pkg/core/filing"
)

type download struct {
	URL  string
	Dest string
}

type fakeDownloader struct {
	calls []download
	fail  map[string]bool
}

func (d *fakeDownloader) Download(_ context.Context, url, dest string) error {
	d.calls = append(d.calls, download{URL: url, Dest: dest})
	if d.fail[url] {
		return errors.New("HTTP 404")
	}
	return nil
}

type fakeManifest struct {
	rows []filing.ManifestRow
}

func (m *fakeManifest) AppendManifestRow(_ context.Context, row filing.ManifestRow) error {
	m.rows = append(m.rows, row)
	return nil
}

type overflowLine struct {
	Path, ID, Description string
}

type fakeOverflow struct {
	lines []overflowLine
}

func (o *fakeOverflow) AppendOverflow(p, id, desc string) error {
	o.lines = append(o.lines, overflowLine{p, id, desc})
	return nil
}

type fakePaths struct{}

func (fakePaths) ExhibitPath(f filing.Filing, id string) string {
	return path.Join(f.EntityName, f.FilingDate.Format("2006"), f.FolderForm(), f.Accession, id+".html")
}

func (fakePaths) OverflowPath(f filing.Filing) string {
	return path.Join(f.EntityName, f.FilingDate.Format("2006"), f.FolderForm(), f.Accession, "extras.txt")
}

func testFiling() filing.Filing {
	return filing.Filing{
		EntityID:   "1011006",
		EntityName: "Acme",
		Accession:  "0001193125-10-043149",
		FormType:   "10-K",
		FilingDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func parse(t *testing.T, s string) dom.Node {
	t.Helper()
	root, err := dom.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return root
}

func textNode(t *testing.T, root dom.Node, data string) dom.Node {
	t.Helper()
	for n := range dom.TextNodes(root) {
		if n.Data() == data {
			return n
		}
	}
	t.Fatalf("text node %q not found", data)
	return nil
}
