// Package store persists what the exhibit scout finds: exhibit files laid out
// by entity, year, form type and accession, the global manifest, the
// per-filing overflow record, and an optional Postgres mirror of the manifest.
package store

import (
	"path/filepath"
	"strconv"
	"strings"

	"exhibit_scout/pkg/core/filing"
)

// OverflowFileName holds exhibits that could not be resolved to a download.
const OverflowFileName = "extras.txt"

// Layout maps filings onto {root}/{entity}/{year}/{form}/{accession}/.
type Layout struct {
	Root string
}

// NewLayout creates a layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Root: dir}
}

// AccessionDir is the folder that holds every file of one filing.
func (l Layout) AccessionDir(f filing.Filing) string {
	return filepath.Join(l.Root, entityDir(f), strconv.Itoa(f.Year()), f.FolderForm(), f.Accession)
}

// ExhibitPath is where an exhibit with the given identifier is written.
func (l Layout) ExhibitPath(f filing.Filing, identifier string) string {
	return filepath.Join(l.AccessionDir(f), identifier+".html")
}

// OverflowPath is the filing's extras.txt.
func (l Layout) OverflowPath(f filing.Filing) string {
	return filepath.Join(l.AccessionDir(f), OverflowFileName)
}

func entityDir(f filing.Filing) string {
	name := strings.TrimSpace(f.EntityName)
	if name == "" {
		name = f.EntityID
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
