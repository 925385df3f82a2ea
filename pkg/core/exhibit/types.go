package exhibit

import (
	"context"
	"errors"
	"log"

	"exhibit_scout/pkg/core/dom"
	"exhibit_scout/pkg/core/filing"
)

var (
	// ErrNoDocumentTable means the index page has no document-format table.
	ErrNoDocumentTable = errors.New("no document table on index page")
	// ErrLinkMissing means a matched row had no usable hyperlink.
	ErrLinkMissing = errors.New("link tag not found")
)

// State is where an exhibit candidate is in its lifecycle.
type State int

const (
	StatePending    State = iota
	StateDirect           // downloaded through a link embedded in the primary document
	StateDeferred         // waiting for the index page reconciliation
	StateReconciled       // downloaded through the index page
	StateUnresolved       // written to the overflow record
)

func (s State) String() string {
	switch s {
	case StateDirect:
		return "direct-link-found"
	case StateDeferred:
		return "deferred"
	case StateReconciled:
		return "reconciled"
	case StateUnresolved:
		return "unresolved"
	default:
		return "pending"
	}
}

// Candidate is one table row from the primary document that mentions a
// keyword.
type Candidate struct {
	RawID string
	// ID is the cleaned identifier; never empty and always contains a digit.
	ID string
	// Description is the normalized (lower-case) text of the matched cell.
	Description string
	// Display is the matched cell text with whitespace collapsed but case kept,
	// used for the manifest.
	Display string
	Keyword string
	IDCell  dom.Node
	Cell    dom.Node
	Link    string
	State   State
}

// Downloader writes a remote file to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// ManifestSink records every exhibit written to disk.
type ManifestSink interface {
	AppendManifestRow(ctx context.Context, row filing.ManifestRow) error
}

// OverflowSink records exhibits that could not be resolved to a file.
type OverflowSink interface {
	AppendOverflow(path, identifier, description string) error
}

// Paths maps a filing and exhibit onto the storage layout.
type Paths interface {
	ExhibitPath(f filing.Filing, identifier string) string
	OverflowPath(f filing.Filing) string
}

// Tally counts what happened to a filing's candidates.
type Tally struct {
	Direct     int `json:"direct"`
	Deferred   int `json:"deferred"`
	Reconciled int `json:"reconciled"`
	Overflowed int `json:"overflowed"`
	Failed     int `json:"failed"`
}

// Add accumulates o into t.
func (t *Tally) Add(o Tally) {
	t.Direct += o.Direct
	t.Deferred += o.Deferred
	t.Reconciled += o.Reconciled
	t.Overflowed += o.Overflowed
	t.Failed += o.Failed
}

func manifestRow(f filing.Filing, id, description string) filing.ManifestRow {
	return filing.ManifestRow{
		Entity:      entityLabel(f),
		Year:        yearString(f),
		FormType:    f.FolderForm(),
		Accession:   f.Accession,
		Identifier:  id,
		Description: description,
	}
}

func entityLabel(f filing.Filing) string {
	if f.EntityName != "" {
		return f.EntityName
	}
	return f.EntityID
}

func yearString(f filing.Filing) string {
	if f.FilingDate.IsZero() {
		return ""
	}
	return f.FilingDate.Format("2006")
}

func loggerOr(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
