package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// OverflowFile appends unresolved exhibits to a filing's extras.txt as
// "identifier:description" lines.
type OverflowFile struct {
	mu sync.Mutex
}

// NewOverflowFile creates an overflow writer.
func NewOverflowFile() *OverflowFile {
	return &OverflowFile{}
}

// AppendOverflow appends one line to path, creating the folder if needed.
func (o *OverflowFile) AppendOverflow(path, identifier, description string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create accession folder: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s:%s\n", identifier, description); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}
