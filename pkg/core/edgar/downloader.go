package edgar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDownload marks an exhibit that could not be fetched or written.
var ErrDownload = errors.New("download failed")

// Downloader saves archive files to disk.
type Downloader struct {
	client *Client
}

// NewDownloader creates a downloader that fetches through client.
func NewDownloader(client *Client) *Downloader {
	return &Downloader{client: client}
}

// Download fetches url and writes the raw bytes to dest, creating parent
// directories as needed. An existing file is overwritten.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	body, err := d.client.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := os.WriteFile(dest, body, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return nil
}
