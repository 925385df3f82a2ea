package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultSubmissionsURL serves the submissions JSON the roster is built from.
	DefaultSubmissionsURL = "https://data.sec.gov"
	// TickerMappingURL is the ticker -> CIK mapping file.
	TickerMappingURL = "https://www.sec.gov/files/company_tickers.json"
)

var submissionsFilePattern = regexp.MustCompile(`^CIK\d+-submissions-\d+\.json$`)

// Getter fetches a URL.
type Getter interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Syncer downloads an entity's submissions metadata into a roster directory.
type Syncer struct {
	Getter  Getter
	BaseURL string
	Dir     string
	Logger  *log.Logger
}

// PadCIK zero-pads a CIK to the ten digits used in file names.
func PadCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(strings.TrimSpace(cik), "0"))
}

type submissionsIndex struct {
	Name    string `json:"name"`
	Filings struct {
		Files []struct {
			Name string `json:"name"`
		} `json:"files"`
	} `json:"filings"`
}

// Sync writes CIK##########.json and every CIK##########-submissions-NNN.json
// it lists into the roster directory and returns the file names written.
func (s *Syncer) Sync(ctx context.Context, cik string) ([]string, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = DefaultSubmissionsURL
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create roster dir: %w", err)
	}

	mainName := "CIK" + PadCIK(cik) + ".json"
	body, err := s.Getter.Fetch(ctx, base+"/submissions/"+mainName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", mainName, err)
	}
	var idx submissionsIndex
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedRoster, mainName, err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, mainName), body, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", mainName, err)
	}
	written := []string{mainName}
	logger.Printf("[INFO] Fetched %s (%s)", mainName, idx.Name)

	for _, f := range idx.Filings.Files {
		if !submissionsFilePattern.MatchString(f.Name) {
			logger.Printf("[WARN] Skipping unexpected submissions file %q", f.Name)
			continue
		}
		body, err := s.Getter.Fetch(ctx, base+"/submissions/"+f.Name)
		if err != nil {
			return written, fmt.Errorf("failed to fetch %s: %w", f.Name, err)
		}
		if err := os.WriteFile(filepath.Join(s.Dir, f.Name), body, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		written = append(written, f.Name)
	}
	return written, nil
}

// LookupCIK finds the CIK for a ticker symbol in the archive's mapping file.
// Response structure: { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "..."}, ... }
func LookupCIK(ctx context.Context, g Getter, mappingURL, ticker string) (string, error) {
	if mappingURL == "" {
		mappingURL = TickerMappingURL
	}
	body, err := g.Fetch(ctx, mappingURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch ticker mapping: %w", err)
	}

	var mapping map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &mapping); err != nil {
		return "", fmt.Errorf("failed to parse ticker mapping: %w", err)
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, entry := range mapping {
		if entry.Ticker == ticker {
			return strconv.Itoa(entry.CIK), nil
		}
	}
	return "", fmt.Errorf("ticker %s not found in ticker mapping", ticker)
}
