// Package roster reads entity metadata files (the EDGAR submissions JSON
// layout) from a directory and turns them into the filings to process.
package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"exhibit_scout/pkg/core/filing"
	"exhibit_scout/pkg/core/utils"
)

// ErrMalformedRoster means a metadata file could not be decoded even after repair.
var ErrMalformedRoster = errors.New("malformed roster file")

// UnknownEntityName is used when an entity has no main metadata file.
const UnknownEntityName = "Unknown Company"

var (
	fileNamePattern = regexp.MustCompile(`^CIK(\d+)(?:-submissions.*)?\.json$`)
	mainFilePattern = regexp.MustCompile(`^CIK\d+\.json$`)
)

// Entity is one filer and the filings selected for processing.
type Entity struct {
	ID      string
	Name    string
	Files   []string
	Filings []filing.Filing
}

// recentFilings holds the parallel arrays of a submissions listing.
type recentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	Form            []string `json:"form"`
	FilingDate      []string `json:"filingDate"`
}

type mainFile struct {
	CIK     flexString `json:"cik"`
	Name    string     `json:"name"`
	Filings struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// Discover groups the metadata files in dir by entity id (leading zeros
// removed). Files that do not look like metadata files are logged and skipped.
func Discover(dir string, logger *log.Logger) (map[string][]string, error) {
	if logger == nil {
		logger = log.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster dir: %w", err)
	}

	groups := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		m := fileNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			logger.Printf("[INFO] %s does not match expected format", e.Name())
			continue
		}
		id := trimCIK(m[1])
		groups[id] = append(groups[id], e.Name())
	}
	return groups, nil
}

// Load reads one entity's files. The main file supplies the entity name and
// its recent filings; submissions files add their top-level arrays. Only
// filings whose form type is in forms are kept, in file order.
func Load(dir string, files []string, forms map[string]bool, logger *log.Logger) (Entity, error) {
	if logger == nil {
		logger = log.Default()
	}
	ent := Entity{Name: UnknownEntityName, Files: append([]string(nil), files...)}

	var listings []recentFilings
	mainSeen := false
	for _, name := range files {
		if mainSeen || !mainFilePattern.MatchString(name) {
			continue
		}
		var mf mainFile
		if err := decodeFile(filepath.Join(dir, name), &mf, logger); err != nil {
			return Entity{}, err
		}
		if mf.Name != "" {
			ent.Name = mf.Name
		}
		ent.ID = trimCIK(string(mf.CIK))
		if ent.ID == "" {
			ent.ID = idFromName(name)
		}
		listings = append(listings, mf.Filings.Recent)
		mainSeen = true
	}

	for _, name := range files {
		if mainFilePattern.MatchString(name) {
			continue
		}
		var rf recentFilings
		if err := decodeFile(filepath.Join(dir, name), &rf, logger); err != nil {
			return Entity{}, err
		}
		if ent.ID == "" {
			ent.ID = idFromName(name)
		}
		listings = append(listings, rf)
	}

	for _, l := range listings {
		ent.Filings = append(ent.Filings, l.filings(ent, forms, logger)...)
	}
	if len(ent.Filings) == 0 {
		logger.Printf("[INFO] No valid filings to process for %s", ent.Name)
	}
	return ent, nil
}

// LoadAll discovers and loads every entity in dir, ordered by entity id.
// Entities whose files cannot be read are logged and left out.
func LoadAll(dir string, forms map[string]bool, logger *log.Logger) ([]Entity, error) {
	if logger == nil {
		logger = log.Default()
	}
	groups, err := Discover(dir, logger)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Entity
	for _, id := range ids {
		ent, err := Load(dir, groups[id], forms, logger)
		if err != nil {
			logger.Printf("[ERROR] Failed to read company files for %s: %v", id, err)
			continue
		}
		out = append(out, ent)
	}
	return out, nil
}

func (r recentFilings) filings(ent Entity, forms map[string]bool, logger *log.Logger) []filing.Filing {
	n := min(len(r.AccessionNumber), len(r.Form), len(r.FilingDate))
	var out []filing.Filing
	for i := 0; i < n; i++ {
		if !forms[r.Form[i]] {
			continue
		}
		f := filing.Filing{
			EntityID:   ent.ID,
			EntityName: ent.Name,
			Accession:  strings.TrimSpace(r.AccessionNumber[i]),
			FormType:   r.Form[i],
		}
		date, err := filing.ParseDate(r.FilingDate[i])
		if err != nil {
			// kept with a zero date; the processor rejects it
			logger.Printf("[WARN] Bad filing date %q for %s: %v", r.FilingDate[i], f.Accession, err)
		} else {
			f.FilingDate = date
		}
		out = append(out, f)
	}
	return out
}

func decodeFile(path string, v interface{}, logger *log.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	lenient, err := utils.SmartParse(data, v)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrMalformedRoster, filepath.Base(path), err)
	}
	if lenient {
		logger.Printf("[WARN] %s was not valid JSON; parsed after repair", filepath.Base(path))
	}
	return nil
}

func trimCIK(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), "0")
}

func idFromName(name string) string {
	if m := fileNamePattern.FindStringSubmatch(name); m != nil {
		return trimCIK(m[1])
	}
	return ""
}
