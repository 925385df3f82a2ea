// Package harvest exposes single-filing processing over HTTP.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"exhibit_scout/pkg/core/filing"
	"exhibit_scout/pkg/core/forms"
)

// DefaultHistory is how many results GET /api/filings/recent keeps.
const DefaultHistory = 50

// Processor handles one filing.
type Processor interface {
	Process(ctx context.Context, f filing.Filing) forms.Result
}

// FilingRequest is the body of POST /api/filings.
type FilingRequest struct {
	CIK        string `json:"cik"`
	Name       string `json:"name"`
	Accession  string `json:"accession_number"`
	FormType   string `json:"form_type"`
	FilingDate string `json:"filing_date"`
}

// Filing validates the request and converts it.
func (req FilingRequest) Filing() (filing.Filing, error) {
	f := filing.Filing{
		EntityID:   strings.TrimLeft(strings.TrimSpace(req.CIK), "0"),
		EntityName: strings.TrimSpace(req.Name),
		Accession:  strings.TrimSpace(req.Accession),
		FormType:   strings.TrimSpace(req.FormType),
	}
	if f.EntityID == "" || f.Accession == "" {
		return filing.Filing{}, fmt.Errorf("cik and accession_number are required")
	}
	if _, ok := forms.Lookup(f.FormType); !ok {
		return filing.Filing{}, fmt.Errorf("unsupported form_type %q (supported: %s)", f.FormType, strings.Join(forms.Types(), ", "))
	}
	date, err := filing.ParseDate(req.FilingDate)
	if err != nil {
		return filing.Filing{}, fmt.Errorf("filing_date must be YYYY-MM-DD: %v", err)
	}
	f.FilingDate = date
	return f, nil
}

// Handler holds dependencies for filing endpoints.
type Handler struct {
	Processor Processor
	History   int

	mu     sync.Mutex
	recent []forms.Result
}

// NewHandler creates a new filing handler.
func NewHandler(p Processor) *Handler {
	return &Handler{Processor: p, History: DefaultHistory}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/filings", h.HandleProcessFiling)
	mux.HandleFunc("/api/filings/recent", h.HandleRecent)
}

// HandleProcessFiling handles POST /api/filings.
func (h *Handler) HandleProcessFiling(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FilingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	f, err := req.Filing()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := h.Processor.Process(r.Context(), f)
	h.remember(res)

	w.Header().Set("Content-Type", "application/json")
	if !res.Completed() {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(res)
}

// HandleRecent handles GET /api/filings/recent, newest first.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	out := make([]forms.Result, len(h.recent))
	for i, res := range h.recent {
		out[len(h.recent)-1-i] = res
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *Handler) remember(res forms.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	limit := h.History
	if limit <= 0 {
		limit = DefaultHistory
	}
	h.recent = append(h.recent, res)
	if len(h.recent) > limit {
		h.recent = h.recent[len(h.recent)-limit:]
	}
}
