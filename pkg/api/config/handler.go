package config

import (
	"encoding/json"
	"net/http"

	coreConfig "exhibit_scout/pkg/core/config"
	"exhibit_scout/pkg/core/forms"
)

// Response describes the matching setup the server runs with.
type Response struct {
	Forms              []string `json:"forms"`
	SupportedForms     []string `json:"supported_forms"`
	Keywords           []string `json:"keywords"`
	DedupeDescriptions bool     `json:"dedupe_descriptions"`
	KeepParentheses    bool     `json:"keep_parentheses"`
	ArchiveBaseURL     string   `json:"archive_base_url"`
	RateLimit          float64  `json:"rate_limit"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config   *coreConfig.Config
	Keywords []string
}

// NewHandler creates a new config handler
func NewHandler(cfg *coreConfig.Config, keywords []string) *Handler {
	return &Handler{Config: cfg, Keywords: keywords}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	resp := Response{
		Forms:              h.Config.Matching.Forms,
		SupportedForms:     forms.Types(),
		Keywords:           h.Keywords,
		DedupeDescriptions: h.Config.Matching.DedupeDescriptions,
		KeepParentheses:    h.Config.Matching.KeepParentheses,
		ArchiveBaseURL:     h.Config.Archive.BaseURL,
		RateLimit:          h.Config.Archive.RateLimit,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
