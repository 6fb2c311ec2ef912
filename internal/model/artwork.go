// Package model defines the core data types for the ArtRogue service.
// In Go, we use structs instead of classes. Struct tags (the `json:"..."` and
// `db:"..."` annotations) tell serialization libraries how to map fields.
package model

import "time"

// Museum identifies one of the supported museum APIs.
// Go doesn't have enums — we use typed constants with explicit values.
type Museum string

const (
	MuseumMET Museum = "met" // Metropolitan Museum of Art
	MuseumCMA Museum = "cma" // Cleveland Museum of Art
)

// ValidMuseum reports whether s names a supported museum.
func ValidMuseum(s string) bool {
	switch Museum(s) {
	case MuseumMET, MuseumCMA:
		return true
	}
	return false
}

// Artwork is the normalized, UI-facing artwork record. Every record has
// exactly these four fields regardless of which museum it came from —
// missing provider data maps to an empty string, never an absent key.
type Artwork struct {
	ImageURL     string `json:"img_url"`
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	CreationDate string `json:"creation_date"`
}

// SearchRecord tracks one search request in the history table.
type SearchRecord struct {
	ID          int64     `db:"id" json:"id"`
	Museum      string    `db:"museum" json:"museum"`
	Query       string    `db:"query" json:"query"`
	ResultCount int       `db:"result_count" json:"result_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ChatCall records one LLM invocation for cost and reliability tracking.
type ChatCall struct {
	ID         int64     `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Provider   string    `db:"provider" json:"provider"`
	Model      string    `db:"model" json:"model"`
	Success    bool      `db:"success" json:"success"`
	DurationMs *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
