// Package openalex models OpenAlex journal works and extracts them from
// compressed snapshot dumps into Parquet part files.
package openalex

import (
	"github.com/scielo-analytics/ocametrics/internal/normalize"
)

// Work is one OpenAlex journal-article work as extracted from a snapshot.
// Per-year citation counts are carried as a MAP column keyed by year, since
// the Parquet schema is static while the covered year range is not.
type Work struct {
	WorkID          string  `parquet:"work_id" json:"work_id"`
	PublicationYear int32   `parquet:"publication_year" json:"publication_year"`
	Language        string  `parquet:"language,optional" json:"language,omitempty"`
	DOI             string  `parquet:"doi,optional" json:"doi,omitempty"`
	SourceID        string  `parquet:"source_id,optional" json:"source_id,omitempty"`
	SourceISSNL     string  `parquet:"source_issn_l,optional" json:"source_issn_l,omitempty"`
	Domain          string  `parquet:"domain,optional" json:"domain,omitempty"`
	Field           string  `parquet:"field,optional" json:"field,omitempty"`
	Subfield        string  `parquet:"subfield,optional" json:"subfield,omitempty"`
	Topic           string  `parquet:"topic,optional" json:"topic,omitempty"`
	TopicScore      float64 `parquet:"topic_score,optional" json:"topic_score,omitempty"`

	CitationsTotal  int64           `parquet:"citations_total" json:"citations_total"`
	CitationsByYear map[int32]int64 `parquet:"citations_by_year,optional" json:"citations_by_year,omitempty"`

	CitationsWindow2y int64 `parquet:"citations_window_2y" json:"citations_window_2y"`
	CitationsWindow3y int64 `parquet:"citations_window_3y" json:"citations_window_3y"`
	CitationsWindow5y int64 `parquet:"citations_window_5y" json:"citations_window_5y"`

	HasCitationWindow2y int32 `parquet:"has_citation_window_2y" json:"has_citation_window_2y"`
	HasCitationWindow3y int32 `parquet:"has_citation_window_3y" json:"has_citation_window_3y"`
	HasCitationWindow5y int32 `parquet:"has_citation_window_5y" json:"has_citation_window_5y"`
}

// NormalizedDOI returns the work's DOI in canonical form.
func (w *Work) NormalizedDOI() string {
	return normalize.DOI(w.DOI)
}

// CitationsWindow returns the citation count for a window width.
func (w *Work) CitationsWindow(window int) int64 {
	switch window {
	case 2:
		return w.CitationsWindow2y
	case 3:
		return w.CitationsWindow3y
	case 5:
		return w.CitationsWindow5y
	default:
		return 0
	}
}

// SetCitationsWindow stores a citation count for a window width and keeps
// the has_citation flag consistent.
func (w *Work) SetCitationsWindow(window int, count int64) {
	has := int32(0)
	if count > 0 {
		has = 1
	}

	switch window {
	case 2:
		w.CitationsWindow2y = count
		w.HasCitationWindow2y = has
	case 3:
		w.CitationsWindow3y = count
		w.HasCitationWindow3y = has
	case 5:
		w.CitationsWindow5y = count
		w.HasCitationWindow5y = has
	}
}

// Taxonomy returns the work's category value for a level name, or "".
func (w *Work) Taxonomy(level string) string {
	switch level {
	case "domain":
		return w.Domain
	case "field":
		return w.Field
	case "subfield":
		return w.Subfield
	case "topic":
		return w.Topic
	default:
		return ""
	}
}

// Windows are the citation window widths carried by the extracted schema.
var Windows = []int{2, 3, 5}

// Levels are the taxonomy levels, coarsest first.
var Levels = []string{"domain", "field", "subfield", "topic"}
