// Package record defines the integrated record: the consolidated unit that
// flows from the cross-source linker into the metrics stages.
package record

import (
	"strings"

	"github.com/scielo-analytics/ocametrics/internal/openalex"
)

// unmatchedIDPrefix marks synthetic ids of SciELO articles without any
// OpenAlex match.
const unmatchedIDPrefix = "scielo:"

// Integrated is one logical article after cross-source consolidation. For
// matched articles the Work fields hold sums over all consolidated foreign
// works; unmatched articles carry zero citations and no taxonomy. Produced
// once by the linker, read-only downstream.
type Integrated struct {
	openalex.Work

	IsMerged         bool     `parquet:"is_merged" json:"is_merged"`
	ScieloCollection []string `parquet:"scielo_collection,list,optional" json:"scielo_collection,omitempty"`
	ScieloPIDv2      []string `parquet:"scielo_pid_v2,list,optional" json:"scielo_pid_v2,omitempty"`
	AllWorkIDs       []string `parquet:"all_work_ids,list" json:"all_work_ids"`

	// OAIndividualWorks is a JSON object keyed by foreign work id holding
	// each consolidated work's own citation detail. Kept for auditing the
	// consolidation sums.
	OAIndividualWorks string `parquet:"oa_individual_works,optional" json:"oa_individual_works,omitempty"`
}

// WorkDetail is the per-work entry inside OAIndividualWorks.
type WorkDetail struct {
	Language          string          `json:"language,omitempty"`
	SourceID          string          `json:"source_id,omitempty"`
	CitationsTotal    int64           `json:"citations_total"`
	CitationsWindow2y int64           `json:"citations_window_2y"`
	CitationsWindow3y int64           `json:"citations_window_3y"`
	CitationsWindow5y int64           `json:"citations_window_5y"`
	CitationsByYear   map[int32]int64 `json:"citations_by_year,omitempty"`
}

// UnmatchedID builds the synthetic work id of an unmatched SciELO article.
func UnmatchedID(pid string) string {
	return unmatchedIDPrefix + pid
}

// IsUnmatched reports whether the record is a SciELO article with no
// cross-source match.
func (r *Integrated) IsUnmatched() bool {
	return strings.HasPrefix(r.WorkID, unmatchedIDPrefix)
}

// HasTaxonomy reports whether the record carries a category at the given
// level. Records without taxonomy stay out of category denominators.
func (r *Integrated) HasTaxonomy(level string) bool {
	return r.Taxonomy(level) != ""
}
