// Package scielo models SciELO article records and their deduplicated,
// merged form. Records enter from JSONL dumps, get clustered by the
// cluster package, and leave as MergedDocuments consumed by the linker.
package scielo

import (
	"sort"

	"github.com/scielo-analytics/ocametrics/internal/normalize"
)

// Document is one SciELO article record before deduplication.
type Document struct {
	Collection      string            `json:"collection"`
	PIDv2           string            `json:"pid_v2"`
	PublicationYear int               `json:"publication_year"`
	DOI             string            `json:"doi"`
	DOIWithLang     map[string]string `json:"doi_with_lang"`
	Titles          []string          `json:"titles"`
	DocumentType    string            `json:"document_type"`
	JournalTitle    string            `json:"journal_title"`
	JournalISSNs    []string          `json:"journal_issns"`
}

// AllDOIs returns the sorted set of the document's DOIs, main DOI plus all
// language variants, normalized and deduplicated.
func (d *Document) AllDOIs() []string {
	set := make(map[string]bool)

	if doi := normalize.DOI(d.DOI); doi != "" {
		set[doi] = true
	}

	for _, v := range d.DOIWithLang {
		if doi := normalize.DOI(v); doi != "" {
			set[doi] = true
		}
	}

	dois := make([]string, 0, len(set))
	for doi := range set {
		dois = append(dois, doi)
	}
	sort.Strings(dois)

	return dois
}

// NormalizedTitles returns the document's titles in normalized form,
// deduplicated and sorted.
func (d *Document) NormalizedTitles() []string {
	set := make(map[string]bool)
	for _, t := range d.Titles {
		if nt := normalize.Title(t); nt != "" {
			set[nt] = true
		}
	}

	titles := make([]string, 0, len(set))
	for t := range set {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	return titles
}

// NormalizedJournalTitle returns the journal title in normalized form.
func (d *Document) NormalizedJournalTitle() string {
	return normalize.Title(d.JournalTitle)
}

// ISSNSet returns the journal ISSNs as a normalized set.
func (d *Document) ISSNSet() map[string]bool {
	set := make(map[string]bool, len(d.JournalISSNs))
	for _, issn := range d.JournalISSNs {
		if v := normalize.ISSN(issn); v != "" {
			set[v] = true
		}
	}

	return set
}

// Richness counts the document's populated fields. Used to pick the
// representative member of a merge cluster.
func (d *Document) Richness() int {
	richness := 0

	if d.Collection != "" {
		richness++
	}
	if d.PIDv2 != "" {
		richness++
	}
	if d.PublicationYear != 0 {
		richness++
	}
	if d.DOI != "" {
		richness++
	}
	richness += len(d.DOIWithLang)
	richness += len(d.Titles)
	if d.DocumentType != "" {
		richness++
	}
	if d.JournalTitle != "" {
		richness++
	}
	richness += len(d.JournalISSNs)

	return richness
}

// MergedDocument is one logical article synthesized from a merge cluster.
// Identifier fields are unions over the members; citation data is never
// carried here because same-source duplicates describe one physical
// document, not distinct counted works.
type MergedDocument struct {
	Collections     []string          `json:"collection"`
	PIDs            []string          `json:"pid_v2"`
	PublicationYear int               `json:"publication_year"`
	DOI             string            `json:"doi"`
	DOIWithLang     map[string]string `json:"doi_with_lang"`
	Titles          []string          `json:"titles"`
	DocumentType    string            `json:"document_type"`
	JournalTitle    string            `json:"journal_title"`
	JournalISSNs    []string          `json:"journal_issns"`
	MemberCount     int               `json:"member_count"`
}

// AllDOIs returns the sorted set of the merged article's DOIs.
func (m *MergedDocument) AllDOIs() []string {
	set := make(map[string]bool)

	if doi := normalize.DOI(m.DOI); doi != "" {
		set[doi] = true
	}

	for _, v := range m.DOIWithLang {
		if doi := normalize.DOI(v); doi != "" {
			set[doi] = true
		}
	}

	dois := make([]string, 0, len(set))
	for doi := range set {
		dois = append(dois, doi)
	}
	sort.Strings(dois)

	return dois
}

// PrimaryPID returns the first PID of the merged article, or "".
func (m *MergedDocument) PrimaryPID() string {
	for _, pid := range m.PIDs {
		if pid != "" {
			return pid
		}
	}

	return ""
}
