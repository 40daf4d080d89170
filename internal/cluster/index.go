package cluster

import (
	"sort"

	"github.com/scielo-analytics/ocametrics/internal/config"
	"github.com/scielo-analytics/ocametrics/internal/normalize"
	"github.com/scielo-analytics/ocametrics/internal/scielo"
)

// Index holds per-strategy key buckets: for each candidate key, the indices
// of all documents carrying it. Building the index is a pure function of
// the document slice.
type Index struct {
	DOI   map[string][]int
	PID   map[string][]int
	Title map[string][]int
}

// BuildIndex extracts candidate keys from every document. DOI keys include
// all language-variant DOIs; title keys are squashed normalized titles with
// generic titles filtered out.
func BuildIndex(docs []scielo.Document, m config.Matching) *Index {
	idx := &Index{
		DOI:   make(map[string][]int),
		PID:   make(map[string][]int),
		Title: make(map[string][]int),
	}

	generic := make(map[string]bool, len(m.GenericTitles))
	for _, t := range m.GenericTitles {
		generic[normalize.SquashTitle(t)] = true
	}

	for i := range docs {
		doc := &docs[i]

		for _, doi := range doc.AllDOIs() {
			idx.DOI[doi] = append(idx.DOI[doi], i)
		}

		if doc.PIDv2 != "" {
			idx.PID[doc.PIDv2] = append(idx.PID[doc.PIDv2], i)
		}

		for _, title := range doc.Titles {
			if !usableTitleKey(title, generic, m.MinTitleTokens) {
				continue
			}
			key := normalize.SquashTitle(title)
			idx.Title[key] = appendUnique(idx.Title[key], i)
		}
	}

	return idx
}

// usableTitleKey rejects generic titles: stoplisted boilerplate and titles
// below the configured token count.
func usableTitleKey(title string, generic map[string]bool, minTokens int) bool {
	squashed := normalize.SquashTitle(title)
	if squashed == "" || generic[squashed] {
		return false
	}

	return len(normalize.TitleTokens(title)) >= minTokens
}

// appendUnique appends id unless it is already the bucket's last entry,
// which covers translated titles squashing to the same key.
func appendUnique(bucket []int, id int) []int {
	if n := len(bucket); n > 0 && bucket[n-1] == id {
		return bucket
	}

	return append(bucket, id)
}

// bucketKeys returns a strategy's bucket keys in sorted order, keeping
// shard assignment and audit output stable across runs.
func bucketKeys(buckets map[string][]int) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
