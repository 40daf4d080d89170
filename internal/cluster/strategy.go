package cluster

import (
	"github.com/scielo-analytics/ocametrics/internal/config"
	"github.com/scielo-analytics/ocametrics/internal/normalize"
	"github.com/scielo-analytics/ocametrics/internal/scielo"
)

// Strategy is one of the closed set of matching strategies. Adding a
// strategy means adding a constant and a predicate arm, not dynamic
// dispatch.
type Strategy int

const (
	StrategyDOI Strategy = iota
	StrategyPID
	StrategyTitle
)

func (s Strategy) String() string {
	switch s {
	case StrategyDOI:
		return "doi"
	case StrategyPID:
		return "pid"
	case StrategyTitle:
		return "title"
	default:
		return "unknown"
	}
}

// ParseStrategies maps config strategy names to Strategy values. Unknown
// names are rejected upstream by config validation.
func ParseStrategies(names []string) []Strategy {
	var out []Strategy
	for _, name := range names {
		switch name {
		case "doi":
			out = append(out, StrategyDOI)
		case "pid":
			out = append(out, StrategyPID)
		case "title":
			out = append(out, StrategyTitle)
		}
	}

	return out
}

// edge is a candidate equivalence between two record indices, a < b.
type edge struct {
	a, b     int
	strategy Strategy
	key      string
	merged   bool
}

// bucketEdges applies a strategy's pairwise predicate inside one key
// bucket and emits the resulting edges. Rejected DOI pairs are emitted
// too (merged=false) so the audit log records the decision.
func bucketEdges(s Strategy, docs []scielo.Document, key string, ids []int, m config.Matching, emit func(edge)) {
	if len(ids) < 2 {
		return
	}

	for x := 0; x < len(ids); x++ {
		for y := x + 1; y < len(ids); y++ {
			i, j := ids[x], ids[y]
			d1, d2 := &docs[i], &docs[j]

			switch s {
			case StrategyDOI:
				merged := bestTitleOverlap(d1, d2) >= m.DOITitleOverlap
				emit(edge{a: i, b: j, strategy: s, key: key, merged: merged})

			case StrategyPID:
				if d1.PublicationYear != d2.PublicationYear {
					continue
				}
				if !sameJournal(d1, d2) {
					continue
				}
				if bestTitleOverlap(d1, d2) < m.PIDTitleOverlap {
					continue
				}
				emit(edge{a: i, b: j, strategy: s, key: key, merged: true})

			case StrategyTitle:
				if d1.PublicationYear != d2.PublicationYear {
					continue
				}
				if !sameJournal(d1, d2) {
					continue
				}
				emit(edge{a: i, b: j, strategy: s, key: key, merged: true})
			}
		}
	}
}

// sameJournal holds when the two records share an ISSN or, lacking that,
// the same non-empty normalized journal title.
func sameJournal(d1, d2 *scielo.Document) bool {
	issns1 := d1.ISSNSet()
	for issn := range d2.ISSNSet() {
		if issns1[issn] {
			return true
		}
	}

	t1 := d1.NormalizedJournalTitle()

	return t1 != "" && t1 == d2.NormalizedJournalTitle()
}

// bestTitleOverlap returns the highest token-set overlap ratio across all
// title pairs of the two records. Records carry one title per language, so
// any matching pair is evidence of the same work.
func bestTitleOverlap(d1, d2 *scielo.Document) float64 {
	best := 0.0
	for _, t1 := range d1.Titles {
		for _, t2 := range d2.Titles {
			if overlap := normalize.TokenOverlap(t1, t2); overlap > best {
				best = overlap
			}
		}
	}

	return best
}
