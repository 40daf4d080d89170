package metrics

import (
	"sort"

	"github.com/scielo-analytics/ocametrics/internal/percentile"
	"github.com/scielo-analytics/ocametrics/internal/record"
)

// AggregateCategory computes the category snapshot over a partition's
// records. Returns nil for an empty partition: no partition, no snapshot.
func AggregateCategory(recs []record.Integrated, level, catID string, year int, windows []int) *CategorySnapshot {
	if len(recs) == 0 {
		return nil
	}

	snap := &CategorySnapshot{
		Level:           level,
		CategoryID:      catID,
		PublicationYear: year,
		Publications:    len(recs),
		Windows:         make(map[int]WindowAggregate, len(windows)),
	}

	windowTotals := make(map[int]int64, len(windows))
	for i := range recs {
		snap.CitationsTotal += recs[i].CitationsTotal
		for _, w := range windows {
			windowTotals[w] += recs[i].CitationsWindow(w)
		}
	}

	n := float64(snap.Publications)
	snap.CitationsMean = float64(snap.CitationsTotal) / n

	for _, w := range windows {
		snap.Windows[w] = WindowAggregate{
			CitationsTotal: windowTotals[w],
			CitationsMean:  float64(windowTotals[w]) / n,
		}
	}

	return snap
}

// Distribution returns the partition's all-time citation counts, one entry
// per record.
func Distribution(recs []record.Integrated) []int64 {
	out := make([]int64, len(recs))
	for i := range recs {
		out[i] = recs[i].CitationsTotal
	}

	return out
}

// WindowDistribution returns the partition's windowed citation counts.
func WindowDistribution(recs []record.Integrated, window int) []int64 {
	out := make([]int64, len(recs))
	for i := range recs {
		out[i] = recs[i].CitationsWindow(window)
	}

	return out
}

// AggregateJournals groups a category partition's records by journal and
// computes each journal's snapshot, including normalized impact against
// the category snapshot and standing against the percentile thresholds.
// Records without a journal id are left out. Journals come back sorted by
// id.
func AggregateJournals(
	recs []record.Integrated,
	category *CategorySnapshot,
	windows []int,
	thresholds map[int]int64,
	windowThresholds map[int]map[int]int64,
) []JournalSnapshot {
	byJournal := make(map[string][]record.Integrated)
	for i := range recs {
		if recs[i].SourceID == "" {
			continue
		}
		byJournal[recs[i].SourceID] = append(byJournal[recs[i].SourceID], recs[i])
	}

	ids := make([]string, 0, len(byJournal))
	for id := range byJournal {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]JournalSnapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, aggregateJournal(id, byJournal[id], category, windows, thresholds, windowThresholds))
	}

	return out
}

func aggregateJournal(
	id string,
	recs []record.Integrated,
	category *CategorySnapshot,
	windows []int,
	thresholds map[int]int64,
	windowThresholds map[int]map[int]int64,
) JournalSnapshot {
	snap := JournalSnapshot{
		JournalID:    id,
		Publications: len(recs),
		Windows:      make(map[int]JournalWindowAggregate, len(windows)),
		Top:          make(map[int]TopMetrics, len(thresholds)),
		TopWindows:   make(map[int]map[int]TopMetrics, len(thresholds)),
	}

	for i := range recs {
		if snap.JournalISSN == "" && recs[i].SourceISSNL != "" {
			snap.JournalISSN = recs[i].SourceISSNL
		}
		snap.CitationsTotal += recs[i].CitationsTotal
	}

	n := float64(snap.Publications)
	snap.CitationsMean = float64(snap.CitationsTotal) / n
	snap.ImpactNormalized = NormalizedImpact(snap.CitationsMean, category.CitationsMean)

	dist := Distribution(recs)

	for _, w := range windows {
		wDist := WindowDistribution(recs, w)

		var total int64
		cited := 0
		for _, v := range wDist {
			total += v
			if v >= 1 {
				cited++
			}
		}

		mean := float64(total) / n
		snap.Windows[w] = JournalWindowAggregate{
			CitationsTotal:   total,
			CitedWorks:       cited,
			CitationsMean:    mean,
			ImpactNormalized: NormalizedImpact(mean, category.Windows[w].CitationsMean),
		}
	}

	for q, threshold := range thresholds {
		count := percentile.CountAtOrAbove(dist, threshold)
		snap.Top[q] = TopMetrics{
			Threshold:         threshold,
			PublicationsCount: count,
			SharePct:          percentile.SharePct(count, snap.Publications),
		}

		snap.TopWindows[q] = make(map[int]TopMetrics, len(windows))
		for _, w := range windows {
			wThreshold := windowThresholds[q][w]
			wCount := percentile.CountAtOrAbove(WindowDistribution(recs, w), wThreshold)
			snap.TopWindows[q][w] = TopMetrics{
				Threshold:         wThreshold,
				PublicationsCount: wCount,
				SharePct:          percentile.SharePct(wCount, snap.Publications),
			}
		}
	}

	return snap
}
