// Package linker consolidates merged SciELO articles with their OpenAlex
// matches. For each merged article every DOI in its set is looked up in an
// immutable DOI index; all matched works are summed into one integrated
// record, so multilingual versions never inflate publication counts.
package linker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/scielo-analytics/ocametrics/internal/openalex"
	"github.com/scielo-analytics/ocametrics/internal/record"
	"github.com/scielo-analytics/ocametrics/internal/scielo"
)

// Linker links merged articles against an extracted works set.
type Linker struct {
	works []openalex.Work

	// doiIndex maps normalized DOI to indices into works. Built once,
	// never written afterwards, safe for concurrent readers.
	doiIndex map[string][]int
}

// New builds a linker over the extracted works.
func New(works []openalex.Work) *Linker {
	index := make(map[string][]int)
	for i := range works {
		doi := works[i].NormalizedDOI()
		if doi == "" {
			continue
		}
		index[doi] = append(index[doi], i)
	}

	slog.Info("Built DOI index", "works", len(works), "dois", len(index))

	return &Linker{works: works, doiIndex: index}
}

// Result is the output of one linking run.
type Result struct {
	// Integrated holds matched articles plus passthrough works that no
	// article claimed.
	Integrated []record.Integrated

	// Unmatched holds SciELO articles with no DOI match: zero citations,
	// null taxonomy, kept for coverage auditing.
	Unmatched []record.Integrated

	Matched     int
	Passthrough int
}

// assignment is the claim phase output for one merged article: the work
// indices it consolidates, in work-id order.
type assignment struct {
	article *scielo.MergedDocument
	workIdx []int
}

// Link consolidates every merged article. Claiming runs sequentially over
// articles in canonical order so that no foreign work id ever lands under
// two integrated records; the per-article consolidation then fans out in
// parallel.
func (l *Linker) Link(articles []scielo.MergedDocument) (*Result, error) {
	ordered := make([]*scielo.MergedDocument, len(articles))
	for i := range articles {
		ordered[i] = &articles[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].PrimaryPID() != ordered[j].PrimaryPID() {
			return ordered[i].PrimaryPID() < ordered[j].PrimaryPID()
		}
		return ordered[i].DOI < ordered[j].DOI
	})

	claimed := make(map[string]bool, len(l.works))
	assignments := make([]assignment, len(ordered))

	for n, article := range ordered {
		// Dedupe matches by work id: a work listed under several of the
		// article's DOIs is counted once.
		byID := make(map[string]int)
		for _, doi := range article.AllDOIs() {
			for _, idx := range l.doiIndex[doi] {
				id := l.works[idx].WorkID
				if _, ok := byID[id]; !ok {
					byID[id] = idx
				}
			}
		}

		ids := make([]string, 0, len(byID))
		for id := range byID {
			if claimed[id] {
				continue
			}
			claimed[id] = true
			ids = append(ids, id)
		}
		sort.Strings(ids)

		idx := make([]int, 0, len(ids))
		for _, id := range ids {
			idx = append(idx, byID[id])
		}

		assignments[n] = assignment{article: article, workIdx: idx}
	}

	out := make([]record.Integrated, len(assignments))
	unmatchedFlags := make([]bool, len(assignments))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for n := range assignments {
		g.Go(func() error {
			a := assignments[n]
			if len(a.workIdx) == 0 {
				out[n] = unmatchedRecord(a.article)
				unmatchedFlags[n] = true
				return nil
			}

			rec, err := l.consolidate(a)
			if err != nil {
				return err
			}
			out[n] = rec

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for n := range out {
		if unmatchedFlags[n] {
			res.Unmatched = append(res.Unmatched, out[n])
		} else {
			res.Integrated = append(res.Integrated, out[n])
			res.Matched++
		}
	}

	// Works never claimed by any article pass through unchanged, so the
	// integrated table remains a complete consolidation of the source.
	for i := range l.works {
		if claimed[l.works[i].WorkID] {
			continue
		}

		res.Integrated = append(res.Integrated, record.Integrated{
			Work:       l.works[i],
			IsMerged:   false,
			AllWorkIDs: []string{l.works[i].WorkID},
		})
		res.Passthrough++
	}

	slog.Info("Linking complete",
		"articles", len(articles),
		"matched", res.Matched,
		"unmatched", len(res.Unmatched),
		"passthrough", res.Passthrough)

	return res, nil
}

// consolidate sums one article's matched works into a single integrated
// record. The survivor row is the lowest work id; citation fields are the
// sums over all members, taxonomy is the first non-null value per level in
// work-id order.
func (l *Linker) consolidate(a assignment) (record.Integrated, error) {
	survivor := l.works[a.workIdx[0]]

	rec := record.Integrated{
		Work:             survivor,
		ScieloCollection: a.article.Collections,
		ScieloPIDv2:      a.article.PIDs,
		IsMerged:         len(a.workIdx) > 1 || a.article.MemberCount > 1,
	}

	rec.CitationsTotal = 0
	rec.CitationsByYear = nil
	for _, w := range openalex.Windows {
		rec.SetCitationsWindow(w, 0)
	}
	rec.Domain, rec.Field, rec.Subfield, rec.Topic = "", "", "", ""

	details := make(map[string]record.WorkDetail, len(a.workIdx))
	ids := make([]string, 0, len(a.workIdx))

	for _, idx := range a.workIdx {
		w := &l.works[idx]
		ids = append(ids, w.WorkID)

		rec.CitationsTotal += w.CitationsTotal
		for _, win := range openalex.Windows {
			rec.SetCitationsWindow(win, rec.CitationsWindow(win)+w.CitationsWindow(win))
		}

		for year, count := range w.CitationsByYear {
			if rec.CitationsByYear == nil {
				rec.CitationsByYear = make(map[int32]int64)
			}
			rec.CitationsByYear[year] += count
		}

		if rec.Domain == "" {
			rec.Domain = w.Domain
		}
		if rec.Field == "" {
			rec.Field = w.Field
		}
		if rec.Subfield == "" {
			rec.Subfield = w.Subfield
		}
		if rec.Topic == "" {
			rec.Topic = w.Topic
		}

		details[w.WorkID] = record.WorkDetail{
			Language:          w.Language,
			SourceID:          w.SourceID,
			CitationsTotal:    w.CitationsTotal,
			CitationsWindow2y: w.CitationsWindow2y,
			CitationsWindow3y: w.CitationsWindow3y,
			CitationsWindow5y: w.CitationsWindow5y,
			CitationsByYear:   w.CitationsByYear,
		}
	}

	rec.AllWorkIDs = ids

	raw, err := json.Marshal(details)
	if err != nil {
		return record.Integrated{}, fmt.Errorf("failed to encode individual works for %s: %w", survivor.WorkID, err)
	}
	rec.OAIndividualWorks = string(raw)

	return rec, nil
}

// unmatchedRecord builds the audit record for a SciELO article with no
// cross-source match: zero citations, no taxonomy.
func unmatchedRecord(article *scielo.MergedDocument) record.Integrated {
	rec := record.Integrated{
		Work: openalex.Work{
			WorkID:          record.UnmatchedID(article.PrimaryPID()),
			PublicationYear: int32(article.PublicationYear),
			DOI:             article.DOI,
		},
		ScieloCollection: article.Collections,
		ScieloPIDv2:      article.PIDs,
		AllWorkIDs:       []string{},
		IsMerged:         false,
	}

	return rec
}
