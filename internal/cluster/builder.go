package cluster

import (
	"bufio"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/scielo-analytics/ocametrics/internal/config"
	"github.com/scielo-analytics/ocametrics/internal/normalize"
	"github.com/scielo-analytics/ocametrics/internal/scielo"
)

// Builder turns a document set into merge clusters and their consolidated
// merged articles.
type Builder struct {
	cfg    config.Matching
	shards int
}

// NewBuilder creates a cluster builder with one shard per CPU.
func NewBuilder(cfg config.Matching) *Builder {
	return &Builder{cfg: cfg, shards: runtime.NumCPU()}
}

// Result is the immutable output of one clustering run.
type Result struct {
	// Docs is the input in canonical order; cluster member indices refer
	// to this slice.
	Docs []scielo.Document

	// Clusters holds the member indices of each cluster, members ascending,
	// clusters ordered by smallest member.
	Clusters [][]int

	// Merged holds one consolidated article per cluster, parallel to
	// Clusters.
	Merged []scielo.MergedDocument

	// Audit records every pairwise strategy decision, including rejected
	// DOI-bucket pairs.
	Audit []AuditEntry
}

// AuditEntry is one pairwise merge decision.
type AuditEntry struct {
	Strategy string `json:"strategy"`
	Key      string `json:"key"`
	PID1     string `json:"pid1"`
	PID2     string `json:"pid2"`
	Merged   bool   `json:"merged"`
}

// Build clusters the documents. The input slice is not mutated; documents
// are first brought into a canonical sort order so the resulting partition
// is identical for any permutation of the input.
func (b *Builder) Build(docs []scielo.Document) (*Result, error) {
	sorted := canonicalOrder(docs)

	idx := BuildIndex(sorted, b.cfg)
	slog.Info("Built key index",
		"documents", len(sorted),
		"doi_keys", len(idx.DOI),
		"pid_keys", len(idx.PID),
		"title_keys", len(idx.Title))

	edges, err := b.collectEdges(sorted, idx)
	if err != nil {
		return nil, err
	}

	// Reduce pass: the union-find keeps the smallest index as root, so the
	// partition does not depend on edge order.
	uf := newUnionFind(len(sorted))
	mergedEdges := 0
	for _, e := range edges {
		if e.merged {
			uf.union(e.a, e.b)
			mergedEdges++
		}
	}

	clusters := uf.components()

	merged := make([]scielo.MergedDocument, 0, len(clusters))
	for _, members := range clusters {
		merged = append(merged, consolidate(sorted, members))
	}

	slog.Info("Clustering complete",
		"documents", len(sorted),
		"edges", len(edges),
		"merged_edges", mergedEdges,
		"clusters", len(clusters))

	return &Result{
		Docs:     sorted,
		Clusters: clusters,
		Merged:   merged,
		Audit:    auditEntries(sorted, edges),
	}, nil
}

// collectEdges fans the key buckets out over hash shards, generates
// candidate edges per shard in parallel and concatenates the shard slices.
// Buckets land in shards by key hash, so any pair of records sharing a key
// is examined in exactly one shard.
func (b *Builder) collectEdges(docs []scielo.Document, idx *Index) ([]edge, error) {
	type bucket struct {
		strategy Strategy
		key      string
		ids      []int
	}

	shards := make([][]bucket, b.shards)
	assign := func(s Strategy, key string, ids []int) {
		h := fnv.New32a()
		h.Write([]byte(s.String()))
		h.Write([]byte(key))
		shard := int(h.Sum32()) % b.shards
		if shard < 0 {
			shard += b.shards
		}
		shards[shard] = append(shards[shard], bucket{strategy: s, key: key, ids: ids})
	}

	for _, s := range ParseStrategies(b.cfg.Strategies) {
		var buckets map[string][]int
		switch s {
		case StrategyDOI:
			buckets = idx.DOI
		case StrategyPID:
			buckets = idx.PID
		case StrategyTitle:
			buckets = idx.Title
		}

		for _, key := range bucketKeys(buckets) {
			assign(s, key, buckets[key])
		}
	}

	var mu sync.Mutex
	var edges []edge

	var g errgroup.Group
	for _, shard := range shards {
		g.Go(func() error {
			var local []edge
			for _, bk := range shard {
				bucketEdges(bk.strategy, docs, bk.key, bk.ids, b.cfg, func(e edge) {
					local = append(local, e)
				})
			}

			mu.Lock()
			edges = append(edges, local...)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("edge generation failed: %w", err)
	}

	return edges, nil
}

// canonicalOrder returns a copy of the documents sorted by their
// source-native identity. Clustering operates on this order, never on
// arrival order.
func canonicalOrder(docs []scielo.Document) []scielo.Document {
	sorted := make([]scielo.Document, len(docs))
	copy(sorted, docs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PIDv2 != sorted[j].PIDv2 {
			return sorted[i].PIDv2 < sorted[j].PIDv2
		}
		if sorted[i].Collection != sorted[j].Collection {
			return sorted[i].Collection < sorted[j].Collection
		}
		return normalize.DOI(sorted[i].DOI) < normalize.DOI(sorted[j].DOI)
	})

	return sorted
}

// consolidate synthesizes the merged article for one cluster. Identifier
// fields are unioned; scalar fields come from the representative, the
// member with the richest metadata (ties broken by lowest index). Citation
// data never appears here.
func consolidate(docs []scielo.Document, members []int) scielo.MergedDocument {
	rep := members[0]
	for _, i := range members[1:] {
		if docs[i].Richness() > docs[rep].Richness() {
			rep = i
		}
	}

	collections := make(map[string]bool)
	pids := make(map[string]bool)
	titles := make(map[string]bool)
	issns := make(map[string]bool)
	doiWithLang := make(map[string]string)

	for _, i := range members {
		d := &docs[i]

		if d.Collection != "" {
			collections[d.Collection] = true
		}
		if d.PIDv2 != "" {
			pids[d.PIDv2] = true
		}
		for _, t := range d.Titles {
			if t != "" {
				titles[t] = true
			}
		}
		for _, issn := range d.JournalISSNs {
			if issn != "" {
				issns[issn] = true
			}
		}
		for lang, doi := range d.DOIWithLang {
			if v := normalize.DOI(doi); v != "" {
				doiWithLang[lang] = v
			}
		}
	}

	repDoc := &docs[rep]

	doi := normalize.DOI(repDoc.DOI)
	if doi == "" {
		for _, i := range members {
			if v := normalize.DOI(docs[i].DOI); v != "" {
				doi = v
				break
			}
		}
	}
	if doi == "" && len(doiWithLang) > 0 {
		variants := make([]string, 0, len(doiWithLang))
		for _, v := range doiWithLang {
			variants = append(variants, v)
		}
		sort.Strings(variants)
		doi = variants[0]
	}

	docType := repDoc.DocumentType
	journalTitle := repDoc.JournalTitle
	for _, i := range members {
		if docType == "" && docs[i].DocumentType != "" {
			docType = docs[i].DocumentType
		}
		if journalTitle == "" && docs[i].JournalTitle != "" {
			journalTitle = docs[i].JournalTitle
		}
	}

	return scielo.MergedDocument{
		Collections:     sortedKeys(collections),
		PIDs:            sortedKeys(pids),
		PublicationYear: repDoc.PublicationYear,
		DOI:             doi,
		DOIWithLang:     doiWithLang,
		Titles:          sortedKeys(titles),
		DocumentType:    docType,
		JournalTitle:    journalTitle,
		JournalISSNs:    sortedKeys(issns),
		MemberCount:     len(members),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// auditEntries converts edges into audit rows in a stable order.
func auditEntries(docs []scielo.Document, edges []edge) []AuditEntry {
	entries := make([]AuditEntry, 0, len(edges))
	for _, e := range edges {
		entries = append(entries, AuditEntry{
			Strategy: e.strategy.String(),
			Key:      e.key,
			PID1:     docs[e.a].PIDv2,
			PID2:     docs[e.b].PIDv2,
			Merged:   e.merged,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Strategy != entries[j].Strategy {
			return entries[i].Strategy < entries[j].Strategy
		}
		if entries[i].Key != entries[j].Key {
			return entries[i].Key < entries[j].Key
		}
		if entries[i].PID1 != entries[j].PID1 {
			return entries[i].PID1 < entries[j].PID1
		}
		return entries[i].PID2 < entries[j].PID2
	})

	return entries
}

// WriteAudit writes the audit log as JSONL.
func WriteAudit(path string, entries []AuditEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audit log %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)

	for i := range entries {
		if err := enc.Encode(&entries[i]); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit log %s: %w", path, err)
	}

	return nil
}
