// Package vectorindex defines the narrow contract the pipeline's retrieve
// node consumes for similarity search, plus a simple in-memory
// implementation usable for tests and small deployments. A production
// deployment is expected to swap in a real vector database behind the
// same interface; index construction and ingestion are out of scope here.
package vectorindex

import (
	"context"
	"sort"
	"strings"
)

// Document is one indexed passage plus the metadata retrieve needs to
// build a pipeline.Chunk from a search hit.
type Document struct {
	ChunkID   string
	DocID     string
	Hotel     string
	HotelName string
	PageType  string
	URL       string
	Category  string
	Language  string
	UpdatedAt string
	ChunkIndex int
	Text      string
}

// Hit is a scored search result.
type Hit struct {
	Document
	Score float64
}

// Filter narrows a search to a hotel and/or category; an empty field
// means "no filter on this dimension".
type Filter struct {
	Hotel    string
	Category string
}

// Index is the capability contract the pipeline consumes.
type Index interface {
	Search(ctx context.Context, query string, filter Filter, topK int) ([]Hit, error)
}

// MemoryIndex is a small, dependency-free Index backed by token-overlap
// scoring — good enough to exercise the pipeline end to end without an
// external vector database.
type MemoryIndex struct {
	docs []Document
}

// NewMemoryIndex builds an index over docs.
func NewMemoryIndex(docs []Document) *MemoryIndex {
	return &MemoryIndex{docs: docs}
}

// Search scores every document whose metadata passes filter by token
// overlap against query, descending.
func (m *MemoryIndex) Search(ctx context.Context, query string, filter Filter, topK int) ([]Hit, error) {
	qTokens := tokenize(query)
	var hits []Hit
	for _, doc := range m.docs {
		if filter.Hotel != "" && doc.Hotel != filter.Hotel {
			continue
		}
		if filter.Category != "" && doc.Category != filter.Category {
			continue
		}
		score := overlapScore(qTokens, tokenize(doc.Text))
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{Document: doc, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func tokenize(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func overlapScore(q, doc map[string]bool) float64 {
	if len(q) == 0 || len(doc) == 0 {
		return 0
	}
	hits := 0
	for tok := range q {
		if doc[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(q))
}
