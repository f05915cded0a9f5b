package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runEvidenceGate(t *testing.T, rec *Record) {
	t.Helper()
	p := NewEvidenceGatePlugin(NewEventManager(), EvidenceGateConfig{})
	called := false
	err := p.OnEvent(context.Background(), EvidenceGate, rec, func() *NodeError { called = true; return nil })
	require.Nil(t, err)
	require.True(t, called)
}

func TestEvidenceGateRejectsInvalidDomain(t *testing.T) {
	rec := &Record{IsValidQuery: false}
	runEvidenceGate(t, rec)
	assert.False(t, rec.EvidencePassed)
	assert.Equal(t, "invalid-domain", rec.EvidenceReason)
}

func TestEvidenceGateRejectsNoResults(t *testing.T) {
	rec := &Record{IsValidQuery: true}
	runEvidenceGate(t, rec)
	assert.False(t, rec.EvidencePassed)
	assert.Equal(t, "no-results", rec.EvidenceReason)
}

func TestEvidenceGateRejectsPoorRerankQuality(t *testing.T) {
	rec := &Record{
		IsValidQuery:    true,
		RetrievedChunks: []Chunk{{Text: "a", Score: 0.9}},
		RerankQuality:   "poor",
		TopScore:        0.9,
	}
	runEvidenceGate(t, rec)
	assert.False(t, rec.EvidencePassed)
	assert.Equal(t, "reranker-poor-quality", rec.EvidenceReason)
}

func TestEvidenceGateRejectsLowTopScore(t *testing.T) {
	rec := &Record{
		IsValidQuery:    true,
		RetrievedChunks: []Chunk{{Text: "a", Score: 0.1}},
		TopScore:        0.1,
	}
	runEvidenceGate(t, rec)
	assert.False(t, rec.EvidencePassed)
	assert.Contains(t, rec.EvidenceReason, "low-relevance")
}

func TestEvidenceGatePassesWhenAllCriteriaClear(t *testing.T) {
	rec := &Record{
		IsValidQuery:    true,
		RetrievedChunks: []Chunk{{Text: "a", Score: 0.9}},
		TopScore:        0.9,
		RerankQuality:   "ok",
	}
	runEvidenceGate(t, rec)
	assert.True(t, rec.EvidencePassed)
	assert.Equal(t, "ok", rec.EvidenceReason)
}
