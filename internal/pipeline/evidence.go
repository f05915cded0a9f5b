package pipeline

import (
	"context"
	"fmt"
)

// defaultMinChunksRequired is the minimum retrieved-chunk count for
// evidence to be considered sufficient at all, used when Config.MinChunks
// is unset.
const defaultMinChunksRequired = 1

// defaultEvidenceThreshold is the minimum top chunk score evidenceGate
// accepts when Config.EvidenceThreshold is unset.
const defaultEvidenceThreshold = 0.5

// EvidenceGateConfig holds EvidenceGatePlugin's tunables, sourced from
// config.ConversationConfig's evidence_threshold and min_chunks_required.
type EvidenceGateConfig struct {
	EvidenceThreshold float64
	MinChunks         int
}

// EvidenceGatePlugin enforces the "no retrieved evidence, no answer"
// policy: compose only runs when the query is in-domain, enough chunks
// came back, the top score clears threshold, and the reranker didn't
// flag the whole result set as poor quality.
type EvidenceGatePlugin struct {
	evidenceThreshold float64
	minChunks         int
}

// NewEvidenceGatePlugin registers an EvidenceGatePlugin for EvidenceGate. A
// non-positive cfg field falls back to its default.
func NewEvidenceGatePlugin(events *EventManager, cfg EvidenceGateConfig) *EvidenceGatePlugin {
	if cfg.EvidenceThreshold <= 0 {
		cfg.EvidenceThreshold = defaultEvidenceThreshold
	}
	if cfg.MinChunks <= 0 {
		cfg.MinChunks = defaultMinChunksRequired
	}
	p := &EvidenceGatePlugin{evidenceThreshold: cfg.EvidenceThreshold, minChunks: cfg.MinChunks}
	events.Register(p)
	return p
}

func (p *EvidenceGatePlugin) ActivationEvents() []EventType { return []EventType{EvidenceGate} }

func (p *EvidenceGatePlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	switch {
	case !rec.IsValidQuery:
		rec.EvidencePassed = false
		rec.EvidenceReason = "invalid-domain"
	case len(rec.RetrievedChunks) < p.minChunks:
		rec.EvidencePassed = false
		rec.EvidenceReason = "no-results"
	case rec.RerankQuality == "poor":
		rec.EvidencePassed = false
		rec.EvidenceReason = "reranker-poor-quality"
	case rec.TopScore < p.evidenceThreshold:
		rec.EvidencePassed = false
		rec.EvidenceReason = fmt.Sprintf("low-relevance(score=%.2f)", rec.TopScore)
	default:
		rec.EvidencePassed = true
		rec.EvidenceReason = "ok"
	}
	return next()
}
