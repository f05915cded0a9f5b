package pipeline

import (
	"context"
	"time"
)

// Orchestrator drives a Record through the fixed nine-node graph,
// holding no mutable state of its own — concurrent requests each get
// their own Record and share only the registered plugins, which must be
// safe for concurrent use.
type Orchestrator struct {
	events *EventManager
}

// NewOrchestrator wraps an EventManager with every node plugin already
// registered.
func NewOrchestrator(events *EventManager) *Orchestrator {
	return &Orchestrator{events: events}
}

// Run executes the pipeline against rec in place and returns it. The two
// conditional edges are implemented as early returns here rather than as
// alternate node orderings: clarificationCheck can short-circuit straight
// to log, and evidenceGate can skip compose+verify and jump to
// policyFilter.
func (o *Orchestrator) Run(ctx context.Context, rec *Record) *Record {
	o.runStage(ctx, QueryRewrite, rec)
	o.runStage(ctx, Preprocess, rec)
	o.runStage(ctx, ClarificationCheck, rec)

	if rec.NeedsClarification {
		rec.EvidencePassed = true
		rec.FinalAnswer = rec.ClarificationQuestion
		o.runStage(ctx, Log, rec)
		rec.TotalElapsed = time.Since(rec.PipelineStart)
		return rec
	}

	o.runStage(ctx, Retrieve, rec)
	o.runStage(ctx, EvidenceGate, rec)

	if !rec.EvidencePassed {
		o.runStage(ctx, PolicyFilter, rec)
		o.runStage(ctx, Log, rec)
		rec.TotalElapsed = time.Since(rec.PipelineStart)
		return rec
	}

	o.runStage(ctx, AnswerCompose, rec)
	o.runStage(ctx, Verify, rec)
	o.runStage(ctx, PolicyFilter, rec)
	o.runStage(ctx, Log, rec)

	rec.TotalElapsed = time.Since(rec.PipelineStart)
	return rec
}

func (o *Orchestrator) runStage(ctx context.Context, stage EventType, rec *Record) {
	start := time.Now()
	o.events.Trigger(ctx, stage, rec)
	rec.NodeElapsed[stage] = time.Since(start)
}
