package pipeline

import (
	"context"

	"hotel-faq/internal/logger"
)

// LogPlugin is the terminal node: it records per-node timing and the
// final decision for observability. It never mutates FinalAnswer.
type LogPlugin struct{}

// NewLogPlugin registers a LogPlugin for Log.
func NewLogPlugin(events *EventManager) *LogPlugin {
	p := &LogPlugin{}
	events.Register(p)
	return p
}

func (p *LogPlugin) ActivationEvents() []EventType { return []EventType{Log} }

func (p *LogPlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	logger.GetLogger(ctx).Infof(
		"pipeline done hotel=%s category=%s valid=%t clarify=%t evidence=%t policy=%s issues=%d elapsed=%s",
		rec.DetectedHotel, rec.DetectedCategory, rec.IsValidQuery, rec.NeedsClarification,
		rec.EvidencePassed, rec.PolicyReason, len(rec.VerificationIssues), rec.TotalElapsed,
	)
	return next()
}
