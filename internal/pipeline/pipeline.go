package pipeline

import "context"

// EventType names one of the nine pipeline stages.
type EventType string

const (
	QueryRewrite       EventType = "query_rewrite"
	Preprocess         EventType = "preprocess"
	ClarificationCheck EventType = "clarification_check"
	Retrieve           EventType = "retrieve"
	EvidenceGate       EventType = "evidence_gate"
	AnswerCompose      EventType = "answer_compose"
	Verify             EventType = "verify"
	PolicyFilter       EventType = "policy_filter"
	Log                EventType = "log"
)

// Stages is the fixed node order the orchestrator walks. It is never
// reordered at runtime; the two conditional edges are expressed as
// early-exits inside Run, not as alternate orderings of this slice.
var Stages = []EventType{
	QueryRewrite,
	Preprocess,
	ClarificationCheck,
	Retrieve,
	EvidenceGate,
	AnswerCompose,
	Verify,
	PolicyFilter,
	Log,
}

// Plugin handles one or more pipeline events.
type Plugin interface {
	// OnEvent processes eventType against rec, calling next() to continue
	// the chain or returning early to short-circuit it.
	OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError
	// ActivationEvents lists the event types this plugin handles.
	ActivationEvents() []EventType
}

// EventManager registers plugins per event type and builds a middleware
// chain for each, mirroring the teacher's chat-pipeline event dispatch
// generalized from chat-completion events to these nine query stages.
type EventManager struct {
	listeners map[EventType][]Plugin
	handlers  map[EventType]func(context.Context, EventType, *Record) *NodeError
}

// NewEventManager builds an empty EventManager.
func NewEventManager() *EventManager {
	return &EventManager{
		listeners: make(map[EventType][]Plugin),
		handlers:  make(map[EventType]func(context.Context, EventType, *Record) *NodeError),
	}
}

// Register adds plugin under every event type it activates on.
func (e *EventManager) Register(plugin Plugin) {
	for _, eventType := range plugin.ActivationEvents() {
		e.listeners[eventType] = append(e.listeners[eventType], plugin)
		e.handlers[eventType] = e.buildHandler(e.listeners[eventType])
	}
}

func (e *EventManager) buildHandler(plugins []Plugin) func(context.Context, EventType, *Record) *NodeError {
	next := func(context.Context, EventType, *Record) *NodeError { return nil }
	for i := len(plugins) - 1; i >= 0; i-- {
		current := plugins[i]
		prevNext := next
		next = func(ctx context.Context, eventType EventType, rec *Record) *NodeError {
			return current.OnEvent(ctx, eventType, rec, func() *NodeError {
				return prevNext(ctx, eventType, rec)
			})
		}
	}
	return next
}

// Trigger runs the handler chain registered for eventType, if any.
func (e *EventManager) Trigger(ctx context.Context, eventType EventType, rec *Record) *NodeError {
	if handler, ok := e.handlers[eventType]; ok {
		return handler(ctx, eventType, rec)
	}
	return nil
}

// NodeError is a typed pipeline failure: a human description plus a
// stable error-type identifier a caller can branch on, wrapping the
// underlying cause when there is one.
type NodeError struct {
	Err         error
	Description string
	ErrorType   string
}

func (p *NodeError) Error() string {
	if p.Err != nil {
		return p.Description + ": " + p.Err.Error()
	}
	return p.Description
}

func (p *NodeError) clone() *NodeError {
	return &NodeError{Description: p.Description, ErrorType: p.ErrorType}
}

// WithError attaches err to a copy of p.
func (p *NodeError) WithError(err error) *NodeError {
	pp := p.clone()
	pp.Err = err
	return pp
}

// Predefined node errors, one per failure mode a node can raise.
var (
	ErrRetrieveNothing = &NodeError{Description: "no relevant chunks found", ErrorType: "retrieve_nothing"}
	ErrRetrieveFailed  = &NodeError{Description: "vector search failed", ErrorType: "retrieve_failed"}
	ErrRerankFailed    = &NodeError{Description: "reranking failed", ErrorType: "rerank_failed"}
	ErrComposeFailed   = &NodeError{Description: "answer composition failed", ErrorType: "compose_failed"}
	ErrModelCall       = &NodeError{Description: "model call failed", ErrorType: "model_call_failed"}
)
