// Package pipeline runs a hotel-FAQ question through the nine-node
// grounded-answer state machine: queryRewrite, preprocess,
// clarificationCheck, retrieve, evidenceGate, compose, verify,
// policyFilter, log. Every node reads and writes named fields on a single
// shared Record; no node re-orders or re-enters another node's stage.
package pipeline

import (
	"time"

	"hotel-faq/internal/entity"
	"hotel-faq/internal/grounding"
	"hotel-faq/internal/session"
)

// Turn is one prior exchange in the conversation history.
type Turn struct {
	Role    string
	Content string
}

// Chunk is a retrieved passage plus its provenance and scoring.
type Chunk struct {
	ChunkID    string
	DocID      string
	Hotel      string
	HotelName  string
	PageType   string
	URL        string
	Category   string
	Language   string
	UpdatedAt  string
	ChunkIndex int
	Text       string
	Score      float64

	RerankScore   float64
	RerankRaw     float64
	OriginalScore float64
}

// Record flows through every node of the pipeline. Each field is owned
// by exactly one node; later nodes may read fields they don't own but
// never write them.
type Record struct {
	// set by caller; queryRewrite fills Hotel from history when it is empty
	Query   string
	Hotel   string
	History []Turn

	SessionContext *session.Context
	PipelineStart  time.Time

	// queryRewrite
	RewrittenQuery string
	LLMFailed      bool

	// preprocess
	Language          string
	DetectedHotel     string
	DetectedCategory  string
	NormalizedQuery   string
	IsValidQuery      bool
	RestaurantEntity  entity.Resolution

	// clarificationCheck
	NeedsClarification    bool
	ClarificationQuestion string
	ClarificationOptions  []string
	ClarificationType     string

	// retrieve
	RetrievedChunks     []Chunk
	TopScore            float64
	RerankQuality       string // "ok" | "poor" | "skipped"
	ConversationTopic   string
	EffectiveCategory   string

	// evidenceGate
	EvidencePassed bool
	EvidenceReason string

	// compose
	Answer  string
	Sources []string

	// verify
	VerificationPassed bool
	VerificationIssues []string
	VerifiedAnswer     string
	GroundingResult    *grounding.Result
	QueryIntents       []string

	// policyFilter
	PolicyPassed bool
	PolicyReason string
	FinalAnswer  string

	// log
	NodeElapsed    map[EventType]time.Duration
	TotalElapsed   time.Duration
}

// NewRecord builds a Record ready to enter the pipeline.
func NewRecord(query, hotel string, history []Turn, sessCtx *session.Context) *Record {
	return &Record{
		Query:          query,
		Hotel:          hotel,
		History:        history,
		SessionContext: sessCtx,
		PipelineStart:  time.Now(),
		NodeElapsed:    make(map[EventType]time.Duration),
	}
}
