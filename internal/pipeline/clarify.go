package pipeline

import (
	"context"
	"regexp"
	"strings"

	"hotel-faq/internal/entity"
	"hotel-faq/internal/hotel"
)

// ClarifyPlugin asks a targeted follow-up only when the query is
// genuinely under-specified, in a fixed first-match-wins order: a
// restaurant needing disambiguation, a loop guard against re-asking
// something already clarified this conversation, context keywords paired
// with (or missing) a concrete target, and finally the ambiguous-pattern
// table with subject extraction.
type ClarifyPlugin struct{}

// NewClarifyPlugin registers a ClarifyPlugin for ClarificationCheck.
func NewClarifyPlugin(events *EventManager) *ClarifyPlugin {
	p := &ClarifyPlugin{}
	events.Register(p)
	return p
}

func (p *ClarifyPlugin) ActivationEvents() []EventType { return []EventType{ClarificationCheck} }

var koreanParticle = regexp.MustCompile(`(은|는|이|가|을|를|의|도|만|에|로|으로|에서)$`)

var genericWords = map[string]bool{
	"궁금": true, "알려줘": true, "알고싶어요": true, "해줘": true, "문의": true, "이용": true, "정보": true,
}

var specificTargets = []string{
	"체크인", "체크아웃", "조식", "수영장", "피트니스", "스파", "주차",
}

func (p *ClarifyPlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	if rec.RestaurantEntity.Action == entity.ActionClarify {
		rec.NeedsClarification = true
		rec.ClarificationQuestion = rec.RestaurantEntity.Message
		rec.ClarificationOptions = rec.RestaurantEntity.ClarifyOptions
		rec.ClarificationType = "restaurant"
		return next()
	}

	if alreadyClarified(rec) {
		return next()
	}

	for _, entry := range hotel.ContextClarification {
		if !containsAny(rec.NormalizedQuery, entry.TriggerKeyword) {
			continue
		}
		if containsAny(rec.NormalizedQuery, specificTargets) {
			return next()
		}
		if containsAny(rec.NormalizedQuery, entry.DirectTrigger) {
			return next()
		}
		rec.NeedsClarification = true
		rec.ClarificationQuestion = entry.Question
		rec.ClarificationOptions = entry.Options
		rec.ClarificationType = entry.Context
		return next()
	}

	if containsAny(rec.NormalizedQuery, specificTargets) {
		return next()
	}
	if hasTransportAmbiguity(rec.Query) {
		return next()
	}

	for _, pattern := range hotel.AmbiguousPatterns {
		matched := containsAny(rec.NormalizedQuery, pattern.Keywords)
		excluded := containsAny(rec.NormalizedQuery, pattern.Exclude)
		if !matched || excluded {
			continue
		}
		if subject := extractSubjectEntity(rec.NormalizedQuery, pattern.Keywords); subject != "" {
			continue
		}
		rec.NeedsClarification = true
		rec.ClarificationQuestion = pattern.Question
		rec.ClarificationOptions = pattern.Options
		rec.ClarificationType = pattern.Type
		return next()
	}

	return next()
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func alreadyClarified(rec *Record) bool {
	if rec.SessionContext == nil || rec.SessionContext.ClarificationTopic == "" {
		return false
	}
	topic := classifyTopic(rec.NormalizedQuery)
	return topic != "" && topic == rec.SessionContext.ClarificationTopic
}

var transportAmbiguous = regexp.MustCompile(`(셔틀|지하철|버스|기차|택시)`)

func hasTransportAmbiguity(query string) bool {
	return transportAmbiguous.MatchString(query)
}

// extractSubjectEntity strips the matched keywords and trailing Korean
// particles from query, filters generic/action words, and returns the
// longest remaining token of at least 2 characters — evidence the query
// already names a concrete subject and doesn't need clarification.
func extractSubjectEntity(query string, matchedKeywords []string) string {
	remaining := query
	for _, kw := range matchedKeywords {
		remaining = strings.ReplaceAll(remaining, kw, " ")
	}
	var best string
	for _, tok := range strings.Fields(remaining) {
		tok = koreanParticle.ReplaceAllString(tok, "")
		if len([]rune(tok)) < 2 || genericWords[tok] {
			continue
		}
		if len([]rune(tok)) > len([]rune(best)) {
			best = tok
		}
	}
	return best
}
