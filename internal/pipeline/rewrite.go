package pipeline

import (
	"context"
	"regexp"
	"strings"

	"hotel-faq/internal/hotel"
	"hotel-faq/internal/llm"
	"hotel-faq/internal/logger"
)

// RewritePlugin resolves anaphora and elliptical follow-ups ("there",
// "then", bare "how much?") by folding recent history into a
// self-contained query, the way a human reading only the last turn would.
type RewritePlugin struct {
	llm *llm.Client
}

// NewRewritePlugin registers a RewritePlugin for QueryRewrite.
func NewRewritePlugin(events *EventManager, client *llm.Client) *RewritePlugin {
	p := &RewritePlugin{llm: client}
	events.Register(p)
	return p
}

func (p *RewritePlugin) ActivationEvents() []EventType { return []EventType{QueryRewrite} }

var contextReferencePattern = regexp.MustCompile(`(거기|거기서|그거|그것|그때|저기|이거|이것|거긴|그쪽)`)
var bareInterrogativePattern = regexp.MustCompile(`^(몇\s*시|얼마|어디|언제|어떻게)`)

var rewritePrefixPattern = regexp.MustCompile(`^(rewritten|재작성|question|질문)\s*[:：]\s*`)

func (p *RewritePlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	rec.RewrittenQuery = rec.Query

	if len(rec.History) == 0 || isSelfComplete(rec.Query) {
		return next()
	}

	if !contextReferencePattern.MatchString(rec.Query) && !bareInterrogativePattern.MatchString(rec.Query) && len([]rune(rec.Query)) > 8 {
		return next()
	}

	prevSubject, prevHotel := extractPriorSubject(rec.History)

	if rewritten, ok := ruleBasedRewrite(rec.Query, prevSubject); ok {
		rec.RewrittenQuery = rewritten
		if prevHotel != "" && rec.Hotel == "" {
			rec.Hotel = prevHotel
		}
		return next()
	}

	if !topicPresentInRecentHistory(rec.Query, rec.History) {
		return next()
	}
	if selfCompleteOnOwnTopic(rec.Query) {
		return next()
	}

	rewritten, err := p.llmRewrite(ctx, rec)
	if err != nil {
		rec.LLMFailed = true
		logger.GetLogger(ctx).Warnf("query rewrite LLM call failed, using original query: %v", err)
		return next()
	}
	rec.RewrittenQuery = rewritten
	return next()
}

func isSelfComplete(query string) bool {
	return len([]rune(query)) > 20 && !contextReferencePattern.MatchString(query)
}

// extractPriorSubject pulls the most recent facility/hotel mention out of
// history so a bare follow-up ("there, what time?") can be anchored to it.
func extractPriorSubject(history []Turn) (subject, hotelKey string) {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		for key, aliases := range hotel.HotelKeywords {
			for _, alias := range aliases {
				if strings.Contains(turn.Content, alias) {
					hotelKey = key
				}
			}
		}
		for _, keywords := range hotel.CategoryKeywords {
			for _, kw := range keywords {
				if strings.Contains(turn.Content, kw) {
					subject = kw
					return subject, hotelKey
				}
			}
		}
	}
	return subject, hotelKey
}

func ruleBasedRewrite(query, subject string) (string, bool) {
	if subject == "" {
		return "", false
	}
	trimmed := strings.TrimSpace(query)
	switch {
	case strings.HasPrefix(trimmed, "거기") || strings.HasPrefix(trimmed, "거기서"):
		rest := strings.TrimPrefix(strings.TrimPrefix(trimmed, "거기서"), "거기")
		return subject + " " + strings.TrimSpace(rest), true
	case strings.HasPrefix(trimmed, "그럼") || strings.HasPrefix(trimmed, "그러면"):
		rest := strings.TrimPrefix(strings.TrimPrefix(trimmed, "그러면"), "그럼")
		return subject + " " + strings.TrimSpace(rest), true
	case bareInterrogativePattern.MatchString(trimmed):
		return subject + " " + trimmed, true
	}
	return "", false
}

func topicPresentInRecentHistory(query string, history []Turn) bool {
	topic := classifyTopic(query)
	if topic == "" {
		return true
	}
	window := history
	if len(window) > 4 {
		window = window[len(window)-4:]
	}
	for _, turn := range window {
		if classifyTopic(turn.Content) == topic {
			return true
		}
	}
	return false
}

func selfCompleteOnOwnTopic(query string) bool {
	topic := classifyTopic(query)
	if topic == "" {
		return false
	}
	for _, kw := range hotel.CategoryKeywords[topic] {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

// classifyTopic buckets query into one of hotel.CategoryKeywords's groups,
// the same table preprocess uses for category detection.
func classifyTopic(query string) string {
	for category, keywords := range hotel.CategoryKeywords {
		for _, kw := range keywords {
			if strings.Contains(query, kw) {
				return category
			}
		}
	}
	return ""
}

func (p *RewritePlugin) llmRewrite(ctx context.Context, rec *Record) (string, error) {
	turns := rec.History
	if len(turns) > 2 {
		turns = turns[len(turns)-2:]
	}
	var historyText strings.Builder
	for _, t := range turns {
		historyText.WriteString(t.Role)
		historyText.WriteString(": ")
		historyText.WriteString(t.Content)
		historyText.WriteString("\n")
	}

	system := "이전 대화를 참고하여 사용자의 마지막 질문을 독립적으로 이해 가능한 완전한 질문으로 다시 써주세요. 질문만 출력하세요."
	prompt := historyText.String() + "\n마지막 질문: " + rec.Query

	out, err := p.llm.Complete(ctx, prompt, system, 0, 60)
	if err != nil {
		return "", err
	}
	out = rewritePrefixPattern.ReplaceAllString(strings.TrimSpace(out), "")
	if len([]rune(out)) > 200 {
		out = string([]rune(out)[:200])
	}
	if out == "" {
		return rec.Query, nil
	}
	return out, nil
}
