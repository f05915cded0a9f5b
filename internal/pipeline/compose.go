package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"hotel-faq/internal/common"
	"hotel-faq/internal/hotel"
	"hotel-faq/internal/llm"
	"hotel-faq/internal/logger"
	"hotel-faq/internal/verify"
)

// ComposePlugin produces a natural-language answer whose every sentence
// is meant to map back to retrieved text: it merges duplicate chunks,
// short-circuits to a standard "can't confirm" response when no chunk has
// a concrete answer shape, calls the LLM with a context-grounded prompt
// otherwise, and falls back to direct extraction on LLM failure.
type ComposePlugin struct {
	llm      *llm.Client
	verifier *verify.Verifier
}

// NewComposePlugin registers a ComposePlugin for AnswerCompose.
func NewComposePlugin(events *EventManager, client *llm.Client, verifier *verify.Verifier) *ComposePlugin {
	p := &ComposePlugin{llm: client, verifier: verifier}
	events.Register(p)
	return p
}

func (p *ComposePlugin) ActivationEvents() []EventType { return []EventType{AnswerCompose} }

var refMarkerPattern = regexp.MustCompile(`\[REF:([0-9,\s]+)\]`)
var whatQuestionPattern = regexp.MustCompile(`(무엇|뭐가|어떤\s*(레스토랑|메뉴))`)
var concreteShapePattern = regexp.MustCompile(`(\d{1,2}:\d{2}|\d{2,3},?\d{3}\s*원|Q:|A:)`)

func (p *ComposePlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	merged := mergeChunksByURL(rec.RetrievedChunks)
	if len(merged) > 5 {
		merged = merged[:5]
	}

	if whatQuestionPattern.MatchString(rec.NormalizedQuery) && !anyChunkHasConcreteShape(merged) {
		rec.Answer = standardCannotConfirmResponse(rec.DetectedHotel)
		rec.Sources = chunkURLs(merged)
		return next()
	}

	var answer string
	var refIndexes []int

	if rec.LLMFailed {
		answer = p.verifier.ExtractDirectAnswer(topChunkText(merged, 3))
	} else {
		prompt := buildComposePrompt(rec.NormalizedQuery, merged)
		out, err := p.llm.Complete(ctx, prompt, composeSystemPrompt, 0.2, 400)
		if err != nil {
			logger.GetLogger(ctx).Warnf("compose LLM call failed, falling back to direct extraction: %v", err)
			answer = p.verifier.ExtractDirectAnswer(topChunkText(merged, 3))
		} else if strings.Contains(out, "temporary error") {
			answer = p.verifier.ExtractDirectAnswer(topChunkText(merged, 3))
		} else {
			answer, refIndexes = extractReferences(out)
		}
	}

	answer = common.CleanInvalidUTF8(answer)
	answer = scrubCJK(answer)
	answer = normalizePunctuation(answer)

	if rec.RestaurantEntity.Message != "" {
		answer = rec.RestaurantEntity.Message + " " + answer
	}

	rec.Answer = answer
	rec.Sources = sourcesFromRefs(merged, refIndexes)
	return next()
}

const composeSystemPrompt = "당신은 호텔 안내 도우미입니다. 제공된 참고 자료에 있는 내용만 사용하여 답변하세요. " +
	"고유명사, 교통편, 전화번호를 절대로 지어내지 마세요. 완전한 문장과 존댓말로 한국어로 답하세요. " +
	"답변 끝에 사용한 참고 자료 번호를 [REF:1,2]와 같은 형식으로 표시하세요."

func buildComposePrompt(query string, chunks []Chunk) string {
	var b strings.Builder
	b.WriteString("질문: " + query + "\n\n참고 자료:\n")
	for i, c := range chunks {
		b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, c.Text))
	}
	return b.String()
}

func mergeChunksByURL(chunks []Chunk) []Chunk {
	byURL := make(map[string]*Chunk)
	var order []string
	seenSentences := make(map[string]map[string]bool)

	for _, c := range chunks {
		existing, ok := byURL[c.URL]
		if !ok {
			clone := c
			byURL[c.URL] = &clone
			order = append(order, c.URL)
			seenSentences[c.URL] = make(map[string]bool)
			for _, s := range splitSentencesForMerge(c.Text) {
				seenSentences[c.URL][normalizeSentence(s)] = true
			}
			continue
		}
		var additions []string
		for _, s := range splitSentencesForMerge(c.Text) {
			norm := normalizeSentence(s)
			if !seenSentences[c.URL][norm] {
				seenSentences[c.URL][norm] = true
				additions = append(additions, s)
			}
		}
		if len(additions) > 0 {
			existing.Text = existing.Text + " " + strings.Join(additions, " ")
		}
		if c.Score > existing.Score {
			existing.Score = c.Score
			existing.HotelName = c.HotelName
			existing.PageType = c.PageType
		}
	}

	out := make([]Chunk, 0, len(order))
	for _, url := range order {
		out = append(out, *byURL[url])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func splitSentencesForMerge(text string) []string {
	var sentences []string
	for _, s := range regexp.MustCompile(`[.!?\n]+`).Split(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func normalizeSentence(s string) string {
	return multiSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func anyChunkHasConcreteShape(chunks []Chunk) bool {
	for _, c := range chunks {
		if concreteShapePattern.MatchString(c.Text) {
			return true
		}
		for _, aliases := range hotel.HotelKeywords {
			if containsAny(c.Text, aliases) {
				return true
			}
		}
	}
	return false
}

func standardCannotConfirmResponse(hotelKey string) string {
	info, ok := hotel.HotelInfo[hotelKey]
	if !ok {
		return "죄송합니다, 해당 내용에 대한 정확한 정보를 확인할 수 없습니다. 호텔로 직접 문의 부탁드립니다."
	}
	return fmt.Sprintf("죄송합니다, 해당 내용에 대한 정확한 정보를 확인할 수 없습니다. %s(%s)로 문의 부탁드립니다.", info.Name, info.Phone)
}

func topChunkText(chunks []Chunk, n int) string {
	if len(chunks) < n {
		n = len(chunks)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(chunks[i].Text)
		b.WriteString("\n")
	}
	return b.String()
}

func extractReferences(answer string) (string, []int) {
	match := refMarkerPattern.FindStringSubmatch(answer)
	cleaned := refMarkerPattern.ReplaceAllString(answer, "")
	cleaned = strings.TrimSpace(cleaned)
	if match == nil {
		return cleaned, nil
	}
	var indexes []int
	for _, part := range strings.Split(match[1], ",") {
		part = strings.TrimSpace(part)
		var n int
		if _, err := fmt.Sscanf(part, "%d", &n); err == nil {
			indexes = append(indexes, n)
		}
	}
	return cleaned, indexes
}

func sourcesFromRefs(chunks []Chunk, refIndexes []int) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(url string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		out = append(out, url)
	}
	if len(refIndexes) == 0 {
		for _, c := range chunks {
			add(c.URL)
		}
		return out
	}
	for _, idx := range refIndexes {
		if idx >= 1 && idx <= len(chunks) {
			add(chunks[idx-1].URL)
		}
	}
	return out
}

func chunkURLs(chunks []Chunk) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range chunks {
		if c.URL == "" || seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c.URL)
	}
	return out
}

var cjkRange = regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)

func scrubCJK(text string) string {
	return cjkRange.ReplaceAllString(text, "")
}

var repeatedPunct = regexp.MustCompile(`[.]{3,}`)

func normalizePunctuation(text string) string {
	text = repeatedPunct.ReplaceAllString(text, "...")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
