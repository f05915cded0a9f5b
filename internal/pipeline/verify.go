package pipeline

import (
	"context"
	"strings"

	"hotel-faq/internal/grounding"
	"hotel-faq/internal/hotel"
	"hotel-faq/internal/verify"
)

// VerifyPlugin runs the fixed-order answer-verification chain: response
// quality, grounding-gate claim verification, numeric/proper-noun/
// transportation hallucination checks, category and hotel cross-
// contamination, phone/URL/price checks, and a final forbidden-phrase
// scrub. Grounding, transportation, proper-noun, contamination and
// phone/URL failures rewrite or trim the answer; the quality,
// numeric-hallucination and price checks only record issues.
type VerifyPlugin struct {
	gate     *grounding.Gate
	category *grounding.CategoryChecker
	verifier *verify.Verifier
}

// NewVerifyPlugin registers a VerifyPlugin for Verify.
func NewVerifyPlugin(events *EventManager, gate *grounding.Gate, category *grounding.CategoryChecker, verifier *verify.Verifier) *VerifyPlugin {
	p := &VerifyPlugin{gate: gate, category: category, verifier: verifier}
	events.Register(p)
	return p
}

func (p *VerifyPlugin) ActivationEvents() []EventType { return []EventType{Verify} }

func (p *VerifyPlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	answer := rec.Answer
	context := chunkContext(rec.RetrievedChunks)
	var issues []string

	rec.QueryIntents = p.gate.ClassifyIntent(rec.NormalizedQuery)

	if ok, qIssues := p.verifier.CheckResponseQuality(answer); !ok {
		issues = append(issues, qIssues...)
	}

	groundingResult := p.gate.Verify(answer, context, rec.NormalizedQuery)
	rec.GroundingResult = &groundingResult
	if groundingResult.Confidence != grounding.ConfidenceCertain {
		info := hotel.HotelInfo[rec.DetectedHotel]
		answer = p.gate.BuildVerifiedAnswer(groundingResult, info.Name, info.Phone)
		issues = append(issues, "grounding:"+groundingResult.Reason)
	}

	if ok, numIssues := p.verifier.CheckHallucination(answer, context); !ok {
		issues = append(issues, numIssues...)
	}

	if ok, nounIssues, cleaned := p.verifier.CheckProperNounHallucination(answer, context); !ok {
		answer = cleaned
		issues = append(issues, nounIssues...)
	}

	if ok, transIssues, cleaned := p.verifier.CheckTransportationHallucination(answer, context, rec.NormalizedQuery); !ok {
		answer = cleaned
		issues = append(issues, transIssues...)
	}

	if rec.EffectiveCategory != "" {
		cleanedAnswer, changed := p.category.GetCleanedAnswer(answer, rec.EffectiveCategory, hotel.HotelInfo[rec.DetectedHotel].Phone)
		if changed {
			answer = cleanedAnswer
			issues = append(issues, "category-cross-contamination")
		}
	}

	if ok, hotelIssues, cleaned := p.verifier.CheckHotelCrossContamination(answer, context, rec.DetectedHotel); !ok {
		answer = cleaned
		issues = append(issues, hotelIssues...)
	}

	if ok, phoneIssues, cleaned := p.verifier.CheckPhoneHallucination(answer, context); !ok {
		answer = cleaned
		issues = append(issues, phoneIssues...)
	}

	if ok, urlIssues, cleaned := p.verifier.CheckURLHallucination(answer, context); !ok {
		answer = cleaned
		issues = append(issues, urlIssues...)
	}

	if ok, priceIssues := p.verifier.CheckPriceDigitManipulation(answer, context); !ok {
		issues = append(issues, priceIssues...)
	}

	answer = p.verifier.RemoveForbiddenPhrases(answer)

	if shortFallbackSounding(answer) && rec.EvidencePassed && len(issues) == 0 {
		answer = p.directExtractFallback(rec, context)
	}

	rec.VerifiedAnswer = strings.TrimSpace(answer)
	rec.VerificationIssues = issues
	rec.VerificationPassed = len(issues) == 0
	return next()
}

func chunkContext(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func shortFallbackSounding(answer string) bool {
	return len([]rune(answer)) < 15
}

func (p *VerifyPlugin) directExtractFallback(rec *Record, context string) string {
	if containsAny(rec.NormalizedQuery, []string{"전화", "연락처"}) {
		info, ok := hotel.HotelInfo[rec.DetectedHotel]
		if ok {
			return info.Name + " 전화번호: " + info.Phone
		}
	}
	chunks := rec.RetrievedChunks
	if len(chunks) > 3 {
		chunks = chunks[:3]
	}
	for _, c := range chunks {
		extracted := p.verifier.ExtractDirectAnswer(c.Text)
		if extracted != "" {
			return extracted
		}
	}
	return standardCannotConfirmResponse(rec.DetectedHotel)
}
