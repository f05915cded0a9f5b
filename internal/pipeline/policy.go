package pipeline

import (
	"context"
	"regexp"
	"strings"

	"hotel-faq/internal/hotel"
)

// PolicyPlugin applies the final safety net: PII-adjacent queries are
// refused outright regardless of retrieval outcome, a failed evidence
// gate gets a standard "can't confirm" response (with a location link
// for transport questions), and every answer gets a last scrub plus a
// deduplicated source-URL appendix.
type PolicyPlugin struct {
	suspiciousPatterns []*regexp.Regexp
	suspiciousLabels   []string
}

// NewPolicyPlugin registers a PolicyPlugin for PolicyFilter. It compiles
// hotel.SuspiciousPatterns once at construction time.
func NewPolicyPlugin(events *EventManager) *PolicyPlugin {
	p := &PolicyPlugin{}
	for _, sp := range hotel.SuspiciousPatterns {
		p.suspiciousPatterns = append(p.suspiciousPatterns, regexp.MustCompile(sp.Pattern))
		p.suspiciousLabels = append(p.suspiciousLabels, sp.Label)
	}
	events.Register(p)
	return p
}

func (p *PolicyPlugin) ActivationEvents() []EventType { return []EventType{PolicyFilter} }

func (p *PolicyPlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	if rec.NeedsClarification {
		rec.PolicyPassed = true
		rec.PolicyReason = "clarification"
		return next()
	}

	for i, re := range p.suspiciousPatterns {
		if re.MatchString(rec.Query) {
			rec.PolicyPassed = false
			rec.PolicyReason = "pii:" + p.suspiciousLabels[i]
			rec.FinalAnswer = piiRefusalTemplate(rec.DetectedHotel)
			return next()
		}
	}

	if !rec.EvidencePassed {
		rec.PolicyPassed = false
		rec.PolicyReason = "no-evidence:" + rec.EvidenceReason
		answer := standardCannotConfirmResponse(rec.DetectedHotel)
		if rec.DetectedCategory == "transport" {
			if info, ok := hotel.HotelInfo[rec.DetectedHotel]; ok {
				answer += " 오시는 길: " + info.LocationURL
			}
		}
		rec.FinalAnswer = answer
		return next()
	}

	rec.PolicyPassed = true
	rec.PolicyReason = "ok"
	rec.FinalAnswer = appendSources(scrubInternalMarkers(rec.VerifiedAnswer), rec.Sources)
	return next()
}

var internalMarkerPattern = regexp.MustCompile(`(?i)(stack trace|traceback|internal error|panic:)`)

func scrubInternalMarkers(answer string) string {
	return internalMarkerPattern.ReplaceAllString(answer, "")
}

func piiRefusalTemplate(hotelKey string) string {
	info, ok := hotel.HotelInfo[hotelKey]
	base := "죄송합니다, 예약번호나 카드번호와 같은 개인정보는 채팅으로 확인해 드릴 수 없습니다."
	if !ok {
		return base
	}
	return base + " " + info.Name + "(" + info.Phone + ")로 직접 문의해 주세요."
}

const referenceSectionHeader = "참고 정보:"

func appendSources(answer string, sources []string) string {
	if len(sources) == 0 {
		return answer
	}
	seen := make(map[string]bool)
	var unique []string
	for _, s := range sources {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	if len(unique) == 0 {
		return answer
	}
	if idx := strings.Index(answer, referenceSectionHeader); idx != -1 {
		return answer + "\n" + strings.Join(unique, "\n")
	}
	return answer + "\n\n" + referenceSectionHeader + "\n" + strings.Join(unique, "\n")
}
