// Package verify runs the final safety net over a composed answer: response
// quality, numeric/proper-noun/transportation hallucination checks, cross-
// hotel contamination, phone/URL hallucination, price digit manipulation,
// and forbidden-phrase scrubbing. The transportation, proper-noun,
// cross-hotel and phone/URL checks also return a cleaned answer with
// offending sentences removed, so the pipeline can keep serving a trimmed
// answer instead of refusing outright; the quality, numeric-hallucination
// and price checks only report issues.
package verify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"hotel-faq/internal/hotel"
)

var (
	rePrices    = regexp.MustCompile(`[\d,]+\s*원`)
	reTimes     = regexp.MustCompile(`\d{1,2}:\d{2}`)
	rePhones    = regexp.MustCompile(`\d{2,4}[-.]?\d{3,4}[-.]?\d{4}`)
	rePercents  = regexp.MustCompile(`\d+\s*%`)
	reFloors    = regexp.MustCompile(`\d+\s*층`)
	rePersons   = regexp.MustCompile(`\d+\s*인`)
	reWeights   = regexp.MustCompile(`(?i)\d+\s*kg`)
	reAges      = regexp.MustCompile(`\d+\s*세`)
	reFullDates = regexp.MustCompile(`\d{4}년\s*\d{1,2}월\s*\d{1,2}일`)
	reMonthDays = regexp.MustCompile(`\d{1,2}월\s*\d{1,2}일`)
	reURL       = regexp.MustCompile(`https?://[^\s\)\]>"']+|www\.[^\s\)\]>"']+`)
	rePricePair = regexp.MustCompile(`([\d,]+)\s*원`)
)

type labeledPattern struct {
	re    *regexp.Regexp
	label string
}

var meaninglessPatterns = []labeledPattern{
	{regexp.MustCompile(`\?\?+`), "repeated question marks"},
	{regexp.MustCompile(`！！+`), "repeated exclamation marks"},
	{regexp.MustCompile(`\.\.\.\.+`), "excessive ellipsis"},
}

var forbiddenPatterns = []labeledPattern{
	{regexp.MustCompile(`(?i)궁금하신가요`), "forbidden phrase"},
	{regexp.MustCompile(`(?i)더\s*필요하신\s*것`), "forbidden phrase"},
	{regexp.MustCompile(`(?i)어떤\s*것이?\s*궁금`), "forbidden phrase"},
	{regexp.MustCompile(`(?i)도움이?\s*되셨`), "forbidden phrase"},
	{regexp.MustCompile(`(?i)추가.*질문`), "forbidden phrase"},
	{regexp.MustCompile(`(?i)알려주시면`), "forbidden phrase"},
	{regexp.MustCompile(`(?i)말씀해\s*주시`), "forbidden phrase"},
	{regexp.MustCompile(`(?i)문의.*주시면`), "forbidden phrase"},
	{regexp.MustCompile(`(?im)^\s*-\s*-\s*$`), "empty content"},
	{regexp.MustCompile(`(?i)정보가\s*없습니다.*문의`), "bad fallback wording"},
}

var transportPatterns = []labeledPattern{
	{regexp.MustCompile(`\d+호선`), "subway line"},
	{regexp.MustCompile(`지하철\s*[가-힣]+선`), "named subway line"},
	{regexp.MustCompile(`버스\s*\d+번?`), "bus line"},
	{regexp.MustCompile(`[가-힣]+역에서\s*[가-힣]+역`), "subway route"},
	{regexp.MustCompile(`환승|갈아타`), "transfer guidance"},
}

// SuspiciousPattern pairs a regex with a label; a match present in the
// answer but absent from the supporting context is treated as fabricated.
type SuspiciousPattern = hotel.SuspiciousPattern

// Verifier runs the full multi-check pipeline over a composed answer.
type Verifier struct {
	knownNames        *hotel.KnownNames
	forbiddenPhrases  []string
	suspiciousPatterns []SuspiciousPattern
}

// NewVerifier builds a Verifier. knownNames may be nil (an empty whitelist
// is used); when nil/empty, forbiddenPhrases falls back to two built-in
// boilerplate patterns and suspiciousPatterns to hotel.SuspiciousPatterns.
func NewVerifier(knownNames *hotel.KnownNames, forbiddenPhrases []string, suspiciousPatterns []SuspiciousPattern) *Verifier {
	if knownNames == nil {
		knownNames = &hotel.KnownNames{Restaurants: map[string][]string{}}
	}
	if len(forbiddenPhrases) == 0 {
		forbiddenPhrases = []string{`궁금하신가요\??`, `도움이?\s*되셨나요\??`}
	}
	if len(suspiciousPatterns) == 0 {
		suspiciousPatterns = hotel.SuspiciousPatterns
	}
	return &Verifier{
		knownNames:         knownNames,
		forbiddenPhrases:   forbiddenPhrases,
		suspiciousPatterns: suspiciousPatterns,
	}
}

func extractNumbers(text string) map[string]bool {
	out := map[string]bool{}
	for _, re := range []*regexp.Regexp{rePrices, reTimes, rePhones, rePercents, reFloors, rePersons, reWeights, reAges, reFullDates, reMonthDays} {
		for _, m := range re.FindAllString(text, -1) {
			out[m] = true
		}
	}
	return out
}

// CheckResponseQuality flags garbled output: excess CJK-mixing, a low
// Hangul ratio after stripping expected hotel-term noise, meaningless
// repeated-punctuation patterns, too-short answers, and forbidden
// boilerplate phrasing.
func (v *Verifier) CheckResponseQuality(answer string) (bool, []string) {
	var issues []string

	chineseChars := countRunesInRange(answer, 0x4e00, 0x9fff)
	if chineseChars > 2 {
		issues = append(issues, fmt.Sprintf("abnormal: contains %d Chinese characters", chineseChars))
	}
	japaneseChars := countRunesInRange(answer, 0x3040, 0x30ff)
	if japaneseChars > 2 {
		issues = append(issues, fmt.Sprintf("abnormal: contains %d Japanese characters", japaneseChars))
	}

	normalized := regexp.MustCompile(`\d{1,2}:\d{2}\s*[-~]\s*\d{1,2}:\d{2}`).ReplaceAllString(answer, "")
	normalized = regexp.MustCompile(`\d{1,2}:\d{2}`).ReplaceAllString(normalized, "")
	normalized = regexp.MustCompile(`(?i)BREAK\s*TIME`).ReplaceAllString(normalized, "")
	for _, term := range hotelTerms {
		normalized = regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`).ReplaceAllString(normalized, "")
	}
	normalized = regexp.MustCompile(`[\d\-:~/.,@#$%^&*()_+=\[\]{}|\\<>]`).ReplaceAllString(normalized, "")

	koreanChars := countRunesInRange(normalized, 0xac00, 0xd7a3)
	totalChars := len([]rune(strings.ReplaceAll(strings.ReplaceAll(normalized, " ", ""), "\n", "")))
	if totalChars > 5 && float64(koreanChars)/float64(totalChars) < 0.25 {
		issues = append(issues, fmt.Sprintf("abnormal: low Hangul ratio (%d/%d)", koreanChars, totalChars))
	}

	for _, p := range meaninglessPatterns {
		if p.re.MatchString(answer) {
			issues = append(issues, "abnormal: "+p.label)
			break
		}
	}

	if len([]rune(strings.TrimSpace(answer))) < 5 {
		issues = append(issues, "abnormal: answer too short")
	}

	for _, p := range forbiddenPatterns {
		if p.re.MatchString(answer) {
			issues = append(issues, "forbidden pattern: "+p.label)
		}
	}

	return len(issues) == 0, issues
}

var hotelTerms = []string{
	"KIDS", "Superior", "Deluxe", "Suite", "Premier", "Standard",
	"Twin", "Double", "King", "Queen", "Pool", "Spa", "Fitness",
	"VAT", "URL", "http", "https", "do", "com",
}

func countRunesInRange(s string, lo, hi rune) int {
	n := 0
	for _, r := range s {
		if r >= lo && r <= hi {
			n++
		}
	}
	return n
}

// sentenceSplit splits on Korean/terminal punctuation, approximating the
// lookbehind-based split the source uses (RE2 has no lookbehind).
func sentenceSplit(text string) []string {
	re := regexp.MustCompile(`([.!?다요])\s+`)
	parts := re.Split(text, -1)
	return parts
}

// CheckTransportationHallucination rejects subway/bus route details that
// are not backed by context, and — unless the query itself asked about
// transportation — strips any transport sentence that appears at all.
func (v *Verifier) CheckTransportationHallucination(answer, context, query string) (bool, []string, string) {
	var issues []string
	cleaned := answer

	fabricated := false
	for _, p := range transportPatterns {
		for _, m := range p.re.FindAllString(answer, -1) {
			if !strings.Contains(context, m) {
				issues = append(issues, fmt.Sprintf("transportation fabrication: %q (%s) not in context", m, p.label))
				fabricated = true
			}
		}
	}

	if fabricated {
		var kept []string
		for _, sentence := range sentenceSplit(cleaned) {
			hasFabrication := false
			for _, p := range transportPatterns {
				for _, m := range p.re.FindAllString(sentence, -1) {
					if !strings.Contains(context, m) {
						hasFabrication = true
						break
					}
				}
				if hasFabrication {
					break
				}
			}
			if !hasFabrication {
				kept = append(kept, sentence)
			}
		}
		cleaned = strings.TrimSpace(strings.Join(kept, " "))
	}

	queryLower := strings.ToLower(query)
	transportKeywords := []string{"지하철", "버스", "택시", "노선", "호선", "교통편", "환승"}
	queryIsTransport := false
	for _, kw := range []string{"교통", "오시는", "셔틀", "공항에서", "어떻게 가"} {
		if strings.Contains(queryLower, kw) {
			queryIsTransport = true
			break
		}
	}

	if !queryIsTransport {
		for _, kw := range transportKeywords {
			if strings.Contains(answer, kw) && !strings.Contains(context, kw) {
				issues = append(issues, fmt.Sprintf("off-topic: transport info in a non-transport query %q", truncateRunes(query, 20)))
				var kept []string
				for _, sentence := range sentenceSplit(cleaned) {
					keep := true
					for _, tk := range transportKeywords {
						if strings.Contains(sentence, tk) {
							keep = false
							break
						}
					}
					if keep {
						kept = append(kept, sentence)
					}
				}
				cleaned = strings.TrimSpace(strings.Join(kept, " "))
				break
			}
		}
	}

	return len(issues) == 0, issues, cleaned
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// CheckHallucination flags numbers present in the answer but absent from
// context, plus any suspicious pattern match (reservation/card/ID numbers)
// not echoed verbatim from the source chunks.
func (v *Verifier) CheckHallucination(answer, context string) (bool, []string) {
	var issues []string

	answerNumbers := extractNumbers(answer)
	contextNumbers := extractNumbers(context)

	for _, p := range v.suspiciousPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		if m := re.FindString(answer); m != "" && !strings.Contains(context, m) {
			issues = append(issues, fmt.Sprintf("suspicious: %s found", p.Label))
		}
	}

	normContext := strings.ReplaceAll(strings.ReplaceAll(context, ",", ""), " ", "")
	for num := range answerNumbers {
		numNorm := regexp.MustCompile(`[\s,]`).ReplaceAllString(num, "")
		found := false
		for ctxNum := range contextNumbers {
			ctxNorm := regexp.MustCompile(`[\s,]`).ReplaceAllString(ctxNum, "")
			if strings.Contains(ctxNorm, numNorm) || strings.Contains(numNorm, ctxNorm) {
				found = true
				break
			}
		}
		if !found && len(numNorm) > 2 && !strings.Contains(normContext, numNorm) {
			issues = append(issues, fmt.Sprintf("unverified: %q not in context", num))
		}
	}

	return len(issues) == 0, issues
}

var (
	bilingualRe = regexp.MustCompile(`([가-힣]{2,}(?:\s+[가-힣]+)*)\s*\(([A-Za-z][A-Za-z\s&'-]+)\)`)
	quotedRe    = regexp.MustCompile(`['"]([가-힣A-Za-z][가-힣A-Za-z\s&'-]+)['"]`)
	facilityRe  = regexp.MustCompile(`([가-힣A-Za-z]{2,}(?:\s+[가-힣A-Za-z]+)*)\s*(?:레스토랑|식당|라운지|풀|센터|카페|바|클럽|스파|사우나)`)
)

var commonWords = map[string]bool{
	"하지만": true, "그리고": true, "또한": true, "그래서": true, "따라서": true, "다만": true, "그러나": true, "그런데": true,
	"그렇게": true, "이렇게": true, "그곳에": true, "이곳에": true, "해당": true, "물론": true, "참고로": true, "특히": true,
	"다양한": true, "일반적": true, "기본적": true, "대표적": true, "실내외": true, "실내": true, "실외": true,
	"해운대": true, "강남": true, "판교": true, "명동": true, "제주": true, "부산": true, "서울": true, "인천": true,
	"투숙객": true, "고객님": true, "이용객": true, "방문객": true,
}

// CheckProperNounHallucination flags bilingual-annotated, quoted, or
// facility-suffixed proper nouns that appear in the answer but neither in
// context nor in the known-names whitelist, stripping the offending
// sentence from the cleaned answer.
func (v *Verifier) CheckProperNounHallucination(answer, context string) (bool, []string, string) {
	var issues []string
	cleaned := answer
	properNouns := map[string]bool{}

	for _, m := range bilingualRe.FindAllStringSubmatch(answer, -1) {
		properNouns[strings.TrimSpace(m[1])] = true
		properNouns[strings.TrimSpace(m[2])] = true
	}
	for _, m := range quotedRe.FindAllStringSubmatch(answer, -1) {
		if len([]rune(m[1])) >= 2 {
			properNouns[strings.TrimSpace(m[1])] = true
		}
	}
	for _, m := range facilityRe.FindAllStringSubmatch(answer, -1) {
		name := strings.TrimSpace(m[1])
		if len([]rune(name)) >= 2 && !commonWords[name] {
			properNouns[name] = true
		}
	}

	contextLower := strings.ToLower(context)

	for noun := range properNouns {
		nounLower := strings.ToLower(noun)
		if v.knownNames.Contains(noun) {
			continue
		}
		if len([]rune(noun)) <= 2 {
			continue
		}
		if strings.Contains(nounLower, "known") {
			continue
		}
		if !strings.Contains(contextLower, nounLower) {
			issues = append(issues, fmt.Sprintf("unverified proper noun: %q not in context", noun))
			var kept []string
			for _, sentence := range sentenceSplit(cleaned) {
				if strings.Contains(sentence, noun) || strings.Contains(strings.ToLower(sentence), nounLower) {
					continue
				}
				kept = append(kept, sentence)
			}
			cleaned = strings.TrimSpace(strings.Join(kept, " "))
		}
	}

	return len(issues) == 0, issues, cleaned
}

// CheckHotelCrossContamination flags another hotel's name or phone number
// leaking into an answer scoped to targetHotel, unless that name/number is
// itself present in the supporting context.
func (v *Verifier) CheckHotelCrossContamination(answer, context, targetHotel string) (bool, []string, string) {
	if targetHotel == "" {
		return true, nil, answer
	}

	var issues []string
	cleaned := answer
	answerLower := strings.ToLower(answer)
	contextLower := strings.ToLower(context)

	for _, key := range hotel.Keys {
		if key == targetHotel {
			continue
		}
		info := hotel.HotelInfo[key]
		otherLower := strings.ToLower(info.Name)
		if strings.Contains(answerLower, otherLower) && !strings.Contains(contextLower, otherLower) {
			issues = append(issues, fmt.Sprintf("hotel cross-contamination: %q leaked in (target %s)", info.Name, hotel.HotelInfo[targetHotel].Name))
			var kept []string
			for _, sentence := range sentenceSplit(cleaned) {
				if !strings.Contains(strings.ToLower(sentence), otherLower) {
					kept = append(kept, sentence)
				}
			}
			cleaned = strings.TrimSpace(strings.Join(kept, " "))
		}

		if info.Phone != "" && strings.Contains(answer, info.Phone) && !strings.Contains(context, info.Phone) {
			issues = append(issues, fmt.Sprintf("phone cross-contamination: %q (%s)", info.Phone, info.Name))
			cleaned = strings.ReplaceAll(cleaned, info.Phone, "")
		}
	}

	return len(issues) == 0, issues, cleaned
}

// CheckPhoneHallucination flags a phone-shaped number in the answer that
// is neither present in context nor one of the five hotels' known numbers.
func (v *Verifier) CheckPhoneHallucination(answer, context string) (bool, []string, string) {
	answerPhones := rePhones.FindAllString(answer, -1)
	if len(answerPhones) == 0 {
		return true, nil, answer
	}

	contextPhoneDigits := map[string]bool{}
	for _, p := range rePhones.FindAllString(context, -1) {
		contextPhoneDigits[digitsOf(p)] = true
	}
	knownPhoneDigits := map[string]bool{}
	for _, info := range hotel.HotelInfo {
		if d := digitsOf(info.Phone); d != "" {
			knownPhoneDigits[d] = true
		}
	}

	var issues []string
	cleaned := answer
	for _, phone := range answerPhones {
		digits := digitsOf(phone)
		if len(digits) < 8 {
			continue
		}
		if contextPhoneDigits[digits] || knownPhoneDigits[digits] {
			continue
		}
		issues = append(issues, fmt.Sprintf("phone hallucination: %q not in context", phone))
		var kept []string
		for _, sentence := range sentenceSplit(cleaned) {
			if !strings.Contains(sentence, phone) {
				kept = append(kept, sentence)
			}
		}
		cleaned = strings.TrimSpace(strings.Join(kept, " "))
	}

	return len(issues) == 0, issues, cleaned
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckURLHallucination flags a URL in the answer that is neither present
// verbatim in context nor on a known hotel domain.
func (v *Verifier) CheckURLHallucination(answer, context string) (bool, []string, string) {
	answerURLs := reURL.FindAllString(answer, -1)
	if len(answerURLs) == 0 {
		return true, nil, answer
	}

	contextURLs := map[string]bool{}
	for _, u := range reURL.FindAllString(context, -1) {
		contextURLs[u] = true
	}

	knownDomains := make([]string, 0, len(hotel.HotelInfo))
	for _, info := range hotel.HotelInfo {
		knownDomains = append(knownDomains, info.Domain)
	}

	var issues []string
	cleaned := answer
	for _, u := range answerURLs {
		if contextURLs[u] {
			continue
		}
		known := false
		for _, d := range knownDomains {
			if d != "" && strings.Contains(u, d) {
				known = true
				break
			}
		}
		if !known {
			issues = append(issues, fmt.Sprintf("URL hallucination: %q on unknown domain", truncateRunes(u, 60)))
			cleaned = strings.ReplaceAll(cleaned, u, "")
		}
	}

	return len(issues) == 0, issues, cleaned
}

// CheckPriceDigitManipulation flags a price in the answer that is a 10x,
// 100x, 0.1x, or 0.01x multiple of a price seen in context — the
// characteristic shape of a dropped or added trailing zero.
func (v *Verifier) CheckPriceDigitManipulation(answer, context string) (bool, []string) {
	answerMatches := rePricePair.FindAllStringSubmatch(answer, -1)
	contextMatches := rePricePair.FindAllStringSubmatch(context, -1)
	if len(answerMatches) == 0 || len(contextMatches) == 0 {
		return true, nil
	}

	ctxPrices := map[int64]bool{}
	for _, m := range contextMatches {
		if n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64); err == nil {
			ctxPrices[n] = true
		}
	}

	var issues []string
	for _, m := range answerMatches {
		ansPrice, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil {
			continue
		}
		if ctxPrices[ansPrice] {
			continue
		}
		for ctxPrice := range ctxPrices {
			if ctxPrice == 0 {
				continue
			}
			ratio := float64(ansPrice) / float64(ctxPrice)
			if ratio == 10 || ratio == 0.1 || ratio == 100 || ratio == 0.01 {
				issues = append(issues, fmt.Sprintf("suspected digit manipulation: answer %d vs context %d (ratio %.2f)", ansPrice, ctxPrice, ratio))
				break
			}
		}
	}

	return len(issues) == 0, issues
}

// RemoveForbiddenPhrases scrubs every configured forbidden-phrase pattern
// from answer and collapses any resulting blank-line runs.
func (v *Verifier) RemoveForbiddenPhrases(answer string) string {
	cleaned := answer
	for _, phrase := range v.forbiddenPhrases {
		re, err := regexp.Compile("(?i)" + phrase)
		if err != nil {
			continue
		}
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = regexp.MustCompile(`\n{3,}`).ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// ExtractDirectAnswer pulls a best-effort answer directly out of a raw
// chunk when composition failed or was rejected outright: a Q&A "A:" span
// if present, else assembled facility/hours/location/phone fields.
func (v *Verifier) ExtractDirectAnswer(topText string) string {
	if strings.Contains(topText, "A:") {
		if m := regexp.MustCompile(`(?s)A:\s*(.+?)(?:\nQ:|\z)`).FindStringSubmatch(topText); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	var parts []string

	facilityName := ""
	if m := regexp.MustCompile(`레스토랑[:\s]+([가-힣a-zA-Z'\s]+)`).FindStringSubmatch(topText); m != nil {
		facilityName = strings.TrimSpace(m[1])
	}
	if facilityName == "" {
		if m := regexp.MustCompile(`([가-힣]+(?:\s+[가-힣]+)*)\s*(?:안내|상세)`).FindStringSubmatch(topText); m != nil {
			facilityName = strings.TrimSpace(m[1])
		}
	}
	if facilityName != "" {
		parts = append(parts, facilityName)
	}

	if m := regexp.MustCompile(`(?i)(?:BUFFET|뷔페|시푸드|Seafood|그릴|Grill)[^\n]*`).FindString(topText); m != "" {
		parts = append(parts, strings.TrimRight(strings.TrimSpace(m), "."))
	}

	if m := regexp.MustCompile(`(?i)(?:HOURS?\s*(?:OF\s*)?OPERATION|운영\s*시간)\s*[:：]?\s*(\d{1,2}:\d{2}\s*[-~]\s*\d{1,2}:\d{2})`).FindStringSubmatch(topText); m != nil {
		parts = append(parts, fmt.Sprintf("운영시간: %s", strings.TrimSpace(m[1])))
	}

	if m := regexp.MustCompile(`(?i)(?:LOCATION|위치)\s*[:：]?\s*(.+?)(?:\n|PERIOD|HOURS|INQUIRY|$)`).FindStringSubmatch(topText); m != nil {
		if loc := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[1]), "-")); loc != "" {
			parts = append(parts, fmt.Sprintf("위치: %s", loc))
		}
	}

	if m := regexp.MustCompile(`(?i)(?:INQUIRY|문의/?예약|문의)\s*[:：]?\s*([\d.\-\s,]+)`).FindStringSubmatch(topText); m != nil {
		parts = append(parts, fmt.Sprintf("문의: %s", strings.TrimSpace(m[1])))
	}

	if len(parts) >= 2 {
		lines := make([]string, len(parts))
		for i, p := range parts {
			lines[i] = "- " + p
		}
		return strings.Join(lines, "\n")
	}
	return ""
}
