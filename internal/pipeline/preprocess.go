package pipeline

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"hotel-faq/internal/entity"
	"hotel-faq/internal/hotel"
)

// MinQueryLength is the shortest query preprocess treats as potentially
// valid on its own, absent any prior turn.
const MinQueryLength = 2

// PreprocessPlugin normalizes the query, detects language/hotel/category,
// gates out-of-domain questions, and runs restaurant entity resolution.
type PreprocessPlugin struct {
	resolver *entity.Resolver
}

// NewPreprocessPlugin registers a PreprocessPlugin for Preprocess.
func NewPreprocessPlugin(events *EventManager, resolver *entity.Resolver) *PreprocessPlugin {
	p := &PreprocessPlugin{resolver: resolver}
	events.Register(p)
	return p
}

func (p *PreprocessPlugin) ActivationEvents() []EventType { return []EventType{Preprocess} }

var invalidQueryPattern = regexp.MustCompile(`^[\d\s\p{P}]+$`)

var validQueryKeywords = []string{
	"호텔", "객실", "조식", "수영장", "주차", "체크인", "체크아웃", "예약",
	"레스토랑", "피트니스", "스파", "반려동물", "웨딩", "위치", "문의",
}

func (p *PreprocessPlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	query := rec.RewrittenQuery
	if query == "" {
		query = rec.Query
	}
	rec.NormalizedQuery = normalizeQuery(query)
	rec.Language = detectLanguage(rec.NormalizedQuery)

	if rec.Hotel != "" {
		rec.DetectedHotel = rec.Hotel
	} else {
		rec.DetectedHotel = detectHotel(rec.NormalizedQuery)
	}
	rec.DetectedCategory = detectCategory(rec.NormalizedQuery)

	rec.IsValidQuery = isValidQuery(rec.NormalizedQuery, rec.History)

	if p.resolver != nil {
		rec.RestaurantEntity = p.resolver.Resolve(rec.Query, rec.DetectedHotel)
		if rec.RestaurantEntity.Action == entity.ActionRedirect {
			rec.DetectedHotel = rec.RestaurantEntity.TargetHotel
		}
	}

	return next()
}

var multiSpace = regexp.MustCompile(`\s+`)

func normalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	q = multiSpace.ReplaceAllString(q, " ")
	return q
}

func detectLanguage(q string) string {
	var hangul, total int
	for _, r := range q {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		total++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if total == 0 {
		return "ko"
	}
	if float64(hangul)/float64(total) > 0.3 {
		return "ko"
	}
	return "en"
}

func detectHotel(q string) string {
	type match struct {
		key   string
		alias string
	}
	var best match
	for key, aliases := range hotel.HotelKeywords {
		for _, alias := range aliases {
			if strings.Contains(q, alias) && len(alias) > len(best.alias) {
				best = match{key: key, alias: alias}
			}
		}
	}
	return best.key
}

func detectCategory(q string) string {
	for category, keywords := range hotel.CategoryKeywords {
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				return category
			}
		}
	}
	return ""
}

func isValidQuery(q string, history []Turn) bool {
	if invalidQueryPattern.MatchString(q) {
		return false
	}
	if len([]rune(q)) < MinQueryLength {
		return false
	}
	if len(history) > 0 {
		return true
	}
	for _, kw := range validQueryKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
