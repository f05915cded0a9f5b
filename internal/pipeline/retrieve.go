package pipeline

import (
	"context"
	"sort"
	"strings"

	"hotel-faq/internal/hotel"
	"hotel-faq/internal/rerank"
	"hotel-faq/internal/session"
	"hotel-faq/internal/vectorindex"
)

// topicPriority is the fixed walk order for extracting a conversation
// topic from history: the first category whose keyword appears in the
// most recent turns wins.
var topicPriority = []string{"dining", "pool", "fitness", "parking", "reservation", "rooms", "pet"}

// RetrievePlugin produces a ranked, ≤5-chunk evidence set for the
// normalized query: hotel-name stripping, topic-aware query expansion,
// session-cache reinforcement, vector search with category fallback, and
// conditional reranking.
type RetrievePlugin struct {
	index    vectorindex.Index
	reranker *rerank.Reranker
}

// NewRetrievePlugin registers a RetrievePlugin for Retrieve.
func NewRetrievePlugin(events *EventManager, index vectorindex.Index, reranker *rerank.Reranker) *RetrievePlugin {
	p := &RetrievePlugin{index: index, reranker: reranker}
	events.Register(p)
	return p
}

func (p *RetrievePlugin) ActivationEvents() []EventType { return []EventType{Retrieve} }

const topK = 5

func (p *RetrievePlugin) OnEvent(ctx context.Context, eventType EventType, rec *Record, next func() *NodeError) *NodeError {
	searchQuery := stripHotelMention(rec.NormalizedQuery)

	topic := extractHistoryTopic(rec.History)
	if topic == "" && rec.SessionContext != nil {
		topic = rec.SessionContext.CurrentTopic
	}
	rec.ConversationTopic = topic

	if topic != "" && !containsAny(searchQuery, hotel.CategoryKeywords[topic]) {
		if kws := hotel.CategoryKeywords[topic]; len(kws) > 0 {
			searchQuery = searchQuery + " " + kws[0]
		}
	}

	expandedQuery := expandWithSynonyms(searchQuery)

	category := rec.DetectedCategory
	effectiveCategory := category
	if len(rec.History) > 0 && category != "" && category != topic {
		effectiveCategory = ""
	}
	rec.EffectiveCategory = effectiveCategory

	var cacheChunks []Chunk
	if rec.SessionContext != nil && topic != "" && len(rec.SessionContext.LastChunks) > 0 {
		cacheChunks = scoreSessionCache(rec.SessionContext.LastChunks, expandedQuery, topic)
	}

	dbHits, err := p.index.Search(ctx, expandedQuery, vectorindex.Filter{
		Hotel:    rec.DetectedHotel,
		Category: effectiveCategory,
	}, topK)
	if err != nil {
		return ErrRetrieveFailed.WithError(err)
	}
	if len(dbHits) < 2 && effectiveCategory != "" {
		dbHits, err = p.index.Search(ctx, expandedQuery, vectorindex.Filter{Hotel: rec.DetectedHotel}, topK)
		if err != nil {
			return ErrRetrieveFailed.WithError(err)
		}
	}

	dbChunks := hitsToChunks(dbHits)

	var merged []Chunk
	if len(cacheChunks) >= 2 && topScore(cacheChunks) >= 0.7 {
		merged = cacheChunks
	} else {
		merged = mergeByChunkID(cacheChunks, dbChunks)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > topK {
		merged = merged[:topK]
	}

	rec.RetrievedChunks = merged
	rec.TopScore = topScore(merged)
	rec.RerankQuality = "skipped"

	if p.reranker != nil && len(merged) > 0 {
		rerankInput := make([]rerank.Chunk, len(merged))
		for i, c := range merged {
			rerankInput[i] = rerank.Chunk{Text: c.Text, Source: c.URL, HotelKey: c.Hotel, Score: c.Score}
		}
		reranked, rerr := p.reranker.Rerank(ctx, rec.NormalizedQuery, rerankInput, topK)
		if rerr != nil {
			return ErrRerankFailed.WithError(rerr)
		}
		if rec.TopScore < p.reranker.SkipThreshold() {
			rec.RetrievedChunks = applyRerankScores(merged, reranked)
			if len(reranked) > 0 && reranked[0].LowQuality {
				rec.RerankQuality = "poor"
			} else {
				rec.RerankQuality = "ok"
			}
			rec.TopScore = topScoreFromRecordChunks(rec.RetrievedChunks)
		}
	}

	if rec.SessionContext != nil {
		sessChunks := make([]session.Chunk, len(rec.RetrievedChunks))
		for i, c := range rec.RetrievedChunks {
			sessChunks[i] = session.Chunk{Text: c.Text, Source: c.URL, HotelKey: c.Hotel, Score: c.Score}
		}
		rec.SessionContext.CacheChunks(sessChunks, rec.NormalizedQuery)
		rec.SessionContext.UpdateTopic(topic, rec.DetectedHotel)
	}

	return next()
}

func stripHotelMention(q string) string {
	stripped := q
	for _, aliases := range hotel.HotelKeywords {
		for _, alias := range aliases {
			stripped = strings.ReplaceAll(stripped, alias, "")
		}
	}
	stripped = koreanParticle.ReplaceAllString(strings.TrimSpace(stripped), "")
	stripped = multiSpace.ReplaceAllString(stripped, " ")
	if len([]rune(strings.TrimSpace(stripped))) < 3 {
		return q
	}
	return strings.TrimSpace(stripped)
}

func extractHistoryTopic(history []Turn) string {
	var userTurns []Turn
	for _, t := range history {
		if t.Role == "user" {
			userTurns = append(userTurns, t)
		}
	}
	if len(userTurns) > 3 {
		userTurns = userTurns[len(userTurns)-3:]
	}
	for i := len(userTurns) - 1; i >= 0; i-- {
		for _, topic := range topicPriority {
			if containsAny(userTurns[i].Content, hotel.CategoryKeywords[topic]) {
				return topic
			}
		}
	}
	return ""
}

func expandWithSynonyms(query string) string {
	expanded := query
	added := 0
	var longestKey string
	for key := range hotel.SynonymDict {
		if strings.Contains(query, key) && len(key) > len(longestKey) {
			longestKey = key
		}
	}
	if longestKey == "" {
		return query
	}
	for _, syn := range hotel.SynonymDict[longestKey] {
		if added >= 3 {
			break
		}
		if strings.Contains(query, syn) {
			continue
		}
		expanded += " " + syn
		added++
	}
	return expanded
}

func scoreSessionCache(cached []session.Chunk, query, topic string) []Chunk {
	qTokens := strings.Fields(query)
	var out []Chunk
	for _, c := range cached {
		overlap := 0.0
		for _, tok := range qTokens {
			if strings.Contains(c.Text, tok) {
				overlap++
			}
		}
		topicBoost := 0.0
		if topic != "" && containsAny(c.Text, hotel.CategoryKeywords[topic]) {
			topicBoost = 0.1
		}
		score := overlap/float64(len(qTokens)+1) + topicBoost + c.Score*0.3
		out = append(out, Chunk{Text: c.Text, URL: c.Source, Hotel: c.HotelKey, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func hitsToChunks(hits []vectorindex.Hit) []Chunk {
	out := make([]Chunk, len(hits))
	for i, h := range hits {
		out[i] = Chunk{
			ChunkID: h.ChunkID, DocID: h.DocID, Hotel: h.Hotel, HotelName: h.HotelName,
			PageType: h.PageType, URL: h.URL, Category: h.Category, Language: h.Language,
			UpdatedAt: h.UpdatedAt, ChunkIndex: h.ChunkIndex, Text: h.Text, Score: h.Score,
		}
	}
	return out
}

func mergeByChunkID(a, b []Chunk) []Chunk {
	seen := make(map[string]bool)
	var out []Chunk
	for _, c := range append(append([]Chunk{}, a...), b...) {
		key := c.ChunkID
		if key == "" {
			key = c.URL + "|" + c.Text
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func topScore(chunks []Chunk) float64 {
	best := 0.0
	for _, c := range chunks {
		if c.Score > best {
			best = c.Score
		}
	}
	return best
}

func topScoreFromRecordChunks(chunks []Chunk) float64 {
	return topScore(chunks)
}

func applyRerankScores(original []Chunk, reranked []rerank.Chunk) []Chunk {
	byText := make(map[string]rerank.Chunk, len(reranked))
	for _, r := range reranked {
		byText[r.Text] = r
	}
	var out []Chunk
	for _, c := range original {
		r, ok := byText[c.Text]
		if !ok {
			continue
		}
		c.OriginalScore = c.Score
		c.RerankScore = r.RerankScore
		c.RerankRaw = r.RerankRaw
		c.Score = c.OriginalScore
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RerankScore > out[j].RerankScore })
	return out
}
