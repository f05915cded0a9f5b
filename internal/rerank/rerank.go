// Package rerank reorders retrieved chunks by relevance to the query and
// filters out the ones that aren't actually relevant, so a weak vector-search
// match never reaches composition and gets treated as evidence.
package rerank

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	modelrerank "hotel-faq/internal/models/rerank"
)

// defaultMinKeep is the minimum number of chunks kept regardless of score,
// so a genuinely on-topic chunk isn't dropped purely for trailing a close
// winner, used when Config.MinKeep is unset.
const defaultMinKeep = 2

// defaultRelativeThreshold discards any chunk scoring below this fraction
// of the top chunk's score, used when Config.RelativeThreshold is unset.
const defaultRelativeThreshold = 0.35

// defaultSkipThreshold: when the vector search's own top score already
// clears this, reranking is skipped entirely — the retrieval was confident
// enough. Used when Config.SkipThreshold is unset.
const defaultSkipThreshold = 0.90

// defaultAbsoluteRawScoreFloor: if even the best raw cross-encoder score
// falls below this, the whole result set is flagged low quality — min-max
// normalization alone can't be trusted to mean "relevant" when every
// candidate is actually off-topic. Used when Config.AbsoluteRawScoreFloor
// is unset.
const defaultAbsoluteRawScoreFloor = -5.0

const defaultMaxCacheEntries = 500

// Config holds Reranker's tunables, sourced from config.ConversationConfig's
// rerank_min_keep, rerank_relative_threshold, rerank_skip_threshold,
// rerank_absolute_raw_floor, and rerank_cache_size.
type Config struct {
	MinKeep               int
	RelativeThreshold     float64
	SkipThreshold         float64
	AbsoluteRawScoreFloor float64
	MaxCacheEntries       int
}

// Chunk is a candidate passage plus its originating vector-search score.
type Chunk struct {
	Text          string
	Source        string
	HotelKey      string
	Score         float64
	RerankScore   float64
	RerankRaw     float64
	LowQuality    bool
	KeptByKeyword bool
}

var hangulWord = regexp.MustCompile(`[\x{AC00}-\x{D7A3}]{2,}`)
var trailingParticle = regexp.MustCompile(`(에서|에는|에도|해줘|해요|인가요|인지|입니까|할까|인데|하고|해도|대해|관해|은|는|이|가|을|를|의|도|만|에|로|으로)$`)

var stopwords = map[string]bool{
	"어떻게": true, "언제": true, "어디": true, "무엇": true, "얼마": true, "여기": true, "거기": true,
	"호텔": true, "정보": true, "안내": true, "문의": true, "운영": true, "이용": true, "서비스": true,
	"레스토랑": true, "객실": true, "시설": true, "소개": true, "가능": true, "알려줘": true,
}

// Reranker cross-checks vector-search results against the query with a
// cross-encoder rerank call, caching per (query, chunk-prefix) scores with
// FIFO eviction so a conversation that revisits the same ground doesn't
// re-pay the rerank cost.
type Reranker struct {
	backend modelrerank.Reranker
	cfg     Config

	cache      map[string]float64
	cacheOrder []string
	cacheHits  int
	cacheMiss  int
}

// NewReranker wraps a lower-level remote rerank backend. Any zero-valued
// cfg field falls back to its documented default.
func NewReranker(backend modelrerank.Reranker, cfg Config) *Reranker {
	if cfg.MinKeep <= 0 {
		cfg.MinKeep = defaultMinKeep
	}
	if cfg.RelativeThreshold == 0 {
		cfg.RelativeThreshold = defaultRelativeThreshold
	}
	if cfg.SkipThreshold == 0 {
		cfg.SkipThreshold = defaultSkipThreshold
	}
	if cfg.AbsoluteRawScoreFloor == 0 {
		cfg.AbsoluteRawScoreFloor = defaultAbsoluteRawScoreFloor
	}
	if cfg.MaxCacheEntries <= 0 {
		cfg.MaxCacheEntries = defaultMaxCacheEntries
	}
	return &Reranker{backend: backend, cfg: cfg, cache: make(map[string]float64)}
}

func (r *Reranker) chunkKey(query, text string) string {
	prefix := text
	if len([]rune(prefix)) > 200 {
		prefix = string([]rune(prefix)[:200])
	}
	sum := md5.Sum([]byte(query + "|" + prefix))
	return hex.EncodeToString(sum[:])
}

// Rerank reorders chunks by relevance to query and drops the ones that
// don't clear the relative threshold, the MIN_KEEP floor, or a
// query-keyword fallback match. When the vector search's own top score
// already clears SkipThreshold, reranking is skipped and chunks are
// returned unchanged (truncated to topK).
func (r *Reranker) Rerank(ctx context.Context, query string, chunks []Chunk, topK int) ([]Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	topVectorScore := 0.0
	for _, c := range chunks {
		if c.Score > topVectorScore {
			topVectorScore = c.Score
		}
	}
	if topVectorScore >= r.cfg.SkipThreshold {
		if len(chunks) > topK {
			return chunks[:topK], nil
		}
		return chunks, nil
	}

	rawScores := make([]float64, len(chunks))
	var toCompute []string
	var indexMap []int

	for i, c := range chunks {
		key := r.chunkKey(query, c.Text)
		if score, ok := r.cache[key]; ok {
			rawScores[i] = score
			r.cacheHits++
			continue
		}
		r.cacheMiss++
		toCompute = append(toCompute, c.Text)
		indexMap = append(indexMap, i)
	}

	if len(toCompute) > 0 {
		results, err := r.backend.Rerank(ctx, query, toCompute)
		if err != nil {
			return nil, fmt.Errorf("rerank backend call: %w", err)
		}
		scoreByIndex := make(map[int]float64, len(results))
		for _, res := range results {
			if res.Index >= 0 && res.Index < len(indexMap) {
				scoreByIndex[res.Index] = res.RelevanceScore
			}
		}
		for pos, origIdx := range indexMap {
			score := scoreByIndex[pos]
			rawScores[origIdx] = score
			r.putCache(r.chunkKey(query, chunks[origIdx].Text), score)
		}
	}

	bestRaw := rawScores[0]
	for _, s := range rawScores {
		if s > bestRaw {
			bestRaw = s
		}
	}
	lowQuality := bestRaw < r.cfg.AbsoluteRawScoreFloor

	scoreMin, scoreMax := rawScores[0], rawScores[0]
	for _, s := range rawScores {
		if s < scoreMin {
			scoreMin = s
		}
		if s > scoreMax {
			scoreMax = s
		}
	}

	scored := make([]Chunk, len(chunks))
	copy(scored, chunks)
	for i := range scored {
		var normalized float64
		if scoreMax-scoreMin > 0.01 {
			normalized = (rawScores[i] - scoreMin) / (scoreMax - scoreMin)
		} else {
			normalized = 0.5
		}
		scored[i].RerankScore = normalized
		scored[i].RerankRaw = rawScores[i]
		scored[i].LowQuality = lowQuality
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].RerankScore > scored[j].RerankScore })

	topRerankScore := 0.0
	if len(scored) > 0 {
		topRerankScore = scored[0].RerankScore
	}
	relativeThreshold := topRerankScore * r.cfg.RelativeThreshold
	keywords := extractQueryKeywords(query)

	var filtered []Chunk
	for _, c := range scored {
		keepByScore := c.RerankScore >= relativeThreshold
		keepByMinKeep := len(filtered) < r.cfg.MinKeep
		keepByKeyword := !keepByScore && !keepByMinKeep && hasQueryKeyword(c.Text, keywords)
		if keepByScore || keepByMinKeep || keepByKeyword {
			if keepByKeyword {
				c.KeptByKeyword = true
			}
			filtered = append(filtered, c)
		}
	}

	if topK > 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered, nil
}

func (r *Reranker) putCache(key string, score float64) {
	if _, exists := r.cache[key]; exists {
		r.cache[key] = score
		return
	}
	if len(r.cacheOrder) >= r.cfg.MaxCacheEntries {
		oldest := r.cacheOrder[0]
		r.cacheOrder = r.cacheOrder[1:]
		delete(r.cache, oldest)
	}
	r.cache[key] = score
	r.cacheOrder = append(r.cacheOrder, key)
}

// SkipThreshold reports the vector top score at or above which Rerank
// returns chunks without calling the backend.
func (r *Reranker) SkipThreshold() float64 {
	return r.cfg.SkipThreshold
}

// CacheStats reports hit-rate for diagnostics.
func (r *Reranker) CacheStats() (hits, misses int) {
	return r.cacheHits, r.cacheMiss
}

// ClearCache empties the score cache and resets hit/miss counters.
func (r *Reranker) ClearCache() {
	r.cache = make(map[string]float64)
	r.cacheOrder = nil
	r.cacheHits = 0
	r.cacheMiss = 0
}

func extractQueryKeywords(query string) []string {
	words := hangulWord.FindAllString(query, -1)
	var cleaned []string
	for _, w := range words {
		w = trailingParticle.ReplaceAllString(w, "")
		if len([]rune(w)) >= 2 && !stopwords[w] {
			cleaned = append(cleaned, w)
		}
	}
	return cleaned
}

func hasQueryKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
