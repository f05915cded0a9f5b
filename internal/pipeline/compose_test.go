package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-faq/internal/verify"
)

func TestMergeChunksByURLCombinesUniqueSentences(t *testing.T) {
	chunks := []Chunk{
		{URL: "u1", Text: "조식은 7시부터 제공됩니다.", Score: 0.5},
		{URL: "u1", Text: "조식은 7시부터 제공됩니다. 장소는 1층입니다.", Score: 0.8},
		{URL: "u2", Text: "주차는 발렛만 가능합니다.", Score: 0.3},
	}
	merged := mergeChunksByURL(chunks)
	require.Len(t, merged, 2)
	assert.Contains(t, merged[0].Text, "장소는 1층입니다")
	assert.Equal(t, 0.8, merged[0].Score, "the higher-scoring duplicate's score wins")
}

func TestAnyChunkHasConcreteShapeDetectsTime(t *testing.T) {
	assert.True(t, anyChunkHasConcreteShape([]Chunk{{Text: "조식은 07:00부터 제공됩니다"}}))
}

func TestAnyChunkHasConcreteShapeDetectsHotelName(t *testing.T) {
	assert.True(t, anyChunkHasConcreteShape([]Chunk{{Text: "레스케이프 호텔 소개"}}))
}

func TestAnyChunkHasConcreteShapeFalseWhenNeither(t *testing.T) {
	assert.False(t, anyChunkHasConcreteShape([]Chunk{{Text: "고급스러운 시설을 자랑합니다"}}))
}

func TestStandardCannotConfirmResponseKnownHotel(t *testing.T) {
	msg := standardCannotConfirmResponse("josun_palace")
	assert.Contains(t, msg, "조선 팰리스")
	assert.Contains(t, msg, "02-727-7200")
}

func TestStandardCannotConfirmResponseUnknownHotel(t *testing.T) {
	msg := standardCannotConfirmResponse("")
	assert.Contains(t, msg, "확인할 수 없습니다")
}

func TestExtractReferencesParsesRefMarker(t *testing.T) {
	cleaned, indexes := extractReferences("조식은 7시부터입니다. [REF:1,2]")
	assert.Equal(t, "조식은 7시부터입니다.", cleaned)
	assert.Equal(t, []int{1, 2}, indexes)
}

func TestExtractReferencesNoMarker(t *testing.T) {
	cleaned, indexes := extractReferences("조식은 7시부터입니다.")
	assert.Equal(t, "조식은 7시부터입니다.", cleaned)
	assert.Nil(t, indexes)
}

func TestSourcesFromRefsUsesIndexedChunks(t *testing.T) {
	chunks := []Chunk{{URL: "u1"}, {URL: "u2"}, {URL: "u3"}}
	sources := sourcesFromRefs(chunks, []int{2})
	assert.Equal(t, []string{"u2"}, sources)
}

func TestSourcesFromRefsFallsBackToAllWhenNoIndexes(t *testing.T) {
	chunks := []Chunk{{URL: "u1"}, {URL: "u1"}, {URL: "u2"}}
	sources := sourcesFromRefs(chunks, nil)
	assert.Equal(t, []string{"u1", "u2"}, sources)
}

func TestChunkURLsDeduplicates(t *testing.T) {
	urls := chunkURLs([]Chunk{{URL: "u1"}, {URL: "u1"}, {URL: ""}, {URL: "u2"}})
	assert.Equal(t, []string{"u1", "u2"}, urls)
}

func TestScrubCJKRemovesHanja(t *testing.T) {
	assert.Equal(t, "한글만 음", scrubCJK("한글만 南음"))
}

func TestNormalizePunctuationCollapsesEllipsisAndSpace(t *testing.T) {
	assert.Equal(t, "대기중... 확인바랍니다.", normalizePunctuation("대기중.....   확인바랍니다."))
}

func TestComposePluginWhatQuestionShortCircuitsWithoutConcreteEvidence(t *testing.T) {
	p := NewComposePlugin(NewEventManager(), nil, nil)
	rec := NewRecord("무엇을 추천하시나요?", "josun_palace", nil, nil)
	rec.NormalizedQuery = rec.Query
	rec.RetrievedChunks = []Chunk{{URL: "u1", Text: "고급스러운 시설을 자랑합니다"}}

	called := false
	err := p.OnEvent(context.Background(), AnswerCompose, rec, func() *NodeError { called = true; return nil })
	require.Nil(t, err)
	assert.True(t, called)
	assert.Contains(t, rec.Answer, "확인할 수 없습니다")
}

func TestComposePluginLLMFailedFallsBackToDirectExtraction(t *testing.T) {
	p := NewComposePlugin(NewEventManager(), nil, verify.NewVerifier(nil, nil, nil))
	rec := NewRecord("조식 시간이 어떻게 되나요?", "josun_palace", nil, nil)
	rec.NormalizedQuery = rec.Query
	rec.LLMFailed = true
	rec.RetrievedChunks = []Chunk{{URL: "u1", Text: "Q: 조식 시간이 어떻게 되나요?\nA: 오전 7시부터 10시까지입니다."}}

	err := p.OnEvent(context.Background(), AnswerCompose, rec, func() *NodeError { return nil })
	require.Nil(t, err)
	assert.Contains(t, rec.Answer, "오전 7시부터 10시까지입니다")
}
