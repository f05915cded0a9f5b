package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-faq/internal/entity"
	"hotel-faq/internal/session"
)

func runClarify(t *testing.T, rec *Record) {
	t.Helper()
	p := NewClarifyPlugin(NewEventManager())
	called := false
	err := p.OnEvent(context.Background(), ClarificationCheck, rec, func() *NodeError { called = true; return nil })
	require.Nil(t, err)
	require.True(t, called)
}

func TestClarifyPluginRestaurantEntityTakesPriority(t *testing.T) {
	rec := NewRecord("포트아일랜드 메뉴가 궁금해요", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	rec.RestaurantEntity = entity.Resolution{
		Action:         entity.ActionClarify,
		Message:        "어느 호텔인가요?",
		ClarifyOptions: []string{"a", "b"},
	}
	runClarify(t, rec)
	assert.True(t, rec.NeedsClarification)
	assert.Equal(t, "restaurant", rec.ClarificationType)
	assert.Equal(t, "어느 호텔인가요?", rec.ClarificationQuestion)
}

func TestClarifyPluginSkipsWhenAlreadyClarifiedThisTopic(t *testing.T) {
	rec := NewRecord("반려동물 동반 가능한가요?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	rec.SessionContext = &session.Context{ClarificationTopic: "pet"}
	runClarify(t, rec)
	assert.False(t, rec.NeedsClarification)
}

func TestClarifyPluginContextClarificationAsksWhenAmbiguous(t *testing.T) {
	rec := NewRecord("반려동물 같이 가도 되나요?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	runClarify(t, rec)
	assert.True(t, rec.NeedsClarification)
	assert.Equal(t, "pet", rec.ClarificationType)
}

func TestClarifyPluginContextClarificationSkipsWithSpecificTarget(t *testing.T) {
	rec := NewRecord("반려동물 동반 조식 가능한가요?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	runClarify(t, rec)
	assert.False(t, rec.NeedsClarification, "a concrete target (조식) resolves the ambiguity")
}

func TestClarifyPluginContextClarificationSkipsWithDirectTrigger(t *testing.T) {
	rec := NewRecord("반려동물 동반 가능한가요?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	runClarify(t, rec)
	assert.False(t, rec.NeedsClarification, "동반/가능한가요 are direct-trigger question forms that need no further clarification")
}

func TestClarifyPluginAmbiguousPriceAsksWithoutSubject(t *testing.T) {
	rec := NewRecord("가격 얼마?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	runClarify(t, rec)
	assert.True(t, rec.NeedsClarification)
	assert.Equal(t, "price", rec.ClarificationType)
}

func TestClarifyPluginAmbiguousPriceSkipsWithExcludedKeyword(t *testing.T) {
	rec := NewRecord("객실 가격이 얼마인가요?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	runClarify(t, rec)
	assert.False(t, rec.NeedsClarification, "객실 is in the price pattern's Exclude list")
}

func TestClarifyPluginTransportAmbiguitySkipsClarification(t *testing.T) {
	rec := NewRecord("셔틀버스 가격이 얼마인가요?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	runClarify(t, rec)
	assert.False(t, rec.NeedsClarification, "transport ambiguity is handled downstream, not here")
}

func TestClarifyPluginNoMatchNeedsNoClarification(t *testing.T) {
	rec := NewRecord("조식 시간이 어떻게 되나요?", "", nil, nil)
	rec.NormalizedQuery = rec.Query
	runClarify(t, rec)
	assert.False(t, rec.NeedsClarification)
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("조식 문의드립니다", []string{"조식", "수영장"}))
	assert.False(t, containsAny("안녕하세요", []string{"조식", "수영장"}))
}

func TestExtractSubjectEntity(t *testing.T) {
	subject := extractSubjectEntity("가격이 수영장 이용료 얼마인가요", []string{"가격", "얼마"})
	assert.Equal(t, "수영장", subject, "the first token of the longest length wins ties")
}

func TestExtractSubjectEntityFiltersGenericWords(t *testing.T) {
	subject := extractSubjectEntity("가격이 궁금", []string{"가격"})
	assert.Empty(t, subject)
}

func TestAlreadyClarifiedFalseWithoutSessionContext(t *testing.T) {
	rec := &Record{NormalizedQuery: "반려동물 가능한가요"}
	assert.False(t, alreadyClarified(rec))
}
