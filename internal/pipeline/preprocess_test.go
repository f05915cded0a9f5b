package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-faq/internal/entity"
)

func TestNormalizeQueryCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "조식 시간", normalizeQuery("  조식   시간  "))
}

func TestDetectLanguageKorean(t *testing.T) {
	assert.Equal(t, "ko", detectLanguage("조식은 언제 제공되나요?"))
}

func TestDetectLanguageEnglish(t *testing.T) {
	assert.Equal(t, "en", detectLanguage("what time is breakfast?"))
}

func TestDetectLanguageEmptyDefaultsToKorean(t *testing.T) {
	assert.Equal(t, "ko", detectLanguage(""))
}

func TestDetectHotelPrefersLongestAlias(t *testing.T) {
	assert.Equal(t, "grand_josun_seoul", detectHotel("그랜드 조선 서울 조식 시간"))
}

func TestDetectHotelNoMatch(t *testing.T) {
	assert.Equal(t, "", detectHotel("조식 시간이 어떻게 되나요?"))
}

func TestDetectCategory(t *testing.T) {
	assert.Equal(t, "dining", detectCategory("조식 시간이 어떻게 되나요?"))
	assert.Equal(t, "", detectCategory("안녕하세요"))
}

func TestIsValidQueryRejectsPunctuationOnly(t *testing.T) {
	assert.False(t, isValidQuery("???", nil))
}

func TestIsValidQueryRejectsTooShort(t *testing.T) {
	assert.False(t, isValidQuery("a", nil))
}

func TestIsValidQueryAcceptsWithHistoryRegardlessOfKeywords(t *testing.T) {
	assert.True(t, isValidQuery("그건 어때요", []Turn{{Role: "user", Content: "조식 문의"}}))
}

func TestIsValidQueryRequiresKeywordWithoutHistory(t *testing.T) {
	assert.False(t, isValidQuery("오늘 날씨 어때요", nil))
	assert.True(t, isValidQuery("조식 시간 알려주세요", nil))
}

func TestPreprocessPluginSetsDetectedFields(t *testing.T) {
	p := NewPreprocessPlugin(NewEventManager(), nil)
	rec := NewRecord("조선 팰리스 조식 시간이 어떻게 되나요?", "", nil, nil)
	rec.RewrittenQuery = rec.Query

	called := false
	err := p.OnEvent(context.Background(), Preprocess, rec, func() *NodeError { called = true; return nil })
	require.Nil(t, err)
	assert.True(t, called)
	assert.Equal(t, "josun_palace", rec.DetectedHotel)
	assert.Equal(t, "dining", rec.DetectedCategory)
	assert.True(t, rec.IsValidQuery)
}

func TestPreprocessPluginKeepsExplicitHotel(t *testing.T) {
	p := NewPreprocessPlugin(NewEventManager(), nil)
	rec := NewRecord("조식 시간이 어떻게 되나요?", "lescape", nil, nil)
	rec.RewrittenQuery = rec.Query

	p.OnEvent(context.Background(), Preprocess, rec, func() *NodeError { return nil })
	assert.Equal(t, "lescape", rec.DetectedHotel)
}

func TestPreprocessPluginResolvesRedirectWithResolver(t *testing.T) {
	p := NewPreprocessPlugin(NewEventManager(), entity.NewDefaultResolver())
	rec := NewRecord("아리아 영업시간 알려주세요", "josun_palace", nil, nil)
	rec.RewrittenQuery = rec.Query

	p.OnEvent(context.Background(), Preprocess, rec, func() *NodeError { return nil })
	assert.Equal(t, entity.ActionRedirect, rec.RestaurantEntity.Action)
	assert.Equal(t, "grand_josun_busan", rec.DetectedHotel, "a redirect resolution must override the detected hotel")
}

func TestPreprocessPluginFallsBackToOriginalQueryWhenNotRewritten(t *testing.T) {
	p := NewPreprocessPlugin(NewEventManager(), nil)
	rec := NewRecord("조식 시간", "", nil, nil)
	// RewrittenQuery left empty, as if queryRewrite never ran
	p.OnEvent(context.Background(), Preprocess, rec, func() *NodeError { return nil })
	assert.Equal(t, "조식 시간", rec.NormalizedQuery)
}
