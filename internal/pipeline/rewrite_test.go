package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSelfComplete(t *testing.T) {
	assert.True(t, isSelfComplete("조선 팰리스 체크인 시간이 정확히 몇 시부터 몇 시까지인지 알려주세요"))
	assert.False(t, isSelfComplete("거기 체크인은요?"))
	assert.False(t, isSelfComplete("짧은 질문"))
}

func TestClassifyTopic(t *testing.T) {
	assert.Equal(t, "dining", classifyTopic("조식 시간이 어떻게 되나요?"))
	assert.Equal(t, "", classifyTopic("안녕하세요"))
}

func TestExtractPriorSubjectFindsMostRecentMention(t *testing.T) {
	history := []Turn{
		{Role: "user", Content: "조식 시간이 어떻게 되나요?"},
		{Role: "assistant", Content: "오전 7시부터입니다"},
		{Role: "user", Content: "그랜드 조선 부산 수영장은요?"},
	}
	subject, hotelKey := extractPriorSubject(history)
	assert.Equal(t, "수영장", subject)
	assert.Equal(t, "grand_josun_busan", hotelKey)
}

func TestRuleBasedRewritePrefixForms(t *testing.T) {
	out, ok := ruleBasedRewrite("거기서 몇 시까지 되나요?", "수영장")
	assert.True(t, ok)
	assert.Equal(t, "수영장 몇 시까지 되나요?", out)

	out, ok = ruleBasedRewrite("그럼 가격은요?", "조식")
	assert.True(t, ok)
	assert.Equal(t, "조식 가격은요?", out)

	out, ok = ruleBasedRewrite("몇 시에 끝나요?", "수영장")
	assert.True(t, ok)
	assert.Equal(t, "수영장 몇 시에 끝나요?", out)
}

func TestRuleBasedRewriteNoSubjectFails(t *testing.T) {
	_, ok := ruleBasedRewrite("거기 어때요?", "")
	assert.False(t, ok)
}

func TestRuleBasedRewriteNoMatchingForm(t *testing.T) {
	_, ok := ruleBasedRewrite("전혀 다른 문장입니다", "조식")
	assert.False(t, ok)
}

func TestTopicPresentInRecentHistory(t *testing.T) {
	history := []Turn{{Role: "user", Content: "조식 메뉴가 궁금해요"}}
	assert.True(t, topicPresentInRecentHistory("조식은 언제 끝나요?", history))
	assert.False(t, topicPresentInRecentHistory("수영장은 언제 끝나요?", history))
	assert.True(t, topicPresentInRecentHistory("안녕하세요", history), "a query with no classifiable topic is never gated")
}

func TestSelfCompleteOnOwnTopic(t *testing.T) {
	assert.True(t, selfCompleteOnOwnTopic("조식 시간이 어떻게 되나요?"))
	assert.False(t, selfCompleteOnOwnTopic("안녕하세요"))
}

func TestRewritePluginSkipsWhenNoHistory(t *testing.T) {
	p := NewRewritePlugin(NewEventManager(), nil)
	rec := NewRecord("거기 몇 시까지예요?", "", nil, nil)

	called := false
	err := p.OnEvent(context.Background(), QueryRewrite, rec, func() *NodeError { called = true; return nil })
	require.Nil(t, err)
	assert.True(t, called)
	assert.Equal(t, rec.Query, rec.RewrittenQuery, "with no history there is nothing to resolve a reference against")
}

func TestRewritePluginSkipsWhenQueryIsSelfComplete(t *testing.T) {
	p := NewRewritePlugin(NewEventManager(), nil)
	history := []Turn{{Role: "user", Content: "조식 메뉴가 궁금해요"}}
	rec := NewRecord("조선 팰리스 체크인은 몇 시부터 몇 시까지 가능한지 알려주세요", "", history, nil)

	p.OnEvent(context.Background(), QueryRewrite, rec, func() *NodeError { return nil })
	assert.Equal(t, rec.Query, rec.RewrittenQuery)
}

func TestRewritePluginAppliesRuleBasedRewrite(t *testing.T) {
	p := NewRewritePlugin(NewEventManager(), nil)
	history := []Turn{
		{Role: "user", Content: "수영장 운영시간이 어떻게 되나요?"},
		{Role: "assistant", Content: "오전 6시부터입니다"},
	}
	rec := NewRecord("거기서 수건도 주나요?", "", history, nil)

	p.OnEvent(context.Background(), QueryRewrite, rec, func() *NodeError { return nil })
	assert.Contains(t, rec.RewrittenQuery, "수영장")
}

func TestRewritePluginBareInterrogativeAnchorsToPriorSubject(t *testing.T) {
	p := NewRewritePlugin(NewEventManager(), nil)
	history := []Turn{{Role: "user", Content: "조식 메뉴가 궁금해요"}}
	rec := NewRecord("어디인가요", "", history, nil)

	p.OnEvent(context.Background(), QueryRewrite, rec, func() *NodeError { return nil })
	assert.Equal(t, "조식 어디인가요", rec.RewrittenQuery)
}
