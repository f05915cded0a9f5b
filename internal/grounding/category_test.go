package grounding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyCategoryConsistencyPassesWithNoCategory(t *testing.T) {
	c := NewCategoryChecker()
	result := c.VerifyCategoryConsistency("수영장은 지하 2층에 있습니다.", "")
	assert.True(t, result.Passed)
}

func TestVerifyCategoryConsistencyPassesForUnknownCategory(t *testing.T) {
	c := NewCategoryChecker()
	result := c.VerifyCategoryConsistency("어떤 문장입니다.", "웨딩")
	assert.True(t, result.Passed)
}

func TestVerifyCategoryConsistencyDetectsForeignKeyword(t *testing.T) {
	c := NewCategoryChecker()
	result := c.VerifyCategoryConsistency("조식은 7시부터 제공됩니다. 수영장은 24시간 운영됩니다.", "조식")
	assert.False(t, result.Passed)
	assert.Contains(t, result.ForeignKeywordsFound, "수영장")
	assert.Contains(t, result.CleanedAnswer, "조식은 7시부터 제공됩니다")
	assert.NotContains(t, result.CleanedAnswer, "수영장")
}

func TestVerifyCategoryConsistencyCleanWhenAllOwnKeywords(t *testing.T) {
	c := NewCategoryChecker()
	result := c.VerifyCategoryConsistency("조식은 7시부터 제공됩니다. 뷔페 형식입니다.", "조식")
	assert.True(t, result.Passed)
}

func TestGetCleanedAnswerFallsBackWhenTooLittleSurvives(t *testing.T) {
	c := NewCategoryChecker()
	answer, changed := c.GetCleanedAnswer("수영장은 24시간 운영됩니다.", "조식", "02-727-7200")
	assert.True(t, changed)
	assert.Contains(t, answer, "02-727-7200")
}

func TestGetCleanedAnswerNoChangeWhenConsistent(t *testing.T) {
	c := NewCategoryChecker()
	answer, changed := c.GetCleanedAnswer("조식은 7시부터 제공됩니다.", "조식", "02-727-7200")
	assert.False(t, changed)
	assert.Equal(t, "조식은 7시부터 제공됩니다.", answer)
}
