package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel-faq/internal/hotel"
)

func newTestVerifier() *Verifier {
	return NewVerifier(nil, nil, nil)
}

func TestNewVerifierAppliesDefaults(t *testing.T) {
	v := newTestVerifier()
	assert.NotNil(t, v.knownNames)
	assert.NotEmpty(t, v.forbiddenPhrases)
	assert.Equal(t, hotel.SuspiciousPatterns, v.suspiciousPatterns)
}

func TestCheckResponseQualityFlagsShortAnswer(t *testing.T) {
	v := newTestVerifier()
	ok, issues := v.CheckResponseQuality("네")
	assert.False(t, ok)
	assert.Contains(t, issues, "abnormal: answer too short")
}

func TestCheckResponseQualityFlagsForbiddenPhrase(t *testing.T) {
	v := newTestVerifier()
	ok, issues := v.CheckResponseQuality("추가로 궁금하신가요? 더 필요하신 것 있으시면 말씀해주세요")
	assert.False(t, ok)
	assert.NotEmpty(t, issues)
}

func TestCheckResponseQualityPassesOnNormalAnswer(t *testing.T) {
	v := newTestVerifier()
	ok, issues := v.CheckResponseQuality("조식은 오전 7시부터 10시까지 1층 레스토랑에서 제공됩니다.")
	assert.True(t, ok, "issues: %v", issues)
}

func TestCheckHallucinationFlagsUnverifiedNumber(t *testing.T) {
	v := newTestVerifier()
	ok, issues := v.CheckHallucination("1박에 300,000원입니다", "객실 요금은 문의 바랍니다.")
	assert.False(t, ok)
	assert.NotEmpty(t, issues)
}

func TestCheckHallucinationPassesWhenNumberInContext(t *testing.T) {
	v := newTestVerifier()
	ok, _ := v.CheckHallucination("1박에 300,000원입니다", "스탠다드 객실 요금은 300,000원입니다.")
	assert.True(t, ok)
}

func TestCheckHotelCrossContaminationStripsOtherHotel(t *testing.T) {
	v := newTestVerifier()
	answer := "조식은 7시부터 제공됩니다. 그랜드 조선 부산도 비슷한 시간대에 운영됩니다."
	ok, issues, cleaned := v.CheckHotelCrossContamination(answer, "조식은 7시부터 제공됩니다.", "josun_palace")
	assert.False(t, ok)
	assert.NotEmpty(t, issues)
	assert.NotContains(t, cleaned, "그랜드 조선 부산")
}

func TestCheckHotelCrossContaminationNoTargetPasses(t *testing.T) {
	v := newTestVerifier()
	ok, issues, cleaned := v.CheckHotelCrossContamination("아무 내용", "컨텍스트", "")
	assert.True(t, ok)
	assert.Empty(t, issues)
	assert.Equal(t, "아무 내용", cleaned)
}

func TestCheckPhoneHallucinationFlagsUnknownNumber(t *testing.T) {
	v := newTestVerifier()
	ok, issues, cleaned := v.CheckPhoneHallucination("문의는 010-1234-5678로 해주세요.", "문의 관련 내용.")
	assert.False(t, ok)
	assert.NotEmpty(t, issues)
	assert.NotContains(t, cleaned, "010-1234-5678")
}

func TestCheckPhoneHallucinationAllowsKnownHotelNumber(t *testing.T) {
	v := newTestVerifier()
	ok, issues, cleaned := v.CheckPhoneHallucination("문의는 02-727-7200로 해주세요.", "문의 관련 내용.")
	assert.True(t, ok)
	assert.Empty(t, issues)
	assert.Contains(t, cleaned, "02-727-7200")
}

func TestCheckURLHallucinationFlagsUnknownDomain(t *testing.T) {
	v := newTestVerifier()
	ok, issues, cleaned := v.CheckURLHallucination("자세한 내용은 https://evil.example.com 를 참고하세요.", "컨텍스트")
	assert.False(t, ok)
	assert.NotEmpty(t, issues)
	assert.NotContains(t, cleaned, "evil.example.com")
}

func TestCheckURLHallucinationAllowsKnownDomain(t *testing.T) {
	v := newTestVerifier()
	ok, _, cleaned := v.CheckURLHallucination("자세한 내용은 https://www.josunpalace.com/location 를 참고하세요.", "컨텍스트")
	assert.True(t, ok)
	assert.Contains(t, cleaned, "josunpalace.com")
}

func TestCheckPriceDigitManipulationFlagsTenXRatio(t *testing.T) {
	v := newTestVerifier()
	ok, issues := v.CheckPriceDigitManipulation("가격은 3,000,000원입니다.", "가격은 300,000원입니다.")
	assert.False(t, ok)
	assert.NotEmpty(t, issues)
}

func TestCheckPriceDigitManipulationPassesOnMatchingPrice(t *testing.T) {
	v := newTestVerifier()
	ok, issues := v.CheckPriceDigitManipulation("가격은 300,000원입니다.", "가격은 300,000원입니다.")
	assert.True(t, ok)
	assert.Empty(t, issues)
}

func TestRemoveForbiddenPhrasesStripsConfiguredPhrases(t *testing.T) {
	v := NewVerifier(nil, nil, nil)
	cleaned := v.RemoveForbiddenPhrases("조식은 7시부터 제공됩니다. 더 궁금하신가요?")
	assert.NotContains(t, cleaned, "궁금하신가요")
	assert.Contains(t, cleaned, "조식은 7시부터 제공됩니다")
}

func TestExtractDirectAnswerFromQAFormat(t *testing.T) {
	v := newTestVerifier()
	answer := v.ExtractDirectAnswer("Q: 조식 시간이 어떻게 되나요?\nA: 오전 7시부터 10시까지입니다.\nQ: 다른 질문")
	assert.Equal(t, "오전 7시부터 10시까지입니다.", answer)
}

func TestExtractDirectAnswerReturnsEmptyWhenNothingFound(t *testing.T) {
	v := newTestVerifier()
	answer := v.ExtractDirectAnswer("관련 없는 텍스트")
	assert.Empty(t, answer)
}
