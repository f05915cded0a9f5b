package grounding

import (
	"fmt"
	"strings"
)

// CategoryResult is the outcome of checking an answer for cross-category
// contamination against the conversation's active topic.
type CategoryResult struct {
	Passed               bool
	ContaminatedSentences []string
	ForeignKeywordsFound  []string
	CleanedAnswer        string
	Reason               string
}

type categoryKeywords struct {
	own     []string
	foreign []string
}

// exclusiveKeywords lists, per conversation topic, the keywords that belong
// to it ("own") and the keywords that belong to a different topic entirely
// ("foreign") — a sentence mentioning a foreign keyword is cross-category
// contamination regardless of how it got there (model drift or a
// wrongly-retrieved chunk).
var exclusiveKeywords = map[string]categoryKeywords{
	"조식": {
		own:     []string{"조식", "breakfast", "뷔페", "아침", "아침식사", "모닝"},
		foreign: []string{"수영장", "풀", "pool", "피트니스", "헬스", "gym", "스파", "사우나", "주차", "parking", "발렛", "19세", "성인", "입장료", "탈의실", "락커"},
	},
	"다이닝": {
		own:     []string{"레스토랑", "식당", "다이닝", "저녁", "점심", "런치", "디너", "메뉴"},
		foreign: []string{"수영장", "풀", "pool", "피트니스", "헬스", "gym", "스파", "사우나", "주차", "parking", "발렛", "19세", "성인", "입장료", "탈의실", "락커"},
	},
	"수영장": {
		own:     []string{"수영", "수영장", "풀", "pool", "swimming", "물", "인피니티", "탈의실", "락커", "수모", "수영복"},
		foreign: []string{"조식", "breakfast", "뷔페", "아침식사", "주차", "parking", "발렛"},
	},
	"부대시설": {
		own:     []string{"수영", "수영장", "피트니스", "헬스", "사우나", "스파", "gym", "pool", "운동"},
		foreign: []string{"조식", "breakfast", "뷔페", "아침식사", "주차", "parking", "발렛"},
	},
	"피트니스": {
		own:     []string{"피트니스", "헬스", "gym", "fitness", "운동", "트레이닝", "기구"},
		foreign: []string{"조식", "breakfast", "뷔페", "수영장", "pool", "주차", "parking"},
	},
	"스파": {
		own:     []string{"스파", "spa", "마사지", "massage", "사우나", "트리트먼트", "테라피"},
		foreign: []string{"조식", "breakfast", "주차", "parking", "수영장", "pool"},
	},
	"주차": {
		own:     []string{"주차", "parking", "발렛", "valet", "파킹", "차량", "대"},
		foreign: []string{"조식", "breakfast", "뷔페", "수영장", "pool", "피트니스", "gym", "19세", "성인"},
	},
	"체크인/아웃": {
		own:     []string{"체크인", "체크아웃", "입실", "퇴실", "check-in", "check-out", "시", "분"},
		foreign: []string{"수영장", "pool", "피트니스", "조식", "breakfast", "19세", "성인"},
	},
	"객실": {
		own:     []string{"객실", "방", "room", "침대", "bed", "뷰", "전망", "스위트", "디럭스"},
		foreign: []string{"수영장", "pool", "피트니스", "gym", "19세", "성인", "입장료"},
	},
	"반려동물": {
		own:     []string{"반려", "pet", "펫", "강아지", "반려견", "애견", "동물", "dog"},
		foreign: []string{"수영장", "pool", "조식", "breakfast", "19세", "성인"},
	},
}

// CategoryChecker detects and strips sentences that belong to a different
// topic than the one the conversation is currently on.
type CategoryChecker struct{}

// NewCategoryChecker builds a stateless CategoryChecker.
func NewCategoryChecker() *CategoryChecker { return &CategoryChecker{} }

// VerifyCategoryConsistency reports whether every sentence of answer
// belongs to targetCategory, sentence-splitting and flagging each one that
// mentions a keyword exclusive to a different topic.
func (c *CategoryChecker) VerifyCategoryConsistency(answer, targetCategory string) CategoryResult {
	if targetCategory == "" || answer == "" {
		return CategoryResult{Passed: true, Reason: "no category or answer to check"}
	}

	kws, ok := exclusiveKeywords[targetCategory]
	if !ok {
		return CategoryResult{Passed: true, Reason: fmt.Sprintf("no keyword table for category %q", targetCategory)}
	}

	var contaminated, clean, foreignFound []string
	foreignSeen := map[string]bool{}

	for _, sentence := range splitSentences(answer) {
		sentence = strings.TrimSpace(sentence)
		if len([]rune(sentence)) < 3 {
			continue
		}
		sentenceLower := strings.ToLower(sentence)

		isContaminated := false
		for _, fk := range kws.foreign {
			if strings.Contains(sentenceLower, strings.ToLower(fk)) {
				isContaminated = true
				if !foreignSeen[fk] {
					foreignSeen[fk] = true
					foreignFound = append(foreignFound, fk)
				}
				contaminated = append(contaminated, sentence)
				break
			}
		}
		if !isContaminated {
			clean = append(clean, sentence)
		}
	}

	if len(contaminated) > 0 {
		cleanedAnswer := ""
		if len(clean) > 0 {
			cleanedAnswer = strings.Join(clean, ". ") + "."
		}
		return CategoryResult{
			Passed:                false,
			ContaminatedSentences: contaminated,
			ForeignKeywordsFound:  foreignFound,
			CleanedAnswer:         cleanedAnswer,
			Reason:                fmt.Sprintf("cross-category keywords found: %s", strings.Join(foreignFound, ", ")),
		}
	}

	return CategoryResult{Passed: true, CleanedAnswer: answer, Reason: "category consistent"}
}

// GetCleanedAnswer returns answer (or its contamination-stripped form, or a
// contact-guide fallback if stripping leaves too little) plus whether any
// cleaning was applied.
func (c *CategoryChecker) GetCleanedAnswer(answer, targetCategory, contactGuide string) (string, bool) {
	result := c.VerifyCategoryConsistency(answer, targetCategory)
	if result.Passed {
		return answer, false
	}

	if len([]rune(result.CleanedAnswer)) < 10 {
		fallback := "죄송합니다, 해당 내용에 대한 정확한 정보를 찾을 수 없습니다."
		if contactGuide != "" {
			fallback += fmt.Sprintf("\n자세한 사항은 %s로 문의 부탁드립니다.", contactGuide)
		}
		return fallback, true
	}

	return result.CleanedAnswer, true
}
