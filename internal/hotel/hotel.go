// Package hotel holds the static, code-embedded configuration entities for
// the five covered properties: per-hotel contact info, detection keyword
// tables, synonym expansion, and the restaurant-alias index used by entity
// resolution. Everything here is loaded once at startup and treated as
// immutable afterward.
package hotel

// Info is one hotel's contact/display record.
type Info struct {
	Key         string
	Name        string
	Phone       string
	LocationURL string
	Domain      string
}

// Keys are the five covered hotel properties, in a stable display order.
var Keys = []string{
	"josun_palace",
	"grand_josun_seoul",
	"grand_josun_busan",
	"grand_josun_jeju",
	"lescape",
}

// HotelInfo maps a hotel key to its contact/display record.
var HotelInfo = map[string]Info{
	"josun_palace": {
		Key: "josun_palace", Name: "조선 팰리스",
		Phone: "02-727-7200", LocationURL: "https://www.josunpalace.com/location",
		Domain: "josunpalace.com",
	},
	"grand_josun_seoul": {
		Key: "grand_josun_seoul", Name: "그랜드 조선 서울",
		Phone: "02-317-4000", LocationURL: "https://www.grandjosun.com/seoul/location",
		Domain: "grandjosun.com",
	},
	"grand_josun_busan": {
		Key: "grand_josun_busan", Name: "그랜드 조선 부산",
		Phone: "051-721-1100", LocationURL: "https://www.grandjosun.com/busan/location",
		Domain: "grandjosun.com",
	},
	"grand_josun_jeju": {
		Key: "grand_josun_jeju", Name: "그랜드 조선 제주",
		Phone: "064-735-7000", LocationURL: "https://www.grandjosun.com/jeju/location",
		Domain: "grandjosun.com",
	},
	"lescape": {
		Key: "lescape", Name: "레스케이프",
		Phone: "02-317-9000", LocationURL: "https://www.lescapehotel.com/location",
		Domain: "lescapehotel.com",
	},
}

// HotelKeywords maps a hotel key to its detection aliases, longest first.
// preprocess walks these to resolve a bare-mentioned hotel name in a query.
var HotelKeywords = map[string][]string{
	"josun_palace":       {"조선 팰리스", "조선팰리스", "팰리스"},
	"grand_josun_seoul":  {"그랜드 조선 서울", "그랜드조선서울", "조선 서울", "조선서울"},
	"grand_josun_busan":  {"그랜드 조선 부산", "그랜드조선부산", "조선 부산", "조선부산"},
	"grand_josun_jeju":   {"그랜드 조선 제주", "그랜드조선제주", "조선 제주", "조선제주"},
	"lescape":            {"레스케이프", "르스케이프"},
}

// CategoryKeywords maps a category name to its detection keywords. preprocess,
// queryRewrite and retrieve consume this table; the category-contamination
// checker in internal/grounding keeps its own keyword table.
var CategoryKeywords = map[string][]string{
	"dining":      {"조식", "레스토랑", "식당", "뷔페", "다이닝", "브런치", "디너"},
	"rooms":       {"객실", "룸", "방", "숙박", "체크인", "체크아웃"},
	"pool":        {"수영장", "풀", "워터파크"},
	"fitness":     {"피트니스", "헬스장", "사우나", "스파"},
	"parking":     {"주차", "발렛"},
	"pet":         {"반려동물", "애완동물", "강아지", "고양이"},
	"reservation": {"예약", "예약번호", "취소", "환불"},
	"transport":   {"셔틀", "지하철", "버스", "택시", "교통", "기차"},
	"wedding":     {"웨딩", "결혼식", "연회장"},
	"contact":     {"전화번호", "연락처", "문의"},
	"location":    {"위치", "오시는 길", "주소"},
}

// SynonymDict expands a keyword with closely related terms. retrieve appends
// at most 3 of these (longest entry only, in declared order) to the search
// query.
var SynonymDict = map[string][]string{
	"조식":   {"아침식사", "브렉퍼스트"},
	"수영장":  {"풀", "워터파크"},
	"주차":   {"발렛파킹", "주차장"},
	"반려동물": {"애완동물", "펫"},
	"체크인":  {"입실", "투숙"},
}

// SuspiciousPattern pairs a regex source with a human label. policyFilter
// refuses queries that match one; the answer verifier flags matches in an
// answer that the supporting context does not contain.
type SuspiciousPattern struct {
	Pattern string
	Label   string
}

// SuspiciousPatterns flag PII-adjacent asks that must be refused outright
// regardless of retrieval outcome.
var SuspiciousPatterns = []SuspiciousPattern{
	{Pattern: `예약\s*번호`, Label: "reservation-number"},
	{Pattern: `카드\s*번호`, Label: "card-number"},
	{Pattern: `주민\s*등록\s*번호`, Label: "resident-id"},
	{Pattern: `비밀\s*번호`, Label: "password"},
}

// ForbiddenKeywords are scrubbed from any final answer text regardless of
// where they came from (model hallucination or a pasted-through chunk).
var ForbiddenKeywords = []string{
	"내부 오류", "죄송합니다만 시스템", "스택 트레이스",
}

// AmbiguousPattern describes a query shape that requires a clarification
// unless a concrete subject can be extracted from the query itself.
type AmbiguousPattern struct {
	Keywords  []string
	Exclude   []string
	Question  string
	Options   []string
	Type      string
}

// AmbiguousPatterns drive clarificationCheck step 7.
var AmbiguousPatterns = []AmbiguousPattern{
	{
		Keywords: []string{"가격", "요금", "얼마"},
		Exclude:  []string{"주차", "조식", "객실"},
		Question: "어떤 항목의 가격이 궁금하신가요?",
		Options:  []string{"객실 요금", "조식 가격", "주차 요금"},
		Type:     "price",
	},
	{
		Keywords: []string{"시간"},
		Exclude:  []string{"조식", "체크인", "체크아웃", "수영장", "피트니스"},
		Question: "어느 시설의 운영 시간이 궁금하신가요?",
		Options:  []string{"조식 시간", "체크인 시간", "수영장 운영시간"},
		Type:     "time",
	},
}

// ContextClarificationEntry is one entry in ContextClarification: a
// context-triggering keyword set paired with direct-trigger question forms
// and a tailored clarification question.
type ContextClarificationEntry struct {
	Context        string
	TriggerKeyword []string
	DirectTrigger  []string
	Question       string
	Options        []string
}

// ContextClarification drives clarificationCheck steps 3-5.
var ContextClarification = []ContextClarificationEntry{
	{
		Context:        "pet",
		TriggerKeyword: []string{"반려동물", "애완동물", "강아지", "고양이"},
		DirectTrigger:  []string{"정책", "가능한가요", "동반"},
		Question:       "반려동물 동반 투숙에 대해 궁금하신가요, 아니면 반려동물 동반 레스토랑 이용이 궁금하신가요?",
		Options:        []string{"반려동물 동반 투숙", "반려동물 동반 식사"},
	},
	{
		Context:        "child",
		TriggerKeyword: []string{"아이", "어린이", "유아"},
		DirectTrigger:  []string{"요금", "가능한가요", "동반"},
		Question:       "어린이 동반 관련해서 객실 요금이 궁금하신가요, 아니면 부대시설 이용이 궁금하신가요?",
		Options:        []string{"어린이 객실 요금", "어린이 부대시설 이용"},
	},
}

// RestaurantEntry is one {restaurant, hotel} pair reachable from an alias.
type RestaurantEntry struct {
	Restaurant string
	HotelID    string
}

// RestaurantAliasIndex maps a lowercase restaurant alias to every hotel it
// can be found at. EntityResolver walks this, longest alias first.
var RestaurantAliasIndex = map[string][]RestaurantEntry{
	"아리아": {
		{Restaurant: "아리아(부산)", HotelID: "grand_josun_busan"},
	},
	"화목": {
		{Restaurant: "화목", HotelID: "josun_palace"},
	},
	"포트아일랜드": {
		{Restaurant: "포트아일랜드", HotelID: "grand_josun_busan"},
		{Restaurant: "포트아일랜드", HotelID: "grand_josun_jeju"},
	},
}
