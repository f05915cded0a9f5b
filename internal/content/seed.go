// Package content provides a small, illustrative set of FAQ passages for
// the five covered hotels, used to seed vectorindex.MemoryIndex in
// environments that have no real vector database wired up yet. Crawling and
// indexing the hotels' actual sites is out of scope; a deployment that needs
// live content swaps the container's vectorindex.Index provider for one
// backed by a real store instead of extending this file.
package content

import "hotel-faq/internal/vectorindex"

// Seed returns the built-in sample corpus.
func Seed() []vectorindex.Document {
	return seedDocs
}

var seedDocs = []vectorindex.Document{
	{
		ChunkID: "josun_palace-dining-1", DocID: "josun_palace-dining",
		Hotel: "josun_palace", HotelName: "조선 팰리스", PageType: "faq",
		URL: "https://www.josunpalace.com/dining", Category: "dining", Language: "ko",
		UpdatedAt: "2026-01-10", ChunkIndex: 0,
		Text: "Q: 조식 시간은 어떻게 되나요? A: 콘스탄스 조식은 매일 06:30부터 10:30까지 운영됩니다.",
	},
	{
		ChunkID: "josun_palace-rooms-1", DocID: "josun_palace-rooms",
		Hotel: "josun_palace", HotelName: "조선 팰리스", PageType: "faq",
		URL: "https://www.josunpalace.com/rooms", Category: "rooms", Language: "ko",
		UpdatedAt: "2026-01-10", ChunkIndex: 0,
		Text: "Q: 체크인, 체크아웃 시간은 언제인가요? A: 체크인은 15:00부터, 체크아웃은 12:00까지입니다.",
	},
	{
		ChunkID: "josun_palace-parking-1", DocID: "josun_palace-parking",
		Hotel: "josun_palace", HotelName: "조선 팰리스", PageType: "faq",
		URL: "https://www.josunpalace.com/parking", Category: "parking", Language: "ko",
		UpdatedAt: "2026-01-10", ChunkIndex: 0,
		Text: "Q: 발렛 주차 요금은 얼마인가요? A: 투숙객은 1박 기준 발렛 주차가 무료로 제공됩니다.",
	},
	{
		ChunkID: "grand_josun_seoul-pool-1", DocID: "grand_josun_seoul-pool",
		Hotel: "grand_josun_seoul", HotelName: "그랜드 조선 서울", PageType: "faq",
		URL: "https://www.grandjosun.com/seoul/pool", Category: "pool", Language: "ko",
		UpdatedAt: "2026-01-12", ChunkIndex: 0,
		Text: "Q: 수영장 운영시간이 어떻게 되나요? A: 실내 수영장은 06:00부터 22:00까지 투숙객 전용으로 운영됩니다.",
	},
	{
		ChunkID: "grand_josun_seoul-fitness-1", DocID: "grand_josun_seoul-fitness",
		Hotel: "grand_josun_seoul", HotelName: "그랜드 조선 서울", PageType: "faq",
		URL: "https://www.grandjosun.com/seoul/fitness", Category: "fitness", Language: "ko",
		UpdatedAt: "2026-01-12", ChunkIndex: 0,
		Text: "Q: 피트니스 센터와 사우나는 몇 시까지 이용 가능한가요? A: 피트니스 센터는 05:00부터 23:00까지, 사우나는 객실 투숙객에 한해 동일 시간 이용 가능합니다.",
	},
	{
		ChunkID: "grand_josun_seoul-transport-1", DocID: "grand_josun_seoul-transport",
		Hotel: "grand_josun_seoul", HotelName: "그랜드 조선 서울", PageType: "faq",
		URL: "https://www.grandjosun.com/seoul/location", Category: "transport", Language: "ko",
		UpdatedAt: "2026-01-12", ChunkIndex: 0,
		Text: "Q: 지하철로 어떻게 오나요? A: 지하철 2호선 을지로입구역 3번 출구에서 도보 5분 거리입니다.",
	},
	{
		ChunkID: "grand_josun_busan-dining-1", DocID: "grand_josun_busan-dining",
		Hotel: "grand_josun_busan", HotelName: "그랜드 조선 부산", PageType: "faq",
		URL: "https://www.grandjosun.com/busan/dining", Category: "dining", Language: "ko",
		UpdatedAt: "2026-01-15", ChunkIndex: 0,
		Text: "Q: 뷔페 레스토랑 디너 가격은 얼마인가요? A: 오키친 디너 뷔페는 1인 89,000원입니다.",
	},
	{
		ChunkID: "grand_josun_busan-pet-1", DocID: "grand_josun_busan-pet",
		Hotel: "grand_josun_busan", HotelName: "그랜드 조선 부산", PageType: "faq",
		URL: "https://www.grandjosun.com/busan/policy", Category: "pet", Language: "ko",
		UpdatedAt: "2026-01-15", ChunkIndex: 0,
		Text: "Q: 반려동물 동반 투숙이 가능한가요? A: 일부 지정 객실에 한해 소형견 동반 투숙이 가능하며 사전 예약이 필요합니다.",
	},
	{
		ChunkID: "grand_josun_jeju-wedding-1", DocID: "grand_josun_jeju-wedding",
		Hotel: "grand_josun_jeju", HotelName: "그랜드 조선 제주", PageType: "faq",
		URL: "https://www.grandjosun.com/jeju/wedding", Category: "wedding", Language: "ko",
		UpdatedAt: "2026-01-18", ChunkIndex: 0,
		Text: "Q: 웨딩 연회장 최대 수용 인원은 몇 명인가요? A: 그랜드 볼룸은 최대 300명까지 착석 가능합니다.",
	},
	{
		ChunkID: "grand_josun_jeju-reservation-1", DocID: "grand_josun_jeju-reservation",
		Hotel: "grand_josun_jeju", HotelName: "그랜드 조선 제주", PageType: "faq",
		URL: "https://www.grandjosun.com/jeju/reservation", Category: "reservation", Language: "ko",
		UpdatedAt: "2026-01-18", ChunkIndex: 0,
		Text: "Q: 예약을 취소하면 환불이 되나요? A: 체크인 3일 전까지 취소 시 전액 환불, 이후에는 1박 요금이 차감됩니다.",
	},
	{
		ChunkID: "lescape-contact-1", DocID: "lescape-contact",
		Hotel: "lescape", HotelName: "레스케이프", PageType: "faq",
		URL: "https://www.lescapehotel.com/contact", Category: "contact", Language: "ko",
		UpdatedAt: "2026-01-20", ChunkIndex: 0,
		Text: "Q: 프런트 데스크 전화번호가 어떻게 되나요? A: 레스케이프 프런트 데스크는 02-317-9000으로 24시간 연결됩니다.",
	},
	{
		ChunkID: "lescape-location-1", DocID: "lescape-location",
		Hotel: "lescape", HotelName: "레스케이프", PageType: "faq",
		URL: "https://www.lescapehotel.com/location", Category: "location", Language: "ko",
		UpdatedAt: "2026-01-20", ChunkIndex: 0,
		Text: "Q: 호텔 주소와 오시는 길을 알려주세요. A: 서울 중구 퇴계로 67, 명동역 3번 출구에서 도보 3분 거리입니다.",
	},
	{
		ChunkID: "lescape-rooms-1", DocID: "lescape-rooms",
		Hotel: "lescape", HotelName: "레스케이프", PageType: "faq",
		URL: "https://www.lescapehotel.com/rooms", Category: "rooms", Language: "ko",
		UpdatedAt: "2026-01-20", ChunkIndex: 0,
		Text: "Q: 얼리 체크인이 가능한가요? A: 객실 상황에 따라 가능하며, 전일 18시 이후 프런트로 문의 시 확정해 드립니다.",
	},
}
