package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel-faq/internal/hotel"
)

func TestResolveNoMention(t *testing.T) {
	r := NewDefaultResolver()
	res := r.Resolve("체크인 시간이 어떻게 되나요?", "")
	assert.Equal(t, ActionNone, res.Action)
}

func TestResolveProceedsWhenRestaurantMatchesCurrentHotel(t *testing.T) {
	r := NewDefaultResolver()
	res := r.Resolve("화목 예약 가능한가요?", "josun_palace")
	assert.Equal(t, ActionProceed, res.Action)
	assert.Equal(t, "josun_palace", res.TargetHotel)
	assert.Equal(t, "화목", res.RestaurantName)
}

func TestResolveRedirectsToSingleOwningHotel(t *testing.T) {
	r := NewDefaultResolver()
	res := r.Resolve("아리아 영업시간 알려주세요", "josun_palace")
	assert.Equal(t, ActionRedirect, res.Action)
	assert.Equal(t, "grand_josun_busan", res.TargetHotel)
	assert.Equal(t, "아리아", res.RestaurantName, "the (부산) disambiguation suffix is stripped for display")
	assert.Contains(t, res.Message, hotel.HotelInfo["grand_josun_busan"].Name)
}

func TestResolveClarifiesWhenSharedAcrossHotels(t *testing.T) {
	r := NewDefaultResolver()
	res := r.Resolve("포트아일랜드 메뉴가 궁금해요", "")
	assert.Equal(t, ActionClarify, res.Action)
	assert.Len(t, res.ClarifyOptions, 2)
	assert.Contains(t, res.ClarifyOptions, hotel.HotelInfo["grand_josun_busan"].Name)
	assert.Contains(t, res.ClarifyOptions, hotel.HotelInfo["grand_josun_jeju"].Name)
}

func TestResolveWithNoCurrentHotelStillRedirectsSingleOwner(t *testing.T) {
	r := NewDefaultResolver()
	res := r.Resolve("화목에서 저녁 먹을 수 있나요?", "")
	assert.Equal(t, ActionRedirect, res.Action)
	assert.Equal(t, "josun_palace", res.TargetHotel)
}

func TestResolvePrefersLongestAlias(t *testing.T) {
	index := map[string][]hotel.RestaurantEntry{
		"아리아":     {{Restaurant: "아리아", HotelID: "grand_josun_busan"}},
		"아리아 라운지": {{Restaurant: "아리아 라운지", HotelID: "grand_josun_jeju"}},
	}
	r := NewResolver(index)
	res := r.Resolve("아리아 라운지 이용 방법", "")
	assert.Equal(t, "grand_josun_jeju", res.TargetHotel, "the longer, more specific alias must win over its substring")
}
