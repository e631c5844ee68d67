package usecase

import (
	"testing"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

func TestNextQuestionFollowsSheetOrder(t *testing.T) {
	snap := testSnapshot(t)

	q, ok := NextQuestion(entity.FilterSet{}, "", "", snap)
	if !ok || q.Key != entity.KeyName {
		t.Fatalf("first question = %+v, want name", q)
	}

	q, ok = NextQuestion(entity.FilterSet{}, "Влад", "", snap)
	if !ok || q.Key != entity.KeyDistrict {
		t.Errorf("with a name on file, question = %+v, want district", q)
	}
}

func TestNextQuestionSkipsAnsweredAndSkipped(t *testing.T) {
	snap := testSnapshot(t)

	filters := entity.FilterSet{
		DistrictIDs: []int{1},
		Skipped:     map[entity.FilterKey]bool{entity.KeyRooms: true},
	}
	q, ok := NextQuestion(filters, "Влад", "", snap)
	if !ok || q.Key != entity.KeyPrice {
		t.Errorf("question = %+v, want price (district answered, rooms skipped)", q)
	}
}

func TestNextQuestionPrefersRedirectKey(t *testing.T) {
	snap := testSnapshot(t)

	q, ok := NextQuestion(entity.FilterSet{}, "Влад", entity.KeyPrice, snap)
	if !ok || q.Key != entity.KeyPrice {
		t.Errorf("question = %+v, want redirected price", q)
	}

	// redirect to an already answered key falls back to sheet order
	filters := entity.FilterSet{PriceMax: entity.IntPtr(30000)}
	q, ok = NextQuestion(filters, "Влад", entity.KeyPrice, snap)
	if !ok || q.Key != entity.KeyDistrict {
		t.Errorf("question = %+v, want district", q)
	}
}

func TestNextQuestionExhausted(t *testing.T) {
	snap := testSnapshot(t)

	filters := entity.FilterSet{
		DistrictIDs: []int{1},
		RoomsIn:     []int{2},
		PriceMax:    entity.IntPtr(30000),
		Skipped:     map[entity.FilterKey]bool{entity.KeyFloor: true},
	}
	if q, ok := NextQuestion(filters, "Влад", "", snap); ok {
		t.Errorf("question = %+v, want none (everything answered or skipped)", q)
	}
}
