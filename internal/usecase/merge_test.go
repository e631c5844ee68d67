package usecase

import (
	"reflect"
	"testing"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/nlp"
)

func TestMergeLatestAnswerWins(t *testing.T) {
	existing := entity.FilterSet{RoomsIn: []int{3}}
	ex := &nlp.Extraction{
		Update:   entity.FilterSet{RoomsIn: []int{2}},
		Answered: []entity.FilterKey{entity.KeyRooms},
	}

	out := MergeFilters(existing, ex)

	if !reflect.DeepEqual(out.RoomsIn, []int{2}) {
		t.Errorf("rooms = %v, want [2] (latest answer replaces, never unions)", out.RoomsIn)
	}
	if !reflect.DeepEqual(existing.RoomsIn, []int{3}) {
		t.Error("input filter set was mutated")
	}
}

func TestMergeKeepsUnansweredKeys(t *testing.T) {
	existing := entity.FilterSet{
		DistrictIDs: []int{1},
		PriceMax:    entity.IntPtr(40000),
	}
	ex := &nlp.Extraction{
		Update:   entity.FilterSet{RoomsIn: []int{1}},
		Answered: []entity.FilterKey{entity.KeyRooms},
	}

	out := MergeFilters(existing, ex)

	if !reflect.DeepEqual(out.DistrictIDs, []int{1}) || out.PriceMax == nil || *out.PriceMax != 40000 {
		t.Errorf("unanswered keys changed: %+v", out)
	}
}

func TestMergePartialRangeReplacesWholeKey(t *testing.T) {
	existing := entity.FilterSet{
		PriceMin: entity.IntPtr(20000),
		PriceMax: entity.IntPtr(40000),
	}
	ex := &nlp.Extraction{
		Update:   entity.FilterSet{PriceMax: entity.IntPtr(30000)},
		Answered: []entity.FilterKey{entity.KeyPrice},
	}

	out := MergeFilters(existing, ex)

	if out.PriceMin != nil {
		t.Errorf("price min = %d, want unset (key cleared before apply)", *out.PriceMin)
	}
	if out.PriceMax == nil || *out.PriceMax != 30000 {
		t.Errorf("price max = %v, want 30000", out.PriceMax)
	}
}

func TestMergeSwapsReversedRange(t *testing.T) {
	ex := &nlp.Extraction{
		Update: entity.FilterSet{
			AreaMin: entity.IntPtr(90),
			AreaMax: entity.IntPtr(40),
		},
		Answered: []entity.FilterKey{entity.KeyArea},
	}

	out := MergeFilters(entity.FilterSet{}, ex)

	if *out.AreaMin != 40 || *out.AreaMax != 90 {
		t.Errorf("area = [%d, %d], want [40, 90]", *out.AreaMin, *out.AreaMax)
	}
}

func TestMergeSkipAndUnskip(t *testing.T) {
	ex := &nlp.Extraction{SkipKeys: []entity.FilterKey{entity.KeyFloor}}
	out := MergeFilters(entity.FilterSet{}, ex)

	if !out.IsSkipped(entity.KeyFloor) {
		t.Fatal("expected floor to be skipped")
	}

	// a later real answer removes the skip mark
	ex = &nlp.Extraction{
		Update:   entity.FilterSet{FloorMin: entity.IntPtr(3), FloorMax: entity.IntPtr(3)},
		Answered: []entity.FilterKey{entity.KeyFloor},
	}
	out = MergeFilters(out, ex)

	if out.IsSkipped(entity.KeyFloor) {
		t.Error("answer must clear the skip mark")
	}
	if out.FloorMin == nil || *out.FloorMin != 3 {
		t.Errorf("floor min = %v, want 3", out.FloorMin)
	}
}

func TestMergeDropsUnknownKeys(t *testing.T) {
	ex := &nlp.Extraction{Answered: []entity.FilterKey{"parking"}}
	out := MergeFilters(entity.FilterSet{}, ex)

	if !reflect.DeepEqual(out, entity.FilterSet{}) {
		t.Errorf("unknown key changed the set: %+v", out)
	}
}

func TestMergeIdempotent(t *testing.T) {
	ex := &nlp.Extraction{
		Update: entity.FilterSet{
			DistrictIDs: []int{2},
			RoomsIn:     []int{2},
			PriceMax:    entity.IntPtr(30000),
		},
		Answered: []entity.FilterKey{entity.KeyDistrict, entity.KeyRooms, entity.KeyPrice},
	}

	once := MergeFilters(entity.FilterSet{}, ex)
	twice := MergeFilters(once, ex)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
