// Package usecase holds the conversation logic: merging extracted
// filters, choosing the next question and driving the dialogue state
// machine. Nothing here touches Telegram, the rules source or the
// listings API directly.
package usecase

import (
	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/nlp"
)

// MergeFilters folds one extraction into the existing filter set and
// returns a new set; neither input is mutated. Per question key the
// latest answer wins outright: the key is cleared first, then the new
// values applied, so "2 кімнати" after "3 кімнати" leaves [2], not
// [2 3]. Reversed ranges are swapped rather than rejected.
func MergeFilters(existing entity.FilterSet, ex *nlp.Extraction) entity.FilterSet {
	out := existing.Clone()

	for _, key := range ex.Answered {
		if !knownKey(key) {
			continue
		}
		out.Clear(key)
		// answering a question removes its skip mark
		if out.Skipped != nil {
			delete(out.Skipped, key)
		}
		applyKey(&out, key, &ex.Update)
	}

	// skip marks are per question key, not per filter key, so unknown
	// keys (the name question included) are recorded as-is
	for _, key := range ex.SkipKeys {
		markSkipped(&out, key)
	}

	normalizeRanges(&out)
	return out
}

// MarkSkipped records an explicit refusal for one key on a copy.
func MarkSkipped(existing entity.FilterSet, key entity.FilterKey) entity.FilterSet {
	out := existing.Clone()
	markSkipped(&out, key)
	return out
}

func markSkipped(f *entity.FilterSet, key entity.FilterKey) {
	if f.Skipped == nil {
		f.Skipped = make(map[entity.FilterKey]bool)
	}
	f.Skipped[key] = true
}

func knownKey(key entity.FilterKey) bool {
	for _, k := range entity.KnownFilterKeys {
		if k == key {
			return true
		}
	}
	return false
}

func applyKey(dst *entity.FilterSet, key entity.FilterKey, src *entity.FilterSet) {
	switch key {
	case entity.KeyDistrict:
		dst.DistrictIDs = append([]int(nil), src.DistrictIDs...)
		dst.MicroareaIDs = append([]int(nil), src.MicroareaIDs...)
		dst.StreetIDs = append([]int(nil), src.StreetIDs...)
	case entity.KeyRooms:
		dst.RoomsIn = append([]int(nil), src.RoomsIn...)
	case entity.KeyPrice:
		dst.PriceMin = cloneIntPtr(src.PriceMin)
		dst.PriceMax = cloneIntPtr(src.PriceMax)
	case entity.KeyArea:
		dst.AreaMin = cloneIntPtr(src.AreaMin)
		dst.AreaMax = cloneIntPtr(src.AreaMax)
	case entity.KeyFloor:
		dst.FloorMin = cloneIntPtr(src.FloorMin)
		dst.FloorMax = cloneIntPtr(src.FloorMax)
		dst.FloorOnlyLast = src.FloorOnlyLast
	case entity.KeyFloorsTotal:
		dst.FloorsTotalMin = cloneIntPtr(src.FloorsTotalMin)
		dst.FloorsTotalMax = cloneIntPtr(src.FloorsTotalMax)
	case entity.KeyCondition:
		dst.ConditionIn = append([]int(nil), src.ConditionIn...)
		dst.ConditionLabels = append([]string(nil), src.ConditionLabels...)
	case entity.KeySection:
		dst.Section = src.Section
	}
}

func normalizeRanges(f *entity.FilterSet) {
	swapIfReversed(&f.PriceMin, &f.PriceMax)
	swapIfReversed(&f.AreaMin, &f.AreaMax)
	swapIfReversed(&f.FloorMin, &f.FloorMax)
	swapIfReversed(&f.FloorsTotalMin, &f.FloorsTotalMax)
}

func swapIfReversed(min, max **int) {
	if *min != nil && *max != nil && **min > **max {
		*min, *max = *max, *min
	}
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
