package usecase

import (
	"strings"
	"testing"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

func TestFilterSummary(t *testing.T) {
	snap := testSnapshot(t)

	f := entity.FilterSet{
		DistrictIDs:   []int{2},
		RoomsIn:       []int{1, 2},
		PriceMax:      entity.IntPtr(30000),
		FloorOnlyLast: true,
	}
	got := FilterSummary(f, snap)

	for _, want := range []string{
		"Район: Салтівський",
		"Кімнати: 1 або 2",
		"Бюджет: до 30000 грн",
		"Поверх: останній",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestFilterSummaryUnknownIDFallsBack(t *testing.T) {
	snap := testSnapshot(t)

	got := FilterSummary(entity.FilterSet{DistrictIDs: []int{77}}, snap)
	if !strings.Contains(got, "77") {
		t.Errorf("summary = %q, want numeric fallback", got)
	}
}

func TestFilterSummaryEmpty(t *testing.T) {
	snap := testSnapshot(t)
	if got := FilterSummary(entity.FilterSet{}, snap); got != "" {
		t.Errorf("summary = %q, want empty", got)
	}
}
