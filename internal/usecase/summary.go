package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// FilterSummary renders the collected criteria as a short Ukrainian
// list, one line per set key. Location ids resolve to official names
// through the snapshot; ids without a name fall back to the number.
func FilterSummary(f entity.FilterSet, snap *rulestore.Snapshot) string {
	var lines []string

	if loc := summaryLocations(f, snap); loc != "" {
		lines = append(lines, "Район: "+loc)
	}
	if len(f.RoomsIn) > 0 {
		lines = append(lines, "Кімнати: "+joinInts(f.RoomsIn, " або "))
	}
	if r := rangeLine(f.PriceMin, f.PriceMax, "грн"); r != "" {
		lines = append(lines, "Бюджет: "+r)
	}
	if r := rangeLine(f.AreaMin, f.AreaMax, "м²"); r != "" {
		lines = append(lines, "Площа: "+r)
	}
	switch {
	case f.FloorOnlyLast:
		lines = append(lines, "Поверх: останній")
	default:
		if r := rangeLine(f.FloorMin, f.FloorMax, ""); r != "" {
			lines = append(lines, "Поверх: "+r)
		}
	}
	if r := rangeLine(f.FloorsTotalMin, f.FloorsTotalMax, ""); r != "" {
		lines = append(lines, "Поверховість: "+r)
	}
	if len(f.ConditionLabels) > 0 {
		lines = append(lines, "Стан: "+strings.Join(f.ConditionLabels, ", "))
	}
	switch f.Section {
	case "rent":
		lines = append(lines, "Тип: оренда")
	case "sale":
		lines = append(lines, "Тип: купівля")
	}

	return strings.Join(lines, "\n")
}

func summaryLocations(f entity.FilterSet, snap *rulestore.Snapshot) string {
	var parts []string
	add := func(kind entity.LocationKind, ids []int) {
		for _, id := range ids {
			if name, ok := snap.Locations.OfficialName(kind, id); ok {
				parts = append(parts, name)
			} else {
				parts = append(parts, strconv.Itoa(id))
			}
		}
	}
	add(entity.LocationDistrict, f.DistrictIDs)
	add(entity.LocationMicroarea, f.MicroareaIDs)
	add(entity.LocationStreet, f.StreetIDs)
	return strings.Join(parts, ", ")
}

func rangeLine(min, max *int, unit string) string {
	suffix := ""
	if unit != "" {
		suffix = " " + unit
	}
	switch {
	case min != nil && max != nil && *min == *max:
		return fmt.Sprintf("%d%s", *min, suffix)
	case min != nil && max != nil:
		return fmt.Sprintf("від %d до %d%s", *min, *max, suffix)
	case min != nil:
		return fmt.Sprintf("від %d%s", *min, suffix)
	case max != nil:
		return fmt.Sprintf("до %d%s", *max, suffix)
	default:
		return ""
	}
}

func joinInts(vals []int, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}
