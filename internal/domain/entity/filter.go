package entity

// FilterKey one named search dimension. Keys double as question keys in
// the externally authored question list.
type FilterKey string

const (
	KeyName        FilterKey = "name"
	KeyDistrict    FilterKey = "district"
	KeyRooms       FilterKey = "rooms"
	KeyPrice       FilterKey = "price"
	KeyArea        FilterKey = "area"
	KeyFloor       FilterKey = "floor"
	KeyFloorsTotal FilterKey = "floors_total"
	KeyCondition   FilterKey = "condition"
	KeySection     FilterKey = "section"
)

// KnownFilterKeys keys the merger recognizes; assignments for anything
// else are dropped on merge (forward compatibility with newer rule tables).
var KnownFilterKeys = []FilterKey{
	KeyDistrict, KeyRooms, KeyPrice, KeyArea, KeyFloor,
	KeyFloorsTotal, KeyCondition, KeySection,
}

// NormalizeFilterKey maps spreadsheet aliases onto canonical keys.
func NormalizeFilterKey(raw string) FilterKey {
	switch FilterKey(raw) {
	case "budget":
		return KeyPrice
	case "state":
		return KeyCondition
	case "building_floors":
		return KeyFloorsTotal
	default:
		return FilterKey(raw)
	}
}

// LocationKind location entry type, ordered by resolution precedence.
type LocationKind string

const (
	LocationDistrict  LocationKind = "district"
	LocationMicroarea LocationKind = "microarea"
	LocationStreet    LocationKind = "street"
)

// FilterSet the evolving search filter of one conversation. Zero-value
// fields mean "unset"; Skipped marks keys the user refused to answer,
// which is distinct from unset (skipped keys are never asked again).
type FilterSet struct {
	DistrictIDs  []int
	MicroareaIDs []int
	StreetIDs    []int

	RoomsIn []int

	PriceMin *int
	PriceMax *int

	AreaMin *int
	AreaMax *int

	FloorMin      *int
	FloorMax      *int
	FloorOnlyLast bool

	FloorsTotalMin *int
	FloorsTotalMax *int

	ConditionIn     []int
	ConditionLabels []string

	Section string

	Skipped map[FilterKey]bool
}

// Has reports whether the question key has any value assigned.
func (f FilterSet) Has(key FilterKey) bool {
	switch key {
	case KeyDistrict:
		return len(f.DistrictIDs) > 0 || len(f.MicroareaIDs) > 0 || len(f.StreetIDs) > 0
	case KeyRooms:
		return len(f.RoomsIn) > 0
	case KeyPrice:
		return f.PriceMin != nil || f.PriceMax != nil
	case KeyArea:
		return f.AreaMin != nil || f.AreaMax != nil
	case KeyFloor:
		return f.FloorMin != nil || f.FloorMax != nil || f.FloorOnlyLast
	case KeyFloorsTotal:
		return f.FloorsTotalMin != nil || f.FloorsTotalMax != nil
	case KeyCondition:
		return len(f.ConditionIn) > 0
	case KeySection:
		return f.Section != ""
	default:
		return false
	}
}

// IsSkipped reports whether the key was explicitly skipped this session.
func (f FilterSet) IsSkipped(key FilterKey) bool {
	return f.Skipped != nil && f.Skipped[key]
}

// Clear removes the value of one question key, leaving skip marks intact.
func (f *FilterSet) Clear(key FilterKey) {
	switch key {
	case KeyDistrict:
		f.DistrictIDs = nil
		f.MicroareaIDs = nil
		f.StreetIDs = nil
	case KeyRooms:
		f.RoomsIn = nil
	case KeyPrice:
		f.PriceMin = nil
		f.PriceMax = nil
	case KeyArea:
		f.AreaMin = nil
		f.AreaMax = nil
	case KeyFloor:
		f.FloorMin = nil
		f.FloorMax = nil
		f.FloorOnlyLast = false
	case KeyFloorsTotal:
		f.FloorsTotalMin = nil
		f.FloorsTotalMax = nil
	case KeyCondition:
		f.ConditionIn = nil
		f.ConditionLabels = nil
	case KeySection:
		f.Section = ""
	}
}

// Clone returns a deep copy so mergers can stay pure functions.
func (f FilterSet) Clone() FilterSet {
	out := f
	out.DistrictIDs = append([]int(nil), f.DistrictIDs...)
	out.MicroareaIDs = append([]int(nil), f.MicroareaIDs...)
	out.StreetIDs = append([]int(nil), f.StreetIDs...)
	out.RoomsIn = append([]int(nil), f.RoomsIn...)
	out.ConditionIn = append([]int(nil), f.ConditionIn...)
	out.ConditionLabels = append([]string(nil), f.ConditionLabels...)
	out.PriceMin = cloneInt(f.PriceMin)
	out.PriceMax = cloneInt(f.PriceMax)
	out.AreaMin = cloneInt(f.AreaMin)
	out.AreaMax = cloneInt(f.AreaMax)
	out.FloorMin = cloneInt(f.FloorMin)
	out.FloorMax = cloneInt(f.FloorMax)
	out.FloorsTotalMin = cloneInt(f.FloorsTotalMin)
	out.FloorsTotalMax = cloneInt(f.FloorsTotalMax)
	if f.Skipped != nil {
		out.Skipped = make(map[FilterKey]bool, len(f.Skipped))
		for k, v := range f.Skipped {
			out.Skipped[k] = v
		}
	}
	return out
}

// APIPayload renders the filter set as the listings API request body.
// Unset sides of a range are omitted, never defaulted.
func (f FilterSet) APIPayload() map[string]any {
	payload := make(map[string]any)
	if len(f.DistrictIDs) > 0 {
		payload["district_id"] = f.DistrictIDs
	}
	if len(f.MicroareaIDs) > 0 {
		payload["microarea_id"] = f.MicroareaIDs
	}
	if len(f.StreetIDs) > 0 {
		payload["street_id"] = f.StreetIDs
	}
	if len(f.RoomsIn) > 0 {
		payload["rooms_in"] = f.RoomsIn
	}
	if f.PriceMin != nil {
		payload["price_min"] = *f.PriceMin
	}
	if f.PriceMax != nil {
		payload["price_max"] = *f.PriceMax
	}
	if f.AreaMin != nil {
		payload["area_min"] = *f.AreaMin
	}
	if f.AreaMax != nil {
		payload["area_max"] = *f.AreaMax
	}
	if f.FloorMin != nil {
		payload["floor_min"] = *f.FloorMin
	}
	if f.FloorMax != nil {
		payload["floor_max"] = *f.FloorMax
	}
	if f.FloorOnlyLast {
		payload["floor_only_last"] = true
	}
	if f.FloorsTotalMin != nil {
		payload["floors_total_min"] = *f.FloorsTotalMin
	}
	if f.FloorsTotalMax != nil {
		payload["floors_total_max"] = *f.FloorsTotalMax
	}
	if len(f.ConditionIn) > 0 {
		payload["condition_in"] = f.ConditionIn
	}
	if f.Section != "" {
		payload["section"] = f.Section
	}
	return payload
}

// IntPtr convenience for building filter values.
func IntPtr(v int) *int { return &v }

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
