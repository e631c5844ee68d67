// Package nlp extracts search filters, control intents and objections
// from free-form Ukrainian/Russian chat messages using the rule tables
// of the active snapshot. Extraction is deterministic: the same message
// against the same snapshot always yields the same result.
//
// All regexes here run over textnorm.Normalize output: lowercased,
// Ukrainian letters folded onto Russian look-alikes, punctuation
// (hyphens included) replaced by single spaces. \b is useless for
// Cyrillic in Go regexp, so word boundaries are spelled out as
// (?:\s|$) groups.
package nlp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/realtor-intake-bot/internal/domain/constants"
	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
	"github.com/yourusername/realtor-intake-bot/internal/textnorm"
)

// Extraction everything recovered from one utterance.
type Extraction struct {
	// Update partial filter set; only keys listed in Answered carry values
	Update entity.FilterSet

	// Answered question keys this utterance gave a value for
	Answered []entity.FilterKey

	// SkipKeys keys the user explicitly declined via a skip pattern
	SkipKeys []entity.FilterKey

	// Intents control phrases recognized in the utterance
	Intents []entity.Intent

	// Warnings soft diagnostics (ambiguous location synonyms etc.)
	Warnings []string
}

// HasIntent reports whether the intent was recognized.
func (e *Extraction) HasIntent(intent entity.Intent) bool {
	for _, i := range e.Intents {
		if i == intent {
			return true
		}
	}
	return false
}

func (e *Extraction) answered(key entity.FilterKey) {
	for _, k := range e.Answered {
		if k == key {
			return
		}
	}
	e.Answered = append(e.Answered, key)
}

var (
	fromRe = regexp.MustCompile(`(?:^|\s)(вид|от|з|со)\s+(\d+)`)
	toRe   = regexp.MustCompile(`(?:^|\s)(до|по|максимум|не бильше|не дороже)\s+(\d+)`)

	// roomsPairRe two alternatives before a rooms word ("1-2 кімнати",
	// "2 або 3 кімнати"); hyphens are spaces after normalization
	roomsPairRe   = regexp.MustCompile(`(\d)\s(?:або\s|или\s|и\s|та\s)?(\d)\s?(к(?:\s|$)|кимнат\p{L}*|комнат\p{L}*)`)
	roomsSingleRe = regexp.MustCompile(`(\d)\s?(к(?:\s|$)|кимнат\p{L}*|комнат\p{L}*|кимн(?:\s|$)|комн(?:\s|$))`)

	// ordinalRe "5-й" style references, which are never a rooms count
	ordinalRe = regexp.MustCompile(`(?:^|\s)(\d+)\s(й|я|и|ий|ый|ой|ая|яя|е|ои|го|му|тя|та)(?:\s|$)`)

	areaUnitRe = regexp.MustCompile(`(\d+)\s*(м2|м²|кв\s?м|квадрат\p{L}*|кв(?:\s|$)|метр\p{L}*)`)

	floorAnchorRe = regexp.MustCompile(`(до|вид|от|з|с)\s(\d+)\s?(?:го\s)?(поверх|этаж)`)
	floorRangeRe  = regexp.MustCompile(`(\d+)\s(?:по\s)?(\d+)\s?(?:й\s)?(поверх|этаж)`)
	floorBeforeRe = regexp.MustCompile(`(\d+)(?:\s(?:й|м|го|ий|ый|ой|тий|тый))?\s?(поверх\p{L}*|этаж\p{L}*)`)
	floorAfterRe  = regexp.MustCompile(`(?:поверх|этаж)\p{L}*\s(?:з\s|с\s|вид\s|от\s)?(\d+)`)

	totalWordRe   = regexp.MustCompile(`(\d+)\s?(поверхив\p{L}*|поверхов\p{L}*|этажк\p{L}*|этажн\p{L}*)`)
	totalAnchorRe = regexp.MustCompile(`(поверховист\p{L}*|этажност\p{L}*)\s(?:(до|вид|от)\s)?(\d+)`)

	priceWords = []string{"грн", "гривен", "бюджет", "цина", "цена", "долар", "доллар", "уе", "у е"}
)

// Extract runs the full pipeline over one utterance. pendingKey is the
// question currently asked; a bare number with no anchor words binds to
// it and nothing else.
func Extract(text string, snap *rulestore.Snapshot, pendingKey entity.FilterKey) *Extraction {
	ex := &Extraction{}
	norm := textnorm.Normalize(text)
	if norm == "" {
		return ex
	}

	ex.scanIntents(norm, snap)
	ex.scanPatterns(norm, snap)
	ex.parsePrice(norm)
	ex.parseRooms(norm)
	ex.parseArea(norm)
	ex.parseFloorsTotal(norm)
	ex.parseFloor(norm)
	ex.resolveLocations(text, snap)
	ex.matchConditions(norm, snap)
	ex.detectSection(norm, snap)
	ex.bindPending(norm, pendingKey)

	return ex
}

func (ex *Extraction) scanIntents(norm string, snap *rulestore.Snapshot) {
	for _, group := range snap.Keywords {
		for _, phrase := range group.Phrases {
			if textnorm.ContainsPhrase(norm, phrase) {
				ex.addIntent(group.Intent)
				break
			}
		}
	}
}

func (ex *Extraction) addIntent(intent entity.Intent) {
	for _, have := range ex.Intents {
		if have == intent {
			return
		}
	}
	ex.Intents = append(ex.Intents, intent)
}

// scanPatterns applies the authored pattern rules. Special rules win
// over numeric parsing for the same key, which is why this runs before
// the numeric passes and why the parse* functions leave already
// answered keys alone.
func (ex *Extraction) scanPatterns(norm string, snap *rulestore.Snapshot) {
	for _, key := range snap.PatternKeys() {
		for _, rule := range snap.Patterns(key) {
			if !ruleMatches(norm, rule) {
				continue
			}
			if rule.Kind == entity.PatternSkip {
				ex.SkipKeys = append(ex.SkipKeys, key)
				continue
			}
			ex.applyRule(key, rule)
		}
	}
}

func ruleMatches(norm string, rule entity.PatternRule) bool {
	for _, alt := range rule.Alternatives {
		if rule.Kind == entity.PatternWord && !strings.Contains(alt, " ") {
			if textnorm.ContainsWord(norm, alt) {
				return true
			}
			continue
		}
		if textnorm.ContainsPhrase(norm, alt) {
			return true
		}
	}
	return false
}

func (ex *Extraction) applyRule(key entity.FilterKey, rule entity.PatternRule) {
	switch key {
	case entity.KeyRooms:
		if rule.Value != nil {
			ex.Update.RoomsIn = appendIntOnce(ex.Update.RoomsIn, *rule.Value)
			ex.answered(key)
		}
	case entity.KeyFloor:
		if rule.LastFloor {
			ex.Update.FloorOnlyLast = true
			ex.Update.FloorMin = nil
			ex.Update.FloorMax = nil
			ex.answered(key)
			return
		}
		ex.setRange(&ex.Update.FloorMin, &ex.Update.FloorMax, rule.Min, rule.Max, key)
	case entity.KeyPrice:
		ex.setRange(&ex.Update.PriceMin, &ex.Update.PriceMax, rule.Min, rule.Max, key)
	case entity.KeyArea:
		ex.setRange(&ex.Update.AreaMin, &ex.Update.AreaMax, rule.Min, rule.Max, key)
	case entity.KeyFloorsTotal:
		ex.setRange(&ex.Update.FloorsTotalMin, &ex.Update.FloorsTotalMax, rule.Min, rule.Max, key)
	}
}

func (ex *Extraction) setRange(min, max **int, ruleMin, ruleMax *int, key entity.FilterKey) {
	if ruleMin == nil && ruleMax == nil {
		return
	}
	if ruleMin != nil {
		v := *ruleMin
		*min = &v
	}
	if ruleMax != nil {
		v := *ruleMax
		*max = &v
	}
	ex.answered(key)
}

// parsePrice binds price numbers. Only values >= MinPriceValue qualify,
// so room counts and floors never masquerade as a budget.
func (ex *Extraction) parsePrice(norm string) {
	if has(ex.Answered, entity.KeyPrice) {
		return
	}

	if m := toRe.FindStringSubmatch(norm); m != nil {
		if v := atoiSafe(m[2]); v >= constants.MinPriceValue {
			ex.Update.PriceMax = entity.IntPtr(v)
			ex.answered(entity.KeyPrice)
		}
	}
	if m := fromRe.FindStringSubmatch(norm); m != nil {
		if v := atoiSafe(m[2]); v >= constants.MinPriceValue {
			ex.Update.PriceMin = entity.IntPtr(v)
			ex.answered(entity.KeyPrice)
		}
	}
	if has(ex.Answered, entity.KeyPrice) {
		return
	}

	var large []int
	for _, v := range textnorm.Ints(norm) {
		if v >= constants.MinPriceValue {
			large = append(large, v)
		}
	}
	switch {
	case len(large) >= 2:
		// no anchor words: two large numbers read as a min/max pair
		lo, hi := large[0], large[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		ex.Update.PriceMin = entity.IntPtr(lo)
		ex.Update.PriceMax = entity.IntPtr(hi)
		ex.answered(entity.KeyPrice)
	case len(large) == 1:
		// a single large number next to a money word is an upper bound
		for _, w := range priceWords {
			if strings.Contains(norm, w) {
				ex.Update.PriceMax = entity.IntPtr(large[0])
				ex.answered(entity.KeyPrice)
				return
			}
		}
	}
}

// parseRooms finds a rooms count next to a rooms word. Ordinal forms
// like "5-й" are floor references and are excluded up front.
func (ex *Extraction) parseRooms(norm string) {
	if has(ex.Answered, entity.KeyRooms) {
		return
	}

	ordinals := map[string]bool{}
	for _, m := range ordinalRe.FindAllStringSubmatch(norm, -1) {
		ordinals[m[1]] = true
	}

	var rooms []int
	take := func(digits string) {
		if ordinals[digits] {
			return
		}
		if v := atoiSafe(digits); v >= constants.MinRooms && v <= constants.MaxRooms {
			rooms = appendIntOnce(rooms, v)
		}
	}

	if m := roomsPairRe.FindStringSubmatch(norm); m != nil {
		take(m[1])
		take(m[2])
	} else {
		for _, m := range roomsSingleRe.FindAllStringSubmatch(norm, -1) {
			take(m[1])
		}
	}

	if len(rooms) > 0 {
		ex.Update.RoomsIn = rooms
		ex.answered(entity.KeyRooms)
	}
}

// parseArea binds numbers carrying an area unit. The anchor word right
// before the number decides which side of the range it sets.
func (ex *Extraction) parseArea(norm string) {
	if has(ex.Answered, entity.KeyArea) {
		return
	}

	for _, m := range areaUnitRe.FindAllStringSubmatchIndex(norm, -1) {
		v := atoiSafe(norm[m[2]:m[3]])
		if v < constants.MinArea || v > constants.MaxArea {
			continue
		}
		prefix := norm[:m[0]]
		switch {
		case hasAnchorSuffix(prefix, "вид", "от", "з", "со"):
			ex.Update.AreaMin = entity.IntPtr(v)
		case hasAnchorSuffix(prefix, "до", "по", "максимум"):
			ex.Update.AreaMax = entity.IntPtr(v)
		default:
			ex.Update.AreaMin = entity.IntPtr(v)
			ex.Update.AreaMax = entity.IntPtr(v)
		}
		ex.answered(entity.KeyArea)
	}
}

func hasAnchorSuffix(prefix string, anchors ...string) bool {
	prefix = strings.TrimRight(prefix, " ")
	for _, a := range anchors {
		if prefix == a || strings.HasSuffix(prefix, " "+a) {
			return true
		}
	}
	return false
}

// parseFloor binds floor references. Building-height words share the
// "поверх"/"этаж" prefix, so matches are rejected when the unit word is
// actually a floors-total form (parseFloorsTotal ran first and claimed
// those).
func (ex *Extraction) parseFloor(norm string) {
	if has(ex.Answered, entity.KeyFloor) || ex.Update.FloorOnlyLast {
		return
	}
	if !strings.Contains(norm, "поверх") && !strings.Contains(norm, "этаж") {
		return
	}

	inFloorRange := func(v int) bool { return v >= constants.MinFloor && v <= constants.MaxFloor }

	if m := floorAnchorRe.FindStringSubmatch(norm); m != nil {
		if v := atoiSafe(m[2]); inFloorRange(v) {
			if m[1] == "до" {
				ex.Update.FloorMax = entity.IntPtr(v)
			} else {
				ex.Update.FloorMin = entity.IntPtr(v)
			}
			ex.answered(entity.KeyFloor)
			return
		}
	}

	if m := floorRangeRe.FindStringSubmatch(norm); m != nil {
		lo, hi := atoiSafe(m[1]), atoiSafe(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		if inFloorRange(lo) && inFloorRange(hi) {
			ex.Update.FloorMin = entity.IntPtr(lo)
			ex.Update.FloorMax = entity.IntPtr(hi)
			ex.answered(entity.KeyFloor)
			return
		}
	}

	if m := floorBeforeRe.FindStringSubmatch(norm); m != nil && !isFloorsTotalWord(m[2]) {
		if v := atoiSafe(m[1]); inFloorRange(v) {
			ex.Update.FloorMin = entity.IntPtr(v)
			ex.Update.FloorMax = entity.IntPtr(v)
			ex.answered(entity.KeyFloor)
			return
		}
	}

	if m := floorAfterRe.FindStringSubmatch(norm); m != nil {
		if v := atoiSafe(m[1]); inFloorRange(v) {
			ex.Update.FloorMin = entity.IntPtr(v)
			ex.Update.FloorMax = entity.IntPtr(v)
			ex.answered(entity.KeyFloor)
		}
	}
}

func isFloorsTotalWord(word string) bool {
	for _, prefix := range []string{"поверхив", "поверхов", "этажк", "этажн"} {
		if strings.HasPrefix(word, prefix) {
			return true
		}
	}
	return false
}

// parseFloorsTotal binds building-height references ("в 9-поверхівці",
// "поверховість до 16").
func (ex *Extraction) parseFloorsTotal(norm string) {
	if has(ex.Answered, entity.KeyFloorsTotal) {
		return
	}

	inRange := func(v int) bool { return v >= constants.MinFloorsTotal && v <= constants.MaxFloorsTotal }

	if m := totalAnchorRe.FindStringSubmatch(norm); m != nil {
		if v := atoiSafe(m[3]); inRange(v) {
			switch m[2] {
			case "до":
				ex.Update.FloorsTotalMax = entity.IntPtr(v)
			case "вид", "от":
				ex.Update.FloorsTotalMin = entity.IntPtr(v)
			default:
				ex.Update.FloorsTotalMin = entity.IntPtr(v)
				ex.Update.FloorsTotalMax = entity.IntPtr(v)
			}
			ex.answered(entity.KeyFloorsTotal)
			return
		}
	}

	if m := totalWordRe.FindStringSubmatch(norm); m != nil {
		if v := atoiSafe(m[1]); inRange(v) {
			ex.Update.FloorsTotalMin = entity.IntPtr(v)
			ex.Update.FloorsTotalMax = entity.IntPtr(v)
			ex.answered(entity.KeyFloorsTotal)
		}
	}
}

// resolveLocations resolves district/microarea/street mentions. The raw
// text splits on commas first: each segment is tried as a whole surface
// form before falling back to per-word stem matching. When one surface
// form exists under several kinds the district reading wins, then
// microarea, then street.
func (ex *Extraction) resolveLocations(raw string, snap *rulestore.Snapshot) {
	kinds := []entity.LocationKind{entity.LocationDistrict, entity.LocationMicroarea, entity.LocationStreet}

	for _, segment := range splitSegments(raw) {
		segNorm := textnorm.Normalize(segment)
		if segNorm == "" {
			continue
		}
		if ex.resolveSurface(segNorm, kinds, snap) {
			continue
		}
		for _, word := range strings.Split(segNorm, " ") {
			ex.resolveWord(word, kinds, snap)
		}
	}
}

func (ex *Extraction) resolveSurface(surface string, kinds []entity.LocationKind, snap *rulestore.Snapshot) bool {
	for _, kind := range kinds {
		if e, ok := snap.Locations.Lookup(kind, surface); ok {
			ex.addLocation(e)
			ex.warnAmbiguity(surface, snap)
			return true
		}
	}
	return false
}

func (ex *Extraction) resolveWord(word string, kinds []entity.LocationKind, snap *rulestore.Snapshot) {
	stem := textnorm.Stem(word)
	for _, kind := range kinds {
		if e, ok := snap.Locations.Lookup(kind, word); ok {
			ex.addLocation(e)
			ex.warnAmbiguity(word, snap)
			return
		}
		if e, ok := snap.Locations.LookupStem(kind, stem); ok {
			ex.addLocation(e)
			return
		}
	}
}

func (ex *Extraction) addLocation(e entity.SynonymEntry) {
	switch e.Kind {
	case entity.LocationDistrict:
		ex.Update.DistrictIDs = appendIntOnce(ex.Update.DistrictIDs, e.TargetID)
	case entity.LocationMicroarea:
		ex.Update.MicroareaIDs = appendIntOnce(ex.Update.MicroareaIDs, e.TargetID)
	case entity.LocationStreet:
		ex.Update.StreetIDs = appendIntOnce(ex.Update.StreetIDs, e.TargetID)
	}
	ex.answered(entity.KeyDistrict)
}

func (ex *Extraction) warnAmbiguity(surface string, snap *rulestore.Snapshot) {
	if entries, ok := snap.Locations.AmbiguousSurface(surface); ok {
		ex.Warnings = append(ex.Warnings,
			fmt.Sprintf("surface %q maps to %d locations, kept first-loaded", surface, len(entries)))
	}
}

func splitSegments(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
}

func (ex *Extraction) matchConditions(norm string, snap *rulestore.Snapshot) {
	for _, entry := range snap.Conditions.Entries() {
		for _, syn := range entry.Synonyms {
			if textnorm.ContainsPhrase(norm, syn) {
				ex.Update.ConditionIn = appendIntOnce(ex.Update.ConditionIn, entry.ID)
				ex.Update.ConditionLabels = appendStringOnce(ex.Update.ConditionLabels, entry.Label)
				ex.answered(entity.KeyCondition)
				break
			}
		}
	}
}

func (ex *Extraction) detectSection(norm string, snap *rulestore.Snapshot) {
	for _, word := range strings.Split(norm, " ") {
		if v, ok := snap.Section(textnorm.Stem(word)); ok {
			ex.Update.Section = v
			ex.answered(entity.KeySection)
			return
		}
	}
}

// bindPending handles a bare number answered to the pending question.
// Without a pending key an unanchored number stays unbound; guessing a
// key for it caused more damage than ignoring it.
func (ex *Extraction) bindPending(norm string, pendingKey entity.FilterKey) {
	if pendingKey == "" || has(ex.Answered, pendingKey) {
		return
	}
	nums := textnorm.Ints(norm)
	if len(nums) == 0 {
		return
	}
	v := nums[0]

	switch pendingKey {
	case entity.KeyRooms:
		if v >= constants.MinRooms && v <= constants.MaxRooms {
			ex.Update.RoomsIn = appendIntOnce(ex.Update.RoomsIn, v)
			ex.answered(pendingKey)
		}
	case entity.KeyPrice:
		if v >= constants.MinPriceValue {
			ex.Update.PriceMax = entity.IntPtr(v)
			ex.answered(pendingKey)
		}
	case entity.KeyArea:
		if v >= constants.MinArea && v <= constants.MaxArea {
			ex.Update.AreaMin = entity.IntPtr(v)
			ex.Update.AreaMax = entity.IntPtr(v)
			ex.answered(pendingKey)
		}
	case entity.KeyFloor:
		if v >= constants.MinFloor && v <= constants.MaxFloor {
			ex.Update.FloorMin = entity.IntPtr(v)
			ex.Update.FloorMax = entity.IntPtr(v)
			ex.answered(pendingKey)
		}
	case entity.KeyFloorsTotal:
		if v >= constants.MinFloorsTotal && v <= constants.MaxFloorsTotal {
			ex.Update.FloorsTotalMin = entity.IntPtr(v)
			ex.Update.FloorsTotalMax = entity.IntPtr(v)
			ex.answered(pendingKey)
		}
	}
}

func has(keys []entity.FilterKey, key entity.FilterKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func appendIntOnce(s []int, v int) []int {
	for _, have := range s {
		if have == v {
			return s
		}
	}
	return append(s, v)
}

func appendStringOnce(s []string, v string) []string {
	for _, have := range s {
		if have == v {
			return s
		}
	}
	return append(s, v)
}

func atoiSafe(s string) int {
	var v int
	for _, r := range s {
		if r < '0' || r > '9' {
			return v
		}
		v = v*10 + int(r-'0')
	}
	return v
}
