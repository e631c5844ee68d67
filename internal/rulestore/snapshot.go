package rulestore

import (
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
	"github.com/yourusername/realtor-intake-bot/internal/textnorm"
)

// lastFloorMarker value_list literal for the "last floor" special rule.
const lastFloorMarker = "LAST"

// LocationIndex resolved location synonyms of one snapshot.
type LocationIndex struct {
	// entries by kind, keyed by normalized surface form; first-loaded
	// entry wins on duplicates within one kind
	byKind map[entity.LocationKind]map[string]entity.SynonymEntry

	// stems maps a stemmed surface form back to the entry, used for
	// per-word matching of inflected location names
	stems map[entity.LocationKind]map[string]entity.SynonymEntry

	// names official display names by kind and canonical id
	names map[entity.LocationKind]map[int]string

	// ambiguous surface forms that collided within one kind, surfaced
	// to the caller as soft warnings at match time
	ambiguous map[string][]entity.SynonymEntry
}

// Lookup returns the entry for an exact normalized surface form.
func (ix *LocationIndex) Lookup(kind entity.LocationKind, surface string) (entity.SynonymEntry, bool) {
	e, ok := ix.byKind[kind][surface]
	return e, ok
}

// LookupStem returns the entry whose stemmed surface equals the stem.
func (ix *LocationIndex) LookupStem(kind entity.LocationKind, stem string) (entity.SynonymEntry, bool) {
	e, ok := ix.stems[kind][stem]
	return e, ok
}

// OfficialName returns the display name for a canonical id.
func (ix *LocationIndex) OfficialName(kind entity.LocationKind, id int) (string, bool) {
	name, ok := ix.names[kind][id]
	return name, ok
}

// AmbiguousSurface returns colliding entries for a surface form, if any.
func (ix *LocationIndex) AmbiguousSurface(surface string) ([]entity.SynonymEntry, bool) {
	entries, ok := ix.ambiguous[surface]
	return entries, ok
}

// ConditionIndex apartment-condition dictionary of one snapshot.
type ConditionIndex struct {
	entries   []entity.ConditionEntry
	synToID   map[string]int
	synToName map[string]string
}

// Entries returns all condition rows in load order.
func (ix *ConditionIndex) Entries() []entity.ConditionEntry { return ix.entries }

// Resolve maps a normalized synonym to (id, label).
func (ix *ConditionIndex) Resolve(syn string) (int, string, bool) {
	id, ok := ix.synToID[syn]
	if !ok {
		return 0, "", false
	}
	return id, ix.synToName[syn], true
}

// Snapshot an immutable, versioned copy of all rule tables. Built once
// per load and shared by concurrent readers; never mutated afterwards.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time

	patterns   map[entity.FilterKey][]entity.PatternRule
	Locations  *LocationIndex
	Conditions *ConditionIndex
	Keywords   []entity.KeywordGroup
	Objections []entity.ObjectionRule
	Reactions  []entity.ReactionRule
	Questions  []entity.Question
	Welcome    []string

	sections map[string]string // stemmed keyword -> section value
	prompts  map[string]string

	// SkippedRows malformed rows dropped during the build, for logging
	SkippedRows int
}

// Patterns returns the pattern rules for one filter key.
func (s *Snapshot) Patterns(key entity.FilterKey) []entity.PatternRule {
	return s.patterns[key]
}

// PatternKeys returns every filter key with at least one pattern rule.
func (s *Snapshot) PatternKeys() []entity.FilterKey {
	keys := make([]entity.FilterKey, 0, len(s.patterns))
	for k := range s.patterns {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Section resolves a stemmed keyword to a section value ("rent"/"sale").
func (s *Snapshot) Section(stem string) (string, bool) {
	v, ok := s.sections[stem]
	return v, ok
}

// Prompt returns a localized prompt by message key, with a fallback for
// keys the spreadsheet does not define.
func (s *Snapshot) Prompt(key, fallback string) string {
	if v, ok := s.prompts[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// QuestionText returns the prompt for a question key.
func (s *Snapshot) QuestionText(key entity.FilterKey) (string, bool) {
	for _, q := range s.Questions {
		if q.Key == key {
			return q.Text, true
		}
	}
	return "", false
}

// Reaction returns the reply for a reaction trigger ("silence" etc.).
func (s *Snapshot) Reaction(trigger string) (string, bool) {
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	for _, r := range s.Reactions {
		if r.Trigger == trigger {
			return r.Reply, true
		}
	}
	return "", false
}

// BuildSnapshot validates raw tables into an immutable snapshot.
// Malformed rows are skipped and logged, never fatal: one bad
// spreadsheet row must not take the whole rule set down. Range bounds
// arriving out of order are swapped here so matching never re-checks.
func BuildSnapshot(tables *Tables, version int64) *Snapshot {
	snap := &Snapshot{
		Version:  version,
		LoadedAt: time.Now(),
		patterns: make(map[entity.FilterKey][]entity.PatternRule),
		sections: make(map[string]string),
		prompts:  make(map[string]string),
	}

	snap.buildPatterns(tables.FilterPatterns)
	snap.Locations = buildLocationIndex(tables.Locations, &snap.SkippedRows)
	snap.Conditions = buildConditionIndex(tables.Conditions, &snap.SkippedRows)
	snap.buildKeywords(tables.Keywords)
	snap.buildQuestions(tables.Questions)
	snap.buildObjections(tables.Objections)
	snap.buildReactions(tables.Reactions)
	snap.buildSections(tables.Sections)

	for _, p := range tables.Prompts {
		key := strings.ToLower(strings.TrimSpace(p.Key))
		if key == "" || strings.TrimSpace(p.Text) == "" {
			continue
		}
		snap.prompts[key] = strings.TrimSpace(p.Text)
	}
	for _, w := range tables.Welcome {
		if strings.TrimSpace(w) != "" {
			snap.Welcome = append(snap.Welcome, strings.TrimSpace(w))
		}
	}

	if snap.SkippedRows > 0 {
		log.Printf("[RULES] snapshot v%d built with %d malformed rows skipped", version, snap.SkippedRows)
	}
	return snap
}

func (s *Snapshot) buildPatterns(rows []PatternRow) {
	for _, row := range rows {
		key := entity.NormalizeFilterKey(strings.ToLower(strings.TrimSpace(row.FilterKey)))
		kind := entity.PatternKind(strings.ToLower(strings.TrimSpace(row.PatternType)))
		text := strings.TrimSpace(row.PatternText)

		if key == "" || text == "" {
			s.SkippedRows++
			continue
		}
		switch kind {
		case entity.PatternWord, entity.PatternPhrase, entity.PatternSpecial, entity.PatternSkip:
		default:
			s.SkippedRows++
			continue
		}

		rule := entity.PatternRule{Key: key, Kind: kind}
		for _, alt := range strings.Split(text, ",") {
			if norm := textnorm.Normalize(alt); norm != "" {
				rule.Alternatives = append(rule.Alternatives, norm)
			}
		}
		if len(rule.Alternatives) == 0 {
			s.SkippedRows++
			continue
		}

		rule.Min = parseOptionalInt(row.ValueMin)
		rule.Max = parseOptionalInt(row.ValueMax)
		if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
			// Out-of-order bounds are authoring mistakes; swap, don't drop.
			rule.Min, rule.Max = rule.Max, rule.Min
		}
		if list := strings.TrimSpace(row.ValueList); list != "" {
			if strings.EqualFold(list, lastFloorMarker) {
				rule.LastFloor = true
			} else if v, err := strconv.Atoi(list); err == nil {
				rule.Value = &v
			}
		}

		s.patterns[key] = append(s.patterns[key], rule)
	}
}

func buildLocationIndex(rows []LocationRow, skipped *int) *LocationIndex {
	ix := &LocationIndex{
		byKind:    make(map[entity.LocationKind]map[string]entity.SynonymEntry),
		stems:     make(map[entity.LocationKind]map[string]entity.SynonymEntry),
		names:     make(map[entity.LocationKind]map[int]string),
		ambiguous: make(map[string][]entity.SynonymEntry),
	}
	for _, kind := range []entity.LocationKind{entity.LocationDistrict, entity.LocationMicroarea, entity.LocationStreet} {
		ix.byKind[kind] = make(map[string]entity.SynonymEntry)
		ix.stems[kind] = make(map[string]entity.SynonymEntry)
		ix.names[kind] = make(map[int]string)
	}

	for _, row := range rows {
		kind := entity.LocationKind(strings.ToLower(strings.TrimSpace(row.Type)))
		if _, ok := ix.byKind[kind]; !ok {
			*skipped++
			continue
		}
		surface := textnorm.Normalize(row.Synonym)
		targetID, err := strconv.Atoi(strings.TrimSpace(row.TargetID))
		if surface == "" || err != nil || targetID <= 0 {
			*skipped++
			continue
		}

		e := entity.SynonymEntry{
			Kind:         kind,
			Surface:      surface,
			TargetID:     targetID,
			OfficialName: strings.TrimSpace(row.OfficialName),
		}

		if prev, exists := ix.byKind[kind][surface]; exists {
			if prev.TargetID != e.TargetID {
				// First-loaded entry stays authoritative; remember the
				// collision so matching can warn the caller.
				ix.ambiguous[surface] = appendEntryOnce(ix.ambiguous[surface], prev)
				ix.ambiguous[surface] = appendEntryOnce(ix.ambiguous[surface], e)
			}
		} else {
			ix.byKind[kind][surface] = e
			if stem := stemSurface(surface); stem != "" {
				if _, taken := ix.stems[kind][stem]; !taken {
					ix.stems[kind][stem] = e
				}
			}
		}
		if e.OfficialName != "" {
			if _, have := ix.names[kind][targetID]; !have {
				ix.names[kind][targetID] = e.OfficialName
			}
		}
	}
	return ix
}

// stemSurface stems each word of a multi-word surface form.
func stemSurface(surface string) string {
	words := strings.Split(surface, " ")
	for i, w := range words {
		words[i] = textnorm.Stem(w)
	}
	return strings.Join(words, " ")
}

func appendEntryOnce(entries []entity.SynonymEntry, e entity.SynonymEntry) []entity.SynonymEntry {
	for _, have := range entries {
		if have.Kind == e.Kind && have.TargetID == e.TargetID {
			return entries
		}
	}
	return append(entries, e)
}

func buildConditionIndex(rows []ConditionRow, skipped *int) *ConditionIndex {
	ix := &ConditionIndex{
		synToID:   make(map[string]int),
		synToName: make(map[string]string),
	}
	for _, row := range rows {
		id, err := strconv.Atoi(strings.TrimSpace(row.ID))
		label := strings.TrimSpace(row.Label)
		if err != nil || id <= 0 || label == "" {
			*skipped++
			continue
		}

		e := entity.ConditionEntry{ID: id, Label: label}
		addSyn := func(raw string) {
			norm := textnorm.Normalize(raw)
			if norm == "" {
				return
			}
			for _, have := range e.Synonyms {
				if have == norm {
					return
				}
			}
			e.Synonyms = append(e.Synonyms, norm)
			if _, taken := ix.synToID[norm]; !taken {
				ix.synToID[norm] = id
				ix.synToName[norm] = label
			}
		}
		addSyn(label)
		for _, syn := range strings.Split(row.Synonyms, ";") {
			addSyn(syn)
		}
		ix.entries = append(ix.entries, e)
	}
	return ix
}

func (s *Snapshot) buildKeywords(rows []KeywordRow) {
	for _, row := range rows {
		intent := entity.Intent(strings.ToLower(strings.TrimSpace(row.Intent)))
		if intent == "" {
			s.SkippedRows++
			continue
		}
		group := entity.KeywordGroup{Intent: intent}
		for _, phrase := range strings.Split(row.Phrases, ",") {
			if norm := textnorm.Normalize(phrase); norm != "" {
				group.Phrases = append(group.Phrases, norm)
			}
		}
		if len(group.Phrases) == 0 {
			s.SkippedRows++
			continue
		}
		s.Keywords = append(s.Keywords, group)
	}
}

func (s *Snapshot) buildQuestions(rows []QuestionRow) {
	type ordered struct {
		order int
		q     entity.Question
	}
	var items []ordered
	for _, row := range rows {
		key := entity.NormalizeFilterKey(strings.ToLower(strings.TrimSpace(row.QuestionKey)))
		text := strings.TrimSpace(row.Text)
		if key == "" || text == "" {
			s.SkippedRows++
			continue
		}
		order := 999
		if v, err := strconv.Atoi(strings.TrimSpace(row.Order)); err == nil {
			order = v
		}
		items = append(items, ordered{order: order, q: entity.Question{Order: order, Key: key, Text: text}})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })
	for _, it := range items {
		s.Questions = append(s.Questions, it.q)
	}
}

func (s *Snapshot) buildObjections(rows []ObjectionRow) {
	for _, row := range rows {
		trigger := strings.ToLower(strings.TrimSpace(row.Trigger))
		reply := strings.TrimSpace(row.Reply)
		if trigger == "" || reply == "" {
			s.SkippedRows++
			continue
		}
		s.Objections = append(s.Objections, entity.ObjectionRule{
			Trigger: trigger,
			Reply:   reply,
			Key:     entity.NormalizeFilterKey(strings.ToLower(strings.TrimSpace(row.FilterKey))),
		})
	}
}

func (s *Snapshot) buildReactions(rows []ReactionRow) {
	for _, row := range rows {
		trigger := strings.ToLower(strings.TrimSpace(row.Trigger))
		reply := strings.TrimSpace(row.Reply)
		if trigger == "" || reply == "" {
			s.SkippedRows++
			continue
		}
		s.Reactions = append(s.Reactions, entity.ReactionRule{Trigger: trigger, Reply: reply})
	}
}

func (s *Snapshot) buildSections(rows []SectionRow) {
	for _, row := range rows {
		value := strings.TrimSpace(row.SectionValue)
		if value == "" || strings.TrimSpace(row.Keyword) == "" {
			s.SkippedRows++
			continue
		}
		for _, kw := range strings.Split(row.Keyword, ",") {
			norm := textnorm.Normalize(kw)
			if norm == "" {
				continue
			}
			stem := textnorm.Stem(norm)
			if _, taken := s.sections[stem]; !taken {
				s.sections[stem] = value
			}
		}
	}
}

func parseOptionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
