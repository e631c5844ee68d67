package rulestore

import (
	"testing"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

func testTables() *Tables {
	return &Tables{
		FilterPatterns: []PatternRow{
			{FilterKey: "rooms", PatternType: "word", PatternText: "однушка, однокімнатна", ValueList: "1"},
			{FilterKey: "floor", PatternType: "special", PatternText: "останній поверх, последний этаж", ValueList: "LAST"},
			{FilterKey: "floor", PatternType: "skip", PatternText: "не важливо, неважно"},
			{FilterKey: "budget", PatternType: "phrase", PatternText: "до ста тисяч", ValueMax: "100000"},
			// malformed rows below must be skipped, not fatal
			{FilterKey: "", PatternType: "word", PatternText: "щось"},
			{FilterKey: "rooms", PatternType: "bogus", PatternText: "двушка"},
			{FilterKey: "rooms", PatternType: "word", PatternText: ""},
		},
		Locations: []LocationRow{
			{Type: "district", Synonym: "Центр", OfficialName: "Центральний", TargetID: "1"},
			{Type: "district", Synonym: "Салтівка", OfficialName: "Салтівський", TargetID: "2"},
			{Type: "street", Synonym: "Сумська", OfficialName: "вул. Сумська", TargetID: "300"},
			{Type: "district", Synonym: "центр", TargetID: "not-a-number"},
		},
		Conditions: []ConditionRow{
			{ID: "1", Label: "Євроремонт", Synonyms: "єврик;после ремонта"},
			{ID: "x", Label: "broken"},
		},
		Keywords: []KeywordRow{
			{Intent: "new_search", Phrases: "новий пошук, почати заново"},
			{Intent: "skip", Phrases: "пропустити, далі"},
		},
		Questions: []QuestionRow{
			{Order: "2", QuestionKey: "rooms", Text: "Скільки кімнат?"},
			{Order: "1", QuestionKey: "district", Text: "Який район?"},
			{Order: "", QuestionKey: "budget", Text: "Який бюджет?"},
		},
		Objections: []ObjectionRow{
			{Trigger: "дорого", Reply: "Є варіанти дешевше.", FilterKey: "budget"},
		},
		Reactions: []ReactionRow{
			{Trigger: "silence", Reply: "Ви ще тут?"},
		},
		Sections: []SectionRow{
			{Keyword: "оренда, зняти", SectionValue: "rent"},
			{Keyword: "купити", SectionValue: "sale"},
		},
		Prompts: []PromptRow{
			{Key: "contact_request", Text: "Залиште номер телефону."},
		},
		Welcome: []string{"Вітаю!", ""},
	}
}

func TestBuildSnapshotSkipsMalformedRows(t *testing.T) {
	snap := BuildSnapshot(testTables(), 1)

	if snap.Version != 1 {
		t.Fatalf("version = %d, want 1", snap.Version)
	}
	if got := len(snap.Patterns(entity.KeyRooms)); got != 1 {
		t.Errorf("rooms patterns = %d, want 1", got)
	}
	if got := len(snap.Patterns(entity.KeyFloor)); got != 2 {
		t.Errorf("floor patterns = %d, want 2", got)
	}
	if snap.SkippedRows == 0 {
		t.Error("expected malformed rows to be counted")
	}
}

func TestBuildSnapshotNormalizesAliasedKeys(t *testing.T) {
	snap := BuildSnapshot(testTables(), 1)

	rules := snap.Patterns(entity.KeyPrice)
	if len(rules) != 1 {
		t.Fatalf("price patterns = %d, want 1 (from budget alias)", len(rules))
	}
	if rules[0].Max == nil || *rules[0].Max != 100000 {
		t.Errorf("price rule max = %v, want 100000", rules[0].Max)
	}

	// question authored under "budget" must surface as the price key
	if _, ok := snap.QuestionText(entity.KeyPrice); !ok {
		t.Error("expected a question for the price key")
	}
}

func TestBuildSnapshotSwapsReversedBounds(t *testing.T) {
	tables := &Tables{FilterPatterns: []PatternRow{
		{FilterKey: "area", PatternType: "phrase", PatternText: "середня площа", ValueMin: "80", ValueMax: "40"},
	}}
	snap := BuildSnapshot(tables, 1)

	rules := snap.Patterns(entity.KeyArea)
	if len(rules) != 1 {
		t.Fatalf("area patterns = %d, want 1", len(rules))
	}
	if *rules[0].Min != 40 || *rules[0].Max != 80 {
		t.Errorf("bounds = [%d, %d], want [40, 80]", *rules[0].Min, *rules[0].Max)
	}
}

func TestBuildSnapshotLocationIndex(t *testing.T) {
	snap := BuildSnapshot(testTables(), 1)

	// Ukrainian "і" folds to "и", so lookup uses the folded form
	e, ok := snap.Locations.Lookup(entity.LocationDistrict, "салтивка")
	if !ok {
		t.Fatal("expected Салтівка to resolve as a district")
	}
	if e.TargetID != 2 {
		t.Errorf("target id = %d, want 2", e.TargetID)
	}

	if name, ok := snap.Locations.OfficialName(entity.LocationDistrict, 2); !ok || name != "Салтівський" {
		t.Errorf("official name = %q, want Салтівський", name)
	}

	// stemmed form matches the inflected "на Салтівці"
	if _, ok := snap.Locations.LookupStem(entity.LocationDistrict, "салтивк"); !ok {
		t.Error("expected stemmed district lookup to resolve")
	}
}

func TestBuildSnapshotLocationAmbiguityFirstWins(t *testing.T) {
	tables := &Tables{Locations: []LocationRow{
		{Type: "district", Synonym: "Олексіївка", TargetID: "5", OfficialName: "Олексіївський"},
		{Type: "district", Synonym: "Олексіївка", TargetID: "9", OfficialName: "Інший"},
	}}
	snap := BuildSnapshot(tables, 1)

	e, ok := snap.Locations.Lookup(entity.LocationDistrict, "олексиивка")
	if !ok || e.TargetID != 5 {
		t.Fatalf("got id %d ok=%v, want first-loaded id 5", e.TargetID, ok)
	}
	if entries, ok := snap.Locations.AmbiguousSurface("олексиивка"); !ok || len(entries) != 2 {
		t.Errorf("ambiguous entries = %d, want 2", len(entries))
	}
}

func TestBuildSnapshotConditionsAndSections(t *testing.T) {
	snap := BuildSnapshot(testTables(), 1)

	id, label, ok := snap.Conditions.Resolve("еврик")
	if !ok || id != 1 || label != "Євроремонт" {
		t.Errorf("resolve = (%d, %q, %v), want (1, Євроремонт, true)", id, label, ok)
	}
	if len(snap.Conditions.Entries()) != 1 {
		t.Errorf("condition entries = %d, want 1 (broken row skipped)", len(snap.Conditions.Entries()))
	}

	if v, ok := snap.Section("оренд"); !ok || v != "rent" {
		t.Errorf("section(оренд) = (%q, %v), want (rent, true)", v, ok)
	}
}

func TestBuildSnapshotQuestionsSorted(t *testing.T) {
	snap := BuildSnapshot(testTables(), 1)

	if len(snap.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(snap.Questions))
	}
	if snap.Questions[0].Key != entity.KeyDistrict || snap.Questions[1].Key != entity.KeyRooms {
		t.Errorf("order = %v %v, want district then rooms", snap.Questions[0].Key, snap.Questions[1].Key)
	}
	// missing order sorts last
	if snap.Questions[2].Key != entity.KeyPrice {
		t.Errorf("last question = %v, want price", snap.Questions[2].Key)
	}
}

func TestSnapshotPromptFallback(t *testing.T) {
	snap := BuildSnapshot(testTables(), 1)

	if got := snap.Prompt("contact_request", "fallback"); got != "Залиште номер телефону." {
		t.Errorf("prompt = %q", got)
	}
	if got := snap.Prompt("missing_key", "fallback"); got != "fallback" {
		t.Errorf("fallback prompt = %q", got)
	}
	if _, ok := snap.Reaction("silence"); !ok {
		t.Error("expected a silence reaction")
	}
	if len(snap.Welcome) != 1 {
		t.Errorf("welcome = %d, want 1 (empty dropped)", len(snap.Welcome))
	}
}
