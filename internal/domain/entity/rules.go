package entity

// Intent a recognized control phrase, distinct from a filter value.
type Intent string

const (
	IntentNewSearch   Intent = "new_search"
	IntentMoreResults Intent = "more_results"
	IntentSkip        Intent = "skip"
	IntentContinue    Intent = "continue"
	IntentViewing     Intent = "viewing"
)

// PatternKind one of the closed set of pattern-rule variants.
type PatternKind string

const (
	// PatternWord whole-word vocabulary match
	PatternWord PatternKind = "word"
	// PatternPhrase substring phrase match on the lowercased utterance
	PatternPhrase PatternKind = "phrase"
	// PatternSpecial categorical marker (e.g. "last floor"), wins over
	// numeric parsing for the same key
	PatternSpecial PatternKind = "special"
	// PatternSkip per-key skip trigger ("не важливо" as a floor answer)
	PatternSkip PatternKind = "skip"
)

// PatternRule one row of the extractor rule table. Immutable once loaded.
type PatternRule struct {
	Key          FilterKey
	Kind         PatternKind
	Alternatives []string // normalized comma-separated alternatives
	Min          *int
	Max          *int
	Value        *int // categorical value (rooms count etc.)
	LastFloor    bool // value_list == "LAST"
}

// SynonymEntry maps a surface form to a canonical location identifier.
type SynonymEntry struct {
	Kind         LocationKind
	Surface      string // normalized
	TargetID     int
	OfficialName string
}

// KeywordGroup named set of phrases mapped to one control intent.
type KeywordGroup struct {
	Intent  Intent
	Phrases []string // normalized
}

// ObjectionRule trigger phrase -> canned reply tied to one filter key.
type ObjectionRule struct {
	Trigger string // lowercased
	Reply   string
	Key     FilterKey
}

// ReactionRule trigger phrase -> canned reply, no filter association.
// The reserved trigger "silence" holds the idle-nudge text.
type ReactionRule struct {
	Trigger string
	Reply   string
}

// Question one row of the ordered question list.
type Question struct {
	Order int
	Key   FilterKey
	Text  string
}

// ConditionEntry one apartment-condition dictionary row.
type ConditionEntry struct {
	ID       int
	Label    string
	Synonyms []string // normalized, label included
}
