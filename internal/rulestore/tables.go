package rulestore

import "context"

// Tables raw, untyped rule rows as fetched from a configuration source.
// Sources only transport strings; all parsing and validation happens in
// BuildSnapshot so every source shares one set of rules.
type Tables struct {
	FilterPatterns []PatternRow
	Locations      []LocationRow
	Conditions     []ConditionRow
	Keywords       []KeywordRow
	Questions      []QuestionRow
	Objections     []ObjectionRow
	Reactions      []ReactionRow
	Sections       []SectionRow
	Prompts        []PromptRow
	Welcome        []string
}

type PatternRow struct {
	FilterKey   string
	PatternType string
	PatternText string
	ValueMin    string
	ValueMax    string
	ValueList   string
}

type LocationRow struct {
	Type         string
	Synonym      string
	OfficialName string
	TargetID     string
}

type ConditionRow struct {
	ID       string
	Label    string
	Synonyms string // ";"-separated
}

type KeywordRow struct {
	Intent  string
	Phrases string // ","-separated
}

type QuestionRow struct {
	Order       string
	QuestionKey string
	Text        string
}

type ObjectionRow struct {
	Trigger   string
	Reply     string
	FilterKey string
}

type ReactionRow struct {
	Trigger string
	Reply   string
}

type SectionRow struct {
	Keyword      string // ","-separated alternatives
	SectionValue string
}

type PromptRow struct {
	Key  string
	Text string
}

// Source fetches all rule tables from one configuration backend.
// Fetch must return a fully populated Tables or an error; partial
// results are never merged into a snapshot.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Tables, error)
}
