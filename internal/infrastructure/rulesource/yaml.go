package rulesource

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// YAMLSource reads the rule tables from a single YAML file. Mostly a
// test and development backend: a whole rule set fits in one reviewable
// file without a spreadsheet in the loop.
type YAMLSource struct {
	path string
}

func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

func (s *YAMLSource) Name() string {
	return fmt.Sprintf("yaml:%s", s.path)
}

type yamlRules struct {
	FilterPatterns []struct {
		Key      string `yaml:"key"`
		Type     string `yaml:"type"`
		Patterns string `yaml:"patterns"`
		Min      string `yaml:"min"`
		Max      string `yaml:"max"`
		Value    string `yaml:"value"`
	} `yaml:"filter_patterns"`
	Locations []struct {
		Type     string `yaml:"type"`
		Synonym  string `yaml:"synonym"`
		Official string `yaml:"official"`
		ID       string `yaml:"id"`
	} `yaml:"locations"`
	Conditions []struct {
		ID       string `yaml:"id"`
		Label    string `yaml:"label"`
		Synonyms string `yaml:"synonyms"`
	} `yaml:"conditions"`
	Keywords []struct {
		Intent  string `yaml:"intent"`
		Phrases string `yaml:"phrases"`
	} `yaml:"keywords"`
	Questions []struct {
		Order string `yaml:"order"`
		Key   string `yaml:"key"`
		Text  string `yaml:"text"`
	} `yaml:"questions"`
	Objections []struct {
		Trigger string `yaml:"trigger"`
		Reply   string `yaml:"reply"`
		Key     string `yaml:"key"`
	} `yaml:"objections"`
	Reactions []struct {
		Trigger string `yaml:"trigger"`
		Reply   string `yaml:"reply"`
	} `yaml:"reactions"`
	Sections []struct {
		Keywords string `yaml:"keywords"`
		Value    string `yaml:"value"`
	} `yaml:"sections"`
	Prompts map[string]string `yaml:"prompts"`
	Welcome []string          `yaml:"welcome"`
}

func (s *YAMLSource) Fetch(ctx context.Context) (*rulestore.Tables, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var doc yamlRules
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules yaml: %w", err)
	}

	t := &rulestore.Tables{}
	for _, p := range doc.FilterPatterns {
		t.FilterPatterns = append(t.FilterPatterns, rulestore.PatternRow{
			FilterKey:   p.Key,
			PatternType: p.Type,
			PatternText: p.Patterns,
			ValueMin:    p.Min,
			ValueMax:    p.Max,
			ValueList:   p.Value,
		})
	}
	for _, l := range doc.Locations {
		t.Locations = append(t.Locations, rulestore.LocationRow{
			Type:         l.Type,
			Synonym:      l.Synonym,
			OfficialName: l.Official,
			TargetID:     l.ID,
		})
	}
	for _, c := range doc.Conditions {
		t.Conditions = append(t.Conditions, rulestore.ConditionRow{
			ID:       c.ID,
			Label:    c.Label,
			Synonyms: c.Synonyms,
		})
	}
	for _, k := range doc.Keywords {
		t.Keywords = append(t.Keywords, rulestore.KeywordRow{Intent: k.Intent, Phrases: k.Phrases})
	}
	for _, q := range doc.Questions {
		t.Questions = append(t.Questions, rulestore.QuestionRow{Order: q.Order, QuestionKey: q.Key, Text: q.Text})
	}
	for _, o := range doc.Objections {
		t.Objections = append(t.Objections, rulestore.ObjectionRow{Trigger: o.Trigger, Reply: o.Reply, FilterKey: o.Key})
	}
	for _, r := range doc.Reactions {
		t.Reactions = append(t.Reactions, rulestore.ReactionRow{Trigger: r.Trigger, Reply: r.Reply})
	}
	for _, sec := range doc.Sections {
		t.Sections = append(t.Sections, rulestore.SectionRow{Keyword: sec.Keywords, SectionValue: sec.Value})
	}
	for key, text := range doc.Prompts {
		t.Prompts = append(t.Prompts, rulestore.PromptRow{Key: key, Text: text})
	}
	t.Welcome = append(t.Welcome, doc.Welcome...)

	return t, nil
}
