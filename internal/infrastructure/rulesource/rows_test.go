package rulesource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTablesFromGridsSkipsHeaderAndEmptyRows(t *testing.T) {
	grids := map[string]grid{
		tabFilterPatterns: {
			{"filter_key", "pattern_type", "pattern_text", "value_min", "value_max", "value_list"},
			{"rooms", "word", "однушка", "", "", "1"},
			{"", "", ""},
			{"floor", "special", "останній поверх"},
		},
		tabLocations: {
			{"type", "synonym", "official_name", "target_id"},
			{"district", "Центр", "Центральний", "1"},
		},
		tabWelcome: {
			{"text"},
			{"Вітаю!"},
			{""},
		},
	}

	tables := tablesFromGrids(grids)

	if len(tables.FilterPatterns) != 2 {
		t.Errorf("patterns = %d, want 2", len(tables.FilterPatterns))
	}
	// short spreadsheet rows read as empty trailing cells
	if got := tables.FilterPatterns[1].ValueList; got != "" {
		t.Errorf("short row value_list = %q, want empty", got)
	}
	if len(tables.Locations) != 1 || tables.Locations[0].TargetID != "1" {
		t.Errorf("locations = %+v", tables.Locations)
	}
	if len(tables.Welcome) != 1 {
		t.Errorf("welcome = %v, want one line", tables.Welcome)
	}
	if tables.Questions != nil {
		t.Errorf("missing tab produced rows: %+v", tables.Questions)
	}
}

func TestYAMLSourceFetch(t *testing.T) {
	doc := `
filter_patterns:
  - key: rooms
    type: word
    patterns: "однушка, однокімнатна"
    value: "1"
locations:
  - type: district
    synonym: Салтівка
    official: Салтівський
    id: "2"
questions:
  - order: "1"
    key: district
    text: "Який район?"
prompts:
  contact_request: "Залиште номер."
welcome:
  - "Вітаю!"
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewYAMLSource(path)
	tables, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(tables.FilterPatterns) != 1 || tables.FilterPatterns[0].ValueList != "1" {
		t.Errorf("patterns = %+v", tables.FilterPatterns)
	}
	if len(tables.Locations) != 1 || tables.Locations[0].Synonym != "Салтівка" {
		t.Errorf("locations = %+v", tables.Locations)
	}
	if len(tables.Questions) != 1 || tables.Questions[0].QuestionKey != "district" {
		t.Errorf("questions = %+v", tables.Questions)
	}
	if len(tables.Prompts) != 1 || tables.Prompts[0].Key != "contact_request" {
		t.Errorf("prompts = %+v", tables.Prompts)
	}
}

func TestYAMLSourceMissingFile(t *testing.T) {
	src := NewYAMLSource(filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected an error for a missing file")
	}
}
