package rulesource

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// SheetsSource reads the rule tables from one Google Spreadsheet, one
// tab per table. Tabs missing from the spreadsheet load as empty.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsSource builds a read-only Sheets client from service-account
// credentials JSON.
func NewSheetsSource(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*SheetsSource, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsSource) Name() string {
	return fmt.Sprintf("google-sheets:%s", s.spreadsheetID)
}

func (s *SheetsSource) Fetch(ctx context.Context) (*rulestore.Tables, error) {
	wanted := []string{
		tabFilterPatterns, tabLocations, tabConditions, tabKeywords,
		tabQuestions, tabObjections, tabReactions, tabSections,
		tabPrompts, tabWelcome,
	}

	// requesting a missing tab fails the whole batch, so intersect with
	// the tabs that actually exist first
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("spreadsheet metadata: %w", err)
	}
	existing := make(map[string]bool, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}
	var tabs []string
	for _, tab := range wanted {
		if existing[tab] {
			tabs = append(tabs, tab)
		}
	}
	if len(tabs) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has none of the expected tabs", s.spreadsheetID)
	}

	resp, err := s.svc.Spreadsheets.Values.BatchGet(s.spreadsheetID).
		Ranges(tabs...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("batch get values: %w", err)
	}

	grids := make(map[string]grid, len(resp.ValueRanges))
	for i, vr := range resp.ValueRanges {
		if i >= len(tabs) || vr == nil {
			continue
		}
		var g grid
		for _, row := range vr.Values {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = fmt.Sprint(v)
			}
			g = append(g, cells)
		}
		grids[tabs[i]] = g
	}

	log.Printf("[RULES] fetched %d tabs from spreadsheet %s", len(grids), s.spreadsheetID)
	return tablesFromGrids(grids), nil
}
