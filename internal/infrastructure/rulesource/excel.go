package rulesource

import (
	"context"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// ExcelSource reads the rule tables from a local XLSX workbook, one
// sheet per table, same layout as the Google Spreadsheet. Used for
// offline work and as a fallback when Sheets credentials are absent.
type ExcelSource struct {
	path string
}

func NewExcelSource(path string) *ExcelSource {
	return &ExcelSource{path: path}
}

func (s *ExcelSource) Name() string {
	return fmt.Sprintf("xlsx:%s", s.path)
}

// Path returns the workbook location, for the change watcher.
func (s *ExcelSource) Path() string { return s.path }

func (s *ExcelSource) Fetch(ctx context.Context) (*rulestore.Tables, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("[RULES] close workbook %s: %v", s.path, cerr)
		}
	}()

	grids := make(map[string]grid)
	for _, tab := range []string{
		tabFilterPatterns, tabLocations, tabConditions, tabKeywords,
		tabQuestions, tabObjections, tabReactions, tabSections,
		tabPrompts, tabWelcome,
	} {
		rows, err := f.GetRows(tab)
		if err != nil {
			// sheet not present in this workbook
			continue
		}
		grids[tab] = grid(rows)
	}
	if len(grids) == 0 {
		return nil, fmt.Errorf("workbook %s has none of the expected sheets", s.path)
	}

	return tablesFromGrids(grids), nil
}
