// Package rulesource implements the rule table backends: Google
// Sheets, a local XLSX workbook and a YAML file. Every backend returns
// the same raw rulestore.Tables; validation lives in the snapshot
// builder, not here.
package rulesource

import (
	"strings"

	"github.com/yourusername/realtor-intake-bot/internal/rulestore"
)

// Tab names shared by the Sheets and XLSX backends. The first row of
// every tab is a header and is skipped.
const (
	tabFilterPatterns = "filter_patterns"
	tabLocations      = "districts"
	tabConditions     = "dictionaries"
	tabKeywords       = "keywords"
	tabQuestions      = "questions"
	tabObjections     = "objections"
	tabReactions      = "reactions"
	tabSections       = "sections"
	tabPrompts        = "prompts"
	tabWelcome        = "welcome"
)

// cell returns the trimmed cell at index i, tolerant of short rows:
// spreadsheet APIs drop trailing empty cells.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// grid is one tab's cell matrix, header row included.
type grid [][]string

func (g grid) dataRows() [][]string {
	if len(g) <= 1 {
		return nil
	}
	return g[1:]
}

// tablesFromGrids maps named cell grids onto raw rule tables. Missing
// tabs simply yield empty tables; the snapshot builder decides what is
// tolerable.
func tablesFromGrids(grids map[string]grid) *rulestore.Tables {
	t := &rulestore.Tables{}

	for _, row := range grids[tabFilterPatterns].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.FilterPatterns = append(t.FilterPatterns, rulestore.PatternRow{
			FilterKey:   cell(row, 0),
			PatternType: cell(row, 1),
			PatternText: cell(row, 2),
			ValueMin:    cell(row, 3),
			ValueMax:    cell(row, 4),
			ValueList:   cell(row, 5),
		})
	}
	for _, row := range grids[tabLocations].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Locations = append(t.Locations, rulestore.LocationRow{
			Type:         cell(row, 0),
			Synonym:      cell(row, 1),
			OfficialName: cell(row, 2),
			TargetID:     cell(row, 3),
		})
	}
	for _, row := range grids[tabConditions].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Conditions = append(t.Conditions, rulestore.ConditionRow{
			ID:       cell(row, 0),
			Label:    cell(row, 1),
			Synonyms: cell(row, 2),
		})
	}
	for _, row := range grids[tabKeywords].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Keywords = append(t.Keywords, rulestore.KeywordRow{
			Intent:  cell(row, 0),
			Phrases: cell(row, 1),
		})
	}
	for _, row := range grids[tabQuestions].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Questions = append(t.Questions, rulestore.QuestionRow{
			Order:       cell(row, 0),
			QuestionKey: cell(row, 1),
			Text:        cell(row, 2),
		})
	}
	for _, row := range grids[tabObjections].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Objections = append(t.Objections, rulestore.ObjectionRow{
			Trigger:   cell(row, 0),
			Reply:     cell(row, 1),
			FilterKey: cell(row, 2),
		})
	}
	for _, row := range grids[tabReactions].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Reactions = append(t.Reactions, rulestore.ReactionRow{
			Trigger: cell(row, 0),
			Reply:   cell(row, 1),
		})
	}
	for _, row := range grids[tabSections].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Sections = append(t.Sections, rulestore.SectionRow{
			Keyword:      cell(row, 0),
			SectionValue: cell(row, 1),
		})
	}
	for _, row := range grids[tabPrompts].dataRows() {
		if emptyRow(row) {
			continue
		}
		t.Prompts = append(t.Prompts, rulestore.PromptRow{
			Key:  cell(row, 0),
			Text: cell(row, 1),
		})
	}
	for _, row := range grids[tabWelcome].dataRows() {
		if text := cell(row, 0); text != "" {
			t.Welcome = append(t.Welcome, text)
		}
	}

	return t
}
