package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/drillcards/internal/deck"
	"github.com/example/drillcards/internal/snapshot"
)

// Sheet names of the xlsx report
const (
	ItemsSheet     = "Items"
	ResponsesSheet = "Responses"
	SpeedSheet     = "Speed"
)

var (
	itemsHeader     = []string{"ID", "Deck", "Question", "Answer", "State", "Due", "Due Now", "Stability", "Difficulty", "Reps", "Lapses"}
	responsesHeader = []string{"Timestamp", "Item", "Answer", "Correct", "Response Time (ms)"}
	speedHeader     = []string{"Deck", "Samples", "P25", "P50", "P75", "P90", "Warmed Up"}
)

// ReportResult holds the result of a report export
type ReportResult struct {
	Path      string
	Items     int
	Responses int
	Decks     int
}

// WriteReport writes a progress report to path. A .csv path gets the items
// table only; anything else is written as an Excel workbook.
func WriteReport(path string, state snapshot.State, registry *deck.Registry, now time.Time) (*ReportResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		return writeCSV(path, state, registry, now)
	}
	return writeExcel(path, state, registry, now)
}

// itemRows renders one row per item. Items of unregistered decks are still
// listed, without question and answer.
func itemRows(state snapshot.State, registry *deck.Registry, now time.Time) [][]string {
	rows := make([][]string, 0, len(state.Items))
	for _, item := range state.Items {
		question, answer := "", ""
		if d, err := registry.ResolveForItem(item); err == nil {
			question, _ = d.FormatQuestion(item)
			answer, _ = d.CanonicalAnswerDisplay(item)
		}
		m := item.MemoryState
		rows = append(rows, []string{
			item.ID,
			item.DeckID,
			question,
			answer,
			m.State.String(),
			m.Due.Format(time.RFC3339),
			strconv.FormatBool(m.IsDue(now)),
			strconv.FormatFloat(m.Stability, 'f', 2, 64),
			strconv.FormatFloat(m.Difficulty, 'f', 2, 64),
			strconv.Itoa(m.Reps),
			strconv.Itoa(m.Lapses),
		})
	}
	return rows
}

// writeCSV writes the items table as CSV
func writeCSV(path string, state snapshot.State, registry *deck.Registry, now time.Time) (*ReportResult, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(itemsHeader); err != nil {
		return nil, fmt.Errorf("error writing CSV: %w", err)
	}
	rows := itemRows(state, registry, now)
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("error writing CSV: %w", err)
	}
	return &ReportResult{Path: path, Items: len(rows)}, nil
}

// writeExcel writes items, responses and speed statistics to a workbook
func writeExcel(path string, state snapshot.State, registry *deck.Registry, now time.Time) (*ReportResult, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{ResponsesSheet, SpeedSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	items := itemRows(state, registry, now)
	if err := writeSheet(f, ItemsSheet, itemsHeader, stringRows(items), bold); err != nil {
		return nil, err
	}

	responses := make([][]interface{}, 0, len(state.Session.Responses))
	for _, r := range state.Session.Responses {
		responses = append(responses, []interface{}{
			r.Timestamp.Format(time.RFC3339),
			r.ItemID,
			string(r.Answer),
			r.Correct,
			r.ResponseTimeMs,
		})
	}
	if err := writeSheet(f, ResponsesSheet, responsesHeader, responses, bold); err != nil {
		return nil, err
	}

	deckIDs := make([]string, 0, len(state.Session.SpeedStats))
	for id := range state.Session.SpeedStats {
		deckIDs = append(deckIDs, id)
	}
	sort.Strings(deckIDs)
	speed := make([][]interface{}, 0, len(deckIDs))
	for _, id := range deckIDs {
		s := state.Session.SpeedStats[id]
		speed = append(speed, []interface{}{
			id,
			len(s.Samples),
			s.Percentiles.P25,
			s.Percentiles.P50,
			s.Percentiles.P75,
			s.Percentiles.P90,
			s.WarmedUp,
		})
	}
	if err := writeSheet(f, SpeedSheet, speedHeader, speed, bold); err != nil {
		return nil, err
	}

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save Excel file: %w", err)
	}
	return &ReportResult{
		Path:      path,
		Items:     len(items),
		Responses: len(responses),
		Decks:     len(speed),
	}, nil
}

func stringRows(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

// writeSheet writes a bold header row followed by rows
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle int) error {
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
