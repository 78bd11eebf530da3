// Package export renders class rosters as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/pilates-studio/internal/model"
)

var rosterColumns = []string{"Booking ID", "Customer", "Email", "Phone", "Status", "Booked At", "Notes"}

var sheetReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "-", "*", "-", "[", "(", "]", ")")

// sheetName returns an Excel-safe sheet name (at most 31 characters).
func sheetName(c model.Class) string {
	name := sheetReplacer.Replace(c.StartsAt.UTC().Format("2006-01-02 1504") + " " + c.Name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// WriteRoster writes one sheet listing every booking of class to w. A
// summary row with the confirmed count and capacity follows the entries.
func WriteRoster(w io.Writer, class model.Class, entries []model.RosterEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(class)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, toAny(rosterColumns)); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(rosterColumns), 1)
		_ = f.SetCellStyle(sheet, "A1", end, style)
	}

	confirmed := 0
	for i, e := range entries {
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		if e.Status == model.BookingConfirmed {
			confirmed++
		}
		row := []any{e.BookingID, e.CustomerName, e.CustomerEmail, e.CustomerPhone, e.Status,
			e.BookedAt.UTC().Format("2006-01-02 15:04"), notes}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	summary := []any{"Confirmed", fmt.Sprintf("%d / %d", confirmed, class.Capacity)}
	if err := writeRow(f, sheet, len(entries)+3, summary); err != nil {
		return err
	}
	_ = f.SetColWidth(sheet, "B", "C", 28)

	return f.Write(w)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
