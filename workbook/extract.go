// Package workbook reads hand-over rows from the 'Overdragelser' workbook and
// writes the empty workbook that replaces it once the rows have been queued.
package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/handover"
)

// ExtractRows returns one row per data row of the sheet, in sheet order. The
// header is the first row and columns are located by label. Rows that lie
// inside a table on the sheet are returned even when blank.
func ExtractRows(path, sheet string) ([]handover.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	if !hasSheet(f, sheet) {
		return nil, &SheetNotFoundError{Path: path, Sheet: sheet, Available: f.GetSheetList()}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	if len(rows) > 0 {
		for i, v := range rows[0] {
			if _, ok := index[clean(v)]; !ok {
				index[clean(v)] = i + 1
			}
		}
	}

	columns := make([]int, len(handover.Columns))
	for i, label := range handover.Columns {
		ix, ok := index[label]
		if !ok {
			return nil, &ColumnError{Sheet: sheet, Column: label}
		}

		columns[i] = ix
	}

	last, err := lastRow(f, sheet, len(rows))
	if err != nil {
		return nil, err
	}

	records := []handover.Row{}
	for r := 2; r <= last; r++ {
		values := make([]handover.Value, len(columns))
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, err
			}

			if values[i], err = cellValue(f, sheet, cell); err != nil {
				return nil, fmt.Errorf("error reading cell %s!%s (%w)", sheet, cell, err)
			}
		}

		records = append(records, handover.Row{
			Index:           r,
			OriginalHandler: values[0],
			CaseHandler:     values[1],
			NewHandler:      values[2],
		})
	}

	return records, nil
}

// lastRow is the larger of the last non-empty row and the last row of any
// table on the sheet.
func lastRow(f *excelize.File, sheet string, last int) (int, error) {
	tables, err := f.GetTables(sheet)
	if err != nil {
		return 0, err
	}

	for _, table := range tables {
		refs := strings.Split(table.Range, ":")
		if _, row, err := excelize.CellNameToCoordinates(refs[len(refs)-1]); err != nil {
			return 0, fmt.Errorf("invalid table range '%s' (%w)", table.Range, err)
		} else if row > last {
			last = row
		}
	}

	return last, nil
}

func cellValue(f *excelize.File, sheet, cell string) (handover.Value, error) {
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return handover.Value{}, err
	}

	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return handover.Value{}, err
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if raw == "" {
			return handover.Value{}, nil
		} else if isDate(f, sheet, cell) {
			if formatted, err := f.GetCellValue(sheet, cell); err == nil {
				return handover.StringValue(formatted), nil
			}
		} else if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return handover.NumberValue(n), nil
		}

	case excelize.CellTypeBool:
		return handover.BoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil

	case excelize.CellTypeDate:
		if formatted, err := f.GetCellValue(sheet, cell); err == nil {
			raw = formatted
		}
	}

	if raw == "" {
		return handover.Value{}, nil
	}

	return handover.StringValue(raw), nil
}

func hasSheet(f *excelize.File, sheet string) bool {
	for _, name := range f.GetSheetList() {
		if name == sheet {
			return true
		}
	}

	return false
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

// isDate returns true if the cell number format renders a date or time. Excel
// stores dates as serial numbers, so the number format is the only marker.
func isDate(f *excelize.File, sheet, cell string) bool {
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false
	}

	style, err := f.GetStyle(id)
	if err != nil || style == nil {
		return false
	}

	if style.CustomNumFmt != nil {
		return isDateFormat(*style.CustomNumFmt)
	}

	return (style.NumFmt >= 14 && style.NumFmt <= 22) || (style.NumFmt >= 45 && style.NumFmt <= 47)
}

// isDateFormat looks for date or time tokens outside of quoted literals,
// escaped characters and [..] sections.
func isDateFormat(format string) bool {
	quoted := false
	bracketed := false
	escaped := false

	for _, ch := range strings.ToLower(format) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = ch != '"'
		case bracketed:
			bracketed = ch != ']'
		case ch == '\\':
			escaped = true
		case ch == '"':
			quoted = true
		case ch == '[':
			bracketed = true
		case ch == 'y' || ch == 'd' || ch == 'h':
			return true
		}
	}

	return false
}
