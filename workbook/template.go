package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/handover"
)

const (
	Sheet      = "Overdragelser"
	Table      = "OverdragelserTable"
	TableStyle = "TableStyleMedium9"
)

// WriteEmptyTemplate writes an empty hand-over workbook: the header row, one
// blank row and a table bound to exactly those two rows. Any existing file is
// replaced.
func WriteEmptyTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), Sheet); err != nil {
		return err
	}

	rows := [][]string{
		handover.Columns,
		make([]string, len(handover.Columns)),
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(Sheet, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(handover.Columns), len(rows))
	if err != nil {
		return err
	}

	stripes := true
	table := excelize.Table{
		Range:          "A1:" + last,
		Name:           Table,
		StyleName:      TableStyle,
		ShowRowStripes: &stripes,
	}

	if err := f.AddTable(Sheet, &table); err != nil {
		return fmt.Errorf("error creating table %s (%w)", Table, err)
	}

	// ... column widths
	for c := range handover.Columns {
		width := 0
		for _, row := range rows {
			if n := utf8.RuneCountInString(row[c]); n > width {
				width = n
			}
		}

		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(Sheet, col, col, float64(width+2)); err != nil {
			return err
		}
	}

	// ... alignment
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Vertical: "center",
			WrapText: true,
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(Sheet, "A1", last, style); err != nil {
		return err
	}

	return save(f, path)
}

// save writes the workbook to a temporary file in the destination directory
// and renames it over the destination.
func save(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".template-*.xlsx")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := f.Write(tmp); err != nil {
		return fmt.Errorf("error writing workbook (%w)", err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
