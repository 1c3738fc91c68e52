package workbook

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/handover"
)

func TestWriteEmptyTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Aktivitetsoverdragelse.xlsx")

	if err := WriteEmptyTemplate(path); err != nil {
		t.Fatalf("Unexpected error writing template (%v)", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Error opening template (%v)", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); !reflect.DeepEqual(sheets, []string{Sheet}) {
		t.Errorf("Incorrect sheets - expected %v, got %v", []string{Sheet}, sheets)
	}

	rows, err := f.GetRows(Sheet)
	if err != nil {
		t.Fatalf("%v", err)
	}

	if len(rows) < 1 || !reflect.DeepEqual(rows[0], handover.Columns) {
		t.Errorf("Incorrect header\n   expected: %v\n   got:      %v\n", handover.Columns, rows)
	}

	tables, err := f.GetTables(Sheet)
	if err != nil {
		t.Fatalf("%v", err)
	}

	if len(tables) != 1 {
		t.Fatalf("Expected 1 table, got %v", len(tables))
	}

	if tables[0].Name != Table || tables[0].Range != "A1:C2" || tables[0].StyleName != TableStyle {
		t.Errorf("Incorrect table - got name:%v range:%v style:%v", tables[0].Name, tables[0].Range, tables[0].StyleName)
	}

	widths := map[string]float64{"A": 32, "B": 22, "C": 24}
	for col, expected := range widths {
		if width, err := f.GetColWidth(Sheet, col); err != nil {
			t.Errorf("%v", err)
		} else if width != expected {
			t.Errorf("Incorrect width for column %v - expected %v, got %v", col, expected, width)
		}
	}

	for _, cell := range []string{"A1", "B1", "C1", "A2", "B2", "C2"} {
		id, err := f.GetCellStyle(Sheet, cell)
		if err != nil {
			t.Fatalf("%v", err)
		}

		style, err := f.GetStyle(id)
		if err != nil {
			t.Fatalf("%v", err)
		}

		if style.Alignment == nil || style.Alignment.Vertical != "center" || !style.Alignment.WrapText {
			t.Errorf("Incorrect alignment for cell %v - got %+v", cell, style.Alignment)
		}
	}
}

func TestWriteEmptyTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Aktivitetsoverdragelse.xlsx")

	if err := WriteEmptyTemplate(path); err != nil {
		t.Fatalf("Unexpected error writing template (%v)", err)
	}

	rows, err := ExtractRows(path, Sheet)
	if err != nil {
		t.Fatalf("Unexpected error extracting rows (%v)", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Expected exactly 1 row, got %v", len(rows))
	}

	item := handover.NewWorkItem(rows[0])
	if item.Payload != (handover.Payload{}) {
		t.Errorf("Expected empty row, got %+v", item.Payload)
	}
}

func TestWriteEmptyTemplateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Aktivitetsoverdragelse.xlsx")

	structure := func() ([][]string, []string) {
		if err := WriteEmptyTemplate(path); err != nil {
			t.Fatalf("Unexpected error writing template (%v)", err)
		}

		f, err := excelize.OpenFile(path)
		if err != nil {
			t.Fatalf("%v", err)
		}
		defer f.Close()

		rows, _ := f.GetRows(Sheet)
		tables, _ := f.GetTables(Sheet)
		ranges := []string{}
		for _, table := range tables {
			ranges = append(ranges, table.Name+"="+table.Range)
		}

		return rows, ranges
	}

	rows1, tables1 := structure()
	first, _ := os.ReadFile(path)

	rows2, tables2 := structure()
	second, _ := os.ReadFile(path)

	if !reflect.DeepEqual(rows1, rows2) || !reflect.DeepEqual(tables1, tables2) {
		t.Errorf("Template structure changed between runs\n   first:  %v %v\n   second: %v %v\n", rows1, tables1, rows2, tables2)
	}

	if len(first) == 0 || len(second) == 0 {
		t.Errorf("Empty template file")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Temporary files left behind: %v", entries)
	}
}

func TestExtractRows(t *testing.T) {
	path := book(t, Sheet, [][]any{
		{"Oprindelig aktivitetsbehandler", "Sagens sagsbehandler", "Ny aktivitetsbehandler"},
		{"Alice", "Bob", "Carol"},
		{" Dan ", "Eve", "Frank "},
	})

	rows, err := ExtractRows(path, Sheet)
	if err != nil {
		t.Fatalf("Unexpected error extracting rows (%v)", err)
	}

	items := handover.Transform(rows)
	references := []string{}
	for _, item := range items {
		references = append(references, item.Reference)
	}

	expected := []string{"Alice + Bob -> Carol", "Dan + Eve -> Frank"}
	if !reflect.DeepEqual(references, expected) {
		t.Errorf("Incorrect references\n   expected: %v\n   got:      %v\n", expected, references)
	}

	if rows[0].Index != 2 || rows[1].Index != 3 {
		t.Errorf("Incorrect row indices - got %v, %v", rows[0].Index, rows[1].Index)
	}
}

func TestExtractRowsWithTypedCells(t *testing.T) {
	path := book(t, Sheet, [][]any{
		{"Oprindelig aktivitetsbehandler", "Sagens sagsbehandler", "Ny aktivitetsbehandler"},
		{12345, 4.5, true},
		{"az12345", nil, "  "},
	})

	rows, err := ExtractRows(path, Sheet)
	if err != nil {
		t.Fatalf("Unexpected error extracting rows (%v)", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %v", len(rows))
	}

	if rows[0].OriginalHandler.Kind() != handover.Number || rows[0].OriginalHandler.Text() != "12345" {
		t.Errorf("Incorrect numeric cell - got %#v", rows[0].OriginalHandler)
	}

	if rows[0].CaseHandler.Text() != "4.5" {
		t.Errorf("Incorrect decimal cell - got %q", rows[0].CaseHandler.Text())
	}

	if rows[0].NewHandler.Kind() != handover.Bool || rows[0].NewHandler.Text() != "TRUE" {
		t.Errorf("Incorrect boolean cell - got %#v", rows[0].NewHandler)
	}

	if !rows[1].CaseHandler.IsEmpty() {
		t.Errorf("Expected empty cell, got %#v", rows[1].CaseHandler)
	}

	if item := handover.NewWorkItem(rows[1]); item.Reference != "az12345 +  -> " {
		t.Errorf("Incorrect reference - got %q", item.Reference)
	}
}

func TestExtractRowsWithOutOfOrderColumns(t *testing.T) {
	path := book(t, Sheet, [][]any{
		{"Ny aktivitetsbehandler", "Noter", "Oprindelig aktivitetsbehandler", " Sagens sagsbehandler "},
		{"Carol", "x", "Alice", "Bob"},
	})

	rows, err := ExtractRows(path, Sheet)
	if err != nil {
		t.Fatalf("Unexpected error extracting rows (%v)", err)
	}

	if item := handover.NewWorkItem(rows[0]); item.Reference != "Alice + Bob -> Carol" {
		t.Errorf("Incorrect reference - got %q", item.Reference)
	}
}

func TestExtractRowsWithMissingSheet(t *testing.T) {
	path := book(t, "Sheet1", [][]any{{"Oprindelig aktivitetsbehandler"}})

	_, err := ExtractRows(path, Sheet)

	var missing *SheetNotFoundError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected SheetNotFoundError, got %v", err)
	}

	if missing.Sheet != Sheet || !reflect.DeepEqual(missing.Available, []string{"Sheet1"}) {
		t.Errorf("Incorrect error - got %+v", missing)
	}
}

func TestExtractRowsWithMissingColumn(t *testing.T) {
	path := book(t, Sheet, [][]any{
		{"Oprindelig aktivitetsbehandler", "Sagens sagsbehandler"},
		{"Alice", "Bob"},
	})

	_, err := ExtractRows(path, Sheet)

	var missing *ColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("Expected ColumnError, got %v", err)
	}

	if missing.Column != handover.ColumnNewHandler {
		t.Errorf("Incorrect missing column - expected %q, got %q", handover.ColumnNewHandler, missing.Column)
	}
}

func TestExtractRowsWithRowsBelowTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Aktivitetsoverdragelse.xlsx")
	if err := WriteEmptyTemplate(path); err != nil {
		t.Fatalf("%v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("%v", err)
	}

	if err := f.SetSheetRow(Sheet, "A3", &[]any{"Alice", "Bob", "Carol"}); err != nil {
		t.Fatalf("%v", err)
	}

	if err := f.Save(); err != nil {
		t.Fatalf("%v", err)
	}
	f.Close()

	rows, err := ExtractRows(path, Sheet)
	if err != nil {
		t.Fatalf("Unexpected error extracting rows (%v)", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows (blank table row + appended row), got %v", len(rows))
	}

	if item := handover.NewWorkItem(rows[1]); item.Reference != "Alice + Bob -> Carol" {
		t.Errorf("Incorrect reference - got %q", item.Reference)
	}
}

func book(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("%v", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("%v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	return path
}

func TestExtractRowsWithDateFormattedCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		t.Fatalf("%v", err)
	}

	header := []any{"Oprindelig aktivitetsbehandler", "Sagens sagsbehandler", "Ny aktivitetsbehandler"}
	values := []any{45000, 45000, 45000}

	if err := f.SetSheetRow(Sheet, "A1", &header); err != nil {
		t.Fatalf("%v", err)
	}

	if err := f.SetSheetRow(Sheet, "A2", &values); err != nil {
		t.Fatalf("%v", err)
	}

	format := "dd-mm-yyyy"
	custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		t.Fatalf("%v", err)
	}

	builtin, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("%v", err)
	}

	if err := f.SetCellStyle(Sheet, "A2", "A2", custom); err != nil {
		t.Fatalf("%v", err)
	}

	if err := f.SetCellStyle(Sheet, "B2", "B2", builtin); err != nil {
		t.Fatalf("%v", err)
	}

	shortDate, err := f.GetCellValue(Sheet, "B2")
	if err != nil {
		t.Fatalf("%v", err)
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	rows, err := ExtractRows(path, Sheet)
	if err != nil {
		t.Fatalf("Unexpected error extracting rows (%v)", err)
	} else if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %v", len(rows))
	}

	if got := rows[0].OriginalHandler; got.Kind() != handover.String || got.Text() != "15-03-2023" {
		t.Errorf("Incorrect custom date cell\n   expected: %v\n   got:      %#v", "15-03-2023", got)
	}

	if got := rows[0].CaseHandler.Text(); got != shortDate || got == "45000" {
		t.Errorf("Incorrect short date cell\n   expected: %v\n   got:      %v", shortDate, got)
	}

	if got := rows[0].NewHandler; got.Kind() != handover.Number || got.Text() != "45000" {
		t.Errorf("Incorrect unformatted number cell\n   expected: %v\n   got:      %#v", "45000", got)
	}
}

func TestIsDateFormat(t *testing.T) {
	tests := map[string]bool{
		"dd-mm-yyyy":        true,
		"d/m/yy h:mm":       true,
		"hh:mm:ss":          true,
		"General":           false,
		"#,##0.00":          false,
		`0 "days"`:          false,
		`\d0`:               false,
		"[Red]#,##0;[Blue]": false,
		"@":                 false,
	}

	for format, expected := range tests {
		if got := isDateFormat(format); got != expected {
			t.Errorf("Incorrect date format check for %q\n   expected: %v\n   got:      %v", format, expected, got)
		}
	}
}
