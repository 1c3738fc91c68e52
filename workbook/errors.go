package workbook

import (
	"fmt"
	"strings"
)

// SheetNotFoundError is returned when the workbook has no sheet with the
// requested name.
type SheetNotFoundError struct {
	Path      string
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("worksheet %q not found in %s (sheets: %s)", e.Sheet, e.Path, strings.Join(e.Available, ", "))
}

// ColumnError is returned when a required column label is missing from the
// header row.
type ColumnError struct {
	Sheet  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("missing '%s' column in worksheet %q", e.Column, e.Sheet)
}
