// Package handover turns rows from the 'Overdragelser' worksheet into queue
// work items.
package handover

import (
	"encoding/json"
	"fmt"
)

// Column labels of the 'Overdragelser' worksheet, in sheet order.
const (
	ColumnOriginalHandler = "Oprindelig aktivitetsbehandler"
	ColumnCaseHandler     = "Sagens sagsbehandler"
	ColumnNewHandler      = "Ny aktivitetsbehandler"
)

// Columns is the fixed header row of the worksheet.
var Columns = []string{ColumnOriginalHandler, ColumnCaseHandler, ColumnNewHandler}

// Row is a single data row of the worksheet. Index is the 1-based sheet row
// and is only used in diagnostics.
type Row struct {
	Index           int
	OriginalHandler Value
	CaseHandler     Value
	NewHandler      Value
}

// Payload is the queue element data. The field order is the serialisation
// order and must not change.
type Payload struct {
	OriginalHandler string `json:"OprindeligAktivitetsbehandler"`
	CaseHandler     string `json:"SagensSagsbehandler"`
	NewHandler      string `json:"NyAktivitetsbehandler"`
}

type WorkItem struct {
	Payload   Payload
	Reference string
}

// NewWorkItem normalises the three cells of a row and builds the payload and
// trace reference. Blank rows are not rejected.
func NewWorkItem(row Row) WorkItem {
	p := Payload{
		OriginalHandler: Normalise(row.OriginalHandler),
		CaseHandler:     Normalise(row.CaseHandler),
		NewHandler:      Normalise(row.NewHandler),
	}

	return WorkItem{
		Payload:   p,
		Reference: reference(p),
	}
}

// Transform maps rows to work items, preserving row order.
func Transform(rows []Row) []WorkItem {
	items := make([]WorkItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewWorkItem(row))
	}

	return items
}

// JSON returns the serialised payload.
func (w WorkItem) JSON() (string, error) {
	b, err := json.Marshal(w.Payload)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func reference(p Payload) string {
	return fmt.Sprintf("%s + %s -> %s", p.OriginalHandler, p.CaseHandler, p.NewHandler)
}
