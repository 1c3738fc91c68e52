package handover

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteTSV writes the work items as a tab separated report with the worksheet
// header plus a 'Reference' column.
func WriteTSV(f io.Writer, items []WorkItem) error {
	header := append(append([]string{}, Columns...), "Reference")

	records := [][]string{}
	for _, item := range items {
		records = append(records, []string{
			item.Payload.OriginalHandler,
			item.Payload.CaseHandler,
			item.Payload.NewHandler,
			item.Reference,
		})
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		return err
	}

	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("error writing TSV report (%w)", err)
	}

	return nil
}
