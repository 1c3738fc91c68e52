package handover

import (
	"fmt"
)

// Batch holds the parallel reference and data lists submitted to the work
// queue in a single call. References[i] always describes Data[i].
type Batch struct {
	References []string
	Data       []string
}

func NewBatch(items []WorkItem) (*Batch, error) {
	batch := Batch{
		References: make([]string, 0, len(items)),
		Data:       make([]string, 0, len(items)),
	}

	for i, item := range items {
		data, err := item.JSON()
		if err != nil {
			return nil, fmt.Errorf("error serialising work item %d (%v)", i+1, err)
		}

		batch.References = append(batch.References, item.Reference)
		batch.Data = append(batch.Data, data)
	}

	return &batch, nil
}

func (b *Batch) Len() int {
	return len(b.References)
}
