package orchestrator

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Queue element states.
const (
	StatusNew        = "NEW"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// QueueElement is a unit of work in a named queue.
type QueueElement struct {
	ID          string
	QueueName   string
	Status      string
	Data        string
	Reference   string
	CreatedDate string
	CreatedBy   string
}

// BulkCreateQueueElements adds one element per reference/data pair to the
// queue in a single transaction. references[i] is the reference of data[i].
func (db *DB) BulkCreateQueueElements(ctx context.Context, queue string, references, data []string) error {
	if len(references) != len(data) {
		return fmt.Errorf("%w (%d references, %d data)", ErrMismatchedBatch, len(references), len(data))
	}

	if len(references) == 0 {
		return ErrEmptyBatch
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO queues (id, queue_name, status, data, reference, created_date, created_by) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	defer stmt.Close()

	created := db.timestamp()
	for i := range references {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), queue, StatusNew, data[i], references[i], created, db.process); err != nil {
			return fmt.Errorf("error adding queue element %d (%w)", i+1, err)
		}
	}

	return tx.Commit()
}

// QueueElements returns the elements of a queue in insertion order.
func (db *DB) QueueElements(ctx context.Context, queue string) ([]QueueElement, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, queue_name, status, data, reference, created_date, created_by FROM queues WHERE queue_name = ? ORDER BY seq`,
		queue)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	elements := []QueueElement{}
	for rows.Next() {
		var e QueueElement
		var data, reference, createdBy sql.NullString

		if err := rows.Scan(&e.ID, &e.QueueName, &e.Status, &data, &reference, &e.CreatedDate, &createdBy); err != nil {
			return nil, err
		}

		e.Data = data.String
		e.Reference = reference.String
		e.CreatedBy = createdBy.String

		elements = append(elements, e)
	}

	return elements, rows.Err()
}
