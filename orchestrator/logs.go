package orchestrator

import (
	"context"
)

const (
	LevelTrace = "TRACE"
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

type LogEntry struct {
	Time    string
	Level   string
	Process string
	Message string
}

func (db *DB) LogInfo(ctx context.Context, message string) error {
	return db.log(ctx, LevelInfo, message)
}

func (db *DB) LogError(ctx context.Context, message string) error {
	return db.log(ctx, LevelError, message)
}

func (db *DB) LogTrace(ctx context.Context, message string) error {
	return db.log(ctx, LevelTrace, message)
}

// Logs returns the process log entries for this process in the order written.
func (db *DB) Logs(ctx context.Context) ([]LogEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT log_time, log_level, process_name, log_message FROM logs WHERE process_name = ? ORDER BY seq`,
		db.process)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	entries := []LogEntry{}
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Time, &e.Level, &e.Process, &e.Message); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (db *DB) log(ctx context.Context, level, message string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO logs (log_time, log_level, process_name, log_message) VALUES (?, ?, ?, ?)`,
		db.timestamp(), level, db.process, message)

	return err
}
