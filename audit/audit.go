// CLAUDE:SUMMARY SQLite audit logger for canvas tool invocations — sync and batched async paths plus an Endpoint middleware.
// Package audit records canvas operations in an SQLite audit log.
//
// Two write paths: Log inserts synchronously, LogAsync buffers entries and
// flushes them in batches from a background goroutine. Close drains the
// buffer before returning.
package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/uijit/dbopen"
	"github.com/hazyhaar/uijit/idgen"
	"github.com/hazyhaar/uijit/kit"
)

const (
	batchSize     = 32
	flushInterval = 100 * time.Millisecond
	bufferSize    = 256
)

// Entry is one audit log record. Zero-value fields are filled on write.
type Entry struct {
	EntryID    string `json:"entry_id"`
	Action     string `json:"action"`
	Parameters string `json:"parameters,omitempty"`
	DeviceID   string `json:"device_id,omitempty"`
	Transport  string `json:"transport"`
	RequestID  string `json:"request_id,omitempty"`
	Status     string `json:"status"` // "success" or "error"
	Error      string `json:"error,omitempty"`
	Timestamp  int64  `json:"timestamp"` // unix milliseconds
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	entry_id      TEXT PRIMARY KEY,
	action        TEXT NOT NULL,
	parameters    TEXT NOT NULL DEFAULT '',
	device_id     TEXT NOT NULL DEFAULT '',
	transport     TEXT NOT NULL DEFAULT 'http',
	request_id    TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'success',
	error_message TEXT NOT NULL DEFAULT '',
	timestamp     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
`

// SQLiteLogger writes audit entries to an SQLite database.
type SQLiteLogger struct {
	db  *sql.DB
	gen idgen.Generator

	ch        chan *Entry
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// LoggerOption customises a SQLiteLogger.
type LoggerOption func(*SQLiteLogger)

// WithIDGenerator sets the entry ID generator. Default: idgen.Default.
func WithIDGenerator(gen idgen.Generator) LoggerOption {
	return func(l *SQLiteLogger) { l.gen = gen }
}

// NewSQLiteLogger creates a logger writing to db. The async flusher starts
// immediately; call Close to drain it.
func NewSQLiteLogger(db *sql.DB, opts ...LoggerOption) *SQLiteLogger {
	l := &SQLiteLogger{
		db:  db,
		gen: idgen.Default,
		ch:  make(chan *Entry, bufferSize),
	}
	for _, o := range opts {
		o(l)
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// Init creates the audit_log table if missing.
func (l *SQLiteLogger) Init() error {
	_, err := l.db.Exec(schema)
	return err
}

// Log fills entry defaults and inserts synchronously.
func (l *SQLiteLogger) Log(ctx context.Context, e *Entry) error {
	l.fillDefaults(ctx, e)
	_, err := dbopen.Exec(ctx, l.db,
		`INSERT INTO audit_log (entry_id, action, parameters, device_id, transport, request_id, status, error_message, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntryID, e.Action, e.Parameters, e.DeviceID, e.Transport, e.RequestID, e.Status, e.Error, e.Timestamp)
	return err
}

// LogAsync queues an entry for batched insertion. It never blocks: when the
// buffer is full the entry is dropped with a warning.
func (l *SQLiteLogger) LogAsync(e *Entry) {
	l.fillDefaults(context.Background(), e)
	select {
	case l.ch <- e:
	default:
		slog.Warn("audit: buffer full, dropping entry", "action", e.Action)
	}
}

// Close flushes pending async entries and stops the flusher.
func (l *SQLiteLogger) Close() error {
	l.closeOnce.Do(func() { close(l.ch) })
	l.wg.Wait()
	return nil
}

func (l *SQLiteLogger) fillDefaults(ctx context.Context, e *Entry) {
	if e.EntryID == "" {
		e.EntryID = l.gen()
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	if e.Status == "" {
		if e.Error != "" {
			e.Status = "error"
		} else {
			e.Status = "success"
		}
	}
	if e.Transport == "" {
		e.Transport = kit.GetTransport(ctx)
	}
}

func (l *SQLiteLogger) run() {
	defer l.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var buf []*Entry
	flush := func() {
		if len(buf) == 0 {
			return
		}
		l.flush(buf)
		buf = buf[:0]
	}

	for {
		select {
		case e, ok := <-l.ch:
			if !ok {
				flush()
				return
			}
			buf = append(buf, e)
			if len(buf) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (l *SQLiteLogger) flush(entries []*Entry) {
	ctx := context.Background()
	err := dbopen.RunTx(ctx, l.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(
			`INSERT INTO audit_log (entry_id, action, parameters, device_id, transport, request_id, status, error_message, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.Exec(e.EntryID, e.Action, e.Parameters, e.DeviceID, e.Transport, e.RequestID, e.Status, e.Error, e.Timestamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("audit: flush failed", "entries", len(entries), "error", err)
	}
}
