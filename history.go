package v2md

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultHistoryLimit 浏览历史默认保留条数
const DefaultHistoryLimit = 100

// HistoryEntry 一条浏览记录
type HistoryEntry struct {
	TopicID   int
	Title     string
	NodeName  string
	NodeTitle string
	Author    string
	ViewedAt  time.Time
}

// History is the reading history: most recent first, one entry per topic,
// trimmed to a fixed number of entries.
type History struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string, limit int) (*History, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, NewIOError("failed to create history dir", err)
	}

	slog.Debug("Opening history database", "path", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, NewIOError("failed to open history database", err)
	}

	createHistoryTable := `
	CREATE TABLE IF NOT EXISTS history (
		topic_id INTEGER PRIMARY KEY,           -- one row per topic
		title TEXT NOT NULL,
		node_name TEXT,
		node_title TEXT,
		author TEXT,
		seq INTEGER NOT NULL,                   -- monotonically increasing view order
		viewed_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(createHistoryTable); err != nil {
		db.Close()
		return nil, NewIOError("failed to create history table", err)
	}
	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_history_seq ON history(seq)"); err != nil {
		db.Close()
		return nil, NewIOError("failed to create history index", err)
	}

	return &History{db: db, limit: limit, now: time.Now}, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// Record moves topic to the front of the history and drops whatever falls
// past the limit.
func (h *History) Record(ctx context.Context, topic Topic) error {
	if topic.ID <= 0 {
		return NewValidationError("topic id is empty")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return NewIOError("failed to begin history transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history (topic_id, title, node_name, node_title, author, seq, viewed_at)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM history), ?)
		ON CONFLICT(topic_id) DO UPDATE SET
			title = excluded.title,
			node_name = excluded.node_name,
			node_title = excluded.node_title,
			author = excluded.author,
			seq = excluded.seq,
			viewed_at = excluded.viewed_at`,
		topic.ID, topic.Title, topic.NodeName, topic.NodeTitle, topic.Author, h.now().UTC())
	if err != nil {
		return NewIOError("failed to record history", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE topic_id NOT IN (
			SELECT topic_id FROM history ORDER BY seq DESC LIMIT ?
		)`, h.limit)
	if err != nil {
		return NewIOError("failed to trim history", err)
	}

	if err := tx.Commit(); err != nil {
		return NewIOError("failed to commit history", err)
	}
	return nil
}

// List returns the history, most recent first.
func (h *History) List(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT topic_id, title, node_name, node_title, author, viewed_at
		FROM history ORDER BY seq DESC`)
	if err != nil {
		return nil, NewIOError("failed to query history", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var nodeName, nodeTitle, author sql.NullString
		if err := rows.Scan(&e.TopicID, &e.Title, &nodeName, &nodeTitle, &author, &e.ViewedAt); err != nil {
			return nil, NewIOError("failed to scan history", err)
		}
		e.NodeName, e.NodeTitle, e.Author = nodeName.String, nodeTitle.String, author.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewIOError("failed to read history", err)
	}
	return entries, nil
}

// Clear removes every entry.
func (h *History) Clear(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return NewIOError("failed to clear history", err)
	}
	return nil
}
