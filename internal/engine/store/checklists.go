package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_studio/internal/engine"
)

// checklistSchema creates the organized checklist table. Rows carry their own
// completed flag: generated sub-steps exist only here, not in the task store.
const checklistSchema = `CREATE TABLE IF NOT EXISTS organized_task_items (
	id         BIGSERIAL PRIMARY KEY,
	video_id   TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	task_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	type       TEXT NOT NULL,
	ord        INTEGER NOT NULL,
	reason     TEXT,
	is_parent  BOOLEAN NOT NULL DEFAULT FALSE,
	parent_id  TEXT,
	parent_ord INTEGER,
	completed  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_organized_items_video_user
	ON organized_task_items (video_id, user_id, ord)`

// Package-level singleton, set from main.go. Nil when DATABASE_URL is unset;
// callers fall back to the ephemeral cache.
var checklistDB *ChecklistDB

// SetChecklistDB sets the package-level checklist DB instance.
func SetChecklistDB(db *ChecklistDB) { checklistDB = db }

// GetChecklistDB returns the package-level checklist DB instance (may be nil).
func GetChecklistDB() *ChecklistDB { return checklistDB }

// ChecklistDB holds the pgx connection pool for durable organized checklists.
type ChecklistDB struct {
	pool *pgxpool.Pool
}

// ConnectChecklistDB creates a pgx pool and ensures the schema exists.
func ConnectChecklistDB(ctx context.Context, databaseURL string) (*ChecklistDB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, checklistSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init checklist schema: %w", err)
	}

	slog.Info("checklist postgres connected", slog.String("addr", config.ConnConfig.Host))
	return &ChecklistDB{pool: pool}, nil
}

func (db *ChecklistDB) Close() {
	db.pool.Close()
}

// SaveChecklist replaces the stored checklist for a video/user pair: the old
// rows are deleted and the new list inserted in a single transaction, so a
// reader never observes a partial list.
func (db *ChecklistDB) SaveChecklist(ctx context.Context, videoID, userID string, tasks []engine.OrganizedTask) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM organized_task_items WHERE video_id = $1 AND user_id = $2`,
		videoID, userID,
	); err != nil {
		return fmt.Errorf("delete old items: %w", err)
	}

	for _, t := range tasks {
		s := t.Simplified()
		var parentID *string
		if s.ParentID != "" {
			parentID = &s.ParentID
		}
		var parentOrd *int
		if s.ParentOrder != 0 {
			parentOrd = &s.ParentOrder
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO organized_task_items
			 (video_id, user_id, task_id, content, type, ord, reason, is_parent, parent_id, parent_ord)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			videoID, userID, s.ID, s.Content, s.Type, s.Order, s.Reason, s.IsParent, parentID, parentOrd,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadChecklist returns the stored checklist and per-item completion flags.
// A missing checklist is (nil, nil, nil), not an error.
func (db *ChecklistDB) LoadChecklist(ctx context.Context, videoID, userID string) ([]engine.OrganizedTask, map[string]bool, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT task_id, content, type, ord, COALESCE(reason,''), is_parent,
		        COALESCE(parent_id,''), COALESCE(parent_ord,0), completed
		 FROM organized_task_items WHERE video_id = $1 AND user_id = $2 ORDER BY ord`,
		videoID, userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var tasks []engine.OrganizedTask
	completed := make(map[string]bool)
	for rows.Next() {
		var t engine.OrganizedTask
		var done bool
		if err := rows.Scan(&t.ID, &t.Content, &t.Type, &t.Order, &t.Reason,
			&t.IsParent, &t.ParentID, &t.ParentOrder, &done); err != nil {
			return nil, nil, err
		}
		tasks = append(tasks, t)
		completed[t.ID] = done
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if tasks == nil {
		return nil, nil, nil
	}
	return tasks, completed, nil
}

// SetItemCompleted flips the completion flag on a stored checklist item.
func (db *ChecklistDB) SetItemCompleted(ctx context.Context, videoID, userID, taskID string, done bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE organized_task_items SET completed = $4
		 WHERE video_id = $1 AND user_id = $2 AND task_id = $3`,
		videoID, userID, taskID, done,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %q not found", taskID)
	}
	return nil
}
