package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/nsnt/app/web/enums"
)

// Item is a piece of tracked content identified by url
type Item struct {
	URL          string   `db:"url" json:"url" yaml:"url" jsonschema:"required,minLength=1"`
	Title        string   `db:"title" json:"title" yaml:"title"`
	Description  *string  `db:"description" json:"description" yaml:"description"`
	UpdateMarker *string  `db:"update_marker" json:"update_marker,omitempty" yaml:"update_marker,omitempty"`
	Priority     *float64 `db:"priority" json:"priority,omitempty" yaml:"priority,omitempty"`
}

// WatchedItem merges source (cached) fields with the user-side fields of a watched item
type WatchedItem struct {
	URL               string   `db:"url" json:"url"`
	SourceTitle       string   `db:"source_title" json:"source_title"`
	SourceDescription *string  `db:"source_description" json:"source_description"`
	UserTitle         string   `db:"user_title" json:"user_title"`
	UserDescription   *string  `db:"user_description" json:"user_description"`
	Priority          *float64 `db:"priority" json:"priority,omitempty"`
	Changed           bool     `db:"changed" json:"changed"` // source marker differs from the acknowledged one
}

// ImportRequest holds items to import, Cached items go to CachedData only
type ImportRequest struct {
	Cached  []Item
	Watched []Item
	Ignored []Item
}

// ImportResult reports what an import changed. Every snapshot item is counted once as skipped at most.
type ImportResult struct {
	Cached  int `json:"cached"`  // new cached items
	Updated int `json:"updated"` // cached items refreshed with a new update marker
	Watched int `json:"watched"`
	Ignored int `json:"ignored"`
	Skipped int `json:"skipped"` // items already stored as is
}

// UpdateRequest changes user-side fields of a tracked item, nil fields are left as is
type UpdateRequest struct {
	URL         string   `json:"url"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Priority    *float64 `json:"priority,omitempty"`
}

// Counts is the number of items in each partition
type Counts struct {
	Cached  int `db:"cached" json:"cached"`
	Watched int `db:"watched" json:"watched"`
	Ignored int `db:"ignored" json:"ignored"`
	Others  int `db:"others" json:"others"`
}

// Import loads items in a single transaction. Cached items are inserted, or refreshed when their update marker
// differs from the stored one. Watched and ignored items are added to CachedData if missing and to their status
// partition, ignored before watched. Items already stored are skipped and counted, not reported as errors.
func (s *SQLiteStore) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	res := ImportResult{}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range req.Cached {
		state, err := s.upsertCached(ctx, tx, item)
		if err != nil {
			return ImportResult{}, err
		}
		switch state {
		case rowInserted:
			res.Cached++
		case rowUpdated:
			res.Updated++
		default:
			log.Printf("[DEBUG] %s. unchanged item %s skipped", enums.PartitionCached, item.URL)
			res.Skipped++
		}
	}

	groups := []struct {
		partition enums.Partition
		items     []Item
		counter   *int
	}{
		{enums.PartitionIgnored, req.Ignored, &res.Ignored},
		{enums.PartitionWatched, req.Watched, &res.Watched},
	}
	for _, g := range groups {
		for _, item := range g.items {
			added, err := s.addCached(ctx, tx, item)
			if err != nil {
				return ImportResult{}, err
			}
			if added {
				res.Cached++
			}
			inserted, err := s.insertTracked(ctx, tx, item, g.partition)
			if err != nil {
				return ImportResult{}, err
			}
			if !inserted {
				log.Printf("[DEBUG] %s. duplicate item %s skipped", g.partition, item.URL)
				res.Skipped++
				continue
			}
			*g.counter++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, nil
}

type rowState int

const (
	rowUnchanged rowState = iota
	rowInserted
	rowUpdated
)

// upsertCached inserts a cached item or replaces source fields of a stored one if the update marker differs
func (s *SQLiteStore) upsertCached(ctx context.Context, tx *sqlx.Tx, item Item) (rowState, error) {
	added, err := s.addCached(ctx, tx, item)
	if err != nil || added {
		return rowInserted, err
	}

	r, err := tx.ExecContext(ctx, `UPDATE items SET title = ?, description = ?, update_marker = ?, updated_at = ?
		WHERE url = ? AND update_marker IS NOT ?`,
		item.Title, item.Description, item.UpdateMarker, now(), item.URL, item.UpdateMarker)
	if err != nil {
		return rowUnchanged, fmt.Errorf("failed to update cached item %s: %w", item.URL, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return rowUnchanged, nil
	}
	return rowUpdated, nil
}

// addCached inserts the item into CachedData unless the url is already there
func (s *SQLiteStore) addCached(ctx context.Context, tx *sqlx.Tx, item Item) (bool, error) {
	if item.URL == "" {
		return false, fmt.Errorf("item %q has empty url", item.Title)
	}
	ts := now()
	r, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO items (url, title, description, update_marker, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, item.URL, item.Title, item.Description, item.UpdateMarker, ts, ts)
	if err != nil {
		return false, fmt.Errorf("failed to insert cached item %s: %w", item.URL, err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) insertTracked(ctx context.Context, tx *sqlx.Tx, item Item, status enums.Partition) (bool, error) {
	ts := now()
	r, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tracked
		(url, status, title, description, priority, seen_marker, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.URL, status, item.Title, item.Description, item.Priority, item.UpdateMarker, ts, ts)
	if err != nil {
		return false, fmt.Errorf("failed to insert %s item %s: %w", status, item.URL, err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

// List returns up to limit items of the partition in url order, limit <= 0 means all.
// Status partitions return user-side title and description.
func (s *SQLiteStore) List(ctx context.Context, partition enums.Partition, limit int) ([]Item, error) {
	var query string
	var args []any
	switch partition {
	case enums.PartitionCached:
		query = `SELECT url, title, description, update_marker FROM items ORDER BY url LIMIT ?`
		args = []any{sqlLimit(limit)}
	case enums.PartitionWatched, enums.PartitionIgnored:
		query = `SELECT url, title, description, priority, seen_marker AS update_marker
			FROM tracked WHERE status = ? ORDER BY url LIMIT ?`
		args = []any{partition, sqlLimit(limit)}
	default:
		return nil, fmt.Errorf("unknown partition %q", partition)
	}

	items := []Item{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s items: %w", partition, err)
	}
	return items, nil
}

// ListOthers returns cached items present in neither status partition, newest first
func (s *SQLiteStore) ListOthers(ctx context.Context, limit int) ([]Item, error) {
	items := []Item{}
	err := s.db.SelectContext(ctx, &items, `SELECT i.url, i.title, i.description, i.update_marker
		FROM items i LEFT JOIN tracked t ON t.url = i.url
		WHERE t.url IS NULL
		ORDER BY i.created_at DESC, i.url LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query other items: %w", err)
	}
	return items, nil
}

// ListWatched returns watched items joined with their cached source, by priority then url
func (s *SQLiteStore) ListWatched(ctx context.Context, limit int) ([]WatchedItem, error) {
	items := []WatchedItem{}
	err := s.db.SelectContext(ctx, &items, `SELECT t.url,
			i.title AS source_title, i.description AS source_description,
			t.title AS user_title, t.description AS user_description,
			t.priority, (i.update_marker IS NOT t.seen_marker) AS changed
		FROM tracked t JOIN items i ON i.url = t.url
		WHERE t.status = ?
		ORDER BY t.priority IS NULL, t.priority DESC, t.url LIMIT ?`, enums.PartitionWatched, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query watched items: %w", err)
	}
	return items, nil
}

// MarkWatched moves the item into WatchedData
func (s *SQLiteStore) MarkWatched(ctx context.Context, url string) error {
	return s.mark(ctx, url, enums.PartitionWatched)
}

// MarkIgnored moves the item into IgnoredData
func (s *SQLiteStore) MarkIgnored(ctx context.Context, url string) error {
	return s.mark(ctx, url, enums.PartitionIgnored)
}

// mark moves the item between status partitions atomically. A tracked item keeps its user fields,
// an untracked one is copied from CachedData. ErrNotFound if the url is not cached.
func (s *SQLiteStore) mark(ctx context.Context, url string, target enums.Partition) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current enums.Partition
	err = tx.GetContext(ctx, &current, "SELECT status FROM tracked WHERE url = ?", url)
	switch {
	case err == nil && current == target:
		return nil
	case err == nil:
		if _, err := tx.ExecContext(ctx, "UPDATE tracked SET status = ?, updated_at = ? WHERE url = ?",
			target, now(), url); err != nil {
			return fmt.Errorf("failed to move %s from %s to %s: %w", url, current, target, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		ts := now()
		r, err := tx.ExecContext(ctx, `INSERT INTO tracked
			(url, status, title, description, seen_marker, added_at, updated_at)
			SELECT url, ?, title, description, update_marker, ?, ? FROM items WHERE url = ?`,
			target, ts, ts, url)
		if err != nil {
			return fmt.Errorf("failed to add %s to %s: %w", url, target, err)
		}
		if n, _ := r.RowsAffected(); n == 0 {
			return fmt.Errorf("can't mark %s as %s: %w", url, target, ErrNotFound)
		}
	default:
		return fmt.Errorf("failed to get status of %s: %w", url, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateTracked changes user-side fields of a watched or ignored item
func (s *SQLiteStore) UpdateTracked(ctx context.Context, req UpdateRequest) error {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if req.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *req.Title)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *req.Priority)
	}
	args = append(args, req.URL)

	r, err := s.db.ExecContext(ctx, "UPDATE tracked SET "+strings.Join(sets, ", ")+" WHERE url = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", req.URL, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("can't update %s: %w", req.URL, ErrNotFound)
	}
	return nil
}

// Acknowledge marks the current source update marker as seen, so the item is not reported as changed
func (s *SQLiteStore) Acknowledge(ctx context.Context, url string) error {
	r, err := s.db.ExecContext(ctx, `UPDATE tracked
		SET seen_marker = (SELECT update_marker FROM items WHERE items.url = tracked.url), updated_at = ?
		WHERE url = ?`, now(), url)
	if err != nil {
		return fmt.Errorf("failed to acknowledge %s: %w", url, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("can't acknowledge %s: %w", url, ErrNotFound)
	}
	return nil
}

// Counts returns the number of items in each partition
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.GetContext(ctx, &c, `SELECT
		(SELECT COUNT(*) FROM items) AS cached,
		(SELECT COUNT(*) FROM tracked WHERE status = 'watched') AS watched,
		(SELECT COUNT(*) FROM tracked WHERE status = 'ignored') AS ignored,
		(SELECT COUNT(*) FROM items i LEFT JOIN tracked t ON t.url = i.url WHERE t.url IS NULL) AS others`)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count items: %w", err)
	}
	return c, nil
}
