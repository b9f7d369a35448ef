package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ContentEntry is one remotely generated quiz or maze.
type ContentEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	PromptHash string    `json:"prompt_hash"`
	Model      string    `json:"model"`
	Data       []byte    `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
}

// ContentRepository logs generated content. It implements content.Recorder.
type ContentRepository struct {
	db *sql.DB
}

// GeneratedContent returns the generated content repository for this store.
func (s *Store) GeneratedContent() *ContentRepository {
	return &ContentRepository{db: s.db}
}

// RecordContent stores one generation result under its attempt id.
func (r *ContentRepository) RecordContent(ctx context.Context, id, kind, promptHash, model string, data []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generated_content (id, kind, prompt_hash, model, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, kind, promptHash, model, data, time.Now().UnixMilli(),
	)
	return err
}

// Get returns the entry with the given id.
func (r *ContentRepository) Get(ctx context.Context, id string) (*ContentEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, prompt_hash, model, data, created_at FROM generated_content WHERE id = ?`,
		id,
	)
	c, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns up to limit entries of kind, newest first. An empty kind
// lists all kinds.
func (r *ContentRepository) List(ctx context.Context, kind string, limit int) ([]*ContentEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, prompt_hash, model, data, created_at FROM generated_content
		 WHERE ? = '' OR kind = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		kind, kind, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*ContentEntry{}
	for rows.Next() {
		c, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Purge deletes entries older than maxAge and returns how many were removed.
func (r *ContentRepository) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	result, err := r.db.ExecContext(ctx, `DELETE FROM generated_content WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*ContentEntry, error) {
	c := &ContentEntry{}
	var created int64
	if err := s.Scan(&c.ID, &c.Kind, &c.PromptHash, &c.Model, &c.Data, &created); err != nil {
		return nil, err
	}
	c.CreatedAt = time.UnixMilli(created)
	return c, nil
}
