package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	ext sqlx.ExtContext
}

// NewDocumentRepository creates a repository over a database or transaction
func NewDocumentRepository(ext sqlx.ExtContext) *DocumentRepository {
	return &DocumentRepository{ext: ext}
}

// Get returns the document stored under key, or nil if there is none
func (r *DocumentRepository) Get(ctx context.Context, key string) (*Document, error) {
	var doc Document
	query := r.ext.Rebind("SELECT doc_key, body, updated_at FROM documents WHERE doc_key = ?")
	err := sqlx.GetContext(ctx, r.ext, &doc, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return &doc, nil
}

// Put inserts or replaces the document stored under key
func (r *DocumentRepository) Put(ctx context.Context, key string, body []byte, now time.Time) error {
	query := r.ext.Rebind(`
		INSERT INTO documents (doc_key, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`)
	if _, err := r.ext.ExecContext(ctx, query, key, string(body), now.UTC()); err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

// DeleteAll removes every document
func (r *DocumentRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.ext.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}
