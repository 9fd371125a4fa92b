package database

import "time"

// Document is one stored JSON document
type Document struct {
	Key       string    `db:"doc_key"`
	Body      string    `db:"body"`
	UpdatedAt time.Time `db:"updated_at"`
}
