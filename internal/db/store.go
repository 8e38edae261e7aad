// Package db is the Postgres persistence layer for students, achievements
// and academic records.
package db

import "database/sql"

// Store wraps the connection and implements the verification and
// reporting collaborator interfaces.
type Store struct {
	DB *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{DB: database} }
