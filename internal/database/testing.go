package database

import (
	"fmt"
	"sync/atomic"
)

var testDBSeq atomic.Int64

// NewTestDB opens a private in-memory database with the schema migrated.
// A single connection keeps the in-memory data alive for the pool's lifetime.
func NewTestDB() (*Database, error) {
	name := fmt.Sprintf("file:equitystek_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := NewDatabase(name)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.RunMigrations(); err != nil {
		return nil, err
	}
	return db, nil
}
