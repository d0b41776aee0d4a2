package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
)

var memoryDBSeq atomic.Int64

// OpenMemory returns a migrated, private in-memory SQLite database. It backs
// package tests and the local "sqlite" development mode.
func OpenMemory() (*gorm.DB, error) {
	name := fmt.Sprintf("file:identitysync_%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
	db, err := Open(config.Database{Driver: "sqlite", DSN: name})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
