// Package store is the data access layer for messages and transactions.
// Every method runs exactly one SQL statement through the shared pool.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a targeted write matched no rows
var ErrNotFound = errors.New("record not found")

// ListParams filters and pages a listing
type ListParams struct {
	GroupName string // Optional partition filter, empty means all partitions
	Limit     int    // Page size, must be positive
	Offset    int    // Rows to skip
}

// Store wraps the pooled GORM handle
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an opened pool
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// page applies the optional partition filter and the newest-first ordering shared by both listings
func (s *Store) page(q *gorm.DB, p ListParams) *gorm.DB {
	if p.GroupName != "" {
		q = q.Where("group_name = ?", p.GroupName)
	}
	return q.Order("created_at desc").Order("id desc").Limit(p.Limit).Offset(p.Offset)
}
