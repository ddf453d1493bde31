package main

import (
	"fmt"
	"sync"

	"github.com/xy-planning-network/trailrunner/postgres"
	"gorm.io/gorm"
)

// A visitCounter tallies page views.
type visitCounter interface {
	Visit(path string) (int64, error)
	Total() (int64, error)
}

// memVisits counts in memory, forgetting everything on restart.
type memVisits struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemVisits() *memVisits { return &memVisits{counts: make(map[string]int64)} }

func (m *memVisits) Visit(path string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[path]++
	return m.counts[path], nil
}

func (m *memVisits) Total() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for _, n := range m.counts {
		total += n
	}

	return total, nil
}

type pageVisit struct {
	Path  string `gorm:"primaryKey"`
	Count int64
}

// migrations create what dbVisits needs.
var migrations = []postgres.Migration{
	{
		Key: "20240101_create_page_visits",
		Executor: func(tx *gorm.DB) error {
			return tx.Exec(`CREATE TABLE IF NOT EXISTS page_visits (
				path TEXT PRIMARY KEY,
				count BIGINT NOT NULL DEFAULT 0
			)`).Error
		},
	},
}

// dbVisits counts in the page_visits table.
type dbVisits struct {
	db *postgres.DB
}

func (d dbVisits) Visit(path string) (int64, error) {
	err := d.db.Exec(
		`INSERT INTO page_visits (path, count) VALUES (?, 1)
		ON CONFLICT (path) DO UPDATE SET count = page_visits.count + 1`,
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("counting visit to %s: %w", path, err)
	}

	var pv pageVisit
	if err := d.db.First(&pv, "path = ?", path); err != nil {
		return 0, err
	}

	return pv.Count, nil
}

func (d dbVisits) Total() (int64, error) {
	var total int64
	if err := d.db.Raw(&total, "SELECT COALESCE(SUM(count), 0) FROM page_visits"); err != nil {
		return 0, err
	}

	return total, nil
}
