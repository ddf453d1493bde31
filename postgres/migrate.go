package postgres

import (
	"fmt"
	"time"

	"github.com/xy-planning-network/trailrunner"
	"gorm.io/gorm"
)

// Migration is used to hold the database key and function for creating the migration.
type Migration struct {
	Executor func(*gorm.DB) error
	Key      string
}

func (m Migration) execute(db *gorm.DB) error {
	return db.Transaction(m.Executor)
}

// MigrateUp runs every migration whose Key is not yet recorded in the migrations table,
// in order, recording each one after it succeeds.
func MigrateUp(db *gorm.DB, schema string, migrations []Migration) error {
	if len(migrations) == 0 {
		return nil
	}

	if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
		return fmt.Errorf("%w: creating schema %s: %s", trailrunner.ErrUnexpected, schema, err)
	}

	err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			ran_at bigint,
			key text,
			CONSTRAINT migrations_key UNIQUE (key)
		)
	`).Error
	if err != nil {
		return fmt.Errorf("%w: creating migrations table: %s", trailrunner.ErrUnexpected, err)
	}

	var ran []string
	if err := db.Raw("SELECT key FROM migrations;").Scan(&ran).Error; err != nil {
		return fmt.Errorf("%w: fetching ran migrations: %s", trailrunner.ErrUnexpected, err)
	}

	for _, m := range pending(ran, migrations) {
		if err := m.execute(db); err != nil {
			return fmt.Errorf("%w: migration %s: %s", trailrunner.ErrUnexpected, m.Key, err)
		}

		err := db.Exec(`INSERT INTO migrations (key, ran_at) VALUES (?, ?)`, m.Key, time.Now().Unix()).Error
		if err != nil {
			return fmt.Errorf("%w: recording migration %s: %s", trailrunner.ErrUnexpected, m.Key, err)
		}
	}

	return nil
}

// pending filters out of all the migrations whose keys are in ran.
func pending(ran []string, all []Migration) []Migration {
	seen := make(map[string]bool, len(ran))
	for _, k := range ran {
		seen[k] = true
	}

	var out []Migration
	for _, m := range all {
		if !seen[m.Key] {
			out = append(out, m)
		}
	}

	return out
}
