package postgres

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/xy-planning-network/trailrunner"
	"gorm.io/gorm"
)

// A DB is the database handle handed to a trailrunner app.
type DB struct {
	// *gorm.DB's methods are generally unsafe to use.
	// Specifically, some *gorm.DB methods are not thread-safe
	// and mutate the state of the *gorm.DB backing DB.
	//
	// One solution is to use *gorm.DB.Session to force a clean pointer.
	db *gorm.DB
}

// NewDB constructs a *DB from a *gorm.DB.
func NewDB(db *gorm.DB) *DB { return &DB{db: db} }

// DB exposes the underlying *gorm.DB backing DB.
func (db *DB) DB() *gorm.DB { return db.db }

// Close closes the connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %s", trailrunner.ErrUnexpected, err)
	}

	return sqlDB.Close()
}

// Exec executes SQL query sql, passing values to it.
//
// If the query executed does not affect any records, Exec return ErrNotExist.
func (db *DB) Exec(sql string, values ...any) error {
	res := db.db.Exec(sql, values...)
	if res.Error != nil {
		return classify(res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: exec failed to affect any rows", trailrunner.ErrNotExist)
	}

	return nil
}

// First retrieves the first record matching query and args into dest.
//
// If no matches are found, First returns ErrNotExist.
func (db *DB) First(dest any, query any, args ...any) error {
	err := db.db.Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %T", trailrunner.ErrNotExist, dest)
	}

	if err != nil {
		return classify(err)
	}

	return nil
}

// Raw executes sql, passing values to it, and scans the results into dest.
func (db *DB) Raw(dest any, sql string, values ...any) error {
	if err := db.db.Raw(sql, values...).Scan(dest).Error; err != nil {
		return classify(err)
	}

	return nil
}

// sqlErrors pairs database error text with the trailrunner error it means.
// SQLSTATE codes are listed at https://www.postgresql.org/docs/current/errcodes-appendix.html.
var sqlErrors = []struct {
	match *regexp.Regexp
	err   error
}{
	// syntax error, invalid text representation
	{regexp.MustCompile(`SQLSTATE (42601|22P02)`), trailrunner.ErrNotValid},
	// database/sql scan mismatch
	{regexp.MustCompile(`sql: expected \d+ destination arguments in Scan, not \d+`), trailrunner.ErrNotValid},
	// not null, foreign key and unique violations
	{regexp.MustCompile(`SQLSTATE (23502|23503|23505)`), trailrunner.ErrMissingData},
}

// classify maps database errors onto trailrunner's errors.
func classify(err error) error {
	for _, se := range sqlErrors {
		if se.match.MatchString(err.Error()) {
			return fmt.Errorf("%w: %s", se.err, err)
		}
	}

	return fmt.Errorf("%w: %s", trailrunner.ErrUnexpected, err)
}
