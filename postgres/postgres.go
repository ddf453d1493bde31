package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	defaultHost    = "localhost"
	defaultPort    = "5432"
	defaultSSLMode = "prefer"
)

// CxnConfig describes how to reach a PostgreSQL database.
// URL, when set, wins over the individual fields.
type CxnConfig struct {
	IsTestDB    bool
	URL         string
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxIdleCxns int
	MaxOpenCxns int
}

// NewCxnConfig reads a *CxnConfig out of the [database] section of an ini file.
//
// The keys are url, host, port, dbname (or name), username (or user), password, sslmode,
// maxidlecxns, maxopencxns and testdb.
// A section with neither url nor dbname is an ErrBadConfig.
func NewCxnConfig(section map[string]string) (*CxnConfig, error) {
	get := func(def string, keys ...string) string {
		for _, k := range keys {
			if v := section[k]; v != "" {
				return v
			}
		}

		return def
	}

	atoi := func(key string) (int, error) {
		v := get("", key)
		if v == "" {
			return 0, nil
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not a number", trailrunner.ErrBadConfig, key, v)
		}

		return n, nil
	}

	cfg := &CxnConfig{
		URL:      get("", "url"),
		Host:     get(defaultHost, "host"),
		Port:     get(defaultPort, "port"),
		Name:     get("", "dbname", "name"),
		User:     get("", "username", "user"),
		Password: get("", "password"),
		SSLMode:  get(defaultSSLMode, "sslmode"),
	}

	if cfg.URL == "" && cfg.Name == "" {
		return nil, fmt.Errorf("%w: database section requires url or dbname", trailrunner.ErrBadConfig)
	}

	var err error
	if cfg.MaxIdleCxns, err = atoi("maxidlecxns"); err != nil {
		return nil, err
	}

	if cfg.MaxOpenCxns, err = atoi("maxopencxns"); err != nil {
		return nil, err
	}

	switch strings.ToLower(get("", "testdb")) {
	case "on", "true", "yes", "1":
		cfg.IsTestDB = true
	}

	return cfg, nil
}

// Connect opens a *DB through GORM, logging its queries to l, and runs every pending migration.
// A test database has its public schema dropped before migrating.
func Connect(cfg *CxnConfig, migrations []Migration, l logger.Logger) (*DB, error) {
	db, err := gorm.Open(postgres.Open(buildCxnStr(cfg)), &gorm.Config{
		Logger: newGormLogger(l),
		NamingStrategy: schema.NamingStrategy{
			NameReplacer: strings.NewReplacer("Table", ""),
		},
		NowFunc: func() time.Time { return time.Now().Truncate(time.Microsecond) },
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to database: %w", trailrunner.ErrUnexpected, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", trailrunner.ErrUnexpected, err)
	}

	if cfg.MaxIdleCxns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleCxns)
	}

	if cfg.MaxOpenCxns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenCxns)
	}

	if cfg.IsTestDB {
		if err := db.Exec("DROP SCHEMA IF EXISTS public CASCADE").Error; err != nil {
			return nil, fmt.Errorf("%w: resetting test database: %w", trailrunner.ErrUnexpected, err)
		}
	}

	if err := MigrateUp(db, "public", migrations); err != nil {
		return nil, err
	}

	return NewDB(db), nil
}

// buildCxnStr renders cfg in libpq's keyword/value form, skipping empty values.
// See https://www.postgresql.org/docs/current/libpq-connect.html#LIBPQ-PARAMKEYWORDS
func buildCxnStr(cfg *CxnConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	pairs := [][2]string{
		{"host", cfg.Host},
		{"port", cfg.Port},
		{"dbname", cfg.Name},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"sslmode", sslMode},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[1] != "" {
			parts = append(parts, p[0]+"="+quoteCxnValue(p[1]))
		}
	}

	return strings.Join(parts, " ")
}

// quoteCxnValue single-quotes v when it holds whitespace, quotes or backslashes.
func quoteCxnValue(v string) string {
	if !strings.ContainsAny(v, " \t\n'\\") {
		return v
	}

	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}
