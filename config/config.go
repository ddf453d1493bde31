package config

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	defaultTimezone = "GMT"
	configType      = "ini"
	keyDelim        = "."
)

// A Store holds the values read from an ini file.
// A Store can be loaded only once; after that, it is read-only.
type Store struct {
	loaded bool
	v      *viper.Viper
	mu     sync.RWMutex
}

// New constructs an empty *Store.
func New() *Store { return &Store{v: newViper()} }

// Must constructs a *Store and loads the file at path into it, panicking on failure.
//
// Must is intended for main packages.
func Must(path string) *Store {
	s := New()
	if err := s.Load(path); err != nil {
		panic(err)
	}

	return s
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_"))
	v.AutomaticEnv()

	return v
}

// Load reads and parses the ini file found at path.
//
// If the *Store has already been loaded, ErrAlreadyLoaded returns.
// If the file is missing, malformed or holds no values, ErrParse returns.
func (s *Store) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, path)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %s", ErrParse, err)
	}

	if len(v.AllKeys()) == 0 {
		return fmt.Errorf("%w: %s holds no values", ErrParse, path)
	}

	s.v = v
	s.loaded = true

	return nil
}

// Loaded asserts whether Load has succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loaded
}

// Get retrieves the value of key in section.
// If no such value exists, def returns.
func (s *Store) Get(section, key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k := section + keyDelim + key
	if !s.v.IsSet(k) {
		return def
	}

	return s.v.GetString(k)
}

// Bool asserts whether the value of key in section is switched on,
// i.e., one of "on", "true", "yes" or "1".
func (s *Store) Bool(section, key string) bool {
	switch strings.ToLower(s.Get(section, key, "")) {
	case "on", "true", "yes", "1":
		return true
	default:
		return false
	}
}

// Section retrieves all key-value pairs in section.
// Keys are lower-cased.
//
// If section is not found, ErrSectionNotFound returns.
// A section header with no keys under it also reports ErrSectionNotFound,
// since only keys are kept once the file is parsed.
func (s *Store) Section(section string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.ToLower(section) + keyDelim
	vals := make(map[string]string)
	for _, k := range s.v.AllKeys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}

		vals[strings.TrimPrefix(k, prefix)] = s.v.GetString(k)
	}

	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, section)
	}

	return vals, nil
}

// Location resolves the timezone set by datetime.timezone, defaulting to GMT.
func (s *Store) Location() (*time.Location, error) {
	name := s.Get("datetime", "timezone", defaultTimezone)
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: datetime.timezone %q: %s", ErrParse, name, err)
	}

	return loc, nil
}
