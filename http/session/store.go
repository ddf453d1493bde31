package session

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/boj/redistore"
	gorilla "github.com/gorilla/sessions"
	"github.com/xy-planning-network/trailrunner"
)

// DefaultMaxAge is how many seconds a session lives unless configured otherwise.
const DefaultMaxAge = 86400

// redisPoolSize is how many idle connections a Redis-backed Store keeps.
const redisPoolSize = 10

// A Storer finds the Session belonging to a request.
type Storer interface {
	GetSession(r *http.Request) (Session, error)
}

// Config describes where and for how long sessions are kept.
type Config struct {
	Env trailrunner.Environment

	// Name is what sessions and their cookies are stored under.
	Name string

	// AuthKey and EncryptKey are hex-encoded.
	AuthKey    string
	EncryptKey string

	// MaxAge is in seconds. Zero means DefaultMaxAge.
	MaxAge int

	// RedisAddr, if set, keeps sessions in Redis instead of in the cookie itself.
	RedisAddr     string
	RedisPassword string
}

func (c Config) validate() error {
	if err := c.Env.Valid(); err != nil {
		return err
	}

	if c.Name == "" {
		return fmt.Errorf("%w: session name is empty", trailrunner.ErrBadConfig)
	}

	if c.MaxAge < 0 {
		return fmt.Errorf("%w: session max age %d is negative", trailrunner.ErrBadConfig, c.MaxAge)
	}

	return nil
}

// keyPairs decodes the keys handed to a gorilla.Store.
// Under Testing, cookies are signed but left unencrypted.
func (c Config) keyPairs() ([][]byte, error) {
	ak, err := hex.DecodeString(c.AuthKey)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication key: %w", trailrunner.ErrBadConfig, err)
	}

	ek, err := hex.DecodeString(c.EncryptKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key: %w", trailrunner.ErrBadConfig, err)
	}

	if c.Env.IsTesting() {
		return [][]byte{ak}, nil
	}

	return [][]byte{ak, ek}, nil
}

// options are the cookie settings every session starts with.
func (c Config) options() *gorilla.Options {
	return &gorilla.Options{
		Path:     "/",
		MaxAge:   c.MaxAge,
		Secure:   !(c.Env.IsDevelopment() || c.Env.IsTesting()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// A Store hands out sessions kept in cookies or Redis.
type Store struct {
	name    string
	backend gorilla.Store
}

// NewStore builds a *Store from cfg.
// Sessions live in signed, encrypted cookies unless cfg.RedisAddr is set.
func NewStore(cfg Config) (*Store, error) {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultMaxAge
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	keys, err := cfg.keyPairs()
	if err != nil {
		return nil, err
	}

	s := &Store{name: cfg.Name}
	if cfg.RedisAddr == "" {
		cs := gorilla.NewCookieStore(keys...)
		cs.Options = cfg.options()
		cs.MaxAge(cfg.MaxAge)
		s.backend = cs

		return s, nil
	}

	rs, err := redistore.NewRediStore(redisPoolSize, "tcp", cfg.RedisAddr, cfg.RedisPassword, keys...)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to Redis at %s: %w", trailrunner.ErrBadConfig, cfg.RedisAddr, err)
	}

	rs.Options = cfg.options()
	rs.SetMaxAge(cfg.MaxAge)
	s.backend = rs

	return s, nil
}

// GetSession retrieves the Session for r, starting a new one if r has none.
// An error alongside a new Session means r carried a session that could not be decoded.
func (s *Store) GetSession(r *http.Request) (Session, error) {
	sess, err := s.backend.Get(r, s.name)
	return Session{s: sess}, err
}
