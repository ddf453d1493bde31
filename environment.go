package trailrunner

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// An Environment is a context a trailrunner app runs in.
// Sessions, panic reporting, HTTPS redirects and debug rendering behave differently per Environment.
type Environment string

const (
	Demo        Environment = "DEMO"
	Development Environment = "DEVELOPMENT"
	Production  Environment = "PRODUCTION"
	Review      Environment = "REVIEW"
	Staging     Environment = "STAGING"
	Testing     Environment = "TESTING"
)

var environments = map[Environment]bool{
	Demo:        true,
	Development: true,
	Production:  true,
	Review:      true,
	Staging:     true,
	Testing:     true,
}

// ParseEnvironment reads s, in any case, as an Environment.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToUpper(strings.TrimSpace(s)))
	if err := env.Valid(); err != nil {
		return "", fmt.Errorf("%w: %q", err, s)
	}

	return env, nil
}

func (e Environment) String() string { return string(e) }

// Valid returns ErrNotValid unless e is one of the declared Environments.
func (e Environment) Valid() error {
	if !environments[e] {
		return fmt.Errorf("%w: environment %q", ErrNotValid, string(e))
	}

	return nil
}

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }
func (e Environment) IsTesting() bool     { return e == Testing }

// envVarOr parses the environment variable key with parse,
// falling back to def when it is unset or parse fails.
func envVarOr[T any](key string, def T, parse func(string) (T, error)) T {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return def
	}

	parsed, err := parse(val)
	if err != nil {
		return def
	}

	return parsed
}

// EnvVarOrBool reads key as "true" or "false", in any case.
func EnvVarOrBool(key string, def bool) bool {
	return envVarOr(key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return false, ErrNotValid
		}
	})
}

// EnvVarOrDuration reads key as a [time.Duration], e.g., "5s".
func EnvVarOrDuration(key string, def time.Duration) time.Duration {
	return envVarOr(key, def, time.ParseDuration)
}

// EnvVarOrEnv reads key as an [Environment].
func EnvVarOrEnv(key string, def Environment) Environment {
	return envVarOr(key, def, ParseEnvironment)
}

// EnvVarOrInt reads key as an int.
func EnvVarOrInt(key string, def int) int {
	return envVarOr(key, def, strconv.Atoi)
}

// EnvVarOrString reads key, falling back to def when it is unset or empty.
func EnvVarOrString(key, def string) string {
	return envVarOr(key, def, func(s string) (string, error) { return s, nil })
}
