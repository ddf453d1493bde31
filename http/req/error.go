package req

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xy-planning-network/trailrunner"
)

// A ValidationError is one field whose value broke its rule.
type ValidationError struct {
	Field string `json:"field"`
	Got   any    `json:"got"`
	Rule  string `json:"rule,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: got %v, want %s", e.Field, e.Got, e.Rule)
}

// ValidationErrors collects every field that failed.
// It matches trailrunner.ErrNotValid under errors.Is.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}

		sb.WriteString(e.Error())
	}

	return sb.String()
}

// Fields maps each failed field to its rule, ready for a template or JSON response.
func (v ValidationErrors) Fields() map[string]string {
	m := make(map[string]string, len(v))
	for _, e := range v {
		m[e.Field] = e.Rule
	}

	return m
}

// MarshalJSON nests v under "validationErrors", omitting it when empty.
func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	type body struct {
		Errors []ValidationError `json:"validationErrors,omitempty"`
	}

	return json.Marshal(body{Errors: v})
}

func (ValidationErrors) Unwrap() error { return trailrunner.ErrNotValid }
