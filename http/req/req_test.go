package req_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/http/req"
)

type testEnum string

func (t testEnum) Valid() error {
	if t == "ignore" {
		return nil
	}

	return trailrunner.ErrNotValid
}

func TestParserParseJSON(t *testing.T) {
	// Arrange
	parser := req.NewParser()

	var actual req.ValidationErrors

	type test struct {
		A string `json:"a,omitempty" validate:"required"`
		B int64  `json:"b" validate:"gt=10,required"`
		C struct {
			Nested bool `json:"nested" validate:"eq=true"`
		} `json:"c"`
		D testEnum   `json:"d" validate:"enum"`
		E []testEnum `json:"e" validate:"enum"`
		F string     `json:"-"`
	}
	var input, output test

	b := new(bytes.Buffer)
	require.Nil(t, json.NewEncoder(b).Encode(input))

	// Act
	err := parser.ParseJSON(b, struct{}{})

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrBadAny)

	// Arrange
	b.Reset()
	b.WriteByte('\x00')

	// Act
	err = parser.ParseJSON(b, &output)

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrBadFormat)

	// Arrange
	expected := req.ValidationErrors{
		{Field: "a", Got: "", Rule: "required; string"},
		{Field: "b", Got: int64(0), Rule: "gt=10; int64"},
		{Field: "c.nested", Got: false, Rule: "eq=true; bool"},
		{Field: "d", Got: testEnum(""), Rule: "enum; req_test.testEnum"},
		{Field: "e", Got: []testEnum(nil), Rule: "enum; []req_test.testEnum"},
	}

	b.Reset()
	require.Nil(t, json.NewEncoder(b).Encode(input))

	// Act
	err = parser.ParseJSON(b, &output)

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrNotValid)
	require.Equal(t, input, output)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	input.A = "hello"
	input.B = 20
	input.C.Nested = true
	input.D = "ignore"
	input.E = []testEnum{"ignore"}
	input.F = "ignore"

	b.Reset()
	require.Nil(t, json.NewEncoder(b).Encode(input))

	// Act
	err = parser.ParseJSON(b, &output)

	// Assert
	require.Nil(t, err)
	require.Equal(t, input.A, output.A)
	require.Equal(t, input.B, output.B)
	require.Equal(t, input.C, output.C)
	require.Equal(t, input.D, output.D)
	require.Equal(t, input.E, output.E)
	require.Equal(t, "", output.F)
}

func TestParserParseValues(t *testing.T) {
	// Arrange
	parser := req.NewParser()
	u := make(url.Values)

	// Act
	err := parser.ParseValues(u, struct{}{})

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrBadAny)

	// Act
	err = parser.ParseValues(u, new(struct {
		A string `schema:"a,required"`
	}))

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrNotImplemented)

	// Arrange
	u.Set("a", "test")

	// Act
	err = parser.ParseValues(u, new(struct {
		A struct{} `schema:"a"`
	}))

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrNotImplemented)

	// Arrange
	type test struct {
		A string   `schema:"a" validate:"required"`
		B int64    `schema:"b" validate:"gt=10,required"`
		C []string `schema:"c" validate:"len=2,required"`
		D string   `schema:"-"`
	}

	u.Set("b", "test")

	var actual req.ValidationErrors

	// Act
	err = parser.ParseValues(u, new(test))

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrNotValid)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, req.ValidationErrors{{Field: "b", Got: "bad value at index 0", Rule: "must be int64"}}, actual)

	// Arrange
	u.Set("b", "1")
	u.Add("c", "1")

	expected := req.ValidationErrors{
		{Field: "b", Got: int64(1), Rule: "gt=10; int64"},
		{Field: "c", Got: []string{"1"}, Rule: "len=2; []string"},
	}

	// Act
	err = parser.ParseValues(u, new(test))

	// Assert
	require.ErrorIs(t, err, trailrunner.ErrNotValid)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	u.Set("b", "20")
	u.Add("c", "2")
	u.Set("d", "ignore")
	actualVal := new(test)

	// Act
	err = parser.ParseValues(u, actualVal)

	// Assert
	require.Nil(t, err)
	require.Equal(t, "test", actualVal.A)
	require.Equal(t, int64(20), actualVal.B)
	require.Equal(t, []string{"1", "2"}, actualVal.C)
	require.Equal(t, "", actualVal.D)
}

func TestParserParseQueryAndForm(t *testing.T) {
	type test struct {
		Env  trailrunner.Environment `schema:"env" validate:"enum"`
		Page int                     `schema:"page" validate:"gte=1"`
	}

	tcs := []struct {
		name   string
		r      *http.Request
		parse  func(*req.Parser, *http.Request, any) error
		err    error
		expect test
	}{
		{
			"query",
			httptest.NewRequest(http.MethodGet, "/?env=TESTING&page=2", nil),
			(*req.Parser).ParseQuery,
			nil,
			test{Env: trailrunner.Testing, Page: 2},
		},
		{
			"query-bad-enum",
			httptest.NewRequest(http.MethodGet, "/?env=nope&page=2", nil),
			(*req.Parser).ParseQuery,
			trailrunner.ErrNotValid,
			test{Env: "nope", Page: 2},
		},
		{
			"form",
			formRequest("env=PRODUCTION&page=3"),
			(*req.Parser).ParseForm,
			nil,
			test{Env: trailrunner.Production, Page: 3},
		},
		{
			"form-ignores-query",
			func() *http.Request {
				r := formRequest("env=PRODUCTION")
				r.URL.RawQuery = "page=3"
				return r
			}(),
			(*req.Parser).ParseForm,
			trailrunner.ErrNotValid,
			test{Env: trailrunner.Production},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			var actual test

			// Act
			err := tc.parse(req.NewParser(), tc.r, &actual)

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expect, actual)
		})
	}
}

func formRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return r
}
