package template

import (
	"bytes"
	html "html/template"
	"net/url"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xy-planning-network/trailrunner"
	"github.com/yuin/goldmark"
)

// Env encloses some string representing an environment.
// It returns "env" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning the enclosed value when called.
func Env(e trailrunner.Environment) (string, func() string) {
	return "env", func() string { return e.String() }
}

// Markdown returns "markdown" as the name of the function for convenient passing to a template.FuncMap
// and returns a function converting markdown into sanitized HTML.
//
// If the markdown cannot be converted, the function returns an empty string.
func Markdown() (string, func(string) html.HTML) {
	md := goldmark.New()
	policy := bluemonday.UGCPolicy()

	return "markdown", func(src string) html.HTML {
		b := new(bytes.Buffer)
		if err := md.Convert([]byte(src), b); err != nil {
			return ""
		}

		return html.HTML(policy.SanitizeBytes(b.Bytes()))
	}
}

// Nonce returns "nonce" as the name of the function for convenient passing to a template.FuncMap
// and returns a function generating a uuid.
func Nonce() (string, func() string) {
	return "nonce", func() string { return uuid.NewString() }
}

// RootUrl encloses the *url.URL representing the base URL of the web app.
// It returns "rootUrl" as the name of the function for convenient passing to a template.FuncMap
// and returns a function returning its *url.URL.String().
// If u is nil, that function will always return an empty string.
func RootUrl(u *url.URL) (string, func() string) {
	if u == nil {
		return "rootUrl", func() string { return "" }
	}

	s := u.String()
	return "rootUrl", func() string { return s }
}

// Safe marks s as HTML that must not be escaped when rendered.
//
// Use Safe for output from a previous render being nested into another.
func Safe(s string) html.HTML { return html.HTML(s) }
