/*
Package templatetest builds template.Engines over in-memory files.
Used in unit tests for the purposes of avoiding the use of testdata/ directories when unit testing template rendering.
*/
package templatetest

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailrunner/http/template"
)

// Files maps template paths to their contents.
type Files map[string]string

// FS converts f into an fs.FS.
func (f Files) FS() fstest.MapFS {
	mfs := make(fstest.MapFS, len(f))
	for name, data := range f {
		mfs[name] = &fstest.MapFile{Data: []byte(data)}
	}

	return mfs
}

// NewEngine constructs a *template.Engine reading from files
// with the template directory already set to their root.
func NewEngine(t testing.TB, files Files) *template.Engine {
	t.Helper()

	e, err := template.NewEngine(template.Config{WritableFolder: t.TempDir(), FS: files.FS()})
	require.Nil(t, err)

	e.SetTemplateDir(".")

	return e
}
