package template

import (
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLayeredFSOpen(t *testing.T) {
	user := fstest.MapFS{"a.tmpl": {Data: []byte("user")}}
	pkg := fstest.MapFS{"a.tmpl": {Data: []byte("pkg")}, "b.tmpl": {Data: []byte("pkg")}}

	tcs := []struct {
		name     string
		pkg      fs.FS
		file     string
		expected string
		err      error
	}{
		{"user-first", pkg, "a.tmpl", "user", nil},
		{"fallback", pkg, "b.tmpl", "pkg", nil},
		{"missing", pkg, "c.tmpl", "", fs.ErrNotExist},
		{"no-fallback", nil, "b.tmpl", "", fs.ErrNotExist},
		{"invalid-name", pkg, "../b.tmpl", "", fs.ErrNotExist},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			lfs := newLayeredFS(user, tc.pkg)

			// Act
			f, err := lfs.Open(tc.file)

			// Assert
			require.ErrorIs(t, err, tc.err)
			if tc.err != nil {
				return
			}

			b, err := io.ReadAll(f)
			require.Nil(t, err)
			require.Equal(t, tc.expected, string(b))
			require.Contains(t, lfs.found, tc.file)
		})
	}
}

func TestCleanName(t *testing.T) {
	tcs := []struct {
		name     string
		expected string
	}{
		{"", "."},
		{"/", "."},
		{".", "."},
		{"a.tmpl", "a.tmpl"},
		{"/a.tmpl", "a.tmpl"},
		{"views/../a.tmpl", "a.tmpl"},
		{"../../a.tmpl", "a.tmpl"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, cleanName(tc.name))
		})
	}
}
