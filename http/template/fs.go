package template

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// layeredFS opens each file from the first of its layers holding it.
// Which layer served a name is remembered.
// A remembered file later removed from its layer reports fs.ErrNotExist.
type layeredFS struct {
	layers []fs.FS

	mu    sync.RWMutex
	found map[string]fs.FS
}

// newLayeredFS stacks layers, first on top, dropping nil ones.
func newLayeredFS(layers ...fs.FS) *layeredFS {
	lfs := &layeredFS{found: make(map[string]fs.FS)}
	for _, l := range layers {
		if l != nil {
			lfs.layers = append(lfs.layers, l)
		}
	}

	return lfs
}

func (lfs *layeredFS) Open(name string) (fs.File, error) {
	lfs.mu.RLock()
	layer, ok := lfs.found[name]
	lfs.mu.RUnlock()
	if ok {
		return layer.Open(name)
	}

	for _, layer := range lfs.layers {
		f, err := layer.Open(name)
		switch {
		case err == nil:
			lfs.mu.Lock()
			lfs.found[name] = layer
			lfs.mu.Unlock()

			return f, nil

		case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
			continue

		default:
			return nil, fmt.Errorf("opening template %s: %w", name, err)
		}
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
