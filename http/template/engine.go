package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	html "html/template"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xy-planning-network/trailrunner"
)

const (
	debugTmpl = `<div style="border: 5px dashed blue">%s</div>`

	// PluginFunction registers a function callable from templates.
	PluginFunction = "function"

	// PluginModifier registers a function meant for piping values through, e.g., {{ .title | upper }}.
	PluginModifier = "modifier"
)

var (
	_ Templater = (*Engine)(nil)
	_ Extender  = (*Engine)(nil)
)

// A Config sets up an *Engine.
type Config struct {
	// WritableFolder is the directory the Engine may write to.
	WritableFolder string

	// CompileDir, ConfigDir and CacheDir are fragments appended to WritableFolder.
	// Each is created if missing.
	// Rendered output is cached in CacheDir when LoadTemplate is called with a cacheID.
	// The Engine parses templates in memory, so CompileDir and ConfigDir are only
	// reserved for Templater backends that compile templates or keep their own config on disk.
	CompileDir string
	ConfigDir  string
	CacheDir   string

	Env     trailrunner.Environment
	RootURL *url.URL

	// FS, if set, is where SetTemplateDir looks up its directory instead of the OS filesystem.
	FS fs.FS

	// FallbackFS is searched for templates not found in the template directory.
	FallbackFS fs.FS
}

// Engine implements Templater with html/template.
type Engine struct {
	Base

	cfg       Config
	fsys      fs.FS
	fns       html.FuncMap
	parsed    map[string]*html.Template
	persisted map[string]any
	rendered  map[string]string
	pool      *sync.Pool
	mu        sync.RWMutex
}

// NewEngine constructs an *Engine from params,
// which is either a Config or the path to the writable folder.
func NewEngine(params any) (*Engine, error) {
	var cfg Config
	switch p := params.(type) {
	case Config:
		cfg = p
	case *Config:
		if p != nil {
			cfg = *p
		}
	case string:
		cfg.WritableFolder = p
	case nil:
	default:
		return nil, fmt.Errorf("%w: cannot construct Engine from %T", trailrunner.ErrBadConfig, params)
	}

	for _, dir := range []string{cfg.CompileDir, cfg.ConfigDir, cfg.CacheDir} {
		if dir == "" {
			continue
		}

		if err := os.MkdirAll(filepath.Join(cfg.WritableFolder, dir), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s", trailrunner.ErrBadConfig, err)
		}
	}

	e := &Engine{
		cfg:       cfg,
		fns:       make(html.FuncMap),
		parsed:    make(map[string]*html.Template),
		persisted: make(map[string]any),
		rendered:  make(map[string]string),
		pool:      &sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}

	e.addFn(Nonce())
	e.addFn(Markdown())
	e.addFn(Env(cfg.Env))
	e.addFn(RootUrl(cfg.RootURL))

	return e, nil
}

func (e *Engine) addFn(name string, fn any) { e.fns[name] = fn }

// SetTemplateDir sets the root directory templates are found in.
// Previously parsed templates are forgotten.
func (e *Engine) SetTemplateDir(dir string) {
	var user fs.FS
	if e.cfg.FS != nil {
		sub, err := fs.Sub(e.cfg.FS, cleanName(dir))
		if err != nil {
			sub = e.cfg.FS
		}

		user = sub
	} else {
		user = os.DirFS(dir)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.fsys = newLayeredFS(user, e.cfg.FallbackFS)
	e.parsed = make(map[string]*html.Template)
}

// PersistTemplateVar binds value to name for every subsequent render.
func (e *Engine) PersistTemplateVar(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.persisted[name] = value
}

// LoadTemplate renders the template identified by name.
//
// Persisted variables are bound first, then vars, overwriting persisted ones on collision.
// If cacheID is not empty, output is cached under name and cacheID
// and later calls with both return the cached output without rendering again.
//
// If the ctx carries trailrunner.DebugRenderKey, the output is outlined in a dashed border.
//
// If SetTemplateDir has not been called, ErrTemplateDirNotSet returns.
// If name cannot be found, ErrTemplateNotFound returns.
func (e *Engine) LoadTemplate(ctx context.Context, name string, vars map[string]any, cacheID string) (string, error) {
	e.mu.RLock()
	dirSet := e.fsys != nil
	e.mu.RUnlock()

	if !dirSet {
		return "", fmt.Errorf("%w: call SetTemplateDir first", ErrTemplateDirNotSet)
	}

	if !e.TemplateExists(name) {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	if cacheID != "" {
		if out, ok := e.cached(name, cacheID); ok {
			return debug(ctx, out), nil
		}
	}

	tmpl, err := e.parse(name)
	if err != nil {
		return "", err
	}

	b := e.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer e.pool.Put(b)

	if err := tmpl.Execute(b, e.bindings(vars)); err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrRender, name, err)
	}

	out := b.String()
	if cacheID != "" {
		if err := e.cache(name, cacheID, out); err != nil {
			return "", err
		}
	}

	return debug(ctx, out), nil
}

// TemplateExists asserts whether name is a file in the template directory.
func (e *Engine) TemplateExists(name string) bool {
	e.mu.RLock()
	fsys := e.fsys
	e.mu.RUnlock()

	if fsys == nil {
		return false
	}

	info, err := fs.Stat(fsys, cleanName(name))
	if err != nil {
		return false
	}

	return !info.IsDir()
}

// RegisterPlugin makes callback available to templates under name.
// The kind is either PluginFunction or PluginModifier; html/template treats both alike.
//
// If kind is neither, ErrUnknownPluginKind returns.
// If callback is not a function, ErrInvalidPlugin returns.
func (e *Engine) RegisterPlugin(kind, name string, callback any) error {
	switch kind {
	case PluginFunction, PluginModifier:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPluginKind, kind)
	}

	if name == "" || callback == nil || reflect.TypeOf(callback).Kind() != reflect.Func {
		return fmt.Errorf("%w: %q must name a function, got %T", ErrInvalidPlugin, name, callback)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.fns[name] = callback
	e.parsed = make(map[string]*html.Template)

	return nil
}

// bindings layers vars over the persisted variables.
func (e *Engine) bindings(vars map[string]any) map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	data := make(map[string]any, len(e.persisted)+len(vars))
	for k, v := range e.persisted {
		data[k] = v
	}

	for k, v := range vars {
		data[k] = v
	}

	return data
}

func (e *Engine) parse(name string) (*html.Template, error) {
	name = cleanName(name)

	e.mu.RLock()
	tmpl, ok := e.parsed[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tmpl, err := html.New(path.Base(name)).Funcs(e.fns).ParseFS(e.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse %s: %s", ErrRender, name, err)
	}

	e.parsed[name] = tmpl

	return tmpl, nil
}

func (e *Engine) cacheKey(name, cacheID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(cleanName(name)+"|"+cacheID)).String()
}

func (e *Engine) cachePath(key string) string {
	return filepath.Join(e.cfg.WritableFolder, e.cfg.CacheDir, key+".html")
}

// cached retrieves output previously rendered for name and cacheID.
func (e *Engine) cached(name, cacheID string) (string, bool) {
	key := e.cacheKey(name, cacheID)
	if e.cfg.CacheDir == "" {
		e.mu.RLock()
		defer e.mu.RUnlock()

		out, ok := e.rendered[key]
		return out, ok
	}

	b, err := os.ReadFile(e.cachePath(key))
	if err != nil {
		return "", false
	}

	return string(b), true
}

// cache stores output rendered for name and cacheID,
// on disk when a CacheDir is configured and in memory otherwise.
func (e *Engine) cache(name, cacheID, out string) error {
	key := e.cacheKey(name, cacheID)
	if e.cfg.CacheDir == "" {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.rendered[key] = out
		return nil
	}

	if err := os.WriteFile(e.cachePath(key), []byte(out), 0o644); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: caching %s: %s", ErrRender, name, err)
	}

	return nil
}

// debug outlines out if ctx asks for it.
func debug(ctx context.Context, out string) string {
	if ctx == nil {
		return out
	}

	if on, _ := ctx.Value(trailrunner.DebugRenderKey).(bool); on {
		return fmt.Sprintf(debugTmpl, out)
	}

	return out
}

// cleanName turns name into a path fs.FS accepts.
func cleanName(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}

	return name
}
