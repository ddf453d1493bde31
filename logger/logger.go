package logger

import (
	"log"
	"os"
	"path"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/xy-planning-network/trailrunner"
)

// logFrames is how far log sits below the caller of a level method.
const logFrames = 2

var modulePath = regexp.MustCompile("trailrunner/.*$")

// A Logger writes messages at one of five levels.
type Logger interface {
	Debug(msg string, ctx *LogContext)
	Error(msg string, ctx *LogContext)
	Fatal(msg string, ctx *LogContext)
	Info(msg string, ctx *LogContext)
	Warn(msg string, ctx *LogContext)

	LogLevel() LogLevel
}

// A SkipLogger reports the call site some extra frames up the stack,
// for loggers wrapped by helpers.
type SkipLogger interface {
	AddSkip(i int) SkipLogger
	Skip() int
	Logger
}

// A LogLevel orders how severe a message is.
type LogLevel int

const (
	LogLevelUnk LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

var levels = map[LogLevel]struct {
	name  string
	paint *color.Color
}{
	LogLevelUnk:   {"UNK", color.New(color.Reset)},
	LogLevelDebug: {"DEBUG", color.New(color.FgWhite)},
	LogLevelInfo:  {"INFO", color.New(color.FgBlue)},
	LogLevelWarn:  {"WARN", color.New(color.FgYellow)},
	LogLevelError: {"ERROR", color.New(color.FgRed)},
	LogLevelFatal: {"FATAL", color.New(color.FgMagenta)},
}

// NewLogLevel reads val, in any case, as a LogLevel.
func NewLogLevel(val string) LogLevel {
	val = strings.ToUpper(strings.TrimSpace(val))
	for ll, lvl := range levels {
		if ll != LogLevelUnk && lvl.name == val {
			return ll
		}
	}

	return LogLevelUnk
}

func (ll LogLevel) String() string {
	lvl, ok := levels[ll]
	if !ok {
		lvl = levels[LogLevelUnk]
	}

	return "[" + lvl.name + "]"
}

// StdLogger writes colorized lines through a *log.Logger.
type StdLogger struct {
	skip int
	env  trailrunner.Environment
	l    *log.Logger
	ll   LogLevel
}

// New constructs a Logger printing to os.Stdout at LogLevelInfo.
// The environment is read from ENVIRONMENT, falling back to Development.
//
// When SENTRY_DSN is set, errors are also reported to Sentry.
func New(opts ...Option) Logger {
	l := NewStdLogger(opts...)
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		l.Info("reporting errors to Sentry", nil)
		return NewSentryLogger(l, dsn)
	}

	return l
}

// NewStdLogger constructs a *StdLogger that never reports to Sentry.
func NewStdLogger(opts ...Option) *StdLogger {
	l := &StdLogger{
		env: trailrunner.EnvVarOrEnv("ENVIRONMENT", trailrunner.Development),
		l:   log.New(os.Stdout, "", log.LstdFlags),
		ll:  LogLevelInfo,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// AddSkip returns a copy of l scrolling back i extra frames to find the call site.
// Add to Skip rather than replace it when wrapping a logger again.
func (l *StdLogger) AddSkip(i int) SkipLogger {
	cp := *l
	cp.skip = i
	return &cp
}

func (l *StdLogger) Debug(msg string, ctx *LogContext) { l.log(LogLevelDebug, msg, ctx) }
func (l *StdLogger) Error(msg string, ctx *LogContext) { l.log(LogLevelError, msg, ctx) }
func (l *StdLogger) Fatal(msg string, ctx *LogContext) { l.log(LogLevelFatal, msg, ctx) }
func (l *StdLogger) Info(msg string, ctx *LogContext)  { l.log(LogLevelInfo, msg, ctx) }
func (l *StdLogger) Warn(msg string, ctx *LogContext)  { l.log(LogLevelWarn, msg, ctx) }

// LogLevel is the lowest level l writes.
func (l *StdLogger) LogLevel() LogLevel { return l.ll }

// Skip is how many extra frames l scrolls back.
func (l *StdLogger) Skip() int { return l.skip }

// log prints msg as "[LEVEL] file:line 'msg'" followed by ctx, if any.
// It must only be called directly from a level method.
func (l *StdLogger) log(level LogLevel, msg string, ctx *LogContext) {
	if level < l.ll {
		return
	}

	site := ""
	if ctx != nil {
		site = ctx.Caller
	}

	if site == "" {
		_, file, line, _ := runtime.Caller(logFrames + l.skip)
		site = callSite(file, line)
	}

	out := levels[level].paint.Sprintf("%s %s '%s'", level, site, msg)
	if ctx == nil {
		l.l.Println(out)
		return
	}

	l.l.Println(out, "log_context:", ctx)
}

// callSite shortens file to its path within the module, or to its parent directory and name.
func callSite(file string, line int) string {
	if match := modulePath.FindString(file); match != "" {
		file = match
	} else {
		file = immediateFilepath(file)
	}

	return file + ":" + strconv.Itoa(line)
}

// immediateFilepath trims file down to its parent directory and name.
//
//	/home/me/project/internal/internal.go => internal/internal.go
func immediateFilepath(file string) string {
	dir, name := path.Split(file)
	return path.Join(path.Base(dir), name)
}
