package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xy-planning-network/trailrunner/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// slowQuery is how long a query runs before it is logged as a warning.
const slowQuery = 200 * time.Millisecond

// gormLogger sends GORM's output through a logger.Logger.
type gormLogger struct {
	l     logger.Logger
	level gormlogger.LogLevel
}

func newGormLogger(l logger.Logger) gormLogger {
	return gormLogger{l: l, level: gormlogger.Warn}
}

func (g gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	g.level = level
	return g
}

func (g gormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.l.Info(fmt.Sprintf(msg, args...), nil)
	}
}

func (g gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.l.Warn(fmt.Sprintf(msg, args...), nil)
	}
}

func (g gormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.l.Error(fmt.Sprintf(msg, args...), nil)
	}
}

// Trace logs failed queries as errors and slow ones as warnings.
// Missing records are not failures.
func (g gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.l.Error("query failed", &logger.LogContext{
			Caller: utils.FileWithLineNum(),
			Error:  err,
			Data:   map[string]any{"sql": sql, "rows": rows, "elapsed": elapsed.String()},
		})

	case elapsed > slowQuery && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.l.Warn("slow query", &logger.LogContext{
			Caller: utils.FileWithLineNum(),
			Data:   map[string]any{"sql": sql, "rows": rows, "elapsed": elapsed.String()},
		})

	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.l.Debug("query", &logger.LogContext{
			Caller: utils.FileWithLineNum(),
			Data:   map[string]any{"sql": sql, "rows": rows, "elapsed": elapsed.String()},
		})
	}
}
