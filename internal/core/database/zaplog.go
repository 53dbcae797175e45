package database

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// zapGormLogger sends gorm's statement log to zap so SQL lands in the same
// sink (and rotation) as the rest of the service.
type zapGormLogger struct {
	l     *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newZapGormLogger(l *zap.Logger, level logger.LogLevel) *zapGormLogger {
	return &zapGormLogger{l: l.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: level, slow: slowQuery}
}

func (g *zapGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *zapGormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.l.Sugar().Infof(msg, args...)
	}
}

func (g *zapGormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.l.Sugar().Warnf(msg, args...)
	}
}

func (g *zapGormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.l.Sugar().Errorf(msg, args...)
	}
}

func (g *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.l.Error("sql", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case elapsed > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.l.Warn("slow sql", zap.Duration("threshold", g.slow), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case g.level >= logger.Info:
		sql, rows := fc()
		g.l.Debug("sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
