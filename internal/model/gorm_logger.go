package model

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger 把 gorm 的日志转发到 logrus
type gormLogger struct {
	level     logger.LogLevel
	slowQuery time.Duration
}

func newGormLogger(slowQuery time.Duration) logger.Interface {
	return &gormLogger{level: logger.Warn, slowQuery: slowQuery}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		logrus.WithContext(ctx).WithField("component", "gorm").Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		logrus.WithContext(ctx).WithField("component", "gorm").Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		logrus.WithContext(ctx).WithField("component", "gorm").Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	fields := func() logrus.Fields {
		query, rows := fc()
		return logrus.Fields{
			"component":  "gorm",
			"sql":        query,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		}
	}

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		logrus.WithContext(ctx).WithFields(fields()).WithError(err).Error("query failed")
	case l.slowQuery > 0 && elapsed > l.slowQuery && l.level >= logger.Warn:
		logrus.WithContext(ctx).WithFields(fields()).Warn("slow query")
	case l.level >= logger.Info:
		logrus.WithContext(ctx).WithFields(fields()).Debug("query")
	}
}
