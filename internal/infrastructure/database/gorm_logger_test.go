package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func observed(level string, slow time.Duration) (gormlogger.Interface, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newGormLogger(zap.New(core), level, slow), logs
}

func statement() (string, int64) { return "SELECT 1", 1 }

func TestGormLogger_TraceLevels(t *testing.T) {
	l, logs := observed("warn", 10*time.Millisecond)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), statement, nil)
	l.Trace(ctx, time.Now().Add(-time.Second), statement, nil)
	l.Trace(ctx, time.Now(), statement, errors.New("boom"))
	l.Trace(ctx, time.Now(), statement, gorm.ErrRecordNotFound)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "slow statement", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "statement failed", entries[1].Message)
		assert.Equal(t, "SELECT 1", entries[1].ContextMap()["sql"])
	}
}

func TestGormLogger_InfoLevelLogsEveryStatement(t *testing.T) {
	l, logs := observed("info", 0)

	l.Trace(context.Background(), time.Now(), statement, nil)

	assert.Equal(t, 1, logs.FilterMessage("statement").Len())
}

func TestGormLogger_SilentAndNil(t *testing.T) {
	l, logs := observed("silent", 0)
	l.Trace(context.Background(), time.Now(), statement, errors.New("boom"))
	assert.Zero(t, logs.Len())

	assert.NotPanics(t, func() {
		newGormLogger(nil, "info", 0).Trace(context.Background(), time.Now(), statement, nil)
	})
}
