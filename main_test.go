package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type syncCountingCore struct {
	zapcore.Core
	syncs int
}

func (c *syncCountingCore) Sync() error {
	c.syncs++
	return c.Core.Sync()
}

func TestExitCodeFlushesLogger(t *testing.T) {
	observed, logs := observer.New(zap.InfoLevel)
	core := &syncCountingCore{Core: observed}

	code := exitCode(zap.New(core), errors.New("listen tcp :8000: address already in use"))
	assert.Equal(t, 1, code)
	assert.Equal(t, 1, core.syncs)

	entries := logs.FilterMessage("server stopped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}
