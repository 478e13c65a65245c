package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, InitLogger(path, "debug"))
	defer func() { require.NoError(t, InitLogger("", "info")) }()

	LogInfof("session %s connected", "abc")
	Logger().Info("structured", zap.Uint32("uid", 7))
	SyncLogger()

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "session abc connected")
	assert.Contains(t, string(body), "uid")
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel("info")

	SetLogLevel("warn")
	assert.Equal(t, zapcore.WarnLevel, level.Level())
	SetLogLevel("DEBUG")
	assert.Equal(t, zapcore.DebugLevel, level.Level())
	SetLogLevel("nonsense")
	assert.Equal(t, zapcore.InfoLevel, level.Level())
}

func TestTimestampMS(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_123)
	assert.Equal(t, uint64(1_700_000_000_123), TimestampMS(at))
	assert.Zero(t, TimestampMS(time.UnixMilli(-5)))
	assert.InDelta(t, time.Now().UnixMilli(), GetCurrentTimestampMS(), 1000)
}
