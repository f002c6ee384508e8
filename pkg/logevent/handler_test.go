package logevent

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerWritesAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	codec := logger.WithGroup("codec").With("schema", "snmp")

	before := testutil.ToFloat64(eventCounter.WithLabelValues("INFO", "/codec/", "decode.ok"))
	codec.Info("decoded frame", EventAttrKey, "decode.ok", "bytes", 42)
	codec.Debug("hidden", EventAttrKey, "decode.ok")

	after := testutil.ToFloat64(eventCounter.WithLabelValues("INFO", "/codec/", "decode.ok"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, 1.0, testutil.ToFloat64(eventCounter.WithLabelValues("DEBUG", "/codec/", "decode.ok")))

	var line []any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Len(t, line, 5)
	assert.Equal(t, "INFO", line[1])
	assert.Equal(t, "/codec/decode.ok", line[2])
	assert.Equal(t, "decoded frame", line[3])
	assert.Equal(t, map[string]any{"schema": "snmp", "bytes": "42"}, line[4])
}

func TestLoggerFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), LoggerFromContext(context.Background()))
	logger := slog.New(NewHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, LoggerFromContext(ctx))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
