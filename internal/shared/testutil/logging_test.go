package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandlerCapturesRecords(t *testing.T) {
	logger, logs := NewTestLogger(t)

	logger.Debug("cache miss", slog.Int("n", 12))
	logger.Warn("series skipped", slog.String("well", "PM-02"))
	logger.Error("workbook unreadable")

	require.Len(t, logs.Records(), 3)
	assert.Len(t, logs.RecordsAt(slog.LevelWarn), 1)

	AssertLogContains(t, logs, slog.LevelWarn, "skipped")
	AssertLogAttr(t, logs, "cache miss", "n", int64(12))

	logs.Reset()
	assert.Empty(t, logs.Records())
	AssertNoErrors(t, logs)
}

func TestBufferedSlogHandlerSharesStoreAcrossWith(t *testing.T) {
	logger, logs := NewTestLogger(t)

	component := logger.With(slog.String("service", "analysis")).WithGroup("series")
	component.Info("series tested", slog.String("well", "PM-01"))

	r, ok := logs.Find("series tested")
	require.True(t, ok)
	assert.Equal(t, "analysis", r.Attrs["service"])
	assert.Equal(t, "PM-01", r.Attrs["series.well"])
}
