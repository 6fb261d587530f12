package diagnostics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorderAndTee(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	reporter := NewReporter(Tee(first, nil, second), "archive")

	reporter.Info("opened archive", "")
	reporter.Warn("member not found", "following.json", errors.New("member not found in archive"))

	for _, recorder := range []*Recorder{first, second} {
		events := recorder.Events()
		require.Len(t, events, 2)
		assert.Equal(t, LevelInfo, events[0].Level)
		assert.Equal(t, "archive", events[0].Stage)
		assert.Equal(t, LevelWarn, events[1].Level)
		assert.Equal(t, "following.json", events[1].Member)
		assert.Equal(t, "member not found in archive", events[1].Error)
		assert.False(t, events[1].Time.IsZero())
	}
}

func TestNilSinkIsNop(t *testing.T) {
	reporter := NewReporter(nil, "x")
	assert.NotPanics(t, func() { reporter.Error("boom", "", errors.New("boom")) })
}

func TestZapSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reporter := NewReporter(NewZapSink(zap.New(core)), "markup")

	reporter.Debug("filtered out", "")
	reporter.Error("signature miss", "liked_posts.html", errors.New("no match"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "signature miss", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, map[string]any{
		"stage":  "markup",
		"member": "liked_posts.html",
		"error":  "no match",
	}, entries[0].ContextMap())
}

func TestReporterLiteralUsesWallClock(t *testing.T) {
	recorder := &Recorder{}
	reporter := Reporter{Sink: recorder, Stage: "extract"}

	require.NotPanics(t, func() { reporter.Info("read member", "following.json") })
	events := recorder.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].Time.IsZero())
	assert.Equal(t, "extract", events[0].Stage)
}
