package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("scene")
	l.Debug("hidden")
	l.Info("track loaded", String("track", "monza"), Int("points", 2000))
	require.NoError(t, l.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scene", entry["logger"])
	assert.Equal(t, "track loaded", entry["msg"])
	assert.Equal(t, "monza", entry["track"])
	assert.EqualValues(t, 2000, entry["points"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := DevLogger(&buf, WarnLevel)
	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	l.Debug("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWithFilter(t *testing.T) {
	core, logs := observer.New(DebugLevel)
	base := FromZap(zap.New(core))

	l, err := base.WithFilter("*:* -debug:camera")
	require.NoError(t, err)

	l.Named("camera").Debug("tick")
	l.Named("camera").Info("zoom")
	l.Named("scene").Debug("frame")

	msgs := make([]string, 0, logs.Len())
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"zoom", "frame"}, msgs)

	same, err := base.WithFilter("")
	require.NoError(t, err)
	assert.Same(t, base, same)
}

func TestResetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { ResetDefault(prev) })

	core, logs := observer.New(InfoLevel)
	ResetDefault(FromZap(zap.New(core)))
	Info("hello", ErrorField(assert.AnError))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, assert.AnError.Error(), entry.ContextMap()["error"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, lvl)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
