package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug)

	logger.Info("store opened", "root", "/tmp/x")

	out := buf.String()
	assert.Contains(t, out, "store opened")
	assert.Contains(t, out, "root=/tmp/x")
	assert.Contains(t, out, "level=info")
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		log    func(Logger)
		expect bool
	}{
		{name: "debug hidden at warn", level: LevelWarn, log: func(l Logger) { l.Debug("msg") }, expect: false},
		{name: "info hidden at warn", level: LevelWarn, log: func(l Logger) { l.Info("msg") }, expect: false},
		{name: "warn shown at warn", level: LevelWarn, log: func(l Logger) { l.Warn("msg") }, expect: true},
		{name: "info shown at info", level: LevelInfo, log: func(l Logger) { l.Info("msg") }, expect: true},
		{name: "debug shown at debug", level: LevelDebug, log: func(l Logger) { l.Debug("msg") }, expect: true},
		{name: "warn hidden at error", level: LevelError, log: func(l Logger) { l.Warn("msg") }, expect: false},
		{name: "error shown at error", level: LevelError, log: func(l Logger) { l.Error("msg") }, expect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(New(&buf, tt.level))
			assert.Equal(t, tt.expect, buf.Len() > 0)
		})
	}
}

func TestWithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo).With("backend", "file")

	logger.Info("opened")

	assert.Contains(t, buf.String(), "backend=file")
}

func TestOddArgs(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, LevelInfo).Info("odd", "dangling")

	assert.Contains(t, buf.String(), "!BADKEY=dangling")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("info"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("bogus"))
}

func TestDefaultIsNoop(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	assert.Equal(t, NewNoop(), orig)

	var buf bytes.Buffer
	SetDefault(New(&buf, LevelWarn))
	Default().Warn("hello")
	assert.Contains(t, buf.String(), "hello")
}
