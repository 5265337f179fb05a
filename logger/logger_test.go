package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"DEBUG":   logrus.DebugLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestTextFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "backend unreachable",
		Data:    logrus.Fields{"url": "http://x", "attempt": 2},
	}

	out, err := (&TextFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[10:30:00 UTC 2025/01/15] [WARN] backend unreachable attempt=2 url=http://x\n", string(out))
}

func TestSetOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("debug")
	t.Cleanup(func() {
		require.NoError(t, InitLogger(LogConfig{}))
	})

	Debugf("statement %d", 1)
	WithFields(logrus.Fields{"database": "demo_db"}).Info("executed")

	assert.Contains(t, buf.String(), "[DEBU] statement 1")
	assert.Contains(t, buf.String(), "executed database=demo_db")
}
