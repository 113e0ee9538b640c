package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	SetTestOutput(&buf)
	defer UnsetTestOutput()

	InitLogger("warn")
	Info("should be suppressed")
	Warn("should appear", Fields{"key": "value"})

	out := buf.String()
	assert.NotContains(t, out, "should be suppressed")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "key=value")
}

func TestDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetTestOutput(&buf)
	defer UnsetTestOutput()

	InitLogger("debug")
	Debugf("answer is %d", 42)

	assert.Contains(t, buf.String(), "answer is 42")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetTestOutput(&buf)
	defer UnsetTestOutput()

	InitLogger("nonsense")
	Debug("hidden")
	Info("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestSuccessAddsStatusField(t *testing.T) {
	var buf bytes.Buffer
	SetTestOutput(&buf)
	defer UnsetTestOutput()

	InitLogger("info")
	Success("done", Fields{"artifacts": 3})

	out := buf.String()
	assert.Contains(t, out, "status=success")
	assert.Contains(t, out, "artifacts=3")
}
