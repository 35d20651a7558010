package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFields(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
	assert.Equal(t, " game=401 status=final", formatFields([]interface{}{"game", 401, "status", "final"}))
	assert.Equal(t, ` err="connection refused"`, formatFields([]interface{}{"err", "connection refused"}))
	assert.Equal(t, " dangling=MISSING", formatFields([]interface{}{"dangling"}))
}

func TestLevelsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Output: &buf, Prefix: "LockEngine"})

	logger.Info("hidden")
	logger.Warnw("late pick", "user", 3)
	child := logger.WithPrefix("Child")
	child.Errorf("failed %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[LockEngine] ")
	assert.Contains(t, out, "late pick user=3")
	assert.Contains(t, out, "[LockEngine:Child] ")
	assert.Contains(t, out, "failed 2")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestFatalUsesExitHook(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Output: &buf})
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatalf("cannot start: %s", "no db")
	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "cannot start: no db")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}
