package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLoggerWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "student.log")

	l, err := CreateLogger(logFile, "debug", "json", false)
	require.NoError(t, err)
	defer l.Close()

	l.WithField("repo", "demo-site").Info("published")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"repo":"demo-site"`)
	assert.Contains(t, string(data), `"msg":"published"`)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestCreateLoggerRejectsBadInput(t *testing.T) {
	_, err := CreateLogger("", "loud", "text", true)
	assert.Error(t, err)

	_, err = CreateLogger("", "info", "xml", true)
	assert.Error(t, err)
}

func TestDiscardSatisfiesFieldLogger(t *testing.T) {
	var fl logrus.FieldLogger = Discard()
	fl.WithField("k", "v").Warn("dropped")
}
