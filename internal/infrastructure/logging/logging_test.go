package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "info", "json")
	require.NoError(t, err)

	log.Debug("hidden")
	log.WithField("loan_id", "abc").Info("loan status changed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "abc", entry["loan_id"])
	assert.Equal(t, "loan status changed", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewWithOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "debug", "text")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Debug("hello")
	assert.Contains(t, buf.String(), `msg=hello`)
}

func TestNewWithOutput_Rejects(t *testing.T) {
	_, err := NewWithOutput(&bytes.Buffer{}, "loud", "json")
	assert.Error(t, err)

	_, err = NewWithOutput(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}
