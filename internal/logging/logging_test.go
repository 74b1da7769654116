package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-practice/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("session_id", "s1").Debug("answer scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "answer scored", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
}

func TestNewDefaults(t *testing.T) {
	log, err := New(config.LogConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestNewInvalid(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"}, nil)
	assert.Error(t, err)

	_, err = New(config.LogConfig{Format: "xml"}, nil)
	assert.Error(t, err)
}
