package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/config"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       config.Logging
		wantLevel logrus.Level
		wantErr   bool
	}{
		{name: "defaults", cfg: config.Logging{}, wantLevel: logrus.InfoLevel},
		{name: "debug text", cfg: config.Logging{Level: "debug", Format: "text"}, wantLevel: logrus.DebugLevel},
		{name: "warn json", cfg: config.Logging{Level: "warn", Format: "json"}, wantLevel: logrus.WarnLevel},
		{name: "bad level", cfg: config.Logging{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: config.Logging{Format: "xml"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.cfg)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLevel, logger.GetLevel())
		})
	}
}

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(config.Logging{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	Component(logger, "catalog").WithField("table", "users").Info("saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "catalog", entry["component"])
	assert.Equal(t, "users", entry["table"])
	assert.Equal(t, "saved", entry["msg"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
	assert.NotNil(t, Component(nil, "x"))
}
