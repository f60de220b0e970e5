// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_HandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)

	err := h.HandleLog(&log.Entry{
		Level:     log.WarnLevel,
		Message:   "snapshot not written",
		Timestamp: time.Date(2025, 7, 4, 10, 30, 0, 0, time.UTC),
		Fields:    log.Fields{"name": "ForecastCache.cache", "attempt": 2},
	})

	assert.NoError(t, err)
	assert.Equal(t,
		"2025-07-04 10:30:00 W snapshot not written attempt=2 name=ForecastCache.cache\n",
		buf.String())
}

func TestLeveled_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := &log.Logger{Handler: NewHandler(&buf), Level: log.DebugLevel}

	l := Leveled{Interface: logger}
	l.Debug("performing request", "method", "GET", "url", "https://example.test")
	l.Error("dangling key")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "D performing request method=GET url=https://example.test")
	assert.Contains(t, lines[1], "E dangling key")
}

func TestInitLogger_Level(t *testing.T) {
	t.Setenv("WXCTL_LOG", "debug")
	InitLogger()
	assert.Equal(t, log.DebugLevel, log.Log.(*log.Logger).Level)

	t.Setenv("WXCTL_LOG", "")
	InitLogger()
	assert.Equal(t, log.ErrorLevel, log.Log.(*log.Logger).Level)
}
