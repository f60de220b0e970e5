// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// WXCTL_LOG env variable.
func InitLogger() {
	level := strings.ToLower(os.Getenv("WXCTL_LOG"))
	if _, err := log.ParseLevel(level); err != nil {
		level = "error"
	}
	log.SetHandler(NewHandler(os.Stderr))
	log.SetLevelFromString(level)
}

// CustomHandler formats log messages as a single line with sorted fields.
// Logs go to stderr so they never mix with --output json or yaml.
type CustomHandler struct {
	mu sync.Mutex
	w  io.Writer
}

// NewHandler returns a CustomHandler writing to w.
func NewHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp.Format("2006-01-02 15:04:05"), level, e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, b.String())
	return err
}

// Leveled adapts apex/log to the leveled logger interface used by
// go-retryablehttp. Key/value pairs become apex fields.
type Leveled struct {
	Interface log.Interface
}

func (l Leveled) entry(keysAndValues ...interface{}) *log.Entry {
	target := l.Interface
	if target == nil {
		target = log.Log
	}
	fields := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return target.WithFields(fields)
}

func (l Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Error(msg)
}

func (l Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Warn(msg)
}

func (l Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Info(msg)
}

func (l Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues...).Debug(msg)
}
