// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/RavuAlHemio/airfield-timezones/tracer"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

var (
	mu      sync.RWMutex
	logFunc LogFunc = func(level LogLevel, msg string, keyvals ...interface{}) {}
)

// SetLogger sets the global logger function
func SetLogger(f LogFunc) {
	if f != nil {
		mu.Lock()
		logFunc = f
		mu.Unlock()
	}
}

func current() LogFunc {
	mu.RLock()
	defer mu.RUnlock()
	return logFunc
}

// Debug logs a message at debug level
// If the last keyvals element is a bool and true, it is treated as trace flag
func Debug(msg string, keyvals ...interface{}) {
	trace := false
	if len(keyvals) > 0 {
		if b, ok := keyvals[len(keyvals)-1].(bool); ok {
			trace = b
			keyvals = keyvals[:len(keyvals)-1]
		}
	}
	current()(DebugLevel, msg, keyvals...)

	if trace {
		tracer.Log(msg)
	}
}

// Error logs a message at error level
func Error(msg string, keyvals ...interface{}) {
	current()(ErrorLevel, msg, keyvals...)
}

// ErrorsOnly wraps f so that debug messages are dropped.
func ErrorsOnly(f LogFunc) LogFunc {
	return func(level LogLevel, msg string, keyvals ...interface{}) {
		if level == DebugLevel {
			return
		}
		f(level, msg, keyvals...)
	}
}

// Writer returns a LogFunc that writes one "level msg key=value ..." line
// per call to w. Calls from different goroutines are serialized.
func Writer(w io.Writer) LogFunc {
	var wmu sync.Mutex
	return func(level LogLevel, msg string, keyvals ...interface{}) {
		var sb strings.Builder
		sb.WriteString(string(level))
		sb.WriteByte(' ')
		sb.WriteString(msg)
		for i := 0; i < len(keyvals); i += 2 {
			if i+1 < len(keyvals) {
				fmt.Fprintf(&sb, " %v=%v", keyvals[i], keyvals[i+1])
			} else {
				fmt.Fprintf(&sb, " %v", keyvals[i])
			}
		}
		sb.WriteByte('\n')

		wmu.Lock()
		defer wmu.Unlock()
		io.WriteString(w, sb.String())
	}
}
