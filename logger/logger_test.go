// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RavuAlHemio/airfield-timezones/tracer"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	log := Writer(&buf)
	log(DebugLevel, "processor: starting", "path", "a.pdf", "pages", 3)
	log(ErrorLevel, "odd", "dangling")
	assert.Equal(t, "debug processor: starting path=a.pdf pages=3\nerror odd dangling\n", buf.String())
}

func TestDebugTrace(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(Writer(&buf))
	defer SetLogger(func(LogLevel, string, ...interface{}) {})
	tracer.Reset()

	Debug("plain")
	Debug("traced", true)
	Debug("with keys", "k", "v", false)
	Error("failed")

	assert.Equal(t, "debug plain\ndebug traced\ndebug with keys k=v\nerror failed\n", buf.String())
	assert.Equal(t, []string{"traced"}, tracer.Messages())
}

func TestSetLogger_Nil(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(Writer(&buf))
	defer SetLogger(func(LogLevel, string, ...interface{}) {})

	SetLogger(nil)
	Error("kept")
	assert.Equal(t, "error kept\n", buf.String())
}

func TestErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	log := ErrorsOnly(Writer(&buf))
	log(DebugLevel, "dropped")
	log(ErrorLevel, "kept", "k", 1)
	assert.Equal(t, "error kept k=1\n", buf.String())
}
