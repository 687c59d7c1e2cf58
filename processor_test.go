// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

func writeTestPDF(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func oneAirport(code, offsets string) []byte {
	s := supplement{
		pages: []string{
			textLine(72, 700, "FRONT"),
			textLine(72, 700, fmt.Sprintf("(%s) SOMEWHERE %s", code, offsets)),
		},
		bookmarks: []testBookmark{
			{"FRONT", 0},
			{"EAST: AIRPORT/FACILITY DIRECTORY", 1},
		},
	}
	return s.build()
}

func TestProcessor_Extract(t *testing.T) {
	cfg := NewDefaultConfig()
	p := NewProcessor(cfg, loadTestZones(t))

	got, err := p.Extract(context.Background(), writeTestPDF(t, "a.pdf", oneAirport("KDEN", "UTC-7(-6DT)")))
	require.NoError(t, err)
	assert.Equal(t, []Result{{ICAO: "KDEN", Zone: "America/Denver"}}, got)

	_, err = p.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Extract(ctx, writeTestPDF(t, "b.pdf", oneAirport("KDEN", "UTC-7(-6DT)")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_StrictPattern(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.OffsetPattern = "strict"
	p := NewProcessor(cfg, loadTestZones(t))

	got, err := p.Extract(context.Background(), writeTestPDF(t, "a.pdf", oneAirport("KSFO", "UTC-8(7DT)")))
	require.NoError(t, err)
	// the unsigned daylight offset is not captured, so only the standard
	// offset is left to match
	assert.Equal(t, []Result{{ICAO: "KSFO", Zone: UnknownZone}}, got)
}

func TestProcessor_RunBestEffort(t *testing.T) {
	paths := []string{
		writeTestPDF(t, "a.pdf", oneAirport("KSFO", "UTC-8(7DT)")),
		filepath.Join(t.TempDir(), "missing.pdf"),
		writeTestPDF(t, "c.pdf", oneAirport("PHNL", "UTC-10")),
		writeTestPDF(t, "d.pdf", oneAirport("KPHX", "UTC-7")),
	}
	cfg := NewDefaultConfig()
	cfg.MaxConcurrentPDFs = 2
	p := NewProcessor(cfg, loadTestZones(t))

	var out bytes.Buffer
	failed, err := p.Run(context.Background(), paths, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "KSFO America/Los_Angeles\nPHNL Pacific/Honolulu\nKPHX America/Phoenix\n", out.String())
}

func TestProcessor_RunStrict(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	paths := []string{
		writeTestPDF(t, "a.pdf", oneAirport("KSFO", "UTC-8(7DT)")),
		missing,
		writeTestPDF(t, "c.pdf", oneAirport("PHNL", "UTC-10")),
	}
	cfg := NewDefaultConfig()
	cfg.ParsingMode = Strict
	cfg.MaxConcurrentPDFs = 1
	p := NewProcessor(cfg, loadTestZones(t))

	var out bytes.Buffer
	failed, err := p.Run(context.Background(), paths, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), missing)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "KSFO America/Los_Angeles\n", out.String())
}

func TestProcessor_RunEmpty(t *testing.T) {
	p := NewProcessor(NewDefaultConfig(), nil)
	var out bytes.Buffer
	failed, err := p.Run(context.Background(), nil, &out)
	assert.NoError(t, err)
	assert.Zero(t, failed)
	assert.Empty(t, out.String())
}

func TestNewProcessor_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxConcurrentPDFs = 0
	assert.Panics(t, func() { NewProcessor(cfg, nil) })
}

func TestFailureStrategies(t *testing.T) {
	cause := fmt.Errorf("%w: bad xref", ErrMalformed)

	err := (&StrictStrategy{}).DocumentFailed("x.pdf", cause)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.EqualError(t, err, "document x.pdf: malformed PDF: bad xref")

	assert.NoError(t, (&BestEffortStrategy{}).DocumentFailed("x.pdf", cause))
}

func TestNewProcessor_DebugOn(t *testing.T) {
	defer logger.SetLogger(func(logger.LogLevel, string, ...interface{}) {})
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	for _, debug := range []bool{false, true} {
		t.Run(fmt.Sprintf("debug=%v", debug), func(t *testing.T) {
			var logs bytes.Buffer
			cfg := NewDefaultConfig()
			cfg.DebugOn = debug
			cfg.Logger = logger.Writer(&logs)
			p := NewProcessor(cfg, nil)

			failed, err := p.Run(context.Background(), []string{missing}, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, 1, failed)
			assert.Contains(t, logs.String(), "error document "+missing)
			if debug {
				assert.Contains(t, logs.String(), "debug processor: starting path="+missing)
			} else {
				assert.NotContains(t, logs.String(), "debug ")
			}
		})
	}
}
