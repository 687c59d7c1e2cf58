// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name:      "default config",
			cfg:       NewDefaultConfig(),
			shouldErr: false,
		},
		{
			name: "strict everything",
			cfg: &Config{
				MaxConcurrentPDFs: 10,
				MaxWorkersPerPDF:  10,
				DocumentTimeout:   time.Second,
				ParsingMode:       Strict,
				OffsetPattern:     "strict",
				ChapterSuffix:     ": AIRPORT DIRECTORY",
				MaxOutlineEntries: 1,
			},
			shouldErr: false,
		},
		{
			name: "too many concurrent PDFs",
			cfg: func() *Config {
				c := NewDefaultConfig()
				c.MaxConcurrentPDFs = 11
				return c
			}(),
			shouldErr: true,
		},
		{
			name: "zero workers",
			cfg: func() *Config {
				c := NewDefaultConfig()
				c.MaxWorkersPerPDF = 0
				return c
			}(),
			shouldErr: true,
		},
		{
			name: "no timeout",
			cfg: func() *Config {
				c := NewDefaultConfig()
				c.DocumentTimeout = 0
				return c
			}(),
			shouldErr: true,
		},
		{
			name: "unknown parsing mode",
			cfg: func() *Config {
				c := NewDefaultConfig()
				c.ParsingMode = "lenient"
				return c
			}(),
			shouldErr: true,
		},
		{
			name: "unknown offset pattern",
			cfg: func() *Config {
				c := NewDefaultConfig()
				c.OffsetPattern = "loose"
				return c
			}(),
			shouldErr: true,
		},
		{
			name: "empty chapter suffix",
			cfg: func() *Config {
				c := NewDefaultConfig()
				c.ChapterSuffix = ""
				return c
			}(),
			shouldErr: true,
		},
		{
			name: "no outline entries",
			cfg: func() *Config {
				c := NewDefaultConfig()
				c.MaxOutlineEntries = 0
				return c
			}(),
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.shouldErr {
				t.Errorf("Validate() error = %v, shouldErr %v", err, tt.shouldErr)
			}
		})
	}
}
