// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

type ParsingMode string

const (
	Strict     ParsingMode = "strict"
	BestEffort ParsingMode = "best-effort"
)

type Config struct {
	MaxConcurrentPDFs int           `validate:"min=1,max=10"`
	MaxWorkersPerPDF  int           `validate:"min=1,max=10"`
	DocumentTimeout   time.Duration `validate:"required"`
	ParsingMode       ParsingMode   `validate:"oneof=strict best-effort"`
	OffsetPattern     string        `validate:"oneof=lenient strict"`
	ChapterSuffix     string        `validate:"required"`
	MaxOutlineEntries int           `validate:"min=1"`
	CheckZones        bool
	DebugOn           bool           // forward debug messages to Logger
	Logger            logger.LogFunc // receives error messages, and debug messages when DebugOn
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentPDFs: 4,
		MaxWorkersPerPDF:  1,
		DocumentTimeout:   2 * time.Minute,
		ParsingMode:       BestEffort,
		OffsetPattern:     "lenient",
		ChapterSuffix:     DefaultChapterSuffix,
		MaxOutlineEntries: DefaultMaxOutlineEntries,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("config: validating")
	validate := validator.New()
	return validate.Struct(cfg)
}
