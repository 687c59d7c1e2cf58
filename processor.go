// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/RavuAlHemio/airfield-timezones/fontenc"
	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// FailureStrategy decides what a failed document means for the whole run.
type FailureStrategy interface {
	DocumentFailed(path string, err error) error
}

// StrictStrategy stops the run at the first failed document.
type StrictStrategy struct{}

func (s *StrictStrategy) DocumentFailed(path string, err error) error {
	return fmt.Errorf("document %s: %w", path, err)
}

// BestEffortStrategy logs the failure and carries on with the next
// document, which contributes no output.
type BestEffortStrategy struct{}

func (b *BestEffortStrategy) DocumentFailed(path string, err error) error {
	logger.Error(fmt.Sprintf("document %s: %v", path, err))
	logger.Debug("BestEffortStrategy: document skipped", "path", path, true)
	return nil
}

// Processor extracts airport time zones from many documents with bounded
// concurrency.
type Processor struct {
	cfg       *Config
	sem       *semaphore.Weighted
	strategy  FailureStrategy
	extractor *Extractor
}

// NewProcessor validates the config and creates a new processor that maps
// offsets through zones. It panics if cfg is invalid.
func NewProcessor(cfg *Config, zones []TimeZoneDefinition) *Processor {
	var strategy FailureStrategy
	switch cfg.ParsingMode {
	case Strict:
		strategy = &StrictStrategy{}
	case BestEffort:
		strategy = &BestEffortStrategy{}
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if cfg.Logger != nil {
		log := cfg.Logger
		if !cfg.DebugOn {
			log = logger.ErrorsOnly(log)
		}
		logger.SetLogger(log)
	}

	pattern, err := PatternByName(cfg.OffsetPattern)
	if err != nil {
		panic(err)
	}

	logger.Debug(fmt.Sprintf("processor: initialized parsing_mode=%v max_concurrent_pdfs=%d max_workers_per_pdf=%d pattern=%s zones=%d",
		cfg.ParsingMode, cfg.MaxConcurrentPDFs, cfg.MaxWorkersPerPDF, cfg.OffsetPattern, len(zones)), true)

	return &Processor{
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentPDFs)),
		strategy: strategy,
		extractor: &Extractor{
			Tables:            fontenc.MustLoad(),
			Zones:             zones,
			Pattern:           pattern,
			ChapterSuffix:     cfg.ChapterSuffix,
			MaxOutlineEntries: cfg.MaxOutlineEntries,
			Workers:           cfg.MaxWorkersPerPDF,
		},
	}
}

// Extract processes a single document.
func (p *Processor) Extract(ctx context.Context, path string) ([]Result, error) {
	logger.Debug(fmt.Sprintf("processor: starting path=%s", path), true)

	if err := p.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.DocumentTimeout)
	defer cancel()

	f, r, err := Open(path, p.extractor.Tables)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	results, err := p.extractor.ExtractDocument(ctx, r)
	if err != nil {
		return nil, err
	}
	logger.Debug(fmt.Sprintf("processor: completed path=%s results=%d", path, len(results)), true)
	return results, nil
}

type docResult struct {
	index   int
	path    string
	results []Result
	err     error
}

// Run processes paths concurrently and writes one "CODE ZONE" line per
// airport to w, in argument order. It returns the number of documents that
// failed; in strict mode the first failure also ends the run with an error.
func (p *Processor) Run(ctx context.Context, paths []string, w io.Writer) (failed int, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	done := make(chan docResult, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := p.Extract(ctx, path)
			done <- docResult{index: i, path: path, results: res, err: err}
			return nil
		})
	}
	go func() {
		g.Wait()
		close(done)
	}()

	docBuffer := make(map[int]docResult)
	next := 0
	var runErr error
	for res := range done {
		if runErr != nil {
			// draining after a strict failure
			continue
		}
		docBuffer[res.index] = res
		for runErr == nil {
			d, ok := docBuffer[next]
			if !ok {
				break
			}
			delete(docBuffer, next)
			next++
			if d.err != nil {
				failed++
				runErr = p.strategy.DocumentFailed(d.path, d.err)
				continue
			}
			runErr = writeResults(w, d.results)
		}
		if runErr != nil {
			logger.Debug(fmt.Sprintf("processor: stopping after failure: %v", runErr), true)
			cancel()
		}
	}
	return failed, runErr
}

func writeResults(w io.Writer, results []Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}
	return nil
}

func (p *Processor) acquireSlot(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	logger.Debug("processor: slot acquired", true)
	return nil
}
