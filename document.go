// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/RavuAlHemio/airfield-timezones/fontenc"
	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// An Extractor turns one document into time zone results.
type Extractor struct {
	Tables            *fontenc.Tables
	Zones             []TimeZoneDefinition
	Pattern           *regexp.Regexp // nil means LenientPattern
	ChapterSuffix     string         // empty means DefaultChapterSuffix
	MaxOutlineEntries int            // <= 0 means DefaultMaxOutlineEntries
	Workers           int            // pages interpreted in parallel; <= 1 is sequential
}

// ExtractDocument finds the airport directory chapter of r and returns one
// result per airport line, in page and line order. Structural damage in the
// document is reported as an error wrapping ErrMalformed.
func (e *Extractor) ExtractDocument(ctx context.Context, r *Reader) (results []Result, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = recoveredError(x)
			logger.Error(fmt.Sprintf("document: %v", err))
		}
	}()

	if info := r.Info(); info.Title != "" {
		logger.Debug(fmt.Sprintf("document: %q", info.Title))
	}

	bookmarks, err := TopLevelBookmarks(r, e.MaxOutlineEntries)
	if err != nil {
		return nil, err
	}
	nav, err := NewNavigator(r)
	if err != nil {
		return nil, err
	}
	ch, err := FindChapter(bookmarks, nav, e.ChapterSuffix)
	if err != nil {
		return nil, err
	}
	return e.extractPages(ctx, r, nav.Pages[ch.Start:ch.End])
}

type pageResult struct {
	index   int
	results []Result
	err     error
}

// extractPages interprets refs with up to e.Workers goroutines and returns
// the results in page order. The first failing page cancels the rest.
func (e *Extractor) extractPages(ctx context.Context, r *Reader, refs []ObjectID) ([]Result, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	numWorkers := e.Workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(refs) {
		numWorkers = len(refs)
	}
	logger.Debug(fmt.Sprintf("document: %d pages, workers=%d", len(refs), numWorkers), true)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	results := make(chan pageResult, numWorkers)

	g.Go(func() error {
		defer close(jobs)
		for i := range refs {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- i:
			}
		}
		return nil
	})
	for w := 0; w < numWorkers; w++ {
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := e.extractPage(r, refs[i])
				select {
				case results <- pageResult{index: i, results: res, err: err}:
				case <-gctx.Done():
					return gctx.Err()
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(results)
	}()

	out, err := emitInOrder(results)
	if err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, waitErr
	}
	return out, nil
}

// emitInOrder reassembles page results by index. It drains results even
// after a failure so that no worker is left blocked.
func emitInOrder(results <-chan pageResult) ([]Result, error) {
	pageBuffer := make(map[int][]Result)
	nextPage := 0
	var (
		out      []Result
		firstErr error
	)
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if firstErr != nil {
			continue
		}
		pageBuffer[res.index] = res.results
		for {
			page, ok := pageBuffer[nextPage]
			if !ok {
				break
			}
			out = append(out, page...)
			delete(pageBuffer, nextPage)
			nextPage++
		}
	}
	return out, firstErr
}

// extractPage runs the interpreter on one page and matches its lines.
func (e *Extractor) extractPage(r *Reader, ref ObjectID) (results []Result, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = fmt.Errorf("page %v: %w", ref, recoveredError(x))
		}
	}()

	page := r.PageByRef(ref)
	if page.V.Kind() != Dict {
		return nil, fmt.Errorf("%w: page %v is %v", ErrMalformed, ref, page.V.Kind())
	}
	acc, err := PageText(page, NewCharDecoder(e.Tables))
	if err != nil {
		return nil, err
	}
	pattern := e.Pattern
	if pattern == nil {
		pattern = LenientPattern
	}
	for _, line := range Lines(acc) {
		rec, ok, err := ParseRecord(line, pattern)
		if !ok {
			continue
		}
		if err != nil {
			logger.Debug(fmt.Sprintf("extract: page %v: skipping line %q: %v", ref, line, err), true)
			continue
		}
		res := Result{ICAO: rec.ICAO, Zone: MatchZone(rec, e.Zones)}
		logger.Debug(fmt.Sprintf("extract: page %v: %v -> %s", ref, rec, res.Zone))
		results = append(results, res)
	}
	return results, nil
}
