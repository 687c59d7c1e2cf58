// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"
	"strings"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// DefaultChapterSuffix ends the title of the airport directory bookmark in
// FAA chart supplements.
const DefaultChapterSuffix = ": AIRPORT/FACILITY DIRECTORY"

// A Chapter is a half-open range of page indexes.
type Chapter struct {
	Title string
	Start int // first page
	End   int // one past the last page
}

// FindChapter locates the first bookmark whose title ends with suffix. The
// chapter runs up to the page of the bookmark after it, or to the end of the
// document if it is the last one.
func FindChapter(bookmarks []Bookmark, nav *Navigator, suffix string) (Chapter, error) {
	if suffix == "" {
		suffix = DefaultChapterSuffix
	}
	at := -1
	for i, b := range bookmarks {
		if strings.HasSuffix(b.Title, suffix) {
			at = i
			break
		}
	}
	if at < 0 {
		return Chapter{}, fmt.Errorf("no bookmark ending in %q: %w", suffix, ErrChapterNotFound)
	}
	b := bookmarks[at]

	start, ok := nav.Resolve(b.Destination)
	if !ok {
		return Chapter{}, fmt.Errorf("chapter %q: start %v: %w", b.Title, b.Destination, ErrResolutionFailure)
	}

	end := len(nav.Pages)
	if b.Index+1 < len(bookmarks) {
		next := bookmarks[b.Index+1]
		if end, ok = nav.Resolve(next.Destination); !ok {
			return Chapter{}, fmt.Errorf("chapter %q: end at %q %v: %w", b.Title, next.Title, next.Destination, ErrResolutionFailure)
		}
	}
	if end < start {
		logger.Debug(fmt.Sprintf("chapter: next bookmark precedes start (start=%d end=%d), range is empty", start, end), true)
		end = start
	}
	logger.Debug(fmt.Sprintf("chapter: %q pages [%d, %d)", b.Title, start, end), true)
	return Chapter{Title: b.Title, Start: start, End: end}, nil
}
