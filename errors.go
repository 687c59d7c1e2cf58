// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import "errors"

// Conditions that abort the processing of a single document. Callers match
// them with errors.Is; the returned errors wrap them with context.
var (
	ErrInvalidNumber     = errors.New("coordinate is not a finite number")
	ErrUnmappableCode    = errors.New("character code missing from the font's unicode map")
	ErrUnknownFont       = errors.New("font not declared in page resources")
	ErrTreeTooDeep       = errors.New("tree nested too deeply")
	ErrResolutionFailure = errors.New("bookmark does not resolve to a page")
	ErrOutlineTooLong    = errors.New("outline list is cyclic or too long")
	ErrChapterNotFound   = errors.New("airport/facility directory bookmark not found")
	ErrMalformed         = errors.New("malformed PDF")
	ErrEncrypted         = errors.New("encrypted PDF files are not supported")
)
