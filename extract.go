// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The offset patterns. Both capture the ICAO code and the standard offset;
// the daylight offset is optional.
var (
	// LenientPattern accepts the typesetting slips found in real supplements:
	// blanks after "UTC" and before the parenthesis, a blank instead of a
	// sign, the sign written after the number, and D, T or DT suffixes.
	LenientPattern = regexp.MustCompile(`\((?P<icao>[A-Z0-9]{4})\).+UTC[ ]?(?P<utc>[-+\x{2013}][0-9]+)(?:[ ]?\((?:(?P<utcdst>[-+\x{2013} ]?[0-9]+)|(?P<dstutc>[0-9]+[-+\x{2013}]))(?:DT|D|T)?\))?`)

	// StrictPattern accepts only the documented "UTC-8(-7DT)" form.
	StrictPattern = regexp.MustCompile(`\((?P<icao>[A-Z0-9]{4})\).+UTC(?P<utc>[-+\x{2013}][0-9]+)(?:\((?P<utcdst>[-+\x{2013}][0-9]+)DT\))?`)
)

// PatternByName returns the offset pattern called "lenient" or "strict".
func PatternByName(s string) (*regexp.Regexp, error) {
	switch s {
	case "", "lenient":
		return LenientPattern, nil
	case "strict":
		return StrictPattern, nil
	}
	return nil, fmt.Errorf("unknown offset pattern %q", s)
}

// A Record is one airport entry: its ICAO code and UTC offsets in hours.
// Daylight is nil when the airport does not observe daylight saving time.
type Record struct {
	ICAO     string
	Standard int8
	Daylight *int8
}

func (r Record) String() string {
	if r.Daylight == nil {
		return fmt.Sprintf("%s UTC%+d", r.ICAO, r.Standard)
	}
	return fmt.Sprintf("%s UTC%+d(%+dDT)", r.ICAO, r.Standard, *r.Daylight)
}

// NormalizeOffset parses an offset such as "-5", "+5", " 5" or "–5" (with
// an en dash).
func NormalizeOffset(s string) (int8, error) {
	s = strings.ReplaceAll(s, "–", "-")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, " ") {
		s = s[1:]
	}
	v, err := strconv.ParseInt(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("offset %q: %w", s, err)
	}
	return int8(v), nil
}

// NormalizeReversedOffset parses an offset with the sign after the number,
// such as "12-".
func NormalizeReversedOffset(s string) (int8, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return NormalizeOffset(s)
	}
	last := len(runes) - 1
	return NormalizeOffset(string(runes[last]) + string(runes[:last]))
}

// ParseRecord matches a line against pattern. ok is false if the line does
// not describe an airport; err is set if it does but an offset does not fit
// the int8 range.
func ParseRecord(line string, pattern *regexp.Regexp) (rec Record, ok bool, err error) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false, nil
	}
	group := func(name string) (string, bool) {
		i := pattern.SubexpIndex(name)
		if i < 0 || i >= len(m) || m[i] == "" {
			return "", false
		}
		return m[i], true
	}

	icao, _ := group("icao")
	rec.ICAO = icao
	utc, _ := group("utc")
	if rec.Standard, err = NormalizeOffset(utc); err != nil {
		return Record{}, true, fmt.Errorf("%s: standard %w", icao, err)
	}

	if s, found := group("utcdst"); found {
		dst, err := NormalizeOffset(s)
		if err != nil {
			return Record{}, true, fmt.Errorf("%s: daylight %w", icao, err)
		}
		// "UTC-5( 4DT)": a blank was printed where the minus belongs
		if rec.Standard < -2 && dst > 2 {
			dst = -dst
		}
		rec.Daylight = &dst
	} else if s, found := group("dstutc"); found {
		dst, err := NormalizeReversedOffset(s)
		if err != nil {
			return Record{}, true, fmt.Errorf("%s: daylight %w", icao, err)
		}
		rec.Daylight = &dst
	}
	return rec, true, nil
}
