// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// UnknownZone is printed for airports no definition matches.
const UnknownZone = "?"

// A TimeZoneDefinition maps UTC offsets, optionally restricted to ICAO codes
// matching a pattern, to an IANA time zone.
type TimeZoneDefinition struct {
	Key         string
	IcaoMatch   *regexp.Regexp
	IANA        string
	UTCStandard int8
	UTCDaylight *int8
}

// zoneEntry is one entry of the time zone file.
type zoneEntry struct {
	IcaoMatch   string `yaml:"icao_match"`
	IANA        string `yaml:"iana" validate:"required"`
	UTCStandard *int8  `yaml:"utc_standard" validate:"required,min=-12,max=14"`
	UTCDaylight *int8  `yaml:"utc_daylight" validate:"omitempty,min=-12,max=14"`
}

// LoadTimeZonesFile reads a time zone file from disk.
func LoadTimeZonesFile(path string) ([]TimeZoneDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	defs, err := LoadTimeZones(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// LoadTimeZones reads a YAML mapping of definitions. The result keeps the
// order of the file.
func LoadTimeZones(r io.Reader) ([]TimeZoneDefinition, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("time zones: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("time zones: line %d: expected a mapping of definitions", root.Line)
	}

	validate := validator.New()
	seen := make(map[string]bool)
	defs := make([]TimeZoneDefinition, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		key := keyNode.Value
		if seen[key] {
			return nil, fmt.Errorf("time zones: line %d: %q defined twice", keyNode.Line, key)
		}
		seen[key] = true

		var e zoneEntry
		if err := valNode.Decode(&e); err != nil {
			return nil, fmt.Errorf("time zones: %q: %w", key, err)
		}
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("time zones: %q: %w", key, err)
		}
		def := TimeZoneDefinition{
			Key:         key,
			IANA:        e.IANA,
			UTCStandard: *e.UTCStandard,
			UTCDaylight: e.UTCDaylight,
		}
		if e.IcaoMatch != "" {
			re, err := regexp.Compile(e.IcaoMatch)
			if err != nil {
				return nil, fmt.Errorf("time zones: %q: icao_match: %w", key, err)
			}
			def.IcaoMatch = re
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// CheckZones verifies that every definition names a time zone known to the
// time package.
func CheckZones(defs []TimeZoneDefinition) error {
	var errs []error
	for _, d := range defs {
		if _, err := time.LoadLocation(d.IANA); err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", d.Key, err))
		}
	}
	return errors.Join(errs...)
}

// MatchZone returns the IANA zone of the first definition that matches rec,
// or UnknownZone. Definitions with an ICAO pattern are tried before those
// without; within each group the order of defs is kept.
func MatchZone(rec Record, defs []TimeZoneDefinition) string {
	for _, restricted := range []bool{true, false} {
		for i := range defs {
			d := &defs[i]
			if (d.IcaoMatch != nil) != restricted {
				continue
			}
			if d.matches(rec) {
				return d.IANA
			}
		}
	}
	return UnknownZone
}

func (d *TimeZoneDefinition) matches(rec Record) bool {
	if d.IcaoMatch != nil && !d.IcaoMatch.MatchString(rec.ICAO) {
		return false
	}
	if d.UTCStandard != rec.Standard {
		return false
	}
	switch {
	case d.UTCDaylight == nil && rec.Daylight == nil:
		return true
	case d.UTCDaylight == nil || rec.Daylight == nil:
		return false
	}
	return *d.UTCDaylight == *rec.Daylight
}

// A Result is the time zone found for one airport.
type Result struct {
	ICAO string
	Zone string
}

func (r Result) String() string {
	return r.ICAO + " " + r.Zone
}
