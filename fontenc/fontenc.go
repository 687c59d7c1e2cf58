// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package fontenc holds the single-byte base encodings of simple PDF fonts
// and the glyph-name table used to apply /Differences overrides.
//
// The data lives in encoding.txt, one glyph per line:
//
//	character <TAB> glyph name <TAB> standard <TAB> mac roman <TAB> win ansi <TAB> pdf doc <TAB> symbol
//
// Codes are octal and "-" marks a glyph the encoding does not contain.
// The character column is either the literal character or U+XXXX.
package fontenc

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

//go:embed encoding.txt
var encodingTxt []byte

// Names of the base encodings, as they appear in a font's /Encoding or
// /BaseEncoding entry.
const (
	StandardEncoding = "StandardEncoding"
	MacRomanEncoding = "MacRomanEncoding"
	WinAnsiEncoding  = "WinAnsiEncoding"
	PDFDocEncoding   = "PDFDocEncoding"
	SymbolEncoding   = "SymbolEncoding"
)

// column order of the code fields in encoding.txt
var columns = [...]string{StandardEncoding, MacRomanEncoding, WinAnsiEncoding, PDFDocEncoding, SymbolEncoding}

const fieldCount = 2 + len(columns)

// An Encoding maps a byte to a character. A zero entry means the byte has no
// mapping.
type Encoding [256]rune

// Lookup returns the character for b.
func (e *Encoding) Lookup(b byte) (rune, bool) {
	r := e[b]
	return r, r != 0
}

// Set maps b to r, replacing any previous mapping.
func (e *Encoding) Set(b byte, r rune) {
	e[b] = r
}

// Tables is the parsed encoding data. It is never modified after Parse
// returns and may be shared between goroutines.
type Tables struct {
	encodings map[string]*Encoding
	glyphs    map[string]rune
}

// Load parses the embedded encoding data.
func Load() (*Tables, error) {
	return Parse(bytes.NewReader(encodingTxt))
}

// MustLoad is like Load but panics if the embedded data is damaged.
func MustLoad() *Tables {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Parse reads encoding data in the encoding.txt format.
func Parse(r io.Reader) (*Tables, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = fieldCount
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	t := &Tables{
		encodings: make(map[string]*Encoding, len(columns)),
		glyphs:    make(map[string]rune),
	}
	for _, name := range columns {
		t.encodings[name] = new(Encoding)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fontenc: %w", err)
		}
		line, _ := cr.FieldPos(0)

		ch, err := parseCharacter(rec[0])
		if err != nil {
			return nil, fmt.Errorf("fontenc: line %d: %w", line, err)
		}
		glyph := rec[1]
		if glyph == "" {
			return nil, fmt.Errorf("fontenc: line %d: empty glyph name", line)
		}
		if _, dup := t.glyphs[glyph]; dup {
			return nil, fmt.Errorf("fontenc: line %d: glyph %q listed twice", line, glyph)
		}
		t.glyphs[glyph] = ch

		for i, name := range columns {
			field := rec[2+i]
			if field == "-" {
				continue
			}
			code, err := strconv.ParseUint(field, 8, 8)
			if err != nil {
				return nil, fmt.Errorf("fontenc: line %d: %s code %q: %w", line, name, field, err)
			}
			enc := t.encodings[name]
			if enc[code] != 0 {
				return nil, fmt.Errorf("fontenc: line %d: %s code %03o already mapped", line, name, code)
			}
			enc[code] = ch
		}
	}
	return t, nil
}

func parseCharacter(s string) (rune, error) {
	if len(s) > 2 && strings.HasPrefix(s, "U+") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) || v == 0 {
			return 0, fmt.Errorf("bad code point %q", s)
		}
		return rune(v), nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	return r, nil
}

// Encoding returns a copy of the named base encoding. The copy may be
// modified freely.
func (t *Tables) Encoding(name string) (Encoding, bool) {
	enc, ok := t.encodings[name]
	if !ok {
		return Encoding{}, false
	}
	return *enc, true
}

// Glyph returns the character for a glyph name. Besides the names in the
// table it understands the uniXXXX and uXXXX[XX] conventions.
func (t *Tables) Glyph(name string) (rune, bool) {
	if r, ok := t.glyphs[name]; ok {
		return r, true
	}
	switch {
	case strings.HasPrefix(name, "uni") && len(name) == 7:
		return hexRune(name[3:])
	case strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7:
		return hexRune(name[1:])
	}
	return 0, false
}

func hexRune(s string) (rune, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		// glyph names use upper-case hex only
		if !('0' <= c && c <= '9' || 'A' <= c && c <= 'F') {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	r := rune(v)
	if r == 0 || !utf8.ValidRune(r) {
		return 0, false
	}
	return r, true
}
