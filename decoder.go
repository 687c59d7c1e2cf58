// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"
	"strings"

	"github.com/RavuAlHemio/airfield-timezones/fontenc"
	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// A FontHandle is a font resource of one page, as selected by Tf.
type FontHandle struct {
	Name string // resource name, without the slash
	V    Value  // the font dictionary
}

// fontDecoder is the decoding strategy chosen for one font.
type fontDecoder interface {
	decode(raw []byte) (string, error)
}

// noDecoder stands for fonts whose encoding is not understood. Their text
// is dropped.
type noDecoder struct{}

func (noDecoder) decode([]byte) (string, error) { return "", nil }

type byteDecoder struct {
	enc fontenc.Encoding
}

func (d *byteDecoder) decode(raw []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		if r, ok := d.enc.Lookup(b); ok {
			sb.WriteRune(r)
		}
	}
	return sb.String(), nil
}

type directDecoder struct {
	m DirectMap
}

func (d *directDecoder) decode(raw []byte) (string, error) {
	return d.m.Decode(raw)
}

// CharDecoder turns the bytes shown by Tj and TJ into text. It keeps a cache
// of the decoding strategy per font and is not safe for concurrent use.
type CharDecoder struct {
	tables *fontenc.Tables
	cache  map[*FontHandle]fontDecoder
}

// NewCharDecoder returns a decoder that uses tables for simple fonts.
func NewCharDecoder(tables *fontenc.Tables) *CharDecoder {
	return &CharDecoder{
		tables: tables,
		cache:  make(map[*FontHandle]fontDecoder),
	}
}

// Decode decodes raw in the given font. ok is false if there is no font or
// the font's encoding is not supported, in which case the text is skipped.
func (d *CharDecoder) Decode(raw []byte, font *FontHandle) (text string, ok bool, err error) {
	if font == nil {
		return "", false, nil
	}
	fd, cached := d.cache[font]
	if !cached {
		fd, err = d.forFont(font)
		if err != nil {
			return "", false, err
		}
		d.cache[font] = fd
	}
	if _, none := fd.(noDecoder); none {
		return "", false, nil
	}
	text, err = fd.decode(raw)
	if err != nil {
		return "", false, fmt.Errorf("font %s: %w", font.Name, err)
	}
	return text, true, nil
}

func (d *CharDecoder) forFont(font *FontHandle) (fontDecoder, error) {
	if tu := font.V.Key("ToUnicode"); tu.Kind() == Stream {
		data, err := readStream(tu)
		if err != nil {
			return nil, fmt.Errorf("font %s: ToUnicode: %w", font.Name, err)
		}
		m, err := ParseToUnicode(data)
		if err != nil {
			return nil, fmt.Errorf("font %s: ToUnicode: %w", font.Name, err)
		}
		logger.Debug(fmt.Sprintf("font %s: direct map with %d codes", font.Name, len(m)))
		return &directDecoder{m}, nil
	}

	enc := font.V.Key("Encoding")
	switch enc.Kind() {
	case Name:
		base, ok := d.tables.Encoding(enc.Name())
		if !ok {
			logger.Debug(fmt.Sprintf("font %s: unsupported encoding %s, text skipped", font.Name, enc.Name()))
			return noDecoder{}, nil
		}
		return &byteDecoder{base}, nil
	case Dict:
		baseName := fontenc.StandardEncoding
		if b := enc.Key("BaseEncoding"); b.Kind() == Name {
			baseName = b.Name()
		}
		base, ok := d.tables.Encoding(baseName)
		if !ok {
			logger.Debug(fmt.Sprintf("font %s: unsupported base encoding %s, text skipped", font.Name, baseName))
			return noDecoder{}, nil
		}
		d.applyDifferences(&base, enc.Key("Differences"), font.Name)
		return &byteDecoder{base}, nil
	}
	logger.Debug(fmt.Sprintf("font %s: no usable encoding, text skipped", font.Name))
	return noDecoder{}, nil
}

// applyDifferences applies a /Differences array: a code followed by the
// glyph names for it and the codes after it. Later entries win.
func (d *CharDecoder) applyDifferences(enc *fontenc.Encoding, diffs Value, font string) {
	code := -1
	for i := 0; i < diffs.Len(); i++ {
		switch x := diffs.Index(i); x.Kind() {
		case Integer:
			code = int(x.Int64())
		case Name:
			if code < 0 || code > 255 {
				code++
				continue
			}
			if r, ok := d.tables.Glyph(x.Name()); ok {
				enc.Set(byte(code), r)
			} else {
				logger.Debug(fmt.Sprintf("font %s: unknown glyph %s at code %d", font, x.Name(), code))
			}
			code++
		}
	}
}
