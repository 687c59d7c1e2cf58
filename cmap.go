// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"
	"strings"

	tokenizer "github.com/benoitkugler/pstokenizer"
)

// A DirectMap is a parsed ToUnicode CMap: two-byte character codes mapped
// straight to text.
type DirectMap map[uint16]string

// ParseToUnicode reads the bfchar and bfrange sections of a ToUnicode CMap.
// Everything else in the program (codespace ranges, dictionaries,
// procedure sets) is skipped.
func ParseToUnicode(data []byte) (DirectMap, error) {
	m := DirectMap{}
	tk := tokenizer.NewTokenizer(data)
	for {
		tok, err := tk.NextToken()
		if err != nil {
			return nil, fmt.Errorf("%w: cmap: %v", ErrMalformed, err)
		}
		switch {
		case tok.Kind == tokenizer.EOF:
			return m, nil
		case tok.IsOther("beginbfchar"):
			if err := m.readBfchar(tk); err != nil {
				return nil, err
			}
		case tok.IsOther("beginbfrange"):
			if err := m.readBfrange(tk); err != nil {
				return nil, err
			}
		}
	}
}

func (m DirectMap) readBfchar(tk *tokenizer.Tokenizer) error {
	for {
		src, err := tk.NextToken()
		if err != nil {
			return fmt.Errorf("%w: cmap bfchar: %v", ErrMalformed, err)
		}
		if src.IsOther("endbfchar") {
			return nil
		}
		if src.Kind != tokenizer.StringHex && src.Kind != tokenizer.String {
			return fmt.Errorf("%w: cmap bfchar: unexpected source %q", ErrMalformed, src.Value)
		}
		dst, err := tk.NextToken()
		if err != nil {
			return fmt.Errorf("%w: cmap bfchar: %v", ErrMalformed, err)
		}
		switch dst.Kind {
		case tokenizer.StringHex, tokenizer.String:
			m[codeOf(src.Value)] = utf16Decode(string(dst.Value))
		case tokenizer.Name:
			// glyph-name destinations are rare and carry no Unicode value
		default:
			return fmt.Errorf("%w: cmap bfchar: unexpected destination %q", ErrMalformed, dst.Value)
		}
	}
}

func (m DirectMap) readBfrange(tk *tokenizer.Tokenizer) error {
	for {
		lo, err := tk.NextToken()
		if err != nil {
			return fmt.Errorf("%w: cmap bfrange: %v", ErrMalformed, err)
		}
		if lo.IsOther("endbfrange") {
			return nil
		}
		hi, err := tk.NextToken()
		if err != nil {
			return fmt.Errorf("%w: cmap bfrange: %v", ErrMalformed, err)
		}
		if lo.Kind != tokenizer.StringHex || hi.Kind != tokenizer.StringHex {
			return fmt.Errorf("%w: cmap bfrange: bad range bounds", ErrMalformed)
		}
		first, last := codeOf(lo.Value), codeOf(hi.Value)
		if last < first {
			return fmt.Errorf("%w: cmap bfrange: range %04X..%04X is reversed", ErrMalformed, first, last)
		}

		dst, err := tk.NextToken()
		if err != nil {
			return fmt.Errorf("%w: cmap bfrange: %v", ErrMalformed, err)
		}
		switch dst.Kind {
		case tokenizer.StringHex, tokenizer.String:
			m.fillRange(first, last, []byte(dst.Value))
		case tokenizer.StartArray:
			code := uint32(first)
			for {
				elem, err := tk.NextToken()
				if err != nil {
					return fmt.Errorf("%w: cmap bfrange: %v", ErrMalformed, err)
				}
				if elem.Kind == tokenizer.EndArray {
					break
				}
				if elem.Kind != tokenizer.StringHex && elem.Kind != tokenizer.String {
					return fmt.Errorf("%w: cmap bfrange: unexpected array element %q", ErrMalformed, elem.Value)
				}
				if code <= uint32(last) {
					m[uint16(code)] = utf16Decode(string(elem.Value))
				}
				code++
			}
		default:
			return fmt.Errorf("%w: cmap bfrange: unexpected destination %q", ErrMalformed, dst.Value)
		}
	}
}

// fillRange maps first..last to consecutive strings starting at dst. Only
// the last UTF-16 unit of dst is incremented.
func (m DirectMap) fillRange(first, last uint16, dst []byte) {
	base := append([]byte(nil), dst...)
	for code := uint32(first); code <= uint32(last); code++ {
		m[uint16(code)] = utf16Decode(string(base))
		if n := len(base); n >= 2 {
			unit := uint16(base[n-2])<<8 | uint16(base[n-1])
			unit++
			base[n-2], base[n-1] = byte(unit>>8), byte(unit)
		}
	}
}

// codeOf reads up to the last two bytes of a source code as a big-endian
// number.
func codeOf(b []byte) uint16 {
	var c uint16
	for _, x := range b {
		c = c<<8 | uint16(x)
	}
	return c
}

// Decode maps raw two bytes at a time. A code missing from the map, or an
// odd trailing byte, fails with ErrUnmappableCode.
func (m DirectMap) Decode(raw []byte) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(raw); i += 2 {
		if i+1 >= len(raw) {
			return "", fmt.Errorf("trailing byte %#02x: %w", raw[i], ErrUnmappableCode)
		}
		code := uint16(raw[i])<<8 | uint16(raw[i+1])
		s, ok := m[code]
		if !ok {
			return "", fmt.Errorf("code %04X: %w", code, ErrUnmappableCode)
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}
