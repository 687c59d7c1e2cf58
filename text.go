// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/RavuAlHemio/airfield-timezones/fontenc"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// isUTF16 reports whether s starts with the UTF-16BE byte order mark.
func isUTF16(s string) bool {
	return len(s) >= 2 && s[0] == 0xfe && s[1] == 0xff && len(s)%2 == 0
}

// utf16Decode decodes big-endian UTF-16, with or without a byte order mark.
// Unpaired surrogates become U+FFFD.
func utf16Decode(s string) string {
	s = strings.TrimPrefix(s, "\xfe\xff")
	out, err := utf16BE.NewDecoder().String(s)
	if err != nil {
		return ""
	}
	return out
}

// Text returns v's string value interpreted as a PDF text string and
// converted to UTF-8. Strings with a UTF-16BE byte order mark are decoded as
// UTF-16; others are PDFDocEncoding.
// If v.Kind() != String, Text returns the empty string.
func (v Value) Text() string {
	x, ok := v.data.(string)
	if !ok {
		return ""
	}
	if isUTF16(x) {
		return utf16Decode(x)
	}
	var tables *fontenc.Tables
	if v.r != nil {
		tables = v.r.tables
	}
	return pdfDocDecode(tables, x)
}

// pdfDocDecode maps every byte through PDFDocEncoding. Bytes the encoding
// leaves undefined are dropped. Without tables the string is read as
// Latin-1, which agrees with PDFDocEncoding on printable ASCII.
func pdfDocDecode(tables *fontenc.Tables, s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	if tables == nil {
		for i := 0; i < len(s); i++ {
			sb.WriteRune(rune(s[i]))
		}
		return sb.String()
	}
	enc, _ := tables.Encoding(fontenc.PDFDocEncoding)
	for i := 0; i < len(s); i++ {
		if r, ok := enc.Lookup(s[i]); ok {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
