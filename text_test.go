// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RavuAlHemio/airfield-timezones/fontenc"
)

func TestValue_Text(t *testing.T) {
	withTables := &Reader{tables: fontenc.MustLoad()}

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"utf-16", Value{data: "\xfe\xff\x00K\x00S\x00F\x00O"}, "KSFO"},
		{"utf-16 surrogate pair", Value{data: "\xfe\xff\xd8\x3d\xde\x00"}, "😀"},
		{"pdfdoc", Value{r: withTables, data: "a\x8ab"}, "a−b"},
		{"pdfdoc undefined byte dropped", Value{r: withTables, data: "a\x7fb"}, "ab"},
		{"latin-1 without tables", Value{data: "caf\xe9"}, "café"},
		{"odd length is not utf-16", Value{data: "\xfe\xff\x00"}, "þÿ\x00"},
		{"not a string", Value{data: int64(3)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Text())
		})
	}
}

func TestUTF16Decode(t *testing.T) {
	assert.Equal(t, "AB", utf16Decode("\x00A\x00B"))
	assert.Equal(t, "AB", utf16Decode("\xfe\xff\x00A\x00B"))
	assert.Equal(t, "�", utf16Decode("\xd8\x00"))
}
