// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0020>
<0024> <0041>
endbfchar
2 beginbfrange
<0044> <0046> <0061>
<0050> <0051> [<00660069> <D83DDE00>]
endbfrange
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

func TestParseToUnicode(t *testing.T) {
	m, err := ParseToUnicode([]byte(testCMap))
	require.NoError(t, err)

	want := DirectMap{
		0x0003: " ",
		0x0024: "A",
		0x0044: "a",
		0x0045: "b",
		0x0046: "c",
		0x0050: "fi",
		0x0051: "😀",
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("ParseToUnicode mismatch (-want +got):\n%s", diff)
	}
}

func TestParseToUnicode_Errors(t *testing.T) {
	for _, in := range []string{
		"1 beginbfrange <0046> <0044> <0061> endbfrange",
		"1 beginbfrange <0044> <0046> /a endbfrange",
		"1 beginbfchar 12 <0041> endbfchar",
	} {
		_, err := ParseToUnicode([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, "%q", in)
	}
}

func TestFillRange_LastUnitOnly(t *testing.T) {
	m := DirectMap{}
	m.fillRange(1, 3, []byte{0x00, 0x41, 0x00, 0xff})
	assert.Equal(t, "Aÿ", m[1])
	assert.Equal(t, "AĀ", m[2])
	assert.Equal(t, "Aā", m[3])
}

func TestDirectMap_Decode(t *testing.T) {
	m := DirectMap{0x0024: "A", 0x0044: "a"}

	got, err := m.Decode([]byte{0x00, 0x24, 0x00, 0x44})
	require.NoError(t, err)
	assert.Equal(t, "Aa", got)

	got, err = m.Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = m.Decode([]byte{0x00, 0x99})
	assert.ErrorIs(t, err, ErrUnmappableCode)

	_, err = m.Decode([]byte{0x00, 0x24, 0x00})
	assert.ErrorIs(t, err, ErrUnmappableCode)
}
