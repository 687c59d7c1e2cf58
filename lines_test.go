// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	acc := newTextAccumulator()
	acc.add(pos(200, -700), " UTC-8(7DT)")
	acc.add(pos(10, -690), "CITY")
	acc.add(pos(10, -700), "(KSFO) SAN FRANCISCO")
	// a hair lower is a different line
	acc.add(pos(10, -699.5), "footnote")

	want := []string{
		"(KSFO) SAN FRANCISCO UTC-8(7DT)",
		"footnote",
		"CITY",
	}
	if diff := cmp.Diff(want, Lines(acc)); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, acc.Len())
}

func TestLines_Empty(t *testing.T) {
	assert.Empty(t, Lines(newTextAccumulator()))
}
