// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import "strings"

// Lines joins fragments with exactly equal Y into lines, top to bottom,
// with fragments left to right.
func Lines(acc *TextAccumulator) []string {
	var (
		lines []string
		cur   strings.Builder
		y     Scalar
		open  bool
	)
	for _, f := range acc.Fragments() {
		if open && f.Pos.Y != y {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		cur.WriteString(f.Text)
		y, open = f.Pos.Y, true
	}
	if open {
		lines = append(lines, cur.String())
	}
	return lines
}
