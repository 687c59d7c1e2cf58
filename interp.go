// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// A Fragment is the text drawn at one position.
type Fragment struct {
	Pos  Position
	Text string
}

// TextAccumulator collects text by anchor position. Text drawn twice at the
// same position is concatenated in drawing order.
type TextAccumulator struct {
	text map[Position]*strings.Builder
}

func newTextAccumulator() *TextAccumulator {
	return &TextAccumulator{text: make(map[Position]*strings.Builder)}
}

func (a *TextAccumulator) add(p Position, s string) {
	sb, ok := a.text[p]
	if !ok {
		sb = new(strings.Builder)
		a.text[p] = sb
	}
	sb.WriteString(s)
}

// Len returns the number of distinct positions.
func (a *TextAccumulator) Len() int { return len(a.text) }

// Fragments returns the collected text ordered by position.
func (a *TextAccumulator) Fragments() []Fragment {
	out := make([]Fragment, 0, len(a.text))
	for p, sb := range a.text {
		out = append(out, Fragment{Pos: p, Text: sb.String()})
	}
	slices.SortFunc(out, func(x, y Fragment) int { return ComparePositions(x.Pos, y.Pos) })
	return out
}

// textState is the part of the graphics state the interpreter tracks.
type textState struct {
	matrix *AffineTransform // nil outside BT/ET
	font   *FontHandle
}

// PageText replays the text operators of one page and returns what was
// drawn where. Only BT, ET, Tm, Tf, Tj and TJ are interpreted.
func PageText(page Page, dec *CharDecoder) (*TextAccumulator, error) {
	ops, err := page.Operations()
	if err != nil {
		return nil, err
	}
	fonts := page.Resources().Key("Font")
	handles := make(map[string]*FontHandle)
	acc := newTextAccumulator()

	var st textState
	for _, op := range ops {
		switch op.Operator {
		case "BT":
			m := IdentityTransform()
			st.matrix = &m
		case "ET":
			st.matrix = nil
		case "Tm":
			if len(op.Args) != 6 {
				return nil, fmt.Errorf("%w: page %v: Tm with %d operands", ErrMalformed, page.Ref, len(op.Args))
			}
			m, err := TextMatrix(op.Args[0].Float64(), op.Args[1].Float64(), op.Args[2].Float64(),
				op.Args[3].Float64(), op.Args[4].Float64(), op.Args[5].Float64())
			if err != nil {
				return nil, fmt.Errorf("page %v: Tm: %w", page.Ref, err)
			}
			st.matrix = &m
		case "Tf":
			if len(op.Args) < 1 || op.Args[0].Kind() != Name {
				return nil, fmt.Errorf("%w: page %v: Tf without font name", ErrMalformed, page.Ref)
			}
			fname := op.Args[0].Name()
			h, ok := handles[fname]
			if !ok {
				fv := fonts.Key(fname)
				if fv.Kind() != Dict {
					return nil, fmt.Errorf("page %v: font %s: %w", page.Ref, fname, ErrUnknownFont)
				}
				h = &FontHandle{Name: fname, V: fv}
				handles[fname] = h
			}
			st.font = h
		case "Tj":
			if st.matrix == nil || len(op.Args) < 1 {
				continue
			}
			if err := st.show(acc, dec, op.Args[:1]); err != nil {
				return nil, fmt.Errorf("page %v: Tj: %w", page.Ref, err)
			}
		case "TJ":
			if st.matrix == nil || len(op.Args) < 1 || op.Args[0].Kind() != Array {
				continue
			}
			arr := op.Args[0]
			parts := make([]Value, 0, arr.Len())
			for i := 0; i < arr.Len(); i++ {
				if e := arr.Index(i); e.Kind() == String {
					parts = append(parts, e)
				}
			}
			if err := st.show(acc, dec, parts); err != nil {
				return nil, fmt.Errorf("page %v: TJ: %w", page.Ref, err)
			}
		}
	}
	logger.Debug(fmt.Sprintf("interp: page %v: %d fragments", page.Ref, acc.Len()))
	return acc, nil
}

// show decodes strings and records them at the current text origin. The Y
// axis is flipped so that reading order is ascending Y.
func (st *textState) show(acc *TextAccumulator, dec *CharDecoder, strs []Value) error {
	p, err := st.matrix.Apply(Position{X: zero, Y: zero})
	if err != nil {
		return err
	}
	y, err := NewScalar(-float64(p.Y.Float32()))
	if err != nil {
		return err
	}
	p.Y = y
	for _, s := range strs {
		text, ok, err := dec.Decode([]byte(s.RawString()), st.font)
		if err != nil {
			return err
		}
		if ok {
			acc.add(p, text)
		}
	}
	return nil
}
