// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"cmp"
	"fmt"
	"math"
)

// A Scalar is a finite 32-bit coordinate. Scalars are comparable and can be
// used as map keys: NaN and infinities cannot be constructed and negative
// zero is stored as positive zero, so == agrees with numeric equality.
type Scalar struct {
	v float32
}

// NewScalar returns x as a Scalar, or ErrInvalidNumber if x is not finite
// once narrowed to 32 bits.
func NewScalar(x float64) (Scalar, error) {
	f := float32(x)
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return Scalar{}, fmt.Errorf("%v: %w", x, ErrInvalidNumber)
	}
	if f == 0 {
		f = 0
	}
	return Scalar{f}, nil
}

func mustScalar(x float64) Scalar {
	s, err := NewScalar(x)
	if err != nil {
		panic(err)
	}
	return s
}

// Float32 returns the wrapped value.
func (s Scalar) Float32() float32 { return s.v }

// Compare returns -1, 0 or +1 as s is less than, equal to or greater than t.
func (s Scalar) Compare(t Scalar) int { return cmp.Compare(s.v, t.v) }

func (s Scalar) String() string { return fmt.Sprint(s.v) }

// Position is a text anchor on a page.
type Position struct {
	X, Y Scalar
}

// ComparePositions orders positions by Y, then by X. Iterating fragments in
// this order yields lines top to bottom (after the Y flip done by the
// interpreter) and fragments left to right within each line.
func ComparePositions(a, b Position) int {
	if c := a.Y.Compare(b.Y); c != 0 {
		return c
	}
	return a.X.Compare(b.X)
}

// AffineTransform is a row-major 3×3 matrix:
//
//	⎡A0 B0 C0⎤
//	⎢A1 B1 C1⎥
//	⎣A2 B2 C2⎦
//
// Only the first two rows take part in Apply; the third is kept so the
// matrix can be written out in full.
type AffineTransform struct {
	A0, B0, C0 Scalar
	A1, B1, C1 Scalar
	A2, B2, C2 Scalar
}

var (
	zero = Scalar{0}
	one  = Scalar{1}
)

// IdentityTransform returns the identity matrix.
func IdentityTransform() AffineTransform {
	return AffineTransform{
		A0: one, B0: zero, C0: zero,
		A1: zero, B1: one, C1: zero,
		A2: zero, B2: zero, C2: one,
	}
}

// TextMatrix builds the transform set by the Tm operator "a b c d e f Tm".
func TextMatrix(a, b, c, d, e, f float64) (AffineTransform, error) {
	var m AffineTransform
	for _, x := range []struct {
		dst *Scalar
		v   float64
	}{
		{&m.A0, a}, {&m.A1, b},
		{&m.B0, c}, {&m.B1, d},
		{&m.C0, e}, {&m.C1, f},
	} {
		s, err := NewScalar(x.v)
		if err != nil {
			return AffineTransform{}, err
		}
		*x.dst = s
	}
	m.A2, m.B2, m.C2 = zero, zero, one
	return m, nil
}

// Apply maps p through the transform:
//
//	x' = A0·x + B0·y + C0
//	y' = A1·x + B1·y + C1
func (m AffineTransform) Apply(p Position) (Position, error) {
	x, y := p.X.v, p.Y.v
	nx, err := NewScalar(float64(m.A0.v*x + m.B0.v*y + m.C0.v))
	if err != nil {
		return Position{}, err
	}
	ny, err := NewScalar(float64(m.A1.v*x + m.B1.v*y + m.C1.v))
	if err != nil {
		return Position{}, err
	}
	return Position{X: nx, Y: ny}, nil
}
