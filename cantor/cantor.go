// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package cantor implements the Cantor basis for GF(2^16) and the
// evaluation-point map from systematic index to field element that it
// exists to make convenient.
//
// The sixteen basis elements are the same constants used by
// leopard-family GF(2^16) Reed-Solomon codecs: same field, same
// generator, same reduction polynomial, so the same basis is
// canonical here. Those codecs build the basis implicitly as part of
// an FFT-oriented log table; this package exposes it directly as a
// standalone change-of-basis, independent of any FFT.
package cantor

import (
	"github.com/pkg/errors"

	"github.com/xtaci/ecavail/errtax"
	"github.com/xtaci/ecavail/field"
)

// Basis is the canonical, published 16-entry Cantor basis for this
// field: v_0 .. v_15, each a GF(2^16) element.
var Basis = [field.Bitwidth]uint16{
	0x0001, 0xACCA, 0x3C0E, 0x163E,
	0xC582, 0xED2E, 0x914C, 0x4012,
	0x6C98, 0x10D8, 0x6A72, 0xB900,
	0xFDB8, 0xFB34, 0xFF38, 0x991E,
}

// Index caches the change-of-basis matrix needed for PolyToCantor, and
// the precomputed evaluation points for indices 0..1022. Build once
// with NewIndex and treat as immutable; it is safe for concurrent use.
type Index struct {
	// inverse[i] is row i of the inverse of the basis matrix, used to
	// recover the coefficient mask from a field element.
	inverse [field.Bitwidth]uint16
	// points[i] = map_index_to_field(i) for i in 0..1022, precomputed
	// since the map is consulted on every encode/decode call.
	points [1023]uint16
}

// NewIndex builds the Cantor index, inverting the basis matrix and
// checking it is full GF(2)-rank. Fails with BasisNotFullRank if the
// basis constant table is singular — a build-time bug, never a
// function of caller input.
func NewIndex() (*Index, error) {
	inverse, err := invertBasisMatrix(Basis)
	if err != nil {
		return nil, err
	}
	idx := &Index{inverse: inverse}
	for i := 0; i < len(idx.points); i++ {
		idx.points[i] = cantorToPoly(uint16(i) & 0x3FF)
	}
	return idx, nil
}

// CantorToPoly returns the XOR of basis vectors selected by mask m.
func (x *Index) CantorToPoly(m uint16) uint16 {
	return cantorToPoly(m)
}

func cantorToPoly(m uint16) uint16 {
	var acc uint16
	for j := 0; j < field.Bitwidth; j++ {
		if m&(1<<uint(j)) != 0 {
			acc ^= Basis[j]
		}
	}
	return acc
}

// PolyToCantor returns the 16-bit coefficient mask m such that
// CantorToPoly(m) == a.
func (x *Index) PolyToCantor(a uint16) uint16 {
	var m uint16
	for i := 0; i < field.Bitwidth; i++ {
		if parity(x.inverse[i]&a) == 1 {
			m |= 1 << uint(i)
		}
	}
	return m
}

// MapIndexToField returns x~_i for i in 0..1022, the evaluation point
// associated with systematic index i. The map is the restriction of
// CantorToPoly to the low 10 bits of i, and is injective on its
// domain because the Cantor basis is full rank.
func (x *Index) MapIndexToField(i int) (uint16, error) {
	if i < 0 || i > 1022 {
		return 0, errors.WithStack(errtax.New(errtax.IndexOutOfRange, "index %d out of range [0,1022]", i))
	}
	return x.points[i], nil
}

// parity returns the XOR (mod-2 sum) of the bits set in v.
func parity(v uint16) uint16 {
	v ^= v >> 8
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v & 1
}

// invertBasisMatrix computes the inverse of the 16x16 GF(2) matrix
// whose columns are the basis vectors, via Gauss-Jordan elimination
// with a parallel identity matrix. rows[i] holds the bits of row i of
// the basis matrix (bit j of rows[i] = bit i of basis[j], i.e. the
// matrix is built by transposing the basis columns into rows indexed
// by output bit).
func invertBasisMatrix(basis [field.Bitwidth]uint16) ([field.Bitwidth]uint16, error) {
	var rows [field.Bitwidth]uint16
	for i := 0; i < field.Bitwidth; i++ {
		var row uint16
		for j := 0; j < field.Bitwidth; j++ {
			if basis[j]&(1<<uint(i)) != 0 {
				row |= 1 << uint(j)
			}
		}
		rows[i] = row
	}

	var aug [field.Bitwidth]uint16
	for i := range aug {
		aug[i] = 1 << uint(i)
	}

	for col := 0; col < field.Bitwidth; col++ {
		pivot := -1
		for r := col; r < field.Bitwidth; r++ {
			if rows[r]&(1<<uint(col)) != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return [field.Bitwidth]uint16{}, errors.WithStack(errtax.New(errtax.BasisNotFullRank, "cantor basis matrix is singular at column %d", col))
		}
		rows[col], rows[pivot] = rows[pivot], rows[col]
		aug[col], aug[pivot] = aug[pivot], aug[col]

		for r := 0; r < field.Bitwidth; r++ {
			if r != col && rows[r]&(1<<uint(col)) != 0 {
				rows[r] ^= rows[col]
				aug[r] ^= aug[col]
			}
		}
	}
	return aug, nil
}
