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

// Package rs implements the systematic Reed-Solomon piece codec:
// barycentric Lagrange interpolation over the Cantor-basis evaluation
// points, encoding one k-word piece into an n-word codeword and
// recovering a piece from any k distinct (index, value) pairs.
//
// The barycentric form is preferred over building the Lagrange
// polynomial's coefficients and evaluating a decoding matrix: it costs
// O(n*k) field operations to generate a codeword instead of O(k^3) to
// build a decoding matrix.
package rs

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/xtaci/ecavail/cantor"
	"github.com/xtaci/ecavail/errtax"
	"github.com/xtaci/ecavail/field"
)

// IndexValue is one (index, value) pair as received during recovery.
type IndexValue struct {
	Index int
	Value uint16
}

// Codec implements the systematic RS(n, k) piece codec for a fixed
// (k, n). Build with NewCodec; a *Codec is read-only after
// construction and safe for concurrent use.
type Codec struct {
	k, n    int
	tables  *field.Tables
	idx     *cantor.Index
	points  []uint16 // map_index_to_field(i) for i in 0..n-1
	sysNode []uint16 // points[0:k], the systematic nodes
	weights []uint16 // barycentric weights on the systematic nodes
}

// NewCodec builds a piece codec for the given (k, n), guarding the
// protocol-fixed parameter constraints: k>0, n>k, and n must be 1023.
func NewCodec(k, n int, tables *field.Tables, idx *cantor.Index) (*Codec, error) {
	if k <= 0 || n <= k || n != 1023 {
		return nil, errors.WithStack(errtax.New(errtax.UnsupportedParameters, "unsupported (k=%d, n=%d): require k>0, n>k, n=1023", k, n))
	}

	points := make([]uint16, n)
	for i := 0; i < n; i++ {
		p, err := idx.MapIndexToField(i)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	sysNode := points[:k:k]
	weights := computeBarycentricWeights(tables, sysNode)

	return &Codec{
		k: k, n: n,
		tables: tables, idx: idx,
		points: points, sysNode: sysNode, weights: weights,
	}, nil
}

// K returns the message length in words.
func (c *Codec) K() int { return c.k }

// N returns the codeword length in words.
func (c *Codec) N() int { return c.n }

// Encode runs systematic RS encoding on one piece of exactly K()
// words, returning a codeword of N() words whose first K() words
// equal piece unchanged (the systematic property).
func (c *Codec) Encode(piece []uint16) ([]uint16, error) {
	if len(piece) != c.k {
		return nil, errors.WithStack(errtax.New(errtax.InvalidShardLayout, "piece has %d words, want %d", len(piece), c.k))
	}

	out := make([]uint16, c.n)
	copy(out, piece)
	for i := c.k; i < c.n; i++ {
		out[i] = barycentricEval(c.tables, c.sysNode, c.weights, piece, c.points[i])
	}
	return out, nil
}

// Decode recovers the K()-word message from a set of distinct
// (index, value) pairs. Duplicate indices: first occurrence wins.
// Fails with IndexOutOfRange for any index outside [0, N()-1], and
// InsufficientShards if fewer than K() unique indices remain after
// deduplication.
func (c *Codec) Decode(pairs []IndexValue) ([]uint16, error) {
	seen := make(map[int]uint16, len(pairs))
	for _, p := range pairs {
		if p.Index < 0 || p.Index > c.n-1 {
			return nil, errors.WithStack(errtax.New(errtax.IndexOutOfRange, "index %d out of range [0,%d]", p.Index, c.n-1))
		}
		if _, ok := seen[p.Index]; ok {
			continue // first occurrence wins
		}
		seen[p.Index] = p.Value
	}
	if len(seen) < c.k {
		return nil, errors.WithStack(errtax.New(errtax.InsufficientShards, "have %d unique shards, need %d", len(seen), c.k))
	}

	if isSystematicWindow(seen, c.k) {
		out := make([]uint16, c.k)
		for idx, v := range seen {
			out[idx] = v
		}
		return out, nil
	}

	idxs := make([]int, 0, len(seen))
	for idx := range seen {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	idxs = idxs[:c.k] // the k smallest distinct indices, for determinism

	nodes := make([]uint16, c.k)
	values := make([]uint16, c.k)
	for j, idx := range idxs {
		nodes[j] = c.points[idx]
		values[j] = seen[idx]
	}
	weights := computeBarycentricWeights(c.tables, nodes)

	out := make([]uint16, c.k)
	for m := 0; m < c.k; m++ {
		out[m] = barycentricEval(c.tables, nodes, weights, values, c.points[m])
	}
	return out, nil
}

// isSystematicWindow reports whether seen is exactly the set
// {0, ..., k-1}, the fast-path condition for Decode.
func isSystematicWindow(seen map[int]uint16, k int) bool {
	if len(seen) != k {
		return false
	}
	for idx := range seen {
		if idx < 0 || idx >= k {
			return false
		}
	}
	return true
}

// computeBarycentricWeights returns w_j = 1 / prod_{m != j} (nodes[j] - nodes[m])
// for each node. Subtraction in GF(2^m) is XOR.
func computeBarycentricWeights(tb *field.Tables, nodes []uint16) []uint16 {
	weights := make([]uint16, len(nodes))
	for j, xj := range nodes {
		prod := uint16(1)
		for m, xm := range nodes {
			if m == j {
				continue
			}
			prod = tb.Mul(prod, xj^xm)
		}
		weights[j] = tb.Inv(prod)
	}
	return weights
}

// barycentricEval evaluates the Lagrange interpolant through
// (nodes[j], values[j]) at point z, using the precomputed weights.
// If z equals one of the nodes, the matching value is returned
// directly, guarding the weight formula's built-in divide-by-zero.
func barycentricEval(tb *field.Tables, nodes, weights, values []uint16, z uint16) uint16 {
	for j, x := range nodes {
		if x == z {
			return values[j]
		}
	}

	var numerator, denominator uint16
	for j, x := range nodes {
		inv := tb.Inv(x ^ z)
		term := tb.Mul(weights[j], inv)
		numerator ^= tb.Mul(term, values[j])
		denominator ^= term
	}
	return tb.Mul(numerator, tb.Inv(denominator))
}
