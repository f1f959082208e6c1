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

// Package blob implements the blob codec: pad, split into pieces,
// RS-encode each piece, transpose the piece-major matrix into
// chunk-major columns, and the inverse for recovery.
//
// Pieces are independent in both directions: this package fans
// encode/decode work out one goroutine per piece, capped at
// runtime.GOMAXPROCS(0) concurrent pieces via a simple channel
// semaphore, with a single serialization point (the transpose on
// encode, the final concatenation on decode).
package blob

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/xtaci/ecavail/cantor"
	"github.com/xtaci/ecavail/errtax"
	"github.com/xtaci/ecavail/field"
	"github.com/xtaci/ecavail/layout"
	"github.com/xtaci/ecavail/rs"
)

// Shard is a received (index, chunk) pair, as consumed by RecoverBlob.
type Shard struct {
	Index int
	Data  []byte
}

// Codec implements blob-level encode/recover for a fixed (k, n)
// piece codec. Build with NewCodec; immutable and safe for
// concurrent use after construction.
type Codec struct {
	k, n       int
	pieceBytes int
	rsCodec    *rs.Codec
}

// NewCodec builds a blob codec around a piece codec for (k, n).
func NewCodec(k, n int, tables *field.Tables, idx *cantor.Index) (*Codec, error) {
	rsCodec, err := rs.NewCodec(k, n, tables, idx)
	if err != nil {
		return nil, err
	}
	return &Codec{k: k, n: n, pieceBytes: 2 * k, rsCodec: rsCodec}, nil
}

// PieceBytes returns the byte size of one piece (2*k).
func (c *Codec) PieceBytes() int { return c.pieceBytes }

// EncodeBlob pads, splits, encodes each piece, transposes, and
// serializes. Returns exactly n chunks of equal length 2*kPieces
// (or n empty chunks when the input is empty, with kPieces=0,
// originalLength=0).
func (c *Codec) EncodeBlob(data []byte) (chunks [][]byte, kPieces int, originalLength int, err error) {
	originalLength = len(data)
	padded, _, kPieces := layout.PadToPieceMultiple(data, c.pieceBytes)
	if kPieces == 0 {
		chunks = make([][]byte, c.n)
		for i := range chunks {
			chunks[i] = []byte{}
		}
		return chunks, 0, 0, nil
	}

	pieces := make([][]uint16, kPieces)
	for p := 0; p < kPieces; p++ {
		words, err := layout.SplitWords(padded[p*c.pieceBytes : (p+1)*c.pieceBytes])
		if err != nil {
			return nil, 0, 0, err
		}
		pieces[p] = words
	}

	codewords := make([][]uint16, kPieces)
	if err := parallelOverPieces(kPieces, func(p int) error {
		cw, err := c.rsCodec.Encode(pieces[p])
		if err != nil {
			return err
		}
		codewords[p] = cw
		return nil
	}); err != nil {
		return nil, 0, 0, err
	}

	transposed, err := layout.Transpose(codewords)
	if err != nil {
		return nil, 0, 0, err
	}

	chunks = make([][]byte, c.n)
	for i := 0; i < c.n; i++ {
		chunks[i] = layout.JoinWords(transposed[i])
	}
	return chunks, kPieces, originalLength, nil
}

// RecoverBlob inverts EncodeBlob given any >=k of the n chunks, the
// kPieces and originalLength carried alongside them out-of-band.
func (c *Codec) RecoverBlob(shards []Shard, kPieces, originalLength int) ([]byte, error) {
	if kPieces == 0 {
		if originalLength != 0 {
			return nil, errors.WithStack(errtax.New(errtax.InvalidShardLayout, "kPieces=0 but originalLength=%d", originalLength))
		}
		return []byte{}, nil
	}

	if err := validateShardLayout(shards, c.k, c.n, kPieces); err != nil {
		return nil, err
	}

	recoveredPieces := make([][]uint16, kPieces)
	if err := parallelOverPieces(kPieces, func(p int) error {
		pairs := make([]rs.IndexValue, len(shards))
		for i, sh := range shards {
			word := uint16(sh.Data[2*p]) | uint16(sh.Data[2*p+1])<<8
			pairs[i] = rs.IndexValue{Index: sh.Index, Value: word}
		}
		piece, err := c.rsCodec.Decode(pairs)
		if err != nil {
			return err
		}
		recoveredPieces[p] = piece
		return nil
	}); err != nil {
		return nil, err
	}

	out := make([]byte, 0, kPieces*c.pieceBytes)
	for p := 0; p < kPieces; p++ {
		out = append(out, layout.JoinWords(recoveredPieces[p])...)
	}
	if originalLength > len(out) {
		return nil, errors.WithStack(errtax.New(errtax.InvalidShardLayout, "originalLength %d exceeds padded length %d", originalLength, len(out)))
	}
	return out[:originalLength], nil
}

// validateShardLayout checks equal chunk lengths, even byte counts,
// in-range unique indices, at least k of them, and a chunk length
// consistent with kPieces.
func validateShardLayout(shards []Shard, k, n, kPieces int) error {
	if len(shards) == 0 {
		return errors.WithStack(errtax.New(errtax.InsufficientShards, "no shards supplied, need %d", k))
	}

	chunkLen := len(shards[0].Data)
	if chunkLen%2 != 0 {
		return errors.WithStack(errtax.New(errtax.InvalidShardLayout, "chunk length %d is odd", chunkLen))
	}
	if chunkLen/2 != kPieces {
		return errors.WithStack(errtax.New(errtax.InvalidShardLayout, "chunk length %d inconsistent with kPieces=%d (want %d)", chunkLen, kPieces, 2*kPieces))
	}

	seen := make(map[int]struct{}, len(shards))
	for _, sh := range shards {
		if sh.Index < 0 || sh.Index > n-1 {
			return errors.WithStack(errtax.New(errtax.IndexOutOfRange, "index %d out of range [0,%d]", sh.Index, n-1))
		}
		if len(sh.Data) != chunkLen {
			return errors.WithStack(errtax.New(errtax.InvalidShardLayout, "shard %d has length %d, want %d", sh.Index, len(sh.Data), chunkLen))
		}
		if _, dup := seen[sh.Index]; dup {
			return errors.WithStack(errtax.New(errtax.InvalidShardLayout, "duplicate shard index %d", sh.Index))
		}
		seen[sh.Index] = struct{}{}
	}
	if len(seen) < k {
		return errors.WithStack(errtax.New(errtax.InsufficientShards, "have %d unique shards, need %d", len(seen), k))
	}
	return nil
}

// parallelOverPieces runs fn(p) for p in [0, count) across a bounded
// number of goroutines, returning the first error encountered (in
// piece order, not completion order, for deterministic error
// reporting).
func parallelOverPieces(count int, fn func(p int) error) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > count {
		workers = count
	}
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	errs := make([]error, count)
	var wg sync.WaitGroup
	wg.Add(count)
	for p := 0; p < count; p++ {
		sem <- struct{}{}
		go func(p int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[p] = fn(p)
		}(p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
