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

// Package layout provides the blob-to-piece plumbing used by package
// blob: little-endian word splitting/joining, zero padding to a whole
// number of pieces, and rectangular-matrix transpose.
package layout

import (
	"github.com/pkg/errors"

	"github.com/xtaci/ecavail/errtax"
)

// PieceBytes is the fixed size of one piece under the blob/audit
// profile (k=342 words, 2 bytes/word).
const PieceBytes = 342 * 2

// SplitWords decodes a byte slice into little-endian 16-bit words.
// len(bytes) must be even.
func SplitWords(data []byte) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, errors.WithStack(errtax.New(errtax.WordOutOfRange, "odd byte length %d cannot split into words", len(data)))
	}
	words := make([]uint16, len(data)/2)
	for i := range words {
		words[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	return words, nil
}

// JoinWords serializes words back to little-endian bytes. See
// JoinWordValues for callers that hold word values in a wider integer
// type and need range checking.
func JoinWords(words []uint16) []byte {
	out := make([]byte, 2*len(words))
	for i, w := range words {
		out[2*i] = byte(w)
		out[2*i+1] = byte(w >> 8)
	}
	return out
}

// JoinWordValues is like JoinWords but accepts wider integers (as
// produced by loosely-typed callers, e.g. a JSON test vector loader)
// and fails with WordOutOfRange if any value exceeds 0xFFFF.
func JoinWordValues(words []int) ([]byte, error) {
	out := make([]byte, 2*len(words))
	for i, w := range words {
		if w < 0 || w > 0xFFFF {
			return nil, errors.WithStack(errtax.New(errtax.WordOutOfRange, "word %d (value %d) exceeds 16 bits", i, w))
		}
		out[2*i] = byte(w)
		out[2*i+1] = byte(w >> 8)
	}
	return out, nil
}

// PadToPieceMultiple zero-pads data to a multiple of pieceBytes and
// reports how many pieces that is. kPieces is 0 iff data is empty.
func PadToPieceMultiple(data []byte, pieceBytes int) (padded []byte, paddingAdded int, kPieces int) {
	if len(data) == 0 {
		return nil, 0, 0
	}
	kPieces = (len(data) + pieceBytes - 1) / pieceBytes
	paddedLen := kPieces * pieceBytes
	paddingAdded = paddedLen - len(data)
	padded = make([]byte, paddedLen)
	copy(padded, data)
	return padded, paddingAdded, kPieces
}

// Transpose returns the transpose of a rectangular matrix, failing
// with RaggedMatrix if any row has a different length than the first.
func Transpose(matrix [][]uint16) ([][]uint16, error) {
	if len(matrix) == 0 {
		return nil, nil
	}
	cols := len(matrix[0])
	for i, row := range matrix {
		if len(row) != cols {
			return nil, errors.WithStack(errtax.New(errtax.RaggedMatrix, "row %d has length %d, want %d", i, len(row), cols))
		}
	}
	out := make([][]uint16, cols)
	for c := 0; c < cols; c++ {
		out[c] = make([]uint16, len(matrix))
		for r, row := range matrix {
			out[c][r] = row[c]
		}
	}
	return out, nil
}
