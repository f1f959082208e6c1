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

// Package ecavail is an erasure-coding engine: a Reed-Solomon code
// over GF(2^16) with a Cantor-basis evaluation point map, used as the
// data-availability primitive of a distributed consensus protocol.
// Validators each hold one chunk of every blob; any k-of-n quorum of
// chunks restores the blob bit for bit.
//
// The engine is the external boundary: callers supply raw bytes (or
// raw words, for the piece-level operations) and get raw bytes/words
// back. Everything upstream of that boundary — wire I/O, CLI
// bindings, logging, test-vector loading — lives in cmd/ecctl and
// vectorio, never in this package.
package ecavail

import (
	"github.com/xtaci/ecavail/blob"
	"github.com/xtaci/ecavail/cantor"
	"github.com/xtaci/ecavail/field"
	"github.com/xtaci/ecavail/rs"
)

// N is the protocol-fixed codeword length shared by both deployment
// profiles.
const N = 1023

// Blob/Audit and Segment/Import are the two deployment profiles this
// package exposes convenience constructors for.
const (
	BlobK    = 342
	SegmentK = 6
)

// Shard is a received (index, chunk) pair for blob recovery.
type Shard = blob.Shard

// IndexValue is a received (index, value) pair for piece recovery.
type IndexValue = rs.IndexValue

// EncodedBlob is the output of Engine.EncodeBlob: the chunk set
// together with the piece count and original byte length needed to
// recover it.
type EncodedBlob struct {
	Chunks         [][]byte
	KPieces        int
	OriginalLength int
}

// Engine is a fixed-(k, n) erasure coding engine. Field tables and
// the Cantor basis are built once at construction and are immutable
// afterward, so a *Engine may be shared across any number of
// concurrent callers without synchronization.
type Engine struct {
	k, n       int
	tables     *field.Tables
	index      *cantor.Index
	blobCodec  *blob.Codec
	pieceCodec *rs.Codec
}

// NewEngine constructs an engine for (k, n), failing with
// UnsupportedParameters when n != 1023, k <= 0, or k >= n.
func NewEngine(k, n int) (*Engine, error) {
	tables := field.NewTables()
	index, err := cantor.NewIndex()
	if err != nil {
		return nil, err
	}
	pieceCodec, err := rs.NewCodec(k, n, tables, index)
	if err != nil {
		return nil, err
	}
	blobCodec, err := blob.NewCodec(k, n, tables, index)
	if err != nil {
		return nil, err
	}
	return &Engine{k: k, n: n, tables: tables, index: index, blobCodec: blobCodec, pieceCodec: pieceCodec}, nil
}

// NewBlobEngine builds the Blob/Audit profile engine: k=342, n=1023.
func NewBlobEngine() (*Engine, error) {
	return NewEngine(BlobK, N)
}

// NewSegmentEngine builds the Segment/Import profile engine: k=6, n=1023.
func NewSegmentEngine() (*Engine, error) {
	return NewEngine(SegmentK, N)
}

// K returns the engine's message length in words/pieces.
func (e *Engine) K() int { return e.k }

// N returns the engine's codeword length, always 1023.
func (e *Engine) N() int { return e.n }

// EncodeBlob pads, splits, encodes, and transposes data into N chunks.
func (e *Engine) EncodeBlob(data []byte) (EncodedBlob, error) {
	chunks, kPieces, originalLength, err := e.blobCodec.EncodeBlob(data)
	if err != nil {
		return EncodedBlob{}, err
	}
	return EncodedBlob{Chunks: chunks, KPieces: kPieces, OriginalLength: originalLength}, nil
}

// RecoverBlob inverts EncodeBlob given any >= k of its chunks.
func (e *Engine) RecoverBlob(shards []Shard, kPieces, originalLength int) ([]byte, error) {
	return e.blobCodec.RecoverBlob(shards, kPieces, originalLength)
}

// EncodePiece runs the systematic RS codec on one k-word piece,
// returning an n-word codeword.
func (e *Engine) EncodePiece(piece []uint16) ([]uint16, error) {
	return e.pieceCodec.Encode(piece)
}

// RecoverPiece recovers the k-word message from >= k distinct
// (index, value) pairs.
func (e *Engine) RecoverPiece(pairs []IndexValue) ([]uint16, error) {
	return e.pieceCodec.Decode(pairs)
}
