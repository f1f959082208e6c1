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

// Package archive implements a one-shot snappy-compressed container
// for an encoded blob's chunk set: a header followed by
// length-prefixed compressed chunks, bundling the output of
// EncodeBlob into a single file for the CLI's --pack flag.
//
// This is a convenience format for cmd/ecctl only; it is not part of
// the core codec.
package archive

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// header fields, all little-endian, matching the wire byte order
// used throughout the rest of the engine.
type header struct {
	KPieces        uint32
	OriginalLength uint64
	ChunkCount     uint32
}

const headerBytes = 4 + 8 + 4

// Write serializes kPieces, originalLength and chunks into dst as a
// snappy-compressed archive.
func Write(dst io.Writer, chunks [][]byte, kPieces, originalLength int) error {
	h := header{
		KPieces:        uint32(kPieces),
		OriginalLength: uint64(originalLength),
		ChunkCount:     uint32(len(chunks)),
	}
	hdrBuf := make([]byte, headerBytes)
	binary.LittleEndian.PutUint32(hdrBuf[0:4], h.KPieces)
	binary.LittleEndian.PutUint64(hdrBuf[4:12], h.OriginalLength)
	binary.LittleEndian.PutUint32(hdrBuf[12:16], h.ChunkCount)
	if _, err := dst.Write(hdrBuf); err != nil {
		return errors.Wrap(err, "write archive header")
	}

	w := snappy.NewBufferedWriter(dst)
	for i, chunk := range chunks {
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(chunk)))
		if _, err := w.Write(lenBuf); err != nil {
			return errors.Wrapf(err, "write chunk %d length", i)
		}
		if _, err := w.Write(chunk); err != nil {
			return errors.Wrapf(err, "write chunk %d", i)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flush archive")
	}
	return nil
}

// Read is the inverse of Write, returning the chunks plus kPieces and
// originalLength read from the header.
func Read(src io.Reader) (chunks [][]byte, kPieces, originalLength int, err error) {
	hdrBuf := make([]byte, headerBytes)
	if _, err := io.ReadFull(src, hdrBuf); err != nil {
		return nil, 0, 0, errors.Wrap(err, "read archive header")
	}
	h := header{
		KPieces:        binary.LittleEndian.Uint32(hdrBuf[0:4]),
		OriginalLength: binary.LittleEndian.Uint64(hdrBuf[4:12]),
		ChunkCount:     binary.LittleEndian.Uint32(hdrBuf[12:16]),
	}

	r := snappy.NewReader(src)
	chunks = make([][]byte, h.ChunkCount)
	lenBuf := make([]byte, 4)
	for i := range chunks {
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "read chunk %d length", i)
		}
		n := binary.LittleEndian.Uint32(lenBuf)
		chunk := make([]byte, n)
		if n > 0 {
			if _, err := io.ReadFull(r, chunk); err != nil {
				return nil, 0, 0, errors.Wrapf(err, "read chunk %d", i)
			}
		}
		chunks[i] = chunk
	}
	return chunks, int(h.KPieces), int(h.OriginalLength), nil
}
