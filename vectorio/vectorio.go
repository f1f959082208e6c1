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

// Package vectorio loads and checks the conformance test-vector
// format: JSON documents named ec-*.json of the shape
// {"data": hex_string, "shards": [hex_string; n]}. This format is
// consumed by conformance tests and the CLI's verify-vector
// subcommand; it is not part of the core codec.
package vectorio

import (
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/xtaci/ecavail/blob"
	"github.com/xtaci/ecavail/errtax"
)

// Vector is one conformance test vector: the original blob and its
// expected chunk set.
type Vector struct {
	Data   []byte
	Shards [][]byte
}

// rawVector mirrors the on-disk hex-encoded JSON shape.
type rawVector struct {
	Data   string   `json:"data"`
	Shards []string `json:"shards"`
}

// Load reads and hex-decodes a vector file.
func Load(path string) (Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return Vector{}, errors.Wrapf(err, "open vector %s", path)
	}
	defer f.Close()

	var raw rawVector
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return Vector{}, errors.Wrapf(err, "decode vector %s", path)
	}

	data, err := hex.DecodeString(raw.Data)
	if err != nil {
		return Vector{}, errors.Wrapf(err, "decode data field of %s", path)
	}
	shards := make([][]byte, len(raw.Shards))
	for i, s := range raw.Shards {
		b, err := hex.DecodeString(s)
		if err != nil {
			return Vector{}, errors.Wrapf(err, "decode shard %d of %s", i, path)
		}
		shards[i] = b
	}
	return Vector{Data: data, Shards: shards}, nil
}

// Save hex-encodes and writes a vector file, the inverse of Load.
func Save(path string, v Vector) error {
	raw := rawVector{
		Data:   hex.EncodeToString(v.Data),
		Shards: make([]string, len(v.Shards)),
	}
	for i, s := range v.Shards {
		raw.Shards[i] = hex.EncodeToString(s)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create vector %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}

// Verify re-encodes v.Data with codec and checks the result matches
// v.Shards exactly, shard for shard.
func (v Vector) Verify(codec *blob.Codec) error {
	chunks, _, _, err := codec.EncodeBlob(v.Data)
	if err != nil {
		return err
	}
	if len(chunks) != len(v.Shards) {
		return errors.WithStack(errtax.New(errtax.InvalidShardLayout, "vector has %d shards, engine produced %d", len(v.Shards), len(chunks)))
	}
	for i := range chunks {
		if !bytesEqual(chunks[i], v.Shards[i]) {
			return errors.WithStack(errtax.New(errtax.InvalidShardLayout, "shard %d mismatch: got %x, want %x", i, chunks[i], v.Shards[i]))
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
