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

// Package errtax defines the single tagged error kind shared by every
// core component (field, cantor, layout, rs, blob). Every failure is
// synchronous and local: the offending operation returns one of these
// kinds, wrapped with github.com/pkg/errors so a caller that wants a
// stack trace gets one via "%+v", and produces no partial output.
//
// The core never logs; logging, retrying and failing over are a
// collaborator's concern (the CLI in cmd/ecctl, for instance).
package errtax

import "fmt"

// Kind tags the variant of a core failure.
type Kind int

const (
	// UnsupportedParameters: (k, n) outside the allowed set at
	// engine construction, or a piece codec call with bad k/n.
	UnsupportedParameters Kind = iota
	// InsufficientShards: fewer than k unique valid shard indices
	// were supplied for recovery.
	InsufficientShards
	// IndexOutOfRange: an index was < 0 or > n-1.
	IndexOutOfRange
	// InvalidShardLayout: chunks have inconsistent lengths, odd
	// byte count, or a length inconsistent with declared k_pieces.
	InvalidShardLayout
	// WordOutOfRange: an alleged 16-bit word exceeds 0xFFFF.
	WordOutOfRange
	// RaggedMatrix: a transpose was attempted over a non-rectangular
	// matrix; this indicates a bug in the caller, not bad input.
	RaggedMatrix
	// DivByZero: zero denominator in field arithmetic; should be
	// unreachable given the validation the rest of the core performs.
	DivByZero
	// BasisNotFullRank: the Cantor basis failed its static full-rank
	// check; this is a build-time bug in the basis constant table.
	BasisNotFullRank
)

func (k Kind) String() string {
	switch k {
	case UnsupportedParameters:
		return "UnsupportedParameters"
	case InsufficientShards:
		return "InsufficientShards"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case InvalidShardLayout:
		return "InvalidShardLayout"
	case WordOutOfRange:
		return "WordOutOfRange"
	case RaggedMatrix:
		return "RaggedMatrix"
	case DivByZero:
		return "DivByZero"
	case BasisNotFullRank:
		return "BasisNotFullRank"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the core's single error type. Every core failure is an
// *Error of one of the Kind variants above.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds an *Error for the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a core *Error of the given kind, unwrapping
// github.com/pkg/errors wrapping along the way.
func Is(err error, kind Kind) bool {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}
