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

// Package field implements GF(2^16) arithmetic: the finite field of
// order 65536 under the fixed irreducible polynomial x^16 + x^5 + x^3 +
// x^2 + 1 (0x1002D), with generator alpha = 0x0002.
//
// Addition is XOR. Multiplication, inversion and division are backed
// by a discrete-log/exp table pair built once per Tables value and
// never mutated afterward, so a *Tables can be shared across any
// number of concurrent callers without locking.
package field

import (
	"github.com/pkg/errors"

	"github.com/xtaci/ecavail/errtax"
)

const (
	// Bitwidth is the field's element width in bits.
	Bitwidth = 16
	// Order is the number of elements in the field, 2^16.
	Order = 1 << Bitwidth
	// Modulus is the order of the multiplicative group, Order-1.
	Modulus = Order - 1
	// Polynomial is the fixed irreducible reduction polynomial.
	Polynomial = 0x1002D
	// Generator is the canonical field generator alpha.
	Generator = 0x0002
)

// sentinel marks "no discrete log" in the log table; log[0] must
// never be consulted by mul/inv, per the field's construction.
const sentinel = Modulus

// Tables holds the discrete-log and exp tables for GF(2^16). Build
// once with NewTables and treat as read-only; zero value is invalid.
type Tables struct {
	log [Order]uint16
	exp [Order]uint16
}

// NewTables builds the log/exp tables by iterating powers of the
// generator under the reduction polynomial. This is the "shift and
// reduce" construction: multiplying by the generator 0x0002 is a
// left shift of the polynomial representation, with a conditional
// XOR by Polynomial whenever the shift overflows 16 bits.
func NewTables() *Tables {
	t := &Tables{}
	state := uint32(1)
	for i := uint16(0); i < Modulus; i++ {
		t.exp[i] = uint16(state)
		state <<= 1
		if state >= Order {
			state ^= Polynomial
		}
	}
	t.exp[Modulus] = t.exp[0]

	for i := 0; i < Modulus; i++ {
		t.log[t.exp[i]] = uint16(i)
	}
	// log[0] is never populated by the loop above (exp never equals
	// 0 for any i, since 0 has no discrete log); set the sentinel
	// explicitly so a stray read is at least deterministic.
	t.log[0] = sentinel
	return t
}

// Add returns a XOR b, the field's addition.
func (t *Tables) Add(a, b uint16) uint16 {
	return a ^ b
}

// Mul returns a * b in GF(2^16).
func (t *Tables) Mul(a, b uint16) uint16 {
	if a == 0 || b == 0 {
		return 0
	}
	sum := uint32(t.log[a]) + uint32(t.log[b])
	if sum >= Modulus {
		sum -= Modulus
	}
	return t.exp[sum]
}

// Log returns the discrete log of a, a != 0 required by the caller.
func (t *Tables) Log(a uint16) uint16 {
	return t.log[a]
}

// Exp returns the field element whose discrete log is i (mod Modulus).
func (t *Tables) Exp(i uint16) uint16 {
	return t.exp[i]
}

// Inv returns the multiplicative inverse of a. a must be non-zero;
// callers are required never to ask for the inverse of zero.
func (t *Tables) Inv(a uint16) uint16 {
	if a == 0 {
		panic("field: Inv(0) is undefined")
	}
	logA := uint32(t.log[a])
	return t.exp[(Modulus-logA)%Modulus]
}

// Div returns a / b, failing with a DivByZero error when b is zero.
func (t *Tables) Div(a, b uint16) (uint16, error) {
	if b == 0 {
		return 0, errors.WithStack(errtax.New(errtax.DivByZero, "division by zero field element"))
	}
	if a == 0 {
		return 0, nil
	}
	logDiff := int32(t.log[a]) - int32(t.log[b])
	if logDiff < 0 {
		logDiff += Modulus
	}
	return t.exp[logDiff], nil
}

// Pow returns a^e. By convention Pow(0, 0) = 1. Negative exponents
// invert a first, so Pow(a, e) for e<0 requires a != 0.
func (t *Tables) Pow(a uint16, e int) uint16 {
	if e == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	if e < 0 {
		a = t.Inv(a)
		e = -e
	}
	result := uint16(1)
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = t.Mul(result, base)
		}
		base = t.Mul(base, base)
		e >>= 1
	}
	return result
}
