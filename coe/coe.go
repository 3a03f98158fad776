// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coe implements the symbolic coefficient algebra: sums of signed
// products of distinct, at-most-linear symbolic constants.
//
// A Coefficient is an ordered slice of Addends, strictly decreasing by the
// integer value of their Product bitset, with no two addends sharing the same
// Product. An empty Coefficient is the zero coefficient.
package coe

import (
	"math/bits"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// Product is a bitset-of-K symbolic constants appearing in one addend.
// Bit i set means constant i appears to the first power; bit i clear means
// constant i does not appear. Powers above one are never representable.
type Product uint64

// String returns a human-readable list of set bit indices, e.g. "{0,3}".
func (p Product) String() string {
	l := "{"
	first := true
	for i := 0; i < 64; i++ {
		if p&(1<<uint(i)) != 0 {
			if !first {
				l += ","
			}
			l += utl.Sf("%d", i)
			first = false
		}
	}
	return l + "}"
}

// HasBit tells whether constant i participates in this product.
func (p Product) HasBit(i int) bool { return p&(Product(1)<<uint(i)) != 0 }

// Degree returns the number of distinct constants in the product (popcount).
func (p Product) Degree() int { return bits.OnesCount64(uint64(p)) }

// Addend is one signed term: factor·product.
type Addend struct {
	Factor  int64   // signed coefficient; magnitude may grow during elimination
	Product Product // distinct-constants bitset
}

// Coefficient is a sum of Addends, ordered strictly decreasing by Product
// (interpreted as an unsigned integer). No two addends share a Product.
type Coefficient []Addend

// Zero returns the zero coefficient (an empty sequence).
func Zero() Coefficient { return nil }

// IsZero reports whether c has no addends.
func (c Coefficient) IsZero() bool { return len(c) == 0 }

// Clone returns an independent deep copy of c.
func (c Coefficient) Clone() Coefficient {
	if len(c) == 0 {
		return nil
	}
	out := make(Coefficient, len(c))
	copy(out, c)
	return out
}

// AddAddend inserts factor·product into c, merging with an existing addend of
// the same product (summing factors; the addend is dropped if the sum is
// zero) or inserting a new entry at the position that keeps c ordered by
// strictly decreasing product. A zero factor is a no-op. Returns the
// (possibly reallocated) coefficient.
func AddAddend(c Coefficient, factor int64, product Product) Coefficient {
	if factor == 0 {
		return c
	}
	// c is ordered decreasing by product: find the first index whose
	// product is <= the new one.
	i := 0
	for i < len(c) && c[i].Product > product {
		i++
	}
	if i < len(c) && c[i].Product == product {
		sum := c[i].Factor + factor
		if sum == 0 {
			return append(c[:i], c[i+1:]...)
		}
		c[i].Factor = sum
		return c
	}
	c = append(c, Addend{})
	copy(c[i+1:], c[i:len(c)-1])
	c[i] = Addend{Factor: factor, Product: product}
	return c
}

// Add returns a - (-b), i.e. a + b, as a new coefficient; a and b are left
// unmodified.
func Add(a, b Coefficient) Coefficient {
	out := a.Clone()
	for _, ad := range b {
		out = AddAddend(out, ad.Factor, ad.Product)
	}
	return out
}

// Subtract returns a - b as a new coefficient; used only by self-tests of
// determinant identity (§8 round-trip properties).
func Subtract(a, b Coefficient) Coefficient {
	out := a.Clone()
	for _, ad := range b {
		out = AddAddend(out, -ad.Factor, ad.Product)
	}
	return out
}

// MultiplyByInt multiplies every addend's factor by k, in place, returning
// the (possibly emptied) coefficient. k == 0 empties the sequence.
func MultiplyByInt(c Coefficient, k int64) Coefficient {
	if k == 0 {
		return nil
	}
	for i := range c {
		c[i].Factor *= k
	}
	return c
}

// CheckOrder validates the structural invariants: strictly decreasing
// product order, no duplicate products, and no zero-factor addend. It is a debug predicate, not
// exercised on any hot path; callers that cross a module boundary with newly
// constructed coefficients assert it via MustOrdered.
func (c Coefficient) CheckOrder() bool {
	for i := 1; i < len(c); i++ {
		if c[i-1].Product <= c[i].Product {
			return false
		}
	}
	for _, ad := range c {
		if ad.Factor == 0 {
			return false
		}
	}
	return true
}

// String renders c as a sum of signed terms, e.g. "-2*{1,2} +1*{0}", or "0"
// for the zero coefficient.
func (c Coefficient) String() string {
	if c.IsZero() {
		return "0"
	}
	l := ""
	for i, ad := range c {
		sign := "+"
		f := ad.Factor
		if f < 0 {
			sign = "-"
			f = -f
		}
		if i > 0 {
			l += " "
		}
		l += utl.Sf("%s%d*%s", sign, f, ad.Product)
	}
	return l
}

// MustOrdered panics if c violates CheckOrder. Callers that hand a freshly
// built Coefficient across a module boundary (an LES fill, a SOL elimination
// result) call this to turn a broken order/duplicate invariant into an
// immediate, precisely located panic rather than a silently wrong coefficient
// downstream (§7 Internal error kind).
func MustOrdered(c Coefficient, where string) {
	if !c.CheckOrder() {
		chk.Panic("coe: invariant violated in %s: %v", where, c)
	}
}
