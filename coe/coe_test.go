// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coe

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestAddAddendOrdersAndMerges(tst *testing.T) {
	chk.PrintTitle("AddAddendOrdersAndMerges")

	c := Zero()
	c = AddAddend(c, 1, 0) // {}
	c = AddAddend(c, 1, 4) // {2}
	c = AddAddend(c, 1, 1) // {0}
	if !c.CheckOrder() {
		tst.Fatalf("order invariant broken: %v", c)
	}
	if len(c) != 3 {
		tst.Fatalf("expected 3 addends, got %d: %v", len(c), c)
	}
	// descending by product: 4, 1, 0
	want := []Product{4, 1, 0}
	for i, w := range want {
		if c[i].Product != w {
			tst.Errorf("index %d: product=%v want=%v", i, c[i].Product, w)
		}
	}

	// merging: adding -1 at product 4 should cancel that addend
	c = AddAddend(c, -1, 4)
	if !c.CheckOrder() {
		tst.Fatalf("order invariant broken after cancel: %v", c)
	}
	if len(c) != 2 {
		tst.Fatalf("expected cancellation to remove an addend, got %v", c)
	}
}

func TestAddAddendZeroFactorNoop(tst *testing.T) {
	c := Zero()
	c = AddAddend(c, 0, 3)
	if !c.IsZero() {
		tst.Fatalf("zero-factor insert should be a no-op, got %v", c)
	}
}

func TestSubtractAndAdd(tst *testing.T) {
	a := AddAddend(Zero(), 3, 1)
	b := AddAddend(Zero(), 2, 1)
	d := Subtract(a, b)
	if len(d) != 1 || d[0].Factor != 1 || d[0].Product != 1 {
		tst.Fatalf("a-b wrong: %v", d)
	}
	s := Add(a, b)
	if len(s) != 1 || s[0].Factor != 5 {
		tst.Fatalf("a+b wrong: %v", s)
	}
}

func TestMultiplyByInt(tst *testing.T) {
	c := AddAddend(Zero(), 2, 1)
	c = AddAddend(c, 3, 2)
	c = MultiplyByInt(c, 4)
	for _, ad := range c {
		if ad.Factor != 8 && ad.Factor != 12 {
			tst.Errorf("unexpected factor %d", ad.Factor)
		}
	}
	c = MultiplyByInt(c, 0)
	if !c.IsZero() {
		tst.Fatalf("multiply by 0 should empty coefficient, got %v", c)
	}
}

func TestCheckOrderDetectsViolations(tst *testing.T) {
	bad := Coefficient{{Factor: 1, Product: 1}, {Factor: 1, Product: 2}} // ascending, wrong
	if bad.CheckOrder() {
		tst.Fatalf("expected CheckOrder to reject ascending order")
	}
	badDup := Coefficient{{Factor: 1, Product: 2}, {Factor: 1, Product: 2}}
	if badDup.CheckOrder() {
		tst.Fatalf("expected CheckOrder to reject duplicate products")
	}
	badZero := Coefficient{{Factor: 0, Product: 2}}
	if badZero.CheckOrder() {
		tst.Fatalf("expected CheckOrder to reject zero-factor addend")
	}
}

func TestProductDegreeAndHasBit(tst *testing.T) {
	p := Product(0b1010)
	if p.Degree() != 2 {
		tst.Fatalf("degree: got %d want 2", p.Degree())
	}
	if !p.HasBit(1) || !p.HasBit(3) || p.HasBit(0) || p.HasBit(2) {
		tst.Fatalf("HasBit mismatch for %v", p)
	}
}
