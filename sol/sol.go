// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sol implements the extended Gauss eliminator: a division-free,
// fraction-free symbolic solver (Bareiss-like) that reduces the MNA matrix
// to upper-triangular form and extracts, for the designated target unknown
// (matrix column m-1), a numerator per known column and one shared
// denominator (§4.5).
//
// Adapted from gofem's allocate -> fill -> eliminate -> extract solve
// orchestration shape (fem/domain.go's LinSol usage), replacing gosl/la's
// numeric sparse factorisation with an exact bitset-pruned elimination — no
// numeric library applies to exact symbolic division.
package sol

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/linnet/coe"
	"github.com/cpmech/linnet/les"
)

// Result holds what one Eliminate call reports besides the matrix itself:
// the sign flip accumulated by row swaps. The surviving pivot row m-1, with
// the target unknown's numerators (columns m..n-1) and the determinant
// (column m-1), stays in the matrix.
type Result struct {
	SignFlipped bool // true iff an odd number of row swaps occurred
}

// ErrSingular is returned when no pivot can be found for some elimination
// step: the system is linearly dependent or contradictory (§4.5, §7
// Unsolvable kind).
type ErrSingular struct {
	Step int
}

func (e *ErrSingular) Error() string {
	return chk.Err("sol: no pivot available at elimination step %d: circuit is linearly dependent or contradictory", e.Step).Error()
}

// one is the multiplicative identity coefficient: a single addend (+1, ∅).
func one() coe.Coefficient { return coe.Coefficient{{Factor: 1, Product: 0}} }

// Eliminate runs fraction-free Gaussian elimination on mx in place (§4.5's
// algorithm). mx.A[m-1] ends up holding, in columns m..n-1, the numerators
// for whichever unknown TBV placed in column m-1, and in column m-1 the
// system determinant, so that the unknown equals numerator/determinant for
// each known. The row-swap sign recorded in Result.SignFlipped is already
// undone on that row.
func Eliminate(mx *les.Matrix) (*Result, error) {
	m, n := mx.M, mx.N
	res := &Result{}
	divisor := one()

	for step := 0; step < m-1; step++ {
		if mx.A[step][step].IsZero() {
			pivot := -1
			for r := step + 1; r < m; r++ {
				if !mx.A[r][step].IsZero() {
					pivot = r
					break
				}
			}
			if pivot == -1 {
				return nil, &ErrSingular{Step: step}
			}
			mx.A[step], mx.A[pivot] = mx.A[pivot], mx.A[step]
			res.SignFlipped = !res.SignFlipped
		}
		for row := step + 1; row < m; row++ {
			for col := step + 1; col < n; col++ {
				mx.A[row][col] = elemStep(mx.A[row][col], mx.A[step][step], mx.A[step][col], mx.A[row][step], divisor)
			}
			mx.A[row][step] = coe.Zero()
		}
		divisor = mx.A[step][step]
	}

	last := m - 1
	if mx.A[last][last].IsZero() {
		// every step found a usable pivot, yet the final diagonal vanished:
		// the system is singular even though no intermediate step detected it
		// (a zero determinant does not require a zero pivot column along the way).
		return nil, &ErrSingular{Step: last}
	}

	if res.SignFlipped {
		for col := 0; col < n; col++ {
			mx.A[last][col] = coe.MultiplyByInt(mx.A[last][col], -1)
		}
	}
	// Row m-1 now reads det·x + Σ_j A[m-1][m+j]·u_j = 0; negating the known
	// columns turns them into the numerators of x = num_j/det.
	for col := m; col < n; col++ {
		mx.A[last][col] = coe.MultiplyByInt(mx.A[last][col], -1)
	}
	for col := 0; col < n; col++ {
		coe.MustOrdered(mx.A[last][col], "sol.Eliminate output row")
	}
	return res, nil
}

// elemStep computes (aRowCol*aStepStep - aStepCol*aRowStep) / divisor, where
// division by the divisor's leading (highest-product) addend is folded into
// every surviving cross-product directly at multiplyPruned's insertion time
// (bitset XOR of products including the divisor's own product, integer
// division of factors by the divisor's leading factor), and any remaining
// non-leading divisor addends are corrected for afterwards by divide. divisor
// is the pivot carried forward from the previous step (or the identity
// (+1, ∅) initially).
func elemStep(aRowCol, aStepStep, aStepCol, aRowStep, divisor coe.Coefficient) coe.Coefficient {
	if divisor.IsZero() {
		chk.Panic("sol: elementary step divided by a zero pivot")
	}
	lead := divisor[0] // divisor's leading (largest-product) addend
	num := multiplyPruned(aRowCol, aStepStep, lead)
	sub := multiplyPruned(aStepCol, aRowStep, lead)
	for _, ad := range sub {
		num = coe.AddAddend(num, -ad.Factor, ad.Product)
	}
	return divide(num, divisor)
}

// survives implements the §4.5 parity test that decides whether the product
// of two addends (bitsets p1, p2) can appear, pruned, in the running
// numerator given the divisor's leading product pd:
//
//	((~p1 & ~p2 & pd) | (p1 & p2 & ~pd)) == 0
//
// Addends failing this test are guaranteed, by the parity argument in §4.5,
// to require a squared constant once divided by pd and are dropped rather
// than ever materialised — this is what keeps every intermediate addend's
// bit-powers <= 1 (invariant §3.2).
func survives(p1, p2, pd coe.Product) bool {
	return ((^p1 & ^p2 & pd) | (p1 & p2 & ^pd)) == 0
}

// multiplyPruned computes the product of two coefficients, already divided
// once by lead: an addend pair failing the survives test against lead's
// product is dropped (the numerator-accumulation pruning stage of §4.5);
// a surviving pair's product is folded together with lead's own product via
// XOR — collisions between x, y and lead cancel out exactly the doubled bit
// the survives test guaranteed is present — and its factor is divided by
// lead's factor, which the same guarantee makes exact.
func multiplyPruned(a, b coe.Coefficient, lead coe.Addend) coe.Coefficient {
	pd := lead.Product
	out := coe.Zero()
	for _, x := range a {
		for _, y := range b {
			if !survives(x.Product, y.Product, pd) {
				continue
			}
			raw := x.Factor * y.Factor
			if raw%lead.Factor != 0 {
				chk.Panic("sol: elementary step division not exact: %d %% %d != 0", raw, lead.Factor)
			}
			out = coe.AddAddend(out, raw/lead.Factor, x.Product^y.Product^pd)
		}
	}
	return out
}

// divide corrects num — already divided once by divisor's leading addend,
// folded in by multiplyPruned at insertion time — for divisor's remaining
// (non-leading) addends via a pruning long-division loop. Each top term
// taken from remaining is a final quotient addend as-is; folding it against
// a non-leading divisor addend (again dividing by the leading factor, the
// same single division multiplyPruned already performed) produces the next
// correction term to fold back in. Termination (§4.5): every correction
// addend has a strictly smaller product-as-integer than the term it was
// derived from, so the loop always shrinks toward empty.
func divide(num, divisor coe.Coefficient) coe.Coefficient {
	if num.IsZero() {
		return coe.Zero()
	}
	lead := divisor[0]
	rest := divisor[1:]
	if len(rest) == 0 {
		return num
	}
	pd := lead.Product

	result := coe.Zero()
	remaining := num.Clone()
	for len(remaining) > 0 {
		top := remaining[0]
		remaining = remaining[1:]
		result = coe.AddAddend(result, top.Factor, top.Product)

		for _, d := range rest {
			if !survives(top.Product, d.Product, pd) {
				continue
			}
			raw := top.Factor * d.Factor
			if raw%lead.Factor != 0 {
				chk.Panic("sol: elementary step division not exact: %d %% %d != 0", raw, lead.Factor)
			}
			remaining = coe.AddAddend(remaining, -raw/lead.Factor, top.Product^d.Product^pd)
		}
	}
	return result
}
