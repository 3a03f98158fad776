// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package les fills the Modified Nodal Analysis coefficient matrix from the
// device list, one rule per device class (§4.4).
//
// Generalised from gofem's fem.Elem interface / eallocators map
// (fem/element.go: per-element-type dispatch, AddToKb assembling local
// contributions into a global matrix) from per-element-type stiffness
// assembly to per-device-type MNA stamp rules.
package les

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/linnet/circuit"
	"github.com/cpmech/linnet/coe"
	"github.com/cpmech/linnet/tbv"
)

// Matrix is an m x n array of coefficients: m rows/unknowns, n = m + knowns
// columns. Columns 0..m-1 multiply unknowns; columns m..n-1 multiply knowns.
type Matrix struct {
	M, N int
	A    [][]coe.Coefficient
}

// NewMatrix allocates a zeroed m x n matrix.
func NewMatrix(m, n int) *Matrix {
	a := make([][]coe.Coefficient, m)
	for i := range a {
		a[i] = make([]coe.Coefficient, n)
	}
	return &Matrix{M: m, N: n, A: a}
}

// Reset reinitialises every entry to the zero coefficient, freeing prior
// contents — LES re-runs on the same matrix once per target unknown (§4.4).
func (mx *Matrix) Reset() {
	for i := range mx.A {
		for j := range mx.A[i] {
			mx.A[i][j] = coe.Zero()
		}
	}
}

// Add adds factor·product into A[row][col]. Out-of-range rows/cols are
// silently dropped: §4.4 says "ground nodes are silently absent, so any
// term referencing a ground-node unknown is omitted" — callers signal a
// ground reference with row/col == -1.
func (mx *Matrix) Add(row, col int, factor int64, product coe.Product) {
	if row < 0 || col < 0 || row >= mx.M || col >= mx.N {
		return
	}
	mx.A[row][col] = coe.AddAddend(mx.A[row][col], factor, product)
}

// Builder fills a Matrix from a circuit and its populated variable table.
type Builder struct {
	Circuit *circuit.Circuit
	Table   *tbv.Table
}

// New returns a Builder bound to a circuit and its table.
func New(c *circuit.Circuit, t *tbv.Table) *Builder {
	return &Builder{Circuit: c, Table: t}
}

// colOfNode returns the current column for nodeIdx's unknown, or -1 if it is
// the ground of its sub-network.
func (b *Builder) colOfNode(nodeIdx int) int {
	u, ok := b.Table.LookupUnknownByNode(nodeIdx)
	if !ok {
		return -1
	}
	return u.Col
}

func (b *Builder) colOfDeviceAux(deviceIdx int) int {
	return b.Table.LookupUnknownByDevice(deviceIdx).Col
}

func (b *Builder) knownCol(deviceIdx int) int {
	for _, k := range b.Table.Knowns {
		if k.DeviceIdx == deviceIdx {
			return b.Table.NumUnknowns() + k.Col
		}
	}
	chk.Panic("les: device %d is not a known column", deviceIdx)
	return -1
}

func one() coe.Product { return 0 }

// Fill clears mx and re-applies every device's MNA stamp (§4.4's per-class
// contribution table).
func (b *Builder) Fill(mx *Matrix) {
	mx.Reset()
	for di, d := range b.Circuit.Devices {
		switch d.Type {
		case circuit.R, circuit.G, circuit.L, circuit.C:
			b.fillPassive(mx, di, d)
		case circuit.U:
			b.fillU(mx, di, d)
		case circuit.I:
			b.fillI(mx, di, d)
		case circuit.OpAmp:
			b.fillOpAmp(mx, di, d)
		case circuit.CurrentProbe:
			b.fillCurrentProbe(mx, di, d)
		case circuit.UU:
			b.fillVControlledV(mx, di, d)
		case circuit.UI:
			b.fillIControlledV(mx, di, d)
		case circuit.IU:
			b.fillVControlledI(mx, di, d)
		case circuit.II:
			b.fillIControlledI(mx, di, d)
		default:
			chk.Panic("les: unknown device type %v for %q", d.Type, d.Name)
		}
	}
	for i := range mx.A {
		for j := range mx.A[i] {
			coe.MustOrdered(mx.A[i][j], "les.Fill output")
		}
	}
}

// fillPassive stamps R/G/L/C between from,to with constant bit k:
// KCL at `from`: (-1,{k}) at col from, (+1,{k}) at col to; symmetric at `to`.
func (b *Builder) fillPassive(mx *Matrix, di int, d circuit.Device) {
	k := b.Table.LookupConstantByDevice(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	mx.Add(from, from, -1, k)
	mx.Add(from, to, +1, k)
	mx.Add(to, to, -1, k)
	mx.Add(to, from, +1, k)
}

// fillU stamps an independent voltage source: KCL uses the aux current
// column i; the aux row enforces V(from)-V(to) = known j.
func (b *Builder) fillU(mx *Matrix, di int, d circuit.Device) {
	i := b.colOfDeviceAux(di)
	j := b.knownCol(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	r := b.Table.LookupUnknownByDevice(di).Col
	mx.Add(from, i, +1, one())
	mx.Add(to, i, -1, one())
	mx.Add(r, from, +1, one())
	mx.Add(r, to, -1, one())
	mx.Add(r, j, -1, one())
}

// fillI stamps an independent current source: KCL only, no aux unknown.
func (b *Builder) fillI(mx *Matrix, di int, d circuit.Device) {
	j := b.knownCol(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	mx.Add(from, j, -1, one())
	mx.Add(to, j, +1, one())
}

// fillOpAmp stamps an ideal op-amp: KCL at `out` uses aux current i; the aux
// row enforces V(in+) = V(in-) (inputs draw zero current).
func (b *Builder) fillOpAmp(mx *Matrix, di int, d circuit.Device) {
	i := b.colOfDeviceAux(di)
	inPlus, inMinus, out := d.Nodes[0], d.Nodes[1], d.Nodes[2]
	outCol := b.colOfNode(out)
	r := b.Table.LookupUnknownByDevice(di).Col
	mx.Add(outCol, i, +1, one())
	mx.Add(r, b.colOfNode(inPlus), +1, one())
	mx.Add(r, b.colOfNode(inMinus), -1, one())
}

// fillCurrentProbe stamps an ideal (zero-impedance) ammeter: KCL uses aux
// current i; the aux row enforces V(from) = V(to).
func (b *Builder) fillCurrentProbe(mx *Matrix, di int, d circuit.Device) {
	i := b.colOfDeviceAux(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	r := b.Table.LookupUnknownByDevice(di).Col
	mx.Add(from, i, -1, one())
	mx.Add(to, i, +1, one())
	mx.Add(r, from, +1, one())
	mx.Add(r, to, -1, one())
}

// fillVControlledV stamps U(U): KCL as for U; aux row enforces
// V(from)-V(to) - k*(V(ctrl+)-V(ctrl-)) = 0.
func (b *Builder) fillVControlledV(mx *Matrix, di int, d circuit.Device) {
	k := b.Table.LookupConstantByDevice(di)
	i := b.colOfDeviceAux(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	ctrlP, ctrlM := b.colOfNode(d.CtrlPlus()), b.colOfNode(d.CtrlMinus())
	r := b.Table.LookupUnknownByDevice(di).Col
	mx.Add(from, i, +1, one())
	mx.Add(to, i, -1, one())
	mx.Add(r, from, +1, one())
	mx.Add(r, to, -1, one())
	mx.Add(r, ctrlP, -1, k)
	mx.Add(r, ctrlM, +1, k)
}

// fillIControlledV stamps U(I): KCL as for U; aux row enforces
// V(from)-V(to) - k*I(probe) = 0, where I(probe) is the referenced
// current-probe device's own auxiliary-current column.
func (b *Builder) fillIControlledV(mx *Matrix, di int, d circuit.Device) {
	k := b.Table.LookupConstantByDevice(di)
	i := b.colOfDeviceAux(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	p := b.colOfDeviceAux(d.CtrlProbe)
	r := b.Table.LookupUnknownByDevice(di).Col
	mx.Add(from, i, +1, one())
	mx.Add(to, i, -1, one())
	mx.Add(r, from, +1, one())
	mx.Add(r, to, -1, one())
	mx.Add(r, p, -1, k)
}

// fillVControlledI stamps I(U): KCL only. -k*V(ctrl+) + k*V(ctrl-) at `from`;
// symmetric pair at `to`.
func (b *Builder) fillVControlledI(mx *Matrix, di int, d circuit.Device) {
	k := b.Table.LookupConstantByDevice(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	ctrlP, ctrlM := b.colOfNode(d.CtrlPlus()), b.colOfNode(d.CtrlMinus())
	mx.Add(from, ctrlP, -1, k)
	mx.Add(from, ctrlM, +1, k)
	mx.Add(to, ctrlP, +1, k)
	mx.Add(to, ctrlM, -1, k)
}

// fillIControlledI stamps I(I): KCL only, referencing the probe's aux
// current column p.
func (b *Builder) fillIControlledI(mx *Matrix, di int, d circuit.Device) {
	k := b.Table.LookupConstantByDevice(di)
	from, to := b.colOfNode(d.From()), b.colOfNode(d.To())
	p := b.colOfDeviceAux(d.CtrlProbe)
	mx.Add(from, p, -1, k)
	mx.Add(to, p, +1, k)
}
