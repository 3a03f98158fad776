// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tbv implements the variable table: the mapping between symbolic
// identifiers (nodes, devices, sources) and matrix row/column/bit indices.
//
// Generalised from gofem's fem.Node dof/equation-number bookkeeping
// (fem/node.go's AddDofAndEq/GetEq) to linNet's three separate tables of
// knowns, unknowns and constants.
package tbv

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/linnet/coe"
)

// Known is one independent source column.
type Known struct {
	Name      string // source device name
	DeviceIdx int    // index into the circuit's device list
	Col       int    // column index (within the known-columns block)
}

// Unknown is one node-voltage or auxiliary-current row/column.
type Unknown struct {
	Name      string // display name, e.g. "mid" or "I(OP1)"
	NodeIdx   int    // node index, or -1 if this is a device-current unknown
	DeviceIdx int     // device index, or -1 if this is a node-voltage unknown
	SubNet    int     // sub-network id this unknown belongs to
	Col       int     // current column assignment; mutated by SetTargetUnknown
}

// IsNodeVoltage reports whether this unknown is a node voltage (as opposed to
// an auxiliary device current).
func (u Unknown) IsNodeVoltage() bool { return u.NodeIdx >= 0 }

// Constant is one symbolic device constant (R, G, L, C, or a controlled-
// source gain).
type Constant struct {
	DeviceIdx int         // owning device
	Bit       int         // assigned bit position, stable only after SortConstants
	Kind      ConstantKind // R/G/L/C or Gain, used to order passives before gains
}

// ConstantKind distinguishes passive-device constants from controlled-source
// gains, used by SortConstants to produce the canonical ordering §4.2 demands.
type ConstantKind int

const (
	KindPassive ConstantKind = iota
	KindGain
)

// Table holds the three ordered lists and owns column/row/bit assignment.
// Columns for storing numerators are always derived from a Table snapshot
// (Clone), never from the live, mutating instance held by the solver — this
// is what keeps a frozen Solution immune to later column permutations
// (§5 memory ownership).
type Table struct {
	Knowns    []Known
	Unknowns  []Unknown
	Constants []Constant

	capKnowns, capUnknowns, capConstants int

	byNode   map[int]int // node idx -> index into Unknowns, for non-ground nodes
	byDevice map[int]int // device idx -> index into Unknowns, for aux currents
	byConst  map[int]int // device idx -> index into Constants
	byName   map[string]int // unknown name -> index into Unknowns
}

// New returns an empty table with declared capacities.
func New(capKnowns, capUnknowns, capConstants int) *Table {
	return &Table{
		capKnowns:    capKnowns,
		capUnknowns:  capUnknowns,
		capConstants: capConstants,
		byNode:       make(map[int]int),
		byDevice:     make(map[int]int),
		byConst:      make(map[int]int),
		byName:       make(map[string]int),
	}
}

// AddKnown appends a new independent-source column.
func (o *Table) AddKnown(deviceIdx int, name string) {
	if len(o.Knowns) >= o.capKnowns {
		chk.Panic("tbv: known capacity (%d) exceeded adding %q", o.capKnowns, name)
	}
	o.Knowns = append(o.Knowns, Known{Name: name, DeviceIdx: deviceIdx, Col: len(o.Knowns)})
}

// AddUnknown appends a new node-voltage (nodeIdx >= 0) or auxiliary-current
// (deviceIdx >= 0, nodeIdx == -1) unknown.
func (o *Table) AddUnknown(name string, nodeIdx int, subNet int, deviceIdx int) {
	if len(o.Unknowns) >= o.capUnknowns {
		chk.Panic("tbv: unknown capacity (%d) exceeded adding %q", o.capUnknowns, name)
	}
	idx := len(o.Unknowns)
	o.Unknowns = append(o.Unknowns, Unknown{
		Name: name, NodeIdx: nodeIdx, DeviceIdx: deviceIdx, SubNet: subNet, Col: idx,
	})
	if nodeIdx >= 0 {
		o.byNode[nodeIdx] = idx
	}
	if deviceIdx >= 0 {
		o.byDevice[deviceIdx] = idx
	}
	o.byName[name] = idx
}

// AddConstant assigns the next available bit position to a device's
// symbolic constant. Bit positions are not stable until SortConstants runs.
func (o *Table) AddConstant(deviceIdx int, kind ConstantKind) {
	if len(o.Constants) >= o.capConstants {
		chk.Panic("tbv: constant budget (%d) exceeded", o.capConstants)
	}
	idx := len(o.Constants)
	o.Constants = append(o.Constants, Constant{DeviceIdx: deviceIdx, Bit: idx, Kind: kind})
	o.byConst[deviceIdx] = idx
}

// SortConstants re-permutes constant bit assignments into the canonical
// order: passives (R, L, C, G) first, then controlled-source gains. Must be
// invoked exactly once after all constants are added and before any matrix
// fill references a constant's bit (§4.2).
func (o *Table) SortConstants() {
	ordered := make([]Constant, 0, len(o.Constants))
	for _, c := range o.Constants {
		if c.Kind == KindPassive {
			ordered = append(ordered, c)
		}
	}
	for _, c := range o.Constants {
		if c.Kind == KindGain {
			ordered = append(ordered, c)
		}
	}
	for i := range ordered {
		ordered[i].Bit = i
	}
	o.Constants = ordered
	o.byConst = make(map[int]int, len(ordered))
	for i, c := range ordered {
		o.byConst[c.DeviceIdx] = i
	}
}

// LookupUnknownByNode returns the unknown for nodeIdx, or ok==false iff the
// node is the ground of its sub-network.
func (o *Table) LookupUnknownByNode(nodeIdx int) (u Unknown, ok bool) {
	i, found := o.byNode[nodeIdx]
	if !found {
		return Unknown{}, false
	}
	return o.Unknowns[i], true
}

// LookupUnknownByDevice returns the auxiliary-current unknown owned by a
// device; panics if none exists (a programming defect — callers only call
// this for device classes §4.4 says introduce an aux current).
func (o *Table) LookupUnknownByDevice(deviceIdx int) Unknown {
	i, ok := o.byDevice[deviceIdx]
	if !ok {
		chk.Panic("tbv: no auxiliary-current unknown for device %d", deviceIdx)
	}
	return o.Unknowns[i]
}

// LookupConstantByDevice returns a bitset with exactly one bit set: the
// constant owned by deviceIdx.
func (o *Table) LookupConstantByDevice(deviceIdx int) coe.Product {
	i, ok := o.byConst[deviceIdx]
	if !ok {
		chk.Panic("tbv: no constant registered for device %d", deviceIdx)
	}
	return coe.Product(1) << uint(o.Constants[i].Bit)
}

// ConstantBit returns the bitset for the constant owned by deviceIdx, or
// ok==false if deviceIdx owns no constant (an independent source, an op-amp,
// or any device class §4.4 gives no symbolic constant).
func (o *Table) ConstantBit(deviceIdx int) (coe.Product, bool) {
	i, ok := o.byConst[deviceIdx]
	if !ok {
		return 0, false
	}
	return coe.Product(1) << uint(o.Constants[i].Bit), true
}

// SetTargetUnknown swaps column positions so the named unknown's column
// becomes the last one (m-1): the unknown that held column m-1 takes the
// named unknown's old column, and every other unknown keeps its column.
// Returns false if name is not found.
func (o *Table) SetTargetUnknown(name string) bool {
	i, ok := o.byName[name]
	if !ok {
		return false
	}
	m := len(o.Unknowns)
	target := o.Unknowns[i].Col
	last := m - 1
	if target == last {
		return true
	}
	for j := range o.Unknowns {
		switch o.Unknowns[j].Col {
		case target:
			o.Unknowns[j].Col = last
		case last:
			o.Unknowns[j].Col = target
		}
	}
	return true
}

// ColOf returns the current column of the unknown with the given name.
func (o *Table) ColOf(name string) (col int, ok bool) {
	i, found := o.byName[name]
	if !found {
		return 0, false
	}
	return o.Unknowns[i].Col, true
}

// NumUnknowns, NumKnowns, NumConstants report table sizes.
func (o *Table) NumUnknowns() int  { return len(o.Unknowns) }
func (o *Table) NumKnowns() int    { return len(o.Knowns) }
func (o *Table) NumConstants() int { return len(o.Constants) }

// Clone returns a shallow, independently mutable copy: the Knowns/Unknowns/
// Constants slices and lookup maps are duplicated so later column
// permutations on the original do not corrupt this copy, but no circuit data
// is duplicated (there is none held here to begin with; the circuit is
// referenced only by the caller). Used to freeze a Table inside a Solution.
func (o *Table) Clone() *Table {
	c := &Table{
		capKnowns: o.capKnowns, capUnknowns: o.capUnknowns, capConstants: o.capConstants,
		Knowns:    append([]Known(nil), o.Knowns...),
		Unknowns:  append([]Unknown(nil), o.Unknowns...),
		Constants: append([]Constant(nil), o.Constants...),
		byNode:    make(map[int]int, len(o.byNode)),
		byDevice:  make(map[int]int, len(o.byDevice)),
		byConst:   make(map[int]int, len(o.byConst)),
		byName:    make(map[string]int, len(o.byName)),
	}
	for k, v := range o.byNode {
		c.byNode[k] = v
	}
	for k, v := range o.byDevice {
		c.byDevice[k] = v
	}
	for k, v := range o.byConst {
		c.byConst[k] = v
	}
	for k, v := range o.byName {
		c.byName[k] = v
	}
	return c
}

// String renders a compact inspection dump, mirroring fem.Node.String()'s
// utl.Sf-built inspection strings.
func (o *Table) String() string {
	l := utl.Sf("tbv: %d knowns, %d unknowns, %d constants", len(o.Knowns), len(o.Unknowns), len(o.Constants))
	return l
}
