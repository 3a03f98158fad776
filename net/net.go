// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package net implements the network analyser (§4.3): sub-network
// discovery, ground-node selection, structural validation, and
// knowns/unknowns/constants counting. Its output is a populated
// *tbv.Table, in which ground nodes have no unknown, plus the
// per-sub-network ground assignment.
//
// Sub-network discovery uses a small path-compressing union-find, the same
// "fuse interconnected terminals" idiom as gitrdm-gokando's constraint-store
// union helpers (pkg/minikanren/concrete_solvers.go), reimplemented directly
// rather than imported (see DESIGN.md) because a handful of union operations
// do not justify a logic-programming engine dependency.
package net

import (
	"strings"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/linnet/circuit"
	"github.com/cpmech/linnet/tbv"
)

// Errors accumulates structural/capacity problems so the whole class of
// issues in a circuit is reported together (§7's propagation policy),
// mirroring fem/domain.go's pattern of collecting PanicOrNot-guarded
// conditions across a loop before a single failure is surfaced.
type Errors []error

func (e Errors) Error() string {
	l := make([]string, len(e))
	for i, err := range e {
		l[i] = err.Error()
	}
	return strings.Join(l, "; ")
}

// groundNames are the case variants of "ground"/"gnd" §4.3 recognises.
var groundNames = []string{"gnd", "Gnd", "GND", "ground", "Ground", "GROUND"}

func looksLikeGround(name string) bool {
	for _, g := range groundNames {
		if strings.Contains(name, g) {
			return true
		}
	}
	return false
}

// Config bounds the analyser, mirroring inp.Data's SetDefault pattern.
type Config struct {
	MaxConstants int
}

// SetDefault sets the reference ceiling (§6): 64 symbolic constants.
func (c *Config) SetDefault() {
	c.MaxConstants = 64
}

// Info carries the per-node sub-network assignment and per-sub-network
// ground node chosen by Analyse.
type Info struct {
	SubNetOf   []int // node idx -> sub-network id
	NumSubNets int
	Ground     []int // sub-network id -> ground node idx
}

// uf is a minimal path-compressing, union-by-size union-find over node
// indices.
type uf struct {
	parent []int
	size   []int
}

func newUF(n int) *uf {
	p := make([]int, n)
	s := make([]int, n)
	for i := range p {
		p[i] = i
		s[i] = 1
	}
	return &uf{parent: p, size: s}
}

func (u *uf) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *uf) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// fuseTerminals returns the node indices that interconnect (as opposed to
// merely sense) for device d, per §4.3's table.
func fuseTerminals(d circuit.Device) []int {
	switch d.Type {
	case circuit.R, circuit.G, circuit.L, circuit.C, circuit.U, circuit.I, circuit.CurrentProbe:
		return []int{d.From(), d.To()}
	case circuit.OpAmp:
		return []int{d.Nodes[0], d.Nodes[1], d.Nodes[2]}
	case circuit.UU, circuit.IU:
		return []int{d.From(), d.To()} // control terminals are sense-only
	case circuit.UI, circuit.II:
		return []int{d.From(), d.To()} // referenced probe is not a node
	}
	return nil
}

// Analyse classifies devices into sub-networks, selects one ground node per
// sub-network, validates the structural constraints of §4.3, and returns a
// fully populated *tbv.Table together with the sub-network/ground map.
// Structural and capacity errors are accumulated and returned
// together as an Errors value; internal invariant violations panic.
func Analyse(c *circuit.Circuit, cfg Config) (*tbv.Table, *Info, error) {
	var errs Errors

	n := c.NodeCount()
	u := newUF(n)
	anyInterconnected := false
	for _, d := range c.Devices {
		t := fuseTerminals(d)
		if len(t) == 0 {
			continue
		}
		anyInterconnected = true
		for i := 1; i < len(t); i++ {
			u.union(t[0], t[i])
		}
	}
	if !anyInterconnected || n == 0 {
		errs = append(errs, chk.Err("net: no connected devices at all"))
		return nil, nil, errs
	}

	// assign contiguous sub-network ids in first-root-seen order, so ground
	// selection's "first node in list order" is well defined per sub-network.
	rootToSubNet := make(map[int]int)
	subNetOf := make([]int, n)
	for i := 0; i < n; i++ {
		r := u.find(i)
		id, ok := rootToSubNet[r]
		if !ok {
			id = len(rootToSubNet)
			rootToSubNet[r] = id
		}
		subNetOf[i] = id
	}
	numSubNets := len(rootToSubNet)

	// which node is an op-amp output, and which op-amp(s) drive it
	opampOutput := make(map[int]bool)
	opampDriversOf := make(map[int][]int) // node -> opamp device indices
	subNetHasOpAmp := make([]bool, numSubNets)
	for di, d := range c.Devices {
		if d.Type == circuit.OpAmp {
			out := d.Out()
			opampOutput[out] = true
			opampDriversOf[out] = append(opampDriversOf[out], di)
			subNetHasOpAmp[subNetOf[d.Nodes[0]]] = true
		}
	}
	for node, drivers := range opampDriversOf {
		if len(drivers) > 1 {
			errs = append(errs, chk.Err("net: node %q is driven by %d op-amp outputs", c.NodeNames[node], len(drivers)))
		}
	}

	// op-amp terminals must land in one sub-network (guaranteed by fuseTerminals
	// above; kept as an explicit assertion per §4.3's structural-checks list).
	for _, d := range c.Devices {
		if d.Type != circuit.OpAmp {
			continue
		}
		s0 := subNetOf[d.Nodes[0]]
		if subNetOf[d.Nodes[1]] != s0 || subNetOf[d.Nodes[2]] != s0 {
			chk.Panic("net: op-amp %q terminals split across sub-networks despite fusing", d.Name)
		}
	}

	// voltage-controlled sources: the two sense terminals must share a sub-network
	for _, d := range c.Devices {
		if d.Type == circuit.UU || d.Type == circuit.IU {
			if subNetOf[d.CtrlPlus()] != subNetOf[d.CtrlMinus()] {
				errs = append(errs, chk.Err("net: controlled source %q has its two sense terminals in different sub-networks", d.Name))
			}
		}
	}

	// user-defined voltages: the two sense nodes must share a sub-network
	for _, v := range c.Voltages {
		if subNetOf[v.PlusNode] != subNetOf[v.MinusNode] {
			errs = append(errs, chk.Err("net: user-defined voltage %q has sense nodes in different sub-networks", v.Name))
		}
	}

	// ground selection, per sub-network
	ground := make([]int, numSubNets)
	for g := range ground {
		ground[g] = -1
	}
	for sn := 0; sn < numSubNets; sn++ {
		var candidates []int // nodes in this sub-network whose name looks like ground
		var firstNode = -1
		for ni := 0; ni < n; ni++ {
			if subNetOf[ni] != sn {
				continue
			}
			if firstNode == -1 {
				firstNode = ni
			}
			if looksLikeGround(c.NodeNames[ni]) && !opampOutput[ni] {
				candidates = append(candidates, ni)
			}
		}
		switch {
		case len(candidates) == 1:
			ground[sn] = candidates[0]
		case len(candidates) > 1:
			names := make([]string, len(candidates))
			for i, ni := range candidates {
				names[i] = c.NodeNames[ni]
			}
			errs = append(errs, chk.Err("net: sub-network %d has ambiguous ground candidates: %v", sn, names))
		case !subNetHasOpAmp[sn]:
			ground[sn] = firstNode
		default:
			errs = append(errs, chk.Err("net: sub-network %d contains an op-amp but no node is named as ground", sn))
		}
	}

	if len(errs) > 0 {
		return nil, nil, errs
	}

	info := &Info{SubNetOf: subNetOf, NumSubNets: numSubNets, Ground: ground}
	table, err := buildTable(c, info, cfg)
	if err != nil {
		return nil, nil, err
	}
	return table, info, nil
}

// buildTable allocates the variable table: one unknown per non-ground node,
// one auxiliary-current unknown per device that introduces one, one known
// per independent source, one constant per passive device and per
// controlled-source gain — the counting rules of §4.3.
func buildTable(c *circuit.Circuit, info *Info, cfg Config) (*tbv.Table, error) {
	numUnknowns := c.NodeCount() - info.NumSubNets
	for _, d := range c.Devices {
		if d.Type.IntroducesAuxCurrent() {
			numUnknowns++
		}
	}
	numKnowns := 0
	numConstants := 0
	for _, d := range c.Devices {
		switch {
		case d.Type == circuit.U || d.Type == circuit.I:
			numKnowns++
		case d.Type.IsPassive():
			numConstants++
		case d.Type.IsControlledSource():
			numConstants++
		}
	}
	if numConstants > cfg.MaxConstants {
		return nil, Errors{chk.Err("net: circuit needs %d symbolic constants, exceeding the budget of %d", numConstants, cfg.MaxConstants)}
	}

	t := tbv.New(numKnowns, numUnknowns, numConstants)

	isGround := make(map[int]bool, info.NumSubNets)
	for _, g := range info.Ground {
		isGround[g] = true
	}
	for ni, name := range c.NodeNames {
		if isGround[ni] {
			continue
		}
		t.AddUnknown(name, ni, info.SubNetOf[ni], -1)
	}
	for di, d := range c.Devices {
		switch {
		case d.Type == circuit.U || d.Type == circuit.I:
			t.AddKnown(di, d.Name)
		}
		if d.Type.IntroducesAuxCurrent() {
			t.AddUnknown("I("+d.Name+")", -1, info.SubNetOf[d.Nodes[0]], di)
		}
		if d.Type.IsPassive() {
			t.AddConstant(di, tbv.KindPassive)
		}
		if d.Type.IsControlledSource() {
			t.AddConstant(di, tbv.KindGain)
		}
	}
	t.SortConstants()
	return t, nil
}
