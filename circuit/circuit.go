// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package circuit holds the parsed-circuit data model the core consumes
// (§6): an already-tokenised, already-parsed device/node list. Lexical
// tokenisation and concrete file-format parsing are external collaborators
// (§1) and have no presence here — callers (a parser, or a test) build a
// Circuit directly.
//
// Shaped after gofem's inp package (inp/msh.go's Mesh/Vert/Cell: plain
// structs describing the problem the fem package consumes by reference) and
// edp1096/toy-spice's pkg/device record shape (type tag + named terminals +
// value annotation).
package circuit

// DeviceType enumerates the twelve device types named in §3. A tagged
// union over a single variant, as §9's design notes recommend.
type DeviceType int

const (
	R DeviceType = iota
	G
	L
	C
	U    // independent voltage source
	I    // independent current source
	UU   // voltage-controlled voltage source: U(U)
	UI   // current-controlled voltage source: U(I)
	IU   // voltage-controlled current source: I(U)
	II   // current-controlled current source: I(I)
	OpAmp
	CurrentProbe
)

func (t DeviceType) String() string {
	switch t {
	case R:
		return "R"
	case G:
		return "G"
	case L:
		return "L"
	case C:
		return "C"
	case U:
		return "U"
	case I:
		return "I"
	case UU:
		return "U(U)"
	case UI:
		return "U(I)"
	case IU:
		return "I(U)"
	case II:
		return "I(I)"
	case OpAmp:
		return "OpAmp"
	case CurrentProbe:
		return "CurrentProbe"
	}
	return "?"
}

// IsPassive reports whether t is one of R, G, L, C (contributes a single
// passive constant, no auxiliary current).
func (t DeviceType) IsPassive() bool { return t == R || t == G || t == L || t == C }

// IsControlledSource reports whether t is one of the four dependent-source
// classes, each contributing a gain constant.
func (t DeviceType) IsControlledSource() bool { return t == UU || t == UI || t == IU || t == II }

// IsControlledByCurrent reports whether t's control input is a probe current
// (U(I), I(I)) rather than a sensed voltage (U(U), I(U)).
func (t DeviceType) IsControlledByCurrent() bool { return t == UI || t == II }

// IntroducesAuxCurrent reports whether t's MNA stamp needs an auxiliary
// current unknown/row (§4.3's unknown-counting table): U, U(U), U(I),
// OpAmp, CurrentProbe.
func (t DeviceType) IntroducesAuxCurrent() bool {
	return t == U || t == UU || t == UI || t == OpAmp || t == CurrentProbe
}

// Device is one circuit element: a type tag, a name, 2-4 node indices, an
// optional controlling-probe device index, and an opaque value annotation
// preserved for the renderer but ignored by the core.
//
// Node-index slots by type:
//   R,G,L,C,U,I,CurrentProbe: Nodes = [from, to]
//   OpAmp:                    Nodes = [inPlus, inMinus, out]
//   UU, IU:                   Nodes = [outFrom, outTo, ctrlPlus, ctrlMinus]
//   UI, II:                   Nodes = [outFrom, outTo]; CtrlProbe names the
//                             referenced CurrentProbe device.
type Device struct {
	Type      DeviceType
	Name      string
	Nodes     []int // node indices, meaning depends on Type (see above)
	CtrlProbe int   // index of referenced CurrentProbe device, or -1
	Value     any   // opaque numeric/relational annotation, ignored by core
}

// From, To return the two interconnecting terminals for two-terminal and
// output-pair device classes. For OpAmp, From/To are inPlus/inMinus and the
// output is accessed via Out().
func (d Device) From() int { return d.Nodes[0] }
func (d Device) To() int   { return d.Nodes[1] }

// Out returns the op-amp output node index; only valid when Type == OpAmp.
func (d Device) Out() int { return d.Nodes[2] }

// CtrlPlus, CtrlMinus return the sense-only control terminals of a
// voltage-controlled source (UU, IU); only valid for those types.
func (d Device) CtrlPlus() int  { return d.Nodes[2] }
func (d Device) CtrlMinus() int { return d.Nodes[3] }

// UserVoltage is a post-hoc output quantity defined as the difference of two
// node voltages; not a new unknown, just a derived linear combination
// (GLOSSARY).
type UserVoltage struct {
	Name     string
	PlusNode int
	MinusNode int
}

// ResultRequest is one user-requested output. Exactly one of Dependents
// (full result) or (Dependent, Independent) (Bode-style) is populated.
type ResultRequest struct {
	Name        string
	Dependents  []string // full result: set of dependent-quantity names
	Dependent   string   // Bode-style: the one dependent quantity
	Independent string   // Bode-style: the one independent (known) quantity
	PlotNote    string   // optional plot annotation, ignored by the core
}

// IsBode reports whether this is a Bode-style (single dependent/independent
// pair) result request.
func (r ResultRequest) IsBode() bool { return r.Dependent != "" }

// Circuit is the immutable, ready-made input to the core (§6). Node names
// are unique by construction of the upstream parser (not re-validated here,
// per spec.md's assumed-uniqueness Open Question).
type Circuit struct {
	NodeNames []string
	Devices   []Device
	Voltages  []UserVoltage
	Results   []ResultRequest
}

// NodeCount returns the number of distinct nodes.
func (c *Circuit) NodeCount() int { return len(c.NodeNames) }

// DeviceByName returns the device named n and its index, or ok==false.
func (c *Circuit) DeviceByName(n string) (idx int, ok bool) {
	for i, d := range c.Devices {
		if d.Name == n {
			return i, true
		}
	}
	return -1, false
}

// VoltageByName returns the user-defined voltage named n and its index, or
// ok==false.
func (c *Circuit) VoltageByName(n string) (idx int, ok bool) {
	for i, v := range c.Voltages {
		if v.Name == n {
			return i, true
		}
	}
	return -1, false
}
