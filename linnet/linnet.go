// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linnet drives the whole-circuit solve (§4.5's "whole solution
// procedure"): it computes the required set of dependent unknowns from a
// circuit's result requests, solves once per required unknown, and folds the
// per-solve determinants/numerators into one Solution.
//
// Generalised from gofem's fem.go driver loop (NewDomain -> SetStage -> solve)
// to a single-shot, per-unknown solve loop — this spec has no time-stepping.
package linnet

import (
	"log"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/linnet/circuit"
	"github.com/cpmech/linnet/coe"
	"github.com/cpmech/linnet/les"
	"github.com/cpmech/linnet/net"
	"github.com/cpmech/linnet/sol"
	"github.com/cpmech/linnet/tbv"
)

// Verbose turns on progress logging during Solve, mirroring gosl/chk.Verbose.
var Verbose = false

// Config bounds and tunes a Solve call. JSON-tagged so a driver program can
// load it from a configuration file the way inp.Data is loaded in gofem.
type Config struct {
	MaxConstants    int  `json:"maxConstants"`
	DebugInvariants bool `json:"debugInvariants"`
}

// SetDefault fills Config with the reference ceilings (§6): 64 symbolic
// constants, invariant assertions off (when on, every solve's determinant is
// compared with the first one's).
func (c *Config) SetDefault() {
	c.MaxConstants = 64
	c.DebugInvariants = false
}

// Solution is the frozen result of solving one circuit: one shared
// determinant plus, for every required dependent unknown, one numerator
// coefficient per known (independent-source) column. Columns are read from a
// table snapshot taken at Solve time — later mutation of any live table used
// during solving cannot corrupt a returned Solution (§5 memory ownership).
type Solution struct {
	table       *tbv.Table
	circuit     *circuit.Circuit
	determinant coe.Coefficient
	numerators  map[string]map[string]coe.Coefficient // dependent name -> known name -> numerator
}

// Determinant returns the solution's shared denominator.
func (s *Solution) Determinant() coe.Coefficient { return s.determinant }

// Numerator returns the numerator of dependent w.r.t. known, or false if
// dependent was never solved for or known does not exist.
func (s *Solution) Numerator(dependent, known string) (coe.Coefficient, bool) {
	row, ok := s.numerators[dependent]
	if !ok {
		return nil, false
	}
	c, ok := row[known]
	return c, ok
}

// Dependents returns the names of every unknown this Solution solved for.
func (s *Solution) Dependents() []string {
	names := make([]string, 0, len(s.numerators))
	for name := range s.numerators {
		names = append(names, name)
	}
	return names
}

// Knowns returns the independent-source names, in their table column order.
func (s *Solution) Knowns() []string {
	names := make([]string, len(s.table.Knowns))
	for i, k := range s.table.Knowns {
		names[i] = k.Name
	}
	return names
}

// ConstantBit returns the symbolic-constant bitset owned by the named device,
// or ok==false if no such device exists or it owns no constant (e.g. an
// independent source or an op-amp).
func (s *Solution) ConstantBit(deviceName string) (coe.Product, bool) {
	di, ok := s.circuit.DeviceByName(deviceName)
	if !ok {
		return 0, false
	}
	return s.table.ConstantBit(di)
}

// String renders a compact dump of every solved ratio, mirroring
// fem.Node.String()'s inspection-string shape.
func (s *Solution) String() string {
	l := "linnet.Solution:\n"
	l += "  determinant = " + s.determinant.String() + "\n"
	for dep, row := range s.numerators {
		for known, num := range row {
			l += "  " + dep + "/" + known + " = " + num.String() + "\n"
		}
	}
	return l
}

// Solve runs the whole-circuit procedure: analyse the network, compute the
// required set of dependent unknowns from c.Results (including both
// node-voltage halves of any referenced user-defined voltage), solve once per
// required unknown, and assemble a Solution.
func Solve(c *circuit.Circuit, cfg Config) (*Solution, error) {
	var ncfg net.Config
	ncfg.MaxConstants = cfg.MaxConstants
	if ncfg.MaxConstants == 0 {
		ncfg.SetDefault()
	}
	table, _, err := net.Analyse(c, ncfg)
	if err != nil {
		return nil, err
	}

	required, err := requiredUnknowns(c, table)
	if err != nil {
		return nil, err
	}
	if Verbose {
		log.Printf("linnet: solving for %d required unknown(s)", len(required))
	}

	solution := &Solution{table: table.Clone(), circuit: c, numerators: make(map[string]map[string]coe.Coefficient)}
	var haveDeterminant bool

	for _, name := range required {
		det, row, err := solveOne(c, table, name, cfg)
		if err != nil {
			return nil, err
		}
		if !haveDeterminant {
			solution.determinant = det
			haveDeterminant = true
		} else if cfg.DebugInvariants {
			assertSameDeterminant(solution.determinant, det)
		}
		solution.numerators[name] = row
		if Verbose {
			log.Printf("linnet: solved %q", name)
		}
	}
	return solution, nil
}

// requiredUnknowns computes the set of unknown names Solve must produce
// numerators for, resolving every ResultRequest's dependent name(s) — a
// user-defined voltage resolves to both of its node-voltage unknowns, since a
// voltage difference is never itself a table column (GLOSSARY).
func requiredUnknowns(c *circuit.Circuit, table *tbv.Table) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	resolve := func(name string) error {
		if _, ok := table.ColOf(name); ok {
			add(name)
			return nil
		}
		if vi, ok := c.VoltageByName(name); ok {
			v := c.Voltages[vi]
			if _, ok := table.ColOf(c.NodeNames[v.PlusNode]); ok {
				add(c.NodeNames[v.PlusNode])
			}
			if _, ok := table.ColOf(c.NodeNames[v.MinusNode]); ok {
				add(c.NodeNames[v.MinusNode])
			}
			return nil
		}
		return chk.Err("linnet: result request names unknown dependent %q", name)
	}
	for _, r := range c.Results {
		if r.IsBode() {
			if err := resolve(r.Dependent); err != nil {
				return nil, err
			}
			continue
		}
		for _, d := range r.Dependents {
			if err := resolve(d); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// solveOne runs one target-unknown solve against a fresh clone of table (so
// successive solves never see each other's column permutations), and returns
// the determinant and per-known numerator row read from the eliminated last
// row.
func solveOne(c *circuit.Circuit, table *tbv.Table, name string, cfg Config) (coe.Coefficient, map[string]coe.Coefficient, error) {
	work := table.Clone()
	m := work.NumUnknowns()

	if _, ok := work.ColOf(name); !ok {
		return nil, nil, chk.Err("linnet: unknown dependent %q not present in table", name)
	}
	if !work.SetTargetUnknown(name) {
		return nil, nil, chk.Err("linnet: could not target unknown %q", name)
	}

	n := m + work.NumKnowns()
	mx := les.NewMatrix(m, n)
	les.New(c, work).Fill(mx)

	_, err := sol.Eliminate(mx)
	if err != nil {
		return nil, nil, err
	}

	// SetTargetUnknown's swap moves an unknown's row and column together (les
	// indexes both by Unknown.Col), which leaves the determinant unchanged,
	// and Eliminate undoes its own row-swap sign on the returned row, so the
	// last row is read as is: every solve lands on the same determinant.
	last := m - 1
	determinant := mx.A[last][last]
	row := make(map[string]coe.Coefficient, len(work.Knowns))
	for _, k := range work.Knowns {
		row[k.Name] = mx.A[last][m+k.Col]
	}
	return determinant, row, nil
}

// assertSameDeterminant panics (an internal-error, §7) if two determinants
// computed from independent target-unknown solves disagree up to overall
// sign — every solve of the same circuit must land on the same denominator.
func assertSameDeterminant(a, b coe.Coefficient) {
	if coeEqual(a, b) {
		return
	}
	if coeEqual(a, coe.MultiplyByInt(b.Clone(), -1)) {
		return
	}
	chk.Panic("linnet: determinant mismatch across target-unknown solves: %v vs %v", a, b)
}

func coeEqual(a, b coe.Coefficient) bool {
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
