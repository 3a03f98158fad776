// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command linnetcheck is a narrow developer tool: it builds a small built-in
// fixture circuit, solves it, and prints the resulting numerators and
// determinant. It exists to exercise the linnet pipeline end to end without
// a front-end parser (§1 scopes lexing/parsing out of the core).
package main

import (
	"fmt"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"

	"github.com/cpmech/linnet/circuit"
	"github.com/cpmech/linnet/linnet"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	var verbose bool
	var debugInvariants bool
	var fixture string

	rootCmd := &cobra.Command{
		Use:   "linnetcheck",
		Short: "Solve a built-in fixture circuit and print its symbolic transfer ratios",
		RunE: func(cmd *cobra.Command, args []string) error {
			linnet.Verbose = verbose
			c, ok := fixtures[fixture]
			if !ok {
				return fmt.Errorf("unknown fixture %q (available: %v)", fixture, fixtureNames())
			}

			var cfg linnet.Config
			cfg.SetDefault()
			cfg.DebugInvariants = debugInvariants

			solution, err := linnet.Solve(c, cfg)
			if err != nil {
				return err
			}

			io.Pf("%v\n", solution)
			return nil
		},
	}
	rootCmd.Flags().StringVarP(&fixture, "fixture", "f", "voltage-divider", "built-in fixture circuit to solve")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each per-unknown solve")
	rootCmd.Flags().BoolVar(&debugInvariants, "debug-invariants", false, "assert determinant agreement across solves")

	if err := rootCmd.Execute(); err != nil {
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}
}

// fixtures are small, self-contained circuits used to exercise the solver
// without a front-end parser.
var fixtures = map[string]*circuit.Circuit{
	"voltage-divider":    voltageDividerFixture(),
	"inverting-amplifier": invertingAmplifierFixture(),
}

func fixtureNames() []string {
	names := make([]string, 0, len(fixtures))
	for n := range fixtures {
		names = append(names, n)
	}
	return names
}

func nodeIndex(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	panic("linnetcheck: unknown fixture node " + name)
}

// voltageDividerFixture is §8 scenario 1: in -U1-> gnd, in -R1-> mid, mid -R2-> gnd.
func voltageDividerFixture() *circuit.Circuit {
	names := []string{"in", "mid", "gnd"}
	c := &circuit.Circuit{NodeNames: names}
	in, mid, gnd := nodeIndex(names, "in"), nodeIndex(names, "mid"), nodeIndex(names, "gnd")
	c.Devices = []circuit.Device{
		{Type: circuit.U, Name: "U1", Nodes: []int{in, gnd}, CtrlProbe: -1},
		{Type: circuit.R, Name: "R1", Nodes: []int{in, mid}, CtrlProbe: -1},
		{Type: circuit.R, Name: "R2", Nodes: []int{mid, gnd}, CtrlProbe: -1},
	}
	c.Results = []circuit.ResultRequest{{Name: "output", Dependents: []string{"mid"}}}
	return c
}

// invertingAmplifierFixture is §8 scenario 2: an ideal op-amp inverting
// amplifier with input resistor R1 and feedback resistor R2.
func invertingAmplifierFixture() *circuit.Circuit {
	names := []string{"in", "gnd", "vminus", "out"}
	c := &circuit.Circuit{NodeNames: names}
	in, gnd, vminus, out := nodeIndex(names, "in"), nodeIndex(names, "gnd"), nodeIndex(names, "vminus"), nodeIndex(names, "out")
	c.Devices = []circuit.Device{
		{Type: circuit.U, Name: "U1", Nodes: []int{in, gnd}, CtrlProbe: -1},
		{Type: circuit.R, Name: "R1", Nodes: []int{in, vminus}, CtrlProbe: -1},
		{Type: circuit.R, Name: "R2", Nodes: []int{vminus, out}, CtrlProbe: -1},
		{Type: circuit.OpAmp, Name: "OP1", Nodes: []int{gnd, vminus, out}, CtrlProbe: -1},
	}
	c.Results = []circuit.ResultRequest{{Name: "output", Dependents: []string{"out"}}}
	return c
}
