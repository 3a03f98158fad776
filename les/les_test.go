// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package les

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/linnet/circuit"
	"github.com/cpmech/linnet/net"
)

func idx(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	panic("not found: " + name)
}

// voltageDivider builds §8 scenario 1: in -U1-> gnd, in -R1-> mid, mid -R2-> gnd.
func voltageDivider() *circuit.Circuit {
	names := []string{"in", "mid", "gnd"}
	c := &circuit.Circuit{NodeNames: names}
	in, mid, gnd := idx(names, "in"), idx(names, "mid"), idx(names, "gnd")
	c.Devices = []circuit.Device{
		{Type: circuit.U, Name: "U1", Nodes: []int{in, gnd}, CtrlProbe: -1},
		{Type: circuit.R, Name: "R1", Nodes: []int{in, mid}, CtrlProbe: -1},
		{Type: circuit.R, Name: "R2", Nodes: []int{mid, gnd}, CtrlProbe: -1},
	}
	return c
}

func TestFillVoltageDivider(tst *testing.T) {
	chk.PrintTitle("FillVoltageDivider")
	c := voltageDivider()
	var cfg net.Config
	cfg.SetDefault()
	table, _, err := net.Analyse(c, cfg)
	if err != nil {
		tst.Fatalf("analyse failed: %v", err)
	}

	m := table.NumUnknowns()
	n := m + table.NumKnowns()
	chk.IntAssert(m, 3)
	chk.IntAssert(n, 4)
	mx := NewMatrix(m, n)
	b := New(c, table)
	b.Fill(mx)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if !mx.A[i][j].CheckOrder() {
				tst.Fatalf("entry [%d][%d] violates coefficient order invariant: %v", i, j, mx.A[i][j])
			}
		}
	}

	// re-fill must be idempotent (Reset clears prior contents, §4.4)
	mx2 := NewMatrix(m, n)
	b.Fill(mx2)
	b.Fill(mx2)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if len(mx.A[i][j]) != len(mx2.A[i][j]) {
				tst.Fatalf("re-fill changed entry [%d][%d]", i, j)
			}
		}
	}
}

func TestMatrixAddIgnoresOutOfRange(tst *testing.T) {
	chk.PrintTitle("MatrixAddIgnoresOutOfRange")
	mx := NewMatrix(2, 3)
	mx.Add(-1, 0, 5, 0) // ground reference: must be a silent no-op
	mx.Add(0, -1, 5, 0)
	for i := 0; i < mx.M; i++ {
		for j := 0; j < mx.N; j++ {
			if !mx.A[i][j].IsZero() {
				tst.Fatalf("out-of-range Add leaked into [%d][%d]", i, j)
			}
		}
	}
}
