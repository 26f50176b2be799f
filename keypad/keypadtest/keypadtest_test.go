// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package keypadtest

import (
	"testing"

	"github.com/GermanBionicSystems/keylcd/keypad"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
)

func TestRowFollowsColumn(t *testing.T) {
	m := NewMatrix()
	for _, r := range m.Rows {
		if err := r.In(gpio.PullUp, gpio.NoEdge); err != nil {
			t.Fatal(err)
		}
	}
	m.Press(2, 1)
	if got := m.Rows[2].Read(); got != gpio.High {
		t.Errorf("row 2 with idle columns = %s, want High", got)
	}
	_ = m.Cols[1].Out(gpio.Low)
	if got := m.Rows[2].Read(); got != gpio.Low {
		t.Errorf("row 2 with column 1 low = %s, want Low", got)
	}
	for _, i := range []int{0, 1, 3} {
		if got := m.Rows[i].Read(); got != gpio.High {
			t.Errorf("row %d = %s, want High", i, got)
		}
	}
	if diff := cmp.Diff(m.ActiveColumns(), []int{1}); diff != "" {
		t.Errorf("ActiveColumns() (-got +want):\n%s", diff)
	}
	m.Release(2, 1)
	if got := m.Rows[2].Read(); got != gpio.High {
		t.Errorf("released row 2 = %s, want High", got)
	}
}

func TestPressKey(t *testing.T) {
	m := NewMatrix()
	if err := m.PressKey(keypad.Default, '#'); err != nil {
		t.Fatal(err)
	}
	if !m.Pressed(3, 2) {
		t.Error("'#' is not held at (3,2)")
	}
	if err := m.ReleaseKey(keypad.Default, '#'); err != nil {
		t.Fatal(err)
	}
	if m.Pressed(3, 2) {
		t.Error("'#' still held")
	}
	if err := m.PressKey(keypad.Default, 'Z'); err == nil {
		t.Error("PressKey('Z') succeeded")
	}
}

func TestPinsNames(t *testing.T) {
	p := NewMatrix().Pins()
	var got []string
	for _, r := range p.Rows {
		got = append(got, r.Name())
	}
	for _, c := range p.Cols {
		got = append(got, c.Name())
	}
	want := []string{"ROW0", "ROW1", "ROW2", "ROW3", "COL0", "COL1", "COL2", "COL3"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("pin names (-got +want):\n%s", diff)
	}
}
