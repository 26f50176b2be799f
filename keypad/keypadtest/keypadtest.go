// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package keypadtest is meant to be used to test drivers and programs that
// scan a 4x4 matrix keypad without the hardware.
//
// Matrix simulates the wiring of the keypad: pressing a key connects its row
// line to its column line, so the row reads the level the column is driven
// to. A row with no connected low column reads high only when its pull-up is
// enabled.
package keypadtest

import (
	"fmt"
	"sync"

	"github.com/GermanBionicSystems/keylcd/keypad"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Matrix is a simulated keypad. It is safe for concurrent use.
type Matrix struct {
	// Rows and Cols are the pins to hand to keypad.New.
	Rows [keypad.Size]*RowPin
	Cols [keypad.Size]*gpiotest.Pin

	mu      sync.Mutex
	pressed [keypad.Size][keypad.Size]bool
	reads   int
}

// NewMatrix returns a simulated keypad with all keys up. Pins are named
// ROW0..ROW3 and COL0..COL3.
func NewMatrix() *Matrix {
	m := &Matrix{}
	for i := range keypad.Size {
		m.Rows[i] = &RowPin{Pin: gpiotest.Pin{N: fmt.Sprintf("ROW%d", i), Num: i}, m: m, row: i}
		m.Cols[i] = &gpiotest.Pin{N: fmt.Sprintf("COL%d", i), Num: keypad.Size + i, L: gpio.High}
	}
	return m
}

// Pins returns the wiring to pass to keypad.New.
func (m *Matrix) Pins() *keypad.Pins {
	p := &keypad.Pins{}
	for i := range keypad.Size {
		p.Rows[i] = m.Rows[i]
		p.Cols[i] = m.Cols[i]
	}
	return p
}

// Press holds down the key at (row, col).
func (m *Matrix) Press(row, col int) {
	m.set(row, col, true)
}

// Release lets go of the key at (row, col).
func (m *Matrix) Release(row, col int) {
	m.set(row, col, false)
}

// ReleaseAll lets go of every key.
func (m *Matrix) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressed = [keypad.Size][keypad.Size]bool{}
}

// PressKey holds down the key labelled k in layout l.
func (m *Matrix) PressKey(l keypad.Matrix, k keypad.Key) error {
	row, col, ok := l.Find(k)
	if !ok {
		return fmt.Errorf("keypadtest: no key %q in layout", k)
	}
	m.Press(row, col)
	return nil
}

// ReleaseKey lets go of the key labelled k in layout l.
func (m *Matrix) ReleaseKey(l keypad.Matrix, k keypad.Key) error {
	row, col, ok := l.Find(k)
	if !ok {
		return fmt.Errorf("keypadtest: no key %q in layout", k)
	}
	m.Release(row, col)
	return nil
}

// Pressed reports whether the key at (row, col) is held down.
func (m *Matrix) Pressed(row, col int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pressed[row][col]
}

// Reads returns how many times any row was read.
func (m *Matrix) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// ActiveColumns returns the columns currently driven low.
func (m *Matrix) ActiveColumns() []int {
	var out []int
	for j, c := range m.Cols {
		if c.Read() == gpio.Low {
			out = append(out, j)
		}
	}
	return out
}

func (m *Matrix) set(row, col int, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressed[row][col] = v
}

func (m *Matrix) level(row int, pull gpio.Pull) gpio.Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	for j := range keypad.Size {
		if m.pressed[row][j] && m.Cols[j].Read() == gpio.Low {
			return gpio.Low
		}
	}
	return pull == gpio.PullUp
}

// RowPin is a row line of a Matrix. It embeds a gpiotest.Pin for everything
// but Read.
type RowPin struct {
	gpiotest.Pin

	m   *Matrix
	row int
}

// Read returns the level of the row given the pressed keys and the columns.
func (p *RowPin) Read() gpio.Level {
	p.Lock()
	pull := p.P
	p.Unlock()
	return p.m.level(p.row, pull)
}

var _ gpio.PinIO = &RowPin{}
