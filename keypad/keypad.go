// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package keypad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

const (
	// Size is the number of rows and of columns of the matrix.
	Size = 4

	// symbols is the set of legends a 4x4 keypad can carry.
	symbols = "0123456789*#ABCD"
)

// Key is the legend printed on a key.
type Key byte

func (k Key) String() string {
	return string(rune(k))
}

// Matrix maps a (row, column) crossing to the key printed at that position.
type Matrix [Size][Size]Key

// Default is the legend of the common 4x4 membrane keypad.
var Default = Matrix{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// ParseMatrix builds a Matrix from four rows of four legends each, e.g.
// []string{"123A", "456B", "789C", "*0#D"}.
func ParseMatrix(rows []string) (Matrix, error) {
	var m Matrix
	if len(rows) != Size {
		return m, fmt.Errorf("keypad: layout has %d rows, want %d", len(rows), Size)
	}
	for i, r := range rows {
		if len(r) != Size {
			return m, fmt.Errorf("keypad: layout row %d is %q, want %d keys", i, r, Size)
		}
		for j := range Size {
			k := Key(r[j])
			if !k.valid() {
				return m, fmt.Errorf("keypad: layout row %d has invalid key %q", i, r[j])
			}
			m[i][j] = k
		}
	}
	return m, nil
}

// Find returns the crossing of k in the matrix.
func (m *Matrix) Find(k Key) (row, col int, ok bool) {
	for i := range Size {
		for j := range Size {
			if m[i][j] == k {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// validate checks that every crossing carries a legend of the keypad
// alphabet.
func (m *Matrix) validate() error {
	for i := range Size {
		for j := range Size {
			if !m[i][j].valid() {
				return fmt.Errorf("keypad: layout row %d has invalid key %q", i, byte(m[i][j]))
			}
		}
	}
	return nil
}

func (k Key) valid() bool {
	for i := range len(symbols) {
		if symbols[i] == byte(k) {
			return true
		}
	}
	return false
}

// Pins is the wiring of the keypad. Row and column pins must be distinct.
type Pins struct {
	Rows [Size]gpio.PinIO
	Cols [Size]gpio.PinOut
}

// Opts holds the scanning parameters.
type Opts struct {
	// Interval is the pause between two scan cycles in Run.
	Interval time.Duration
	// ReleasePoll is the pause between two reads of a pressed row while
	// waiting for the key to be released.
	ReleasePoll time.Duration
	// Debounce is the quiet time observed after a release, before the next
	// crossing is looked at.
	Debounce time.Duration
	// Sleep is used for every pause. Tests replace it with a simulated clock.
	Sleep func(time.Duration)

	_ struct{}
}

// DefaultOpts is the recommended scanning configuration.
var DefaultOpts = Opts{
	Interval:    10 * time.Millisecond,
	ReleasePoll: time.Millisecond,
	Debounce:    20 * time.Millisecond,
	Sleep:       time.Sleep,
}

// Handler receives each key as soon as it is detected, before the scanner
// waits for the release.
type Handler func(k Key)

// PositionHandler is like Handler but also receives the crossing the key was
// found at. Layouts may repeat a legend, so the crossing cannot be recovered
// from the key alone.
type PositionHandler func(k Key, row, col int)

func (h Handler) withPosition() PositionHandler {
	if h == nil {
		return nil
	}
	return func(k Key, _, _ int) { h(k) }
}

// Dev is a matrix keypad.
type Dev struct {
	rows   [Size]gpio.PinIO
	cols   [Size]gpio.PinOut
	matrix Matrix
	opts   Opts
}

// New configures the pins and returns a keypad ready to be scanned.
//
// Every column is driven high (inactive) and every row is set to input with
// the pull-up enabled. m may be nil to use Default, opts may be nil to use
// DefaultOpts.
func New(p *Pins, m *Matrix, opts *Opts) (*Dev, error) {
	if err := checkPins(p); err != nil {
		return nil, err
	}
	d := &Dev{rows: p.Rows, cols: p.Cols, matrix: Default, opts: DefaultOpts}
	if m != nil {
		if err := m.validate(); err != nil {
			return nil, err
		}
		d.matrix = *m
	}
	if opts != nil {
		d.opts = *opts
		if d.opts.Sleep == nil {
			d.opts.Sleep = time.Sleep
		}
	}
	for j, c := range d.cols {
		if err := c.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("keypad: column %d (%s): %w", j, c, err)
		}
	}
	for i, r := range d.rows {
		if err := r.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("keypad: row %d (%s): %w", i, r, err)
		}
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("keypad{rows: %s %s %s %s, cols: %s %s %s %s}",
		d.rows[0], d.rows[1], d.rows[2], d.rows[3],
		d.cols[0], d.cols[1], d.cols[2], d.cols[3])
}

// Matrix returns the legend in use.
func (d *Dev) Matrix() Matrix {
	return d.matrix
}

// Scan runs one scan cycle.
//
// When a key is found, h is called with it, the scanner waits until the key
// is released, restores the column and returns the key. Only the first key
// in scan order is reported per cycle. When no key is down, Scan returns
// false.
func (d *Dev) Scan(h Handler) (Key, bool, error) {
	k, _, _, ok, err := d.scan(h.withPosition())
	return k, ok, err
}

// ScanPosition is like Scan but hands the crossing of the key to h and
// returns it.
func (d *Dev) ScanPosition(h PositionHandler) (k Key, row, col int, ok bool, err error) {
	return d.scan(h)
}

func (d *Dev) scan(h PositionHandler) (Key, int, int, bool, error) {
	for j, c := range d.cols {
		if err := c.Out(gpio.Low); err != nil {
			return 0, 0, 0, false, fmt.Errorf("keypad: column %d: %w", j, err)
		}
		for i, r := range d.rows {
			if r.Read() != gpio.Low {
				continue
			}
			k := d.matrix[i][j]
			if h != nil {
				h(k, i, j)
			}
			d.waitRelease(r)
			if err := c.Out(gpio.High); err != nil {
				return k, i, j, true, fmt.Errorf("keypad: column %d: %w", j, err)
			}
			return k, i, j, true, nil
		}
		if err := c.Out(gpio.High); err != nil {
			return 0, 0, 0, false, fmt.Errorf("keypad: column %d: %w", j, err)
		}
	}
	return 0, 0, 0, false, nil
}

// Run scans continuously until ctx is done or a pin fails.
//
// ctx is only checked between two cycles, so a cancellation never leaves a
// column driven low. Run returns ctx.Err() when cancelled.
func (d *Dev) Run(ctx context.Context, h Handler) error {
	return d.RunPosition(ctx, h.withPosition())
}

// RunPosition is like Run but hands the crossing of each key to h.
func (d *Dev) RunPosition(ctx context.Context, h PositionHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, _, _, _, err := d.scan(h); err != nil {
			return err
		}
		d.opts.Sleep(d.opts.Interval)
	}
}

// Halt drives every column back to its inactive high level.
func (d *Dev) Halt() error {
	var errs []error
	for j, c := range d.cols {
		if err := c.Out(gpio.High); err != nil {
			errs = append(errs, fmt.Errorf("keypad: column %d: %w", j, err))
		}
	}
	return errors.Join(errs...)
}

// waitRelease blocks until r reads high again. The wait is unbounded: the
// key is held by a person.
func (d *Dev) waitRelease(r gpio.PinIn) {
	for r.Read() == gpio.Low {
		d.opts.Sleep(d.opts.ReleasePoll)
	}
	if d.opts.Debounce > 0 {
		d.opts.Sleep(d.opts.Debounce)
	}
}

func checkPins(p *Pins) error {
	if p == nil {
		return errors.New("keypad: no pins")
	}
	seen := make(map[string]string, 2*Size)
	add := func(kind string, ix int, name string) error {
		label := fmt.Sprintf("%s %d", kind, ix)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("keypad: %s and %s share pin %s", prev, label, name)
		}
		seen[name] = label
		return nil
	}
	for i, r := range p.Rows {
		if r == nil {
			return fmt.Errorf("keypad: row %d has no pin", i)
		}
		if err := add("row", i, r.Name()); err != nil {
			return err
		}
	}
	for j, c := range p.Cols {
		if c == nil {
			return fmt.Errorf("keypad: column %d has no pin", j)
		}
		if err := add("column", j, c.Name()); err != nil {
			return err
		}
	}
	return nil
}

var _ conn.Resource = &Dev{}
