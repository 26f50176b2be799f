// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package board opens the GPIO lines a keypad and an HD44780 display are
// wired to and hands them out as ready to use pin sets.
//
// Three backends are available: periph drives the SoC registers through
// periph.io/x/host, cdev goes through the Linux GPIO character device, and
// sim replaces the hardware with keypadtest and hd44780test simulators.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/keylcd/hd44780"
	"github.com/GermanBionicSystems/keylcd/hd44780/hd44780test"
	"github.com/GermanBionicSystems/keylcd/keypad"
	"github.com/GermanBionicSystems/keylcd/keypad/keypadtest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Backend selects how the GPIO lines are reached.
type Backend string

const (
	Periph Backend = "periph"
	Cdev   Backend = "cdev"
	Sim    Backend = "sim"
)

// Backends lists the supported backends.
var Backends = []Backend{Periph, Cdev, Sim}

// ParseBackend returns the backend named s.
func ParseBackend(s string) (Backend, error) {
	for _, b := range Backends {
		if string(b) == s {
			return b, nil
		}
	}
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return "", fmt.Errorf("board: unknown backend %q, want one of %s", s, strings.Join(names, ", "))
}

// SimHardware is the simulated hardware behind the sim backend.
type SimHardware struct {
	Matrix     *keypadtest.Matrix
	Controller *hd44780test.Controller
}

// Board holds the opened lines. It is the single owner of the pins.
type Board struct {
	// Keypad and LCD are the pin sets for keypad.New and hd44780.New.
	Keypad *keypad.Pins
	LCD    *hd44780.Pins
	// Sim is set for the sim backend only.
	Sim *SimHardware

	wiring  *Wiring
	backend Backend
	cols    [keypad.Size]gpio.PinIO
	lcd     []gpio.PinIO
	closers []func() error
}

// Open validates w and opens its pins with the given backend.
func Open(w *Wiring, backend Backend) (*Board, error) {
	if w == nil {
		w = DefaultWiring()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	var b *Board
	var err error
	switch backend {
	case Periph:
		b, err = openPeriph(w)
	case Cdev:
		b, err = openCdev(w)
	case Sim:
		b = openSim()
	default:
		return nil, fmt.Errorf("board: unknown backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	b.wiring = w
	b.backend = backend
	return b, nil
}

// byName resolves every pin of w, in the order of w.pins, and assembles a
// Board from them.
func byName(w *Wiring, resolve func(name string) (gpio.PinIO, error)) (*Board, error) {
	var pins []gpio.PinIO
	for _, p := range w.pins() {
		if p.name == "" {
			pins = append(pins, nil)
			continue
		}
		pin, err := resolve(p.name)
		if err != nil {
			return nil, fmt.Errorf("board: %s: %w", p.role, err)
		}
		pins = append(pins, pin)
	}
	b := &Board{Keypad: &keypad.Pins{}, LCD: &hd44780.Pins{}}
	for i := range keypad.Size {
		b.Keypad.Rows[i] = pins[i]
		b.Keypad.Cols[i] = pins[keypad.Size+i]
		b.cols[i] = pins[keypad.Size+i]
	}
	lcd := pins[2*keypad.Size:]
	b.LCD.RS = lcd[0]
	b.LCD.E = lcd[1]
	for i := range b.LCD.Data {
		b.LCD.Data[i] = lcd[2+i]
	}
	b.lcd = lcd[:6]
	if bl := lcd[6]; bl != nil {
		b.LCD.Backlight = bl
		b.lcd = append(b.lcd, bl)
	}
	return b, nil
}

func openPeriph(w *Wiring) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	return byName(w, func(name string) (gpio.PinIO, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("unknown pin %q", name)
		}
		return p, nil
	})
}

func openSim() *Board {
	m := keypadtest.NewMatrix()
	c := hd44780test.NewController()
	b := &Board{
		Keypad: m.Pins(),
		LCD:    c.Pins(),
		Sim:    &SimHardware{Matrix: m, Controller: c},
	}
	for i, p := range m.Cols {
		b.cols[i] = p
	}
	b.lcd = []gpio.PinIO{c.RS, c.E, c.Data[0], c.Data[1], c.Data[2], c.Data[3]}
	return b
}

// Backend returns the backend the board was opened with.
func (b *Board) Backend() Backend {
	return b.backend
}

// Wiring returns the wiring the board was opened with.
func (b *Board) Wiring() *Wiring {
	return b.wiring
}

// NewKeypad returns a keypad on the board pins, configured from the wiring.
func (b *Board) NewKeypad() (*keypad.Dev, error) {
	m, err := b.wiring.Layout()
	if err != nil {
		return nil, err
	}
	return keypad.New(b.Keypad, &m, b.wiring.KeypadOpts())
}

// NewLCD initializes the display on the board pins, configured from the
// wiring.
func (b *Board) NewLCD() (*hd44780.Dev, error) {
	return hd44780.New(b.LCD, b.wiring.LCDOpts())
}

func (b *Board) String() string {
	return fmt.Sprintf("Board{%s}", b.backend)
}

// Halt drives the keypad columns high then releases them to input, drives
// the display lines low and releases the backend resources.
func (b *Board) Halt() error {
	var errs []error
	for i, c := range b.cols {
		if c == nil {
			continue
		}
		if err := c.Out(gpio.High); err != nil {
			errs = append(errs, fmt.Errorf("board: column %d: %w", i, err))
			continue
		}
		if err := c.In(gpio.Float, gpio.NoEdge); err != nil {
			errs = append(errs, fmt.Errorf("board: column %d: %w", i, err))
		}
	}
	for _, p := range b.lcd {
		if err := p.Out(gpio.Low); err != nil {
			errs = append(errs, fmt.Errorf("board: %s: %w", p, err))
		}
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, fmt.Errorf("board: %w", err))
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
