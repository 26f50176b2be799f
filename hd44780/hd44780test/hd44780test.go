// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780test is meant to be used to test drivers and programs that
// write to an HD44780 character LCD over its parallel bus.
//
// Controller models the part of the chip a write-only 4-bit driver talks to:
// it latches D4-D7 on the falling edge of E, starts in 8-bit mode as after
// power-on, switches to 4-bit mode on the matching function set, and keeps
// the display RAM. When given a clock it also reports timing violations.
package hd44780test

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GermanBionicSystems/keylcd/hd44780"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

const (
	ramSize    = 0x80
	line2Start = 0x40
	line1End   = 0x27
	line2End   = 0x67
)

// Transfer is an instruction or character as decoded by the controller.
type Transfer struct {
	Mode  hd44780.Mode
	Value byte
}

func (t Transfer) String() string {
	return fmt.Sprintf("%s(0x%02x)", t.Mode, t.Value)
}

// Violation is a timing requirement that was not met.
type Violation struct {
	At     time.Duration
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.At, v.Reason)
}

// Controller is a simulated HD44780. It is safe for concurrent use.
type Controller struct {
	// Pins to hand to hd44780.New.
	RS   *Pin
	E    *Pin
	Data [4]*Pin

	// Cols is the number of characters per visible line.
	Cols int
	// MinPulse is the shortest accepted E high time.
	MinPulse time.Duration
	// MinSettle is the shortest accepted time between a bus change and a
	// rising E, and between a falling E and the next bus change.
	MinSettle time.Duration
	// Now returns the simulated time. Timing is not checked when nil.
	Now func() time.Duration
	// OnChange is called with the visible lines after each change of the
	// display RAM. It must not write to the pins.
	OnChange func(lines []string)

	mu         sync.Mutex
	fourBit    bool
	high       bool
	pending    byte
	ram        [ramSize]byte
	addr       byte
	decrement  bool
	displayOn  bool
	twoLines   bool
	transfers  []Transfer
	nibbles    []byte
	violations []Violation
	eHigh      bool
	eRise      time.Duration
	lastFall   time.Duration
	fell       bool
	lastChange time.Duration
}

// NewController returns a powered-on 16x2 controller whose timing limits
// are a little under hd44780.DefaultTiming.
func NewController() *Controller {
	c := &Controller{
		Cols:      hd44780.Width,
		MinPulse:  hd44780.DefaultTiming.Pulse / 2,
		MinSettle: hd44780.DefaultTiming.Settle / 2,
	}
	c.RS = c.newPin("RS", 0)
	c.E = c.newPin("E", 1)
	for i := range c.Data {
		c.Data[i] = c.newPin(fmt.Sprintf("D%d", i+4), i+2)
	}
	for i := range c.ram {
		c.ram[i] = ' '
	}
	return c
}

// Pins returns the wiring to pass to hd44780.New.
func (c *Controller) Pins() *hd44780.Pins {
	return &hd44780.Pins{
		RS:   c.RS,
		E:    c.E,
		Data: [4]gpio.PinOut{c.Data[0], c.Data[1], c.Data[2], c.Data[3]},
	}
}

// Transfers returns every instruction and character executed so far.
func (c *Controller) Transfers() []Transfer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Transfer(nil), c.transfers...)
}

// Nibbles returns the raw value of D7-D4 at every falling edge of E.
func (c *Controller) Nibbles() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.nibbles...)
}

// Violations returns the timing violations seen so far.
func (c *Controller) Violations() []Violation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Violation(nil), c.violations...)
}

// Reset forgets the recorded transfers, nibbles and violations. The
// controller state and display RAM are kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transfers = nil
	c.nibbles = nil
	c.violations = nil
}

// FourBit reports whether the controller has been switched to 4-bit mode.
func (c *Controller) FourBit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fourBit
}

// DisplayOn reports whether the display has been turned on.
func (c *Controller) DisplayOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayOn
}

// Address returns the display RAM address of the cursor.
func (c *Controller) Address() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// Lines returns the visible text: one line, or two once the controller is
// set to 2-line mode.
func (c *Controller) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines()
}

func (c *Controller) String() string {
	return "HD44780 simulator: " + strings.Join(c.Lines(), "|")
}

func (c *Controller) lines() []string {
	out := []string{string(c.ram[:c.Cols])}
	if c.twoLines {
		out = append(out, string(c.ram[line2Start:line2Start+c.Cols]))
	}
	return out
}

func (c *Controller) newPin(name string, num int) *Pin {
	return &Pin{Pin: gpiotest.Pin{N: name, Num: num}, c: c}
}

func (c *Controller) now() time.Duration {
	if c.Now == nil {
		return 0
	}
	return c.Now()
}

func (c *Controller) violate(at time.Duration, format string, args ...any) {
	c.violations = append(c.violations, Violation{At: at, Reason: fmt.Sprintf(format, args...)})
}

// changed is called after p was written.
func (c *Controller) changed(p *Pin, l gpio.Level) {
	c.mu.Lock()
	var lines []string
	if p == c.E {
		if c.edge(l) {
			lines = c.lines()
		}
	} else {
		c.busChanged(p)
	}
	hook := c.OnChange
	c.mu.Unlock()
	if lines != nil && hook != nil {
		hook(lines)
	}
}

func (c *Controller) busChanged(p *Pin) {
	if c.Now == nil {
		return
	}
	t := c.now()
	if c.eHigh {
		c.violate(t, "%s changed while E is high", p.N)
	}
	if c.fell && t-c.lastFall < c.MinSettle {
		c.violate(t, "%s changed %s after E fell, want %s", p.N, t-c.lastFall, c.MinSettle)
	}
	c.lastChange = t
}

// edge handles a write to E and reports whether the display RAM changed.
func (c *Controller) edge(l gpio.Level) bool {
	t := c.now()
	if l == gpio.High {
		if c.eHigh {
			return false
		}
		c.eHigh = true
		c.eRise = t
		if c.Now != nil && t-c.lastChange < c.MinSettle {
			c.violate(t, "E rose %s after the bus changed, want %s", t-c.lastChange, c.MinSettle)
		}
		return false
	}
	if !c.eHigh {
		return false
	}
	c.eHigh = false
	c.fell = true
	c.lastFall = t
	if c.Now != nil && t-c.eRise < c.MinPulse {
		c.violate(t, "E pulse of %s, want %s", t-c.eRise, c.MinPulse)
	}
	return c.latch()
}

func (c *Controller) latch() bool {
	var n byte
	for i, p := range c.Data {
		if p.Read() == gpio.High {
			n |= 1 << i
		}
	}
	c.nibbles = append(c.nibbles, n)
	mode := hd44780.Mode(c.RS.Read())
	if !c.fourBit {
		// D0-D3 are not wired: an 8-bit transfer carries zeros there.
		return c.execute(mode, n<<4)
	}
	if !c.high {
		c.high = true
		c.pending = n << 4
		return false
	}
	c.high = false
	return c.execute(mode, c.pending|n)
}

func (c *Controller) execute(mode hd44780.Mode, b byte) bool {
	c.transfers = append(c.transfers, Transfer{Mode: mode, Value: b})
	if mode == hd44780.Data {
		c.ram[c.addr] = b
		c.advance()
		return true
	}
	switch {
	case b&0x80 != 0:
		c.addr = b & 0x7f
	case b&0x40 != 0:
		// Character generator RAM address; custom characters are not modelled.
	case b&0x20 != 0:
		c.fourBit = b&0x10 == 0
		c.twoLines = b&0x08 != 0
		return true
	case b&0x10 != 0:
		// Cursor or display shift.
	case b&0x08 != 0:
		c.displayOn = b&0x04 != 0
	case b&0x04 != 0:
		c.decrement = b&0x02 == 0
	case b&0x02 != 0:
		c.addr = 0
	case b&0x01 != 0:
		for i := range c.ram {
			c.ram[i] = ' '
		}
		c.addr = 0
		c.decrement = false
		return true
	}
	return false
}

func (c *Controller) advance() {
	if c.decrement {
		switch c.addr {
		case 0:
			c.addr = line2End
		case line2Start:
			c.addr = line1End
		default:
			c.addr--
		}
		return
	}
	switch c.addr {
	case line1End:
		c.addr = line2Start
	case line2End, ramSize - 1:
		c.addr = 0
	default:
		c.addr++
	}
}

// Pin is a bus line of a Controller.
type Pin struct {
	gpiotest.Pin

	c *Controller
}

// Out sets the level and lets the controller react to it.
func (p *Pin) Out(l gpio.Level) error {
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.c.changed(p, l)
	return nil
}

var _ gpio.PinIO = &Pin{}
