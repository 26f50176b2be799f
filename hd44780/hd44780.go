// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 writes text lines to a Hitachi HD44780 character LCD wired
// in 4-bit mode directly to GPIO pins: register select (RS), enable (E) and
// the upper data lines D4-D7. R/W is tied to ground, so the controller is
// never read back and every transfer relies on fixed delays.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// Mode selects the register a byte is written to.
type Mode bool

const (
	// Command writes to the instruction register (RS low).
	Command Mode = false
	// Data writes to the data register (RS high), i.e. a character.
	Data Mode = true
)

func (m Mode) String() string {
	if m == Data {
		return "Data"
	}
	return "Command"
}

// Line is the display RAM address where a line starts. Sending it as a
// command moves the write cursor there.
type Line byte

const (
	Line1 Line = 0x80
	Line2 Line = 0xC0
)

// Width is the number of characters of a line on a 16x2 module.
const Width = 16

// initSequence brings the controller from its power-on 8-bit state to 4-bit
// mode, then sets entry mode, display control, function set and clears the
// display. The first two bytes are sent as four nibbles 3, 3, 3, 2: the
// controller sees three 8-bit function sets and then switches to 4 bits.
var initSequence = []byte{
	0x33, // 8-bit function set, twice
	0x32, // 8-bit function set, then 4-bit function set
	0x06, // entry mode: cursor moves right, no shift
	0x0C, // display on, cursor off, blink off
	0x28, // 4-bit bus, 2 lines, 5x8 font
	0x01, // clear display
}

// Timing holds the delays of a nibble transfer.
type Timing struct {
	// Settle is waited before raising E and again after lowering it. Must be
	// positive.
	Settle time.Duration
	// Pulse is how long E is held high.
	Pulse time.Duration
}

// DefaultTiming is slow enough for the HD44780 clones found on 16x2 modules
// when the busy flag is not read.
var DefaultTiming = Timing{
	Settle: 500 * time.Microsecond,
	Pulse:  500 * time.Microsecond,
}

// Pins is the wiring of the display. Backlight is optional.
type Pins struct {
	RS gpio.PinOut
	E  gpio.PinOut
	// Data holds D4, D5, D6 and D7 in that order.
	Data      [4]gpio.PinOut
	Backlight gpio.PinOut
}

// Opts holds the display configuration. Zero fields take the value of
// DefaultOpts.
type Opts struct {
	// Width is the number of characters of a line.
	Width  int
	Timing Timing
	// Sleep is used for every delay. Tests replace it with a simulated clock.
	Sleep func(time.Duration)

	_ struct{}
}

// DefaultOpts is the configuration of a 16x2 module.
var DefaultOpts = Opts{
	Width:  Width,
	Timing: DefaultTiming,
	Sleep:  time.Sleep,
}

// Dev is an HD44780 display driven over 6 GPIO lines.
//
// Dev is not safe for concurrent use. A transfer must not be interrupted: a
// controller left between two nibbles interprets the next byte shifted.
type Dev struct {
	rs        gpio.PinOut
	e         gpio.PinOut
	data      [4]gpio.PinOut
	backlight *GPIOMonoBacklight
	width     int
	timing    Timing
	sleep     func(time.Duration)
}

// New drives all bus lines low, runs the controller initialization sequence
// and returns a display ready for WriteLine. opts may be nil to use
// DefaultOpts.
func New(p *Pins, opts *Opts) (*Dev, error) {
	if err := checkPins(p); err != nil {
		return nil, err
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
		if o.Width == 0 {
			o.Width = Width
		}
		if o.Timing == (Timing{}) {
			o.Timing = DefaultTiming
		}
		if o.Sleep == nil {
			o.Sleep = time.Sleep
		}
	}
	if o.Width < 0 {
		return nil, fmt.Errorf("hd44780: invalid width %d", o.Width)
	}
	if o.Timing.Pulse <= 0 || o.Timing.Settle <= 0 {
		return nil, fmt.Errorf("hd44780: invalid timing %+v", o.Timing)
	}
	d := &Dev{
		rs:     p.RS,
		e:      p.E,
		data:   p.Data,
		width:  o.Width,
		timing: o.Timing,
		sleep:  o.Sleep,
	}
	if p.Backlight != nil {
		d.backlight = NewBacklight(p.Backlight)
	}
	return d, d.init()
}

func (d *Dev) init() error {
	for _, p := range d.bus() {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("hd44780: %s: %w", p, err)
		}
	}
	for _, b := range initSequence {
		if err := d.SendByte(b, Command); err != nil {
			return err
		}
	}
	d.sleep(d.timing.Settle)
	if d.backlight != nil {
		return d.Backlight(0xff)
	}
	return nil
}

// SendByte writes value to the controller as two nibbles, high nibble first.
func (d *Dev) SendByte(value byte, mode Mode) error {
	if err := d.rs.Out(gpio.Level(mode)); err != nil {
		return fmt.Errorf("hd44780: RS: %w", err)
	}
	if err := d.writeNibble(value >> 4); err != nil {
		return err
	}
	return d.writeNibble(value & 0x0f)
}

// WriteLine writes text at line, padded with spaces or truncated to the
// display width. Whatever was on the line before is overwritten.
//
// Each byte of text is one character of the controller's font; multi-byte
// UTF-8 sequences are not translated.
func (d *Dev) WriteLine(text string, line Line) error {
	if err := d.SendByte(byte(line), Command); err != nil {
		return err
	}
	s := Pad(text, d.width)
	for i := range len(s) {
		if err := d.SendByte(s[i], Data); err != nil {
			return err
		}
	}
	return nil
}

// Pad returns text padded with trailing spaces or truncated to exactly width
// bytes. A negative width is treated as zero.
func Pad(text string, width int) string {
	width = max(width, 0)
	if len(text) >= width {
		return text[:width]
	}
	return text + strings.Repeat(" ", width-len(text))
}

// Width returns the number of characters of a line.
func (d *Dev) Width() int {
	return d.width
}

// Backlight turns the backlight on or off. It returns
// display.ErrNotImplemented when no backlight pin was wired.
func (d *Dev) Backlight(intensity display.Intensity) error {
	if d.backlight == nil {
		return fmt.Errorf("hd44780: %w", display.ErrNotImplemented)
	}
	return d.backlight.Backlight(intensity)
}

func (d *Dev) String() string {
	return fmt.Sprintf("HD44780{RS: %s, E: %s, D4-D7: %s %s %s %s, Width: %d}",
		d.rs, d.e, d.data[0], d.data[1], d.data[2], d.data[3], d.width)
}

// Halt leaves the bus idle, with every line low, and turns the backlight off.
// The text on the display is kept.
func (d *Dev) Halt() error {
	var errs []error
	for _, p := range d.bus() {
		if err := p.Out(gpio.Low); err != nil {
			errs = append(errs, fmt.Errorf("hd44780: %s: %w", p, err))
		}
	}
	if d.backlight != nil {
		if err := d.backlight.Backlight(0); err != nil {
			errs = append(errs, fmt.Errorf("hd44780: backlight: %w", err))
		}
	}
	return errors.Join(errs...)
}

// writeNibble clears D4-D7, raises the lines set in the low 4 bits of n and
// latches them.
func (d *Dev) writeNibble(n byte) error {
	for i, p := range d.data {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("hd44780: D%d: %w", i+4, err)
		}
	}
	for i, p := range d.data {
		if n&(1<<i) == 0 {
			continue
		}
		if err := p.Out(gpio.High); err != nil {
			return fmt.Errorf("hd44780: D%d: %w", i+4, err)
		}
	}
	return d.toggleEnable()
}

// toggleEnable pulses E. The controller latches D4-D7 on the falling edge.
func (d *Dev) toggleEnable() error {
	d.sleep(d.timing.Settle)
	if err := d.e.Out(gpio.High); err != nil {
		return fmt.Errorf("hd44780: E: %w", err)
	}
	d.sleep(d.timing.Pulse)
	if err := d.e.Out(gpio.Low); err != nil {
		return fmt.Errorf("hd44780: E: %w", err)
	}
	d.sleep(d.timing.Settle)
	return nil
}

func (d *Dev) bus() []gpio.PinOut {
	return []gpio.PinOut{d.e, d.rs, d.data[0], d.data[1], d.data[2], d.data[3]}
}

func checkPins(p *Pins) error {
	if p == nil {
		return errors.New("hd44780: no pins")
	}
	names := []string{"RS", "E", "D4", "D5", "D6", "D7"}
	pins := []gpio.PinOut{p.RS, p.E, p.Data[0], p.Data[1], p.Data[2], p.Data[3]}
	seen := make(map[string]string, len(pins))
	for i, pin := range pins {
		if pin == nil {
			return fmt.Errorf("hd44780: %s has no pin", names[i])
		}
		if prev, ok := seen[pin.Name()]; ok {
			return fmt.Errorf("hd44780: %s and %s share pin %s", prev, names[i], pin.Name())
		}
		seen[pin.Name()] = names[i]
	}
	if p.Backlight != nil {
		if prev, ok := seen[p.Backlight.Name()]; ok {
			return fmt.Errorf("hd44780: %s and backlight share pin %s", prev, p.Backlight.Name())
		}
	}
	return nil
}

var _ conn.Resource = &Dev{}
var _ display.DisplayBacklight = &Dev{}
