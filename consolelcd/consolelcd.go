// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package consolelcd shows the text of a character LCD on the terminal using
// ANSI color codes, and renders it to images.
//
// Useful when the module is not wired yet, or to follow a simulated display.
package consolelcd

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/GermanBionicSystems/keylcd/hd44780"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Panel colors of a common yellow-green module.
var (
	DefaultBacklight = color.NRGBA{R: 0x9c, G: 0xc4, B: 0x3c, A: 0xff}
	DefaultInk       = color.NRGBA{R: 0x1e, G: 0x2a, B: 0x10, A: 0xff}
	unlit            = color.NRGBA{R: 0x50, G: 0x58, B: 0x48, A: 0xff}
)

// Opts represents the options available for this display.
type Opts struct {
	// W receives the output. Defaults to a colorable stdout.
	W io.Writer
	// Cols and Rows are the size of the panel in characters. Default to 16x2.
	Cols    int
	Rows    int
	Palette *ansi256.Palette
	// Backlight is the color of the frame. Defaults to DefaultBacklight.
	Backlight color.Color

	_ struct{}
}

// Dev is a character LCD emulator that outputs to the console.
type Dev struct {
	mu        sync.Mutex
	w         io.Writer
	cols      int
	palette   *ansi256.Palette
	backlight color.NRGBA
	lit       bool
	lines     []string
	drawn     bool
	buf       bytes.Buffer
}

// New returns a Dev that displays at the console. opts may be nil.
func New(opts *Opts) *Dev {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Rows <= 0 {
		o.Rows = 2
	}
	d := &Dev{
		w:         o.W,
		cols:      o.Cols,
		palette:   o.Palette,
		backlight: DefaultBacklight,
		lit:       true,
		lines:     make([]string, o.Rows),
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	if d.cols <= 0 {
		d.cols = hd44780.Width
	}
	if d.palette == nil {
		d.palette = ansi256.Default
	}
	if o.Backlight != nil {
		d.backlight = color.NRGBAModel.Convert(o.Backlight).(color.NRGBA)
	}
	for i := range d.lines {
		d.lines[i] = hd44780.Pad("", d.cols)
	}
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("ConsoleLCD{%dx%d}", d.cols, len(d.lines))
}

// Lines returns the text last drawn, padded to the panel width.
func (d *Dev) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...)
}

// Draw replaces the text of the panel and redraws it in place. Missing lines
// are blank, extra lines are dropped.
func (d *Dev) Draw(lines []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		s := ""
		if i < len(lines) {
			s = lines[i]
		}
		d.lines[i] = hd44780.Pad(s, d.cols)
	}
	return d.refresh()
}

// Backlight switches the frame between the backlight color and an unlit
// gray. Any intensity above zero is on.
func (d *Dev) Backlight(intensity display.Intensity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lit = intensity > 0
	return d.refresh()
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes and moves below the panel.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := io.WriteString(d.w, "\033[0m\n")
	d.drawn = false
	return err
}

func (d *Dev) refresh() error {
	d.buf.Reset()
	if d.drawn {
		// Back to the top of the previous frame.
		fmt.Fprintf(&d.buf, "\033[%dA", len(d.lines)+2)
	}
	frame := unlit
	if d.lit {
		frame = d.backlight
	}
	block := d.palette.Block(frame)
	edge := bytes.Repeat([]byte(block), d.cols+2)
	d.buf.WriteString("\r")
	d.buf.Write(edge)
	d.buf.WriteString("\033[0m\n")
	for _, l := range d.lines {
		d.buf.WriteString("\r")
		d.buf.WriteString(block)
		d.buf.WriteString("\033[0m")
		d.buf.WriteString(l)
		d.buf.WriteString(block)
		d.buf.WriteString("\033[0m\n")
	}
	d.buf.WriteString("\r")
	d.buf.Write(edge)
	d.buf.WriteString("\033[0m\n")
	_, err := d.buf.WriteTo(d.w)
	d.drawn = true
	return err
}

var _ display.DisplayBacklight = &Dev{}
var _ fmt.Stringer = &Dev{}
