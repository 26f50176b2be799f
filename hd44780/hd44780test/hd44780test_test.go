// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780test

import (
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/keylcd/hd44780"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
)

// strobe puts n on D4-D7 with RS at mode and pulses E.
func strobe(c *Controller, mode hd44780.Mode, n byte) {
	_ = c.RS.Out(gpio.Level(mode))
	for i, p := range c.Data {
		_ = p.Out(gpio.Level(n&(1<<i) != 0))
	}
	_ = c.E.Out(gpio.High)
	_ = c.E.Out(gpio.Low)
}

func TestPowerOnIsEightBit(t *testing.T) {
	c := NewController()
	if c.FourBit() {
		t.Fatal("controller starts in 4-bit mode")
	}
	strobe(c, hd44780.Command, 0x3)
	if c.FourBit() {
		t.Fatal("8-bit function set switched to 4-bit mode")
	}
	strobe(c, hd44780.Command, 0x2)
	if !c.FourBit() {
		t.Fatal("4-bit function set ignored")
	}
	// 0x0C as two nibbles.
	strobe(c, hd44780.Command, 0x0)
	strobe(c, hd44780.Command, 0xC)
	if !c.DisplayOn() {
		t.Error("display control ignored")
	}
	want := []Transfer{
		{hd44780.Command, 0x30},
		{hd44780.Command, 0x20},
		{hd44780.Command, 0x0C},
	}
	if diff := cmp.Diff(c.Transfers(), want); diff != "" {
		t.Errorf("Transfers() (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(c.Nibbles(), []byte{3, 2, 0, 0xC}); diff != "" {
		t.Errorf("Nibbles() (-got +want):\n%s", diff)
	}
}

func newDev(t *testing.T, c *Controller) *hd44780.Dev {
	t.Helper()
	d, err := hd44780.New(c.Pins(), &hd44780.Opts{Sleep: func(time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestLines(t *testing.T) {
	c := NewController()
	if got := len(c.Lines()); got != 1 {
		t.Errorf("lines before function set = %d, want 1", got)
	}
	d := newDev(t, c)
	if err := d.WriteLine("top", hd44780.Line1); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteLine("bottom", hd44780.Line2); err != nil {
		t.Fatal(err)
	}
	want := []string{"top             ", "bottom          "}
	if diff := cmp.Diff(c.Lines(), want); diff != "" {
		t.Errorf("Lines() (-got +want):\n%s", diff)
	}
	if s := c.String(); !strings.Contains(s, "top") || !strings.Contains(s, "bottom") {
		t.Errorf("String() = %q", s)
	}
}

func TestAddressWraps(t *testing.T) {
	c := NewController()
	d := newDev(t, c)
	data := []struct {
		start byte
		want  byte
	}{
		{0x00, 0x01},
		{0x27, 0x40},
		{0x67, 0x00},
	}
	for _, line := range data {
		if err := d.SendByte(0x80|line.start, hd44780.Command); err != nil {
			t.Fatal(err)
		}
		if got := c.Address(); got != line.start {
			t.Fatalf("Address() after set = 0x%02x, want 0x%02x", got, line.start)
		}
		if err := d.SendByte('x', hd44780.Data); err != nil {
			t.Fatal(err)
		}
		if got := c.Address(); got != line.want {
			t.Errorf("Address() after 0x%02x = 0x%02x, want 0x%02x", line.start, got, line.want)
		}
	}
}

func TestClear(t *testing.T) {
	c := NewController()
	d := newDev(t, c)
	if err := d.WriteLine("something", hd44780.Line1); err != nil {
		t.Fatal(err)
	}
	if err := d.SendByte(0x01, hd44780.Command); err != nil {
		t.Fatal(err)
	}
	blank := strings.Repeat(" ", hd44780.Width)
	if diff := cmp.Diff(c.Lines(), []string{blank, blank}); diff != "" {
		t.Errorf("Lines() (-got +want):\n%s", diff)
	}
	if got := c.Address(); got != 0 {
		t.Errorf("Address() = 0x%02x, want 0", got)
	}
}

func TestOnChange(t *testing.T) {
	c := NewController()
	var calls int
	var last []string
	c.OnChange = func(lines []string) {
		calls++
		last = lines
	}
	d := newDev(t, c)
	calls = 0
	if err := d.WriteLine("hi", hd44780.Line2); err != nil {
		t.Fatal(err)
	}
	if calls != hd44780.Width {
		t.Errorf("OnChange called %d times, want %d", calls, hd44780.Width)
	}
	if len(last) != 2 || last[1] != "hi              " {
		t.Errorf("last lines = %q", last)
	}
}

func TestReset(t *testing.T) {
	c := NewController()
	d := newDev(t, c)
	c.Reset()
	if len(c.Transfers()) != 0 || len(c.Nibbles()) != 0 || len(c.Violations()) != 0 {
		t.Fatal("Reset() kept records")
	}
	if err := d.WriteLine("x", hd44780.Line1); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Transfers()); got != 1+hd44780.Width {
		t.Errorf("%d transfers, want %d", got, 1+hd44780.Width)
	}
	if !c.FourBit() {
		t.Error("Reset() changed the bus mode")
	}
}

func TestViolations(t *testing.T) {
	var now time.Duration
	c := NewController()
	c.Now = func() time.Duration { return now }

	// Bus change immediately followed by E.
	now = time.Millisecond
	_ = c.RS.Out(gpio.Low)
	_ = c.E.Out(gpio.High)
	// Bus change while E is high.
	now += time.Millisecond
	_ = c.Data[0].Out(gpio.High)
	// Falling edge after a long enough pulse.
	now += time.Millisecond
	_ = c.E.Out(gpio.Low)
	// Bus change right after the fall.
	_ = c.Data[0].Out(gpio.Low)
	// Short pulse.
	now += time.Millisecond
	_ = c.E.Out(gpio.High)
	_ = c.E.Out(gpio.Low)

	var got []string
	for _, v := range c.Violations() {
		got = append(got, v.Reason)
	}
	want := []string{
		"E rose 0s after the bus changed, want 250µs",
		"D4 changed while E is high",
		"D4 changed 0s after E fell, want 250µs",
		"E pulse of 0s, want 250µs",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Violations() (-got +want):\n%s", diff)
	}
}

func TestNoClockNoViolations(t *testing.T) {
	c := NewController()
	strobe(c, hd44780.Command, 0x3)
	if v := c.Violations(); len(v) != 0 {
		t.Errorf("Violations() = %v", v)
	}
}
