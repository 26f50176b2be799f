// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package board

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GermanBionicSystems/keylcd/keypad"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// brokenLine accepts configuration but cannot be read.
type brokenLine struct {
	closed bool
}

func (l *brokenLine) Value() (int, error) {
	return 0, errors.New("line gone")
}

func (l *brokenLine) SetValue(int) error {
	return nil
}

func (l *brokenLine) Reconfigure(...gpiocdev.LineConfigOption) error {
	return nil
}

func (l *brokenLine) Close() error {
	l.closed = true
	return nil
}

func TestCdevReadFailureIsIdle(t *testing.T) {
	p := &cdevPin{name: "PA1", offset: 1, line: &brokenLine{}, pull: gpio.PullNoChange}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if l := p.Read(); l != gpio.High {
		t.Errorf("Read() with pull-up = %s, want High", l)
	}
	if err := p.In(gpio.PullDown, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if l := p.Read(); l != gpio.Low {
		t.Errorf("Read() with pull-down = %s, want Low", l)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if err := p.close(); err != nil {
		t.Fatal(err)
	}
	if l := p.Read(); l != gpio.High {
		t.Errorf("Read() after close = %s, want High", l)
	}
}

func TestCdevReadFailureIsNoKey(t *testing.T) {
	var pins keypad.Pins
	for i := range keypad.Size {
		pins.Rows[i] = &cdevPin{name: fmt.Sprintf("ROW%d", i), offset: i, line: &brokenLine{}, pull: gpio.PullNoChange}
		pins.Cols[i] = &gpiotest.Pin{N: fmt.Sprintf("COL%d", i)}
	}
	opts := keypad.DefaultOpts
	opts.Sleep = func(time.Duration) {}
	dev, err := keypad.New(&pins, nil, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if k, ok, err := dev.Scan(nil); err != nil || ok {
		t.Errorf("Scan() = %q, %t, %v, want no key", k, ok, err)
	}
}
