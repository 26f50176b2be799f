// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package board

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

const consumer = "keylcd"

func openCdev(w *Wiring) (*Board, error) {
	chip, err := gpiocdev.NewChip(Chip, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("board: open %s: %w", Chip, err)
	}
	var opened []*cdevPin
	closeAll := func() error {
		var errs []error
		for _, p := range opened {
			if err := p.close(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", Chip, err))
		}
		return errors.Join(errs...)
	}
	b, err := byName(w, func(name string) (gpio.PinIO, error) {
		offset, err := LineOffset(name)
		if err != nil {
			return nil, err
		}
		// Lines start as inputs without bias until the drivers configure them.
		l, err := chip.RequestLine(offset, gpiocdev.AsInput)
		if err != nil {
			return nil, fmt.Errorf("request line %d (%s): %w", offset, name, err)
		}
		p := &cdevPin{name: name, offset: offset, line: l, pull: gpio.PullNoChange}
		opened = append(opened, p)
		return p, nil
	})
	if err != nil {
		_ = closeAll()
		return nil, err
	}
	b.closers = append(b.closers, closeAll)
	return b, nil
}

// cdevLine is the part of *gpiocdev.Line a pin uses.
type cdevLine interface {
	Value() (int, error)
	SetValue(value int) error
	Reconfigure(options ...gpiocdev.LineConfigOption) error
	Close() error
}

// cdevPin is a line requested from the GPIO character device.
type cdevPin struct {
	name   string
	offset int

	mu    sync.Mutex
	line  cdevLine
	out   bool
	level gpio.Level
	pull  gpio.Pull
}

func (p *cdevPin) String() string {
	return fmt.Sprintf("%s(%s:%d)", p.name, Chip, p.offset)
}

// Halt sets the line to a high-impedance input.
func (p *cdevPin) Halt() error {
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *cdevPin) Name() string {
	return p.name
}

func (p *cdevPin) Number() int {
	return p.offset
}

func (p *cdevPin) Function() string {
	return string(p.Func())
}

func (p *cdevPin) Func() pin.Func {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out {
		return gpio.OUT
	}
	return gpio.IN
}

func (p *cdevPin) SupportedFuncs() []pin.Func {
	return []pin.Func{gpio.IN, gpio.OUT}
}

func (p *cdevPin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT:
		return p.Out(p.level)
	default:
		return fmt.Errorf("board: %s: function %s not supported", p.name, f)
	}
}

func (p *cdevPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return fmt.Errorf("board: %s: edge detection not supported", p.name)
	}
	opts := []gpiocdev.LineConfigOption{gpiocdev.AsInput}
	switch pull {
	case gpio.PullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	case gpio.PullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	case gpio.Float:
		opts = append(opts, gpiocdev.WithBiasDisabled)
	case gpio.PullNoChange:
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.line == nil {
		return fmt.Errorf("board: %s: line closed", p.name)
	}
	if err := p.line.Reconfigure(opts...); err != nil {
		return fmt.Errorf("board: %s: %w", p.name, err)
	}
	p.out = false
	if pull != gpio.PullNoChange {
		p.pull = pull
	}
	return nil
}

// Read returns the level of the line. A line that cannot be read reports its
// idle level, High unless it is pulled down, so a keypad row never reads as
// pressed.
func (p *cdevPin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.line == nil {
		return p.idle()
	}
	v, err := p.line.Value()
	if err != nil {
		return p.idle()
	}
	return gpio.Level(v != 0)
}

func (p *cdevPin) idle() gpio.Level {
	return gpio.Level(p.pull != gpio.PullDown)
}

func (p *cdevPin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *cdevPin) Pull() gpio.Pull {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pull
}

func (p *cdevPin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

func (p *cdevPin) Out(l gpio.Level) error {
	v := 0
	if l == gpio.High {
		v = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.line == nil {
		return fmt.Errorf("board: %s: line closed", p.name)
	}
	if !p.out {
		if err := p.line.Reconfigure(gpiocdev.AsOutput(v)); err != nil {
			return fmt.Errorf("board: %s: %w", p.name, err)
		}
		p.out = true
	} else if err := p.line.SetValue(v); err != nil {
		return fmt.Errorf("board: %s: %w", p.name, err)
	}
	p.level = l
	return nil
}

func (p *cdevPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return fmt.Errorf("board: %s: PWM is not supported", p.name)
}

func (p *cdevPin) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.line == nil {
		return nil
	}
	err := p.line.Close()
	p.line = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", p.name, err)
	}
	return nil
}

var _ gpio.PinIO = &cdevPin{}
var _ pin.PinFunc = &cdevPin{}
