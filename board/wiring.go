// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/GermanBionicSystems/keylcd/hd44780"
	"github.com/GermanBionicSystems/keylcd/keypad"
	"gopkg.in/yaml.v3"
)

// Wiring names the header pins the keypad and the display are connected to.
// Durations are written as strings, e.g. "500us" or "20ms". A zero duration
// or width selects the driver default.
type Wiring struct {
	Keypad KeypadWiring `yaml:"keypad"`
	LCD    LCDWiring    `yaml:"lcd"`
}

// KeypadWiring is the keypad part of a Wiring.
type KeypadWiring struct {
	Rows []string `yaml:"rows"`
	Cols []string `yaml:"cols"`
	// Layout is four rows of four legends. Defaults to keypad.Default.
	Layout      []string      `yaml:"layout,omitempty"`
	Interval    time.Duration `yaml:"interval,omitempty"`
	ReleasePoll time.Duration `yaml:"release_poll,omitempty"`
	Debounce    time.Duration `yaml:"debounce,omitempty"`
}

// LCDWiring is the display part of a Wiring.
type LCDWiring struct {
	RS string `yaml:"rs"`
	E  string `yaml:"e"`
	// Data lists D4, D5, D6 and D7.
	Data      []string      `yaml:"data"`
	Backlight string        `yaml:"backlight,omitempty"`
	Width     int           `yaml:"width,omitempty"`
	Settle    time.Duration `yaml:"settle,omitempty"`
	Pulse     time.Duration `yaml:"pulse,omitempty"`
}

// DefaultWiring returns the wiring of a 4x4 keypad and a 16x2 module on the
// 40 pin header of an Allwinner H3 board.
func DefaultWiring() *Wiring {
	return &Wiring{
		Keypad: KeypadWiring{
			Rows: []string{"PA1", "PA6", "PA11", "PA12"},
			Cols: []string{"PA3", "PA0", "PA14", "PA13"},
		},
		LCD: LCDWiring{
			RS:   "PA19",
			E:    "PA7",
			Data: []string{"PA8", "PA9", "PA10", "PA20"},
		},
	}
}

// ParseWiring decodes and validates a YAML wiring. Sections left out keep
// the value of DefaultWiring.
func ParseWiring(data []byte) (*Wiring, error) {
	w := DefaultWiring()
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("board: parsing wiring: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadWiring reads and parses a YAML wiring file.
func LoadWiring(path string) (*Wiring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("board: reading %s: %w", path, err)
	}
	return ParseWiring(data)
}

// Marshal encodes w as YAML.
func (w *Wiring) Marshal() ([]byte, error) {
	return yaml.Marshal(w)
}

// Validate checks that every pin is named once and that the layout and the
// durations are usable.
func (w *Wiring) Validate() error {
	if len(w.Keypad.Rows) != keypad.Size {
		return fmt.Errorf("board: keypad has %d rows, want %d", len(w.Keypad.Rows), keypad.Size)
	}
	if len(w.Keypad.Cols) != keypad.Size {
		return fmt.Errorf("board: keypad has %d columns, want %d", len(w.Keypad.Cols), keypad.Size)
	}
	if len(w.LCD.Data) != 4 {
		return fmt.Errorf("board: lcd has %d data lines, want 4", len(w.LCD.Data))
	}
	if _, err := w.Layout(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	seen := map[string]string{}
	for _, p := range w.pins() {
		if p.name == "" {
			if p.role == "lcd backlight" {
				continue
			}
			return fmt.Errorf("board: %s has no pin", p.role)
		}
		if prev, ok := seen[p.name]; ok {
			return fmt.Errorf("board: %s and %s share pin %s", prev, p.role, p.name)
		}
		seen[p.name] = p.role
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"keypad interval", w.Keypad.Interval},
		{"keypad release_poll", w.Keypad.ReleasePoll},
		{"keypad debounce", w.Keypad.Debounce},
		{"lcd settle", w.LCD.Settle},
		{"lcd pulse", w.LCD.Pulse},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("board: %s is negative (%s)", d.name, d.d)
		}
	}
	if w.LCD.Width < 0 {
		return errors.New("board: lcd width is negative")
	}
	return nil
}

// Layout returns the keypad legends.
func (w *Wiring) Layout() (keypad.Matrix, error) {
	if len(w.Keypad.Layout) == 0 {
		return keypad.Default, nil
	}
	return keypad.ParseMatrix(w.Keypad.Layout)
}

// KeypadOpts returns the scanning parameters, using keypad.DefaultOpts for
// the durations left at zero.
func (w *Wiring) KeypadOpts() *keypad.Opts {
	o := keypad.DefaultOpts
	if w.Keypad.Interval != 0 {
		o.Interval = w.Keypad.Interval
	}
	if w.Keypad.ReleasePoll != 0 {
		o.ReleasePoll = w.Keypad.ReleasePoll
	}
	if w.Keypad.Debounce != 0 {
		o.Debounce = w.Keypad.Debounce
	}
	return &o
}

// LCDOpts returns the display configuration, using hd44780.DefaultOpts for
// the values left at zero.
func (w *Wiring) LCDOpts() *hd44780.Opts {
	o := hd44780.DefaultOpts
	if w.LCD.Width != 0 {
		o.Width = w.LCD.Width
	}
	if w.LCD.Settle != 0 {
		o.Timing.Settle = w.LCD.Settle
	}
	if w.LCD.Pulse != 0 {
		o.Timing.Pulse = w.LCD.Pulse
	}
	return &o
}

type namedPin struct {
	role string
	name string
}

// pins lists every pin of w, keypad first, in a stable order.
func (w *Wiring) pins() []namedPin {
	var out []namedPin
	for i, n := range w.Keypad.Rows {
		out = append(out, namedPin{fmt.Sprintf("keypad row %d", i), n})
	}
	for i, n := range w.Keypad.Cols {
		out = append(out, namedPin{fmt.Sprintf("keypad column %d", i), n})
	}
	out = append(out, namedPin{"lcd rs", w.LCD.RS}, namedPin{"lcd e", w.LCD.E})
	for i, n := range w.LCD.Data {
		out = append(out, namedPin{fmt.Sprintf("lcd d%d", i+4), n})
	}
	return append(out, namedPin{"lcd backlight", w.LCD.Backlight})
}
