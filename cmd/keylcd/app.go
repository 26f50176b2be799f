// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GermanBionicSystems/keylcd/hd44780"
	"github.com/GermanBionicSystems/keylcd/keypad"
	"github.com/GermanBionicSystems/keylcd/mqttpub"
)

// display is the part of hd44780.Dev the modes use.
type display interface {
	WriteLine(text string, line hd44780.Line) error
}

// app ties the keypad, the display and the publisher together. lcd and pub
// may be nil.
type app struct {
	log *slog.Logger
	out io.Writer
	kp  *keypad.Dev
	lcd display
	pub mqttpub.Publisher
	now func() time.Time
	// demoPeriod is the time each demo screen stays up.
	demoPeriod time.Duration
	// err is the first display error seen by the key handler.
	err error
}

// onKey shows and publishes a key found at row, col. It runs before the
// scanner waits for the release, so the display reacts while the key is still
// held.
func (a *app) onKey(k keypad.Key, row, col int) {
	fmt.Fprintln(a.out, k)
	if a.lcd != nil && a.err == nil {
		if err := a.lcd.WriteLine("Read key:", hd44780.Line1); err != nil {
			a.err = err
		} else if err := a.lcd.WriteLine(k.String(), hd44780.Line2); err != nil {
			a.err = err
		}
	}
	if a.pub == nil {
		return
	}
	ev := mqttpub.Event{Key: k, Row: row, Col: col, Timestamp: a.now()}
	if err := a.pub.Publish(ev); err != nil {
		a.log.Warn("publish failed", "key", k.String(), "err", err)
	} else {
		a.log.Debug("published", "key", k.String(), "row", row, "col", col)
	}
}

// scan runs the keypad until ctx is canceled or the display fails.
func (a *app) scan(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	h := func(k keypad.Key, row, col int) {
		a.onKey(k, row, col)
		if a.err != nil {
			cancel()
		}
	}
	err := a.kp.RunPosition(ctx, h)
	if a.err != nil {
		return a.err
	}
	return err
}

// runKeypadLCD shows every key on the display until ctx is canceled, then
// leaves an exit message.
func (a *app) runKeypadLCD(ctx context.Context) error {
	fmt.Fprintln(a.out, "Ready...")
	err := a.scan(ctx)
	if ctx.Err() == nil {
		return err
	}
	fmt.Fprintln(a.out, "Exiting program...")
	if err := a.lcd.WriteLine("Exiting program.", hd44780.Line2); err != nil {
		return err
	}
	return a.lcd.WriteLine(" ", hd44780.Line1)
}

// runKeypad prints every key until ctx is canceled.
func (a *app) runKeypad(ctx context.Context) error {
	err := a.scan(ctx)
	if ctx.Err() == nil {
		return err
	}
	fmt.Fprintln(a.out, "Goodbye")
	return nil
}

// runLCD alternates two screens until ctx is canceled.
func (a *app) runLCD(ctx context.Context) error {
	screens := [][2]string{
		{"Hackerboxes.com", "hack the planet"},
		{"Hackerboxes.com", "HACK THE PLANET"},
	}
	for i := 0; ; i++ {
		s := screens[i%len(screens)]
		if err := a.lcd.WriteLine(s[0], hd44780.Line1); err != nil {
			return err
		}
		if err := a.lcd.WriteLine(s[1], hd44780.Line2); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out, "Goodbye!")
			return a.lcd.WriteLine("Goodbye!", hd44780.Line1)
		case <-time.After(a.demoPeriod):
		}
	}
}
