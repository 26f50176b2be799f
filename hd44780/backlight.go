// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// GPIOMonoBacklight switches the LED backlight of the module through a single
// GPIO pin, usually driving a transistor on the LED+ line. Any intensity
// above zero turns it fully on.
type GPIOMonoBacklight struct {
	pin gpio.PinOut
	on  bool
}

// NewBacklight returns a backlight switched by pin.
func NewBacklight(pin gpio.PinOut) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{pin: pin}
}

// Backlight turns the backlight on for a non-zero intensity, off otherwise.
func (bl *GPIOMonoBacklight) Backlight(intensity display.Intensity) error {
	on := intensity > 0
	if err := bl.pin.Out(gpio.Level(on)); err != nil {
		return err
	}
	bl.on = on
	return nil
}

// On reports the last state successfully written.
func (bl *GPIOMonoBacklight) On() bool {
	return bl.on
}

func (bl *GPIOMonoBacklight) String() string {
	return fmt.Sprintf("backlight(%s)", bl.pin)
}

var _ display.DisplayBacklight = &GPIOMonoBacklight{}
