// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package keylcd is a container for the drivers of a 4x4 matrix keypad and
// an HD44780 16x2 character display wired to the GPIO header of a single
// board computer.
//
// The drivers live in keypad and hd44780, each with a simulator for tests.
// board opens the pins, consolelcd draws the display in a terminal, mqttpub
// publishes key presses and cmd/keylcd ties them together.
package keylcd
