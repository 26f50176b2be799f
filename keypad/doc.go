// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package keypad scans a 4x4 membrane matrix keypad wired directly to GPIO
// pins.
//
// The four column lines are outputs held high while idle. The four row lines
// are inputs with the internal pull-up enabled, so an idle row reads high. A
// scan drives one column low at a time and reads every row: a row reading low
// means the key at that (row, column) crossing is pressed.
//
// A detected key is reported once, then the scanner waits for the row to go
// high again before it continues. Holding a key down therefore produces a
// single event per press and release.
//
// # Limitations
//
// Keypads of this kind have no isolation diodes. When several keys are down
// at once, the first crossing in scan order (columns left to right, rows top
// to bottom) wins and the cycle ends there. Two keys in the same column only
// ever report the upper one until it is released.
package keypad
