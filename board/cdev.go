// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import (
	"fmt"
	"strconv"
)

// Chip is the GPIO character device used by the cdev backend.
var Chip = "gpiochip0"

// LineOffset returns the line of the GPIO chip a pin is on. name is either a
// line number, e.g. "12", or an Allwinner pin name, e.g. "PA12", where each
// port letter counts 32 lines.
func LineOffset(name string) (int, error) {
	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid line %q", name)
		}
		return n, nil
	}
	if len(name) < 3 || name[0] != 'P' || name[1] < 'A' || name[1] > 'Z' {
		return 0, fmt.Errorf("invalid line %q", name)
	}
	n, err := strconv.Atoi(name[2:])
	if err != nil || n < 0 || n >= 32 {
		return 0, fmt.Errorf("invalid line %q", name)
	}
	return int(name[1]-'A')*32 + n, nil
}
