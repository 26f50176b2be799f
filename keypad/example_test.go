// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package keypad_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/keylcd/keypad"
	"github.com/GermanBionicSystems/keylcd/keypad/keypadtest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// This example scans a keypad wired to an Orange Pi header and prints every
// key until Ctrl-C is pressed.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	var p keypad.Pins
	for i, name := range []string{"PA1", "PA6", "PA11", "PA12"} {
		if p.Rows[i] = gpioreg.ByName(name); p.Rows[i] == nil {
			log.Fatalf("no pin %s", name)
		}
	}
	for j, name := range []string{"PA3", "PA0", "PA14", "PA13"} {
		var c gpio.PinIO
		if c = gpioreg.ByName(name); c == nil {
			log.Fatalf("no pin %s", name)
		}
		p.Cols[j] = c
	}
	dev, err := keypad.New(&p, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_ = dev.Run(ctx, func(k keypad.Key) {
		fmt.Println(k)
	})
	fmt.Println("Goodbye")
}

// Scanning a simulated keypad.
func ExampleDev_Scan() {
	m := keypadtest.NewMatrix()
	opts := keypad.DefaultOpts
	opts.Sleep = func(time.Duration) { m.ReleaseAll() }
	dev, err := keypad.New(m.Pins(), nil, &opts)
	if err != nil {
		log.Fatal(err)
	}
	m.Press(1, 2)
	k, ok, _ := dev.Scan(func(k keypad.Key) { fmt.Println("pressed", k) })
	fmt.Println(k, ok)
	// Output:
	// pressed 6
	// 6 true
}
