// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// keylcd reads a 4x4 matrix keypad and shows the keys on a 16x2 HD44780
// display.
//
// Usage:
//
//	keylcd [flags] [run|keypad|lcd]
//
// run shows each key on the display, keypad prints the keys, lcd cycles a
// demo text. -backend sim runs without hardware: keys are typed at a prompt
// and the display is drawn in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/keylcd/board"
	"github.com/GermanBionicSystems/keylcd/hd44780"
	"github.com/GermanBionicSystems/keylcd/mqttpub"
)

type config struct {
	wiringPath string
	backend    board.Backend
	broker     string
	topic      string
	clientID   string
	snapshot   string
	level      slog.Level
	mode       string
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("keylcd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	wiringPath := fs.String("config", "", "YAML wiring file (default: built-in Allwinner H3 wiring)")
	backend := fs.String("backend", string(board.Periph), "GPIO backend: periph, cdev or sim")
	broker := fs.String("mqtt", "", "MQTT broker to publish keys to, e.g. tcp://localhost:1883 (empty disables)")
	topic := fs.String("topic", mqttpub.Topic, "MQTT topic for key events")
	clientID := fs.String("client-id", "keylcd", "MQTT client ID")
	snapshot := fs.String("snapshot", "", "sim backend: write a PNG of the display to this file on exit")
	level := fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: keylcd [flags] [run|keypad|lcd]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c := &config{
		wiringPath: *wiringPath,
		broker:     *broker,
		topic:      *topic,
		clientID:   *clientID,
		snapshot:   *snapshot,
		mode:       "run",
	}
	var err error
	if c.backend, err = board.ParseBackend(*backend); err != nil {
		return nil, err
	}
	if err := c.level.UnmarshalText([]byte(*level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level: %w", err)
	}
	switch fs.NArg() {
	case 0:
	case 1:
		c.mode = fs.Arg(0)
	default:
		return nil, fmt.Errorf("unexpected arguments %q", fs.Args()[1:])
	}
	switch c.mode {
	case "run", "keypad", "lcd":
	default:
		return nil, fmt.Errorf("unknown command %q", c.mode)
	}
	if c.snapshot != "" && c.backend != board.Sim {
		return nil, errors.New("-snapshot requires -backend sim")
	}
	return c, nil
}

func main() {
	c, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.level}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := mainImpl(ctx, c, logger); err != nil {
		stop()
		log.Fatalf("keylcd: %v", err)
	}
}

func mainImpl(ctx context.Context, c *config, logger *slog.Logger) (err error) {
	w := board.DefaultWiring()
	if c.wiringPath != "" {
		if w, err = board.LoadWiring(c.wiringPath); err != nil {
			return err
		}
	}
	b, err := board.Open(w, c.backend)
	if err != nil {
		return err
	}
	defer func() {
		if herr := b.Halt(); herr != nil {
			logger.Error("halt", "err", herr)
			err = errors.Join(err, herr)
		}
	}()
	logger.Info("board opened", "backend", c.backend, "mode", c.mode)

	a := &app{log: logger, out: os.Stdout, now: time.Now, demoPeriod: 2 * time.Second}

	var sim *simUI
	if c.backend == board.Sim {
		if sim, err = newSimUI(b, logger); err != nil {
			return err
		}
		defer func() {
			if serr := sim.close(c.snapshot); serr != nil {
				err = errors.Join(err, serr)
			}
		}()
		a.out = sim.stdout()
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go sim.readKeys(ctx, cancel)
	}

	if c.mode != "keypad" {
		lcd, err := b.NewLCD()
		if err != nil {
			return err
		}
		logger.Debug("display ready", "dev", lcd.String())
		a.lcd = lcd
	}
	if c.mode != "lcd" {
		if a.kp, err = b.NewKeypad(); err != nil {
			return err
		}
		logger.Debug("keypad ready", "dev", a.kp.String())
		if c.broker != "" {
			pub, err := mqttpub.NewRealPublisher(c.broker, c.clientID, c.topic)
			if err != nil {
				return err
			}
			defer pub.Close()
			logger.Info("publishing keys", "broker", c.broker, "topic", c.topic)
			a.pub = pub
		}
	}

	switch c.mode {
	case "keypad":
		return a.runKeypad(ctx)
	case "lcd":
		return a.runLCD(ctx)
	default:
		return a.runKeypadLCD(ctx)
	}
}

var _ display = &hd44780.Dev{}
