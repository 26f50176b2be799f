// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/GermanBionicSystems/keylcd/board"
	"github.com/GermanBionicSystems/keylcd/consolelcd"
	"github.com/GermanBionicSystems/keylcd/keypad"
	"github.com/GermanBionicSystems/keylcd/keypad/keypadtest"
	"github.com/chzyer/readline"
)

// holdTime is how long a typed key stays pressed, well above a scan cycle.
const holdTime = 80 * time.Millisecond

// simUI drives the sim backend from the terminal: typed keys are pressed on
// the simulated keypad and the simulated display is drawn after each change.
type simUI struct {
	log    *slog.Logger
	rl     *readline.Instance
	panel  *consolelcd.Dev
	matrix *keypadtest.Matrix
	layout keypad.Matrix
	hold   time.Duration
}

func newSimUI(b *board.Board, logger *slog.Logger) (*simUI, error) {
	layout, err := b.Wiring().Layout()
	if err != nil {
		return nil, err
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "keys> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := &simUI{
		log:    logger,
		rl:     rl,
		panel:  consolelcd.New(&consolelcd.Opts{W: rl.Stdout(), Cols: b.Wiring().LCDOpts().Width}),
		matrix: b.Sim.Matrix,
		layout: layout,
		hold:   holdTime,
	}
	b.Sim.Controller.OnChange = func(lines []string) {
		if err := s.panel.Draw(lines); err != nil {
			s.log.Warn("draw", "err", err)
		}
	}
	fmt.Fprintln(rl.Stdout(), "Type keys (0-9 * # A-D) and press enter; q or ^D quits.")
	return s, nil
}

func (s *simUI) stdout() io.Writer {
	return s.rl.Stdout()
}

// readKeys presses the typed keys until the input ends or ctx is canceled,
// then calls cancel.
func (s *simUI) readKeys(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for ctx.Err() == nil {
		line, err := s.rl.Readline()
		if err != nil {
			// io.EOF or readline.ErrInterrupt.
			return
		}
		input := strings.ToUpper(strings.TrimSpace(line))
		if input == "Q" || input == "QUIT" {
			return
		}
		s.press(ctx, input)
	}
}

// press holds each key of input in turn. Unknown keys are reported and
// skipped.
func (s *simUI) press(ctx context.Context, input string) {
	for i := range len(input) {
		k := keypad.Key(input[i])
		if k == ' ' {
			continue
		}
		if err := s.matrix.PressKey(s.layout, k); err != nil {
			fmt.Fprintln(s.rl.Stdout(), err)
			continue
		}
		s.wait(ctx)
		_ = s.matrix.ReleaseKey(s.layout, k)
		s.wait(ctx)
	}
}

func (s *simUI) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.hold):
	}
}

// close stops reading the terminal and writes the snapshot, if any.
func (s *simUI) close(snapshot string) error {
	s.matrix.ReleaseAll()
	err := s.rl.Close()
	_ = s.panel.Halt()
	if snapshot == "" {
		return err
	}
	if perr := consolelcd.SavePNG(snapshot, s.panel.Lines(), &consolelcd.ImageOpts{RoundFrame: true}); perr != nil {
		return errors.Join(err, perr)
	}
	s.log.Info("snapshot written", "path", snapshot)
	return err
}
