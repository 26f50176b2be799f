// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package consolelcd

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
	"golang.org/x/image/font/basicfont"
)

func TestNew(t *testing.T) {
	d := New(&Opts{W: &bytes.Buffer{}})
	if s := d.String(); s != "ConsoleLCD{16x2}" {
		t.Fatalf("String() = %q", s)
	}
	want := []string{strings.Repeat(" ", 16), strings.Repeat(" ", 16)}
	if diff := cmp.Diff(d.Lines(), want); diff != "" {
		t.Errorf("Lines() (-got +want):\n%s", diff)
	}
}

func TestDraw(t *testing.T) {
	buf := bytes.Buffer{}
	d := New(&Opts{W: &buf, Cols: 4, Rows: 2})
	if err := d.Draw([]string{"Read key:", "#"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d.Lines(), []string{"Read", "#   "}); diff != "" {
		t.Errorf("Lines() (-got +want):\n%s", diff)
	}
	block := ansi256.Default.Block(DefaultBacklight)
	edge := strings.Repeat(block, 6)
	want := "\r" + edge + "\033[0m\n" +
		"\r" + block + "\033[0mRead" + block + "\033[0m\n" +
		"\r" + block + "\033[0m#   " + block + "\033[0m\n" +
		"\r" + edge + "\033[0m\n"
	if got := buf.String(); got != want {
		t.Fatalf("first frame:\n%q\nwant:\n%q", got, want)
	}

	buf.Reset()
	if err := d.Draw([]string{"x"}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); !strings.HasPrefix(got, "\033[4A\r") {
		t.Errorf("redraw does not move back up: %q", got)
	}
	if diff := cmp.Diff(d.Lines(), []string{"x   ", "    "}); diff != "" {
		t.Errorf("Lines() (-got +want):\n%s", diff)
	}
}

func TestBacklight(t *testing.T) {
	buf := bytes.Buffer{}
	d := New(&Opts{W: &buf, Backlight: color.NRGBA{B: 0xff, A: 0xff}})
	if err := d.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), ansi256.Default.Block(unlit)) {
		t.Errorf("unlit frame not drawn: %q", buf.String())
	}
	buf.Reset()
	if err := d.Backlight(255); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), ansi256.Default.Block(color.NRGBA{B: 0xff, A: 0xff})) {
		t.Errorf("lit frame not drawn: %q", buf.String())
	}
}

func TestBacklightAnyColor(t *testing.T) {
	buf := bytes.Buffer{}
	d := New(&Opts{W: &buf, Backlight: color.RGBA{G: 0xff, A: 0xff}})
	if err := d.Draw([]string{"1"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), ansi256.Default.Block(color.NRGBA{G: 0xff, A: 0xff})) {
		t.Errorf("frame not drawn in the backlight color: %q", buf.String())
	}
}

func TestHalt(t *testing.T) {
	buf := bytes.Buffer{}
	d := New(&Opts{W: &buf})
	if err := d.Draw([]string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\033[0m\n" {
		t.Errorf("Halt() wrote %q", got)
	}
	buf.Reset()
	if err := d.Draw([]string{"c"}); err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(buf.String(), "\033[") {
		t.Errorf("frame after Halt() overwrites the previous one: %q", buf.String())
	}
}

func inked(img image.Image) int {
	bg := color.NRGBAModel.Convert(DefaultBacklight)
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)) != bg {
				n++
			}
		}
	}
	return n
}

func TestRender(t *testing.T) {
	img := Render([]string{"Read key:", "8"}, &ImageOpts{Cols: 16})
	if got, want := img.Bounds(), image.Rect(0, 0, 2*12+16*12, 2*12+2*20); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
	if got := color.NRGBAModel.Convert(img.At(0, 0)); got != color.NRGBAModel.Convert(DefaultBacklight) {
		t.Errorf("corner = %v, want backlight", got)
	}
	if inked(img) == 0 {
		t.Error("no character drawn")
	}
	if n := inked(Render([]string{"    ", ""}, nil)); n != 0 {
		t.Errorf("blank panel has %d inked pixels", n)
	}
}

func TestRenderBasicFont(t *testing.T) {
	opts := &ImageOpts{Face: basicfont.Face7x13, Cell: image.Point{X: 8, Y: 14}, Margin: 4}
	img := Render([]string{"HACK"}, opts)
	if got, want := img.Bounds(), image.Rect(0, 0, 2*4+4*8, 2*4+14); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
	if inked(img) == 0 {
		t.Error("no character drawn")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.png")
	if err := SavePNG(path, []string{"Goodbye!", ""}, &ImageOpts{Cols: 16, RoundFrame: true}); err != nil {
		t.Fatal(err)
	}
	img, err := gg.LoadPNG(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.Bounds(), image.Rect(0, 0, 216, 64); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}
