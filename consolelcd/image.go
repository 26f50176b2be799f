// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package consolelcd

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// ImageOpts describes the rendering of a panel snapshot.
type ImageOpts struct {
	// Cell is the size in pixels of a character cell. Defaults to 12x20.
	Cell image.Point
	// Margin around the character grid, in pixels. Defaults to 12.
	Margin int
	// Cols is the number of characters per line. Defaults to the longest line.
	Cols       int
	Backlight  color.Color
	Ink        color.Color
	Face       font.Face
	RoundFrame bool

	_ struct{}
}

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// face returns Go Regular sized to fit a cell, or basicfont.Face7x13 if the
// font cannot be parsed.
func face(cell image.Point) font.Face {
	f, err := goRegular()
	if err != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: float64(cell.Y) * 0.75})
}

// Render draws lines as they would appear on the module: dark characters on a
// backlit panel, each character centered in its own cell.
func Render(lines []string, opts *ImageOpts) image.Image {
	o := ImageOpts{}
	if opts != nil {
		o = *opts
	}
	if o.Cell.X <= 0 || o.Cell.Y <= 0 {
		o.Cell = image.Point{X: 12, Y: 20}
	}
	if o.Margin <= 0 {
		o.Margin = 12
	}
	if o.Cols <= 0 {
		for _, l := range lines {
			o.Cols = max(o.Cols, len(l))
		}
		o.Cols = max(o.Cols, 1)
	}
	if o.Backlight == nil {
		o.Backlight = DefaultBacklight
	}
	if o.Ink == nil {
		o.Ink = DefaultInk
	}
	if o.Face == nil {
		o.Face = face(o.Cell)
	}
	rows := max(len(lines), 1)
	w := 2*o.Margin + o.Cols*o.Cell.X
	h := 2*o.Margin + rows*o.Cell.Y

	dc := gg.NewContext(w, h)
	dc.SetColor(o.Backlight)
	dc.Clear()
	dc.SetColor(o.Ink)
	if o.RoundFrame {
		dc.DrawRoundedRectangle(1, 1, float64(w-2), float64(h-2), float64(o.Margin)/2)
		dc.SetLineWidth(2)
		dc.Stroke()
	}
	dc.SetFontFace(o.Face)
	for r, l := range lines {
		for c := 0; c < len(l) && c < o.Cols; c++ {
			if l[c] == ' ' {
				continue
			}
			x := float64(o.Margin + c*o.Cell.X + o.Cell.X/2)
			y := float64(o.Margin + r*o.Cell.Y + o.Cell.Y/2)
			dc.DrawStringAnchored(string(l[c]), x, y, 0.5, 0.5)
		}
	}
	return dc.Image()
}

// SavePNG renders lines and writes them to path as a PNG file.
func SavePNG(path string, lines []string, opts *ImageOpts) error {
	return gg.SavePNG(path, Render(lines, opts))
}
