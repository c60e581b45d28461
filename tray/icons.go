//go:build darwin

package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

var (
	iconIdle   []byte
	iconActive []byte
)

func init() {
	blue := color.RGBA{R: 10, G: 132, B: 255, A: 255}
	iconIdle = renderIcon(22, nil)
	iconActive = renderIcon(22, &blue)
}

// renderIcon draws two overlapping rounded squares, filled with fill when
// the overlay is active. The alternate variant swaps the overlap side.
func renderIcon(size int, fill *color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	front := rectf{s * 0.30, s * 0.30, s * 0.62, s * 0.62}
	back := rectf{s * 0.08, s * 0.08, s * 0.62, s * 0.62}
	if altIcons {
		front, back = back, front
	}
	c := color.RGBA{A: 255}
	if fill != nil {
		c = *fill
	}
	for y := range size {
		for x := range size {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			switch {
			case front.contains(fx, fy):
				img.Set(x, y, c)
			case back.onBorder(fx, fy, math.Max(1, s/16)):
				img.Set(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("renderIcon: " + err.Error())
	}
	return buf.Bytes()
}

type rectf struct {
	x, y, w, h float64
}

func (r rectf) contains(x, y float64) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

func (r rectf) onBorder(x, y, width float64) bool {
	if !r.contains(x, y) {
		return false
	}
	inner := rectf{r.x + width, r.y + width, r.w - 2*width, r.h - 2*width}
	return !inner.contains(x, y)
}
