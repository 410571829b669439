package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Icon renders the tray glyph for the given theme as PNG bytes. "light"
// means a dark glyph for light menu bars, "dark" a light glyph; "auto"
// renders the template variant and lets the platform adapt it.
func Icon(theme string) []byte {
	fill := color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	if theme == "dark" {
		fill = color.NRGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}
	}
	return renderGlyph(fill)
}

// renderGlyph draws a simple house silhouette: a triangle roof over a square
// body with a door cut out.
func renderGlyph(fill color.NRGBA) []byte {
	const size = 22
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	const (
		roofTop    = 2
		bodyTop    = 10
		bodyBottom = 19
		left       = 3
		right      = 18
	)
	mid := (left + right) / 2

	for y := roofTop; y < bodyTop; y++ {
		// Roof widens one pixel per row on each side.
		spread := (y - roofTop) * (mid - left) / (bodyTop - roofTop)
		for x := mid - spread; x <= mid+spread; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}

	for y := bodyTop; y <= bodyBottom; y++ {
		for x := left; x <= right; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}

	// Door
	for y := 14; y <= bodyBottom; y++ {
		for x := mid - 2; x <= mid+2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
