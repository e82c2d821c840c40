package render

import (
	"fmt"
	"image/color"
)

// Paired is the 12-colour qualitative palette markers are drawn from.
var Paired = []color.RGBA{
	{0xa6, 0xce, 0xe3, 0xff},
	{0x1f, 0x78, 0xb4, 0xff},
	{0xb2, 0xdf, 0x8a, 0xff},
	{0x33, 0xa0, 0x2c, 0xff},
	{0xfb, 0x9a, 0x99, 0xff},
	{0xe3, 0x1a, 0x1c, 0xff},
	{0xfd, 0xbf, 0x6f, 0xff},
	{0xff, 0x7f, 0x00, 0xff},
	{0xca, 0xb2, 0xd6, 0xff},
	{0x6a, 0x3d, 0x9a, 0xff},
	{0xff, 0xff, 0x99, 0xff},
	{0xb1, 0x59, 0x28, 0xff},
}

// fallback is used for codes missing from a palette.
var fallback = color.RGBA{0x80, 0x80, 0x80, 0xff}

// Palette maps train codes to colours.
type Palette map[string]color.RGBA

// NewPalette assigns Paired colours to codes in order, cycling after twelve.
func NewPalette(codes []string) Palette {
	p := make(Palette, len(codes))
	i := 0
	for _, code := range codes {
		if _, ok := p[code]; ok {
			continue
		}
		p[code] = Paired[i%len(Paired)]
		i++
	}
	return p
}

// Color returns the colour for code.
func (p Palette) Color(code string) color.RGBA {
	if c, ok := p[code]; ok {
		return c
	}
	return fallback
}

// Hex returns the colour for code as #rrggbb.
func (p Palette) Hex(code string) string {
	return hex(p.Color(code))
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
