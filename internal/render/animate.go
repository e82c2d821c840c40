package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"

	"github.com/rickgao/rail-data/internal/config"
)

// ErrNoFrames is returned when there is nothing to animate.
var ErrNoFrames = errors.New("no frames to assemble")

// framePalette holds every colour frames are drawn with, padded with web-safe
// colours for anything else.
var framePalette = func() color.Palette {
	p := color.Palette{background, networkInk, stationInk, outlineInk}
	for _, c := range Paired {
		p = append(p, c)
	}
	return append(p, palette.WebSafe...)
}()

// MajorityBounds returns the most common frame size, preferring the earliest
// on ties, anchored at the first frame of that size.
func MajorityBounds(frames []image.Image) image.Rectangle {
	counts := make(map[image.Point]int)
	var order []image.Point
	first := make(map[image.Point]image.Rectangle)
	for _, f := range frames {
		sz := f.Bounds().Size()
		if _, ok := counts[sz]; !ok {
			order = append(order, sz)
			first[sz] = f.Bounds()
		}
		counts[sz]++
	}

	var best image.Point
	bestN := 0
	for _, sz := range order {
		if counts[sz] > bestN {
			best, bestN = sz, counts[sz]
		}
	}
	return first[best]
}

// Assemble builds a looping GIF from the frames sharing the majority size.
// Frames of any other size are dropped. fps <= 0 uses the default rate.
func Assemble(frames []image.Image, fps int) (*gif.GIF, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}

	want := MajorityBounds(frames).Size()
	g := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		b := f.Bounds()
		if b.Size() != want {
			continue
		}
		pm := image.NewPaletted(image.Rect(0, 0, want.X, want.Y), framePalette)
		draw.Draw(pm, pm.Bounds(), f, b.Min, draw.Src)
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delay)
	}
	return g, nil
}

// WriteGIF encodes g to path, creating parent directories.
func WriteGIF(path string, g *gif.GIF) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create gif dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	if err := gif.EncodeAll(f, g); err != nil {
		f.Close()
		return fmt.Errorf("encode gif: %w", err)
	}
	return f.Close()
}
