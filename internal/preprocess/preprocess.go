// Package preprocess normalizes images ahead of OCR: grayscale, contrast
// stretch, sharpen, binarize. The chain is best-effort; anything it
// cannot decode passes through unchanged.
package preprocess

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

const (
	binarizeThreshold = 128
	// Tesseract accuracy drops sharply on low-resolution input; images
	// narrower than this get doubled before filtering.
	minOCRWidth = 1200
)

// Chain applies the full preprocessing sequence and re-encodes as PNG.
type Chain struct{}

func (Chain) Process(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	gray := toGray(img)
	gray = upscale(gray)
	stretchContrast(gray)
	gray = sharpen(gray)
	binarize(gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return data
	}
	return buf.Bytes()
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

func upscale(g *image.Gray) *image.Gray {
	b := g.Bounds()
	if b.Dx() >= minOCRWidth || b.Dx() == 0 || b.Dy() == 0 {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*2, b.Dy()*2))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), g, b, xdraw.Src, nil)
	return dst
}

// stretchContrast maps the observed intensity range onto the full 0-255
// scale in place.
func stretchContrast(g *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, px := range g.Pix {
		if px < lo {
			lo = px
		}
		if px > hi {
			hi = px
		}
	}
	if hi <= lo || (lo == 0 && hi == 255) {
		return
	}
	scale := 255.0 / float64(hi-lo)
	for i, px := range g.Pix {
		g.Pix[i] = uint8(float64(px-lo)*scale + 0.5)
	}
}

// sharpen applies a 3x3 unsharp kernel, clamping at the image border.
func sharpen(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)

	at := func(x, y int) int {
		if x < 0 {
			x = 0
		}
		if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= h {
			y = h - 1
		}
		return int(g.Pix[y*g.Stride+x])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 5*at(x, y) - at(x-1, y) - at(x+1, y) - at(x, y-1) - at(x, y+1)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			out.Pix[y*out.Stride+x] = uint8(v)
		}
	}
	return out
}

func binarize(g *image.Gray) {
	for i, px := range g.Pix {
		if px > binarizeThreshold {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
}
