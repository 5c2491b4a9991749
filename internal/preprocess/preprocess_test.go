package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcess_BinarizesToPNG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			// mid-gray background with a darker band
			v := uint8(170)
			if y >= 8 && y < 12 {
				v = 60
			}
			src.SetGray(x, y, color.Gray{Y: v})
		}
	}

	out := Chain{}.Process(encodePNG(t, src))

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected grayscale output, got %T", img)
	}
	for _, px := range g.Pix {
		if px != 0 && px != 255 {
			t.Fatalf("found non-binary pixel value %d", px)
		}
	}
}

func TestProcess_UpscalesSmallImages(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 100, 50))
	out := Chain{}.Process(encodePNG(t, src))

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if w := img.Bounds().Dx(); w != 200 {
		t.Errorf("expected width doubled to 200, got %d", w)
	}
}

func TestProcess_PassesThroughUndecodable(t *testing.T) {
	in := []byte("this is not an image")
	out := Chain{}.Process(in)
	if !bytes.Equal(out, in) {
		t.Error("undecodable input must pass through unchanged")
	}
}

func TestStretchContrast(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 1))
	g.Pix = []uint8{100, 150, 200}
	stretchContrast(g)
	if g.Pix[0] != 0 || g.Pix[2] != 255 {
		t.Errorf("expected endpoints stretched to 0 and 255, got %v", g.Pix)
	}
}

func TestStretchContrast_FlatImageUnchanged(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix = []uint8{120, 120}
	stretchContrast(g)
	if g.Pix[0] != 120 || g.Pix[1] != 120 {
		t.Errorf("flat image must not change, got %v", g.Pix)
	}
}
