package ocr

import (
	"image"
	"image/color"
	"testing"
)

func TestPreprocessScalesAndGrays(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	out := Preprocess(src, 2)

	if _, ok := out.(*image.Gray); !ok {
		t.Fatalf("output is %T, want *image.Gray", out)
	}
	if got := out.Bounds(); got.Dx() != 80 || got.Dy() != 40 {
		t.Errorf("bounds = %v, want 80x40", got)
	}
}

func TestPreprocessIdentityScale(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	out := Preprocess(src, 1)
	if got := out.Bounds(); got.Dx() != 10 || got.Dy() != 10 {
		t.Errorf("bounds = %v, want 10x10", got)
	}
}

func TestPreprocessZeroScaleDefaults(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	out := Preprocess(src, 0)
	if got := out.Bounds(); got.Dx() != 10 || got.Dy() != 10 {
		t.Errorf("bounds = %v, want 10x10", got)
	}
}
