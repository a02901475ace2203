package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// BlankImage returns a PNG of the given size filled with c.
func BlankImage(t *testing.T, size int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return encodePNG(t, img)
}

// StrokeImage returns a size×size PNG with a thick vertical bar, roughly a
// hand-drawn "1", in ink on a background of bg.
func StrokeImage(t *testing.T, size int, ink, bg color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	left, right := size*2/5, size*3/5
	top, bottom := size/8, size*7/8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x >= left && x < right && y >= top && y < bottom {
				img.Set(x, y, ink)
			} else {
				img.Set(x, y, bg)
			}
		}
	}
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
