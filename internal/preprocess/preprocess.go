// Package preprocess turns an uploaded drawing into the fixed-size binary
// feature vector the digit classifier was trained on.
//
// The pipeline is: decode, grayscale, 15×15 Gaussian blur, binary threshold
// at 100, polarity normalisation, 28×28 area resize, blank-canvas check and
// a row-major flatten that re-binarises at the same threshold.
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	Size          = 28
	FeatureLength = Size * Size
	BlurKernel    = 15
	Threshold     = 100
	MinInkPixels  = 50

	maxDimension = 8192
	// maxPixels bounds the working set: the decoded raster plus three
	// single-channel buffers and the uint16 blur intermediate.
	maxPixels = 16 << 20
)

var (
	ErrDecode     = errors.New("failed to load image")
	ErrProcessing = errors.New("image processing error")
	ErrNoDigit    = errors.New("no digit recognized")
)

type Result struct {
	// Source is the decoded upload, untouched.
	Source image.Image
	// Grid is the 28×28 thresholded image fed to Flatten.
	Grid *image.Gray
	// Features has FeatureLength entries, each 0 or 1.
	Features []int
}

// Preprocess runs the full pipeline over raw image bytes.
func Preprocess(data []byte) (res *Result, err error) {
	src, err := Decode(data)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrProcessing, r)
		}
	}()

	grid, err := Prepare(src)
	if err != nil {
		return nil, err
	}

	if CountNonZero(grid) < MinInkPixels {
		return nil, ErrNoDigit
	}

	return &Result{
		Source:   src,
		Grid:     grid,
		Features: Flatten(grid, Threshold),
	}, nil
}

// Decode decodes any registered raster format.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrDecode)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrDecode, cfg.Width, cfg.Height, maxDimension)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// Prepare runs the raster steps and returns the 28×28 region of interest.
func Prepare(src image.Image) (*image.Gray, error) {
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrProcessing)
	}

	gray := Grayscale(src)
	blurred := GaussianBlur(gray, BlurKernel)
	binary := BinaryThreshold(blurred, Threshold)
	NormalizePolarity(binary)
	return ResizeArea(binary, Size, Size), nil
}

// CountNonZero counts the pixels that are not black.
func CountNonZero(img *image.Gray) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Flatten walks img row by row and emits 1 for pixels above threshold.
func Flatten(img *image.Gray, threshold uint8) []int {
	b := img.Bounds()
	out := make([]int, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y > threshold {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}
