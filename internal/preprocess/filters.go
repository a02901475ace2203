package preprocess

import (
	"image"
	"image/color"
	"math"
)

// Grayscale converts to one channel with BT.601 luma weights, using the
// same 14-bit fixed point rounding as OpenCV's BGR2GRAY. Alpha is ignored.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		out := dst.Pix[(y-b.Min.Y)*dst.Stride : (y-b.Min.Y)*dst.Stride+b.Dx()]
		switch img := src.(type) {
		case *image.Gray:
			copy(out, img.Pix[img.PixOffset(b.Min.X, y):])
		case *image.NRGBA:
			row := img.Pix[img.PixOffset(b.Min.X, y):]
			for i := range out {
				out[i] = luma(row[4*i], row[4*i+1], row[4*i+2])
			}
		case *image.RGBA:
			// premultiplied, so a transparent pixel reads as black
			row := img.Pix[img.PixOffset(b.Min.X, y):]
			for i := range out {
				out[i] = luma(row[4*i], row[4*i+1], row[4*i+2])
			}
		case *image.YCbCr:
			for i := range out {
				yi, ci := img.YOffset(b.Min.X+i, y), img.COffset(b.Min.X+i, y)
				r, g, bl := color.YCbCrToRGB(img.Y[yi], img.Cb[ci], img.Cr[ci])
				out[i] = luma(r, g, bl)
			}
		default:
			for i := range out {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+i, y)).(color.NRGBA)
				out[i] = luma(c.R, c.G, c.B)
			}
		}
	}
	return dst
}

func luma(r, g, b uint8) uint8 {
	const (
		rw    = 4899 // 0.299 << 14
		gw    = 9617 // 0.587 << 14
		bw    = 1868 // 0.114 << 14
		shift = 14
	)
	return uint8((uint32(r)*rw + uint32(g)*gw + uint32(b)*bw + 1<<(shift-1)) >> shift)
}

// gaussianKernel returns a normalised 1-D kernel. A non-positive sigma is
// derived from the size as 0.3*((ksize-1)*0.5-1)+0.8.
func gaussianKernel(ksize int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*(float64(ksize-1)*0.5-1) + 0.8
	}
	kernel := make([]float64, ksize)
	center := float64(ksize-1) / 2
	scale := -0.5 / (sigma * sigma)
	sum := 0.0
	for i := range kernel {
		d := float64(i) - center
		kernel[i] = math.Exp(scale * d * d)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflect101 maps i into [0, n) mirroring around the edge pixels
// without repeating them (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

const kernelShift = 8

// fixedKernel quantises a Gaussian kernel to kernelShift fractional bits.
// The centre tap absorbs the rounding residue so the taps sum to exactly
// 1<<kernelShift and flat regions pass through unchanged.
func fixedKernel(ksize int) []uint32 {
	kernel := gaussianKernel(ksize, 0)
	fixed := make([]uint32, ksize)
	var sum uint32
	for i, v := range kernel {
		fixed[i] = uint32(math.Round(v * (1 << kernelShift)))
		sum += fixed[i]
	}
	fixed[ksize/2] += 1<<kernelShift - sum
	return fixed
}

// GaussianBlur applies a ksize×ksize separable Gaussian with the default
// sigma for that size. Both passes run in fixed point: the horizontal pass
// keeps kernelShift fractional bits in a uint16 buffer and the vertical
// pass rounds back to 8 bits.
func GaussianBlur(src *image.Gray, ksize int) *image.Gray {
	kernel := fixedKernel(ksize)
	radius := ksize / 2
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	tmp := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		out := tmp[y*w : y*w+w]
		for x := range out {
			var acc uint32
			for k, kv := range kernel {
				acc += kv * uint32(row[reflect101(x+k-radius, w)])
			}
			out[x] = uint16(acc)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	const half = 1 << (2*kernelShift - 1)
	for y := 0; y < h; y++ {
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range out {
			var acc uint32
			for k, kv := range kernel {
				acc += kv * uint32(tmp[reflect101(y+k-radius, h)*w+x])
			}
			out[x] = uint8((acc + half) >> (2 * kernelShift))
		}
	}
	return dst
}

// BinaryThreshold sets pixels strictly above thresh to 255 and the rest to 0.
func BinaryThreshold(src *image.Gray, thresh uint8) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if src.GrayAt(b.Min.X+x, b.Min.Y+y).Y > thresh {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// NormalizePolarity inverts a binary image in place when white covers
// more than half of it, so ink always ends up white on black. It reports
// whether the image was inverted.
func NormalizePolarity(img *image.Gray) bool {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 || CountNonZero(img)*2 <= total {
		return false
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i, v := range row {
			row[i] = 255 - v
		}
	}
	return true
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
