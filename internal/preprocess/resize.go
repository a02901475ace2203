package preprocess

import (
	"image"
	"math"
)

type areaWeight struct {
	index  int
	weight float64
}

// areaWeights splits each destination cell of an axis into the source
// cells it overlaps, weighted by overlap length over cell length.
func areaWeights(srcLen, dstLen int) [][]areaWeight {
	scale := float64(srcLen) / float64(dstLen)
	out := make([][]areaWeight, dstLen)
	for d := 0; d < dstLen; d++ {
		start := float64(d) * scale
		end := start + scale
		first := int(math.Floor(start))
		last := int(math.Ceil(end))
		if last > srcLen {
			last = srcLen
		}
		for s := first; s < last; s++ {
			overlap := math.Min(end, float64(s+1)) - math.Max(start, float64(s))
			if overlap <= 0 {
				continue
			}
			out[d] = append(out[d], areaWeight{index: s, weight: overlap / scale})
		}
	}
	return out
}

// ResizeArea resamples src to w×h by pixel-area relation: every output
// pixel is the coverage-weighted mean of the source pixels under it.
func ResizeArea(src *image.Gray, w, h int) *image.Gray {
	b := src.Bounds()
	xs := areaWeights(b.Dx(), w)
	ys := areaWeights(b.Dy(), h)

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for dy, yw := range ys {
		for dx, xw := range xs {
			acc := 0.0
			for _, wy := range yw {
				row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+wy.index):]
				for _, wx := range xw {
					acc += wy.weight * wx.weight * float64(row[wx.index])
				}
			}
			dst.Pix[dy*dst.Stride+dx] = saturate(acc)
		}
	}
	return dst
}
