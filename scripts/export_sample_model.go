package main

import (
	"encoding/json"
	"flag"
	"image"
	"os"
	"path/filepath"

	"digit-recognizer/internal/classifier"
	"digit-recognizer/internal/preprocess"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/basicfont"
)

const sampleK = 3

var (
	sampleHeights = []int{18, 24}
	sampleShifts  = []image.Point{{0, 0}, {-2, 0}, {2, 0}, {0, -2}, {0, 2}}
	sampleStrokes = []int{0, 1}
)

// knnArtifact mirrors the kNN layout classifier.Load reads.
type knnArtifact struct {
	Kind    string  `json:"kind"`
	K       int     `json:"k"`
	Samples [][]int `json:"samples"`
	Labels  []int   `json:"labels"`
}

// glyph returns the ink of digit d from the 7x13 face, cropped to its
// bounding box.
func glyph(d int) [][]bool {
	face := basicfont.Face7x13
	rng := face.Ranges[0]
	h := face.Ascent + face.Descent
	top := (int('0'+rune(d)-rng.Low) + rng.Offset) * h

	minX, minY, maxX, maxY := face.Width, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < face.Width; x++ {
			if _, _, _, a := face.Mask.At(x, top+y).RGBA(); a == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	cells := make([][]bool, 0, maxY-minY+1)
	for y := minY; y <= maxY; y++ {
		row := make([]bool, maxX-minX+1)
		for x := range row {
			_, _, _, a := face.Mask.At(minX+x, top+y).RGBA()
			row[x] = a != 0
		}
		cells = append(cells, row)
	}
	return cells
}

// render scales g to height rows by nearest neighbour, centres it on the
// feature grid moved by shift and widens every stroke by stroke pixels.
func render(g [][]bool, height int, shift image.Point, stroke int) []int {
	gh, gw := len(g), len(g[0])
	width := height * gw / gh
	ox := (preprocess.Size-width)/2 + shift.X
	oy := (preprocess.Size-height)/2 + shift.Y

	grid := make([]int, preprocess.FeatureLength)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !g[y*gh/height][x*gw/width] {
				continue
			}
			for sy := -stroke; sy <= stroke; sy++ {
				for sx := -stroke; sx <= stroke; sx++ {
					px, py := ox+x+sx, oy+y+sy
					if px >= 0 && px < preprocess.Size && py >= 0 && py < preprocess.Size {
						grid[py*preprocess.Size+px] = 1
					}
				}
			}
		}
	}
	return grid
}

func sampleArtifact() knnArtifact {
	a := knnArtifact{Kind: classifier.KindKNN, K: sampleK}
	for d := 0; d <= 9; d++ {
		g := glyph(d)
		for _, height := range sampleHeights {
			for _, shift := range sampleShifts {
				for _, stroke := range sampleStrokes {
					a.Samples = append(a.Samples, render(g, height, shift, stroke))
					a.Labels = append(a.Labels, d)
				}
			}
		}
	}
	return a
}

func main() {
	out := flag.String("out", filepath.Join("model", "digit_recognizer.json"), "artifact path")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	raw, err := json.Marshal(sampleArtifact())
	if err != nil {
		log.WithError(err).Fatal("Failed to encode artifact")
	}
	if _, err := classifier.Parse(raw); err != nil {
		log.WithError(err).Fatal("Generated artifact does not load")
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.WithError(err).Fatal("Failed to create model directory")
	}
	if err := os.WriteFile(*out, raw, 0644); err != nil {
		log.WithError(err).Fatal("Failed to write artifact")
	}
	log.WithField("path", *out).Info("Sample kNN artifact written")
}
