package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strings"

	"digit-recognizer/internal/classifier"
	"digit-recognizer/internal/preprocess"
	"digit-recognizer/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var ErrModelUnavailable = errors.New("model not loaded")

const jpegQuality = 75

var labelColor = color.RGBA{G: 255, A: 255}

type RecognitionService struct {
	model classifier.Classifier
	log   *logrus.Logger
}

// NewRecognitionService wraps model, which may be nil when loading failed
// at startup. Every recognition then fails with ErrModelUnavailable.
func NewRecognitionService(model classifier.Classifier, log *logrus.Logger) *RecognitionService {
	return &RecognitionService{model: model, log: log}
}

func (s *RecognitionService) ModelLoaded() bool {
	return s.model != nil
}

// Recognize predicts the digit drawn in data and returns it with the upload
// annotated as a base64 JPEG.
func (s *RecognitionService) Recognize(ctx context.Context, data []byte) (*models.Recognition, error) {
	if s.model == nil {
		return nil, ErrModelUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared, err := preprocess.Preprocess(data)
	if err != nil {
		if errors.Is(err, preprocess.ErrNoDigit) {
			s.log.Warn("No digit recognized")
		} else {
			s.log.WithError(err).Error("Image preprocessing failed")
		}
		return nil, err
	}

	prediction, err := s.predict(prepared.Features)
	if err != nil {
		s.log.WithError(err).Error("Prediction failed")
		return nil, err
	}

	encoded, err := encodeAnnotated(prepared.Source, fmt.Sprintf("Prediction: %d", prediction))
	if err != nil {
		s.log.WithError(err).Error("Failed to encode result image")
		return nil, fmt.Errorf("%w: %v", preprocess.ErrProcessing, err)
	}

	s.log.WithField("prediction", prediction).Info("Digit recognized")
	return &models.Recognition{Prediction: prediction, Image: encoded}, nil
}

func (s *RecognitionService) predict(features []int) (label int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", classifier.ErrPrediction, r)
		}
	}()

	label, err = s.model.Predict(features)
	if err != nil {
		if !errors.Is(err, classifier.ErrPrediction) {
			err = fmt.Errorf("%w: %v", classifier.ErrPrediction, err)
		}
		return 0, err
	}
	if label < 0 || label > 9 {
		return 0, fmt.Errorf("%w: label %d is not a digit", classifier.ErrPrediction, label)
	}
	return label, nil
}

// encodeAnnotated draws text in the top-left corner of a copy of src and
// returns it as base64 JPEG.
func encodeAnnotated(src image.Image, text string) (string, error) {
	b := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Src)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(20, 20),
	}
	drawer.DrawString(text)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ErrorMessage renders err as the user-facing text of a JSON error body.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return "Model not loaded"
	case errors.Is(err, preprocess.ErrDecode):
		return "Failed to load image"
	case errors.Is(err, preprocess.ErrNoDigit):
		return "No digit recognized"
	case errors.Is(err, preprocess.ErrProcessing):
		return "Image processing error: " + detail(err, preprocess.ErrProcessing)
	case errors.Is(err, classifier.ErrPrediction):
		return "Prediction error: " + detail(err, classifier.ErrPrediction)
	default:
		return err.Error()
	}
}

func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
