package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"digit-recognizer/internal/classifier"
	"digit-recognizer/internal/preprocess"
	"digit-recognizer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClassifier struct {
	label int
	err   error
	calls int
}

func (f *fixedClassifier) Predict(features []int) (int, error) {
	f.calls++
	if len(features) != preprocess.FeatureLength {
		return 0, fmt.Errorf("unexpected length %d", len(features))
	}
	return f.label, f.err
}

type panickingClassifier struct{}

func (panickingClassifier) Predict([]int) (int, error) { panic("index out of range") }

func TestRecognize_Success(t *testing.T) {
	model := &fixedClassifier{label: 7}
	svc := NewRecognitionService(model, testutil.NewTestLogger())

	result, err := svc.Recognize(context.Background(), testutil.StrokeImage(t, 120, color.White, color.Black))
	require.NoError(t, err)

	assert.Equal(t, 7, result.Prediction)
	assert.NotEmpty(t, result.Image)
	assert.Equal(t, 1, model.calls)

	raw, err := base64.StdEncoding.DecodeString(result.Image)
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 120), decoded.Bounds())
}

func TestRecognize_WithLinearModel(t *testing.T) {
	// weights reward ink in the centre column for class 1, elsewhere for class 0
	coef := make([][]float64, 10)
	for c := range coef {
		coef[c] = make([]float64, preprocess.FeatureLength)
	}
	for y := 0; y < preprocess.Size; y++ {
		coef[1][y*preprocess.Size+14] = 1
	}
	intercept := make([]float64, 10)
	intercept[0] = 0.5
	classes := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	model, err := classifier.NewLinear(classes, coef, intercept)
	require.NoError(t, err)
	svc := NewRecognitionService(model, testutil.NewTestLogger())

	result, err := svc.Recognize(context.Background(), testutil.StrokeImage(t, 140, color.White, color.Black))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Prediction)
	assert.GreaterOrEqual(t, result.Prediction, 0)
	assert.LessOrEqual(t, result.Prediction, 9)
}

func TestRecognize_ModelUnavailable(t *testing.T) {
	svc := NewRecognitionService(nil, testutil.NewTestLogger())
	assert.False(t, svc.ModelLoaded())

	_, err := svc.Recognize(context.Background(), testutil.StrokeImage(t, 50, color.White, color.Black))
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, "Model not loaded", ErrorMessage(err))
}

func TestRecognize_BlankCanvas(t *testing.T) {
	model := &fixedClassifier{label: 3}
	svc := NewRecognitionService(model, testutil.NewTestLogger())

	_, err := svc.Recognize(context.Background(), testutil.BlankImage(t, 100, color.White))
	assert.ErrorIs(t, err, preprocess.ErrNoDigit)
	assert.Equal(t, "No digit recognized", ErrorMessage(err))
	assert.Zero(t, model.calls)
}

func TestRecognize_DecodeFailure(t *testing.T) {
	svc := NewRecognitionService(&fixedClassifier{}, testutil.NewTestLogger())

	_, err := svc.Recognize(context.Background(), []byte("nope"))
	assert.ErrorIs(t, err, preprocess.ErrDecode)
	assert.Equal(t, "Failed to load image", ErrorMessage(err))
}

func TestRecognize_PredictionFailures(t *testing.T) {
	stroke := testutil.StrokeImage(t, 100, color.White, color.Black)

	for name, model := range map[string]classifier.Classifier{
		"error":        &fixedClassifier{err: errors.New("boom")},
		"out of range": &fixedClassifier{label: 12},
		"panic":        panickingClassifier{},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewRecognitionService(model, testutil.NewTestLogger())
			_, err := svc.Recognize(context.Background(), stroke)
			assert.ErrorIs(t, err, classifier.ErrPrediction)
			assert.Contains(t, ErrorMessage(err), "Prediction error: ")
		})
	}
}

func TestRecognize_CancelledContext(t *testing.T) {
	svc := NewRecognitionService(&fixedClassifier{}, testutil.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Recognize(ctx, testutil.StrokeImage(t, 50, color.White, color.Black))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorMessage_Processing(t *testing.T) {
	err := fmt.Errorf("%w: empty image", preprocess.ErrProcessing)
	assert.Equal(t, "Image processing error: empty image", ErrorMessage(err))
	assert.Equal(t, "Image processing error: image processing error", ErrorMessage(preprocess.ErrProcessing))
}
