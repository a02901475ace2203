package models

// Recognition is the outcome of a successful digit recognition.
type Recognition struct {
	Prediction int    `json:"prediction"`
	Image      string `json:"image"` // base64 JPEG of the annotated upload
}

// RecognitionError is the JSON body returned for any recognition failure.
type RecognitionError struct {
	Error string `json:"error"`
}
