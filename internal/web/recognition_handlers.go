package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"digit-recognizer/internal/recognition"
	"digit-recognizer/internal/user"
	"digit-recognizer/middleware"
	"digit-recognizer/models"
)

const imageField = "image"

// Recognize answers pipeline failures with HTTP 200 and an error body so the
// drawing page can show the message inline.
func (h *WebHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if !h.recognitionService.ModelLoaded() {
		writeJSON(w, http.StatusOK, models.RecognitionError{Error: recognition.ErrorMessage(recognition.ErrModelUnavailable)})
		return
	}

	data, err := readUpload(w, r)
	if err != nil {
		h.log.WithError(err).Warn("Rejected recognition upload")
		writeJSON(w, http.StatusBadRequest, models.RecognitionError{Error: "No image uploaded"})
		return
	}

	result, err := h.recognitionService.Recognize(r.Context(), data)
	if err != nil {
		writeJSON(w, http.StatusOK, models.RecognitionError{Error: recognition.ErrorMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile(imageField)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// APIToken exchanges user credentials for a bearer token.
func (h *WebHandler) APIToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.RecognitionError{Error: "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.RecognitionError{Error: msgMissingFormKey})
		return
	}

	u, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, models.RecognitionError{Error: msgInvalidCredentials})
			return
		}
		h.log.WithError(err).Error("Token request failed")
		writeJSON(w, http.StatusInternalServerError, models.RecognitionError{Error: "Internal server error"})
		return
	}

	token, err := h.tokens.Generate(u.ID, u.Username)
	if err != nil {
		h.log.WithError(err).Error("Failed to issue token")
		writeJSON(w, http.StatusInternalServerError, models.RecognitionError{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// APIRecognize is Recognize behind bearer authentication.
func (h *WebHandler) APIRecognize(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		h.log.WithField("user_id", claims.UserID).Debug("API recognition request")
	}
	h.Recognize(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	middleware.WriteJSON(w, status, v)
}
