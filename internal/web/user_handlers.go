package web

import (
	"errors"
	"net/http"

	"digit-recognizer/internal/user"
)

const (
	msgMissingFormKey      = "Missing form key"
	msgPasswordMismatch    = "Passwords do not match"
	msgRegistrationFailed  = "There was an issue adding your account"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidAdmin        = "Invalid admin credentials"
	msgUserNotFound        = "User not found."
	msgUserDeletedTemplate = "User %s deleted successfully."
)

var registrationFields = []string{"first_name", "last_name", "email", "password", "confirm_password", "phone"}

// formHasKeys reports whether every key was submitted, even if empty.
func formHasKeys(r *http.Request, keys ...string) bool {
	for _, k := range keys {
		if _, ok := r.PostForm[k]; !ok {
			return false
		}
	}
	return true
}

func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPage(w, r, h.session(r), "register.html", nil)
		return
	}

	if err := r.ParseForm(); err != nil || !formHasKeys(r, registrationFields...) {
		h.log.Warn("Registration rejected: missing form key")
		http.Error(w, msgMissingFormKey, http.StatusBadRequest)
		return
	}

	form := user.RegistrationForm{
		FirstName:       r.PostForm.Get("first_name"),
		LastName:        r.PostForm.Get("last_name"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
		Phone:           r.PostForm.Get("phone"),
	}

	_, err := h.userService.Register(r.Context(), form)
	switch {
	case err == nil:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, user.ErrPasswordMismatch):
		writeText(w, http.StatusOK, msgPasswordMismatch)
	case errors.Is(err, user.ErrValidation):
		h.log.WithError(err).Warn("Registration rejected")
		http.Error(w, msgMissingFormKey, http.StatusBadRequest)
	default:
		h.log.WithError(err).Error("Error during registration")
		writeText(w, http.StatusOK, msgRegistrationFailed)
	}
}

func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPage(w, r, h.session(r), "login.html", nil)
		return
	}

	if err := r.ParseForm(); err != nil || !formHasKeys(r, "email", "password") {
		http.Error(w, msgMissingFormKey, http.StatusBadRequest)
		return
	}

	u, err := h.userService.Authenticate(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		if !errors.Is(err, user.ErrInvalidCredentials) {
			h.log.WithError(err).Error("Login failed")
		}
		writeText(w, http.StatusOK, msgInvalidCredentials)
		return
	}

	session := h.session(r)
	session.Values[sessionUserID] = u.ID
	if !h.saveSession(w, r, session) {
		return
	}
	h.log.WithField("user_id", u.ID).Info("User logged in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	delete(session.Values, sessionUserID)
	if !h.saveSession(w, r, session) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) UserRecords(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if _, ok := sessionUser(session); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to list users")
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	h.renderPage(w, r, session, "user_records.html", func(data *PageData) {
		data.Users = users
	})
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
