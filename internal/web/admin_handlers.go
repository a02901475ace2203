package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"digit-recognizer/internal/user"

	"github.com/gorilla/mux"
)

func (h *WebHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil || !formHasKeys(r, "admin_username", "admin_password") {
			http.Error(w, msgMissingFormKey, http.StatusBadRequest)
			return
		}

		if h.userService.AuthenticateAdmin(r.PostForm.Get("admin_username"), r.PostForm.Get("admin_password")) {
			session.Values[sessionAdminFlag] = true
			if !h.saveSession(w, r, session) {
				return
			}
			h.log.Info("Admin logged in")
			http.Redirect(w, r, "/admin_dashboard", http.StatusSeeOther)
			return
		}

		h.log.Warn("Invalid admin credentials")
		session.AddFlash(msgInvalidAdmin)
	}

	h.renderPage(w, r, session, "admin_login.html", nil)
}

func (h *WebHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	delete(session.Values, sessionAdminFlag)
	if !h.saveSession(w, r, session) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if !isAdmin(session) {
		http.Redirect(w, r, "/admin_login", http.StatusSeeOther)
		return
	}

	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to list users")
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	h.renderPage(w, r, session, "admin_dashboard.html", func(data *PageData) {
		data.Users = users
	})
}

func (h *WebHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if !isAdmin(session) {
		http.Redirect(w, r, "/admin_login", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	deleted, err := h.userService.DeleteUser(r.Context(), id)
	switch {
	case err == nil:
		session.AddFlash(fmt.Sprintf(msgUserDeletedTemplate, deleted.Username))
	case errors.Is(err, user.ErrUserNotFound):
		session.AddFlash(msgUserNotFound)
	default:
		h.log.WithError(err).WithField("user_id", id).Error("Failed to delete user")
		http.Error(w, "failed to delete user", http.StatusInternalServerError)
		return
	}

	if !h.saveSession(w, r, session) {
		return
	}
	http.Redirect(w, r, "/admin_dashboard", http.StatusSeeOther)
}
