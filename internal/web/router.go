package web

import (
	"net/http"

	"digit-recognizer/middleware"

	"github.com/gorilla/mux"
)

func (h *WebHandler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Web pages
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("GET", "POST")
	r.HandleFunc("/login", h.Login).Methods("GET", "POST")
	r.HandleFunc("/logout", h.Logout).Methods("GET")
	r.HandleFunc("/recognize", h.Recognize).Methods("POST")
	r.HandleFunc("/visualization", h.Visualization).Methods("GET")
	r.HandleFunc("/user_records", h.UserRecords).Methods("GET")

	// Admin
	r.HandleFunc("/admin_login", h.AdminLogin).Methods("GET", "POST")
	r.HandleFunc("/admin_logout", h.AdminLogout).Methods("GET")
	r.HandleFunc("/admin_dashboard", h.AdminDashboard).Methods("GET")
	r.HandleFunc("/delete_user/{id:[0-9]+}", h.DeleteUser).Methods("POST")

	r.HandleFunc("/healthz", h.Health).Methods("GET")

	// JSON API
	auth := middleware.NewMiddleware(h.tokens)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.SetupCORS())
	api.HandleFunc("/token", h.APIToken).Methods("POST", "OPTIONS")
	api.HandleFunc("/recognize", auth.AuthMiddleware(h.APIRecognize)).Methods("POST", "OPTIONS")

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(h.config.StaticDir))))

	return r
}
