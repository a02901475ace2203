package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"digit-recognizer/internal/auth"
	"digit-recognizer/internal/config"
	"digit-recognizer/internal/recognition"
	"digit-recognizer/internal/user"
	"digit-recognizer/models"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName       = "digit-session"
	sessionUserID     = "user_id"
	sessionAdminFlag  = "admin_logged_in"
	maxUploadBytes    = 10 << 20
	layoutTemplate    = "templates/layout.html"
	layoutDefinedName = "layout"
)

var pages = []string{
	"index.html",
	"register.html",
	"login.html",
	"visualization.html",
	"user_records.html",
	"admin_login.html",
	"admin_dashboard.html",
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type WebHandler struct {
	userService        *user.UserService
	recognitionService *recognition.RecognitionService
	tokens             *auth.TokenIssuer
	templates          map[string]*template.Template
	sessionStore       *sessions.CookieStore
	config             *config.Config
	store              Pinger
	log                *logrus.Logger
}

type PageData struct {
	Page     string
	LoggedIn bool
	Admin    bool
	Flashes  []string
	Users    []*models.User
	Images   []string
}

func NewWebHandler(
	userService *user.UserService,
	recognitionService *recognition.RecognitionService,
	tokens *auth.TokenIssuer,
	store Pinger,
	cfg *config.Config,
	log *logrus.Logger,
) (*WebHandler, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}

	return &WebHandler{
		userService:        userService,
		recognitionService: recognitionService,
		tokens:             tokens,
		templates:          templates,
		sessionStore:       sessionStore,
		config:             cfg,
		store:              store,
		log:                log,
	}, nil
}

// loadTemplates parses every page together with the shared layout so each
// page can define its own "content" block.
func loadTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, layoutTemplate, "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

func (h *WebHandler) render(w http.ResponseWriter, page string, data PageData) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.log.WithField("template", page).Error("Template not found")
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, layoutDefinedName, data); err != nil {
		h.log.WithError(err).WithField("template", page).Error("Template execution error")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// session returns the request's session. A cookie that fails to decode,
// for example after a secret rotation, yields a fresh session.
func (h *WebHandler) session(r *http.Request) *sessions.Session {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		h.log.WithError(err).Debug("Discarding unreadable session cookie")
	}
	return session
}

func (h *WebHandler) saveSession(w http.ResponseWriter, r *http.Request, session *sessions.Session) bool {
	if err := session.Save(r, w); err != nil {
		h.log.WithError(err).Error("Failed to save session")
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return false
	}
	return true
}

func sessionUser(session *sessions.Session) (int64, bool) {
	id, ok := session.Values[sessionUserID].(int64)
	return id, ok
}

func isAdmin(session *sessions.Session) bool {
	admin, _ := session.Values[sessionAdminFlag].(bool)
	return admin
}

// pageData fills the login state and drains pending flashes. The caller must
// save the session afterwards for the flashes to be consumed.
func (h *WebHandler) pageData(session *sessions.Session, page string) PageData {
	_, loggedIn := sessionUser(session)
	data := PageData{
		Page:     page,
		LoggedIn: loggedIn,
		Admin:    isAdmin(session),
	}
	for _, f := range session.Flashes() {
		if msg, ok := f.(string); ok {
			data.Flashes = append(data.Flashes, msg)
		}
	}
	return data
}

// renderPage builds the page data, lets fill add page-specific fields and
// saves the session so that displayed flashes are not shown again.
func (h *WebHandler) renderPage(w http.ResponseWriter, r *http.Request, session *sessions.Session, page string, fill func(*PageData)) {
	data := h.pageData(session, strings.TrimSuffix(page, ".html"))
	if fill != nil {
		fill(&data)
	}
	if !h.saveSession(w, r, session) {
		return
	}
	h.render(w, page, data)
}

func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, h.session(r), "index.html", nil)
}

func (h *WebHandler) Visualization(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, h.session(r), "visualization.html", func(data *PageData) {
		data.Images = h.config.VisualizationImages
	})
}

type healthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	ModelLoaded bool   `json:"model_loaded"`
}

func (h *WebHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Database: "ok", ModelLoaded: h.recognitionService.ModelLoaded()}
	status := http.StatusOK

	if err := h.store.PingContext(r.Context()); err != nil {
		h.log.WithError(err).Error("Health check: database unreachable")
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
