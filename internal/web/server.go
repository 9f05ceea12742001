package web

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vbonduro/gardenbook/internal/auth"
	"github.com/vbonduro/gardenbook/internal/logging"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
)

// Options configures the session cookie and the backend auth collection.
type Options struct {
	AuthCookie     string
	AuthCollection string
	SecureCookies  bool
	// RequireLogin sends anonymous visitors to the login page before any
	// write reaches the backend.
	RequireLogin bool
}

type Server struct {
	backend   *pocketbase.Client
	opts      Options
	templates fs.FS
	mux       *http.ServeMux
	tmplFuncs template.FuncMap
	csp       string
	logger    *slog.Logger
}

func NewServer(backend *pocketbase.Client, opts Options, tmpl fs.FS, logger *slog.Logger) *Server {
	if opts.AuthCookie == "" {
		opts.AuthCookie = "pb_auth"
	}
	if opts.AuthCollection == "" {
		opts.AuthCollection = "users"
	}
	s := &Server{
		backend:   backend,
		opts:      opts,
		templates: tmpl,
		mux:       http.NewServeMux(),
		csp:       contentSecurityPolicy(backend.BaseURL()),
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"truncate": truncate,
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/gardens", http.StatusSeeOther)
	})

	s.mux.HandleFunc("GET /gardens", s.handleListGardens)
	s.mux.HandleFunc("POST /gardens/{id}/delete", s.requireLogin(s.handleDeleteGarden))
	s.mux.HandleFunc("GET /gardens/details/{id}", s.handleGardenDetails)
	s.mux.HandleFunc("GET /gardens/create", s.requireLogin(s.handleGardenForm))
	s.mux.HandleFunc("POST /gardens/create", s.requireLogin(s.handleSaveGarden))
	s.mux.HandleFunc("GET /gardens/edit/{id}", s.requireLogin(s.handleGardenForm))
	s.mux.HandleFunc("POST /gardens/edit/{id}", s.requireLogin(s.handleSaveGarden))

	s.mux.HandleFunc("GET /reports", s.handleListReports)
	s.mux.HandleFunc("GET /reports/create", s.requireLogin(s.handleReportForm))
	s.mux.HandleFunc("POST /reports/create", s.requireLogin(s.handleSaveReport))
	s.mux.HandleFunc("GET /reports/edit/{id}", s.requireLogin(s.handleReportForm))
	s.mux.HandleFunc("POST /reports/edit/{id}", s.requireLogin(s.handleSaveReport))
	s.mux.HandleFunc("POST /reports/delete/{id}", s.requireLogin(s.handleDeleteReport))
	s.mux.HandleFunc("POST /reports/input", s.handleReportInput)

	s.mux.HandleFunc("GET /login", s.handleLoginForm)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /logout", s.handleLogout)
}

// session returns a backend client owned by this request and the token
// provider for the caller's session cookie.
func (s *Server) session(r *http.Request) (*pocketbase.Client, auth.TokenProvider) {
	return s.backend.Session(), auth.FromRequest(r, s.opts.AuthCookie)
}

// requireLogin redirects to the login page when RequireLogin is set and the
// request has no session.
func (s *Server) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	if !s.opts.RequireLogin {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := auth.RequireSession(auth.FromRequest(r, s.opts.AuthCookie)).Token(r.Context())
		switch {
		case errors.Is(err, auth.ErrNoSession):
			redirect(w, r, "/login")
			return
		case err != nil:
			s.logger.Error("failed to read session", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		next(w, r)
	}
}

// contentSecurityPolicy allows images from the backend's file endpoint in
// addition to the UI's own origin.
func contentSecurityPolicy(backendURL string) string {
	img := "'self' data:"
	if u, err := url.Parse(backendURL); err == nil && u.Scheme != "" && u.Host != "" {
		img += " " + u.Scheme + "://" + u.Host
	}
	return "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline' https://unpkg.com; " +
		"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; " +
		"img-src " + img + "; " +
		"connect-src 'self'"
}

// securityHeaders adds defensive HTTP response headers to every response.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", s.csp)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logging.Requests(s.logger, slog.LevelInfo, "request", s.securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr, "backend", s.backend.BaseURL())
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends htmx requests an HX-Redirect and plain requests a 303.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, status int, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses file plus any templates it includes and executes the
// block named name.
func (s *Server) renderPartial(w http.ResponseWriter, status int, name string, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	if tmpl.Lookup(name) == nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return fmt.Errorf("template %q not defined", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return tmpl.ExecuteTemplate(w, name, data)
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
