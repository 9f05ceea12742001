package web

import (
	"net/http"
	"strings"

	"github.com/vbonduro/gardenbook/internal/auth"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
)

const loginFailedMessage = "Failed to authenticate."

type loginForm struct {
	Email string
	Error string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, http.StatusOK, loginForm{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := loginForm{Email: strings.TrimSpace(r.FormValue("email"))}
	password := r.FormValue("password")
	if form.Email == "" || password == "" {
		form.Error = loginFailedMessage
		s.renderLogin(w, http.StatusBadRequest, form)
		return
	}

	token, err := s.backend.Session().AuthWithPassword(r.Context(), s.opts.AuthCollection, form.Email, password)
	if err != nil {
		s.logger.Warn("login failed", "email", form.Email, "error", err)
		form.Error = pocketbase.Message(err, loginFailedMessage)
		s.renderLogin(w, http.StatusUnauthorized, form)
		return
	}

	auth.SetCookie(w, s.opts.AuthCookie, token, s.opts.SecureCookies)
	s.logger.Info("login succeeded", "email", form.Email)
	redirect(w, r, "/gardens")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w, s.opts.AuthCookie, s.opts.SecureCookies)
	redirect(w, r, "/login")
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, form loginForm) {
	if err := s.renderPage(w, status,
		map[string]any{"Form": form, "ActiveNav": "login"},
		"base.html", "pages/login.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
