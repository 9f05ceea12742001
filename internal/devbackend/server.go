// Package devbackend serves a PocketBase-compatible subset of the record API
// over SQLite so the UI can run and be tested without the hosted backend.
package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/gardenbook/internal/logging"
	"github.com/vbonduro/gardenbook/internal/photostore"
	"github.com/vbonduro/gardenbook/internal/store"
)

// recordRepository is the subset of store.RecordStore the server requires.
type recordRepository interface {
	Create(ctx context.Context, collection string, data map[string]any) (*store.Record, error)
	GetByID(ctx context.Context, collection, id string) (*store.Record, error)
	List(ctx context.Context, collection string, page, perPage int, sort string) ([]*store.Record, int, error)
	Update(ctx context.Context, collection, id string, patch map[string]any) (*store.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// userRepository is the subset of store.UserStore the server requires.
type userRepository interface {
	Authenticate(ctx context.Context, collection, email, password string) (*store.User, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	UserForToken(ctx context.Context, token string) (*store.User, error)
}

type Options struct {
	// RequireAuth rejects record requests without a valid session token.
	RequireAuth bool
}

type Server struct {
	records recordRepository
	users   userRepository
	photos  photostore.PhotoStore
	opts    Options
	mux     *http.ServeMux
	logger  *slog.Logger
}

func NewServer(records recordRepository, users userRepository, photos photostore.PhotoStore, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		records: records,
		users:   users,
		photos:  photos,
		opts:    opts,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "message": "API is healthy."})
	})
	s.mux.HandleFunc("GET /api/collections/{collection}/records", s.requireAuth(s.handleList))
	s.mux.HandleFunc("POST /api/collections/{collection}/records", s.requireAuth(s.handleCreate))
	s.mux.HandleFunc("GET /api/collections/{collection}/records/{id}", s.requireAuth(s.handleGet))
	s.mux.HandleFunc("PATCH /api/collections/{collection}/records/{id}", s.requireAuth(s.handleUpdate))
	s.mux.HandleFunc("DELETE /api/collections/{collection}/records/{id}", s.requireAuth(s.handleDelete))
	s.mux.HandleFunc("POST /api/collections/{collection}/auth-with-password", s.handleAuthWithPassword)
	s.mux.HandleFunc("GET /api/files/{collection}/{id}/{filename}", s.handleFile)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logging.Requests(s.logger, slog.LevelDebug, "backend request", s.mux).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting dev backend", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if !s.opts.RequireAuth {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "The request requires valid record authorization token.")
			return
		}
		user, err := s.users.UserForToken(r.Context(), token)
		if err != nil {
			s.logger.Error("session lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong while processing your request.")
			return
		}
		if user == nil {
			writeError(w, http.StatusForbidden, "The authorized record is not allowed to perform this action.")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleAuthWithPassword(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	var body struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	user, err := s.users.Authenticate(r.Context(), collection, body.Identity, body.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		writeError(w, http.StatusBadRequest, "Failed to authenticate.")
		return
	}
	if err != nil {
		s.logger.Error("authenticate failed", "collection", collection, "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong while processing your request.")
		return
	}

	token, err := s.users.CreateSession(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("create session failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong while processing your request.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"record": map[string]any{
			"id":             user.ID,
			"collectionName": user.Collection,
			"email":          user.Email,
			"created":        user.Created,
		},
	})
}

// recordJSON flattens a stored record into the backend's wire shape.
func recordJSON(rec *store.Record) map[string]any {
	out := make(map[string]any, len(rec.Data)+5)
	for k, v := range rec.Data {
		out[k] = v
	}
	out["id"] = rec.ID
	out["collectionId"] = rec.Collection
	out["collectionName"] = rec.Collection
	out["created"] = rec.Created
	out["updated"] = rec.Updated
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"code": status, "message": message, "data": map[string]any{}})
}
