package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type User struct {
	ID         string
	Collection string
	Email      string
	Created    string
}

// UserStore keeps development-backend accounts and their session tokens.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, collection, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := NewID()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, collection, email, password_hash) VALUES (?, ?, ?, ?)
	`, id, collection, strings.TrimSpace(email), string(hash)); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.getByID(ctx, id)
}

// Authenticate checks email and password against collection. Unknown users and
// wrong passwords both return ErrInvalidCredentials.
func (s *UserStore) Authenticate(ctx context.Context, collection, email, password string) (*User, error) {
	u := &User{}
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, collection, email, created_at, password_hash FROM users
		WHERE collection = ? AND email = ?
	`, collection, strings.TrimSpace(email)).Scan(&u.ID, &u.Collection, &u.Email, &u.Created, &hash)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserStore) CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id) VALUES (?, ?)
	`, token, userID); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// UserForToken returns nil, nil for unknown tokens.
func (s *UserStore) UserForToken(ctx context.Context, token string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.collection, u.email, u.created_at FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, token).Scan(&u.ID, &u.Collection, &u.Email, &u.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	return u, nil
}

// FindByEmail returns nil, nil when no user in collection has email.
func (s *UserStore) FindByEmail(ctx context.Context, collection, email string) (*User, error) {
	u := &User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, collection, email, created_at FROM users WHERE collection = ? AND email = ?
	`, collection, strings.TrimSpace(email)).Scan(&u.ID, &u.Collection, &u.Email, &u.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (s *UserStore) getByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	if err := s.db.QueryRowContext(ctx, `
		SELECT id, collection, email, created_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Collection, &u.Email, &u.Created); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
