// Package auth supplies the backend auth token for the current user session.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNoSession is returned by RequireSession when the wrapped provider has no
// token, such as a request without a session cookie.
var ErrNoSession = errors.New("no session cookie")

type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Static always returns token.
func Static(token string) TokenProvider {
	return TokenFunc(func(context.Context) (string, error) { return token, nil })
}

// FromRequest reads the token from the named cookie on r. A missing cookie
// yields an empty token, matching an anonymous visitor.
func FromRequest(r *http.Request, cookieName string) TokenProvider {
	return TokenFunc(func(context.Context) (string, error) {
		c, err := r.Cookie(cookieName)
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return c.Value, nil
	})
}

// RequireSession wraps p so that an empty token is reported as ErrNoSession.
func RequireSession(p TokenProvider) TokenProvider {
	return TokenFunc(func(ctx context.Context) (string, error) {
		token, err := p.Token(ctx)
		if err != nil {
			return "", err
		}
		if token == "" {
			return "", ErrNoSession
		}
		return token, nil
	})
}

// sessionTTL matches the backend's default auth token lifetime.
const sessionTTL = 14 * 24 * time.Hour

// SetCookie stores token in an HttpOnly session cookie.
func SetCookie(w http.ResponseWriter, name, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
