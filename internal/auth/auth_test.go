package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	token, err := Static("abc").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/gardens", nil)
	r.AddCookie(&http.Cookie{Name: "pb_auth", Value: "tok"})

	token, err := FromRequest(r, "pb_auth").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestFromRequestWithoutCookieIsAnonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/gardens", nil)

	token, err := FromRequest(r, "pb_auth").Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRequireSession(t *testing.T) {
	_, err := RequireSession(Static("")).Token(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	boom := errors.New("boom")
	_, err = RequireSession(TokenFunc(func(context.Context) (string, error) { return "", boom })).Token(context.Background())
	assert.ErrorIs(t, err, boom)

	token, err := RequireSession(Static("x")).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", token)
}

func TestSetAndClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, "pb_auth", "tok", true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Positive(t, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	ClearCookie(rec, "pb_auth", false)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
