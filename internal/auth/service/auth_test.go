package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widyatma/catalog/auth/pkg/request"
	"github.com/widyatma/catalog/internal/config"
	inErrors "github.com/widyatma/catalog/internal/errors"
	"github.com/widyatma/catalog/internal/session"
)

var testAdmin = config.Admin{
	Email:    "admin@example.com",
	Password: "admin123",
	ApiKey:   "secret-key",
}

func newTestService(admin config.Admin, now time.Time) AuthService {
	svc := NewAuthService(admin, "development", session.Base64Codec{})
	svc.now = func() time.Time { return now }
	return svc
}

func testContext() context.Context {
	return zerolog.New(nil).WithContext(context.Background())
}

func sessionCookieAt(t *testing.T, issued time.Time) *http.Cookie {
	token, err := session.Base64Codec{}.Encode(session.Session{
		UserID:    "admin-1",
		Email:     testAdmin.Email,
		Role:      "admin",
		Timestamp: issued.UnixMilli(),
	})
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func TestLogin(t *testing.T) {
	now := time.Now()
	svc := newTestService(testAdmin, now)

	tests := []struct {
		name           string
		req            request.LoginRequest
		expectedMaxAge int
		expectedErr    error
	}{
		{
			name:           "valid credentials",
			req:            request.LoginRequest{Email: testAdmin.Email, Password: testAdmin.Password},
			expectedMaxAge: int(session.CookieAge.Seconds()),
		},
		{
			name:           "remember me extends cookie",
			req:            request.LoginRequest{Email: testAdmin.Email, Password: testAdmin.Password, RememberMe: true},
			expectedMaxAge: int(session.RememberMeCookieAge.Seconds()),
		},
		{
			name:        "wrong password",
			req:         request.LoginRequest{Email: testAdmin.Email, Password: "nope"},
			expectedErr: inErrors.ErrInvalidCredential,
		},
		{
			name:        "wrong email",
			req:         request.LoginRequest{Email: "other@example.com", Password: testAdmin.Password},
			expectedErr: inErrors.ErrInvalidCredential,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, cookie, err := svc.Login(testContext(), tt.req)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, cookie)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin-1", user.ID)
			assert.Equal(t, testAdmin.Email, user.Email)
			assert.Equal(t, "admin", user.Role)
			require.NotNil(t, cookie)
			assert.Equal(t, session.CookieName, cookie.Name)
			assert.Equal(t, tt.expectedMaxAge, cookie.MaxAge)
			assert.True(t, cookie.HttpOnly)
			assert.False(t, cookie.Secure)
			assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

			decoded, err := session.Base64Codec{}.Decode(cookie.Value)
			require.NoError(t, err)
			assert.Equal(t, now.UnixMilli(), decoded.Timestamp)
		})
	}
}

func TestLoginSecureCookieInProduction(t *testing.T) {
	svc := NewAuthService(testAdmin, "production", session.Base64Codec{})

	_, cookie, err := svc.Login(
		testContext(),
		request.LoginRequest{Email: testAdmin.Email, Password: testAdmin.Password},
	)

	require.NoError(t, err)
	assert.True(t, cookie.Secure)
}

func TestLogout(t *testing.T) {
	svc := newTestService(testAdmin, time.Now())

	cookie := svc.Logout(testContext())

	assert.Equal(t, session.CookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestSessionFromRequest(t *testing.T) {
	now := time.Now()
	svc := newTestService(testAdmin, now)

	tests := []struct {
		name        string
		cookie      *http.Cookie
		expectedErr error
	}{
		{
			name:        "no cookie",
			expectedErr: inErrors.ErrSessionMissing,
		},
		{
			name:        "malformed token",
			cookie:      &http.Cookie{Name: session.CookieName, Value: "not-base64!!"},
			expectedErr: inErrors.ErrSessionMalformed,
		},
		{
			name:   "issued 29 days ago is still valid",
			cookie: sessionCookieAt(t, now.Add(-29*24*time.Hour)),
		},
		{
			name:        "issued 31 days ago has expired",
			cookie:      sessionCookieAt(t, now.Add(-31*24*time.Hour)),
			expectedErr: inErrors.ErrSessionExpired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/auth/session", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}

			user, err := svc.SessionFromRequest(testContext(), r)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testAdmin.Email, user.Email)
			assert.Equal(t, "admin", user.Role)
		})
	}
}

func TestAuthenticateRequest(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		admin    config.Admin
		apiKey   string
		cookie   *http.Cookie
		expected bool
	}{
		{
			name:     "matching api key",
			admin:    testAdmin,
			apiKey:   testAdmin.ApiKey,
			expected: true,
		},
		{
			name:     "valid cookie without api key",
			admin:    testAdmin,
			cookie:   sessionCookieAt(t, now),
			expected: true,
		},
		{
			name:     "neither credential",
			admin:    testAdmin,
			expected: false,
		},
		{
			name:     "wrong api key with no cookie",
			admin:    testAdmin,
			apiKey:   "wrong",
			expected: false,
		},
		{
			name:     "expired cookie",
			admin:    testAdmin,
			cookie:   sessionCookieAt(t, now.Add(-31*24*time.Hour)),
			expected: false,
		},
		{
			// Empty configured key must not match an empty header.
			name:     "unconfigured api key fails closed",
			admin:    config.Admin{Email: testAdmin.Email, Password: testAdmin.Password},
			expected: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.admin, now)
			r := httptest.NewRequest("POST", "/products", nil)
			if tt.apiKey != "" {
				r.Header.Set("x-api-key", tt.apiKey)
			}
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}

			assert.Equal(t, tt.expected, svc.AuthenticateRequest(testContext(), r))
		})
	}
}
