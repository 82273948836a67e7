package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/widyatma/catalog/auth/pkg/request"
	"github.com/widyatma/catalog/auth/pkg/response"
	"github.com/widyatma/catalog/internal/config"
	inErrors "github.com/widyatma/catalog/internal/errors"
	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/log"
	inOtel "github.com/widyatma/catalog/internal/otel"
	"github.com/widyatma/catalog/internal/session"
)

const envProduction = "production"

type AuthService struct {
	admin config.Admin
	env   string
	codec session.Codec
	now   func() time.Time
}

func NewAuthService(admin config.Admin, env string, codec session.Codec) AuthService {
	return AuthService{admin: admin, env: env, codec: codec, now: time.Now}
}

// Login compares the submitted credentials against the configured admin pair
// and, on a match, returns the identity plus the session cookie to set. The
// cookie lives 24 hours, or 30 days with rememberMe.
func (svc AuthService) Login(
	c context.Context,
	param request.LoginRequest,
) (response.AdminUser, *http.Cookie, error) {
	c, span := inOtel.Tracer.Start(c, "AuthService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AuthService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	if param.Email != svc.admin.Email || param.Password != svc.admin.Password {
		err := fmt.Errorf("%w: email=%s", inErrors.ErrInvalidCredential, param.Email)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.AdminUser{}, nil, err
	}
	span.AddEvent("credentials matched")
	logger.Info().Msg("credentials matched")

	user := response.NewAdminUser(svc.admin.Email)
	token, err := svc.codec.Encode(session.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Timestamp: svc.now().UnixMilli(),
	})
	if err != nil {
		err = fmt.Errorf("failed encoding session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.AdminUser{}, nil, err
	}
	span.AddEvent("encoded session")
	logger.Info().Msg("encoded session")

	maxAge := session.CookieAge
	if param.RememberMe {
		maxAge = session.RememberMeCookieAge
	}
	return user, svc.sessionCookie(token, int(maxAge.Seconds())), nil
}

// Logout returns the cookie that clears the session on the client.
func (svc AuthService) Logout(c context.Context) *http.Cookie {
	_, span := inOtel.Tracer.Start(c, "AuthService Logout")
	defer span.End()

	return svc.sessionCookie("", -1)
}

// SessionFromRequest resolves the cookie to the admin identity. The three
// failure modes map to distinct errors because the session endpoint reports
// them with distinct codes.
func (svc AuthService) SessionFromRequest(
	c context.Context,
	r *http.Request,
) (response.AdminUser, error) {
	c, span := inOtel.Tracer.Start(c, "AuthService SessionFromRequest")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AuthService SessionFromRequest").
		Logger()

	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		err = fmt.Errorf("%w", inErrors.ErrSessionMissing)
		logger.Trace().Err(err).Msg(err.Error())
		return response.AdminUser{}, err
	}

	s, err := svc.codec.Decode(cookie.Value)
	if err != nil {
		err = fmt.Errorf("failed decoding session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.AdminUser{}, err
	}

	if s.ExpiredAt(svc.now()) {
		err = fmt.Errorf("%w: issued=%d", inErrors.ErrSessionExpired, s.Timestamp)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.AdminUser{}, err
	}
	span.AddEvent("session valid")
	logger.Info().Str(log.KeyEmail, s.Email).Msg("session valid")

	user := response.NewAdminUser(s.Email)
	user.ID = s.UserID
	user.Role = s.Role
	return user, nil
}

// AuthenticateRequest guards mutating routes: the API-key header wins when it
// matches, otherwise a valid unexpired session cookie suffices. An empty
// configured key disables the header path entirely rather than matching an
// empty header.
func (svc AuthService) AuthenticateRequest(c context.Context, r *http.Request) bool {
	c, span := inOtel.Tracer.Start(c, "AuthService AuthenticateRequest")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AuthService AuthenticateRequest").
		Logger()

	if svc.admin.ApiKey == "" {
		logger.Error().Msg("admin api key is not configured")
	} else if r.Header.Get(inHttp.HeaderApiKey) == svc.admin.ApiKey {
		span.AddEvent("api key matched")
		logger.Info().Msg("api key matched")
		return true
	}

	_, err := svc.SessionFromRequest(c, r)
	return err == nil
}

func (svc AuthService) sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   svc.env == envProduction,
		SameSite: http.SameSiteLaxMode,
	}
}
