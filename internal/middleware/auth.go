package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/widyatma/catalog/internal/errors"
	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/log"
	"github.com/widyatma/catalog/internal/otel"
)

// Authenticator decides whether a mutating request carries a valid admin
// credential, either the API-key header or the session cookie.
type Authenticator interface {
	AuthenticateRequest(c context.Context, r *http.Request) bool
}

func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Auth")
			defer span.End()

			logger := zerolog.Ctx(c).With().Str(log.KeyTag, "middleware Auth").Logger()
			c = logger.WithContext(c)

			if !authn.AuthenticateRequest(c, r) {
				otel.RecordError(inErrors.ErrUnauthorized, span)
				logger.Warn().Err(inErrors.ErrUnauthorized).Msg(inErrors.ErrUnauthorized.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusUnauthorized,
					map[string]interface{}{
						"success": false,
						"error":   inHttp.MsgUnauthorized,
						"message": "Valid API key required in x-api-key header",
					})
				return
			}

			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
