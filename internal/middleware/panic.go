package middleware

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/otel"
)

// RecoverPanic converts panics into generic 500 envelopes; internals never
// reach the response body.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, span := otel.Tracer.Start(r.Context(), "RecoverPanic")
		defer span.End()

		logger := zerolog.Ctx(c).With().Logger()
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				logger.Error().Err(err).Stack().Msg("recovered from panic")
				otel.RecordError(err, span)
				inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
					map[string]interface{}{
						"success": false,
						"error":   inHttp.MsgServerError,
						"message": inHttp.MsgServerError,
					})
			}
		}()

		next.ServeHTTP(w, r.WithContext(c))
	})
}
