package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/log"
	"github.com/widyatma/catalog/internal/otel"
	"github.com/widyatma/catalog/internal/ratelimit"
)

var rateLimitDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_rate_limit_decisions_total",
		Help: "Rate limit decisions per endpoint class and outcome.",
	},
	[]string{"class", "outcome"},
)

// RateLimit applies the limiter to every request on the chain; limited
// requests are answered with a 429 carrying retry metadata and never reach
// the next handler.
func RateLimit(limiter *ratelimit.Limiter, class string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware RateLimit")
			defer span.End()

			identifier := ratelimit.Identifier(r)
			logger := zerolog.Ctx(c).
				With().
				Str(log.KeyTag, "middleware RateLimit").
				Str(log.KeyRateKey, identifier).
				Logger()

			result := limiter.Allow(identifier)
			if !result.Limited {
				rateLimitDecisions.WithLabelValues(class, "allowed").Inc()
				next.ServeHTTP(w, r.WithContext(c))
				return
			}
			rateLimitDecisions.WithLabelValues(class, "limited").Inc()

			err := fmt.Errorf("identifier=%s exceeded %d requests", identifier, limiter.Max())
			otel.RecordError(err, span)
			logger.Warn().Err(err).Msg("rate limit exceeded")

			retryAfter := int(math.Ceil(time.Until(result.ResetTime).Seconds()))
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers := map[string]string{
				inHttp.HeaderRateLimitLimit:     strconv.Itoa(limiter.Max()),
				inHttp.HeaderRateLimitRemaining: strconv.Itoa(result.Remaining),
				inHttp.HeaderRateLimitReset:     strconv.FormatInt(result.ResetTime.UnixMilli(), 10),
			}
			inHttp.WriteJsonResponse(c, w, headers, http.StatusTooManyRequests,
				map[string]interface{}{
					"success":    false,
					"error":      inHttp.MsgTooManyRequests,
					"message":    "Rate limit exceeded. Please try again later.",
					"retryAfter": retryAfter,
					"resetAt":    result.ResetTime.UTC().Format(time.RFC3339),
				})
		})
	}
}
