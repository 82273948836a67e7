package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/widyatma/catalog/internal/otel"
)

// WriteJsonResponse writes the `{success, data?, error?, message?}` envelope.
// Extra envelope keys (total/page/limit, retryAfter/resetAt, details) ride in
// the same map.
func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	headers map[string]string,
	statusCode int,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Add(HeaderContentType, HeaderValueJson)
	for k, v := range headers {
		w.Header().Add(k, v)
	}
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}
