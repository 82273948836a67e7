package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/widyatma/catalog/internal/auth/service"
	"github.com/widyatma/catalog/auth/pkg/request"
	inErrors "github.com/widyatma/catalog/internal/errors"
	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/log"
	inOtel "github.com/widyatma/catalog/internal/otel"
)

type AuthController struct {
	service *service.AuthService
}

// AttachAuthController mounts the session endpoints. They carry no rate
// limiter: the stricter auth-failure configuration exists but is not wired
// here, matching the deployed surface.
func AttachAuthController(router *mux.Router, svc *service.AuthService) {
	controller := AuthController{service: svc}

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", controller.Logout).Methods(http.MethodPost)
	authRouter.HandleFunc("/session", controller.Session).Methods(http.MethodGet)
}

func (ctrl AuthController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "AuthController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AuthController Login").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
			map[string]interface{}{
				"success": false,
				"error":   "VALIDATION_ERROR",
				"message": "Email and password are required",
			})
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
			map[string]interface{}{
				"success": false,
				"error":   "VALIDATION_ERROR",
				"message": "Email and password are required",
			})
		return
	}
	span.AddEvent("validated request body")
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Trace().Msg("logging in")
	span.AddEvent("logging in")
	c = logger.WithContext(c)
	user, cookie, err := ctrl.service.Login(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		inOtel.RecordError(err, span)
		if errors.Is(err, inErrors.ErrInvalidCredential) {
			logger.Info().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusUnauthorized,
				map[string]interface{}{
					"success": false,
					"error":   "INVALID_CREDENTIALS",
					"message": "Invalid email or password",
				})
			return
		}
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
			map[string]interface{}{
				"success": false,
				"error":   "SERVER_ERROR",
				"message": "Failed to process login",
			})
		return
	}
	span.AddEvent("logged in")
	logger.Info().Msg("logged in")

	http.SetCookie(w, cookie)
	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK,
		map[string]interface{}{
			"success": true,
			"data":    user,
			"message": "Login successful",
		})
}

func (ctrl AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "AuthController Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AuthController Logout").
		Logger()
	logger.Info().Msg("clearing session cookie")

	http.SetCookie(w, ctrl.service.Logout(c))
	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK,
		map[string]interface{}{
			"success": true,
			"message": "Logout successful",
		})
}

// Session reports the authentication status with a distinct code per failure
// mode. Expired and malformed cookies are cleared so the client stops
// resending them; a missing cookie has nothing to clear.
func (ctrl AuthController) Session(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "AuthController Session")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AuthController Session").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking session").Logger()
	logger.Trace().Msg("checking session")
	span.AddEvent("checking session")
	c = logger.WithContext(c)
	user, err := ctrl.service.SessionFromRequest(c, r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		switch {
		case errors.Is(err, inErrors.ErrSessionMissing):
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusUnauthorized,
				map[string]interface{}{
					"success": false,
					"error":   "NOT_AUTHENTICATED",
					"message": "No active session",
				})
		case errors.Is(err, inErrors.ErrSessionExpired):
			http.SetCookie(w, ctrl.service.Logout(c))
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusUnauthorized,
				map[string]interface{}{
					"success": false,
					"error":   "SESSION_EXPIRED",
					"message": "Session has expired",
				})
		default:
			http.SetCookie(w, ctrl.service.Logout(c))
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusUnauthorized,
				map[string]interface{}{
					"success": false,
					"error":   "INVALID_SESSION",
					"message": "Invalid session token",
				})
		}
		return
	}
	span.AddEvent("session valid")
	logger.Info().Msg("session valid")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK,
		map[string]interface{}{
			"success": true,
			"data":    user,
			"message": "Session valid",
		})
}
