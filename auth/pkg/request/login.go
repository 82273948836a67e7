package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type LoginRequest struct {
	// Email is deliberately not format-checked; a wrong address fails the
	// credential comparison and must come back 401, not 400.
	Email      string `validate:"required" json:"email"`
	Password   string `validate:"required" json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

func (l LoginRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", l.Email).Str("password", "***").Bool("rememberMe", l.RememberMe)
}

func (l LoginRequest) MarshalJSON() ([]byte, error) {
	l.Password = "***"
	type L LoginRequest
	return json.Marshal(L(l))
}
