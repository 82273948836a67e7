package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	inErrors "github.com/widyatma/catalog/internal/errors"
)

const (
	CookieName = "admin_session"

	// MaxAge bounds how old a decoded session may be regardless of the
	// cookie's own expiry.
	MaxAge = 30 * 24 * time.Hour

	// Cookie lifetimes picked at login time.
	CookieAge           = 24 * time.Hour
	RememberMeCookieAge = 30 * 24 * time.Hour
)

// Session is the payload carried by the admin cookie. Timestamp is unix
// milliseconds at issuance.
type Session struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
}

// ExpiredAt reports whether the session is older than MaxAge at now.
func (s Session) ExpiredAt(now time.Time) bool {
	return now.UnixMilli()-s.Timestamp > MaxAge.Milliseconds()
}

// Codec converts sessions to and from their cookie value. Call sites depend
// on this interface only, so a signed codec can replace Base64Codec without
// touching them.
type Codec interface {
	Encode(s Session) (string, error)
	Decode(token string) (Session, error)
}

// Base64Codec encodes a session as base64 of its JSON form, with no
// integrity protection: any holder can mint a token with an arbitrary role
// and timestamp. That weakness is the deployed contract, since tokens issued
// before a signing scheme existed must keep validating. Do not add signing
// here; introduce a second Codec and migrate call sites instead.
type Base64Codec struct{}

func (Base64Codec) Encode(s Session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed marshaling session with error=%w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

func (Base64Codec) Decode(token string) (Session, error) {
	payload, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", inErrors.ErrSessionMalformed, err)
	}
	s := Session{}
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, fmt.Errorf("%w: %w", inErrors.ErrSessionMalformed, err)
	}
	return s, nil
}
