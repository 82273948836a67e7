package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/widyatma/catalog/internal/errors"
)

func TestBase64CodecRoundTrip(t *testing.T) {
	codec := Base64Codec{}
	s := Session{
		UserID:    "admin-1",
		Email:     "admin@example.com",
		Role:      "admin",
		Timestamp: time.Now().UnixMilli(),
	}

	token, err := codec.Encode(s)
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestBase64CodecDecodeMalformed(t *testing.T) {
	codec := Base64Codec{}

	_, err := codec.Decode("not base64!!")
	assert.ErrorIs(t, err, inErrors.ErrSessionMalformed)

	notJSON := base64.StdEncoding.EncodeToString([]byte("plain text"))
	_, err = codec.Decode(notJSON)
	assert.ErrorIs(t, err, inErrors.ErrSessionMalformed)
}

func TestSessionExpiredAt(t *testing.T) {
	now := time.Now()
	issued := now.Add(-MaxAge)

	justInside := Session{Timestamp: issued.Add(time.Second).UnixMilli()}
	assert.False(t, justInside.ExpiredAt(now))

	justOutside := Session{Timestamp: issued.Add(-time.Second).UnixMilli()}
	assert.True(t, justOutside.ExpiredAt(now))
}
