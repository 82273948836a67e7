package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequest(t *testing.T) {
	expectedMap := map[string]interface{}{
		"email":      "email",
		"password":   "***",
		"rememberMe": true,
	}
	expected, _ := json.Marshal(expectedMap)
	loginReq := LoginRequest{Email: "email", Password: "password", RememberMe: true}

	actual, _ := json.Marshal(loginReq)

	assert.JSONEq(t, string(expected), string(actual))
	assert.EqualValues(t, "password", loginReq.Password)
}
