package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapchat/model"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-secret")

	ts := &TokenService{}
	user := &model.User{ID: 42, WhatsappNumber: "+5511999990000", IsAdmin: true}

	td, err := ts.CreateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, td.AccessToken)

	req, err := http.NewRequest(http.MethodGet, "/v1/conversation", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+td.AccessToken)

	details, err := ts.ExtractTokenMetadata(req)
	require.NoError(t, err)
	assert.Equal(t, uint(42), details.UserID)
	assert.True(t, details.IsAdmin)
	assert.Equal(t, td.AccessUUID, details.AccessUUID)
}

func TestTokenRejectsBadSignature(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-secret")
	ts := &TokenService{}
	td, err := ts.CreateToken(&model.User{ID: 1})
	require.NoError(t, err)

	t.Setenv("ACCESS_SECRET", "other-secret")
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+td.AccessToken)

	_, err = ts.ExtractTokenMetadata(req)
	require.Error(t, err)
}

func TestTokenMissingHeader(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-secret")
	ts := &TokenService{}
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	require.Error(t, ts.TokenValid(req))
}
