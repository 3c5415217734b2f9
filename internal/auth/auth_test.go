package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateBearerHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/games", nil)
	req.Header.Set("Authorization", "Bearer alice")

	player, err := TokenAuthenticator{}.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", player)
}

func TestAuthenticateQueryToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws/g1?token=bob", nil)

	player, err := TokenAuthenticator{}.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "bob", player)
}

func TestAuthenticateHeaderWinsOverQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws/g1?token=bob", nil)
	req.Header.Set("Authorization", "Bearer alice")

	player, err := TokenAuthenticator{}.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", player)
}

func TestAuthenticateRejects(t *testing.T) {
	cases := map[string]string{
		"no credentials": "",
		"empty bearer":   "Bearer ",
		"wrong scheme":   "Basic alice",
		"missing scheme": "alice",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/games", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			_, err := TokenAuthenticator{}.Authenticate(req)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}
