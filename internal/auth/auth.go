// Package auth is the boundary with the external identity provider.
// The core treats the authenticated identity as an opaque comparable
// value; nothing in this repository issues or validates credentials.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthenticated is returned when no identity can be established
// for a request.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves a request to an opaque participant id.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// TokenAuthenticator reads the identity token from the Authorization
// bearer header or, for browser WebSocket clients that cannot set
// headers, from the token query parameter. The token is the opaque id
// minted by the upstream identity provider; a trusted gateway is
// expected to have validated it.
type TokenAuthenticator struct{}

// Authenticate extracts the participant id from the request.
func (TokenAuthenticator) Authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		if token := strings.TrimSpace(after); token != "" {
			return token, nil
		}
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrUnauthenticated
}
