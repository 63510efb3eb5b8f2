// Package admin guards the mutating catalog routes behind a shared key.
package admin

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/pkg/kit"
)

// HeaderKey is the request header carrying the admin credential.
const HeaderKey = "x-admin-key"

var ErrUnauthorized = errors.New("unauthorized")

// Gate checks admin credentials. When a bcrypt hash is configured it takes
// precedence over the plaintext key.
type Gate struct {
	key  string
	hash []byte

	Log *zap.Logger
}

func NewGate(key, hash string) *Gate {
	return &Gate{key: key, hash: []byte(hash)}
}

// Authorize reports whether credential grants admin access. An empty
// credential or an unconfigured gate always fails.
func (g *Gate) Authorize(credential string) error {
	if credential == "" {
		return ErrUnauthorized
	}
	if len(g.hash) > 0 {
		if err := bcrypt.CompareHashAndPassword(g.hash, []byte(credential)); err != nil {
			return ErrUnauthorized
		}
		return nil
	}
	if g.key == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(credential), []byte(g.key)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// RequireKey rejects requests whose x-admin-key header does not authorize.
func (g *Gate) RequireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Authorize(r.Header.Get(HeaderKey)); err != nil {
			if g.Log != nil {
				g.Log.Warn("admin request rejected",
					zap.String("request_id", kit.GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
				)
			}
			kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
