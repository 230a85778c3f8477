package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	"github.com/itchan-dev/feed/shared/middleware/metrics"
	"github.com/itchan-dev/feed/shared/utils"
)

// TokenDecoder verifies a session token and returns the caller it names.
type TokenDecoder interface {
	DecodeToken(jwtStr string) (domain.Identity, error)
}

type key int

const identityKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	tokens TokenDecoder
}

func NewAuth(tokens TokenDecoder) *Auth {
	return &Auth{tokens: tokens}
}

var (
	errNoToken        = internal_errors.Unauthenticated("Not authenticated.")
	errMalformedToken = internal_errors.Unauthenticated("Not authorized.")
)

// Authenticate turns request headers into the caller identity.
func (a *Auth) Authenticate(header http.Header) (domain.Identity, error) {
	authHeader := header.Get("Authorization")
	if authHeader == "" {
		return domain.Identity{}, errNoToken
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return domain.Identity{}, errMalformedToken
	}
	return a.tokens.DecodeToken(strings.TrimSpace(token))
}

// NeedAuth rejects requests without a valid bearer token. The identity is
// attached to this request's context only; handlers read it once with
// IdentityFromContext and pass it on explicitly.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := a.Authenticate(r.Header)
			if err != nil {
				reason := "invalid_token"
				if err == errNoToken {
					reason = "missing_token"
				} else if err == errMalformedToken {
					reason = "malformed_header"
				}
				metrics.AuthFailure(reason)
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the caller set by NeedAuth.
func IdentityFromContext(r *http.Request) (domain.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(domain.Identity)
	return identity, ok
}

// WithIdentity is used by tests and internal callers that authenticate
// through other means.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
