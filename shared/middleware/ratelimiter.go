package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/itchan-dev/feed/shared/middleware/ratelimiter"
	"github.com/itchan-dev/feed/shared/utils"
)

func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				utils.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"message": "Rate limit exceeded, try again later"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GlobalRateLimit(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetIP extracts the client IP from RemoteAddr. Forwarding headers are only
// honoured when chi's RealIP middleware rewrote RemoteAddr upstream.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// GetUserID keys limits by the authenticated caller. Must run after NeedAuth.
func GetUserID(r *http.Request) (string, error) {
	identity, ok := IdentityFromContext(r)
	if !ok {
		return "", fmt.Errorf("rate limit by user: no identity in request")
	}
	return "user_" + identity.UserId.String(), nil
}
