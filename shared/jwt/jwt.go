package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	"github.com/itchan-dev/feed/shared/logger"
)

type JwtService interface {
	NewToken(identity domain.Identity) (string, error)
	DecodeToken(jwtStr string) (domain.Identity, error)
}

// Claims carried by a session token.
type Claims struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Jwt struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey: []byte(secretKey), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of j that reads time from now.
func (j *Jwt) WithClock(now func() time.Time) *Jwt {
	return &Jwt{secretKey: j.secretKey, ttl: j.ttl, now: now}
}

func (j *Jwt) NewToken(identity domain.Identity) (string, error) {
	issuedAt := j.now()
	claims := Claims{
		UserId:   identity.UserId.String(),
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		logger.Log.Error("failed to sign token", "user_id", identity.UserId, "error", err)
		return "", err
	}
	return tokenString, nil
}

// DecodeToken verifies signature and expiry. Every failure is reported as the
// same 401 so callers can't tell a forged token from an expired one.
func (j *Jwt) DecodeToken(jwtStr string) (domain.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(jwtStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		logger.Log.Debug("token rejected", "error", err)
		return domain.Identity{}, internal_errors.Unauthenticated("Not authorized.")
	}
	if !token.Valid || claims.UserId == "" {
		return domain.Identity{}, internal_errors.Unauthenticated("Not authorized.")
	}

	return domain.Identity{UserId: domain.UserId(claims.UserId), Username: claims.Username}, nil
}
