package service

import (
	"context"
	"errors"
	"strings"

	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	"github.com/itchan-dev/feed/shared/logger"
	"github.com/itchan-dev/feed/shared/validation"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Signup(ctx context.Context, creds domain.Credentials) (domain.UserId, error)
	Signin(ctx context.Context, creds domain.Credentials) (domain.SigninResult, error)
}

type Auth struct {
	storage AuthStorage
	hasher  PasswordHasher
	jwt     Jwt
}

type AuthStorage interface {
	SaveUser(ctx context.Context, user domain.User) (domain.UserId, error)
	UserByUsername(ctx context.Context, username domain.Username) (domain.User, error)
	TakenFields(ctx context.Context, email domain.Email, username domain.Username) (emailTaken, usernameTaken bool, err error)
}

type PasswordHasher interface {
	Hash(password domain.Password) (string, error)
	Compare(hash string, password domain.Password) error
}

type Jwt interface {
	NewToken(identity domain.Identity) (string, error)
}

func NewAuth(storage AuthStorage, hasher PasswordHasher, jwt Jwt) *Auth {
	return &Auth{
		storage: storage,
		hasher:  hasher,
		jwt:     jwt,
	}
}

var errInvalidCredentials = internal_errors.Unauthenticated("Invalid credentials")

const (
	emailTakenMessage    = "E-Mail address already exists!"
	usernameTakenMessage = "Username already exists!"

	passwordTooLongMessage = "Password should be at most 72 bytes long."
)

type signupFields struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"min=5,maxbytes=72"`
}

// Signup creates a user and returns its id. Every rejected field is reported
// at once. The taken-field lookup is only a fast path: two racing signups
// are settled by the unique constraints in storage, which report the same
// field errors.
func (a *Auth) Signup(ctx context.Context, creds domain.Credentials) (domain.UserId, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	username := strings.TrimSpace(creds.Username)
	password := strings.TrimSpace(creds.Password)

	var problems []internal_errors.FieldError
	err := validation.Struct("Validation failed.", signupFields{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		var e *internal_errors.ErrorWithStatusCode
		if !errors.As(err, &e) {
			return "", err
		}
		problems = append(problems, e.Data...)
	}

	emailTaken, usernameTaken, err := a.storage.TakenFields(ctx, email, username)
	if err != nil {
		return "", err
	}
	if emailTaken {
		problems = append(problems, internal_errors.FieldError{Field: "email", Message: emailTakenMessage})
	}
	if usernameTaken {
		problems = append(problems, internal_errors.FieldError{Field: "username", Message: usernameTakenMessage})
	}
	if len(problems) > 0 {
		return "", internal_errors.Validation("Validation failed.", problems...)
	}

	passHash, err := a.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", internal_errors.Validation("Validation failed.", internal_errors.FieldError{Field: "password", Message: passwordTooLongMessage})
		}
		logger.Log.Error("failed to hash password", "error", err)
		return "", err
	}

	id, err := a.storage.SaveUser(ctx, domain.User{Email: email, Username: username, PassHash: passHash})
	if err != nil {
		return "", err
	}
	logger.Log.Info("user signed up", "user_id", id, "username", username)
	return id, nil
}

// Signin checks credentials and issues a session token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (a *Auth) Signin(ctx context.Context, creds domain.Credentials) (domain.SigninResult, error) {
	user, err := a.storage.UserByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.SigninResult{}, errInvalidCredentials
		}
		return domain.SigninResult{}, err
	}

	if err := a.hasher.Compare(user.PassHash, strings.TrimSpace(creds.Password)); err != nil {
		logger.Log.Debug("password mismatch", "user_id", user.Id)
		return domain.SigninResult{}, errInvalidCredentials
	}

	token, err := a.jwt.NewToken(domain.Identity{UserId: user.Id, Username: user.Username})
	if err != nil {
		logger.Log.Error("failed to issue token", "user_id", user.Id, "error", err)
		return domain.SigninResult{}, err
	}
	return domain.SigninResult{Token: token, UserId: user.Id}, nil
}

// Bcrypt hashes passwords with a fixed cost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password domain.Password) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b Bcrypt) Compare(hash string, password domain.Password) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
