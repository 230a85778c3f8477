package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	shared_pg "github.com/itchan-dev/feed/shared/storage/pg"
	"github.com/lib/pq"
)

const (
	emailTakenMessage    = "E-Mail address already exists!"
	usernameTakenMessage = "Username already exists!"
)

var errUserNotFound = internal_errors.NotFound("User not found")

// =========================================================================
// Public Methods (satisfy the service.AuthStorage interface)
// =========================================================================

// SaveUser inserts a user. The unique constraints are the source of truth
// for email/username uniqueness: a violation comes back as a 422 naming the
// taken field, exactly like the service's fast-path check.
func (s *Storage) SaveUser(ctx context.Context, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(ctx, tx, user)
		return err
	})
	return id, err
}

func (s *Storage) UserByUsername(ctx context.Context, username domain.Username) (domain.User, error) {
	return s.userByUsername(ctx, s.db, username)
}

func (s *Storage) User(ctx context.Context, id domain.UserId) (domain.User, error) {
	if !validId(id) {
		return domain.User{}, errUserNotFound
	}
	return s.user(ctx, s.db, id)
}

// TakenFields reports which of email and username already belong to a user.
func (s *Storage) TakenFields(ctx context.Context, email domain.Email, username domain.Username) (emailTaken, usernameTaken bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS(SELECT 1 FROM users WHERE email = $1),
			EXISTS(SELECT 1 FROM users WHERE username = $2)`,
		email, username,
	).Scan(&emailTaken, &usernameTaken)
	if err != nil {
		return false, false, fmt.Errorf("failed to check taken fields: %w", err)
	}
	return emailTaken, usernameTaken, nil
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) saveUser(ctx context.Context, q Querier, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := q.QueryRowContext(ctx,
		"INSERT INTO users(email, username, password_hash) VALUES($1, $2, $3) RETURNING id",
		user.Email, user.Username, user.PassHash,
	).Scan(&id)
	if err != nil {
		if constraint, ok := shared_pg.IsUniqueViolation(err); ok {
			return "", takenFieldError(constraint)
		}
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func takenFieldError(constraint string) error {
	switch constraint {
	case "users_email_key":
		return internal_errors.Validation("Validation failed.", internal_errors.FieldError{Field: "email", Message: emailTakenMessage})
	case "users_username_key":
		return internal_errors.Validation("Validation failed.", internal_errors.FieldError{Field: "username", Message: usernameTakenMessage})
	default:
		return internal_errors.Validation("Validation failed.")
	}
}

const userColumns = "id, email, username, password_hash, post_ids, created_at"

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		user    domain.User
		postIds pq.StringArray
	)
	if err := row.Scan(&user.Id, &user.Email, &user.Username, &user.PassHash, &postIds, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	user.PostIds = make([]domain.PostId, len(postIds))
	for i, id := range postIds {
		user.PostIds[i] = domain.PostId(id)
	}
	return user, nil
}

func (s *Storage) userByUsername(ctx context.Context, q Querier, username domain.Username) (domain.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, errUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) user(ctx context.Context, q Querier, id domain.UserId) (domain.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, errUserNotFound
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}
