package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	shared_pg "github.com/itchan-dev/feed/shared/storage/pg"
)

var errPostNotFound = internal_errors.NotFound("Could not find post.")

// =========================================================================
// Public Methods (satisfy the service.PostStorage interface)
// =========================================================================

// CreatePost inserts the post and appends its id to the creator's post list
// in one transaction. An unknown creator is a 404 and nothing is written.
func (s *Storage) CreatePost(ctx context.Context, creator domain.UserId, data domain.PostCreationData) (domain.Post, error) {
	if !validId(creator) {
		return domain.Post{}, errUserNotFound
	}
	var post domain.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		post, err = s.createPost(ctx, tx, creator, data)
		if err != nil {
			return err
		}
		return s.appendUserPost(ctx, tx, creator, post.Id)
	})
	return post, err
}

func (s *Storage) Post(ctx context.Context, id domain.PostId) (domain.Post, error) {
	if !validId(id) {
		return domain.Post{}, errPostNotFound
	}
	return s.post(ctx, s.db, id, false)
}

// UpdatePost locks the row, runs check against it and then replaces title,
// content and type. An error from check aborts the write and rolls back.
// An empty AttachmentRef keeps the current attachment.
// Side effects of check are not rolled back: if the UPDATE or COMMIT fails
// after check released a file, the row keeps pointing at it.
func (s *Storage) UpdatePost(ctx context.Context, id domain.PostId, data domain.PostUpdateData, check func(current domain.Post) error) (domain.Post, error) {
	if !validId(id) {
		return domain.Post{}, errPostNotFound
	}
	var updated domain.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.post(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := check(current); err != nil {
			return err
		}
		updated, err = s.updatePost(ctx, tx, id, data)
		return err
	})
	return updated, err
}

// DeletePost locks the row, runs check, removes the row and pulls the id out
// of the owner's post list. Post row is always locked before the user row.
func (s *Storage) DeletePost(ctx context.Context, id domain.PostId, check func(current domain.Post) error) error {
	if !validId(id) {
		return errPostNotFound
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.post(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if err := check(current); err != nil {
			return err
		}
		if err := s.deletePost(ctx, tx, id); err != nil {
			return err
		}
		return s.removeUserPost(ctx, tx, current.CreatorId, id)
	})
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

const postColumns = "id, title, content, attachment_ref, post_type, creator_id, created_at, updated_at"

func scanPost(row interface{ Scan(...any) error }) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.Id, &p.Title, &p.Content, &p.AttachmentRef, &p.PostType, &p.CreatorId, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Storage) createPost(ctx context.Context, q Querier, creator domain.UserId, data domain.PostCreationData) (domain.Post, error) {
	post, err := scanPost(q.QueryRowContext(ctx, `
		INSERT INTO posts(title, content, attachment_ref, post_type, creator_id)
		VALUES($1, $2, $3, $4, $5)
		RETURNING `+postColumns,
		data.Title, data.Content, data.AttachmentRef, data.PostType, creator,
	))
	if err != nil {
		if shared_pg.IsForeignKeyViolation(err) {
			return domain.Post{}, errUserNotFound
		}
		return domain.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}
	return post, nil
}

func (s *Storage) appendUserPost(ctx context.Context, q Querier, userId domain.UserId, postId domain.PostId) error {
	res, err := q.ExecContext(ctx, "UPDATE users SET post_ids = array_append(post_ids, $1) WHERE id = $2", postId, userId)
	if err != nil {
		return fmt.Errorf("failed to append post to user: %w", err)
	}
	return requireAffected(res, errUserNotFound)
}

func (s *Storage) removeUserPost(ctx context.Context, q Querier, userId domain.UserId, postId domain.PostId) error {
	_, err := q.ExecContext(ctx, "UPDATE users SET post_ids = array_remove(post_ids, $1::uuid) WHERE id = $2", postId, userId)
	if err != nil {
		return fmt.Errorf("failed to remove post from user: %w", err)
	}
	return nil
}

func (s *Storage) post(ctx context.Context, q Querier, id domain.PostId, forUpdate bool) (domain.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	post, err := scanPost(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, errPostNotFound
		}
		return domain.Post{}, fmt.Errorf("failed to query post: %w", err)
	}
	return post, nil
}

func (s *Storage) updatePost(ctx context.Context, q Querier, id domain.PostId, data domain.PostUpdateData) (domain.Post, error) {
	post, err := scanPost(q.QueryRowContext(ctx, `
		UPDATE posts SET
			title = $2,
			content = $3,
			post_type = $4,
			attachment_ref = COALESCE(NULLIF($5, ''), attachment_ref),
			updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING `+postColumns,
		id, data.Title, data.Content, data.PostType, data.AttachmentRef,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, errPostNotFound
		}
		return domain.Post{}, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

func (s *Storage) deletePost(ctx context.Context, q Querier, id domain.PostId) error {
	res, err := q.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return requireAffected(res, errPostNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
