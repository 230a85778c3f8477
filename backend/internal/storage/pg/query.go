package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/itchan-dev/feed/shared/domain"
)

// =========================================================================
// Public Methods (satisfy the service.QueryStorage interface)
// =========================================================================

func (s *Storage) CountPosts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM posts").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

func (s *Storage) CountPostsByCreator(ctx context.Context, creator domain.UserId) (int, error) {
	if !validId(creator) {
		return 0, nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM posts WHERE creator_id = $1", creator).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts by creator: %w", err)
	}
	return n, nil
}

// ListPosts returns one page of all posts, oldest first.
func (s *Storage) ListPosts(ctx context.Context, page domain.Page) ([]domain.Post, error) {
	return s.queryPosts(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY created_at, id LIMIT $1 OFFSET $2",
		page.PerPage, page.Offset())
}

func (s *Storage) ListPostsByCreator(ctx context.Context, creator domain.UserId, page domain.Page) ([]domain.Post, error) {
	if !validId(creator) {
		return []domain.Post{}, nil
	}
	return s.queryPosts(ctx,
		"SELECT "+postColumns+" FROM posts WHERE creator_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3",
		creator, page.PerPage, page.Offset())
}

// PostsByCreatorSortedByTitle orders by title; equal titles fall back to id.
func (s *Storage) PostsByCreatorSortedByTitle(ctx context.Context, creator domain.UserId) ([]domain.Post, error) {
	if !validId(creator) {
		return []domain.Post{}, nil
	}
	return s.queryPosts(ctx,
		"SELECT "+postColumns+" FROM posts WHERE creator_id = $1 ORDER BY title, id",
		creator)
}

// SearchPostsByCreator runs an english full-text match over content.
func (s *Storage) SearchPostsByCreator(ctx context.Context, creator domain.UserId, term string) ([]domain.Post, error) {
	if !validId(creator) || strings.TrimSpace(term) == "" {
		return []domain.Post{}, nil
	}
	return s.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE creator_id = $1
		  AND to_tsvector('english', content) @@ plainto_tsquery('english', $2)
		ORDER BY created_at, id`,
		creator, term)
}

// PostsGroupedByType returns every post bucketed by type, groups ordered by type.
func (s *Storage) PostsGroupedByType(ctx context.Context) ([]domain.TypeGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_type, id, title, content, attachment_ref
		FROM posts
		ORDER BY post_type, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts by type: %w", err)
	}
	defer rows.Close()

	groups := []domain.TypeGroup{}
	for rows.Next() {
		var p domain.GroupedPost
		if err := rows.Scan(&p.PostType, &p.Id, &p.Title, &p.Content, &p.AttachmentRef); err != nil {
			return nil, fmt.Errorf("failed to scan grouped post: %w", err)
		}
		if n := len(groups); n == 0 || groups[n-1].Type != p.PostType {
			groups = append(groups, domain.TypeGroup{Type: p.PostType})
		}
		last := &groups[len(groups)-1]
		last.Posts = append(last.Posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped posts: %w", err)
	}
	return groups, nil
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}
