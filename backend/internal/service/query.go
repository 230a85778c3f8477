package service

import (
	"context"
	"math"
	"strings"

	"github.com/itchan-dev/feed/shared/config"
	"github.com/itchan-dev/feed/shared/domain"
	"golang.org/x/sync/errgroup"
)

type QueryService interface {
	ListAll(ctx context.Context, page domain.Page) ([]domain.Post, int, error)
	ListByCreator(ctx context.Context, caller domain.Identity, page domain.Page) ([]domain.PostSummary, int, error)
	SortByTitle(ctx context.Context, caller domain.Identity) ([]domain.PostSummary, error)
	GroupByType(ctx context.Context) ([]domain.TypeGroup, error)
	SearchContent(ctx context.Context, caller domain.Identity, term string) ([]domain.PostSummary, error)
}

type Query struct {
	storage QueryStorage
	cfg     *config.Public
}

type QueryStorage interface {
	CountPosts(ctx context.Context) (int, error)
	CountPostsByCreator(ctx context.Context, creator domain.UserId) (int, error)
	ListPosts(ctx context.Context, page domain.Page) ([]domain.Post, error)
	ListPostsByCreator(ctx context.Context, creator domain.UserId, page domain.Page) ([]domain.Post, error)
	PostsByCreatorSortedByTitle(ctx context.Context, creator domain.UserId) ([]domain.Post, error)
	SearchPostsByCreator(ctx context.Context, creator domain.UserId, term string) ([]domain.Post, error)
	PostsGroupedByType(ctx context.Context) ([]domain.TypeGroup, error)
}

func NewQuery(storage QueryStorage, cfg *config.Public) *Query {
	return &Query{storage: storage, cfg: cfg}
}

// normalize fills in defaults, caps the page size and bounds the page number
// so the offset stays a non-negative int32. Pages past the end are empty.
func (q *Query) normalize(page domain.Page) domain.Page {
	if page.PerPage <= 0 {
		page.PerPage = q.cfg.PostsPerPage
	}
	if q.cfg.MaxPerPage > 0 {
		page.PerPage = min(page.PerPage, q.cfg.MaxPerPage)
	}
	page.PerPage = max(1, page.PerPage)
	page.Number = min(max(1, page.Number), math.MaxInt32/page.PerPage+1)
	return page
}

// ListAll returns one page of every post plus the overall total.
func (q *Query) ListAll(ctx context.Context, page domain.Page) ([]domain.Post, int, error) {
	page = q.normalize(page)

	var (
		posts []domain.Post
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = q.storage.CountPosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		posts, err = q.storage.ListPosts(gctx, page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByCreator returns one page of the caller's posts; total counts only
// the caller's posts.
func (q *Query) ListByCreator(ctx context.Context, caller domain.Identity, page domain.Page) ([]domain.PostSummary, int, error) {
	page = q.normalize(page)

	var (
		posts []domain.Post
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = q.storage.CountPostsByCreator(gctx, caller.UserId)
		return err
	})
	g.Go(func() (err error) {
		posts, err = q.storage.ListPostsByCreator(gctx, caller.UserId, page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return summaries(posts), total, nil
}

func (q *Query) SortByTitle(ctx context.Context, caller domain.Identity) ([]domain.PostSummary, error) {
	posts, err := q.storage.PostsByCreatorSortedByTitle(ctx, caller.UserId)
	if err != nil {
		return nil, err
	}
	return summaries(posts), nil
}

func (q *Query) GroupByType(ctx context.Context) ([]domain.TypeGroup, error) {
	return q.storage.PostsGroupedByType(ctx)
}

// SearchContent matches term against the caller's post content. A blank
// term matches nothing.
func (q *Query) SearchContent(ctx context.Context, caller domain.Identity, term string) ([]domain.PostSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.PostSummary{}, nil
	}
	posts, err := q.storage.SearchPostsByCreator(ctx, caller.UserId, term)
	if err != nil {
		return nil, err
	}
	return summaries(posts), nil
}

func summaries(posts []domain.Post) []domain.PostSummary {
	out := make([]domain.PostSummary, len(posts))
	for i := range posts {
		out[i] = posts[i].Summary()
	}
	return out
}
