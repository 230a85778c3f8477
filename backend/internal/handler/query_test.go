package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itchan-dev/feed/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPosts(t *testing.T) {
	t.Run("passes pagination and reports total", func(t *testing.T) {
		h, _, _, query, _ := newTestHandler()
		query.ListAllFunc = func(_ context.Context, page domain.Page) ([]domain.Post, int, error) {
			assert.Equal(t, domain.Page{Number: 2, PerPage: 3}, page)
			return []domain.Post{{Id: "p1", Title: "T"}}, 7, nil
		}

		rr := httptest.NewRecorder()
		h.ListPosts(rr, withIdentity(createRequest(t, http.MethodGet, "/feed/posts?page=2&perPage=3", nil), alice))

		require.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "Fetched posts successfully.", body["message"])
		assert.Equal(t, float64(7), body["postsCount"])
		assert.Len(t, body["posts"], 1)
	})

	t.Run("defaults are left to the service", func(t *testing.T) {
		h, _, _, query, _ := newTestHandler()
		query.ListAllFunc = func(_ context.Context, page domain.Page) ([]domain.Post, int, error) {
			assert.Equal(t, domain.Page{}, page)
			return nil, 0, nil
		}
		rr := httptest.NewRecorder()
		h.ListPosts(rr, withIdentity(createRequest(t, http.MethodGet, "/feed/posts", nil), alice))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Fetched posts successfully.","posts":[],"postsCount":0}`, rr.Body.String())
	})

	for _, q := range []string{"page=0", "page=abc", "perPage=-1"} {
		t.Run("invalid "+q, func(t *testing.T) {
			h, _, _, _, _ := newTestHandler()
			rr := httptest.NewRecorder()
			h.ListPosts(rr, withIdentity(createRequest(t, http.MethodGet, "/feed/posts?"+q, nil), alice))
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		})
	}
}

func TestListMyPosts(t *testing.T) {
	h, _, _, query, _ := newTestHandler()
	query.ListByCreatorFunc = func(_ context.Context, caller domain.Identity, _ domain.Page) ([]domain.PostSummary, int, error) {
		assert.Equal(t, alice, caller)
		return []domain.PostSummary{{Title: "Mine", Content: "content", AttachmentRef: "r.png", PostType: "news"}}, 1, nil
	}

	rr := httptest.NewRecorder()
	h.ListMyPosts(rr, withIdentity(createRequest(t, http.MethodGet, "/feed/myposts", nil), alice))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"message": "Fetched posts successfully.",
		"posts": [{"title": "Mine", "imageUrl": "/feed/attachments/r.png", "content": "content", "postType": "news"}],
		"postsCount": 1
	}`, rr.Body.String())
}

func TestSortByTitle(t *testing.T) {
	h, _, _, query, _ := newTestHandler()
	query.SortByTitleFunc = func(context.Context, domain.Identity) ([]domain.PostSummary, error) {
		return []domain.PostSummary{{Title: "a"}, {Title: "b"}}, nil
	}

	rr := httptest.NewRecorder()
	h.SortByTitle(rr, withIdentity(createRequest(t, http.MethodGet, "/feed/sortByTitle", nil), alice))

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.NotContains(t, body, "postsCount")
	assert.Len(t, body["posts"], 2)
}

func TestGroupByType(t *testing.T) {
	h, _, _, query, _ := newTestHandler()
	query.GroupByTypeFunc = func(context.Context) ([]domain.TypeGroup, error) {
		return []domain.TypeGroup{{Type: "news", Posts: []domain.GroupedPost{{Id: "p1", Title: "T", Content: "C", AttachmentRef: "r.png", PostType: "news"}}}}, nil
	}

	rr := httptest.NewRecorder()
	h.GroupByType(rr, withIdentity(createRequest(t, http.MethodGet, "/feed/groupByType", nil), alice))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"message": "Fetched posts grouped by type successfully.",
		"postsbytypes": [{"type": "news", "posts": [{"id": "p1", "title": "T", "content": "C", "imageUrl": "/feed/attachments/r.png", "postType": "news"}]}]
	}`, rr.Body.String())
}

func TestSearchFromContent(t *testing.T) {
	h, _, _, query, _ := newTestHandler()
	var gotTerm string
	query.SearchContentFunc = func(_ context.Context, _ domain.Identity, term string) ([]domain.PostSummary, error) {
		gotTerm = term
		return []domain.PostSummary{}, nil
	}

	rr := httptest.NewRecorder()
	h.SearchFromContent(rr, withURLParams(withIdentity(createRequest(t, http.MethodGet, "/feed/searchFromContent/tomato", nil), alice), "word", "tomato"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "tomato", gotTerm)

	rr = httptest.NewRecorder()
	h.SearchFromContent(rr, withIdentity(createRequest(t, http.MethodGet, "/feed/searchFromContent/", nil), alice))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "", gotTerm)
	assert.JSONEq(t, `{"message":"Fetched posts successfully.","posts":[]}`, rr.Body.String())
}
