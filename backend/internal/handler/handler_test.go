package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/feed/shared/config"
	"github.com/itchan-dev/feed/shared/domain"
	"github.com/itchan-dev/feed/shared/logger"
	mw "github.com/itchan-dev/feed/shared/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Initialize("error", false)
}

// --- Mocks ---

type MockAuthService struct {
	SignupFunc func(ctx context.Context, creds domain.Credentials) (domain.UserId, error)
	SigninFunc func(ctx context.Context, creds domain.Credentials) (domain.SigninResult, error)
}

func (m *MockAuthService) Signup(ctx context.Context, creds domain.Credentials) (domain.UserId, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, creds)
	}
	return "user-1", nil
}

func (m *MockAuthService) Signin(ctx context.Context, creds domain.Credentials) (domain.SigninResult, error) {
	if m.SigninFunc != nil {
		return m.SigninFunc(ctx, creds)
	}
	return domain.SigninResult{Token: "token", UserId: "user-1"}, nil
}

type MockPostService struct {
	CreateFunc         func(ctx context.Context, caller domain.Identity, data domain.PostCreationData, file *domain.PendingFile) (domain.Post, error)
	GetFunc            func(ctx context.Context, id domain.PostId) (domain.Post, error)
	UpdateFunc         func(ctx context.Context, caller domain.Identity, id domain.PostId, data domain.PostUpdateData, file *domain.PendingFile) (domain.Post, error)
	DeleteFunc         func(ctx context.Context, caller domain.Identity, id domain.PostId) error
	OpenAttachmentFunc func(ctx context.Context, ref domain.AttachmentRef) (io.ReadCloser, error)
}

func (m *MockPostService) Create(ctx context.Context, caller domain.Identity, data domain.PostCreationData, file *domain.PendingFile) (domain.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, caller, data, file)
	}
	return domain.Post{Id: "post-1", CreatorId: caller.UserId, Title: data.Title, Content: data.Content}, nil
}

func (m *MockPostService) Get(ctx context.Context, id domain.PostId) (domain.Post, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return domain.Post{Id: id}, nil
}

func (m *MockPostService) Update(ctx context.Context, caller domain.Identity, id domain.PostId, data domain.PostUpdateData, file *domain.PendingFile) (domain.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, caller, id, data, file)
	}
	return domain.Post{Id: id, Title: data.Title}, nil
}

func (m *MockPostService) Delete(ctx context.Context, caller domain.Identity, id domain.PostId) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, caller, id)
	}
	return nil
}

func (m *MockPostService) OpenAttachment(ctx context.Context, ref domain.AttachmentRef) (io.ReadCloser, error) {
	if m.OpenAttachmentFunc != nil {
		return m.OpenAttachmentFunc(ctx, ref)
	}
	return io.NopCloser(strings.NewReader("")), nil
}

type MockQueryService struct {
	ListAllFunc       func(ctx context.Context, page domain.Page) ([]domain.Post, int, error)
	ListByCreatorFunc func(ctx context.Context, caller domain.Identity, page domain.Page) ([]domain.PostSummary, int, error)
	SortByTitleFunc   func(ctx context.Context, caller domain.Identity) ([]domain.PostSummary, error)
	GroupByTypeFunc   func(ctx context.Context) ([]domain.TypeGroup, error)
	SearchContentFunc func(ctx context.Context, caller domain.Identity, term string) ([]domain.PostSummary, error)
}

func (m *MockQueryService) ListAll(ctx context.Context, page domain.Page) ([]domain.Post, int, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, page)
	}
	return nil, 0, nil
}

func (m *MockQueryService) ListByCreator(ctx context.Context, caller domain.Identity, page domain.Page) ([]domain.PostSummary, int, error) {
	if m.ListByCreatorFunc != nil {
		return m.ListByCreatorFunc(ctx, caller, page)
	}
	return nil, 0, nil
}

func (m *MockQueryService) SortByTitle(ctx context.Context, caller domain.Identity) ([]domain.PostSummary, error) {
	if m.SortByTitleFunc != nil {
		return m.SortByTitleFunc(ctx, caller)
	}
	return nil, nil
}

func (m *MockQueryService) GroupByType(ctx context.Context) ([]domain.TypeGroup, error) {
	if m.GroupByTypeFunc != nil {
		return m.GroupByTypeFunc(ctx)
	}
	return nil, nil
}

func (m *MockQueryService) SearchContent(ctx context.Context, caller domain.Identity, term string) ([]domain.PostSummary, error) {
	if m.SearchContentFunc != nil {
		return m.SearchContentFunc(ctx, caller, term)
	}
	return nil, nil
}

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

type upperRenderer struct{}

func (upperRenderer) Render(content string) string { return "<p>" + strings.ToUpper(content) + "</p>" }

// --- Helpers ---

var alice = domain.Identity{UserId: "alice-id", Username: "alice"}

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{
		PostsPerPage:           5,
		MaxPerPage:             100,
		MaxAttachmentSize:      1 << 20,
		AllowedAttachmentMimes: []string{"image/png", "image/jpeg"},
	}}
}

func newTestHandler() (*Handler, *MockAuthService, *MockPostService, *MockQueryService, *MockHealthChecker) {
	auth, post, query, health := &MockAuthService{}, &MockPostService{}, &MockQueryService{}, &MockHealthChecker{}
	return New(auth, post, query, health, upperRenderer{}, testConfig()), auth, post, query, health
}

func createRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, url, bytes.NewBuffer(body))
}

// withIdentity marks the request as authenticated the way NeedAuth does.
func withIdentity(req *http.Request, identity domain.Identity) *http.Request {
	return req.WithContext(mw.WithIdentity(req.Context(), identity))
}

func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), "body: %s", rr.Body.String())
	return body
}
