package api

import (
	"net/url"
	"time"

	"github.com/itchan-dev/feed/shared/domain"
)

// AttachmentPath is where the API serves an attachment ref.
const AttachmentPath = "/feed/attachments/"

func AttachmentURL(ref domain.AttachmentRef) string {
	if ref == "" {
		return ""
	}
	return AttachmentPath + url.PathEscape(ref)
}

type PostResponse struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHtml string    `json:"contentHtml,omitempty"`
	ImageUrl    string    `json:"imageUrl"`
	PostType    string    `json:"postType"`
	CreatorId   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewPostResponse(p domain.Post) PostResponse {
	return PostResponse{
		Id:        p.Id.String(),
		Title:     p.Title,
		Content:   p.Content,
		ImageUrl:  AttachmentURL(p.AttachmentRef),
		PostType:  p.PostType,
		CreatorId: p.CreatorId.String(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// PostSummaryResponse is a post as its creator sees it in listings.
type PostSummaryResponse struct {
	Title    string `json:"title"`
	ImageUrl string `json:"imageUrl"`
	Content  string `json:"content"`
	PostType string `json:"postType"`
}

func NewPostSummaryResponse(s domain.PostSummary) PostSummaryResponse {
	return PostSummaryResponse{Title: s.Title, ImageUrl: AttachmentURL(s.AttachmentRef), Content: s.Content, PostType: s.PostType}
}

type GroupedPostResponse struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageUrl string `json:"imageUrl"`
	PostType string `json:"postType"`
}

type TypeGroupResponse struct {
	Type  string                `json:"type"`
	Posts []GroupedPostResponse `json:"posts"`
}

func NewTypeGroupResponse(g domain.TypeGroup) TypeGroupResponse {
	posts := make([]GroupedPostResponse, len(g.Posts))
	for i, p := range g.Posts {
		posts[i] = GroupedPostResponse{Id: p.Id.String(), Title: p.Title, Content: p.Content, ImageUrl: AttachmentURL(p.AttachmentRef), PostType: p.PostType}
	}
	return TypeGroupResponse{Type: g.Type, Posts: posts}
}

type CreatorResponse struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
}

type CreatePostResponse struct {
	Message string          `json:"message"`
	Post    PostResponse    `json:"post"`
	Creator CreatorResponse `json:"creator"`
}

type SinglePostResponse struct {
	Message string       `json:"message"`
	Post    PostResponse `json:"post"`
}

// PostsResponse carries either full posts or summaries; PostsCount is only
// set for paginated listings.
type PostsResponse[T any] struct {
	Message    string `json:"message"`
	Posts      []T    `json:"posts"`
	PostsCount *int   `json:"postsCount,omitempty"`
}

type GroupsResponse struct {
	Message      string              `json:"message"`
	PostsByTypes []TypeGroupResponse `json:"postsbytypes"`
}
