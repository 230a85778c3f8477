package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	"github.com/itchan-dev/feed/shared/logger"
	"github.com/itchan-dev/feed/shared/middleware/metrics"
	"github.com/itchan-dev/feed/shared/validation"
)

type PostService interface {
	Create(ctx context.Context, caller domain.Identity, data domain.PostCreationData, file *domain.PendingFile) (domain.Post, error)
	Get(ctx context.Context, id domain.PostId) (domain.Post, error)
	Update(ctx context.Context, caller domain.Identity, id domain.PostId, data domain.PostUpdateData, file *domain.PendingFile) (domain.Post, error)
	Delete(ctx context.Context, caller domain.Identity, id domain.PostId) error
	OpenAttachment(ctx context.Context, ref domain.AttachmentRef) (io.ReadCloser, error)
}

type Post struct {
	storage     PostStorage
	attachments AttachmentStorage
}

// PostStorage runs check against the locked current row inside the write
// transaction; an error from check rolls the whole write back.
type PostStorage interface {
	CreatePost(ctx context.Context, creator domain.UserId, data domain.PostCreationData) (domain.Post, error)
	Post(ctx context.Context, id domain.PostId) (domain.Post, error)
	UpdatePost(ctx context.Context, id domain.PostId, data domain.PostUpdateData, check func(current domain.Post) error) (domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId, check func(current domain.Post) error) error
}

func NewPost(storage PostStorage, attachments AttachmentStorage) *Post {
	return &Post{storage: storage, attachments: attachments}
}

var (
	errNoImage   = internal_errors.Validation("No image provided.")
	errNotAuthor = internal_errors.Forbidden("Not authorized!")
)

type postFields struct {
	Title    string `json:"title" validate:"min=2"`
	Content  string `json:"content" validate:"min=5"`
	PostType string `json:"postType" validate:"max=64"`
}

func validatePost(message, title, content, postType string) error {
	return validation.Struct(message, postFields{Title: title, Content: content, PostType: postType})
}

// Create stores the upload and the post. If the post cannot be written the
// upload is discarded again.
func (p *Post) Create(ctx context.Context, caller domain.Identity, data domain.PostCreationData, file *domain.PendingFile) (post domain.Post, err error) {
	defer func() { recordMutation("create", err) }()

	data.Title = strings.TrimSpace(data.Title)
	data.Content = strings.TrimSpace(data.Content)
	data.PostType = strings.TrimSpace(data.PostType)
	if err := validatePost("Validation failed, entered post data is incorrect.", data.Title, data.Content, data.PostType); err != nil {
		return domain.Post{}, err
	}
	if file == nil {
		return domain.Post{}, errNoImage
	}

	ref, err := p.attachments.Save(ctx, file.Data, file.Filename)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to store attachment: %w", err)
	}
	data.AttachmentRef = ref

	post, err = p.storage.CreatePost(ctx, caller.UserId, data)
	if err != nil {
		p.discard(ref)
		return domain.Post{}, err
	}
	logger.Log.Info("post created", "post_id", post.Id, "user_id", caller.UserId)
	return post, nil
}

func (p *Post) Get(ctx context.Context, id domain.PostId) (domain.Post, error) {
	return p.storage.Post(ctx, id)
}

// Update replaces title, content and type. With a file the old attachment is
// released inside the write; a failed release leaves the post untouched.
// A write that fails after the release leaves the post on the released ref
// and is logged as such.
func (p *Post) Update(ctx context.Context, caller domain.Identity, id domain.PostId, data domain.PostUpdateData, file *domain.PendingFile) (post domain.Post, err error) {
	defer func() { recordMutation("update", err) }()

	data.Title = strings.TrimSpace(data.Title)
	data.Content = strings.TrimSpace(data.Content)
	data.PostType = strings.TrimSpace(data.PostType)
	if err := validatePost("Validation failed, entered data is incorrect.", data.Title, data.Content, data.PostType); err != nil {
		return domain.Post{}, err
	}

	data.AttachmentRef = ""
	if file != nil {
		ref, err := p.attachments.Save(ctx, file.Data, file.Filename)
		if err != nil {
			return domain.Post{}, fmt.Errorf("failed to store attachment: %w", err)
		}
		data.AttachmentRef = ref
	}

	var released domain.AttachmentRef
	post, err = p.storage.UpdatePost(ctx, id, data, func(current domain.Post) error {
		if !current.OwnedBy(caller.UserId) {
			return errNotAuthor
		}
		if data.AttachmentRef == "" {
			return nil
		}
		if err := p.attachments.Release(ctx, current.AttachmentRef); err != nil {
			return fmt.Errorf("failed to release attachment %s: %w", current.AttachmentRef, err)
		}
		released = current.AttachmentRef
		return nil
	})
	if err != nil {
		if data.AttachmentRef != "" {
			p.discard(data.AttachmentRef)
		}
		if released != "" {
			logger.Log.Error("post update failed after its attachment was released", "post_id", id, "ref", released, "error", err)
		}
		return domain.Post{}, err
	}
	return post, nil
}

// Delete releases the attachment and removes the post. A failed release
// keeps the post.
func (p *Post) Delete(ctx context.Context, caller domain.Identity, id domain.PostId) (err error) {
	defer func() { recordMutation("delete", err) }()

	err = p.storage.DeletePost(ctx, id, func(current domain.Post) error {
		if !current.OwnedBy(caller.UserId) {
			return errNotAuthor
		}
		if err := p.attachments.Release(ctx, current.AttachmentRef); err != nil {
			return fmt.Errorf("failed to release attachment %s: %w", current.AttachmentRef, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Log.Info("post deleted", "post_id", id, "user_id", caller.UserId)
	return nil
}

func (p *Post) OpenAttachment(ctx context.Context, ref domain.AttachmentRef) (io.ReadCloser, error) {
	return p.attachments.Open(ctx, ref)
}

// discard drops an upload that no post references. It runs detached from the
// request context so a cancelled request still cleans up.
func (p *Post) discard(ref domain.AttachmentRef) {
	if err := p.attachments.Release(context.Background(), ref); err != nil {
		logger.Log.Error("failed to discard orphaned attachment", "ref", ref, "error", err)
	}
}

func recordMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		var e *internal_errors.ErrorWithStatusCode
		switch {
		case !errors.As(err, &e):
			outcome = "error"
		case e.StatusCode == http.StatusUnprocessableEntity:
			outcome = "validation"
		case e.StatusCode == http.StatusNotFound:
			outcome = "not_found"
		case e.StatusCode == http.StatusForbidden:
			outcome = "forbidden"
		default:
			outcome = "error"
		}
	}
	metrics.PostMutation(op, outcome)
}
