package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/itchan-dev/feed/shared/domain"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
	mw "github.com/itchan-dev/feed/shared/middleware"
	"github.com/itchan-dev/feed/shared/validation"
)

// multipart overhead allowed on top of the attachment itself
const formOverhead = 1 << 20

// caller returns the identity NeedAuth attached to this request.
func caller(r *http.Request) (domain.Identity, error) {
	identity, ok := mw.IdentityFromContext(r)
	if !ok {
		return domain.Identity{}, internal_errors.Unauthenticated("Not authenticated.")
	}
	return identity, nil
}

// parsePage reads ?page=&perPage=. Missing values are left zero for the
// service to default; anything present must be a positive integer.
func parsePage(r *http.Request) (domain.Page, error) {
	var (
		page     domain.Page
		problems []internal_errors.FieldError
	)
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &page.Number}, {"perPage", &page.PerPage}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			problems = append(problems, internal_errors.FieldError{Field: p.name, Message: fmt.Sprintf("%s must be a positive integer.", p.name)})
			continue
		}
		*p.dst = n
	}
	if len(problems) > 0 {
		return domain.Page{}, internal_errors.Validation("Invalid pagination.", problems...)
	}
	return page, nil
}

type postForm struct {
	Title    string
	Content  string
	PostType string
}

// parsePostForm reads title, content, postType and the optional "file" upload.
// The returned cleanup closes the upload and must always be called.
func (h *Handler) parsePostForm(w http.ResponseWriter, r *http.Request) (form postForm, file *domain.PendingFile, cleanup func(), err error) {
	cleanup = func() {}

	maxRequestSize := validation.CalculateMaxRequestSize(h.cfg.Public.MaxAttachmentSize, formOverhead)
	if err = validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		// url-encoded bodies still carry the text fields, just no file
		if !errors.Is(err, http.ErrNotMultipart) {
			return form, nil, cleanup, attachmentError(err)
		}
		err = nil
	}

	form = postForm{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		PostType: r.FormValue("postType"),
	}
	if form.PostType == "" {
		form.PostType = r.FormValue("posttype")
	}

	fh, ferr := validation.FormFile(r, "file")
	if ferr != nil {
		// absence is decided by the service: required on create, optional on update
		return form, nil, cleanup, nil
	}

	file, err = validation.ValidateAttachment(fh, h.cfg.Public.AllowedAttachmentMimes, h.cfg.Public.MaxAttachmentSize)
	if err != nil {
		return form, nil, cleanup, attachmentError(err)
	}
	cleanup = func() {
		if closer, ok := file.Data.(io.Closer); ok {
			closer.Close()
		}
	}
	return form, file, cleanup, nil
}

// attachmentError gives upload problems their HTTP status.
func attachmentError(err error) error {
	switch {
	case errors.Is(err, validation.ErrPayloadTooLarge):
		return &internal_errors.ErrorWithStatusCode{Message: err.Error(), StatusCode: http.StatusRequestEntityTooLarge}
	case errors.Is(err, validation.ErrInvalidMimeType):
		return internal_errors.Validation("Validation failed, attachment is not allowed.", internal_errors.FieldError{Field: "file", Message: err.Error()})
	default:
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid multipart form", StatusCode: http.StatusBadRequest}
	}
}
