package handler

import (
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/feed/shared/api"
	"github.com/itchan-dev/feed/shared/domain"
	"github.com/itchan-dev/feed/shared/logger"
	"github.com/itchan-dev/feed/shared/utils"
)

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	form, file, cleanup, err := h.parsePostForm(w, r)
	defer cleanup()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.Create(r.Context(), identity, domain.PostCreationData{
		Title:    form.Title,
		Content:  form.Content,
		PostType: form.PostType,
	}, file)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.CreatePostResponse{
		Message: "Post created successfully!",
		Post:    api.NewPostResponse(post),
		Creator: api.CreatorResponse{UserId: identity.UserId.String(), Username: identity.Username},
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.post.Get(r.Context(), domain.PostId(chi.URLParam(r, "postId")))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.NewPostResponse(post)
	resp.ContentHtml = h.renderer.Render(post.Content)
	utils.WriteJSON(w, http.StatusOK, api.SinglePostResponse{Message: "Fetched post successfully.", Post: resp})
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	form, file, cleanup, err := h.parsePostForm(w, r)
	defer cleanup()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.Update(r.Context(), identity, domain.PostId(chi.URLParam(r, "postId")), domain.PostUpdateData{
		Title:    form.Title,
		Content:  form.Content,
		PostType: form.PostType,
	}, file)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.SinglePostResponse{Message: "Post updated!", Post: api.NewPostResponse(post)})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.post.Delete(r.Context(), identity, domain.PostId(chi.URLParam(r, "postId"))); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Deleted post."})
}

func (h *Handler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	rc, err := h.post.OpenAttachment(r.Context(), ref)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(ref))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.Log.Warn("attachment stream interrupted", "ref", ref, "error", err)
	}
}
