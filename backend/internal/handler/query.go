package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/feed/shared/api"
	"github.com/itchan-dev/feed/shared/domain"
	"github.com/itchan-dev/feed/shared/utils"
)

const fetchedMessage = "Fetched posts successfully."

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	posts, total, err := h.query.ListAll(r.Context(), page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := make([]api.PostResponse, len(posts))
	for i, p := range posts {
		resp[i] = api.NewPostResponse(p)
	}
	utils.WriteJSON(w, http.StatusOK, api.PostsResponse[api.PostResponse]{Message: fetchedMessage, Posts: resp, PostsCount: &total})
}

func (h *Handler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	page, err := parsePage(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	summaries, total, err := h.query.ListByCreator(r.Context(), identity, page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.PostsResponse[api.PostSummaryResponse]{Message: fetchedMessage, Posts: summaryResponses(summaries), PostsCount: &total})
}

func (h *Handler) SortByTitle(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	summaries, err := h.query.SortByTitle(r.Context(), identity)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.PostsResponse[api.PostSummaryResponse]{Message: fetchedMessage, Posts: summaryResponses(summaries)})
}

func (h *Handler) GroupByType(w http.ResponseWriter, r *http.Request) {
	groups, err := h.query.GroupByType(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := make([]api.TypeGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = api.NewTypeGroupResponse(g)
	}
	utils.WriteJSON(w, http.StatusOK, api.GroupsResponse{Message: "Fetched posts grouped by type successfully.", PostsByTypes: resp})
}

// SearchFromContent serves both /searchFromContent/{word} and the bare
// route; no word means an empty result.
func (h *Handler) SearchFromContent(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	summaries, err := h.query.SearchContent(r.Context(), identity, chi.URLParam(r, "word"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.PostsResponse[api.PostSummaryResponse]{Message: fetchedMessage, Posts: summaryResponses(summaries)})
}

func summaryResponses(summaries []domain.PostSummary) []api.PostSummaryResponse {
	resp := make([]api.PostSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = api.NewPostSummaryResponse(s)
	}
	return resp
}
