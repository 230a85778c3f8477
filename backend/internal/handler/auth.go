package handler

import (
	"net/http"

	"github.com/itchan-dev/feed/shared/api"
	"github.com/itchan-dev/feed/shared/domain"
	"github.com/itchan-dev/feed/shared/utils"
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var body api.SignupRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	userId, err := h.auth.Signup(r.Context(), domain.Credentials{Email: body.Email, Username: body.Username, Password: body.Password})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.SignupResponse{Message: "User created!", UserId: userId.String()})
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var body api.SigninRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	res, err := h.auth.Signin(r.Context(), domain.Credentials{Username: body.Username, Password: body.Password})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.SigninResponse{Token: res.Token, UserId: res.UserId.String()})
}
