package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	internal_errors "github.com/itchan-dev/feed/shared/errors"
	"github.com/itchan-dev/feed/shared/logger"
	"github.com/itchan-dev/feed/shared/validation"
)

const internalErrorMessage = "Something went wrong!"

type errorResponse struct {
	Message string                       `json:"message"`
	Data    []internal_errors.FieldError `json:"data,omitempty"`
}

// WriteErrorAndStatusCode maps err to its status and a JSON body. Internal
// errors are logged and replaced with a generic message.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) && e.StatusCode < http.StatusInternalServerError {
		WriteJSON(w, e.StatusCode, errorResponse{Message: e.Message, Data: e.Data})
		return
	}
	logger.Log.Error("internal error", "error", err)
	WriteJSON(w, http.StatusInternalServerError, errorResponse{Message: internalErrorMessage})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"` + internalErrorMessage + `"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// DecodeValidate decodes a JSON body into body and checks its `validate`
// tags. Malformed JSON is a 400, rule violations a 422 listing the fields.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return validation.Struct("Validation failed.", body)
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}
