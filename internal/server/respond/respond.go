// Package respond maps usecase results and the shared error taxonomy onto
// HTTP status codes and JSON bodies.
package respond

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsConflict(err):
		status = http.StatusConflict
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	case apperrors.IsInvalidFormat(err):
		status = http.StatusUnprocessableEntity
	}
	JSON(w, status, errorBody{Error: err.Error()})
}

func Decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", apperrors.ErrValidation)
	}
	return nil
}
