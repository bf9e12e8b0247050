package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankledger/internal/dispatch"
	"bankledger/internal/entity"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error behind a failure envelope to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dispatch.ValidationErr),
		errors.Is(err, dispatch.UnknownOperationErr),
		errors.Is(err, entity.InvalidAccountIDErr),
		errors.Is(err, entity.StaleDateErr),
		errors.Is(err, entity.InsufficientFundsErr):
		return http.StatusBadRequest
	case errors.Is(err, entity.AccountNotFoundErr):
		return http.StatusNotFound
	case errors.Is(err, entity.AccountExistsErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
