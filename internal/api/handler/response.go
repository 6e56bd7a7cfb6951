package handler

import (
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	msgValidationFailed = "Validation Failed"
	msgMalformedJSON    = "Malformed JSON request"
	msgConflict         = "Database integrity violation: The record may already exist."
	msgUnexpected       = "An unexpected error occurred. Please try again later."
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// respondError never echoes storage errors back to the client.
func respondError(w http.ResponseWriter, err error) {
	detail := dto.ErrorDetail{Code: "INTERNAL_ERROR", Message: msgUnexpected}
	status := http.StatusInternalServerError
	var validationError *apperrors.ValidationError

	switch {
	case errors.As(err, &validationError):
		status = http.StatusBadRequest
		detail = dto.ErrorDetail{
			Code:    "VALIDATION_FAILED",
			Message: msgValidationFailed,
			Field:   validationError.Field,
			Fields:  validationError.Fields,
		}
		if detail.Field != "" && detail.Fields == nil {
			detail.Fields = map[string]string{validationError.Field: validationError.Message}
		}
	case errors.Is(err, apperrors.ErrInvalidArgument):
		status = http.StatusBadRequest
		detail = dto.ErrorDetail{Code: "BAD_REQUEST", Message: messageAfter(err, apperrors.ErrInvalidArgument)}
	case errors.Is(err, customer.ErrNotFound):
		status = http.StatusNotFound
		detail = dto.ErrorDetail{Code: "NOT_FOUND", Message: "Customer not found."}
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		detail = dto.ErrorDetail{Code: "NOT_FOUND", Message: "Resource not found."}
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status = http.StatusConflict
		detail = dto.ErrorDetail{Code: "CONFLICT", Message: msgConflict}
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

// messageAfter strips the sentinel prefix so clients see only the detail.
func messageAfter(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
