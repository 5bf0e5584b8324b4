// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses and standardized error responses.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Investment-Planner-Backend/internal/apperrors"
)

// ErrorResponse represents a structured error response returned by the API.
// The Details field is optional and can contain additional context about the error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// RespondError sends a structured error response with the given status code.
// The message should be a user-friendly error description.
// The details parameter can be an error string, additional context, or nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, "resource not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}

// RespondValidationError sends 400 with the field map of a validation error
// as details, or the plain error text for any other error.
func RespondValidationError(w http.ResponseWriter, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		RespondError(w, http.StatusBadRequest, "validation failed", ve.Fields)
		return
	}
	RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// RespondServiceError maps a service error onto a status code:
//
//	ValidationError              400, field map as details
//	not found                    404
//	ErrPortfolioHasContributions 409
//	StorageError                 500, retry suggested
//	anything else                500 with fallback as message
func RespondServiceError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case apperrors.IsValidation(err):
		RespondValidationError(w, err)
	case errors.Is(err, apperrors.ErrPortfolioNotFound):
		RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrContributionNotFound):
		RespondError(w, http.StatusNotFound, apperrors.ErrContributionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrPortfolioHasContributions):
		RespondError(w, http.StatusConflict, apperrors.ErrPortfolioHasContributions.Error(), err.Error())
	case apperrors.IsStorage(err):
		log.Error().Err(err).Msg(fallback.Error())
		RespondError(w, http.StatusInternalServerError, fallback.Error(),
			"the data store could not complete the operation, please try again")
	default:
		log.Error().Err(err).Msg(fallback.Error())
		RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
