// Package handlers contains the HTTP handlers of the task API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/services"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var (
	errInvalidBody = errors.New("invalid request body")
	errInvalidID   = errors.New("invalid id")
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err and writes it.
func writeError(w http.ResponseWriter, err error) {
	status, resp := mapErrorToResponse(err)
	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data", errInvalidBody)
	}
	return nil
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// mapErrorToResponse maps service errors to HTTP status codes and error responses.
func mapErrorToResponse(err error) (int, ErrorResponse) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Message: verr.Error(),
			Code:    "VALIDATION_FAILED",
			Fields:  verr.Fields,
		}
	case errors.Is(err, models.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error(), Code: "INVALID_STATUS"}
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, ErrorResponse{Message: errInvalidBody.Error(), Code: "INVALID_REQUEST"}
	case errors.Is(err, errInvalidID):
		return http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "INVALID_ID"}
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Message: err.Error(), Code: "INVALID_CREDENTIALS"}
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Message: "invalid or expired token", Code: "UNAUTHORIZED"}
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "DUPLICATE_EMAIL"}
	case errors.Is(err, models.ErrDuplicateUser):
		return http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "DUPLICATE_USERNAME"}
	case errors.Is(err, models.ErrDuplicateTag):
		return http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "DUPLICATE_TAG"}
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "USER_NOT_FOUND"}
	case errors.Is(err, models.ErrTagNotFound):
		return http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "TAG_NOT_FOUND"}
	case errors.Is(err, models.ErrTaskNotFound):
		return http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "TASK_NOT_FOUND"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Message: "internal server error", Code: "INTERNAL_ERROR"}
	}
}
