package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string                     `json:"error"`
	Problems []sitecontent.BlockProblem `json:"problems,omitempty"`
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sitecontent.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sitecontent.ErrUnknownCollection),
		errors.Is(err, sitecontent.ErrDocumentNotFound),
		errors.Is(err, sitecontent.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, sitecontent.ErrInvariantViolation),
		errors.Is(err, sitecontent.ErrIndexOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the status it maps to. Server errors are
// logged and their detail withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *sitecontent.ValidationError
	if errors.As(err, &verr) {
		resp.Problems = verr.Problems
	}
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "error", err)
		resp.Error = msg
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
