package session

import (
	"errors"
	"net/http"

	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	sessionSvc "github.com/fhuszti/videonft-ms-go/internal/usecase/session"
	"github.com/fhuszti/videonft-ms-go/internal/validation"
)

// writeSessionError maps use case errors to a status. Anything unknown is a
// 500 with fallback as message.
func writeSessionError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, port.ErrSessionNotFound):
		handler.WriteError(w, http.StatusNotFound, "Session not found", nil)
	case errors.Is(err, sessionSvc.ErrInvalidInput):
		writeValidationError(w, r, err)
	case errors.Is(err, sessionSvc.ErrFileTooLarge):
		handler.WriteError(w, http.StatusRequestEntityTooLarge, "File is too large", err)
	case errors.Is(err, sessionSvc.ErrEmptyFile):
		handler.WriteError(w, http.StatusBadRequest, "File is empty", nil)
	case errors.Is(err, orchestrator.ErrAlreadySubmitted):
		handler.WriteError(w, http.StatusConflict, "Session already submitted", nil)
	case errors.Is(err, orchestrator.ErrIncompleteForm):
		handler.WriteError(w, http.StatusConflict, "Name and description are required", nil)
	case errors.Is(err, orchestrator.ErrInvalidTransition):
		handler.WriteError(w, http.StatusConflict, "Action not allowed in the current state", err)
	case errors.Is(err, port.ErrSessionReset):
		handler.WriteError(w, http.StatusConflict, "Session was reset, try again", nil)
	case errors.Is(err, port.ErrSessionConflict):
		handler.WriteError(w, http.StatusConflict, "Session changed, try again", nil)
	case errors.Is(err, sessionSvc.ErrPipelineStart):
		handler.WriteError(w, http.StatusServiceUnavailable, "Could not start processing", err)
	default:
		handler.WriteError(w, http.StatusInternalServerError, fallback, err)
	}
}

func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	errsJSON, encErr := validation.ErrorsToJson(err)
	if encErr != nil {
		handler.WriteError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	handler.RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
	logger.Warnf(r.Context(), "❌  Validation failed: %s", errsJSON)
}
