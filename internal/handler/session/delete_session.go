package session

import (
	"net/http"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// DeleteSessionHandler deletes a session and its staged file.
func DeleteSessionHandler(svc port.SessionDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			handler.WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		if err := svc.DeleteSession(r.Context(), id); err != nil {
			writeSessionError(w, r, err, "Failed to delete session")
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logger.Infof(r.Context(), "✅  Successfully deleted session #%s", id)
	}
}
