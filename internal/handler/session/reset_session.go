package session

import (
	"net/http"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// ResetSessionHandler returns the session to the initial form.
func ResetSessionHandler(svc port.SessionResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			handler.WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		out, err := svc.ResetSession(r.Context(), id)
		if err != nil {
			writeSessionError(w, r, err, "Could not reset session")
			return
		}

		handler.RespondJSON(w, http.StatusOK, out)
		logger.Infof(r.Context(), "✅  Reset session #%s", id)
	}
}
