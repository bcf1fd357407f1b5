package session

import (
	"net/http"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// GetSessionHandler is polled by clients while a session runs. The view
// changes at every step, so clients always revalidate with the ETag.
func GetSessionHandler(renderer port.HTTPRenderer, svc port.SessionGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			handler.WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		raw, etag, err := renderer.RenderGetSession(r.Context(), svc, id)
		if err != nil {
			writeSessionError(w, r, err, "Could not get session")
			return
		}

		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			logger.Debugf(r.Context(), "session #%s not modified", id)
			return
		}

		handler.RespondRawJSON(w, http.StatusOK, raw)
	}
}
