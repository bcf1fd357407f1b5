package session

import (
	"net/http"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// CreateSessionHandler opens a session owned by the authenticated user, if any.
func CreateSessionHandler(svc port.SessionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, _ := api_context.AuthUserIDFromContext(r.Context())

		out, err := svc.CreateSession(r.Context(), port.CreateSessionInput{OwnerID: owner})
		if err != nil {
			writeSessionError(w, r, err, "Could not create session")
			return
		}

		w.Header().Set("Location", "/sessions/"+out.ID.String())
		handler.RespondJSON(w, http.StatusCreated, out)
		logger.Infof(r.Context(), "✅  Created session #%s", out.ID)
	}
}
