package session

import (
	"net/http"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

func ToggleErrorHandler(svc port.ErrorToggler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			handler.WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		out, err := svc.ToggleError(r.Context(), id)
		if err != nil {
			writeSessionError(w, r, err, "Could not toggle error")
			return
		}

		handler.RespondJSON(w, http.StatusOK, out)
	}
}
