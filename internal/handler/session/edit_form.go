package session

import (
	"encoding/json"
	"net/http"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

type EditFormRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func EditFormHandler(svc port.FormEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			handler.WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		var req EditFormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handler.WriteError(w, http.StatusBadRequest, "Invalid request payload", err)
			return
		}

		out, err := svc.EditForm(r.Context(), port.EditFormInput{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeSessionError(w, r, err, "Could not save form")
			return
		}

		handler.RespondJSON(w, http.StatusOK, out)
	}
}
