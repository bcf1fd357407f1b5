package session

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// SubmitRequest is the confirm action. Address is the connected wallet; when
// blank, the wallet vouched for by the auth token is used.
type SubmitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// SubmitHandler answers 202: the pipeline runs in the background and clients
// follow it by polling the session.
func SubmitHandler(svc port.Submitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			handler.WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handler.WriteError(w, http.StatusBadRequest, "Invalid request payload", err)
			return
		}

		recipient := strings.TrimSpace(req.Address)
		if recipient == "" {
			recipient, _ = api_context.AuthWalletFromContext(r.Context())
		}

		out, err := svc.Submit(r.Context(), port.SubmitInput{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Recipient:   recipient,
		})
		if err != nil {
			writeSessionError(w, r, err, "Could not submit session")
			return
		}

		w.Header().Set("Location", "/sessions/"+id.String())
		handler.RespondJSON(w, http.StatusAccepted, out)
		logger.Infof(r.Context(), "🚀  Submitted session #%s", id)
	}
}
