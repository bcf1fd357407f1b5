package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/mock"
	"github.com/fhuszti/videonft-ms-go/internal/model"
)

func TestCreateSessionHandler(t *testing.T) {
	t.Run("created with owner", func(t *testing.T) {
		svc := &mock.MockSessionCreator{Out: sampleView(model.StateIdle)}
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		req = req.WithContext(context.WithValue(req.Context(), api_context.AuthUserIDKey, "user-1"))
		rec := httptest.NewRecorder()

		CreateSessionHandler(svc)(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d; want 201", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/sessions/"+validID.String() {
			t.Errorf("Location = %q", loc)
		}
		if svc.In.OwnerID != "user-1" {
			t.Errorf("owner = %q; want user-1", svc.In.OwnerID)
		}
		if v := decodeView(t, rec); v.ID != validID || v.State != model.StateIdle {
			t.Errorf("view = %+v", v)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := &mock.MockSessionCreator{Out: sampleView(model.StateIdle)}
		rec := httptest.NewRecorder()

		CreateSessionHandler(svc)(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))

		if rec.Code != http.StatusCreated || svc.In.OwnerID != "" {
			t.Errorf("status = %d, owner = %q", rec.Code, svc.In.OwnerID)
		}
	})

	t.Run("service error", func(t *testing.T) {
		svc := &mock.MockSessionCreator{Err: errors.New("db down")}
		rec := httptest.NewRecorder()

		CreateSessionHandler(svc)(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))

		assertError(t, rec, http.StatusInternalServerError, "Could not create session")
	})
}
