package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

var validID = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

func withID(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), api_context.IDKey, validID))
}

func sampleView(state model.State) *port.SessionView {
	return &port.SessionView{ID: validID, State: state, AssetName: "My clip"}
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) port.SessionView {
	t.Helper()
	var v port.SessionView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("JSON decode = %v (body=%q)", err, rec.Body.String())
	}
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantContains string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d; want %d (body=%q)", rec.Code, wantStatus, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}
	if !strings.Contains(rec.Body.String(), wantContains) {
		t.Errorf("body = %q; want to contain %q", rec.Body.String(), wantContains)
	}
}
