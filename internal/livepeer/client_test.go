package livepeer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/google/go-cmp/cmp"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestRequestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/asset/request-upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "My clip" {
			t.Errorf("name = %q", body["name"])
		}
		writeJSON(w, http.StatusOK, `{
			"url":"https://upload.example/abc",
			"tusEndpoint":"https://upload.example/tus",
			"asset":{"id":"asset-1","name":"My clip"},
			"task":{"id":"task-1"}
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", srv.Client())
	got, err := c.RequestUpload(context.Background(), "My clip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := port.UploadRequest{AssetID: "asset-1", UploadURL: "https://upload.example/abc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RequestUpload mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestUpload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"errors":["invalid"]}`, ErrUnauthorized},
		{"server error", http.StatusBadGateway, `oops`, ErrUpstream},
		{"missing fields", http.StatusOK, `{"url":""}`, ErrUpstream},
		{"bad json", http.StatusOK, `{`, ErrUpstream},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "k", srv.Client()).RequestUpload(context.Background(), "n")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v; want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUpload_ReportsProgress(t *testing.T) {
	payload := bytes.Repeat([]byte("v"), 64*1024)
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("upload URL must not receive the API key")
		}
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// the transport may read the body from its own goroutine
	var (
		mu        sync.Mutex
		fractions []float64
	)
	c := NewClient("http://unused", "k", srv.Client())
	err := c.Upload(context.Background(), srv.URL+"/upload", bytes.NewReader(payload), int64(len(payload)), func(f float64) {
		mu.Lock()
		fractions = append(fractions, f)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(received, payload) {
		t.Errorf("server received %d bytes; want %d", len(received), len(payload))
	}
	mu.Lock()
	defer mu.Unlock()
	if len(fractions) == 0 || fractions[len(fractions)-1] != 1 {
		t.Fatalf("fractions = %v; want to end at 1", fractions)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress went backwards: %v", fractions)
		}
	}
}

func TestUpload_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient("", "k", srv.Client()).Upload(context.Background(), srv.URL, strings.NewReader("x"), 1, nil)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v; want %v", err, ErrUpstream)
	}
}

func TestGetAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/asset/asset-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, `{
			"id":"asset-1","name":"My clip",
			"status":{"phase":"ready","progress":1,"updatedAt":1714564800000},
			"storage":{
				"status":{"phase":"ready","progress":1,"tasks":{}},
				"ipfs":{
					"cid":"bafy123",
					"gatewayUrl":"https://gw.example/ipfs/bafy123",
					"nftMetadata":{"cid":"bafymeta","url":"ipfs://bafymeta"}
				}
			}
		}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "k", srv.Client()).GetAsset(context.Background(), "asset-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := port.Asset{
		ID:     "asset-1",
		Name:   "My clip",
		Status: port.AssetStatus{Phase: "ready", Progress: 1},
		Storage: &port.AssetStorage{
			Phase: "ready",
			IPFS: &port.IPFSRecord{
				CID:            "bafy123",
				GatewayURL:     "https://gw.example/ipfs/bafy123",
				NFTMetadataURL: "ipfs://bafymeta",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetAsset mismatch (-want +got):\n%s", diff)
	}
}

func TestGetAsset_NoStorage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"a","name":"n","status":{"phase":"processing","progress":0.25,"updatedAt":1714564800000}}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "k", srv.Client()).GetAsset(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Storage != nil {
		t.Errorf("Storage = %+v; want nil", got.Storage)
	}
	if got.Status.Phase != "processing" || got.Status.Progress != 0.25 {
		t.Errorf("Status = %+v", got.Status)
	}
}

func TestGetAsset_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", srv.Client()).GetAsset(context.Background(), "gone")
	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("error = %v; want %v", err, ErrAssetNotFound)
	}
}

func TestUpdateAsset(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/asset/asset-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&raw)
		writeJSON(w, http.StatusOK, `{"id":"asset-1","name":"My clip","status":{"phase":"ready","updatedAt":1714564800000}}`)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "k", srv.Client()).UpdateAsset(context.Background(), "asset-1", port.UpdateAssetInput{
		Name:        "My clip",
		Description: "A clip",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{
		"name": "My clip",
		"storage": map[string]any{
			"ipfs": map[string]any{
				"spec": map[string]any{
					"nftMetadata": map[string]any{
						"description": "A clip",
						"image":       nil,
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateAsset_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"errors":["forbidden"]}`)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "k", srv.Client()).UpdateAsset(context.Background(), "asset-1", port.UpdateAssetInput{Name: "n"})
	if !errors.Is(err, ErrUnauthorized) || !errors.Is(err, port.ErrVideoUnauthorized) {
		t.Fatalf("error = %v; want %v", err, ErrUnauthorized)
	}
}

func TestUpstreamErr(t *testing.T) {
	if err := upstreamErr("op", ErrAssetNotFound); !errors.Is(err, port.ErrVideoAssetNotFound) {
		t.Errorf("sentinel lost: %v", err)
	}
	if err := upstreamErr("op", errors.New("unknown content-type received: text/html")); !errors.Is(err, ErrUpstream) {
		t.Errorf("unexpected SDK error not filed as upstream: %v", err)
	}
}
