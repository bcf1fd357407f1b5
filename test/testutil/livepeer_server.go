package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// FakeLivepeer serves the slice of the Livepeer Studio asset API the runner
// uses. Assets go waiting -> processing -> ready once their bytes arrive, and
// IPFS storage completes on the first poll after the update.
type FakeLivepeer struct {
	*httptest.Server
	APIKey string

	mu             sync.Mutex
	assets         map[string]*fakeAsset
	seq            int
	failProcessing string
}

type fakeAsset struct {
	name        string
	description string
	received    int64
	polls       int
	updated     bool
}

func NewFakeLivepeer(apiKey string) *FakeLivepeer {
	f := &FakeLivepeer{APIKey: apiKey, assets: map[string]*fakeAsset{}}

	r := chi.NewRouter()
	r.Post("/api/asset/request-upload", f.authed(f.requestUpload))
	r.Get("/api/asset/{id}", f.authed(f.getAsset))
	r.Patch("/api/asset/{id}", f.authed(f.updateAsset))
	r.Put("/upload/{id}", f.upload)

	f.Server = httptest.NewServer(r)
	return f
}

// FailProcessing makes every uploaded asset fail with msg.
func (f *FakeLivepeer) FailProcessing(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failProcessing = msg
}

// Asset returns what the fake knows about id.
func (f *FakeLivepeer) Asset(id string) (name, description string, received int64, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[id]
	if !ok {
		return "", "", 0, false
	}
	return a.name, a.description, a.received, true
}

func (f *FakeLivepeer) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.APIKey {
			http.Error(w, `{"errors":["invalid api key"]}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (f *FakeLivepeer) requestUpload(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		http.Error(w, `{"errors":["name required"]}`, http.StatusUnprocessableEntity)
		return
	}

	f.mu.Lock()
	f.seq++
	id := fmt.Sprintf("asset-%d", f.seq)
	f.assets[id] = &fakeAsset{name: in.Name}
	f.mu.Unlock()

	writeJSON(w, map[string]any{
		"url":         f.URL + "/upload/" + id,
		"tusEndpoint": f.URL + "/tus/" + id,
		"asset":       map[string]string{"id": id, "name": in.Name},
		"task":        map[string]string{"id": "task-" + id},
	})
}

func (f *FakeLivepeer) upload(w http.ResponseWriter, r *http.Request) {
	n, err := io.Copy(io.Discard, r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[chi.URLParam(r, "id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.received = n
	w.WriteHeader(http.StatusOK)
}

func (f *FakeLivepeer) getAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	a, ok := f.assets[id]
	if !ok {
		f.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	a.polls++

	now := time.Now().UnixMilli()
	status := map[string]any{"phase": "waiting", "progress": 0, "updatedAt": now}
	var stor map[string]any
	switch {
	case a.received == 0:
	case f.failProcessing != "":
		status = map[string]any{"phase": "failed", "errorMessage": f.failProcessing, "updatedAt": now}
	case a.polls < 2:
		status = map[string]any{"phase": "processing", "progress": 0.5, "updatedAt": now}
	default:
		status = map[string]any{"phase": "ready", "progress": 1, "updatedAt": now}
		if a.updated {
			stor = map[string]any{
				"status": map[string]string{"phase": "ready"},
				"ipfs": map[string]any{
					"cid":         "bafy" + id,
					"gatewayUrl":  "https://ipfs.example/ipfs/bafy" + id,
					"nftMetadata": map[string]string{"url": "ipfs://meta-" + id},
				},
			}
		}
	}
	body := map[string]any{"id": id, "name": a.name, "status": status}
	if stor != nil {
		body["storage"] = stor
	}
	f.mu.Unlock()

	writeJSON(w, body)
}

func (f *FakeLivepeer) updateAsset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string `json:"name"`
		Storage struct {
			IPFS struct {
				Spec struct {
					NFTMetadata struct {
						Description string `json:"description"`
					} `json:"nftMetadata"`
				} `json:"spec"`
			} `json:"ipfs"`
		} `json:"storage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assets[chi.URLParam(r, "id")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.name = in.Name
	a.description = in.Storage.IPFS.Spec.NFTMetadata.Description
	a.updated = true
	writeJSON(w, map[string]any{
		"id":     chi.URLParam(r, "id"),
		"name":   a.name,
		"status": map[string]any{"phase": "ready", "updatedAt": time.Now().UnixMilli()},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
