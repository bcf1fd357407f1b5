package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type httpRenderer struct {
	cache port.Cache
	now   func() time.Time
}

// compile-time check: *httpRenderer must satisfy port.HTTPRenderer
var _ port.HTTPRenderer = (*httpRenderer)(nil)

func NewHTTPRenderer(cache port.Cache) port.HTTPRenderer {
	return &httpRenderer{cache: cache, now: time.Now}
}

// RenderGetSession serves the session view from cache when both the body and
// its ETag are there. Otherwise it renders the view and caches it until the
// view's ValidUntil.
func (r *httpRenderer) RenderGetSession(ctx context.Context, getter port.SessionGetter, id uuid.UUID) ([]byte, string, error) {
	raw, err := r.cache.GetSessionView(ctx, id)
	etag, errEtag := r.cache.GetEtagSessionView(ctx, id)
	if err == nil && errEtag == nil && raw != nil && etag != "" {
		return raw, etag, nil
	}

	out, err := getter.GetSession(ctx, id)
	if err != nil {
		return nil, "", err
	}

	raw, err = json.Marshal(out)
	if err != nil {
		return nil, "", fmt.Errorf("json marshal: %w", err)
	}
	etag = fmt.Sprintf("\"%08x\"", crc32.ChecksumIEEE(raw))

	if ttl := out.ValidUntil.Sub(r.now()); ttl > 0 {
		r.cache.SetSessionView(ctx, id, raw, ttl)
		r.cache.SetEtagSessionView(ctx, id, etag, ttl)
	}

	return raw, etag, nil
}
