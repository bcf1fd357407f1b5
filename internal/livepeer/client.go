// Package livepeer talks to the Livepeer Studio asset API: it requests direct
// uploads, pushes the file bytes, polls asset status and asks for IPFS storage
// with NFT metadata.
package livepeer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	livepeergo "github.com/livepeer/livepeer-go"
	"github.com/livepeer/livepeer-go/models/components"
)

var (
	ErrUnauthorized  = fmt.Errorf("livepeer: %w", port.ErrVideoUnauthorized)
	ErrAssetNotFound = fmt.Errorf("livepeer: %w", port.ErrVideoAssetNotFound)
	ErrUpstream      = fmt.Errorf("livepeer: %w", port.ErrVideoUpstream)
)

const defaultTimeout = 30 * time.Second

// Client drives the asset API through the Livepeer SDK. The SDK only hands
// out the upload URL, so the file bytes go through a plain HTTP client.
type Client struct {
	sdk *livepeergo.Livepeer
	// uploads run without the request timeout: a 10 GB file takes a while
	upload *http.Client
}

// compile-time check: *Client must satisfy port.VideoService
var _ port.VideoService = (*Client)(nil)

// NewClient returns a client for the API at baseURL. A nil httpClient selects
// one with a sane timeout for API calls.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	upload := httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
		upload = &http.Client{}
	}
	sdk := livepeergo.New(
		livepeergo.WithServerURL(strings.TrimRight(baseURL, "/")+"/api"),
		livepeergo.WithSecurity(apiKey),
		livepeergo.WithClient(statusClient{http: httpClient}),
	)
	return &Client{sdk: sdk, upload: upload}
}

// statusClient turns non-2xx answers into our sentinel errors before the SDK
// sees them, so every call maps statuses the same way.
type statusClient struct {
	http *http.Client
}

func (c statusClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUpstream, req.Method, req.URL.Path, err)
	}
	if err := checkStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

type requestUploadResponse struct {
	URL   string `json:"url"`
	Asset struct {
		ID string `json:"id"`
	} `json:"asset"`
}

func (c *Client) RequestUpload(ctx context.Context, name string) (port.UploadRequest, error) {
	logger.Debugf(ctx, "requesting a direct upload for asset %q...", name)

	res, err := c.sdk.Asset.Create(ctx, components.NewAssetPayload{Name: name})
	if err != nil {
		return port.UploadRequest{}, upstreamErr("request upload", err)
	}

	var out requestUploadResponse
	if err := reshape(res.Data, &out); err != nil {
		return port.UploadRequest{}, err
	}
	if out.URL == "" || out.Asset.ID == "" {
		return port.UploadRequest{}, fmt.Errorf("%w: upload response without url or asset id", ErrUpstream)
	}
	return port.UploadRequest{AssetID: out.Asset.ID, UploadURL: out.URL}, nil
}

// Upload PUTs the file to the pre-signed upload URL, reporting the fraction
// of bytes sent so far through onProgress.
func (c *Client) Upload(ctx context.Context, uploadURL string, r io.Reader, size int64, onProgress func(float64)) error {
	logger.Debugf(ctx, "uploading %d bytes...", size)

	body := &progressReader{r: r, total: size, onProgress: onProgress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "video/mp4")

	resp, err := c.upload.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upload: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if onProgress != nil {
		onProgress(1)
	}
	return nil
}

type assetResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status struct {
		Phase        string  `json:"phase"`
		Progress     float64 `json:"progress"`
		ErrorMessage string  `json:"errorMessage"`
	} `json:"status"`
	Storage *struct {
		Status *struct {
			Phase string `json:"phase"`
		} `json:"status"`
		IPFS *struct {
			CID         string `json:"cid"`
			GatewayURL  string `json:"gatewayUrl"`
			NFTMetadata *struct {
				URL string `json:"url"`
			} `json:"nftMetadata"`
		} `json:"ipfs"`
	} `json:"storage"`
}

func (c *Client) GetAsset(ctx context.Context, id string) (port.Asset, error) {
	res, err := c.sdk.Asset.Get(ctx, id)
	if err != nil {
		return port.Asset{}, upstreamErr("get asset", err)
	}
	if res.Asset == nil {
		return port.Asset{}, fmt.Errorf("%w: asset %s: empty response", ErrUpstream, id)
	}

	var out assetResponse
	if err := reshape(res.Asset, &out); err != nil {
		return port.Asset{}, err
	}
	return out.toAsset(), nil
}

func (a assetResponse) toAsset() port.Asset {
	asset := port.Asset{
		ID:   a.ID,
		Name: a.Name,
		Status: port.AssetStatus{
			Phase:        a.Status.Phase,
			Progress:     a.Status.Progress,
			ErrorMessage: a.Status.ErrorMessage,
		},
	}
	if a.Storage == nil {
		return asset
	}
	asset.Storage = &port.AssetStorage{}
	if a.Storage.Status != nil {
		asset.Storage.Phase = a.Storage.Status.Phase
	}
	if ipfs := a.Storage.IPFS; ipfs != nil {
		rec := &port.IPFSRecord{CID: ipfs.CID, GatewayURL: ipfs.GatewayURL}
		if ipfs.NFTMetadata != nil {
			rec.NFTMetadataURL = ipfs.NFTMetadata.URL
		}
		asset.Storage.IPFS = rec
	}
	return asset
}

type nftMetadata struct {
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

type updateAssetRequest struct {
	Name    string `json:"name"`
	Storage struct {
		IPFS struct {
			Spec struct {
				NFTMetadata nftMetadata `json:"nftMetadata"`
			} `json:"spec"`
		} `json:"ipfs"`
	} `json:"storage"`
}

// UpdateAsset renames the asset and asks for IPFS storage. The image is sent
// as null so the platform does not attach a default thumbnail.
func (c *Client) UpdateAsset(ctx context.Context, id string, in port.UpdateAssetInput) error {
	logger.Debugf(ctx, "requesting IPFS storage for asset %s...", id)

	var body updateAssetRequest
	body.Name = in.Name
	body.Storage.IPFS.Spec.NFTMetadata = nftMetadata{Description: in.Description}

	var patch components.AssetPatchPayload
	if err := reshape(body, &patch); err != nil {
		return err
	}
	if _, err := c.sdk.Asset.Update(ctx, id, patch); err != nil {
		return upstreamErr("update asset", err)
	}
	return nil
}

// reshape moves a value between our wire structs and the SDK models through
// their shared JSON form.
func reshape(from, to any) error {
	b, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("%w: encode %T: %v", ErrUpstream, from, err)
	}
	if err := json.Unmarshal(b, to); err != nil {
		return fmt.Errorf("%w: decode %T: %v", ErrUpstream, to, err)
	}
	return nil
}

// upstreamErr keeps our sentinels and files everything else the SDK reports
// (bad payloads, unexpected content types) under ErrUpstream.
func upstreamErr(op string, err error) error {
	for _, sentinel := range []error{ErrUnauthorized, ErrAssetNotFound, ErrUpstream} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrAssetNotFound
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
}
