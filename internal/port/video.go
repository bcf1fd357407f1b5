package port

import (
	"context"
	"io"
)

// UploadRequest is the answer to an upload request: the identity of the new
// asset and where to send its bytes.
type UploadRequest struct {
	AssetID   string
	UploadURL string
}

// AssetStatus is the primary processing status of an asset.
type AssetStatus struct {
	Phase        string
	Progress     float64
	ErrorMessage string
}

// IPFSRecord is present once the asset has been pinned.
type IPFSRecord struct {
	CID            string
	GatewayURL     string
	NFTMetadataURL string
}

type AssetStorage struct {
	Phase string
	IPFS  *IPFSRecord
}

// Asset is a video tracked by the video platform.
type Asset struct {
	ID      string
	Name    string
	Status  AssetStatus
	Storage *AssetStorage
}

// UpdateAssetInput requests IPFS storage with NFT metadata.
type UpdateAssetInput struct {
	Name        string
	Description string
}

// VideoService is the hosted video-processing platform.
type VideoService interface {
	RequestUpload(ctx context.Context, name string) (UploadRequest, error)
	Upload(ctx context.Context, uploadURL string, r io.Reader, size int64, onProgress func(fraction float64)) error
	GetAsset(ctx context.Context, id string) (Asset, error)
	UpdateAsset(ctx context.Context, id string, in UpdateAssetInput) error
}
