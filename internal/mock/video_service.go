package mock

import (
	"context"
	"io"
	"sync"

	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// VideoService scripts the video platform for tests. GetAsset walks Assets in
// order and keeps returning the last one.
type VideoService struct {
	mu sync.Mutex

	UploadOut port.UploadRequest
	Progress  []float64
	Assets    []port.Asset
	// AssetErrs, when set, is consumed before Assets, one entry per call; a nil
	// entry falls through to the next asset.
	AssetErrs []error

	RequestUploadErr error
	UploadErr        error
	UpdateErr        error

	RequestUploadCalls int
	RequestedName      string
	UploadCalls        int
	UploadedBytes      []byte
	UploadedTo         string
	GetAssetCalls      int
	UpdateCalls        int
	UpdateID           string
	UpdateInput        port.UpdateAssetInput
}

var _ port.VideoService = (*VideoService)(nil)

func (m *VideoService) RequestUpload(ctx context.Context, name string) (port.UploadRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestUploadCalls++
	m.RequestedName = name
	if m.RequestUploadErr != nil {
		return port.UploadRequest{}, m.RequestUploadErr
	}
	return m.UploadOut, nil
}

func (m *VideoService) Upload(ctx context.Context, uploadURL string, r io.Reader, size int64, onProgress func(float64)) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.UploadCalls++
	m.UploadedTo = uploadURL
	m.UploadedBytes = data
	progress := m.Progress
	uploadErr := m.UploadErr
	m.mu.Unlock()

	if uploadErr != nil {
		return uploadErr
	}
	if onProgress != nil {
		for _, p := range progress {
			onProgress(p)
		}
	}
	return nil
}

func (m *VideoService) GetAsset(ctx context.Context, id string) (port.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetAssetCalls++

	if len(m.AssetErrs) > 0 {
		err := m.AssetErrs[0]
		m.AssetErrs = m.AssetErrs[1:]
		if err != nil {
			return port.Asset{}, err
		}
	}
	if len(m.Assets) == 0 {
		return port.Asset{ID: id}, nil
	}
	a := m.Assets[0]
	if len(m.Assets) > 1 {
		m.Assets = m.Assets[1:]
	}
	return a, nil
}

func (m *VideoService) UpdateAsset(ctx context.Context, id string, in port.UpdateAssetInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	m.UpdateID = id
	m.UpdateInput = in
	return m.UpdateErr
}
