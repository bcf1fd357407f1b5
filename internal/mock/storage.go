package mock

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// Storage implements port.Storage in memory for tests.
type Storage struct {
	mu sync.Mutex

	// stored values
	Files map[string][]byte
	Opts  map[string]map[string]string

	// errors
	StatErr       error
	RemoveErr     error
	GetErr        error
	SaveErr       error
	FileExistsErr error

	// call flags
	StatCalled       bool
	GetCalled        bool
	SaveCalled       bool
	FileExistsCalled bool
	Removed          []string
}

var _ port.Storage = (*Storage)(nil)

func (m *Storage) FileExists(ctx context.Context, fileKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FileExistsCalled = true
	if m.FileExistsErr != nil {
		return false, m.FileExistsErr
	}
	_, ok := m.Files[fileKey]
	return ok, nil
}

func (m *Storage) StatFile(ctx context.Context, fileKey string) (port.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatCalled = true
	if m.StatErr != nil {
		return port.FileInfo{}, m.StatErr
	}
	data, ok := m.Files[fileKey]
	if !ok {
		return port.FileInfo{}, port.ErrObjectNotFound
	}
	return port.FileInfo{SizeBytes: int64(len(data)), ContentType: m.Opts[fileKey]["Content-Type"]}, nil
}

func (m *Storage) RemoveFile(ctx context.Context, fileKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, fileKey)
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.Files, fileKey)
	return nil
}

func (m *Storage) GetFile(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.Files[fileKey]
	if !ok {
		return nil, port.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Storage) SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalled = true
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.Files == nil {
		m.Files = map[string][]byte{}
	}
	if m.Opts == nil {
		m.Opts = map[string]map[string]string{}
	}
	m.Files[fileKey] = data
	m.Opts[fileKey] = opts
	return nil
}
