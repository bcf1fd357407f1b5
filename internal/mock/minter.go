package mock

import (
	"context"
	"sync"

	"github.com/fhuszti/videonft-ms-go/internal/port"
)

// Minter implements port.Minter for tests.
type Minter struct {
	mu sync.Mutex

	PrepareErr error
	WriteHash  string
	WriteErr   error

	PrepareCalls int
	WriteCalls   int
	Recipient    string
	MetadataURL  string
}

var _ port.Minter = (*Minter)(nil)

func (m *Minter) Prepare(ctx context.Context, recipient, metadataURL string) (port.PreparedMint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PrepareCalls++
	m.Recipient = recipient
	m.MetadataURL = metadataURL
	if m.PrepareErr != nil {
		return port.PreparedMint{}, m.PrepareErr
	}
	return port.PreparedMint{Recipient: recipient, MetadataURL: metadataURL, ChainID: 7777777}, nil
}

func (m *Minter) Write(ctx context.Context, p port.PreparedMint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls++
	if m.WriteErr != nil {
		return "", m.WriteErr
	}
	return m.WriteHash, nil
}
