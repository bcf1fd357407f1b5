package port

import "context"

// PreparedMint is a mint call that passed preparation and can be written.
type PreparedMint struct {
	Recipient   string
	MetadataURL string
	ChainID     int64
	Data        []byte
	GasLimit    uint64
}

// Minter is the NFT contract.
type Minter interface {
	// Prepare packs and simulates mint(recipient, metadataURL). An error means
	// the call is not preparable.
	Prepare(ctx context.Context, recipient, metadataURL string) (PreparedMint, error)
	// Write signs and submits a prepared call and returns the transaction hash.
	Write(ctx context.Context, p PreparedMint) (string, error)
}
