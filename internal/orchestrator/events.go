package orchestrator

import "github.com/fhuszti/videonft-ms-go/internal/model"

// Event is an input to the state machine: a user action or an observation
// coming back from one of the external services.
type Event interface {
	event()
}

// FileSelected records a video file staged under Key.
type FileSelected struct {
	Key         string
	FileName    string
	ContentType string
	Size        int64
}

// FormEdited stores the draft name and description.
type FormEdited struct {
	Name        string
	Description string
}

// Submitted is the confirm action. Recipient is the connected wallet address
// the NFT is minted to.
type Submitted struct {
	Name        string
	Description string
	Recipient   string
}

// AssetCreated carries the identifier assigned by the video platform.
type AssetCreated struct {
	AssetID string
}

// UploadProgressed reports the share of the file sent so far, in [0, 1].
type UploadProgressed struct {
	Fraction float64
}

// IPFSInfo holds the identifiers published once the asset is pinned.
type IPFSInfo struct {
	CID         string
	GatewayURL  string
	MetadataURL string
}

// AssetObserved is one poll of the asset.
type AssetObserved struct {
	Status        model.Phase
	Progress      float64
	StorageStatus model.Phase
	IPFS          IPFSInfo
	ErrorMessage  string
}

// AssetFailed reports that creating, uploading or updating the asset failed.
type AssetFailed struct {
	Message string
}

type MintSucceeded struct {
	TxHash string
}

type MintRejected struct {
	Message string
}

type ErrorToggled struct{}

// Reset is the "return to form" action.
type Reset struct{}

func (FileSelected) event()     {}
func (FormEdited) event()       {}
func (Submitted) event()        {}
func (AssetCreated) event()     {}
func (UploadProgressed) event() {}
func (AssetObserved) event()    {}
func (AssetFailed) event()      {}
func (MintSucceeded) event()    {}
func (MintRejected) event()     {}
func (ErrorToggled) event()     {}
func (Reset) event()            {}
