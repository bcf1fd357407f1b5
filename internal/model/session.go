package model

import (
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type State string

const (
	StateIdle          State = "idle"
	StateFileSelected  State = "file_selected"
	StateCreating      State = "creating"
	StateUploading     State = "uploading"
	StateProcessing    State = "processing"
	StateStoringToIPFS State = "storing_to_ipfs"
	StateReadyToMint   State = "ready_to_mint"
	StateMinting       State = "minting"
	StateMinted        State = "minted"
	StateMintFailed    State = "mint_failed"
	StateFailed        State = "failed"
)

// Terminal reports whether no further pipeline work happens in this state.
// Only a reset leaves a terminal state.
func (s State) Terminal() bool {
	return s == StateMinted || s == StateMintFailed || s == StateFailed
}

// Phase is a progress state reported by the video platform.
type Phase string

const (
	PhaseNone       Phase = ""
	PhaseWaiting    Phase = "waiting"
	PhaseUploading  Phase = "uploading"
	PhaseProcessing Phase = "processing"
	PhaseReady      Phase = "ready"
	PhaseFailed     Phase = "failed"
)

// Session is one upload-to-mint attempt. It holds the selected file, the form
// fields, the asset tracked by the video platform and the mint attempt.
type Session struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    string    `json:"owner_id"`
	State      State     `json:"state"`
	Generation int       `json:"generation"`
	// Version is bumped by every write; a stale Version loses the write.
	Version int `json:"version"`

	// selected file, staged in object storage
	FileKey         *string `json:"file_key,omitempty"`
	FileName        string  `json:"file_name"`
	FileContentType string  `json:"file_content_type"`
	FileSize        int64   `json:"file_size"`

	// form
	AssetName   string `json:"asset_name"`
	Description string `json:"description"`
	Recipient   string `json:"recipient"`

	// asset
	AssetID       *string `json:"asset_id,omitempty"`
	ProgressPhase Phase   `json:"progress_phase"`
	Progress      float64 `json:"progress"`
	StoragePhase  Phase   `json:"storage_phase"`
	IPFSCID       string  `json:"ipfs_cid"`
	GatewayURL    string  `json:"gateway_url"`
	MetadataURL   string  `json:"metadata_url"`

	// mint attempt
	TxHash    *string `json:"tx_hash,omitempty"`
	MintError *string `json:"mint_error,omitempty"`

	FailureMessage *string `json:"failure_message,omitempty"`

	// one-shot guards
	SubmitRequested bool `json:"submit_requested"`
	UpdateRequested bool `json:"update_requested"`
	MintInProgress  bool `json:"mint_in_progress"`

	ShowError bool `json:"show_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns an idle session owned by ownerID.
func NewSession(id uuid.UUID, ownerID string) *Session {
	return &Session{
		ID:      id,
		OwnerID: ownerID,
		State:   StateIdle,
	}
}
