package port

import (
	"context"
	"io"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type UUIDGen func() uuid.UUID

// SessionView is what clients see of a session.
type SessionView struct {
	ID           uuid.UUID   `json:"id"`
	State        model.State `json:"state"`
	FileName     string      `json:"file_name,omitempty"`
	AssetName    string      `json:"asset_name"`
	Description  string      `json:"description"`
	Recipient    string      `json:"recipient,omitempty"`
	CanSubmit    bool        `json:"can_submit"`
	Busy         bool        `json:"busy"`
	ProgressText string      `json:"progress_text,omitempty"`
	Percent      int         `json:"percent"`
	StageText    string      `json:"stage_text,omitempty"`
	Failure      string      `json:"failure,omitempty"`

	AssetID     string `json:"asset_id,omitempty"`
	IPFSCID     string `json:"ipfs_cid,omitempty"`
	GatewayURL  string `json:"gateway_url,omitempty"`
	MetadataURL string `json:"metadata_url,omitempty"`

	TxHash      string `json:"tx_hash,omitempty"`
	ExplorerURL string `json:"explorer_url,omitempty"`
	ShareURL    string `json:"share_url,omitempty"`
	MintFailed  bool   `json:"mint_failed"`
	ShowError   bool   `json:"show_error"`
	MintError   string `json:"mint_error,omitempty"`

	ValidUntil time.Time `json:"-"`
}

// SessionCreator opens a new idle session.
type SessionCreator interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*SessionView, error)
}
type CreateSessionInput struct {
	OwnerID string
}

// FileSelector stages the selected video file.
type FileSelector interface {
	SelectFile(ctx context.Context, in SelectFileInput) (*SessionView, error)
}
type SelectFileInput struct {
	ID          uuid.UUID
	FileName    string    `validate:"required,mp4" json:"file_name"`
	ContentType string    `validate:"required,videotype" json:"content_type"`
	Reader      io.Reader `validate:"required" json:"-"`
}

// FormEditor stores the draft name and description.
type FormEditor interface {
	EditForm(ctx context.Context, in EditFormInput) (*SessionView, error)
}
type EditFormInput struct {
	ID          uuid.UUID
	Name        string `validate:"max=100" json:"name"`
	Description string `validate:"max=1000" json:"description"`
}

// Submitter confirms the form and starts the pipeline.
type Submitter interface {
	Submit(ctx context.Context, in SubmitInput) (*SessionView, error)
}
// SubmitInput falls back to the stored draft for a blank name or description.
type SubmitInput struct {
	ID          uuid.UUID
	Name        string `validate:"max=100" json:"name"`
	Description string `validate:"max=1000" json:"description"`
	Recipient   string `validate:"required,eth_addr" json:"address"`
}

// SessionGetter renders a session.
type SessionGetter interface {
	GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error)
}

// ErrorToggler reveals or hides the mint error.
type ErrorToggler interface {
	ToggleError(ctx context.Context, id uuid.UUID) (*SessionView, error)
}

// SessionResetter returns a session to the initial form.
type SessionResetter interface {
	ResetSession(ctx context.Context, id uuid.UUID) (*SessionView, error)
}

// SessionDeleter deletes a session and its staged file.
type SessionDeleter interface {
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// SessionRunner drives a submitted session through upload, processing, IPFS
// storage and minting.
type SessionRunner interface {
	RunSession(ctx context.Context, id uuid.UUID) error
}

// StaleSweeper deletes sessions nobody touched for too long.
type StaleSweeper interface {
	SweepStale(ctx context.Context) error
}
