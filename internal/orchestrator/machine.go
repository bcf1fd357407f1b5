// Package orchestrator holds the upload-to-mint state machine. It is pure: it
// never talks to the video platform, the chain or storage. Apply mutates a
// session in response to one event and returns the side effects the caller
// must execute. Every one-shot side effect is guarded by a flag on the session,
// so replaying the same observation never emits the same command twice.
package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fhuszti/videonft-ms-go/internal/model"
)

var (
	ErrInvalidTransition   = errors.New("orchestrator: invalid transition")
	ErrIncompleteForm      = errors.New("orchestrator: name and description are required")
	ErrAlreadySubmitted    = errors.New("orchestrator: session already submitted")
	ErrAssetAlreadyCreated = errors.New("orchestrator: asset already created for session")
	ErrUnknownEvent        = errors.New("orchestrator: unknown event")
)

const (
	FailedProcessingMessage = "Failed to process video."
	FailedStorageMessage    = "Failed to store video on IPFS."
)

// Apply feeds ev into s. On error, s is left untouched.
func Apply(s *model.Session, ev Event) ([]Command, error) {
	switch e := ev.(type) {
	case FileSelected:
		return applyFileSelected(s, e)
	case FormEdited:
		return applyFormEdited(s, e)
	case Submitted:
		return applySubmitted(s, e)
	case AssetCreated:
		return applyAssetCreated(s, e)
	case UploadProgressed:
		return applyUploadProgressed(s, e)
	case AssetObserved:
		return applyAssetObserved(s, e), nil
	case AssetFailed:
		return applyAssetFailed(s, e)
	case MintSucceeded:
		return applyMintSucceeded(s, e)
	case MintRejected:
		return applyMintRejected(s, e)
	case ErrorToggled:
		return applyErrorToggled(s)
	case Reset:
		return applyReset(s), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func applyFileSelected(s *model.Session, e FileSelected) ([]Command, error) {
	if s.State != model.StateIdle && s.State != model.StateFileSelected {
		return nil, transitionErr(s.State, "file_selected")
	}

	var cmds []Command
	if s.FileKey != nil && *s.FileKey != e.Key {
		cmds = append(cmds, DiscardFile{Key: *s.FileKey})
	}

	key := e.Key
	s.FileKey = &key
	s.FileName = e.FileName
	s.FileContentType = e.ContentType
	s.FileSize = e.Size
	s.State = model.StateFileSelected
	return cmds, nil
}

// applyFormEdited stores the draft form. The form locks once submitted.
func applyFormEdited(s *model.Session, e FormEdited) ([]Command, error) {
	if s.SubmitRequested {
		return nil, ErrAlreadySubmitted
	}
	if s.State != model.StateIdle && s.State != model.StateFileSelected {
		return nil, transitionErr(s.State, "form_edited")
	}
	s.AssetName = e.Name
	s.Description = e.Description
	return nil, nil
}

// applySubmitted falls back to the stored draft for any blank field.
func applySubmitted(s *model.Session, e Submitted) ([]Command, error) {
	if s.SubmitRequested {
		return nil, ErrAlreadySubmitted
	}
	if s.State != model.StateFileSelected {
		return nil, transitionErr(s.State, model.StateCreating)
	}
	name := firstNonBlank(e.Name, s.AssetName)
	description := firstNonBlank(e.Description, s.Description)
	if isBlank(name) || isBlank(description) {
		return nil, ErrIncompleteForm
	}

	s.AssetName = name
	s.Description = description
	s.Recipient = e.Recipient
	s.SubmitRequested = true
	s.State = model.StateCreating
	s.ProgressPhase = model.PhaseWaiting
	s.Progress = 0

	return []Command{CreateAsset{Name: s.AssetName, FileKey: *s.FileKey, Size: s.FileSize}}, nil
}

func applyAssetCreated(s *model.Session, e AssetCreated) ([]Command, error) {
	if s.AssetID != nil {
		return nil, ErrAssetAlreadyCreated
	}
	if s.State != model.StateCreating {
		return nil, transitionErr(s.State, "asset_created")
	}
	id := e.AssetID
	s.AssetID = &id
	return nil, nil
}

func applyUploadProgressed(s *model.Session, e UploadProgressed) ([]Command, error) {
	if s.State != model.StateCreating && s.State != model.StateUploading {
		return nil, transitionErr(s.State, model.StateUploading)
	}
	s.State = model.StateUploading
	s.ProgressPhase = model.PhaseUploading
	s.Progress = clamp(e.Fraction)
	return nil, nil
}

// applyAssetObserved never fails: an observation that arrives in a state that
// does not expect one is stale and simply dropped.
func applyAssetObserved(s *model.Session, e AssetObserved) []Command {
	switch s.State {
	case model.StateCreating, model.StateUploading, model.StateProcessing, model.StateStoringToIPFS:
	default:
		return nil
	}

	if e.Status == model.PhaseFailed {
		s.ProgressPhase = model.PhaseFailed
		fail(s, FailedProcessingMessage, e.ErrorMessage)
		return []Command{StopPolling{}}
	}

	if e.Status != model.PhaseReady {
		// once IPFS storage was requested the session stays in
		// storing_to_ipfs and only tracks progress
		if !s.UpdateRequested {
			s.State = model.StateProcessing
		}
		s.ProgressPhase = e.Status
		if s.ProgressPhase == model.PhaseNone {
			s.ProgressPhase = model.PhaseWaiting
		}
		s.Progress = clamp(e.Progress)
		return nil
	}

	s.ProgressPhase = model.PhaseReady
	s.Progress = 1

	if !s.UpdateRequested {
		s.UpdateRequested = true
		s.State = model.StateStoringToIPFS
		return []Command{UpdateAsset{AssetID: deref(s.AssetID), Name: s.AssetName, Description: s.Description}}
	}

	if s.State != model.StateStoringToIPFS {
		return nil
	}

	s.StoragePhase = e.StorageStatus
	switch e.StorageStatus {
	case model.PhaseFailed:
		fail(s, FailedStorageMessage, e.ErrorMessage)
		return []Command{StopPolling{}}
	case model.PhaseReady:
	default:
		return nil
	}

	s.IPFSCID = e.IPFS.CID
	s.GatewayURL = e.IPFS.GatewayURL
	s.MetadataURL = e.IPFS.MetadataURL
	s.State = model.StateReadyToMint

	cmds := []Command{StopPolling{}}
	if s.Recipient != "" && s.MetadataURL != "" && !s.MintInProgress {
		s.MintInProgress = true
		s.State = model.StateMinting
		cmds = append(cmds, SubmitMint{Recipient: s.Recipient, MetadataURL: s.MetadataURL})
	}
	return cmds
}

func applyAssetFailed(s *model.Session, e AssetFailed) ([]Command, error) {
	switch s.State {
	case model.StateCreating, model.StateUploading, model.StateProcessing, model.StateStoringToIPFS:
	default:
		return nil, transitionErr(s.State, model.StateFailed)
	}
	prefix := FailedProcessingMessage
	if s.State == model.StateStoringToIPFS {
		prefix = FailedStorageMessage
	} else {
		s.ProgressPhase = model.PhaseFailed
	}
	fail(s, prefix, e.Message)
	return []Command{StopPolling{}}, nil
}

func applyMintSucceeded(s *model.Session, e MintSucceeded) ([]Command, error) {
	if s.State != model.StateMinting {
		return nil, transitionErr(s.State, model.StateMinted)
	}
	hash := e.TxHash
	s.TxHash = &hash
	s.State = model.StateMinted
	return nil, nil
}

func applyMintRejected(s *model.Session, e MintRejected) ([]Command, error) {
	if s.State != model.StateMinting {
		return nil, transitionErr(s.State, model.StateMintFailed)
	}
	msg := e.Message
	s.MintError = &msg
	s.TxHash = nil
	s.State = model.StateMintFailed
	return nil, nil
}

func applyErrorToggled(s *model.Session) ([]Command, error) {
	if s.State != model.StateMintFailed {
		return nil, transitionErr(s.State, "error_toggled")
	}
	s.ShowError = !s.ShowError
	return nil, nil
}

// applyReset returns the session to the initial form. The generation bump lets
// a runner still working on the previous attempt notice it was abandoned.
func applyReset(s *model.Session) []Command {
	var cmds []Command
	if s.FileKey != nil {
		cmds = append(cmds, DiscardFile{Key: *s.FileKey})
	}

	*s = model.Session{
		ID:         s.ID,
		OwnerID:    s.OwnerID,
		State:      model.StateIdle,
		Generation: s.Generation + 1,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	return cmds
}

// CanSubmit mirrors the confirm button: enabled only with a file, a name and a
// description, and only until it has been clicked once.
func CanSubmit(s *model.Session) bool {
	return s.State == model.StateFileSelected &&
		!s.SubmitRequested &&
		!isBlank(s.AssetName) &&
		!isBlank(s.Description)
}

func fail(s *model.Session, msg, detail string) {
	if detail != "" {
		msg = msg + " " + detail
	}
	s.FailureMessage = &msg
	s.State = model.StateFailed
}

func transitionErr(from model.State, to any) error {
	return fmt.Errorf("%w: %s -> %v", ErrInvalidTransition, from, to)
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}

func firstNonBlank(a, b string) string {
	if !isBlank(a) {
		return a
	}
	return b
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
