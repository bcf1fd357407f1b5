package orchestrator

import (
	"fmt"
	"math"

	"github.com/fhuszti/videonft-ms-go/internal/model"
)

// ProgressText renders a phase and its progress the way the upload form shows it.
func ProgressText(phase model.Phase, fraction float64) string {
	switch phase {
	case model.PhaseFailed:
		return FailedProcessingMessage
	case model.PhaseWaiting:
		return "Waiting"
	case model.PhaseUploading:
		return fmt.Sprintf("Video Uploading: %d%%", Percent(fraction))
	case model.PhaseProcessing:
		return fmt.Sprintf("Video Processing: %d%%", Percent(fraction))
	default:
		return ""
	}
}

// Percent is round(fraction * 100).
func Percent(fraction float64) int {
	return int(math.Round(fraction * 100))
}

const (
	stageUploading  = "Uploading to the Livepeer network..."
	stageProcessing = "Uploading to the Livepeer network ✅ \n Processing to ensure optimal playback..."
	stageIPFS       = "Uploading to the Livepeer network ✅ \n Processing to ensure optimal playback ✅ \n Storing on IPFS..."
	stageMint       = "Your video is now ready to be minted! Complete minting process in your wallet."
)

// StageText is the checklist line shown next to the progress bar.
func StageText(s *model.Session) string {
	switch s.State {
	case model.StateUploading:
		return stageUploading
	case model.StateProcessing:
		return stageProcessing
	case model.StateStoringToIPFS:
		return stageIPFS
	case model.StateReadyToMint, model.StateMinting:
		return stageMint
	default:
		return ""
	}
}

// Busy reports whether a loading indicator should be shown.
func Busy(s *model.Session) bool {
	switch s.State {
	case model.StateCreating, model.StateUploading, model.StateProcessing,
		model.StateStoringToIPFS, model.StateReadyToMint, model.StateMinting:
		return true
	default:
		return false
	}
}
