package session

import (
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

var (
	fixedNow  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessionID = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	fileID    = uuid.MustParse("11111111-2222-4333-8444-555555555555")
)

const (
	recipient = "0x1111111111111111111111111111111111111111"
	stagedKey = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee/staged.mp4"
)

func testConfig() Config {
	return Config{
		ExplorerBaseURL: "https://explorer.zora.energy",
		MaxUploadBytes:  1 << 20,
		PollInterval:    time.Millisecond,
		SessionTTL:      24 * time.Hour,
		ViewTTL:         5 * time.Second,
		Now:             func() time.Time { return fixedNow },
	}
}

func fixedGen(id uuid.UUID) port.UUIDGen {
	return func() uuid.UUID { return id }
}

func ptr(s string) *string { return &s }

// selectedSession has a staged file and a draft form, ready to submit.
func selectedSession() *model.Session {
	s := model.NewSession(sessionID, "user-1")
	s.State = model.StateFileSelected
	s.FileKey = ptr(stagedKey)
	s.FileName = "clip.mp4"
	s.FileContentType = "video/mp4"
	s.FileSize = 11
	s.AssetName = "My clip"
	s.Description = "A clip"
	return s
}

// submittedSession is what the runner picks up.
func submittedSession() *model.Session {
	s := selectedSession()
	s.State = model.StateCreating
	s.Recipient = recipient
	s.SubmitRequested = true
	s.ProgressPhase = model.PhaseWaiting
	return s
}
