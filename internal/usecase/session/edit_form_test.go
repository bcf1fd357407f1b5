package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fhuszti/videonft-ms-go/internal/mock"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

func TestEditForm_EnablesSubmit(t *testing.T) {
	sess := selectedSession()
	sess.AssetName, sess.Description = "", ""
	repo := mock.NewSessionRepo(sess)
	svc := NewFormEditor(repo, &mock.Cache{}, testConfig())

	out, err := svc.EditForm(context.Background(), port.EditFormInput{ID: sessionID, Name: "My clip"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CanSubmit {
		t.Error("CanSubmit must stay false without a description")
	}

	out, err = svc.EditForm(context.Background(), port.EditFormInput{ID: sessionID, Name: "My clip", Description: "A clip"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.CanSubmit {
		t.Errorf("CanSubmit = false; want true for %+v", out)
	}
}

func TestEditForm_LockedAfterSubmit(t *testing.T) {
	repo := mock.NewSessionRepo(submittedSession())
	svc := NewFormEditor(repo, &mock.Cache{}, testConfig())

	_, err := svc.EditForm(context.Background(), port.EditFormInput{ID: sessionID, Name: "x", Description: "y"})
	if !errors.Is(err, orchestrator.ErrAlreadySubmitted) {
		t.Fatalf("expected %v, got %v", orchestrator.ErrAlreadySubmitted, err)
	}
}

func TestEditForm_TooLong(t *testing.T) {
	repo := mock.NewSessionRepo(model.NewSession(sessionID, ""))
	svc := NewFormEditor(repo, &mock.Cache{}, testConfig())

	_, err := svc.EditForm(context.Background(), port.EditFormInput{ID: sessionID, Name: strings.Repeat("n", 101)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected %v, got %v", ErrInvalidInput, err)
	}
}
