package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fhuszti/videonft-ms-go/internal/mock"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

func TestSubmit_Success(t *testing.T) {
	repo := mock.NewSessionRepo(selectedSession())
	tasks := &mock.MockDispatcher{}
	svc := NewSubmitter(repo, &mock.Cache{}, tasks, testConfig())

	out, err := svc.Submit(context.Background(), port.SubmitInput{ID: sessionID, Recipient: recipient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks.RunIDs) != 1 || tasks.RunIDs[0] != sessionID {
		t.Errorf("enqueued = %v; want [%s]", tasks.RunIDs, sessionID)
	}

	stored := repo.Snapshot(sessionID)
	if stored.State != model.StateCreating || !stored.SubmitRequested {
		t.Errorf("stored = %+v", stored)
	}
	// blank fields fall back to the draft
	if stored.AssetName != "My clip" || stored.Description != "A clip" || stored.Recipient != recipient {
		t.Errorf("form = %q/%q/%q", stored.AssetName, stored.Description, stored.Recipient)
	}
	if !out.Busy || out.CanSubmit || out.ProgressText != "Waiting" {
		t.Errorf("view = %+v", out)
	}
}

func TestSubmit_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		sess    *model.Session
		in      port.SubmitInput
		wantErr error
	}{
		{
			name:    "invalid recipient",
			sess:    selectedSession(),
			in:      port.SubmitInput{ID: sessionID, Recipient: "0x123"},
			wantErr: ErrInvalidInput,
		},
		{
			name: "incomplete form",
			sess: func() *model.Session {
				s := selectedSession()
				s.Description = " "
				return s
			}(),
			in:      port.SubmitInput{ID: sessionID, Recipient: recipient},
			wantErr: orchestrator.ErrIncompleteForm,
		},
		{
			name:    "no file",
			sess:    model.NewSession(sessionID, ""),
			in:      port.SubmitInput{ID: sessionID, Name: "n", Description: "d", Recipient: recipient},
			wantErr: orchestrator.ErrInvalidTransition,
		},
		{
			name:    "already submitted",
			sess:    submittedSession(),
			in:      port.SubmitInput{ID: sessionID, Recipient: recipient},
			wantErr: orchestrator.ErrAlreadySubmitted,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := mock.NewSessionRepo(tc.sess)
			tasks := &mock.MockDispatcher{}
			svc := NewSubmitter(repo, &mock.Cache{}, tasks, testConfig())

			_, err := svc.Submit(context.Background(), tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tasks.RunCalled {
				t.Error("pipeline must not start")
			}
		})
	}
}

func TestSubmit_EnqueueErrorFailsSession(t *testing.T) {
	repo := mock.NewSessionRepo(selectedSession())
	tasks := &mock.MockDispatcher{RunErr: errors.New("redis down")}
	svc := NewSubmitter(repo, &mock.Cache{}, tasks, testConfig())

	_, err := svc.Submit(context.Background(), port.SubmitInput{ID: sessionID, Recipient: recipient})
	if !errors.Is(err, ErrPipelineStart) {
		t.Fatalf("expected %v, got %v", ErrPipelineStart, err)
	}
	stored := repo.Snapshot(sessionID)
	if stored.State != model.StateFailed {
		t.Errorf("state = %s; want failed", stored.State)
	}
}

// lockstepRepo holds the first n reads until all of them arrived, so every
// reader works on the same stored version.
type lockstepRepo struct {
	*mock.SessionRepo
	mu      sync.Mutex
	waiting int
	release chan struct{}
}

func newLockstepRepo(repo *mock.SessionRepo, n int) *lockstepRepo {
	return &lockstepRepo{SessionRepo: repo, waiting: n, release: make(chan struct{})}
}

func (r *lockstepRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	s, err := r.SessionRepo.GetByID(ctx, id)
	r.mu.Lock()
	if r.waiting == 0 {
		r.mu.Unlock()
		return s, err
	}
	r.waiting--
	if r.waiting == 0 {
		close(r.release)
	}
	r.mu.Unlock()
	<-r.release
	return s, err
}

func TestSubmit_ConcurrentSubmitsStartOneRun(t *testing.T) {
	repo := mock.NewSessionRepo(selectedSession())
	tasks := &mock.MockDispatcher{}
	svc := NewSubmitter(newLockstepRepo(repo, 2), &mock.Cache{}, tasks, testConfig())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), port.SubmitInput{ID: sessionID, Recipient: recipient})
		}(i)
	}
	wg.Wait()

	if got := tasks.Runs(); got != 1 {
		t.Fatalf("enqueued %d runs; want 1", got)
	}
	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, orchestrator.ErrAlreadySubmitted):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Errorf("results = %v; want one success and one ErrAlreadySubmitted", errs)
	}
	if stored := repo.Snapshot(sessionID); stored.Version != 1 {
		t.Errorf("version = %d; want a single write", stored.Version)
	}
}

func TestSubmit_EnqueuesCurrentGeneration(t *testing.T) {
	sess := selectedSession()
	sess.Generation = 4
	tasks := &mock.MockDispatcher{}
	svc := NewSubmitter(mock.NewSessionRepo(sess), &mock.Cache{}, tasks, testConfig())

	if _, err := svc.Submit(context.Background(), port.SubmitInput{ID: sessionID, Recipient: recipient}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks.RunGenerations) != 1 || tasks.RunGenerations[0] != 4 {
		t.Errorf("generations = %v; want [4]", tasks.RunGenerations)
	}
}
