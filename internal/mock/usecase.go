package mock

import (
	"context"
	"io"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// MockSessionCreator implements port.SessionCreator for tests.
type MockSessionCreator struct {
	Out    *port.SessionView
	Err    error
	Called bool
	In     port.CreateSessionInput
}

func (m *MockSessionCreator) CreateSession(ctx context.Context, in port.CreateSessionInput) (*port.SessionView, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockFileSelector implements port.FileSelector for tests. It drains the
// reader so handlers see the same flow as with the real use case.
type MockFileSelector struct {
	Out    *port.SessionView
	Err    error
	Called bool
	In     port.SelectFileInput
	Body   []byte
}

func (m *MockFileSelector) SelectFile(ctx context.Context, in port.SelectFileInput) (*port.SessionView, error) {
	m.Called = true
	m.In = in
	if in.Reader != nil {
		m.Body, _ = io.ReadAll(in.Reader)
	}
	return m.Out, m.Err
}

// MockFormEditor implements port.FormEditor for tests.
type MockFormEditor struct {
	Out    *port.SessionView
	Err    error
	Called bool
	In     port.EditFormInput
}

func (m *MockFormEditor) EditForm(ctx context.Context, in port.EditFormInput) (*port.SessionView, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockSubmitter implements port.Submitter for tests.
type MockSubmitter struct {
	Out    *port.SessionView
	Err    error
	Called bool
	In     port.SubmitInput
}

func (m *MockSubmitter) Submit(ctx context.Context, in port.SubmitInput) (*port.SessionView, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// MockSessionGetter implements port.SessionGetter for tests.
type MockSessionGetter struct {
	Out    *port.SessionView
	Err    error
	Called int
	ID     uuid.UUID
}

func (m *MockSessionGetter) GetSession(ctx context.Context, id uuid.UUID) (*port.SessionView, error) {
	m.Called++
	m.ID = id
	return m.Out, m.Err
}

// MockErrorToggler implements port.ErrorToggler for tests.
type MockErrorToggler struct {
	Out    *port.SessionView
	Err    error
	Called bool
	ID     uuid.UUID
}

func (m *MockErrorToggler) ToggleError(ctx context.Context, id uuid.UUID) (*port.SessionView, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// MockSessionResetter implements port.SessionResetter for tests.
type MockSessionResetter struct {
	Out    *port.SessionView
	Err    error
	Called bool
	ID     uuid.UUID
}

func (m *MockSessionResetter) ResetSession(ctx context.Context, id uuid.UUID) (*port.SessionView, error) {
	m.Called = true
	m.ID = id
	return m.Out, m.Err
}

// MockSessionDeleter implements port.SessionDeleter for tests.
type MockSessionDeleter struct {
	Err    error
	Called bool
	ID     uuid.UUID
}

func (m *MockSessionDeleter) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.Called = true
	m.ID = id
	return m.Err
}

// MockSessionRunner implements port.SessionRunner for tests.
type MockSessionRunner struct {
	Err    error
	Called bool
	ID     uuid.UUID
}

func (m *MockSessionRunner) RunSession(ctx context.Context, id uuid.UUID) error {
	m.Called = true
	m.ID = id
	return m.Err
}

// MockStaleSweeper implements port.StaleSweeper for tests.
type MockStaleSweeper struct {
	Err    error
	Called bool
}

func (m *MockStaleSweeper) SweepStale(ctx context.Context) error {
	m.Called = true
	return m.Err
}
