package mariadb

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

var testID = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

func newMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewSessionRepository(sqlDB), mock
}

func TestSessionRepository_Create_Success(t *testing.T) {
	repo, mock := newMock(t)

	s := model.NewSession(testID, "user-1")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WithArgs(s.ID, "user-1", string(model.StateIdle), 0, 0, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Errorf("Create() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_Create_ExecError(t *testing.T) {
	repo, mock := newMock(t)

	dbErr := errors.New("insert failed")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WillReturnError(dbErr)

	err := repo.Create(context.Background(), model.NewSession(testID, ""))
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
}

func sessionColumns() []string {
	return []string{
		"id", "owner_id", "state", "generation", "version",
		"file_key", "file_name", "file_content_type", "file_size",
		"asset_name", "description", "recipient",
		"asset_id", "progress_phase", "progress", "storage_phase", "ipfs_cid", "gateway_url", "metadata_url",
		"tx_hash", "mint_error", "failure_message",
		"submit_requested", "update_requested", "mint_in_progress", "show_error",
		"created_at", "updated_at",
	}
}

func TestSessionRepository_GetByID_Success(t *testing.T) {
	repo, mock := newMock(t)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(sessionColumns()).AddRow(
		testID.String(), "user-1", "processing", 2, 7,
		"staging/abc.mp4", "clip.mp4", "video/mp4", int64(2048),
		"My clip", "A clip", "0x1111111111111111111111111111111111111111",
		"asset-1", "processing", 0.42, "", "", "", "",
		nil, nil, nil,
		true, false, false, false,
		now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions`)).
		WithArgs(testID).
		WillReturnRows(rows)

	s, err := repo.GetByID(context.Background(), testID)
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}
	if s.ID != testID {
		t.Errorf("ID = %s, want %s", s.ID, testID)
	}
	if s.State != model.StateProcessing {
		t.Errorf("State = %q, want %q", s.State, model.StateProcessing)
	}
	if s.Generation != 2 {
		t.Errorf("Generation = %d, want 2", s.Generation)
	}
	if s.Version != 7 {
		t.Errorf("Version = %d, want 7", s.Version)
	}
	if s.FileKey == nil || *s.FileKey != "staging/abc.mp4" {
		t.Errorf("FileKey = %v, want staging/abc.mp4", s.FileKey)
	}
	if s.AssetID == nil || *s.AssetID != "asset-1" {
		t.Errorf("AssetID = %v, want asset-1", s.AssetID)
	}
	if s.TxHash != nil {
		t.Errorf("TxHash = %v, want nil", *s.TxHash)
	}
	if s.Progress != 0.42 {
		t.Errorf("Progress = %v, want 0.42", s.Progress)
	}
	if !s.SubmitRequested {
		t.Error("expected SubmitRequested to be true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(sessionColumns()))

	_, err := repo.GetByID(context.Background(), testID)
	if !errors.Is(err, port.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionRepository_Update_Success(t *testing.T) {
	repo, mock := newMock(t)

	s := model.NewSession(testID, "user-1")
	s.State = model.StateCreating
	s.Generation = 3
	s.Version = 5

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT generation, version FROM sessions WHERE id = ? FOR UPDATE`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"generation", "version"}).AddRow(3, 5))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions`)).
		WithArgs(
			string(model.StateCreating), 3, 6,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			testID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Update(context.Background(), s, 3); err != nil {
		t.Fatalf("Update() returned unexpected error: %v", err)
	}
	if s.Version != 6 {
		t.Errorf("Version = %d, want 6 after a successful update", s.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_Update_StaleGeneration(t *testing.T) {
	repo, mock := newMock(t)

	s := model.NewSession(testID, "")
	s.Generation = 1

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT generation, version FROM sessions`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"generation", "version"}).AddRow(2, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), s, 1)
	if !errors.Is(err, port.ErrSessionReset) {
		t.Fatalf("expected ErrSessionReset, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_Update_StaleVersion(t *testing.T) {
	repo, mock := newMock(t)

	s := model.NewSession(testID, "")
	s.Version = 1

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT generation, version FROM sessions`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"generation", "version"}).AddRow(0, 2))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), s, 0)
	if !errors.Is(err, port.ErrSessionConflict) {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
	if s.Version != 1 {
		t.Errorf("Version = %d, must not change on a rejected update", s.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_Update_Missing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT generation, version FROM sessions`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"generation", "version"}))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), model.NewSession(testID, ""), 0)
	if !errors.Is(err, port.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionRepository_Update_ExecError(t *testing.T) {
	repo, mock := newMock(t)

	dbErr := errors.New("update failed")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT generation, version FROM sessions`)).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"generation", "version"}).AddRow(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions`)).
		WillReturnError(dbErr)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), model.NewSession(testID, ""), 0)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"deleted", 1, nil},
		{"missing", 0, port.ErrSessionNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE id = ?`)).
				WithArgs(testID).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			err := repo.Delete(context.Background(), testID)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSessionRepository_ListUntouchedBefore(t *testing.T) {
	repo, mock := newMock(t)

	other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	before := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE updated_at < ?`)).
		WithArgs(before).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(testID.String()).
			AddRow(other.String()))

	ids, err := repo.ListUntouchedBefore(context.Background(), before)
	if err != nil {
		t.Fatalf("ListUntouchedBefore() returned unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != testID || ids[1] != other {
		t.Errorf("ids = %v, want [%s %s]", ids, testID, other)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
