package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type SessionRepository struct {
	db *sql.DB
}

// compile-time check: *SessionRepository must satisfy port.SessionRepository
var _ port.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	logger.Debugf(ctx, "creating database record for session #%s, at state %q...", s.ID, s.State)

	const query = `
      INSERT INTO sessions
        (id, owner_id, state, generation, version, description)
      VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query, s.ID, s.OwnerID, s.State, s.Generation, s.Version, s.Description)
	if err != nil {
		return err
	}

	return nil
}

const selectColumns = `
        id, owner_id, state, generation, version,
        file_key, file_name, file_content_type, file_size,
        asset_name, description, recipient,
        asset_id, progress_phase, progress, storage_phase, ipfs_cid, gateway_url, metadata_url,
        tx_hash, mint_error, failure_message,
        submit_requested, update_requested, mint_in_progress, show_error,
        created_at, updated_at`

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	logger.Debugf(ctx, "fetching session #%s from the database...", id)

	query := `SELECT` + selectColumns + `
      FROM sessions
      WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	var s model.Session
	if err := row.Scan(
		&s.ID, &s.OwnerID, &s.State, &s.Generation, &s.Version,
		&s.FileKey, &s.FileName, &s.FileContentType, &s.FileSize,
		&s.AssetName, &s.Description, &s.Recipient,
		&s.AssetID, &s.ProgressPhase, &s.Progress, &s.StoragePhase, &s.IPFSCID, &s.GatewayURL, &s.MetadataURL,
		&s.TxHash, &s.MintError, &s.FailureMessage,
		&s.SubmitRequested, &s.UpdateRequested, &s.MintInProgress, &s.ShowError,
		&s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Update locks the row, checks that nobody reset or wrote the session since s
// was loaded, then writes every mutable column under the next version.
func (r *SessionRepository) Update(ctx context.Context, s *model.Session, generation int) (err error) {
	logger.Debugf(ctx, "updating database record for session #%s, with state %q...", s.ID, s.State)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.Warnf(ctx, "rollback failed for session #%s: %v", s.ID, rbErr)
			}
		}
	}()

	var storedGen, storedVersion int
	err = tx.QueryRowContext(ctx, `SELECT generation, version FROM sessions WHERE id = ? FOR UPDATE`, s.ID).
		Scan(&storedGen, &storedVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return port.ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if storedGen != generation {
		return fmt.Errorf("%w: stored generation %d, expected %d", port.ErrSessionReset, storedGen, generation)
	}
	if storedVersion != s.Version {
		return fmt.Errorf("%w: stored version %d, expected %d", port.ErrSessionConflict, storedVersion, s.Version)
	}

	const query = `
      UPDATE sessions
      SET
        state             = ?,
        generation        = ?,
        version           = ?,
        file_key          = ?,
        file_name         = ?,
        file_content_type = ?,
        file_size         = ?,
        asset_name        = ?,
        description       = ?,
        recipient         = ?,
        asset_id          = ?,
        progress_phase    = ?,
        progress          = ?,
        storage_phase     = ?,
        ipfs_cid          = ?,
        gateway_url       = ?,
        metadata_url      = ?,
        tx_hash           = ?,
        mint_error        = ?,
        failure_message   = ?,
        submit_requested  = ?,
        update_requested  = ?,
        mint_in_progress  = ?,
        show_error        = ?,
        updated_at        = CURRENT_TIMESTAMP(3)
      WHERE id = ?
    `
	_, err = tx.ExecContext(ctx, query,
		s.State, s.Generation, s.Version+1,
		s.FileKey, s.FileName, s.FileContentType, s.FileSize,
		s.AssetName, s.Description, s.Recipient,
		s.AssetID, s.ProgressPhase, s.Progress, s.StoragePhase, s.IPFSCID, s.GatewayURL, s.MetadataURL,
		s.TxHash, s.MintError, s.FailureMessage,
		s.SubmitRequested, s.UpdateRequested, s.MintInProgress, s.ShowError,
		s.ID, // WHERE clause
	)
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	s.Version++
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Debugf(ctx, "deleting database record for session #%s...", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return port.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) ListUntouchedBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	const query = `
      SELECT id
      FROM sessions
      WHERE updated_at < ?
    `
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
