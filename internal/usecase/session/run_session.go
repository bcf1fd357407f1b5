package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/metrics"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
	"golang.org/x/time/rate"
)

type sessionRunnerSrv struct {
	store
	video  port.VideoService
	minter port.Minter
	cfg    Config
}

func NewSessionRunner(
	repo port.SessionRepository,
	cache port.Cache,
	strg port.Storage,
	video port.VideoService,
	minter port.Minter,
	cfg Config,
) port.SessionRunner {
	return &sessionRunnerSrv{
		store:  store{repo: repo, cache: cache, strg: strg},
		video:  video,
		minter: minter,
		cfg:    cfg.withDefaults(),
	}
}

// run is one pipeline pass over a session. The upload progress callback may
// fire from the HTTP transport's goroutine, hence the mutex.
type run struct {
	*sessionRunnerSrv
	mu sync.Mutex
	s  *model.Session
}

// RunSession drives a submitted session through upload, processing, IPFS
// storage and minting. It returns port.ErrSessionReset or
// port.ErrSessionNotFound when the session is reset or deleted under it.
func (srv *sessionRunnerSrv) RunSession(ctx context.Context, id uuid.UUID) error {
	sess, err := srv.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sess.State != model.StateCreating {
		logger.Infof(ctx, "session #%s is %s, nothing to run", id, sess.State)
		return nil
	}
	r := &run{sessionRunnerSrv: srv, s: sess}

	// a previous run died after the asset was created; the upload cannot be
	// resumed with a fresh upload URL
	if sess.AssetID != nil {
		_, err := r.dispatch(ctx, orchestrator.AssetFailed{Message: pipelineInterruptedMessage})
		return err
	}

	err = r.execute(ctx, orchestrator.CreateAsset{
		Name:    sess.AssetName,
		FileKey: deref(sess.FileKey),
		Size:    sess.FileSize,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		r.failDetached(ctx, pipelineTimedOutMessage)
	}
	return err
}

// dispatch applies ev and persists it under the generation the run started
// with.
func (r *run) dispatch(ctx context.Context, ev orchestrator.Event) ([]orchestrator.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apply(ctx, r.s, ev)
}

func (r *run) state() model.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s.State
}

// execute carries out one command and everything it leads to.
func (r *run) execute(ctx context.Context, cmd orchestrator.Command) error {
	switch c := cmd.(type) {
	case orchestrator.CreateAsset:
		if err := r.createAsset(ctx, c); err != nil {
			return err
		}
		if r.state().Terminal() {
			return nil
		}
		return r.poll(ctx)
	case orchestrator.UpdateAsset:
		return r.updateAsset(ctx, c)
	case orchestrator.SubmitMint:
		return r.mint(ctx, c)
	case orchestrator.DiscardFile:
		r.removeFile(ctx, c.Key)
		return nil
	case orchestrator.StopPolling:
		return nil
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

func (r *run) executeAll(ctx context.Context, cmds []orchestrator.Command) (stop bool, err error) {
	for _, c := range cmds {
		if _, ok := c.(orchestrator.StopPolling); ok {
			stop = true
		}
		if err := r.execute(ctx, c); err != nil {
			return stop, err
		}
	}
	return stop, nil
}

// createAsset requests an upload URL, then streams the staged file to it.
// Upstream failures fail the session; persistence failures abort the run.
func (r *run) createAsset(ctx context.Context, c orchestrator.CreateAsset) error {
	req, err := r.video.RequestUpload(ctx, c.Name)
	if err != nil {
		return r.assetFailed(ctx, err, "Could not start the upload.")
	}
	if _, err := r.dispatch(ctx, orchestrator.AssetCreated{AssetID: req.AssetID}); err != nil {
		return err
	}

	file, err := r.strg.GetFile(ctx, c.FileKey)
	if err != nil {
		return r.assetFailed(ctx, fmt.Errorf("staged file %q: %w", c.FileKey, err), "Could not read the selected file.")
	}
	defer func() { _ = file.Close() }()

	uploadCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	lastPercent := -1
	limiter := r.progressLimiter()
	onProgress := func(f float64) {
		if uploadCtx.Err() != nil {
			return
		}
		p := orchestrator.Percent(f)
		if p == lastPercent || (p < 100 && !limiter.Allow()) {
			return
		}
		lastPercent = p
		if _, err := r.dispatch(uploadCtx, orchestrator.UploadProgressed{Fraction: f}); err != nil {
			cancel(err)
		}
	}

	if err := r.video.Upload(uploadCtx, req.UploadURL, file, c.Size, onProgress); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// the progress callback aborted the upload: the session is gone or
		// could not be written
		if cause := context.Cause(uploadCtx); cause != nil {
			return cause
		}
		return r.assetFailed(ctx, err, "Upload was interrupted.")
	}
	if err := context.Cause(uploadCtx); err != nil {
		return err
	}

	r.removeFile(ctx, c.FileKey)
	return nil
}

func (r *run) progressLimiter() *rate.Limiter {
	if r.cfg.ProgressEvery <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(r.cfg.ProgressEvery), 1)
}

func (r *run) assetFailed(ctx context.Context, cause error, fallback string) error {
	logger.Warnf(ctx, "⚠️  asset pipeline failed: %v", cause)
	_, err := r.dispatch(ctx, orchestrator.AssetFailed{Message: failureDetail(cause, fallback)})
	return err
}

// failureDetail names what went wrong in words fit for the user. Raw
// upstream errors carry URLs and response bodies, so they are never shown.
func failureDetail(err error, fallback string) string {
	switch {
	case errors.Is(err, port.ErrVideoUnauthorized):
		return "The video platform rejected our credentials."
	case errors.Is(err, port.ErrVideoAssetNotFound):
		return "The video platform lost track of the asset."
	case errors.Is(err, port.ErrObjectNotFound):
		return "The selected file is no longer available."
	case errors.Is(err, context.DeadlineExceeded):
		return "The video platform did not answer in time."
	case errors.Is(err, port.ErrVideoUpstream):
		return "The video platform returned an error."
	default:
		return fallback
	}
}

// poll observes the asset until a StopPolling command. The first poll is
// immediate. Transient errors are retried on the next tick.
func (r *run) poll(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		stop, err := r.pollOnce(ctx)
		if err != nil || stop {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *run) pollOnce(ctx context.Context) (bool, error) {
	r.mu.Lock()
	assetID := deref(r.s.AssetID)
	r.mu.Unlock()

	asset, err := r.video.GetAsset(ctx, assetID)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		metrics.RecordPollError()
		logger.Warnf(ctx, "⚠️  polling asset %s failed, will retry: %v", assetID, err)
		return false, nil
	}

	cmds, err := r.dispatch(ctx, observation(asset))
	if err != nil {
		return false, err
	}
	stop, err := r.executeAll(ctx, cmds)
	if err != nil {
		return stop, err
	}
	return stop || r.state().Terminal(), nil
}

func observation(a port.Asset) orchestrator.AssetObserved {
	ev := orchestrator.AssetObserved{
		Status:       model.Phase(a.Status.Phase),
		Progress:     a.Status.Progress,
		ErrorMessage: a.Status.ErrorMessage,
	}
	if a.Storage != nil {
		ev.StorageStatus = model.Phase(a.Storage.Phase)
		if ipfs := a.Storage.IPFS; ipfs != nil {
			ev.IPFS = orchestrator.IPFSInfo{
				CID:         ipfs.CID,
				GatewayURL:  ipfs.GatewayURL,
				MetadataURL: ipfs.NFTMetadataURL,
			}
		}
	}
	return ev
}

func (r *run) updateAsset(ctx context.Context, c orchestrator.UpdateAsset) error {
	err := r.video.UpdateAsset(ctx, c.AssetID, port.UpdateAssetInput{Name: c.Name, Description: c.Description})
	metrics.RecordAssetUpdate(err == nil)
	if err == nil {
		return nil
	}

	logger.Warnf(ctx, "⚠️  requesting IPFS storage for asset %s failed: %v", c.AssetID, err)
	cmds, dErr := r.dispatch(ctx, orchestrator.AssetFailed{Message: failureDetail(err, "Storage request was refused.")})
	if dErr != nil {
		return dErr
	}
	_, err = r.executeAll(ctx, cmds)
	return err
}

// mint prepares then writes the mint call. Either step failing rejects the
// mint; the session keeps its IPFS data and can be reset.
func (r *run) mint(ctx context.Context, c orchestrator.SubmitMint) error {
	hash, err := r.prepareAndWrite(ctx, c)
	metrics.RecordMint(err == nil)
	if err != nil {
		logger.Warnf(ctx, "⚠️  mint to %s rejected: %v", c.Recipient, err)
		_, dErr := r.dispatch(ctx, orchestrator.MintRejected{Message: err.Error()})
		return dErr
	}

	logger.Infof(ctx, "✅  minted to %s in transaction %s", c.Recipient, hash)
	_, err = r.dispatch(ctx, orchestrator.MintSucceeded{TxHash: hash})
	return err
}

func (r *run) prepareAndWrite(ctx context.Context, c orchestrator.SubmitMint) (string, error) {
	prepared, err := r.minter.Prepare(ctx, c.Recipient, c.MetadataURL)
	if err != nil {
		return "", err
	}
	return r.minter.Write(ctx, prepared)
}

// failDetached records a failure after ctx expired.
func (r *run) failDetached(ctx context.Context, msg string) {
	if r.state().Terminal() {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := r.dispatch(dctx, orchestrator.AssetFailed{Message: msg}); err != nil {
		logger.Warnf(dctx, "⚠️  could not record timeout: %v", err)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
