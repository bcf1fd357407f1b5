package session

import (
	"context"
	"fmt"
	"io"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/validation"
)

type fileSelectorSrv struct {
	store
	gen port.UUIDGen
	cfg Config
}

func NewFileSelector(repo port.SessionRepository, cache port.Cache, strg port.Storage, gen port.UUIDGen, cfg Config) port.FileSelector {
	return &fileSelectorSrv{store: store{repo: repo, cache: cache, strg: strg}, gen: gen, cfg: cfg.withDefaults()}
}

// SelectFile stages the file under a fresh key, then records it on the
// session. A previously selected file is discarded once the new one is in.
func (s *fileSelectorSrv) SelectFile(ctx context.Context, in port.SelectFileInput) (*port.SessionView, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	sess, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if sess.State != model.StateIdle && sess.State != model.StateFileSelected {
		return nil, fmt.Errorf("%w: cannot select a file in state %s", orchestrator.ErrInvalidTransition, sess.State)
	}

	key := fmt.Sprintf("%s/%s.mp4", sess.ID, s.gen())
	counter := &countingReader{r: io.LimitReader(in.Reader, s.cfg.MaxUploadBytes+1)}
	opts := map[string]string{"Content-Type": in.ContentType, "File-Name": in.FileName}
	if err := s.strg.SaveFile(ctx, key, counter, -1, opts); err != nil {
		return nil, fmt.Errorf("could not stage file %q: %w", in.FileName, err)
	}

	switch {
	case counter.n == 0:
		s.removeFile(ctx, key)
		return nil, ErrEmptyFile
	case counter.n > s.cfg.MaxUploadBytes:
		s.removeFile(ctx, key)
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}

	cmds, err := s.apply(ctx, sess, orchestrator.FileSelected{
		Key:         key,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        counter.n,
	})
	if err != nil {
		s.removeFile(ctx, key)
		return nil, err
	}
	s.discard(ctx, cmds)

	logger.Infof(ctx, "✅  staged %q (%d bytes) for session #%s", in.FileName, counter.n, sess.ID)
	return buildView(sess, s.cfg), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
