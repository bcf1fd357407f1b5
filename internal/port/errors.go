package port

import "errors"

var (
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionReset means the session moved to a new generation while the
	// caller was still working on the previous one.
	ErrSessionReset = errors.New("session: reset while in flight")
	// ErrSessionConflict means another writer updated the session since the
	// caller loaded it.
	ErrSessionConflict = errors.New("session: concurrent update")

	ErrVideoUnauthorized  = errors.New("video: unauthorized")
	ErrVideoAssetNotFound = errors.New("video: asset not found")
	ErrVideoUpstream      = errors.New("video: upstream error")

	ErrObjectNotFound = errors.New("storage: object not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrUnauthorized   = errors.New("storage: unauthorized")
	ErrInternal       = errors.New("storage: internal error")
)
