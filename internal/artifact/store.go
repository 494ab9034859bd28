package artifact

import (
	"context"
	"errors"
	"time"
)

// Store persists finalized artifacts keyed by fingerprint.
//
// Persist is write-once: persisting a fingerprint that already exists is a
// no-op. Combined with fingerprints being pure functions of their inputs,
// this makes redundant concurrent computation harmless (last-write-wins
// would produce identical bytes anyway).
type Store interface {
	// Exists checks cache presence for a fingerprint.
	Exists(ctx context.Context, fingerprint string) (bool, error)

	// Load retrieves the artifact for a fingerprint. Returns NotFoundError
	// if absent and CorruptError if the persisted record cannot be decoded.
	Load(ctx context.Context, fingerprint string) (*Artifact, error)

	// Persist stores a finalized artifact. No-op if the fingerprint is
	// already present.
	Persist(ctx context.Context, a *Artifact) error

	// Close releases any resources held by the store.
	Close() error
}

// Pruner is implemented by stores that can discard old artifacts.
type Pruner interface {
	// Prune removes artifacts created before the cutoff and reports how
	// many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// NotFoundError is returned when no artifact exists for a fingerprint.
type NotFoundError struct {
	Fingerprint string
}

func (e NotFoundError) Error() string {
	return "artifact not found: " + e.Fingerprint
}

// CorruptError is returned when a persisted artifact cannot be decoded.
// The cache gate treats this as a miss and regenerates.
type CorruptError struct {
	Fingerprint string
	Err         error
}

func (e CorruptError) Error() string {
	return "artifact corrupt: " + e.Fingerprint + ": " + e.Err.Error()
}

func (e CorruptError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsCorrupt reports whether err is a CorruptError.
func IsCorrupt(err error) bool {
	var ce CorruptError
	return errors.As(err, &ce)
}
