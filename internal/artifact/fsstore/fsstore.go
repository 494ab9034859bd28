// Package fsstore provides a filesystem-backed artifact store.
package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
)

// Store is a filesystem-based implementation of artifact.Store.
// Artifacts are stored in a content-addressable layout:
//
//	.stagehand/
//	  artifacts/
//	    ab/
//	      cd1234....json (first 2 chars = subdir, rest = filename)
type Store struct {
	basePath string
	mu       sync.RWMutex
}

// New creates a filesystem artifact store rooted at basePath.
func New(basePath string) (*Store, error) {
	dir := filepath.Join(basePath, "artifacts")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	return &Store{basePath: basePath}, nil
}

// Exists checks cache presence for a fingerprint.
func (s *Store) Exists(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.artifactPath(fingerprint)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact: %w", err)
	}
	return true, nil
}

// Load retrieves the artifact for a fingerprint.
func (s *Store) Load(_ context.Context, fingerprint string) (*artifact.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.artifactPath(fingerprint)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is internal, constructed from sanitized fingerprint
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, artifact.NotFoundError{Fingerprint: fingerprint}
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var a artifact.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, artifact.CorruptError{Fingerprint: fingerprint, Err: err}
	}
	if a.Fingerprint != fingerprint {
		return nil, artifact.CorruptError{
			Fingerprint: fingerprint,
			Err:         fmt.Errorf("record fingerprint %q does not match key", a.Fingerprint),
		}
	}
	return &a, nil
}

// Persist stores a finalized artifact. Writes go through a temp file and
// rename so concurrent readers never observe a partial record. Persisting
// an existing, readable fingerprint is a no-op.
func (s *Store) Persist(ctx context.Context, a *artifact.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.artifactPath(a.Fingerprint)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		// Keep the existing record unless it is unreadable.
		if _, loadErr := s.loadLocked(a.Fingerprint); loadErr == nil {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	record := *a
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	data, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize artifact: %w", err)
	}
	return nil
}

// Prune removes artifacts created before the cutoff.
func (s *Store) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	root := filepath.Join(s.basePath, "artifacts")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("prune artifacts: %w", err)
	}
	return removed, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error { return nil }

func (s *Store) loadLocked(fingerprint string) (*artifact.Artifact, error) {
	path, err := s.artifactPath(fingerprint)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - sanitized internal path
	if err != nil {
		return nil, err
	}
	var a artifact.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, artifact.CorruptError{Fingerprint: fingerprint, Err: err}
	}
	return &a, nil
}

// artifactPath maps a fingerprint to its sharded on-disk location.
func (s *Store) artifactPath(fingerprint string) (string, error) {
	if len(fingerprint) < 3 {
		return "", fmt.Errorf("fingerprint too short: %q", fingerprint)
	}
	if strings.ContainsAny(fingerprint, "/\\.") {
		return "", fmt.Errorf("invalid fingerprint: %q", fingerprint)
	}
	return filepath.Join(s.basePath, "artifacts", fingerprint[:2], fingerprint[2:]+".json"), nil
}
