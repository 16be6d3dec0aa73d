package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gocloud.dev/blob"
)

// objectsPrefix is where content-addressed objects live under the
// instance root.
const objectsPrefix = "assets/objects/"

// ErrInvalidHash is returned for hashes too short to derive a bucket key.
var ErrInvalidHash = errors.New("store: hash must be at least 2 characters")

// Store is a content-addressed object store backed by a blob bucket.
// Every object lives at a key derived solely from its content hash, so
// existence answers deduplication: an object that exists never needs to
// be fetched again.
type Store struct {
	bucket        *blob.Bucket
	resourcesBase string
}

// New creates a store over bucket. resourcesBase is the URL prefix objects
// are fetched from, without a trailing slash.
func New(bucket *blob.Bucket, resourcesBase string) *Store {
	return &Store{
		bucket:        bucket,
		resourcesBase: resourcesBase,
	}
}

// KeyFor returns the bucket key for a content hash:
// assets/objects/<hash[0:2]>/<hash>. Pure function of the hash; the
// two-character prefix bounds directory fan-out.
func KeyFor(hash string) string {
	return objectsPrefix + hash[:2] + "/" + hash
}

// URLFor returns the download URL for a content hash.
func (s *Store) URLFor(hash string) string {
	return s.resourcesBase + "/" + hash[:2] + "/" + hash
}

// Has reports whether the object for hash is present. Presence is treated
// as proof of validity; use Verify for an explicit content re-check.
func (s *Store) Has(ctx context.Context, hash string) (bool, error) {
	if len(hash) < 2 {
		return false, ErrInvalidHash
	}
	ok, err := s.bucket.Exists(ctx, KeyFor(hash))
	if err != nil {
		return false, fmt.Errorf("store: check %s: %w", hash, err)
	}
	return ok, nil
}

// Put writes the object for hash from r. Existing objects are never
// overwritten: if the key is already present the content is discarded and
// Put returns nil. The blob writer commits on Close, so a failed write
// never publishes a partial object.
func (s *Store) Put(ctx context.Context, hash string, r io.Reader) error {
	if len(hash) < 2 {
		return ErrInvalidHash
	}

	key := KeyFor(hash)
	exists, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("store: check %s: %w", hash, err)
	}
	if exists {
		return nil
	}

	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("store: create writer for %s: %w", hash, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("store: write %s: %w", hash, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("store: commit %s: %w", hash, err)
	}

	return nil
}
