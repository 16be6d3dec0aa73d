// Package store implements the content-addressed object store backing the
// install pipeline.
//
// Objects are keyed purely by content hash at
// assets/objects/<hash[0:2]>/<hash>, so the store answers "do I already
// have this content?" with an existence check and no hashing. Objects are
// created once and never mutated or deleted by the pipeline.
//
// The store is backed by gocloud.dev/blob: a fileblob bucket rooted at the
// instance directory in normal operation, memblob in tests, or any other
// registered driver for remote mirrors.
//
// [Store.Verify] re-hashes stored content against its key for an explicit
// integrity check; everything else trusts existence.
package store
