package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	bamchttp "github.com/T4rp/blazinglyassmc/internal/http"
)

// Resolver fetches version manifests, caching the raw document in a bucket
// keyed by version ID. A cached document, once present, is trusted forever:
// version manifests are immutable and there is no staleness check.
type Resolver struct {
	client *bamchttp.Client
	bucket *blob.Bucket
	url    string
}

// NewResolver creates a resolver that fetches from url and caches documents
// in bucket under "<versionID>.json".
func NewResolver(client *bamchttp.Client, bucket *blob.Bucket, url string) *Resolver {
	return &Resolver{
		client: client,
		bucket: bucket,
		url:    url,
	}
}

// Resolve returns the version manifest for versionID, from the local cache
// when present, otherwise from the network. Freshly fetched documents are
// persisted verbatim before the parsed manifest is returned.
func (r *Resolver) Resolve(ctx context.Context, versionID string) (*VersionManifest, error) {
	key := versionID + ".json"

	data, err := r.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) != gcerrors.NotFound {
			return nil, fmt.Errorf("manifest: read cache: %w", err)
		}

		body, err := r.client.Get(ctx, r.url)
		if err != nil {
			return nil, fmt.Errorf("manifest: fetch %s: %w", r.url, err)
		}
		data, err = io.ReadAll(body)
		body.Close()
		if err != nil {
			return nil, fmt.Errorf("manifest: read response: %w", err)
		}

		if err := r.bucket.WriteAll(ctx, key, data, nil); err != nil {
			return nil, fmt.Errorf("manifest: cache %s: %w", key, err)
		}
	}

	var m VersionManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}

	return &m, nil
}

// FetchAssetIndex fetches the asset index referenced by a manifest and
// persists the raw document at "assets/indexes/<id>.json" in bucket.
// Unlike Resolve there is no cache short-circuit: the index is always
// fetched fresh.
func FetchAssetIndex(ctx context.Context, client *bamchttp.Client, bucket *blob.Bucket, ref IndexRef) (*AssetIndex, error) {
	body, err := client.Get(ctx, ref.URL)
	if err != nil {
		return nil, fmt.Errorf("manifest: fetch asset index %s: %w", ref.URL, err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return nil, fmt.Errorf("manifest: read asset index: %w", err)
	}

	var idx AssetIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("manifest: parse asset index: %w", err)
	}

	key := "assets/indexes/" + ref.ID + ".json"
	if err := bucket.WriteAll(ctx, key, data, nil); err != nil {
		return nil, fmt.Errorf("manifest: persist asset index %s: %w", key, err)
	}

	return &idx, nil
}
