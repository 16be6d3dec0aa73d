package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	bamchttp "github.com/T4rp/blazinglyassmc/internal/http"
)

const manifestDoc = `{
	"id": "1.20.4",
	"assetIndex": {"id": "12", "url": "https://example.invalid/12.json", "sha1": "da39a3ee", "totalSize": 1024},
	"downloads": {"client": {"url": "https://example.invalid/client.jar", "sha1": "356a192b", "size": 2048}},
	"libraries": [
		{"name": "org.lwjgl:lwjgl:3.3.2", "downloads": {"artifact": {"path": "org/lwjgl/lwjgl/3.3.2/lwjgl-3.3.2.jar", "url": "https://example.invalid/lwjgl.jar", "sha1": "aa", "size": 10}}}
	]
}`

func newTestBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func TestResolveFetchesAndCaches(t *testing.T) {
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(manifestDoc))
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := newTestBucket(t)
	resolver := NewResolver(bamchttp.NewClient(bamchttp.DefaultOptions()), bucket, server.URL)

	m, err := resolver.Resolve(ctx, "1.20.4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if m.ID != "1.20.4" {
		t.Errorf("expected id '1.20.4', got %q", m.ID)
	}
	if m.AssetIndex.ID != "12" {
		t.Errorf("expected asset index id '12', got %q", m.AssetIndex.ID)
	}
	if m.Downloads.Client.URL != "https://example.invalid/client.jar" {
		t.Errorf("unexpected client url %q", m.Downloads.Client.URL)
	}
	if len(m.Libraries) != 1 {
		t.Fatalf("expected 1 library, got %d", len(m.Libraries))
	}

	// The raw document must be persisted verbatim.
	cached, err := bucket.ReadAll(ctx, "1.20.4.json")
	if err != nil {
		t.Fatalf("read cached manifest: %v", err)
	}
	if string(cached) != manifestDoc {
		t.Error("cached manifest differs from fetched document")
	}

	// A second resolve must not touch the network.
	if _, err := resolver.Resolve(ctx, "1.20.4"); err != nil {
		t.Fatalf("Resolve (cached): %v", err)
	}
	if got := fetches.Load(); got != 1 {
		t.Errorf("expected 1 network fetch, got %d", got)
	}
}

func TestResolveCachedCopyTrusted(t *testing.T) {
	// No server at all: a cached document must satisfy the resolve.
	ctx := context.Background()
	bucket := newTestBucket(t)
	if err := bucket.WriteAll(ctx, "1.20.4.json", []byte(manifestDoc), nil); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	resolver := NewResolver(bamchttp.NewClient(bamchttp.DefaultOptions()), bucket, "http://127.0.0.1:0/unreachable")
	m, err := resolver.Resolve(ctx, "1.20.4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.ID != "1.20.4" {
		t.Errorf("expected id '1.20.4', got %q", m.ID)
	}
}

func TestResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver(bamchttp.NewClient(bamchttp.DefaultOptions()), newTestBucket(t), server.URL)
	if _, err := resolver.Resolve(context.Background(), "1.20.4"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestResolveMalformedDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": `))
	}))
	defer server.Close()

	resolver := NewResolver(bamchttp.NewClient(bamchttp.DefaultOptions()), newTestBucket(t), server.URL)
	if _, err := resolver.Resolve(context.Background(), "1.20.4"); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestFetchAssetIndex(t *testing.T) {
	indexDoc := `{"objects": {"minecraft/sounds/ambient.ogg": {"hash": "ab012345", "size": 100}}}`

	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Write([]byte(indexDoc))
	}))
	defer server.Close()

	ctx := context.Background()
	bucket := newTestBucket(t)
	client := bamchttp.NewClient(bamchttp.DefaultOptions())

	ref := IndexRef{ID: "12", URL: server.URL}
	idx, err := FetchAssetIndex(ctx, client, bucket, ref)
	if err != nil {
		t.Fatalf("FetchAssetIndex: %v", err)
	}

	obj, ok := idx.Objects["minecraft/sounds/ambient.ogg"]
	if !ok {
		t.Fatal("expected object 'minecraft/sounds/ambient.ogg'")
	}
	if obj.Hash != "ab012345" || obj.Size != 100 {
		t.Errorf("unexpected object %+v", obj)
	}

	raw, err := bucket.ReadAll(ctx, "assets/indexes/12.json")
	if err != nil {
		t.Fatalf("read persisted index: %v", err)
	}
	if string(raw) != indexDoc {
		t.Error("persisted index differs from fetched document")
	}

	// No cache short-circuit: every call fetches fresh.
	if _, err := FetchAssetIndex(ctx, client, bucket, ref); err != nil {
		t.Fatalf("FetchAssetIndex (second): %v", err)
	}
	if got := fetches.Load(); got != 2 {
		t.Errorf("expected 2 network fetches, got %d", got)
	}
}
