package fetcher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	bamchttp "github.com/T4rp/blazinglyassmc/internal/http"
	"github.com/T4rp/blazinglyassmc/internal/store"
)

func newTestFetcher(t *testing.T) (*Fetcher, *blob.Bucket) {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })

	st := store.New(bucket, "https://resources.example.invalid")
	return New(bamchttp.NewClient(bamchttp.DefaultOptions()), bucket, st), bucket
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func TestRunDirectWrites(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "content of %s", r.URL.Path)
	}))
	defer server.Close()

	f, bucket := newTestFetcher(t)
	ctx := context.Background()

	tasks := []Task{
		{URL: server.URL + "/a.jar", Key: "libraries/a.jar"},
		{URL: server.URL + "/b.jar", Key: "libraries/b.jar"},
		{URL: server.URL + "/client.jar", Key: "client.jar"},
	}

	results := f.Run(ctx, tasks, Options{Workers: 2})
	if len(results) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("task %s failed: %v", r.Task.Key, r.Err)
		}
	}

	data, err := bucket.ReadAll(ctx, "libraries/b.jar")
	if err != nil {
		t.Fatalf("read libraries/b.jar: %v", err)
	}
	if string(data) != "content of /b.jar" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestRunHashAddressedWrites(t *testing.T) {
	content := []byte("asset bytes")
	hash := sha1Hex(content)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	f, bucket := newTestFetcher(t)
	ctx := context.Background()

	results := f.Run(ctx, []Task{{URL: server.URL, Hash: hash, Size: int64(len(content))}}, Options{})
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results %+v", results)
	}

	data, err := bucket.ReadAll(ctx, store.KeyFor(hash))
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("stored %q, want %q", data, content)
	}
}

func TestRunConcurrencyBound(t *testing.T) {
	const limit = 3

	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)

		// Track the high-water mark of simultaneous requests.
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		w.Write([]byte("x"))
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)

	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = Task{URL: server.URL, Key: fmt.Sprintf("libraries/%d.jar", i)}
	}

	results := f.Run(context.Background(), tasks, Options{Workers: limit})
	if len(results) != len(tasks) {
		t.Fatalf("expected %d results, got %d", len(tasks), len(results))
	}

	if p := peak.Load(); p > limit {
		t.Errorf("observed %d simultaneous downloads, limit %d", p, limit)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/bad") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f, bucket := newTestFetcher(t)
	ctx := context.Background()

	tasks := []Task{
		{URL: server.URL + "/good1", Key: "libraries/good1"},
		{URL: server.URL + "/bad", Key: "libraries/bad"},
		{URL: server.URL + "/good2", Key: "libraries/good2"},
	}

	results := f.Run(ctx, tasks, Options{Workers: 2})

	var failed, succeeded int
	for _, r := range results {
		if r.Err != nil {
			failed++
			if r.Task.Key != "libraries/bad" {
				t.Errorf("unexpected failure for %s: %v", r.Task.Key, r.Err)
			}
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Errorf("expected 1 failure and 2 successes, got %d/%d", failed, succeeded)
	}

	for _, key := range []string{"libraries/good1", "libraries/good2"} {
		if ok, err := bucket.Exists(ctx, key); err != nil || !ok {
			t.Errorf("expected %s present (err=%v)", key, err)
		}
	}
	if ok, _ := bucket.Exists(ctx, "libraries/bad"); ok {
		t.Error("failed task must not publish a file")
	}
}

func TestRunEmptyTaskSet(t *testing.T) {
	f, _ := newTestFetcher(t)
	results := f.Run(context.Background(), nil, Options{})
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRunDefaultWorkers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)

	// Workers unset falls back to the default limit; the run must still
	// terminate with one result per task.
	tasks := make([]Task, 12)
	for i := range tasks {
		tasks[i] = Task{URL: server.URL, Key: fmt.Sprintf("libraries/%d", i)}
	}

	results := f.Run(context.Background(), tasks, Options{})
	if len(results) != len(tasks) {
		t.Errorf("expected %d results, got %d", len(tasks), len(results))
	}
}
