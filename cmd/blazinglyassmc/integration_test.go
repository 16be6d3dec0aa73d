//go:build integration

package main

import (
	"context"
	"testing"
	"time"

	"github.com/T4rp/blazinglyassmc/internal/config"
	"github.com/T4rp/blazinglyassmc/internal/installer"
	"github.com/T4rp/blazinglyassmc/internal/store"
	"github.com/T4rp/blazinglyassmc/internal/testutils"
)

// TestInstallToMinio runs the full install pipeline against a real
// S3-compatible bucket. Requires Docker.
func TestInstallToMinio(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	env := testutils.StartMinioContainer(t, ctx, "bamc-instance")
	defer env.Close(ctx)

	bucket, err := env.OpenBucket(ctx)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	server := testutils.StartFixtureServer(t, testutils.Fixture{
		Version: "1.20.4",
		Assets: map[string]string{
			"minecraft/sounds/ambient.ogg": "asset A",
			"minecraft/lang/en_us.json":    "asset B",
		},
		Libraries: []testutils.LibraryFixture{
			{Name: "gson", Path: "com/google/gson/gson.jar", Content: "gson bytes"},
		},
		ClientJar: "client jar bytes",
	})

	cfg := config.Default()
	cfg.ManifestURL = server.ManifestURL()
	cfg.ResourcesURL = server.ResourcesURL()
	cfg.Retry = config.RetryConfig{
		Attempts:   2,
		Backoff:    100 * time.Millisecond,
		MaxBackoff: time.Second,
	}

	summary, err := installer.Install(ctx, bucket, cfg, installer.Options{Platform: "linux"})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if summary.Failed != 0 {
		t.Fatalf("expected no failures, got %v", summary.Failures)
	}

	// 2 assets + 1 library + client jar.
	if summary.Downloaded != 4 {
		t.Errorf("expected 4 downloads, got %d", summary.Downloaded)
	}

	for _, content := range []string{"asset A", "asset B"} {
		key := store.KeyFor(testutils.SHA1([]byte(content)))
		if ok, err := bucket.Exists(ctx, key); err != nil || !ok {
			t.Errorf("expected %s in bucket (err=%v)", key, err)
		}
	}

	// Second run against the populated bucket downloads nothing.
	summary, err = installer.Install(ctx, bucket, cfg, installer.Options{Platform: "linux"})
	if err != nil {
		t.Fatalf("Install (second): %v", err)
	}
	if summary.Queued != 0 {
		t.Errorf("expected no tasks on second run, got %d", summary.Queued)
	}
}
