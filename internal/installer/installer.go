package installer

import (
	"context"
	"fmt"
	"runtime"

	"gocloud.dev/blob"

	"github.com/T4rp/blazinglyassmc/internal/config"
	"github.com/T4rp/blazinglyassmc/internal/fetcher"
	bamchttp "github.com/T4rp/blazinglyassmc/internal/http"
	"github.com/T4rp/blazinglyassmc/internal/manifest"
	"github.com/T4rp/blazinglyassmc/internal/progress"
	"github.com/T4rp/blazinglyassmc/internal/store"
)

// clientKey is where the client jar lives under the instance root.
const clientKey = "client.jar"

// configKey is where the launcher profile lives under the instance root.
const configKey = "config.yaml"

// Options configures an install run.
type Options struct {
	// Platform is the target platform for library filtering
	// ("windows", "linux", "osx"). Default: the current platform.
	Platform string

	// Progress enables the terminal progress reporter.
	Progress bool
}

// Summary is the aggregate outcome of an install run. Per-object failures
// are collected here rather than aborting the run; only manifest and asset
// index failures are fatal.
type Summary struct {
	Version    string
	Assets     int // asset objects in the index
	Libraries  int // libraries applicable to the platform
	Queued     int // download tasks submitted
	Downloaded int
	Skipped    int // content already present
	Failed     int
	Failures   []fetcher.Result
}

// Err returns a single error describing the failed downloads, or nil if
// every task succeeded.
func (s *Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("installer: %d of %d downloads failed", s.Failed, s.Queued)
}

// Install resolves the configured version manifest and populates the
// instance bucket: client jar, platform libraries, and the content-addressed
// asset store. Content already present is never re-fetched or overwritten,
// so a second run over a populated instance downloads nothing.
//
// Manifest resolution and the asset index fetch are fatal on error; nothing
// downstream can proceed without those documents. Individual download
// failures are isolated into the Summary.
func Install(ctx context.Context, bucket *blob.Bucket, cfg config.Config, opts Options) (*Summary, error) {
	platform := opts.Platform
	if platform == "" {
		platform = CurrentPlatform()
	}

	client := bamchttp.NewClient(httpOptions(cfg))
	st := store.New(bucket, cfg.ResourcesURL)

	resolver := manifest.NewResolver(client, bucket, cfg.ManifestURL)
	m, err := resolver.Resolve(ctx, cfg.Version)
	if err != nil {
		return nil, err
	}

	ref := m.AssetIndex
	if ref.ID == "" {
		ref.ID = cfg.AssetIndexID
	}
	idx, err := manifest.FetchAssetIndex(ctx, client, bucket, ref)
	if err != nil {
		return nil, err
	}

	if err := writeDefaultConfig(ctx, bucket, cfg); err != nil {
		return nil, err
	}

	summary := &Summary{Version: cfg.Version, Assets: len(idx.Objects)}

	tasks, totalBytes, err := missingTasks(ctx, bucket, st, m, idx, platform, summary)
	if err != nil {
		return nil, err
	}
	summary.Queued = len(tasks)

	var reporter *progress.Reporter
	if opts.Progress && len(tasks) > 0 {
		reporter = progress.NewReporter(progress.Options{
			TotalObjects: len(tasks),
			TotalBytes:   totalBytes,
			Workers:      cfg.Workers,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	f := fetcher.New(client, bucket, st)
	results := f.Run(ctx, tasks, fetcher.Options{
		Workers:  cfg.Workers,
		Progress: reporter,
	})

	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, r)
		} else {
			summary.Downloaded++
		}
	}

	return summary, nil
}

// missingTasks computes the download set: every asset object absent from
// the store, every applicable library absent from the bucket, and the
// client jar if absent. At most one task is created per distinct hash.
func missingTasks(ctx context.Context, bucket *blob.Bucket, st *store.Store, m *manifest.VersionManifest, idx *manifest.AssetIndex, platform string, summary *Summary) ([]fetcher.Task, int64, error) {
	var tasks []fetcher.Task
	var totalBytes int64

	seen := make(map[string]bool, len(idx.Objects))
	for _, obj := range idx.Objects {
		if seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true

		ok, err := st.Has(ctx, obj.Hash)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			summary.Skipped++
			continue
		}

		tasks = append(tasks, fetcher.Task{
			URL:  st.URLFor(obj.Hash),
			Hash: obj.Hash,
			Size: obj.Size,
		})
		totalBytes += obj.Size
	}

	for lib := range manifest.Applicable(m.Libraries, platform) {
		summary.Libraries++

		artifact := lib.Downloads.Artifact
		key := "libraries/" + artifact.Path

		ok, err := bucket.Exists(ctx, key)
		if err != nil {
			return nil, 0, fmt.Errorf("installer: check %s: %w", key, err)
		}
		if ok {
			summary.Skipped++
			continue
		}

		tasks = append(tasks, fetcher.Task{
			URL:  artifact.URL,
			Key:  key,
			Size: artifact.Size,
		})
		totalBytes += artifact.Size
	}

	ok, err := bucket.Exists(ctx, clientKey)
	if err != nil {
		return nil, 0, fmt.Errorf("installer: check %s: %w", clientKey, err)
	}
	if ok {
		summary.Skipped++
	} else {
		client := m.Downloads.Client
		tasks = append(tasks, fetcher.Task{
			URL:  client.URL,
			Key:  clientKey,
			Size: client.Size,
		})
		totalBytes += client.Size
	}

	return tasks, totalBytes, nil
}

// writeDefaultConfig persists the launcher profile into the instance if
// one is not already there.
func writeDefaultConfig(ctx context.Context, bucket *blob.Bucket, cfg config.Config) error {
	ok, err := bucket.Exists(ctx, configKey)
	if err != nil {
		return fmt.Errorf("installer: check %s: %w", configKey, err)
	}
	if ok {
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("installer: marshal config: %w", err)
	}
	if err := bucket.WriteAll(ctx, configKey, data, nil); err != nil {
		return fmt.Errorf("installer: write %s: %w", configKey, err)
	}
	return nil
}

// httpOptions maps retry configuration onto HTTP client options.
func httpOptions(cfg config.Config) bamchttp.Options {
	opts := bamchttp.DefaultOptions()
	if cfg.Retry.Attempts != 0 {
		opts.RetryAttempts = cfg.Retry.Attempts
	}
	if cfg.Retry.Backoff != 0 {
		opts.RetryBackoff = cfg.Retry.Backoff
	}
	if cfg.Retry.MaxBackoff != 0 {
		opts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	}
	return opts
}

// CurrentPlatform returns the manifest platform name for the running OS.
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	default:
		return runtime.GOOS
	}
}
