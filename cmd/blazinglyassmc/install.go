package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/T4rp/blazinglyassmc/internal/config"
	"github.com/T4rp/blazinglyassmc/internal/installer"
)

func runInstall(args []string) int {
	fs := flag.NewFlagSet("install", flag.ExitOnError)

	dir := fs.String("dir", "instance", "Instance directory to install into")
	bucketURL := fs.String("bucket", "", "Bucket URL for the instance instead of a local directory")
	configPath := fs.String("config", "", "Path to a YAML config file")
	username := fs.String("username", "", "Player username")
	version := fs.String("version", "", "Game version to install")
	manifestURL := fs.String("manifest-url", "", "Version manifest URL")
	platform := fs.String("platform", "", "Target platform: windows, linux, osx (default: current)")
	workers := fs.Int("workers", 0, "Number of parallel downloads")
	quiet := fs.Bool("quiet", false, "Disable the progress display")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blazinglyassmc install [options]

Resolve the configured version manifest, fetch the asset index, and download
the client jar, platform libraries, and missing assets into the instance.
Content already present is never downloaded again, so re-running after a
partial install only fetches what is missing.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, code := loadConfig(*configPath)
	if code != ExitSuccess {
		return code
	}
	cfg = cfg.Merge(config.Config{
		Username:    *username,
		Version:     *version,
		ManifestURL: *manifestURL,
		Workers:     *workers,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[bamc] Received interrupt, shutting down...")
		cancel()
	}()

	bucket, err := openInstanceBucket(ctx, *bucketURL, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening instance: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	summary, err := installer.Install(ctx, bucket, cfg, installer.Options{
		Platform: *platform,
		Progress: !*quiet,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ExitGeneralError
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitManifestError
	}

	fmt.Fprintf(os.Stderr, "[bamc] Version %s: %d downloaded, %d already present\n",
		summary.Version, summary.Downloaded, summary.Skipped)

	if summary.Failed > 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", summary.Err())
		for _, f := range summary.Failures {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Task.URL, f.Err)
		}
		fmt.Fprintln(os.Stderr, "[bamc] Run install again to retry the failed downloads")
		return ExitDownloadFailed
	}

	return ExitSuccess
}

// loadConfig builds the effective configuration: file, then environment.
func loadConfig(path string) (config.Config, int) {
	cfg := config.Default()

	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return config.Config{}, ExitConfigError
		}
		cfg = loaded
	}

	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return config.Config{}, ExitConfigError
	}

	return cfg, ExitSuccess
}

// openInstanceBucket opens the instance either as a local directory or as
// any bucket URL with a registered driver (s3://, gs://, ...).
func openInstanceBucket(ctx context.Context, bucketURL, dir string) (*blob.Bucket, error) {
	if bucketURL != "" {
		return blob.OpenBucket(ctx, bucketURL)
	}
	// MetadataDontWrite keeps fileblob from dropping .attrs sidecar files
	// next to jars and assets; the game reads this tree directly.
	return fileblob.OpenBucket(dir, &fileblob.Options{
		CreateDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
}
