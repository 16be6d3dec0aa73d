package fetcher

import (
	"context"
	"fmt"
	"io"
	"sync"

	"gocloud.dev/blob"

	bamchttp "github.com/T4rp/blazinglyassmc/internal/http"
	"github.com/T4rp/blazinglyassmc/internal/progress"
	"github.com/T4rp/blazinglyassmc/internal/store"
)

// DefaultWorkers is the download concurrency limit used when Options.Workers
// is unset.
const DefaultWorkers = 5

// Task is a single download: fetch URL, write the body at Key.
// When Hash is set the write goes through the content store, which
// deduplicates against existing objects; otherwise the body is written
// directly to the bucket key.
type Task struct {
	URL  string
	Key  string
	Hash string
	Size int64
}

// Result is the terminal state of one task. Err is nil on success.
type Result struct {
	Task Task
	Err  error
}

// Options configures a fetch run.
type Options struct {
	// Workers is the maximum number of downloads in flight.
	// Default: DefaultWorkers
	Workers int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Fetcher executes download tasks against a bucket with bounded concurrency.
type Fetcher struct {
	client *bamchttp.Client
	bucket *blob.Bucket
	store  *store.Store
}

// New creates a fetcher writing to bucket. Content-addressed tasks are
// routed through st.
func New(client *bamchttp.Client, bucket *blob.Bucket, st *store.Store) *Fetcher {
	return &Fetcher{
		client: client,
		bucket: bucket,
		store:  st,
	}
}

// Run executes all tasks with at most opts.Workers downloads in flight and
// returns one result per task, order unspecified. A failed task never
// cancels or blocks its siblings; Run returns only once every task has
// reached a terminal state.
func (f *Fetcher) Run(ctx context.Context, tasks []Task, opts Options) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	jobs := make(chan Task)

	var mu sync.Mutex
	results := make([]Result, 0, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				err := f.fetch(ctx, task, opts.Progress)

				mu.Lock()
				results = append(results, Result{Task: task, Err: err})
				mu.Unlock()
			}
		}()
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wg.Wait()

	return results
}

// fetch downloads a single task to its destination.
func (f *Fetcher) fetch(ctx context.Context, task Task, reporter *progress.Reporter) error {
	if reporter != nil {
		reporter.ObjectStarted()
	}

	err := f.fetchBody(ctx, task)
	if reporter != nil {
		if err != nil {
			reporter.ObjectFailed()
		} else {
			reporter.ObjectCompleted(task.Size)
		}
	}
	return err
}

func (f *Fetcher) fetchBody(ctx context.Context, task Task) error {
	body, err := f.client.Get(ctx, task.URL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	defer body.Close()

	if task.Hash != "" {
		if err := f.store.Put(ctx, task.Hash, body); err != nil {
			return fmt.Errorf("store %s: %w", task.Hash, err)
		}
		return nil
	}

	// Direct write: the blob writer commits on Close, so a failed copy
	// never publishes a partial file.
	w, err := f.bucket.NewWriter(ctx, task.Key, nil)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", task.Key, err)
	}
	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", task.Key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", task.Key, err)
	}

	return nil
}
