package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// TotalObjects is the number of objects queued for download.
	TotalObjects int

	// TotalBytes is the total size to download, when known.
	TotalBytes int64

	// Workers is the download concurrency limit (for display).
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress for a download run.
type Reporter struct {
	opts Options

	mu               sync.Mutex
	completedBytes   atomic.Int64
	completedObjects atomic.Int32
	failedObjects    atomic.Int32
	inProgress       atomic.Int32
	startTime        time.Time
	stopCh           chan struct{}
	doneCh           chan struct{}
	stopped          bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()

	fmt.Fprintf(r.opts.Output, "[bamc] Downloading %d objects (%s) with %d workers\n",
		r.opts.TotalObjects,
		formatBytes(r.opts.TotalBytes),
		r.opts.Workers,
	)

	go r.updateLoop()
}

// Stop stops the progress reporter and prints the final status.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// ObjectStarted marks an object download as in progress.
func (r *Reporter) ObjectStarted() {
	r.inProgress.Add(1)
}

// ObjectCompleted marks an object download as completed.
func (r *Reporter) ObjectCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedObjects.Add(1)
	r.inProgress.Add(-1)
}

// ObjectFailed marks an object download as failed.
func (r *Reporter) ObjectFailed() {
	r.failedObjects.Add(1)
	r.inProgress.Add(-1)
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress on one line.
func (r *Reporter) printProgress() {
	completed := int(r.completedObjects.Load())
	failed := int(r.failedObjects.Load())
	inProgress := int(r.inProgress.Load())

	pending := r.opts.TotalObjects - completed - failed - inProgress
	if pending < 0 {
		pending = 0
	}

	fmt.Fprintf(r.opts.Output, "\r[bamc] %d/%d objects | %s | %d in flight | %d pending    ",
		completed,
		r.opts.TotalObjects,
		formatBytes(r.completedBytes.Load()),
		inProgress,
		pending,
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	completed := int(r.completedObjects.Load())
	failed := int(r.failedObjects.Load())
	duration := time.Since(r.startTime)

	fmt.Fprintf(r.opts.Output, "\r[bamc] %d/%d objects downloaded (%s) in %s",
		completed,
		r.opts.TotalObjects,
		formatBytes(r.completedBytes.Load()),
		formatDuration(duration),
	)
	if failed > 0 {
		fmt.Fprintf(r.opts.Output, " | %d failed", failed)
	}
	fmt.Fprintln(r.opts.Output)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}
