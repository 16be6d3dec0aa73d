// Package progress reports download progress to the terminal.
//
// A Reporter tracks object and byte counts with atomic counters and
// periodically redraws a single status line. The fetcher calls
// ObjectStarted, ObjectCompleted, and ObjectFailed from its workers;
// Start and Stop bracket the run.
package progress
