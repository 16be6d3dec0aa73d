// Package fetcher executes download tasks with bounded concurrency.
//
// A fixed pool of workers receives tasks from a channel, fetches each URL,
// and writes the body to the destination bucket, either through the
// content store (hash-addressed tasks) or directly at the task's key.
//
// Failures are isolated: a task that fails is recorded in its Result and
// the remaining tasks keep running. [Fetcher.Run] acts as a barrier,
// returning only after every task has either succeeded or failed.
package fetcher
