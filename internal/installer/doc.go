// Package installer orchestrates the install pipeline.
//
// An install run resolves the version manifest, fetches the asset index,
// filters libraries for the target platform, computes the set of content
// missing from the instance, and downloads it with bounded concurrency:
//
//	manifest -> asset index -> filter -> missing set -> bounded fetch
//
// Manifest and asset index failures abort the run. Individual download
// failures are isolated and reported in the returned Summary.
package installer
