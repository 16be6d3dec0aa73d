// Package manifest defines the version manifest and asset index documents
// and the logic for resolving them.
//
// A version manifest describes one game release: the client jar, a
// reference to the asset index, and the library dependencies with their
// platform rules. The asset index maps logical asset names to content
// hashes; only the hashes are used as storage keys.
//
// # Resolution
//
// [Resolver.Resolve] loads a manifest from a local cache when present and
// fetches it otherwise, persisting the raw document for future runs.
// Manifests are pinned per version and never re-validated.
//
// [FetchAssetIndex] always fetches fresh and persists the raw index under
// assets/indexes/.
//
// # Platform filtering
//
// [Applicable] selects the library entries that apply to a target platform
// by inspecting each entry's first rule.
package manifest
