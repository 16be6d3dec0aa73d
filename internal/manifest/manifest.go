package manifest

// VersionManifest is the top-level document describing a game release:
// where to fetch the client jar, the asset index, and the library
// dependencies. Immutable once fetched.
type VersionManifest struct {
	ID         string    `json:"id"`
	AssetIndex IndexRef  `json:"assetIndex"`
	Downloads  Downloads `json:"downloads"`
	Libraries  []Library `json:"libraries"`
}

// IndexRef points at the asset index document for a version.
type IndexRef struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	SHA1      string `json:"sha1"`
	TotalSize int64  `json:"totalSize"`
}

// Downloads holds the version's primary artifacts.
type Downloads struct {
	Client Artifact `json:"client"`
}

// Artifact describes a downloadable file.
type Artifact struct {
	// Path is the artifact's relative path under the libraries directory.
	// Empty for the client jar.
	Path string `json:"path,omitempty"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
}

// Library is a single dependency entry in the manifest.
type Library struct {
	Name      string `json:"name"`
	Downloads struct {
		Artifact Artifact `json:"artifact"`
	} `json:"downloads"`
	Rules []Rule `json:"rules,omitempty"`
}

// Rule is a platform condition attached to a library entry.
type Rule struct {
	Action string `json:"action"`
	OS     struct {
		Name string `json:"name"`
	} `json:"os,omitempty"`
}

// AssetIndex maps logical asset names to content-addressed objects.
// Names are display identifiers only and are never used as storage keys;
// storage is keyed by Object.Hash.
type AssetIndex struct {
	Objects map[string]Object `json:"objects"`
}

// Object is a single entry in an asset index.
type Object struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}
