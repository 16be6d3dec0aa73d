// Package testutils provides shared test infrastructure: an in-memory game
// distribution served over HTTP, and bucket helpers.
package testutils

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/T4rp/blazinglyassmc/internal/manifest"
)

// LibraryFixture defines a library entry in a test distribution.
type LibraryFixture struct {
	Name     string
	Path     string // relative path under libraries/
	Content  string
	Platform string // non-empty adds an allow rule for this platform only
}

// Fixture defines an in-memory game distribution.
type Fixture struct {
	Version   string
	IndexID   string
	Assets    map[string]string // logical asset name -> content
	Libraries []LibraryFixture
	ClientJar string
}

// SHA1 returns the hex SHA-1 of data.
func SHA1(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// NewMemBucket opens an in-memory bucket, closed on test cleanup.
func NewMemBucket(t *testing.T) *blob.Bucket {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })
	return bucket
}

// FixtureServer serves a Fixture over HTTP: the version manifest, the asset
// index, content-addressed objects, library archives, and the client jar.
// It records per-path hit counts and can be told to fail specific paths.
type FixtureServer struct {
	*httptest.Server

	fixture Fixture

	mu   sync.Mutex
	hits map[string]int
	fail map[string]int // path -> status code
}

// StartFixtureServer builds and serves the distribution described by fx.
func StartFixtureServer(t *testing.T, fx Fixture) *FixtureServer {
	t.Helper()

	if fx.Version == "" {
		fx.Version = "1.20.4"
	}
	if fx.IndexID == "" {
		fx.IndexID = "12"
	}

	fs := &FixtureServer{
		fixture: fx,
		hits:    make(map[string]int),
		fail:    make(map[string]int),
	}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.Close)
	return fs
}

// ManifestURL returns the URL of the version manifest document.
func (s *FixtureServer) ManifestURL() string {
	return s.URL + "/manifest.json"
}

// ResourcesURL returns the base URL for content-addressed objects.
func (s *FixtureServer) ResourcesURL() string {
	return s.URL + "/objects"
}

// FailWith makes the server answer path with the given status code.
func (s *FixtureServer) FailWith(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[path] = status
}

// Hits returns how many requests path has received.
func (s *FixtureServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the total number of requests served.
func (s *FixtureServer) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// ObjectHits returns the number of requests for content-addressed objects.
func (s *FixtureServer) ObjectHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for path, n := range s.hits {
		if len(path) > 9 && path[:9] == "/objects/" {
			total += n
		}
	}
	return total
}

func (s *FixtureServer) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	s.mu.Lock()
	s.hits[path]++
	status := s.fail[path]
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	switch {
	case path == "/manifest.json":
		w.Write(s.manifestDoc())
	case path == "/index.json":
		w.Write(s.indexDoc())
	case path == "/client.jar":
		w.Write([]byte(s.fixture.ClientJar))
	case len(path) > 9 && path[:9] == "/objects/":
		s.serveObject(w, path[9:])
	case len(path) > 11 && path[:11] == "/libraries/":
		s.serveLibrary(w, path[11:])
	default:
		http.NotFound(w, r)
	}
}

func (s *FixtureServer) serveObject(w http.ResponseWriter, rest string) {
	// rest is "<prefix>/<hash>"
	for _, content := range s.fixture.Assets {
		hash := SHA1([]byte(content))
		if rest == hash[:2]+"/"+hash {
			w.Write([]byte(content))
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *FixtureServer) serveLibrary(w http.ResponseWriter, rest string) {
	for _, lib := range s.fixture.Libraries {
		if rest == lib.Path {
			w.Write([]byte(lib.Content))
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

// manifestDoc renders the version manifest JSON for the fixture.
func (s *FixtureServer) manifestDoc() []byte {
	m := manifest.VersionManifest{ID: s.fixture.Version}
	m.AssetIndex = manifest.IndexRef{
		ID:  s.fixture.IndexID,
		URL: s.URL + "/index.json",
	}
	m.Downloads.Client = manifest.Artifact{
		URL:  s.URL + "/client.jar",
		SHA1: SHA1([]byte(s.fixture.ClientJar)),
		Size: int64(len(s.fixture.ClientJar)),
	}

	for _, lib := range s.fixture.Libraries {
		entry := manifest.Library{Name: lib.Name}
		entry.Downloads.Artifact = manifest.Artifact{
			Path: lib.Path,
			URL:  s.URL + "/libraries/" + lib.Path,
			SHA1: SHA1([]byte(lib.Content)),
			Size: int64(len(lib.Content)),
		}
		if lib.Platform != "" {
			rule := manifest.Rule{Action: "allow"}
			rule.OS.Name = lib.Platform
			entry.Rules = []manifest.Rule{rule}
		}
		m.Libraries = append(m.Libraries, entry)
	}

	data, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return data
}

// indexDoc renders the asset index JSON for the fixture.
func (s *FixtureServer) indexDoc() []byte {
	idx := manifest.AssetIndex{Objects: make(map[string]manifest.Object)}
	for name, content := range s.fixture.Assets {
		idx.Objects[name] = manifest.Object{
			Hash: SHA1([]byte(content)),
			Size: int64(len(content)),
		}
	}

	data, err := json.Marshal(idx)
	if err != nil {
		panic(err)
	}
	return data
}
