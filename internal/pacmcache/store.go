// Package pacmcache implements the content-addressed tarball cache and
// fetcher described in §4.3: a cache keyed by (name, version) under
// {HOME}/.pacm-cache, single-flighted downloads, and atomic publish of a
// verified tarball before extraction.
package pacmcache

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/karrick/godirwalk"
	"golang.org/x/sync/singleflight"

	"github.com/pacmjs/pacm/internal/httpretry"
	"github.com/pacmjs/pacm/internal/pacmerr"
)

// Store owns the on-disk tarball cache rooted at a directory of the form
// {HOME}/.pacm-cache, and publishes downloads into it single-flighted per
// (name, version).
type Store struct {
	root       string
	httpClient *retryablehttp.Client

	mu    sync.Mutex
	index map[string]string // "name@version" -> absolute .tgz path (see BuildIndex for scoped names)

	group   singleflight.Group
	limiter Limiter
}

// SafeName returns the cache directory segment for a package name: scoped
// names have their single "/" replaced with "_", per §3.
func SafeName(name string) string {
	return strings.Replace(name, "/", "_", 1)
}

// New builds a Store rooted at root (typically {HOME}/.pacm-cache).
func New(root string, logger hclog.Logger) *Store {
	return &Store{
		root:       root,
		httpClient: httpretry.New(logger, 2*time.Minute),
		index:      make(map[string]string),
		limiter:    NewLimiter(MaxConcurrentFetches),
	}
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// PathFor returns the on-disk path a (name, version) tarball would occupy,
// whether or not it currently exists.
func (s *Store) PathFor(name, version string) string {
	return filepath.Join(s.root, SafeName(name), version+".tgz")
}

// BuildIndex lazily walks the cache root once per process, populating the
// in-memory (name,version) -> path index used to short-circuit re-downloads.
// A missing cache root is not an error; it just means an empty index.
// Walked entries are keyed by their cache directory segment (SafeName), so
// a scoped package is indexed as "@scope_name@version" and is not found
// under its real name; EnsureExtracted's os.Stat of PathFor finds those.
func (s *Store) BuildIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.index) > 0 {
		return nil
	}
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return nil
	}

	return godirwalk.Walk(s.root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() || !strings.HasSuffix(path, ".tgz") {
				return nil
			}
			rel, err := filepath.Rel(s.root, path)
			if err != nil {
				return nil //nolint:nilerr // skip unreadable relative paths, don't abort the walk
			}
			parts := strings.Split(filepath.ToSlash(rel), "/")
			if len(parts) != 2 {
				return nil
			}
			version := strings.TrimSuffix(parts[1], ".tgz")
			key := parts[0] + "@" + version
			s.index[key] = path
			return nil
		},
	})
}

func (s *Store) cachedPath(name, version string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.index[name+"@"+version]
	return p, ok
}

func (s *Store) recordCached(name, version, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[name+"@"+version] = path
}

// EnsureExtracted materializes destDir from the cached (or freshly
// downloaded and verified) tarball for (name, version), per §4.3/§4.5.
// Concurrent callers for the same (name, version) share one in-flight
// download-and-publish task via singleflight.
func (s *Store) EnsureExtracted(name, version, tarballURL, integrity, destDir string) error {
	cachePath := s.PathFor(name, version)
	if _, ok := s.cachedPath(name, version); !ok {
		if _, err := os.Stat(cachePath); err == nil {
			s.recordCached(name, version, cachePath)
		}
	}

	if _, ok := s.cachedPath(name, version); !ok {
		if err := s.downloadAndPublish(name, version, tarballURL, integrity); err != nil {
			return err
		}
	}

	return extractTarGz(name, version, cachePath, destDir)
}

// downloadAndPublish fetches the tarball to a uniquely named temp file,
// verifies it against integrity, and atomically renames it into the cache.
// Concurrent requesters for the same key share one result.
func (s *Store) downloadAndPublish(name, version, tarballURL, integrity string) error {
	key := name + "@" + version
	_, err, _ := s.group.Do(key, func() (interface{}, error) {
		if p, ok := s.cachedPath(name, version); ok {
			if _, statErr := os.Stat(p); statErr == nil {
				return nil, nil
			}
		}

		s.limiter.Acquire()
		data, err := s.download(name, version, tarballURL)
		s.limiter.Release()
		if err != nil {
			return nil, err
		}
		if err := verifyIntegrity(name, version, data, integrity); err != nil {
			return nil, err
		}

		cachePath := s.PathFor(name, version)
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			return nil, &pacmerr.CacheError{Kind: pacmerr.CacheIo, Package: name, Version: version, Err: err}
		}

		// The temp file lives beside cachePath, not in os.TempDir(): os.Rename
		// requires both ends on the same filesystem, and the OS temp
		// directory and {HOME}/.pacm-cache are frequently different mounts.
		tmp := filepath.Join(filepath.Dir(cachePath), ".pacm-"+uuid.NewString()+".tgz.tmp")
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return nil, &pacmerr.CacheError{Kind: pacmerr.CacheIo, Package: name, Version: version, Err: err}
		}
		if err := os.Rename(tmp, cachePath); err != nil {
			_ = os.Remove(tmp)
			return nil, &pacmerr.CacheError{Kind: pacmerr.CacheIo, Package: name, Version: version, Err: err}
		}

		s.recordCached(name, version, cachePath)
		return nil, nil
	})
	return err
}

func (s *Store) download(name, version, tarballURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, tarballURL, nil)
	if err != nil {
		return nil, &pacmerr.CacheError{Kind: pacmerr.CacheDownload, Package: name, Version: version, Err: err}
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &pacmerr.CacheError{Kind: pacmerr.CacheDownload, Package: name, Version: version, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &pacmerr.CacheError{Kind: pacmerr.CacheDownload, Package: name, Version: version, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pacmerr.CacheError{Kind: pacmerr.CacheDownload, Package: name, Version: version, Err: err}
	}
	return data, nil
}
