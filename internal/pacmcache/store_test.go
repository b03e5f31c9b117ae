package pacmcache

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func packageTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{
			Name: filepath.ToSlash(filepath.Join("package", name)),
			Mode: 0o644,
			Size: int64(len(content)),
		}
		require.NoError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func integrityOf(data []byte) string {
	sum := sha512.Sum512(data)
	return "sha512-" + base64.StdEncoding.EncodeToString(sum[:])
}

func TestEnsureExtractedDownloadsAndCaches(t *testing.T) {
	tarball := packageTarball(t, map[string]string{"index.js": "module.exports = 1;\n"})
	integrity := integrityOf(tarball)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write(tarball)
	}))
	defer srv.Close()

	root := t.TempDir()
	dest := filepath.Join(t.TempDir(), "left-pad")

	s := New(root, hclog.NewNullLogger())
	require.NoError(t, s.EnsureExtracted("left-pad", "1.0.0", srv.URL, integrity, dest))

	fs.Assert(t, dest, fs.Expected(t, fs.WithFile("index.js", "module.exports = 1;\n")))
	require.Equal(t, 1, hits)

	dest2 := filepath.Join(t.TempDir(), "left-pad-again")
	require.NoError(t, s.EnsureExtracted("left-pad", "1.0.0", srv.URL, integrity, dest2))
	require.Equal(t, 1, hits, "second extraction should reuse the cached tarball, not re-download")
}

func TestEnsureExtractedRejectsBadIntegrity(t *testing.T) {
	tarball := packageTarball(t, map[string]string{"index.js": "1"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(tarball)
	}))
	defer srv.Close()

	s := New(t.TempDir(), hclog.NewNullLogger())
	dest := filepath.Join(t.TempDir(), "bad-pkg")
	err := s.EnsureExtracted("bad-pkg", "1.0.0", srv.URL, "sha512-not-the-real-digest", dest)
	require.Error(t, err)
}

func TestBuildIndexFindsExistingTarballs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "left-pad"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "left-pad", "1.0.0.tgz"), []byte("stub"), 0o644))

	s := New(root, hclog.NewNullLogger())
	require.NoError(t, s.BuildIndex())

	p, ok := s.cachedPath("left-pad", "1.0.0")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "left-pad", "1.0.0.tgz"), p)
}

func TestSafeNameReplacesScopeSlash(t *testing.T) {
	require.Equal(t, "@types_node", SafeName("@types/node"))
	require.Equal(t, "left-pad", SafeName("left-pad"))
}
