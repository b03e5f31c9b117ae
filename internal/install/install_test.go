package install

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/pacmjs/pacm/internal/lockfile"
	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/pacmcache"
	"github.com/pacmjs/pacm/internal/resolve"
)

func packageTarball(t *testing.T, bin map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	files := map[string]string{
		"index.js":     "module.exports = 1;\n",
		"package.json": `{"name":"left-pad","version":"1.0.0"}` + "\n",
	}
	for _, target := range bin {
		files[target] = "#!/usr/bin/env node\nconsole.log('hi')\n"
	}
	for name, content := range files {
		hdr := &tar.Header{Name: "package/" + name, Mode: 0o644, Size: int64(len(content))}
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

func TestInstallWritesManifestLockfileAndTree(t *testing.T) {
	tarball := packageTarball(t, map[string]string{"left-pad": "cli.js"})
	integrity := integrityOf(tarball)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(tarball)
	}))
	defer srv.Close()

	projectDir := t.TempDir()
	store := pacmcache.New(t.TempDir(), hclog.NewNullLogger())
	installer := New(store, hclog.NewNullLogger())

	set := &resolve.ResolvedSet{
		Packages: []resolve.ResolvedPackage{
			{Name: "left-pad", Version: "1.0.0", TarballURL: srv.URL, Integrity: integrity, Bin: map[string]string{"left-pad": "cli.js"}},
		},
		DirectProd: []string{"left-pad"},
	}

	m := manifest.Empty()
	lf := lockfile.Empty()

	report, err := installer.Install(context.Background(), projectDir, m, lf, set, false)
	require.NoError(t, err)
	require.Equal(t, []string{"left-pad"}, report.Installed)

	require.Equal(t, "1.0.0", m.Dependencies["left-pad"])
	require.Equal(t, "1.0.0", lf.Dependencies["left-pad"].Version)

	_, err = os.Stat(filepath.Join(projectDir, "node_modules", "left-pad", "index.js"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(projectDir, "node_modules", ".bin", "left-pad"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(projectDir, "package.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(projectDir, "pacm.lockp"))
	require.NoError(t, err)
}

func TestInstallSkipsAlreadyInstalledVersion(t *testing.T) {
	tarball := packageTarball(t, nil)
	integrity := integrityOf(tarball)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write(tarball)
	}))
	defer srv.Close()

	projectDir := t.TempDir()
	store := pacmcache.New(t.TempDir(), hclog.NewNullLogger())
	installer := New(store, hclog.NewNullLogger())

	set := &resolve.ResolvedSet{
		Packages:   []resolve.ResolvedPackage{{Name: "left-pad", Version: "1.0.0", TarballURL: srv.URL, Integrity: integrity}},
		DirectProd: []string{"left-pad"},
	}

	_, err := installer.Install(context.Background(), projectDir, manifest.Empty(), lockfile.Empty(), set, false)
	require.NoError(t, err)
	require.Equal(t, 1, hits)

	report, err := installer.Install(context.Background(), projectDir, manifest.Empty(), lockfile.Empty(), set, false)
	require.NoError(t, err)
	require.Equal(t, []string{"left-pad"}, report.AlreadyInstalled)
	require.Equal(t, 1, hits, "re-install of the same version should not re-download")
}

func TestPickLastWriterWarnsOnCollision(t *testing.T) {
	set := &resolve.ResolvedSet{
		Packages: []resolve.ResolvedPackage{
			{Name: "left-pad", Version: "1.0.0"},
			{Name: "left-pad", Version: "2.0.0"},
		},
	}
	packages, warnings := pickLastWriter(set)
	require.Len(t, packages, 1)
	require.Equal(t, "2.0.0", packages[0].Version)
	require.Len(t, warnings, 1)
	require.Equal(t, "PACM_VERSION_COLLISION", warnings[0].Tag)
}

func TestCleanRemovesCacheDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "marker"), []byte("x"), 0o644))

	store := pacmcache.New(root, hclog.NewNullLogger())
	installer := New(store, hclog.NewNullLogger())

	removed, err := installer.Clean()
	require.NoError(t, err)
	require.True(t, removed)

	_, statErr := os.Stat(root)
	require.True(t, os.IsNotExist(statErr))
}
