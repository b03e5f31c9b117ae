package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestFetchMetadataMemoizes(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"lodash","dist-tags":{"latest":"4.17.21"},"versions":{"4.17.21":{"name":"lodash","version":"4.17.21","dist":{"tarball":"https://example.com/lodash-4.17.21.tgz","integrity":"sha512-abc"}}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, hclog.NewNullLogger())

	meta, err := c.FetchMetadata(context.Background(), "lodash")
	require.NoError(t, err)
	require.Equal(t, "4.17.21", meta.DistTags["latest"])

	_, err = c.FetchMetadata(context.Background(), "lodash")
	require.NoError(t, err)
	require.Equal(t, 1, hits, "second fetch should be served from the process memo")
}

func TestFetchMetadataNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, hclog.NewNullLogger())
	_, err := c.FetchMetadata(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestScopedPackagePreservesSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"@types/node","dist-tags":{"latest":"20.0.0"},"versions":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, hclog.NewNullLogger())
	_, err := c.FetchMetadata(context.Background(), "@types/node")
	require.NoError(t, err)
	require.Equal(t, "/@types/node", gotPath)
}
