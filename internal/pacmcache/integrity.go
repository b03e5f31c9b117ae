package pacmcache

import (
	"crypto/sha1" //nolint:gosec // sha1 integrity strings are part of the npm tarball format
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"

	"github.com/pacmjs/pacm/internal/pacmerr"
)

// verifyIntegrity checks data against an integrity string of the form
// "<algo>-<base64digest>", where algo is one of sha1, sha256, sha512.
func verifyIntegrity(pkg, version string, data []byte, integrity string) error {
	algo, want, err := splitIntegrity(integrity)
	if err != nil {
		return &pacmerr.CacheError{Kind: pacmerr.CacheIntegrity, Package: pkg, Version: version, Err: err}
	}

	var h hash.Hash
	switch algo {
	case "sha1":
		h = sha1.New() //nolint:gosec
	case "sha256":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	default:
		return &pacmerr.CacheError{Kind: pacmerr.CacheIntegrity, Package: pkg, Version: version, Err: fmt.Errorf("unsupported integrity algorithm %q", algo)}
	}

	_, _ = h.Write(data)
	got := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if got != want {
		return &pacmerr.CacheError{
			Kind:    pacmerr.CacheIntegrity,
			Package: pkg,
			Version: version,
			Err:     fmt.Errorf("integrity mismatch: expected %s-%s, got %s-%s", algo, want, algo, got),
		}
	}
	return nil
}

func splitIntegrity(integrity string) (algo, digest string, err error) {
	parts := strings.SplitN(integrity, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed integrity string %q", integrity)
	}
	return parts[0], parts[1], nil
}
