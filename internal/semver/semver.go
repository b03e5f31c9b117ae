// Package semver picks a concrete version out of a registry metadata
// document given an npm-compatible range expression.
package semver

import (
	"github.com/Masterminds/semver/v3"

	"github.com/pacmjs/pacm/internal/pacmerr"
	"github.com/pacmjs/pacm/internal/registry"
)

// Pick selects the concrete version from meta that range resolves to.
//
// "latest" (the default when no range was given) resolves through the
// dist-tags map, as does any other value that names a published dist-tag
// (e.g. "next"). Any other range is parsed as an npm-compatible semver
// constraint and matched against the maximum satisfying published version;
// pre-release inclusion follows Masterminds/semver/v3's own rules, which
// mirror node-semver: a pre-release version only satisfies a range that
// itself names a pre-release of the same major.minor.patch.
func Pick(meta *registry.PackageMetadata, rangeExpr string) (string, error) {
	if rangeExpr == "" || rangeExpr == "latest" {
		v, ok := meta.DistTags["latest"]
		if !ok {
			return "", &pacmerr.ResolutionError{
				Kind:    pacmerr.NoSuchTag,
				Package: meta.Name,
				Range:   rangeExpr,
				Msg:     `no "latest" dist-tag published`,
			}
		}
		return v, nil
	}

	if v, ok := meta.DistTags[rangeExpr]; ok {
		return v, nil
	}

	constraint, err := semver.NewConstraint(rangeExpr)
	if err != nil {
		return "", &pacmerr.ResolutionError{
			Kind:    pacmerr.NoMatchingVersion,
			Package: meta.Name,
			Range:   rangeExpr,
			Msg:     "invalid semver range: " + err.Error(),
		}
	}

	var best *semver.Version
	var bestRaw string
	for raw := range meta.Versions {
		candidate, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if !constraint.Check(candidate) {
			continue
		}
		if best == nil || candidate.GreaterThan(best) {
			best = candidate
			bestRaw = raw
		}
	}

	if best == nil {
		return "", &pacmerr.ResolutionError{
			Kind:    pacmerr.NoMatchingVersion,
			Package: meta.Name,
			Range:   rangeExpr,
			Msg:     "no published version satisfies the requested range",
		}
	}
	return bestRaw, nil
}
