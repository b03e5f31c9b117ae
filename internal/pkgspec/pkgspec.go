// Package pkgspec parses the package specification grammar accepted on
// the command line and in manifest dependency maps:
//
//	name[@range]
//	name@npm:realName[@range]
//
// Scoped names (@scope/name) are recognized; the range-separating "@" is
// always the *second* "@" in a scoped spec.
package pkgspec

import (
	"strings"

	"github.com/pacmjs/pacm/internal/pacmerr"
)

// Spec is a parsed package specification.
type Spec struct {
	// Name is the name under which the package is installed (the alias,
	// if one was given; otherwise the real package name).
	Name string
	// RealName is the name resolution/download uses. Equal to Name unless
	// this is an alias spec.
	RealName string
	// Range is the semver range or "latest".
	Range string
	// IsAlias is true for "alias@npm:realName@range" specs.
	IsAlias bool
}

// Parse parses a single "name[@range]" or "name@npm:realName[@range]" spec,
// as typed on the command line or assembled as "name@value" from a manifest
// dependency map entry. A missing range defaults to "latest".
func Parse(raw string) (Spec, error) {
	if raw == "" {
		return Spec{}, &pacmerr.ArgumentError{Msg: "empty package spec"}
	}

	name, rangeOrAlias, hasRange := splitNameAndRest(raw)
	if name == "" {
		return Spec{}, &pacmerr.ArgumentError{Msg: "package spec is missing a name: " + raw}
	}
	if strings.HasPrefix(name, "github:") || strings.HasPrefix(raw, "github:") {
		return Spec{}, &pacmerr.ArgumentError{Msg: "github: package specs are not supported: " + raw}
	}

	if !hasRange {
		return Spec{Name: name, RealName: name, Range: "latest"}, nil
	}

	if real, version, ok := parseAlias(rangeOrAlias); ok {
		return Spec{Name: name, RealName: real, Range: version, IsAlias: true}, nil
	}

	return Spec{Name: name, RealName: name, Range: rangeOrAlias}, nil
}

// FromManifestEntry builds a Spec from a package.json dependency map entry,
// where name is the key and value is the dependency map's value (which may
// itself be an "npm:real@range" alias value).
func FromManifestEntry(name, value string) (Spec, error) {
	if value == "" {
		value = "latest"
	}
	if real, version, ok := parseAlias(value); ok {
		return Spec{Name: name, RealName: real, Range: version, IsAlias: true}, nil
	}
	return Spec{Name: name, RealName: name, Range: value}, nil
}

// String reconstructs the canonical "name@range" (or alias) form.
func (s Spec) String() string {
	if s.IsAlias {
		return s.Name + "@npm:" + s.RealName + "@" + s.Range
	}
	return s.Name + "@" + s.Range
}

// splitNameAndRest splits "name[@range-or-alias]" honoring scoped names,
// where the name itself may contain a leading "@".
func splitNameAndRest(raw string) (name string, rest string, hasRest bool) {
	scoped := strings.HasPrefix(raw, "@")
	search := raw
	offset := 0
	if scoped {
		search = raw[1:]
		offset = 1
	}
	idx := strings.Index(search, "@")
	if idx == -1 {
		return raw, "", false
	}
	return raw[:idx+offset], raw[idx+offset+1:], true
}

// parseAlias recognizes "npm:realName@range" or "npm:realName" (defaulting
// to "latest"), as found after the first "@" in an alias spec, or as the
// full value of a manifest dependency entry.
func parseAlias(value string) (realName string, version string, ok bool) {
	if !strings.HasPrefix(value, "npm:") {
		return "", "", false
	}
	spec := strings.TrimPrefix(value, "npm:")
	name, rangeVal, hasRange := splitNameAndRest(spec)
	if !hasRange {
		return name, "latest", true
	}
	return name, rangeVal, true
}
