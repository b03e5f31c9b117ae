package install

import (
	"context"

	"github.com/pacmjs/pacm/internal/lockfile"
	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/resolve"
)

// Update implements §4.8: resolve the desired set (names, else lockfile
// direct entries, else manifest entries) and reinstall it, skipping specs
// that aren't in the current manifest with a not-installed warning.
func (i *Installer) Update(ctx context.Context, resolver *resolve.Resolver, projectDir string, m *manifest.Manifest, lf *lockfile.Lockfile, names []string, force bool) (*Report, error) {
	desired, warnings := desiredUpdateSet(m, lf, names)

	// Re-resolve against the manifest's declared range, not a bare name:
	// a bare name defaults to "latest" in pkgspec.Parse, which would let
	// update jump outside the range the manifest actually constrains to.
	var prod, dev []string
	for _, name := range desired {
		if rng, ok := m.DevDependencies[name]; ok {
			dev = append(dev, name+"@"+rng)
		} else if rng, ok := m.Dependencies[name]; ok {
			prod = append(prod, name+"@"+rng)
		}
	}

	report := &Report{Warnings: warnings}

	if len(prod) > 0 {
		set, err := resolver.Resolve(ctx, prod, false)
		if err != nil {
			return nil, err
		}
		sub, err := i.Install(ctx, projectDir, m, lf, set, force)
		if err != nil {
			return nil, err
		}
		mergeReport(report, sub)
	}
	if len(dev) > 0 {
		set, err := resolver.Resolve(ctx, dev, true)
		if err != nil {
			return nil, err
		}
		sub, err := i.Install(ctx, projectDir, m, lf, set, force)
		if err != nil {
			return nil, err
		}
		mergeReport(report, sub)
	}

	return report, nil
}

// desiredUpdateSet picks the spec list per §4.8/§4.6 priority, and drops
// any explicitly-named spec absent from the manifest with a warning.
func desiredUpdateSet(m *manifest.Manifest, lf *lockfile.Lockfile, names []string) ([]string, []resolve.Warning) {
	if len(names) > 0 {
		var kept []string
		var warnings []resolve.Warning
		for _, name := range names {
			_, inProd := m.Dependencies[name]
			_, inDev := m.DevDependencies[name]
			if !inProd && !inDev {
				warnings = append(warnings, resolve.Warning{
					Tag:     "PACM_NOT_INSTALLED",
					Package: name,
					Message: "not present in the manifest; skipping",
				})
				continue
			}
			kept = append(kept, name)
		}
		return kept, warnings
	}

	if !lf.IsEmpty() {
		return lf.DirectNames(), nil
	}
	return m.DirectNames(), nil
}

func mergeReport(into, from *Report) {
	into.Installed = append(into.Installed, from.Installed...)
	into.AlreadyInstalled = append(into.AlreadyInstalled, from.AlreadyInstalled...)
	into.Warnings = append(into.Warnings, from.Warnings...)
}
