// Package resolve walks a set of direct package specs to a fixed point,
// producing a deduplicated, platform-filtered ResolvedSet. The walk itself
// is the fixed-point queue algorithm from §4.4; the bounded fan-out of
// concurrent metadata fetches is grounded on turbo's cache/context use of
// golang.org/x/sync/errgroup.
package resolve

import (
	"context"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/pacmjs/pacm/internal/pacmerr"
	"github.com/pacmjs/pacm/internal/pkgspec"
	"github.com/pacmjs/pacm/internal/platform"
	"github.com/pacmjs/pacm/internal/registry"
	"github.com/pacmjs/pacm/internal/semver"
)

// Category marks whether a queued or resolved entry is a production,
// development, or optional dependency of its parent.
type Category int

const (
	Prod Category = iota
	Dev
	Optional
)

// ResolvedPackage is one entry of a ResolvedSet: a concrete version picked
// for a single (name, version) pair, per §3.
type ResolvedPackage struct {
	Name                 string
	Version              string
	TarballURL           string
	Integrity            string
	Dependencies         map[string]string
	OptionalDependencies map[string]string
	OS                   []string
	CPU                  []string
	Bin                  map[string]string
	Scripts              map[string]string
}

// Warning is a non-fatal condition surfaced alongside a successful
// resolution (skipped optional dep, platform mismatch, ...).
type Warning struct {
	Tag     string
	Package string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Tag, w.Package, w.Message)
}

// ResolvedSet is the resolver's output: an insertion-ordered sequence of
// ResolvedPackage plus the direct prod/dev partitions, per §3.
type ResolvedSet struct {
	Packages   []ResolvedPackage
	DirectProd []string
	DirectDev  []string
	Warnings   []Warning
}

// MetadataFetcher is the subset of *registry.Client the resolver needs,
// so tests can substitute a stub.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, name string) (*registry.PackageMetadata, error)
}

// Resolver runs the fixed-point graph walk described in §4.4.
type Resolver struct {
	client MetadataFetcher
	// Concurrency bounds how many queue entries are resolved at once.
	Concurrency int
}

// New builds a Resolver backed by client. A Concurrency of 0 defaults to 8.
func New(client MetadataFetcher) *Resolver {
	return &Resolver{client: client, Concurrency: 8}
}

type queueEntry struct {
	spec     pkgspec.Spec
	category Category
}

// Resolve walks directSpecs (each parsed via pkgspec.Parse) to a fixed
// point and returns the resulting ResolvedSet, per §4.4.
func (r *Resolver) Resolve(ctx context.Context, directSpecs []string, dev bool) (*ResolvedSet, error) {
	set := &ResolvedSet{}
	seen := mapset.NewSet[string]()

	var mu sync.Mutex
	var warnings []Warning
	var merr *multierror.Error

	cat := Prod
	if dev {
		cat = Dev
	}

	queue := make([]queueEntry, 0, len(directSpecs))
	for _, raw := range directSpecs {
		spec, err := pkgspec.Parse(raw)
		if err != nil {
			return nil, err
		}
		queue = append(queue, queueEntry{spec: spec, category: cat})
		if dev {
			set.DirectDev = append(set.DirectDev, spec.Name)
		} else {
			set.DirectProd = append(set.DirectProd, spec.Name)
		}
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	for len(queue) > 0 {
		batch := queue
		queue = nil

		var nextMu sync.Mutex
		var next []queueEntry

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for _, entry := range batch {
			entry := entry
			g.Go(func() error {
				children, warn, err := r.resolveOne(gctx, entry, set, seen, &mu)
				if err != nil {
					if entry.category == Optional {
						mu.Lock()
						warnings = append(warnings, Warning{Tag: "PACM_OPTIONAL_DEPENDENCY_SKIPPED", Package: entry.spec.Name, Message: err.Error()})
						mu.Unlock()
						return nil
					}
					return err
				}
				if warn != nil {
					mu.Lock()
					warnings = append(warnings, *warn)
					mu.Unlock()
				}
				if len(children) > 0 {
					nextMu.Lock()
					next = append(next, children...)
					nextMu.Unlock()
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			merr = multierror.Append(merr, err)
			return nil, merr.ErrorOrNil()
		}

		queue = next
	}

	set.Warnings = warnings
	return set, nil
}

// resolveOne resolves a single queue entry: fetch metadata, pick a version,
// apply platform filtering, insert into the resolved set if new, and
// produce the next queue entries for its dependency maps.
func (r *Resolver) resolveOne(ctx context.Context, entry queueEntry, set *ResolvedSet, seen mapset.Set[string], mu *sync.Mutex) ([]queueEntry, *Warning, error) {
	meta, err := r.client.FetchMetadata(ctx, entry.spec.RealName)
	if err != nil {
		return nil, nil, err
	}

	version, err := semver.Pick(meta, entry.spec.Range)
	if err != nil {
		return nil, nil, err
	}

	key := entry.spec.Name + "@" + version

	mu.Lock()
	alreadySeen := seen.Contains(key)
	if !alreadySeen {
		seen.Add(key)
	}
	mu.Unlock()
	if alreadySeen {
		return nil, nil, nil
	}

	vm := meta.Versions[version]

	if !platform.CompatibleOSAndCPU(vm.OS, vm.CPU) {
		// Required vs optional severity is decided by the caller, which
		// demotes this error to a warning for Optional-category entries.
		return nil, nil, &pacmerr.ResolutionError{
			Kind:    pacmerr.PlatformIncompatible,
			Package: entry.spec.Name,
			Range:   entry.spec.Range,
			Msg:     "package is not compatible with this platform",
		}
	}

	pkg := ResolvedPackage{
		Name:                 entry.spec.Name,
		Version:              version,
		TarballURL:           vm.Dist.Tarball,
		Integrity:            vm.Dist.Integrity,
		Dependencies:         vm.Dependencies,
		OptionalDependencies: vm.OptionalDependencies,
		OS:                   vm.OS,
		CPU:                  vm.CPU,
		Bin:                  vm.Bin,
		Scripts:              vm.Scripts,
	}

	mu.Lock()
	set.Packages = append(set.Packages, pkg)
	mu.Unlock()

	var children []queueEntry
	for name, rng := range vm.Dependencies {
		spec, err := pkgspec.FromManifestEntry(name, rng)
		if err != nil {
			continue
		}
		children = append(children, queueEntry{spec: spec, category: entry.category})
	}
	for name, rng := range vm.PeerDependencies {
		spec, err := pkgspec.FromManifestEntry(name, rng)
		if err != nil {
			continue
		}
		children = append(children, queueEntry{spec: spec, category: entry.category})
	}
	for name, rng := range vm.OptionalDependencies {
		spec, err := pkgspec.FromManifestEntry(name, rng)
		if err != nil {
			continue
		}
		children = append(children, queueEntry{spec: spec, category: Optional})
	}

	return children, nil, nil
}
