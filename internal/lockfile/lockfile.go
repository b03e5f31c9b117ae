// Package lockfile reads and writes pacm.lockp, pacm's own lockfile
// format. Its shape — a flat name-to-entry map carrying resolved version,
// tarball URL and integrity — is grounded on the NpmPackage record in
// turbo's npm_lockfile.go, trimmed to the fields pacm's resolver actually
// produces.
package lockfile

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Entry is one resolved package recorded in the lockfile.
type Entry struct {
	Version   string `json:"version"`
	Resolved  string `json:"resolved"`
	Integrity string `json:"integrity"`
}

// Lockfile is the on-disk shape of pacm.lockp: exactly the two maps §3/§6
// define, with no version envelope around them. Keys serialize in Go's
// sorted-map order rather than insertion order; both are deterministic, so
// re-saving an unchanged lockfile reproduces the same bytes either way.
type Lockfile struct {
	Dependencies    map[string]Entry `json:"dependencies,omitempty"`
	DevDependencies map[string]Entry `json:"devDependencies,omitempty"`
}

// Empty returns a lockfile with empty dependency maps.
func Empty() *Lockfile {
	return &Lockfile{
		Dependencies:    map[string]Entry{},
		DevDependencies: map[string]Entry{},
	}
}

// Load reads and parses path from fsys. A missing file, or one containing
// only whitespace, is treated as an empty lockfile per §4.6.
func Load(fsys afero.Fs, path string) (*Lockfile, error) {
	data, err := afero.ReadFile(fsys, path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return Empty(), nil
	}

	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, err
	}
	if lf.Dependencies == nil {
		lf.Dependencies = map[string]Entry{}
	}
	if lf.DevDependencies == nil {
		lf.DevDependencies = map[string]Entry{}
	}
	return &lf, nil
}

// Marshal serializes lf with the same 2-space, non-HTML-escaped encoding
// pacm uses for package.json. Empty dependency maps are elided.
func Marshal(lf *Lockfile) ([]byte, error) {
	elided := *lf
	if len(elided.Dependencies) == 0 {
		elided.Dependencies = nil
	}
	if len(elided.DevDependencies) == 0 {
		elided.DevDependencies = nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(elided); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes lf to path via write-then-rename.
func Save(fsys afero.Fs, path string, lf *Lockfile) error {
	data, err := Marshal(lf)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return err
	}
	return fsys.Rename(tmp, path)
}

// Set records name as a direct dependency under the prod or dev map.
func (lf *Lockfile) Set(dev bool, name string, entry Entry) {
	if dev {
		if lf.DevDependencies == nil {
			lf.DevDependencies = map[string]Entry{}
		}
		lf.DevDependencies[name] = entry
		return
	}
	if lf.Dependencies == nil {
		lf.Dependencies = map[string]Entry{}
	}
	lf.Dependencies[name] = entry
}

// Remove deletes name from both maps, reporting whether it was present.
func (lf *Lockfile) Remove(name string) bool {
	_, inProd := lf.Dependencies[name]
	_, inDev := lf.DevDependencies[name]
	delete(lf.Dependencies, name)
	delete(lf.DevDependencies, name)
	return inProd || inDev
}

// DirectNames returns the union of the dependencies and devDependencies
// keys, the lockfile-derived desired set used by §4.6/§4.8.
func (lf *Lockfile) DirectNames() []string {
	names := make([]string, 0, len(lf.Dependencies)+len(lf.DevDependencies))
	for name := range lf.Dependencies {
		names = append(names, name)
	}
	for name := range lf.DevDependencies {
		names = append(names, name)
	}
	return names
}

// DirectSpecs returns the dependencies and devDependencies entries as
// "name@version" spec strings pinned to the exact resolved version
// recorded in the lockfile. Resolving these (rather than DirectNames,
// which loses the pinned version) is what makes re-resolving from an
// existing lockfile reproduce the locked versions instead of drifting to
// whatever "latest" happens to be at resolve time.
func (lf *Lockfile) DirectSpecs() []string {
	specs := make([]string, 0, len(lf.Dependencies)+len(lf.DevDependencies))
	for name, entry := range lf.Dependencies {
		specs = append(specs, name+"@"+entry.Version)
	}
	for name, entry := range lf.DevDependencies {
		specs = append(specs, name+"@"+entry.Version)
	}
	return specs
}

// IsEmpty reports whether the lockfile has no direct entries at all.
func (lf *Lockfile) IsEmpty() bool {
	return len(lf.Dependencies) == 0 && len(lf.DevDependencies) == 0
}
