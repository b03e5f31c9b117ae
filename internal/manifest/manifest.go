// Package manifest reads and writes package.json, preserving any fields
// the core doesn't model (§3: "the core reads and writes only name,
// version, scripts, dependencies, devDependencies, and publishConfig.registry").
// Round-tripping of everything else is grounded on turbo's
// package_json.go RawJSON pattern. Reads and writes go through an
// afero.Fs, the same abstraction turbo's config_file.go threads through
// its config readers, so callers can substitute an in-memory fs in tests.
package manifest

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/spf13/afero"
)

// PublishConfig holds the one publishConfig field the core cares about.
type PublishConfig struct {
	Registry string `json:"registry,omitempty"`
}

// Manifest is package.json, modeled to the fields pacm reads and writes.
// RawJSON retains every other field verbatim across a read-modify-write
// cycle.
type Manifest struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	PublishConfig   *PublishConfig    `json:"publishConfig,omitempty"`

	// RawJSON is the exact JSON object as read from disk, including
	// fields this struct doesn't model. Struct fields take priority over
	// raw fields when the manifest is marshalled back out.
	RawJSON map[string]interface{} `json:"-"`
}

// Empty returns a manifest with empty dependency maps, the default used
// when no package.json exists yet.
func Empty() *Manifest {
	return &Manifest{
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
		RawJSON:         map[string]interface{}{},
	}
}

// Load reads and parses path from fsys. A missing file is not an error:
// it returns Empty().
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Unmarshal decodes data into a Manifest, capturing the full raw object.
func Unmarshal(data []byte) (*Manifest, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	m.RawJSON = raw
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	if m.DevDependencies == nil {
		m.DevDependencies = map[string]string{}
	}
	return m, nil
}

// Marshal serializes m back to JSON, overlaying its modeled fields onto
// RawJSON so unknown fields survive the round trip. Empty dependency
// maps are elided per §3.
func Marshal(m *Manifest) ([]byte, error) {
	elided := *m
	if len(elided.Dependencies) == 0 {
		elided.Dependencies = nil
	}
	if len(elided.DevDependencies) == 0 {
		elided.DevDependencies = nil
	}
	if len(elided.Scripts) == 0 {
		elided.Scripts = nil
	}

	structured, err := json.Marshal(elided)
	if err != nil {
		return nil, err
	}
	var structuredFields map[string]interface{}
	if err := json.Unmarshal(structured, &structuredFields); err != nil {
		return nil, err
	}

	merged := make(map[string]interface{}, len(m.RawJSON))
	for k, v := range m.RawJSON {
		merged[k] = v
	}
	for _, field := range []string{"dependencies", "devDependencies", "scripts"} {
		if _, ok := structuredFields[field]; !ok {
			delete(merged, field)
		}
	}
	for k, v := range structuredFields {
		merged[k] = v
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(merged); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes m to path via write-then-rename, per §4.6's atomic write rule.
func Save(fsys afero.Fs, path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return writeAtomic(fsys, path, data)
}

func writeAtomic(fsys afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return err
	}
	return fsys.Rename(tmp, path)
}

// RegistryURL returns the publishConfig.registry field, if present.
func (m *Manifest) RegistryURL() string {
	if m.PublishConfig == nil {
		return ""
	}
	return m.PublishConfig.Registry
}

// SetDependency records name at version under the given map, creating the
// map if necessary.
func (m *Manifest) SetDependency(dev bool, name, version string) {
	if dev {
		if m.DevDependencies == nil {
			m.DevDependencies = map[string]string{}
		}
		m.DevDependencies[name] = version
		return
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	m.Dependencies[name] = version
}

// RemoveDependency deletes name from both dependency maps, reporting
// whether it was present in either.
func (m *Manifest) RemoveDependency(name string) bool {
	_, inProd := m.Dependencies[name]
	_, inDev := m.DevDependencies[name]
	delete(m.Dependencies, name)
	delete(m.DevDependencies, name)
	return inProd || inDev
}

// DirectNames returns the union of the dependencies and devDependencies
// keys, used as the desired set when no spec set was given (§4.6/§4.8).
func (m *Manifest) DirectNames() []string {
	names := make([]string, 0, len(m.Dependencies)+len(m.DevDependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	for name := range m.DevDependencies {
		names = append(names, name)
	}
	return names
}

// DirectSpecs returns the dependencies and devDependencies entries as
// "name@range" spec strings, preserving the declared semver constraint.
// Resolving these (rather than DirectNames, which loses the range) is
// what makes a no-args install honor the manifest's constraint instead of
// silently falling back to "latest" for every direct dependency.
func (m *Manifest) DirectSpecs() []string {
	specs := make([]string, 0, len(m.Dependencies)+len(m.DevDependencies))
	for name, rng := range m.Dependencies {
		specs = append(specs, name+"@"+rng)
	}
	for name, rng := range m.DevDependencies {
		specs = append(specs, name+"@"+rng)
	}
	return specs
}
