package talent

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds all known Talents keyed by name. It implements Provider.
type Registry struct {
	talents map[string]*Talent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{talents: make(map[string]*Talent)}
}

// Register adds t to the registry, overwriting any existing entry by name.
// Precondition: t must not be nil and t.Name must not be empty.
func (r *Registry) Register(t *Talent) {
	r.talents[t.Name] = t
}

// Modifiers returns the modifier list for name, or an empty slice when the
// talent is unknown or carries no modifiers. It never fails.
//
// Postcondition: Returns a non-nil slice.
func (r *Registry) Modifiers(name string) []Modifier {
	t, ok := r.talents[name]
	if !ok || t.Modifiers == nil {
		return []Modifier{}
	}
	return t.Modifiers
}

// Get returns the Talent for name, or (nil, false) if not found.
func (r *Registry) Get(name string) (*Talent, bool) {
	t, ok := r.talents[name]
	return t, ok
}

// Len returns the number of registered talents.
func (r *Registry) Len() int { return len(r.talents) }

// yamlModifier is the data-file shape of one modifier.
type yamlModifier struct {
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
	Bonus  int    `yaml:"bonus"`
}

// yamlTalent tolerates both historical name keys ("name" and "talent_name").
type yamlTalent struct {
	Name       string         `yaml:"name"`
	TalentName string         `yaml:"talent_name"`
	Modifiers  []yamlModifier `yaml:"modifiers"`
}

// yamlTalentFile is the top-level data-file shape. Talents may appear as a
// flat list or nested under named groups; both normalize identically.
type yamlTalentFile struct {
	Talents []yamlTalent            `yaml:"talents"`
	Groups  map[string][]yamlTalent `yaml:"groups"`
}

// normalize converts a yamlTalent into the canonical record.
func (y yamlTalent) normalize() (*Talent, error) {
	name := y.Name
	if name == "" {
		name = y.TalentName
	}
	if name == "" {
		return nil, fmt.Errorf("talent: entry missing name")
	}
	mods := make([]Modifier, 0, len(y.Modifiers))
	for _, m := range y.Modifiers {
		kind, err := ParseModifierKind(m.Kind)
		if err != nil {
			return nil, fmt.Errorf("talent %q: %w", name, err)
		}
		mods = append(mods, Modifier{Kind: kind, Target: m.Target, Bonus: m.Bonus})
	}
	return &Talent{Name: name, Modifiers: mods}, nil
}

// LoadFile parses one YAML talent file into reg.
//
// Precondition: path must be a readable YAML file; reg must be non-nil.
// Postcondition: All talents in the file are registered, or an error is
// returned and reg is left with whatever was registered before the failure.
func LoadFile(path string, reg *Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	var f yamlTalentFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing %q: %w", path, err)
	}

	for _, y := range f.Talents {
		t, err := y.normalize()
		if err != nil {
			return fmt.Errorf("%q: %w", path, err)
		}
		reg.Register(t)
	}
	for _, group := range f.Groups {
		for _, y := range group {
			t, err := y.normalize()
			if err != nil {
				return fmt.Errorf("%q: %w", path, err)
			}
			reg.Register(t)
		}
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading talent dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		if err := LoadFile(filepath.Join(dir, e.Name()), reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
