package effect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds the loaded ability definitions, keyed by name.
type Catalog struct {
	abilities map[string]Ability
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{abilities: make(map[string]Ability)}
}

// Get returns the ability with the given name.
func (c *Catalog) Get(name string) (Ability, bool) {
	a, ok := c.abilities[name]
	return a, ok
}

// Names returns the catalog's ability names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.abilities))
	for name := range c.abilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded abilities.
func (c *Catalog) Len() int { return len(c.abilities) }

type abilityFile struct {
	Abilities []abilityEntry `yaml:"abilities"`
}

type abilityEntry struct {
	Name       string        `yaml:"name"`
	SelfTarget bool          `yaml:"self_target"`
	Effects    []effectEntry `yaml:"effects"`
}

type effectEntry struct {
	Kind       string     `yaml:"kind"`
	Dice       string     `yaml:"dice"`
	DRModifier int        `yaml:"dr_modifier"`
	Status     string     `yaml:"status"`
	SaveStat   string     `yaml:"save_stat"`
	DC         int        `yaml:"dc"`
	Distance   int        `yaml:"distance"`
	Area       *areaEntry `yaml:"area"`
	Friendly   bool       `yaml:"friendly_only"`
}

type areaEntry struct {
	Shape string `yaml:"shape"`
	Size  int    `yaml:"size"`
}

// LoadFile loads ability definitions from one YAML file into the catalog.
// Effect variants are normalized at load time; a file with an unknown effect
// kind or a missing required field is rejected whole.
//
// Postcondition: On error the catalog is unchanged.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ability file: %w", err)
	}

	var file abilityFile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return fmt.Errorf("parsing ability file %s: %w", path, err)
	}

	loaded := make(map[string]Ability, len(file.Abilities))
	for _, entry := range file.Abilities {
		if entry.Name == "" {
			return fmt.Errorf("ability file %s: ability with empty name", path)
		}
		ability := Ability{Name: entry.Name, SelfTarget: entry.SelfTarget}
		for i, fx := range entry.Effects {
			eff, err := fx.normalize()
			if err != nil {
				return fmt.Errorf("ability %q effect %d: %w", entry.Name, i, err)
			}
			ability.Effects = append(ability.Effects, eff)
		}
		if len(ability.Effects) == 0 {
			return fmt.Errorf("ability %q has no effects", entry.Name)
		}
		loaded[entry.Name] = ability
	}

	for name, ability := range loaded {
		c.abilities[name] = ability
	}
	return nil
}

// LoadDirectory loads every .yaml and .yml file in dir into the catalog.
func (c *Catalog) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading ability directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := c.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (e effectEntry) normalize() (Effect, error) {
	switch e.Kind {
	case "damage":
		if e.Dice == "" {
			return nil, fmt.Errorf("damage effect requires dice")
		}
		return Damage{Dice: e.Dice, DRModifier: e.DRModifier}, nil
	case "heal":
		if e.Dice == "" {
			return nil, fmt.Errorf("heal effect requires dice")
		}
		return Heal{Dice: e.Dice}, nil
	case "apply_status":
		if e.Status == "" {
			return nil, fmt.Errorf("apply_status effect requires status")
		}
		return ApplyStatus{Status: e.Status}, nil
	case "apply_status_roll":
		if e.Status == "" || e.SaveStat == "" {
			return nil, fmt.Errorf("apply_status_roll effect requires status and save_stat")
		}
		return ApplyStatusRoll{Status: e.Status, SaveStat: e.SaveStat, DC: e.DC}, nil
	case "move_target":
		return MoveTarget{Distance: e.Distance}, nil
	case "move_self":
		return MoveSelf{Distance: e.Distance}, nil
	case "aoe_damage":
		area, err := e.area()
		if err != nil {
			return nil, err
		}
		if e.Dice == "" {
			return nil, fmt.Errorf("aoe_damage effect requires dice")
		}
		return AoEDamage{Dice: e.Dice, Area: area}, nil
	case "aoe_status":
		area, err := e.area()
		if err != nil {
			return nil, err
		}
		if e.Status == "" {
			return nil, fmt.Errorf("aoe_status effect requires status")
		}
		return AoEStatus{Status: e.Status, Area: area, FriendlyOnly: e.Friendly}, nil
	default:
		return nil, fmt.Errorf("unknown effect kind %q", e.Kind)
	}
}

func (e effectEntry) area() (Area, error) {
	if e.Area == nil {
		return Area{}, fmt.Errorf("area effect requires area")
	}
	shape, err := parseShape(e.Area.Shape)
	if err != nil {
		return Area{}, err
	}
	if e.Area.Size < 0 {
		return Area{}, fmt.Errorf("negative area size %d", e.Area.Size)
	}
	return Area{Shape: shape, Size: e.Area.Size}, nil
}

func parseShape(s string) (Shape, error) {
	switch s {
	case "circle":
		return ShapeCircle, nil
	case "line":
		return ShapeLine, nil
	case "cone":
		return ShapeCone, nil
	default:
		return 0, fmt.Errorf("unknown area shape %q", s)
	}
}
