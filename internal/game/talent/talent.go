// Package talent defines the talent domain model and the modifier
// aggregation rules that bias combat and skill checks.
//
// Talent reference data arrives in several historical shapes; the loader in
// this package normalizes all of them into the canonical Talent record, so
// aggregation never branches on storage shape.
package talent

import "fmt"

// ModifierKind is the closed set of modifier behaviors a talent can grant.
// The zero value (KindUnknown) is intentionally invalid.
type ModifierKind int

const (
	KindUnknown ModifierKind = iota
	KindStatBonus
	KindSkillBonus
	KindContestedCheck
	KindDamageBonus
)

// String returns the wire/data-file name of the kind.
func (k ModifierKind) String() string {
	switch k {
	case KindStatBonus:
		return "stat_bonus"
	case KindSkillBonus:
		return "skill_bonus"
	case KindContestedCheck:
		return "contested_check"
	case KindDamageBonus:
		return "damage_bonus"
	default:
		return "unknown"
	}
}

// ParseModifierKind maps a data-file kind string to a ModifierKind.
//
// Postcondition: Returns a non-KindUnknown kind or an error.
func ParseModifierKind(s string) (ModifierKind, error) {
	switch s {
	case "stat_bonus":
		return KindStatBonus, nil
	case "skill_bonus":
		return KindSkillBonus, nil
	case "contested_check":
		return KindContestedCheck, nil
	case "damage_bonus":
		return KindDamageBonus, nil
	default:
		return KindUnknown, fmt.Errorf("talent: unknown modifier kind %q", s)
	}
}

// Modifier is one numeric contribution granted by a talent.
// Target names a stat or skill and is matched against roll context tags by
// exact equality; it is empty for KindDamageBonus.
type Modifier struct {
	Kind   ModifierKind
	Target string
	Bonus  int
}

// Talent is the canonical normalized talent record.
// A talent with an empty Modifiers list is legal and contributes nothing.
type Talent struct {
	Name      string
	Modifiers []Modifier
}

// Provider supplies modifier lists by talent name. Implementations return an
// empty slice for unknown names and never fail the lookup; incomplete
// reference data degrades to zero contribution rather than halting combat.
type Provider interface {
	Modifiers(name string) []Modifier
}
