// Package character defines the actor sheet consumed by the combat engine.
//
// Stat and skill names come from an externally supplied taxonomy; lookups for
// names a sheet does not carry fall back to neutral defaults rather than
// failing, so incomplete reference data never halts combat.
package character

// Kind distinguishes player actors from NPC actors.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// String returns "player" or "npc".
func (k Kind) String() string {
	if k == KindNPC {
		return "npc"
	}
	return "player"
}

// Item is a piece of equipment held in a named slot.
// DamageReduction contributes to the wearer's total DR.
type Item struct {
	Name            string
	Slot            string // "weapon", "armor", "trinket", ...
	DamageReduction int
	DamageDice      string // weapon damage expression, e.g. "1d8"; empty for non-weapons
	Stat            string // governing stat for weapon/armor checks
	Skill           string // governing skill for weapon/armor checks
}

// Position is a grid coordinate on the encounter map.
type Position struct {
	X int
	Y int
}

// Sheet is one actor's combat-relevant state. The encounter engine operates
// on ephemeral copies; the persistent record lives in the store.
type Sheet struct {
	ID           string
	Kind         Kind
	Name         string
	Stats        map[string]int // stat name -> score
	Skills       map[string]int // skill name -> rank
	Talents      []string
	Equipment    []Item
	Abilities    []string // ability names this actor can use
	BehaviorTags []string // NPC decision hints: "cowardly", "targets_weakest", ...
	MaxHP        int
	CurrentHP    int
	Statuses     []string
	Pos          Position
}

// StatScore returns the score for the named stat, or 10 (the neutral
// baseline) when the sheet does not carry it.
func (s *Sheet) StatScore(name string) int {
	if v, ok := s.Stats[name]; ok {
		return v
	}
	return 10
}

// SkillRank returns the rank for the named skill, or 0 when untrained.
func (s *Sheet) SkillRank(name string) int {
	return s.Skills[name]
}

// IsDefeated reports whether the actor is out of the fight.
//
// Postcondition: Returns true iff CurrentHP <= 0.
func (s *Sheet) IsDefeated() bool { return s.CurrentHP <= 0 }

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0.
func (s *Sheet) ApplyDamage(amount int) {
	s.CurrentHP -= amount
	if s.CurrentHP < 0 {
		s.CurrentHP = 0
	}
}

// Heal raises CurrentHP by amount, clamped at MaxHP.
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP <= MaxHP.
func (s *Sheet) Heal(amount int) {
	s.CurrentHP += amount
	if s.CurrentHP > s.MaxHP {
		s.CurrentHP = s.MaxHP
	}
}

// HasStatus reports whether the named status effect is active.
func (s *Sheet) HasStatus(status string) bool {
	for _, st := range s.Statuses {
		if st == status {
			return true
		}
	}
	return false
}

// AddStatus applies the named status effect. Statuses do not stack; applying
// an already-active status is a no-op.
func (s *Sheet) AddStatus(status string) {
	if s.HasStatus(status) {
		return
	}
	s.Statuses = append(s.Statuses, status)
}

// RemoveStatus clears the named status effect if active.
func (s *Sheet) RemoveStatus(status string) {
	for i, st := range s.Statuses {
		if st == status {
			s.Statuses = append(s.Statuses[:i], s.Statuses[i+1:]...)
			return
		}
	}
}

// HasAbility reports whether the actor can use the named ability.
func (s *Sheet) HasAbility(name string) bool {
	for _, a := range s.Abilities {
		if a == name {
			return true
		}
	}
	return false
}

// HasBehavior reports whether the actor carries the named behavior tag.
func (s *Sheet) HasBehavior(tag string) bool {
	for _, t := range s.BehaviorTags {
		if t == tag {
			return true
		}
	}
	return false
}

// DamageReduction returns the total DR granted by equipped items.
//
// Postcondition: Returns >= 0 when no item carries negative DR.
func (s *Sheet) DamageReduction() int {
	total := 0
	for _, it := range s.Equipment {
		total += it.DamageReduction
	}
	return total
}

// Weapon returns the first equipped item in the weapon slot, or (Item{}, false).
func (s *Sheet) Weapon() (Item, bool) {
	for _, it := range s.Equipment {
		if it.Slot == "weapon" {
			return it, true
		}
	}
	return Item{}, false
}

// Armor returns the first equipped item in the armor slot, or (Item{}, false).
func (s *Sheet) Armor() (Item, bool) {
	for _, it := range s.Equipment {
		if it.Slot == "armor" {
			return it, true
		}
	}
	return Item{}, false
}

// Clone returns a deep copy of the sheet for encounter-scoped mutation, so
// damage applied during combat never aliases the caller's record.
func (s *Sheet) Clone() *Sheet {
	cp := *s
	cp.Stats = make(map[string]int, len(s.Stats))
	for k, v := range s.Stats {
		cp.Stats[k] = v
	}
	cp.Skills = make(map[string]int, len(s.Skills))
	for k, v := range s.Skills {
		cp.Skills[k] = v
	}
	cp.Talents = append([]string(nil), s.Talents...)
	cp.Equipment = append([]Item(nil), s.Equipment...)
	cp.Abilities = append([]string(nil), s.Abilities...)
	cp.BehaviorTags = append([]string(nil), s.BehaviorTags...)
	cp.Statuses = append([]string(nil), s.Statuses...)
	return &cp
}
