// Package effect implements ability effect resolution: a closed set of
// effect variants, area-of-effect target selection, and a dispatcher that
// turns effects into structured outcomes.
//
// Handlers never mutate participant state. They return Result values, and
// the encounter engine applies a whole action's results as one batch, so an
// action is always applied atomically or not at all.
package effect

import "github.com/fulcrumworks/fulcrum/internal/game/character"

// Effect is the sealed interface over the effect variants below. The
// dispatcher switches exhaustively on the concrete types; adding a variant
// without a handler is a compile-visible change in one place.
type Effect interface {
	isEffect()
}

// Damage deals direct dice damage to the target, reduced by the target's DR.
type Damage struct {
	Dice       string // e.g. "1d6", "2d4"
	DRModifier int    // armor-piercing adjustment
}

// Heal restores dice HP to the target, clamped at the target's MaxHP.
type Heal struct {
	Dice string
}

// ApplyStatus applies a status effect with no save.
type ApplyStatus struct {
	Status string
}

// ApplyStatusRoll applies a status effect unless the target saves with a
// d20 + stat modifier roll against DC.
type ApplyStatusRoll struct {
	Status   string
	SaveStat string
	DC       int
}

// MoveTarget pushes the target Distance cells along the line from the source
// to the target (directly away from the source).
type MoveTarget struct {
	Distance int
}

// MoveSelf moves the source Distance cells directly away from the anchor
// target (a repel step).
type MoveSelf struct {
	Distance int
}

// AoEDamage deals dice damage to every live participant inside the area
// anchored on the target.
type AoEDamage struct {
	Dice string
	Area Area
}

// AoEStatus applies a status to every live participant inside the area
// anchored on the target. When FriendlyOnly is set, only participants of the
// source's kind (the source included) are affected.
type AoEStatus struct {
	Status       string
	Area         Area
	FriendlyOnly bool
}

func (Damage) isEffect()          {}
func (Heal) isEffect()            {}
func (ApplyStatus) isEffect()     {}
func (ApplyStatusRoll) isEffect() {}
func (MoveTarget) isEffect()      {}
func (MoveSelf) isEffect()        {}
func (AoEDamage) isEffect()       {}
func (AoEStatus) isEffect()       {}

// Ability is a named, usable action carrying one or more effects.
// SelfTarget abilities ignore the requested target and anchor on the source.
type Ability struct {
	Name       string
	SelfTarget bool
	Effects    []Effect
}

// Result is one proposed state change produced by effect resolution.
// HPDelta is negative for damage and positive for healing. A nil MoveTo
// means no movement.
type Result struct {
	TargetID      string
	HPDelta       int
	StatusApplied string // empty when no status change
	StatusRemoved string // empty when no status clears
	MoveTo        *character.Position
	Narrative     string
}
