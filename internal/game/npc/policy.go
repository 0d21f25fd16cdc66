// Package npc implements the deterministic NPC decision policy.
//
// Decisions are pure over the encounter snapshot: the same NPC state and
// participant list always produce the same decision. Randomness happens
// later, during resolution of the chosen action, never while choosing it.
package npc

import (
	"github.com/fulcrumworks/fulcrum/internal/game/character"
)

// Behavior tags recognized by the policy.
const (
	BehaviorCowardly       = "cowardly"
	BehaviorTargetsWeakest = "targets_weakest"
)

// StatusStaggered forces an NPC to spend its turn recovering.
const StatusStaggered = "Staggered"

// DecisionKind is the closed set of decisions the policy produces.
type DecisionKind int

const (
	// Pass is the no-op decision: the NPC waits or recovers.
	Pass DecisionKind = iota
	// Attack is a weapon attack against TargetID.
	Attack
	// UseAbility invokes Ability against TargetID (the NPC itself for
	// self-targeting abilities).
	UseAbility
)

// String returns a human-readable decision label.
func (k DecisionKind) String() string {
	switch k {
	case Attack:
		return "attack"
	case UseAbility:
		return "ability"
	default:
		return "pass"
	}
}

// Decision is the policy's chosen action for one NPC turn.
type Decision struct {
	Kind     DecisionKind
	TargetID string
	Ability  string
	Reason   string // short narration hint: "staggered", "cowering", ...
}

// AbilityInfo is the slice of the ability catalog the policy needs: whether
// a named ability heals and whether it targets the user.
type AbilityInfo struct {
	Name       string
	SelfTarget bool
	Healing    bool
}

// AbilityLookup resolves an ability name to its decision-relevant info.
// Unknown names return ok=false and the policy skips them.
type AbilityLookup func(name string) (AbilityInfo, bool)

// DetermineAction chooses the NPC's action for this turn. The rules run in
// fixed priority order:
//
//  1. A Staggered NPC passes, spending the turn recovering.
//  2. Below half HP, the first held self-targeting healing ability is used.
//  3. A cowardly NPC below 30% HP passes (cowers) rather than engage.
//  4. Otherwise attack: a targets_weakest NPC picks the living enemy with
//     the lowest current HP; anyone else picks the nearest living enemy.
//     Ties (equal HP, equal distance) go to the earlier participant in
//     snapshot order, keeping the choice reproducible.
//  5. With no living enemy, pass.
//
// Abilities are considered in the NPC's declared ability order.
//
// Precondition: self must be non-nil; lookup must be non-nil.
// Postcondition: Returns a valid decision; Kind == Pass only when no other
// action is legal or the NPC is staggered/cowering.
func DetermineAction(self *character.Sheet, participants []*character.Sheet, lookup AbilityLookup) Decision {
	if self.HasStatus(StatusStaggered) {
		return Decision{Kind: Pass, Reason: "staggered"}
	}

	if self.CurrentHP*2 < self.MaxHP {
		for _, name := range self.Abilities {
			info, ok := lookup(name)
			if !ok || !info.Healing || !info.SelfTarget {
				continue
			}
			return Decision{Kind: UseAbility, Ability: name, TargetID: self.ID, Reason: "wounded"}
		}
	}

	if self.HasBehavior(BehaviorCowardly) && self.CurrentHP*10 < self.MaxHP*3 {
		return Decision{Kind: Pass, Reason: "cowering"}
	}

	target := selectTarget(self, participants)
	if target == nil {
		return Decision{Kind: Pass, Reason: "no target"}
	}
	return Decision{Kind: Attack, TargetID: target.ID}
}

// selectTarget picks the NPC's victim: lowest current HP for targets_weakest,
// nearest otherwise. Returns nil when no living enemy remains.
func selectTarget(self *character.Sheet, participants []*character.Sheet) *character.Sheet {
	var best *character.Sheet
	weakest := self.HasBehavior(BehaviorTargetsWeakest)
	for _, p := range participants {
		if p.ID == self.ID || p.Kind == self.Kind || p.IsDefeated() {
			continue
		}
		if best == nil {
			best = p
			continue
		}
		if weakest {
			if p.CurrentHP < best.CurrentHP {
				best = p
			}
			continue
		}
		if chebyshev(self.Pos, p.Pos) < chebyshev(self.Pos, best.Pos) {
			best = p
		}
	}
	return best
}

// chebyshev is the grid distance used throughout combat.
func chebyshev(a, b character.Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
