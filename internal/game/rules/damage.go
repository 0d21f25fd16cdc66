package rules

import (
	"fmt"

	"github.com/fulcrumworks/fulcrum/internal/game/dice"
)

// DamageInput carries the parameters for one damage resolution.
// DRModifier is the attacker's armor-piercing adjustment; TargetDR is the
// defender's total damage reduction from equipped items.
type DamageInput struct {
	DiceExpr   string // e.g. "1d8", or "0" for no-dice effects
	StatScore  int    // attacking stat; its derived modifier is added
	Bonus      int    // pre-aggregated damage bonuses (talents, abilities)
	Penalty    int
	DRModifier int // subtracted from TargetDR, floored at 0
	TargetDR   int
}

// DamageResult is the full breakdown of a damage resolution.
//
// Invariant: FinalDamage >= 0.
// Invariant: FinalDamage == max(0, Subtotal - max(0, TargetDR - DRModifier)).
type DamageResult struct {
	Roll             dice.RollResult
	StatBonus        int
	MiscBonus        int // net Bonus - Penalty
	Subtotal         int
	ReductionApplied int
	FinalDamage      int
}

// ResolveDamage rolls the damage dice and applies the stat bonus, misc
// bonuses, and the defender's damage reduction. Reduction never takes damage
// below zero, and an attacker's DRModifier never turns reduction negative.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a populated DamageResult with FinalDamage >= 0, or
// an error if in.DiceExpr is malformed; no dice are rolled on error.
func ResolveDamage(in DamageInput, src dice.Source) (DamageResult, error) {
	expr, err := dice.Parse(in.DiceExpr)
	if err != nil {
		return DamageResult{}, fmt.Errorf("resolving damage: %w", err)
	}
	roll, err := dice.Roll(expr, src)
	if err != nil {
		return DamageResult{}, fmt.Errorf("resolving damage: %w", err)
	}

	statBonus := StatModifier(in.StatScore)
	miscBonus := in.Bonus - in.Penalty
	subtotal := roll.Total() + statBonus + miscBonus

	effectiveDR := in.TargetDR - in.DRModifier
	if effectiveDR < 0 {
		effectiveDR = 0
	}
	applied := effectiveDR
	if applied > subtotal {
		applied = subtotal
	}
	final := subtotal - effectiveDR
	if final < 0 {
		final = 0
	}

	return DamageResult{
		Roll:             roll,
		StatBonus:        statBonus,
		MiscBonus:        miscBonus,
		Subtotal:         subtotal,
		ReductionApplied: applied,
		FinalDamage:      final,
	}, nil
}
