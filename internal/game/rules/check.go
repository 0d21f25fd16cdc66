package rules

import (
	"fmt"

	"github.com/fulcrumworks/fulcrum/internal/game/dice"
)

// CheckInput carries everything needed to resolve one side of a check.
// StatScore and SkillRank are raw values; Bonus and Penalty are pre-aggregated
// (talent bonuses, situational penalties) and arrive as non-negative integers.
type CheckInput struct {
	DiceExpr  string // e.g. "1d20"
	StatScore int
	SkillRank int
	Bonus     int
	Penalty   int
}

// CheckResult is the full breakdown of a resolved check.
//
// Invariant: FinalTotal == Roll.Total() + TotalModifier.
type CheckResult struct {
	Roll          dice.RollResult
	StatMod       int
	SkillBonus    int
	TotalModifier int
	FinalTotal    int
}

// ResolveCheck rolls in.DiceExpr and applies the derived stat modifier, skill
// bonus, and pre-aggregated bonus/penalty.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a populated CheckResult, or an error if in.DiceExpr
// does not parse; no dice are rolled on error.
func ResolveCheck(in CheckInput, src dice.Source) (CheckResult, error) {
	expr, err := dice.Parse(in.DiceExpr)
	if err != nil {
		return CheckResult{}, fmt.Errorf("resolving check: %w", err)
	}
	roll, err := dice.Roll(expr, src)
	if err != nil {
		return CheckResult{}, fmt.Errorf("resolving check: %w", err)
	}

	statMod := StatModifier(in.StatScore)
	skillBonus := SkillBonus(in.SkillRank)
	totalMod := statMod + skillBonus + in.Bonus - in.Penalty

	return CheckResult{
		Roll:          roll,
		StatMod:       statMod,
		SkillBonus:    skillBonus,
		TotalModifier: totalMod,
		FinalTotal:    roll.Total() + totalMod,
	}, nil
}
