package rules

import (
	"fmt"

	"github.com/fulcrumworks/fulcrum/internal/game/dice"
)

// ContestOutcome identifies which side won a contested check.
type ContestOutcome int

const (
	// DefenderWins is the zero value: ties always go to the defender, so a
	// zero margin resolves here.
	DefenderWins ContestOutcome = iota
	AttackerWins
)

// String returns a human-readable outcome label.
func (o ContestOutcome) String() string {
	switch o {
	case AttackerWins:
		return "attacker wins"
	case DefenderWins:
		return "defender wins"
	default:
		return "unknown"
	}
}

// Grade refines a contest outcome with the drama of the raw attacker d20.
type Grade int

const (
	Miss Grade = iota
	Hit            // margin > 0
	SolidHit       // margin >= 5
	CriticalHit    // natural 20
	CriticalFumble // natural 1
)

// String returns a human-readable grade label.
func (g Grade) String() string {
	switch g {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case SolidHit:
		return "solid hit"
	case CriticalHit:
		return "critical hit"
	case CriticalFumble:
		return "critical fumble"
	default:
		return "unknown"
	}
}

// ContestResult holds both sides' breakdowns plus the adjudicated result.
//
// Invariant: Margin == Attacker.FinalTotal - Defender.FinalTotal.
// Invariant: Outcome == AttackerWins iff Margin > 0 (defender wins ties).
type ContestResult struct {
	Attacker CheckResult
	Defender CheckResult
	Outcome  ContestOutcome
	Grade    Grade
	Margin   int
}

// GradeFor determines the contest grade from the attacker's raw first die and
// the final margin. A natural 1 is always a critical fumble and a natural 20
// always a critical hit, regardless of margin; otherwise the margin decides.
//
// Postcondition: Returns one of the five Grade values.
func GradeFor(attackerDie, margin int) Grade {
	switch {
	case attackerDie == 1:
		return CriticalFumble
	case attackerDie == 20:
		return CriticalHit
	case margin >= 5:
		return SolidHit
	case margin > 0:
		return Hit
	default:
		return Miss
	}
}

// ResolveContest resolves attacker-versus-defender. Both sides roll their own
// dice; the higher final total wins, and an equal total is awarded to the
// defender. This defender-biased tie rule is deliberate and load-bearing.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a populated ContestResult, or an error if either
// side's dice expression is malformed; no dice are rolled on error.
func ResolveContest(attacker, defender CheckInput, src dice.Source) (ContestResult, error) {
	// Validate both expressions before rolling anything, so a malformed
	// defender input cannot leave a half-resolved contest.
	atkExpr, err := dice.Parse(attacker.DiceExpr)
	if err != nil {
		return ContestResult{}, fmt.Errorf("resolving contest (attacker): %w", err)
	}
	defExpr, err := dice.Parse(defender.DiceExpr)
	if err != nil {
		return ContestResult{}, fmt.Errorf("resolving contest (defender): %w", err)
	}

	atk := resolveParsed(atkExpr, attacker, src)
	def := resolveParsed(defExpr, defender, src)

	margin := atk.FinalTotal - def.FinalTotal
	outcome := DefenderWins
	if margin > 0 {
		outcome = AttackerWins
	}

	attackerDie := 0
	if len(atk.Roll.Dice) > 0 {
		attackerDie = atk.Roll.Dice[0]
	}

	return ContestResult{
		Attacker: atk,
		Defender: def,
		Outcome:  outcome,
		Grade:    GradeFor(attackerDie, margin),
		Margin:   margin,
	}, nil
}

// resolveParsed applies modifiers to an already-parsed expression.
func resolveParsed(expr dice.Expression, in CheckInput, src dice.Source) CheckResult {
	roll, _ := dice.Roll(expr, src)
	statMod := StatModifier(in.StatScore)
	skillBonus := SkillBonus(in.SkillRank)
	totalMod := statMod + skillBonus + in.Bonus - in.Penalty
	return CheckResult{
		Roll:          roll,
		StatMod:       statMod,
		SkillBonus:    skillBonus,
		TotalModifier: totalMod,
		FinalTotal:    roll.Total() + totalMod,
	}
}
