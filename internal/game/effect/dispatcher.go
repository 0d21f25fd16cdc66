package effect

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fulcrumworks/fulcrum/internal/game/character"
	"github.com/fulcrumworks/fulcrum/internal/game/dice"
	"github.com/fulcrumworks/fulcrum/internal/game/rules"
)

// Dispatcher resolves abilities and effects into Result batches. It holds no
// encounter state; the same Dispatcher serves every encounter.
type Dispatcher struct {
	source dice.Source
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher rolling from src.
//
// Precondition: src must be non-nil. A nil logger is replaced with a no-op
// logger.
func NewDispatcher(src dice.Source, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{source: src, logger: logger}
}

// ResolveAbility resolves every effect of ability in declared order and
// returns the combined result batch. Self-targeting abilities anchor on the
// source regardless of the requested target.
//
// Postcondition: On error no participant state has changed, because handlers
// only ever produce Result values; the caller applies or discards the whole
// batch.
func (d *Dispatcher) ResolveAbility(ability Ability, source, target *character.Sheet, participants []*character.Sheet) ([]Result, error) {
	anchor := target
	if ability.SelfTarget {
		anchor = source
	}
	var results []Result
	for _, eff := range ability.Effects {
		rs, err := d.resolve(eff, source, anchor, participants, ability.SelfTarget)
		if err != nil {
			return nil, fmt.Errorf("ability %q: %w", ability.Name, err)
		}
		results = append(results, rs...)
	}
	d.logger.Debug("ability resolved",
		zap.String("ability", ability.Name),
		zap.String("source", source.ID),
		zap.String("target", anchor.ID),
		zap.Int("results", len(results)))
	return results, nil
}

// Resolve resolves a single effect against target. Area effects anchor on
// the target and never include the source.
func (d *Dispatcher) Resolve(eff Effect, source, target *character.Sheet, participants []*character.Sheet) ([]Result, error) {
	return d.resolve(eff, source, target, participants, false)
}

func (d *Dispatcher) resolve(eff Effect, source, target *character.Sheet, participants []*character.Sheet, includeSource bool) ([]Result, error) {
	switch e := eff.(type) {
	case Damage:
		return d.damage(e, target)
	case Heal:
		return d.heal(e, target)
	case ApplyStatus:
		return []Result{{
			TargetID:      target.ID,
			StatusApplied: e.Status,
			Narrative:     fmt.Sprintf("%s is %s", target.Name, e.Status),
		}}, nil
	case ApplyStatusRoll:
		return d.statusWithSave(e, target)
	case MoveTarget:
		return d.push(source.Pos, target, e.Distance)
	case MoveSelf:
		return d.push(target.Pos, source, e.Distance)
	case AoEDamage:
		return d.aoeDamage(e, source, target.Pos, participants, includeSource)
	case AoEStatus:
		return d.aoeStatus(e, source, target.Pos, participants, includeSource)
	default:
		return nil, fmt.Errorf("unknown effect type %T", eff)
	}
}

func (d *Dispatcher) damage(e Damage, target *character.Sheet) ([]Result, error) {
	res, err := rules.ResolveDamage(rules.DamageInput{
		DiceExpr:   e.Dice,
		StatScore:  10, // ability damage carries no stat modifier
		DRModifier: e.DRModifier,
		TargetDR:   target.DamageReduction(),
	}, d.source)
	if err != nil {
		return nil, err
	}
	return []Result{{
		TargetID:  target.ID,
		HPDelta:   -res.FinalDamage,
		Narrative: fmt.Sprintf("%s takes %d damage", target.Name, res.FinalDamage),
	}}, nil
}

func (d *Dispatcher) heal(e Heal, target *character.Sheet) ([]Result, error) {
	roll, err := dice.RollExpr(e.Dice, d.source)
	if err != nil {
		return nil, err
	}
	amount := roll.Total()
	if amount < 0 {
		amount = 0
	}
	return []Result{{
		TargetID:  target.ID,
		HPDelta:   amount,
		Narrative: fmt.Sprintf("%s recovers %d HP", target.Name, amount),
	}}, nil
}

func (d *Dispatcher) statusWithSave(e ApplyStatusRoll, target *character.Sheet) ([]Result, error) {
	save, err := rules.ResolveCheck(rules.CheckInput{
		DiceExpr:  "1d20",
		StatScore: target.StatScore(e.SaveStat),
	}, d.source)
	if err != nil {
		return nil, err
	}
	if save.FinalTotal >= e.DC {
		return []Result{{
			TargetID:  target.ID,
			Narrative: fmt.Sprintf("%s shrugs off %s", target.Name, e.Status),
		}}, nil
	}
	return []Result{{
		TargetID:      target.ID,
		StatusApplied: e.Status,
		Narrative:     fmt.Sprintf("%s is %s", target.Name, e.Status),
	}}, nil
}

// push moves who Distance cells directly away from from. A who standing on
// the from cell has no direction and does not move.
func (d *Dispatcher) push(from character.Position, who *character.Sheet, dist int) ([]Result, error) {
	if dist < 0 {
		return nil, fmt.Errorf("negative move distance %d", dist)
	}
	dx, dy := sign(who.Pos.X-from.X), sign(who.Pos.Y-from.Y)
	if dx == 0 && dy == 0 {
		return []Result{{
			TargetID:  who.ID,
			Narrative: fmt.Sprintf("%s holds position", who.Name),
		}}, nil
	}
	dest := character.Position{X: who.Pos.X + dx*dist, Y: who.Pos.Y + dy*dist}
	return []Result{{
		TargetID:  who.ID,
		MoveTo:    &dest,
		Narrative: fmt.Sprintf("%s is forced back %d cells", who.Name, dist),
	}}, nil
}

func (d *Dispatcher) aoeDamage(e AoEDamage, source *character.Sheet, anchor character.Position, participants []*character.Sheet, includeSource bool) ([]Result, error) {
	targets := TargetsInArea(e.Area, source, anchor, participants, includeSource)
	var results []Result
	for _, t := range targets {
		rs, err := d.damage(Damage{Dice: e.Dice}, t)
		if err != nil {
			return nil, err
		}
		results = append(results, rs...)
	}
	return results, nil
}

func (d *Dispatcher) aoeStatus(e AoEStatus, source *character.Sheet, anchor character.Position, participants []*character.Sheet, includeSource bool) ([]Result, error) {
	if e.FriendlyOnly {
		includeSource = true
	}
	targets := TargetsInArea(e.Area, source, anchor, participants, includeSource)
	var results []Result
	for _, t := range targets {
		if e.FriendlyOnly && t.Kind != source.Kind {
			continue
		}
		results = append(results, Result{
			TargetID:      t.ID,
			StatusApplied: e.Status,
			Narrative:     fmt.Sprintf("%s is %s", t.Name, e.Status),
		})
	}
	return results, nil
}
