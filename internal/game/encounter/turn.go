package encounter

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulcrumworks/fulcrum/internal/game/character"
	"github.com/fulcrumworks/fulcrum/internal/game/effect"
	"github.com/fulcrumworks/fulcrum/internal/game/npc"
	"github.com/fulcrumworks/fulcrum/internal/game/rules"
	"github.com/fulcrumworks/fulcrum/internal/game/talent"
)

// TurnReport describes one resolved turn.
type TurnReport struct {
	EncounterID uuid.UUID
	ActorID     string
	Narrative   []string
	Resolved    bool // the encounter reached RESOLVED during this turn
}

// HandlePlayerAction resolves the submitted action for the actor at the turn
// pointer. Requests for unknown actors, out-of-turn actors, or malformed
// actions are rejected with the encounter state unchanged.
func (g *Engine) HandlePlayerAction(id uuid.UUID, actorID string, action Action) (TurnReport, error) {
	enc, err := g.get(id)
	if err != nil {
		return TurnReport{}, err
	}
	enc.mu.Lock()
	defer enc.mu.Unlock()

	actor, err := enc.checkTurn(actorID)
	if err != nil {
		return TurnReport{}, err
	}
	return g.resolveTurn(enc, actor, action)
}

// HandleNPCTurn runs the decision policy for the NPC at the turn pointer and
// resolves the chosen action.
func (g *Engine) HandleNPCTurn(id uuid.UUID) (TurnReport, error) {
	enc, err := g.get(id)
	if err != nil {
		return TurnReport{}, err
	}
	enc.mu.Lock()
	defer enc.mu.Unlock()

	if err := enc.checkActive(); err != nil {
		return TurnReport{}, err
	}
	actor := enc.currentActor()
	if actor.Kind != character.KindNPC {
		return TurnReport{}, fmt.Errorf("handling npc turn: %q is a player: %w", actor.ID, ErrNotYourTurn)
	}

	decision := npc.DetermineAction(actor, enc.roster(), g.abilityLookup())
	g.logger.Debug("npc decision",
		zap.String("encounter", enc.id.String()),
		zap.String("npc", actor.ID),
		zap.String("decision", decision.Kind.String()),
		zap.String("target", decision.TargetID),
		zap.String("reason", decision.Reason))

	action := Action{TargetID: decision.TargetID, Ability: decision.Ability}
	switch decision.Kind {
	case npc.Attack:
		action.Kind = ActionAttack
	case npc.UseAbility:
		action.Kind = ActionAbility
	default:
		action.Kind = ActionPass
	}
	return g.resolveTurn(enc, actor, action)
}

// abilityLookup adapts the effect catalog to the policy's view of abilities.
func (g *Engine) abilityLookup() npc.AbilityLookup {
	return func(name string) (npc.AbilityInfo, bool) {
		ability, ok := g.catalog.Get(name)
		if !ok {
			return npc.AbilityInfo{}, false
		}
		info := npc.AbilityInfo{Name: ability.Name, SelfTarget: ability.SelfTarget}
		for _, eff := range ability.Effects {
			if _, heals := eff.(effect.Heal); heals {
				info.Healing = true
			}
		}
		return info, true
	}
}

// checkActive validates that turns may be resolved. Caller holds mu.
func (e *Encounter) checkActive() error {
	switch e.status {
	case StatusResolved:
		return fmt.Errorf("encounter %s: %w", e.id, ErrEncounterResolved)
	case StatusPending:
		return fmt.Errorf("encounter %s: %w", e.id, ErrEncounterNotActive)
	}
	return nil
}

// checkTurn validates that actorID may act right now. Caller holds mu.
//
// Postcondition: On error the encounter is unchanged; on success the
// returned actor is the living participant at the turn pointer.
func (e *Encounter) checkTurn(actorID string) (*character.Sheet, error) {
	if err := e.checkActive(); err != nil {
		return nil, err
	}
	actor, ok := e.participants[actorID]
	if !ok {
		return nil, fmt.Errorf("actor %q: %w", actorID, ErrUnknownActor)
	}
	if current := e.currentActor(); current.ID != actorID {
		return nil, fmt.Errorf("actor %q (current turn: %q): %w", actorID, current.ID, ErrNotYourTurn)
	}
	return actor, nil
}

// resolveTurn executes the action, applies its result batch, advances the
// turn pointer past defeated participants, and resolves the encounter when
// only one side still stands. Caller holds enc.mu.
func (g *Engine) resolveTurn(enc *Encounter, actor *character.Sheet, action Action) (TurnReport, error) {
	logMark := len(enc.log)

	var (
		results []effect.Result
		err     error
	)
	switch action.Kind {
	case ActionPass:
		results = passResults(actor)
	case ActionAttack:
		results, err = g.resolveAttack(enc, actor, action.TargetID)
	case ActionAbility:
		results, err = g.resolveAbility(enc, actor, action)
	default:
		err = fmt.Errorf("unknown action kind %d", action.Kind)
	}
	if err != nil {
		return TurnReport{}, err
	}

	enc.apply(results)

	enc.advanceTurn()
	if enc.oneSided() {
		enc.status = StatusResolved
		if enc.sideAlive(character.KindPlayer) {
			enc.logf("the field is won")
		} else {
			enc.logf("the party falls")
		}
	}

	report := TurnReport{
		EncounterID: enc.id,
		ActorID:     actor.ID,
		Narrative:   append([]string(nil), enc.log[logMark:]...),
		Resolved:    enc.status == StatusResolved,
	}
	g.logger.Info("turn resolved",
		zap.String("encounter", enc.id.String()),
		zap.String("actor", actor.ID),
		zap.Int("round", enc.round),
		zap.Bool("resolved", report.Resolved))
	return report, nil
}

// passResults is the no-op turn. A staggered actor spends it recovering.
func passResults(actor *character.Sheet) []effect.Result {
	if actor.HasStatus(statusStaggered) {
		return []effect.Result{{
			TargetID:      actor.ID,
			StatusRemoved: statusStaggered,
			Narrative:     fmt.Sprintf("%s regains footing", actor.Name),
		}}
	}
	return []effect.Result{{
		TargetID:  actor.ID,
		Narrative: fmt.Sprintf("%s holds back", actor.Name),
	}}
}

// resolveAttack runs the weapon attack: a contested attack-versus-defense
// check biased by talent bonuses, then damage against the defender's DR on a
// win. A critical fumble staggers the attacker. Caller holds enc.mu.
func (g *Engine) resolveAttack(enc *Encounter, actor *character.Sheet, targetID string) ([]effect.Result, error) {
	target, ok := enc.participants[targetID]
	if !ok {
		return nil, fmt.Errorf("attack target %q: %w", targetID, ErrUnknownActor)
	}
	if target.ID == actor.ID {
		return nil, fmt.Errorf("attack target %q is the attacker: %w", targetID, ErrInvalidTarget)
	}
	if target.IsDefeated() {
		return nil, fmt.Errorf("attack target %q is already down: %w", targetID, ErrInvalidTarget)
	}

	atkDice, atkStat, atkSkill := g.unarmed, defaultAtkStat, defaultAtkSkill
	if weapon, armed := actor.Weapon(); armed {
		if weapon.DamageDice != "" {
			atkDice = weapon.DamageDice
		}
		if weapon.Stat != "" {
			atkStat = weapon.Stat
		}
		if weapon.Skill != "" {
			atkSkill = weapon.Skill
		}
	}
	atkTags := []string{atkSkill, atkStat}
	defTags := []string{defenseSkill, defenseStat}

	atkBonus := talent.CalculateBonuses(g.talents, actor.Talents, talent.CategoryAttackRoll, atkTags)
	defBonus := talent.CalculateBonuses(g.talents, target.Talents, talent.CategoryDefenseRoll, defTags)

	contest, err := rules.ResolveContest(
		rules.CheckInput{
			DiceExpr:  "1d20",
			StatScore: actor.StatScore(atkStat),
			SkillRank: actor.SkillRank(atkSkill),
			Bonus:     atkBonus.AttackRoll,
		},
		rules.CheckInput{
			DiceExpr:  "1d20",
			StatScore: target.StatScore(defenseStat),
			SkillRank: target.SkillRank(defenseSkill),
			Bonus:     defBonus.DefenseRoll,
		},
		g.src,
	)
	if err != nil {
		return nil, fmt.Errorf("resolving attack: %w", err)
	}

	if contest.Outcome == rules.DefenderWins {
		results := []effect.Result{{
			TargetID: target.ID,
			Narrative: fmt.Sprintf("%s misses %s (%d vs %d)",
				actor.Name, target.Name, contest.Attacker.FinalTotal, contest.Defender.FinalTotal),
		}}
		if contest.Grade == rules.CriticalFumble {
			results = append(results, effect.Result{
				TargetID:      actor.ID,
				StatusApplied: statusStaggered,
				Narrative:     fmt.Sprintf("%s overreaches and is %s", actor.Name, statusStaggered),
			})
		}
		return results, nil
	}

	dmgBonus := talent.CalculateBonuses(g.talents, actor.Talents, talent.CategoryDamageRoll, atkTags)
	extra := dmgBonus.DamageRoll
	switch contest.Grade {
	case rules.SolidHit:
		extra += 2
	case rules.CriticalHit:
		// A critical doubles the dice: roll the weapon expression again
		// and add its total.
		bonusRoll, err := g.roller.RollExpr(atkDice)
		if err != nil {
			return nil, fmt.Errorf("resolving critical damage: %w", err)
		}
		extra += bonusRoll.Total()
	}

	dmg, err := rules.ResolveDamage(rules.DamageInput{
		DiceExpr:  atkDice,
		StatScore: actor.StatScore(atkStat),
		Bonus:     extra,
		TargetDR:  target.DamageReduction(),
	}, g.src)
	if err != nil {
		return nil, fmt.Errorf("resolving attack damage: %w", err)
	}

	return []effect.Result{{
		TargetID: target.ID,
		HPDelta:  -dmg.FinalDamage,
		Narrative: fmt.Sprintf("%s lands a %s on %s for %d damage",
			actor.Name, contest.Grade, target.Name, dmg.FinalDamage),
	}}, nil
}

// resolveAbility dispatches the named ability's effects. Unknown abilities
// and invalid targets are rejected before any state changes. Caller holds
// enc.mu.
func (g *Engine) resolveAbility(enc *Encounter, actor *character.Sheet, action Action) ([]effect.Result, error) {
	ability, ok := g.catalog.Get(action.Ability)
	if !ok {
		return nil, fmt.Errorf("ability %q: %w", action.Ability, ErrUnknownAbility)
	}

	target := actor
	if !ability.SelfTarget {
		target, ok = enc.participants[action.TargetID]
		if !ok {
			return nil, fmt.Errorf("ability target %q: %w", action.TargetID, ErrUnknownActor)
		}
		if target.IsDefeated() {
			return nil, fmt.Errorf("ability target %q is already down: %w", action.TargetID, ErrInvalidTarget)
		}
	}

	results, err := g.dispatcher.ResolveAbility(ability, actor, target, enc.roster())
	if err != nil {
		return nil, fmt.Errorf("resolving ability: %w", err)
	}
	enc.logf("%s uses %s", actor.Name, ability.Name)
	return results, nil
}

// apply commits a whole result batch to participant state and narrates each
// entry into the encounter log. Effects were resolved without mutation, so
// the action lands atomically here. Caller holds mu.
func (e *Encounter) apply(results []effect.Result) {
	for _, r := range results {
		p, ok := e.participants[r.TargetID]
		if !ok {
			continue
		}
		switch {
		case r.HPDelta < 0:
			p.ApplyDamage(-r.HPDelta)
		case r.HPDelta > 0:
			p.Heal(r.HPDelta)
		}
		if r.StatusApplied != "" {
			p.AddStatus(r.StatusApplied)
		}
		if r.StatusRemoved != "" {
			p.RemoveStatus(r.StatusRemoved)
		}
		if r.MoveTo != nil {
			p.Pos = *r.MoveTo
		}
		if r.Narrative != "" {
			e.logf("%s", r.Narrative)
		}
		if p.IsDefeated() && r.HPDelta < 0 {
			e.logf("%s is defeated", p.Name)
		}
	}
}
