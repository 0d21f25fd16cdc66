package talent

// RollCategory identifies which kind of roll a bonus aggregation is for.
// The zero value (CategorySkillCheck) is the generic skill/stat check.
type RollCategory int

const (
	CategorySkillCheck RollCategory = iota
	CategoryAttackRoll
	CategoryDamageRoll
	CategoryDefenseRoll
)

// String returns the data-file name of the category.
func (c RollCategory) String() string {
	switch c {
	case CategoryAttackRoll:
		return "attack_roll"
	case CategoryDamageRoll:
		return "damage_roll"
	case CategoryDefenseRoll:
		return "defense_roll"
	case CategorySkillCheck:
		return "skill_check"
	default:
		return "unknown"
	}
}

// BonusTotals is the aggregated bonus bundle for one roll. All buckets are
// zero-initialized by construction, so every key is always "present".
type BonusTotals struct {
	AttackRoll  int
	DamageRoll  int
	DefenseRoll int
	SkillCheck  int
	StatCheck   int
}

// tagSet builds a membership set from the ordered context tags.
func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// CalculateBonuses computes the additive bonus bundle the given talents grant
// for one roll. Contributions stack across talents with no deduplication and
// no cap. Unknown talents and talents without modifiers contribute nothing.
//
// Bucket rules — a modifier feeds at most one bucket, gated by the requested
// category:
//   - damage_bonus: DamageRoll bucket, only under CategoryDamageRoll; no tag
//     requirement.
//   - contested_check: the active contested bucket (AttackRoll under
//     CategoryAttackRoll, DefenseRoll under CategoryDefenseRoll) when its
//     target stat appears in tags.
//   - skill_bonus: the active contested bucket under attack/defense, or the
//     SkillCheck bucket under CategorySkillCheck, when its target skill
//     appears in tags.
//   - stat_bonus: the StatCheck bucket under CategorySkillCheck only, when
//     its target stat appears in tags. Stat bonuses never leak into
//     contested or damage buckets.
//
// The same talent can therefore feed different buckets depending on which
// check is being made; a modifier that matches by tag but is requested under
// the wrong category contributes zero.
//
// Precondition: provider must be non-nil.
// Postcondition: Returns a fully zero-initialized BonusTotals with the
// applicable contributions summed; never errors.
func CalculateBonuses(provider Provider, talents []string, category RollCategory, tags []string) BonusTotals {
	var totals BonusTotals
	set := tagSet(tags)

	for _, name := range talents {
		for _, mod := range provider.Modifiers(name) {
			switch mod.Kind {
			case KindDamageBonus:
				if category == CategoryDamageRoll {
					totals.DamageRoll += mod.Bonus
				}

			case KindContestedCheck:
				if _, ok := set[mod.Target]; !ok {
					continue
				}
				switch category {
				case CategoryAttackRoll:
					totals.AttackRoll += mod.Bonus
				case CategoryDefenseRoll:
					totals.DefenseRoll += mod.Bonus
				}

			case KindSkillBonus:
				if _, ok := set[mod.Target]; !ok {
					continue
				}
				switch category {
				case CategoryAttackRoll:
					totals.AttackRoll += mod.Bonus
				case CategoryDefenseRoll:
					totals.DefenseRoll += mod.Bonus
				case CategorySkillCheck:
					totals.SkillCheck += mod.Bonus
				}

			case KindStatBonus:
				if _, ok := set[mod.Target]; !ok {
					continue
				}
				if category == CategorySkillCheck {
					totals.StatCheck += mod.Bonus
				}
			}
		}
	}
	return totals
}
