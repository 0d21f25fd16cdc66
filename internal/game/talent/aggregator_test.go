package talent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/fulcrumworks/fulcrum/internal/game/talent"
)

// reg builds a Registry from the given talents.
func reg(ts ...*talent.Talent) *talent.Registry {
	r := talent.NewRegistry()
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

func mightMastery() *talent.Talent {
	return &talent.Talent{
		Name: "Might Mastery",
		Modifiers: []talent.Modifier{
			{Kind: talent.KindStatBonus, Target: "Might", Bonus: 2},
			{Kind: talent.KindContestedCheck, Target: "Might", Bonus: 1},
		},
	}
}

func swordSpecialist() *talent.Talent {
	return &talent.Talent{
		Name: "Sword Specialist",
		Modifiers: []talent.Modifier{
			{Kind: talent.KindSkillBonus, Target: "Swords", Bonus: 1},
			{Kind: talent.KindDamageBonus, Bonus: 2},
		},
	}
}

func TestCalculateBonuses_UnknownTalentContributesNothing(t *testing.T) {
	r := reg()
	got := talent.CalculateBonuses(r, []string{"Never Heard Of It"}, talent.CategoryAttackRoll, []string{"Swords"})
	assert.Equal(t, talent.BonusTotals{}, got)
}

func TestCalculateBonuses_EmptyModifierListContributesNothing(t *testing.T) {
	r := reg(&talent.Talent{Name: "Hollow Talent"})
	got := talent.CalculateBonuses(r, []string{"Hollow Talent"}, talent.CategoryAttackRoll, []string{"Swords"})
	assert.Equal(t, talent.BonusTotals{}, got)
}

// TestCalculateBonuses_AttackScenario covers the canonical two-talent case:
// under an attack roll the contested-check and skill bonuses stack into the
// attack bucket, while the damage bonus stays out of it.
func TestCalculateBonuses_AttackScenario(t *testing.T) {
	r := reg(mightMastery(), swordSpecialist())
	talents := []string{"Might Mastery", "Sword Specialist"}
	tags := []string{"Swords", "Melee", "Might"}

	got := talent.CalculateBonuses(r, talents, talent.CategoryAttackRoll, tags)
	assert.Equal(t, 2, got.AttackRoll, "contested_check(Might) + skill_bonus(Swords)")
	assert.Equal(t, 0, got.DamageRoll, "damage bonus requires a damage roll")
	assert.Equal(t, 0, got.DefenseRoll)
}

func TestCalculateBonuses_DamageScenario(t *testing.T) {
	r := reg(mightMastery(), swordSpecialist())
	talents := []string{"Might Mastery", "Sword Specialist"}
	tags := []string{"Swords", "Melee", "Might"}

	got := talent.CalculateBonuses(r, talents, talent.CategoryDamageRoll, tags)
	assert.Equal(t, 2, got.DamageRoll)
	assert.Equal(t, 0, got.AttackRoll)
}

func TestCalculateBonuses_TagMismatchContributesNothing(t *testing.T) {
	r := reg(mightMastery(), swordSpecialist())
	talents := []string{"Might Mastery", "Sword Specialist"}

	got := talent.CalculateBonuses(r, talents, talent.CategoryAttackRoll, []string{"Bows", "Ranged", "Finesse"})
	assert.Equal(t, 0, got.AttackRoll)
}

func TestCalculateBonuses_DefenseUsesContestedAndSkill(t *testing.T) {
	r := reg(
		&talent.Talent{Name: "Iron Guard", Modifiers: []talent.Modifier{
			{Kind: talent.KindContestedCheck, Target: "Might", Bonus: 1},
			{Kind: talent.KindSkillBonus, Target: "Heavy Armor", Bonus: 2},
		}},
	)
	got := talent.CalculateBonuses(r, []string{"Iron Guard"}, talent.CategoryDefenseRoll, []string{"Might", "Heavy Armor"})
	assert.Equal(t, 3, got.DefenseRoll)
	assert.Equal(t, 0, got.AttackRoll)
}

func TestCalculateBonuses_SkillCheckBuckets(t *testing.T) {
	r := reg(
		&talent.Talent{Name: "Keen Mind", Modifiers: []talent.Modifier{
			{Kind: talent.KindStatBonus, Target: "Logic", Bonus: 2},
			{Kind: talent.KindSkillBonus, Target: "Investigation", Bonus: 1},
		}},
	)
	got := talent.CalculateBonuses(r, []string{"Keen Mind"}, talent.CategorySkillCheck, []string{"Logic", "Investigation"})
	assert.Equal(t, 2, got.StatCheck)
	assert.Equal(t, 1, got.SkillCheck)
	assert.Equal(t, 0, got.AttackRoll)
}

// TestCalculateBonuses_Additivity verifies bonuses stack exactly with no cap:
// two talents granting the same bucket sum.
func TestCalculateBonuses_Additivity(t *testing.T) {
	r := reg(
		&talent.Talent{Name: "A", Modifiers: []talent.Modifier{
			{Kind: talent.KindContestedCheck, Target: "Might", Bonus: 1},
		}},
		&talent.Talent{Name: "B", Modifiers: []talent.Modifier{
			{Kind: talent.KindContestedCheck, Target: "Might", Bonus: 1},
		}},
	)
	got := talent.CalculateBonuses(r, []string{"A", "B"}, talent.CategoryAttackRoll, []string{"Might"})
	assert.Equal(t, 2, got.AttackRoll)
}

// TestCalculateBonuses_Property_StatBonusNeverFeedsContestedBuckets pins the
// decision that stat bonuses apply only to generic checks: whatever the
// category and tags, a stat_bonus modifier never contributes to the attack,
// defense, or damage buckets.
func TestCalculateBonuses_Property_StatBonusNeverFeedsContestedBuckets(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		target := rapid.SampledFrom([]string{"Might", "Reflexes", "Logic"}).Draw(rt, "target")
		bonus := rapid.IntRange(-5, 5).Draw(rt, "bonus")
		category := rapid.SampledFrom([]talent.RollCategory{
			talent.CategoryAttackRoll,
			talent.CategoryDamageRoll,
			talent.CategoryDefenseRoll,
			talent.CategorySkillCheck,
		}).Draw(rt, "category")
		tags := rapid.SliceOfN(rapid.SampledFrom([]string{"Might", "Reflexes", "Logic", "Swords"}), 0, 4).Draw(rt, "tags")

		r := reg(&talent.Talent{Name: "X", Modifiers: []talent.Modifier{
			{Kind: talent.KindStatBonus, Target: target, Bonus: bonus},
		}})
		got := talent.CalculateBonuses(r, []string{"X"}, category, tags)
		assert.Equal(rt, 0, got.AttackRoll)
		assert.Equal(rt, 0, got.DefenseRoll)
		assert.Equal(rt, 0, got.DamageRoll)
	})
}

// TestCalculateBonuses_Property_CategoryIsolation verifies that a modifier
// requested under a non-applicable category contributes zero everywhere.
func TestCalculateBonuses_Property_CategoryIsolation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bonus := rapid.IntRange(1, 5).Draw(rt, "bonus")
		r := reg(&talent.Talent{Name: "D", Modifiers: []talent.Modifier{
			{Kind: talent.KindDamageBonus, Bonus: bonus},
		}})
		category := rapid.SampledFrom([]talent.RollCategory{
			talent.CategoryAttackRoll,
			talent.CategoryDefenseRoll,
			talent.CategorySkillCheck,
		}).Draw(rt, "category")

		got := talent.CalculateBonuses(r, []string{"D"}, category, nil)
		assert.Equal(rt, talent.BonusTotals{}, got)
	})
}
