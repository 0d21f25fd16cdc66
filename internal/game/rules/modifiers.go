// Package rules implements stateless check, contest, and damage resolution
// for the Fulcrum ruleset. Every function here is pure given a dice.Source;
// reference data (stat taxonomies, item tables) lives outside this package
// and arrives as plain integers.
package rules

// StatModifier derives the attribute modifier from a raw stat score.
// Formula: floor((score - 10) / 2).
//
// Postcondition: Returns floor((score - 10) / 2).
func StatModifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// SkillBonus derives the mastery-tier bonus from a skill rank.
// Formula: floor(rank / 3); negative ranks are treated as 0.
//
// Postcondition: Returns >= 0.
func SkillBonus(rank int) int {
	if rank < 0 {
		return 0
	}
	return rank / 3
}
