package story

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Condition is one rule's predicate over the world snapshot. Every set field
// must hold for the condition to pass; an empty Condition always passes.
type Condition struct {
	ReputationBelow *int     `yaml:"reputation_below"` // PlayerReputation < value
	ReputationAbove *int     `yaml:"reputation_above"` // PlayerReputation > value
	ResourceBelow   *int     `yaml:"resource_below"`   // KingdomResourceLevel < value
	RequiredTags    []string `yaml:"required_tags"`    // all must be present
	Outcome         string   `yaml:"outcome"`          // LastCombatOutcome equals
	Lua             string   `yaml:"lua"`              // optional script predicate
}

// Rule is one entry of the ordered event table. Rules are evaluated in table
// order; every rule whose condition holds and whose probability draw passes
// emits its event.
type Rule struct {
	EventID   string         `yaml:"event"`
	Chance    float64        `yaml:"chance"`
	When      Condition      `yaml:"when"`
	Narrative string         `yaml:"narrative"`
	Payload   map[string]any `yaml:"payload"`
}

// holds evaluates the structured (non-Lua) part of the condition.
func (c Condition) holds(ctx WorldStateContext) bool {
	if c.ReputationBelow != nil && ctx.PlayerReputation >= *c.ReputationBelow {
		return false
	}
	if c.ReputationAbove != nil && ctx.PlayerReputation <= *c.ReputationAbove {
		return false
	}
	if c.ResourceBelow != nil && ctx.KingdomResourceLevel >= *c.ResourceBelow {
		return false
	}
	for _, tag := range c.RequiredTags {
		if !ctx.HasTag(tag) {
			return false
		}
	}
	if c.Outcome != "" && ctx.LastCombatOutcome != CombatOutcome(c.Outcome) {
		return false
	}
	return true
}

// event materializes the rule's StoryEvent.
func (r Rule) event() StoryEvent {
	return StoryEvent{Type: r.EventID, Narrative: r.Narrative, Payload: r.Payload}
}

// RuleSet is the loadable event table plus its ambient fallback.
type RuleSet struct {
	Rules   []Rule      `yaml:"rules"`
	Ambient *StoryEvent `yaml:"ambient"`
}

type ambientEntry struct {
	Event     string         `yaml:"event"`
	Narrative string         `yaml:"narrative"`
	Payload   map[string]any `yaml:"payload"`
}

type ruleFile struct {
	Rules   []Rule        `yaml:"rules"`
	Ambient *ambientEntry `yaml:"ambient"`
}

// LoadRules reads an event rule table from a YAML file. Table order in the
// file is evaluation order. Unknown fields and out-of-range chances are
// rejected whole.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading event rules: %w", err)
	}

	var file ruleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return RuleSet{}, fmt.Errorf("parsing event rules %s: %w", path, err)
	}

	for i, r := range file.Rules {
		if r.EventID == "" {
			return RuleSet{}, fmt.Errorf("event rules %s: rule %d has no event id", path, i)
		}
		if r.Chance < 0 || r.Chance > 1 {
			return RuleSet{}, fmt.Errorf("event rules %s: rule %q chance %v out of [0,1]", path, r.EventID, r.Chance)
		}
	}

	set := RuleSet{Rules: file.Rules}
	if file.Ambient != nil {
		if file.Ambient.Event == "" {
			return RuleSet{}, fmt.Errorf("event rules %s: ambient entry has no event id", path)
		}
		set.Ambient = &StoryEvent{
			Type:      file.Ambient.Event,
			Narrative: file.Ambient.Narrative,
			Payload:   file.Ambient.Payload,
		}
	}
	return set, nil
}

func intPtr(v int) *int { return &v }

// DefaultRules is the built-in event table, used when no data file is
// supplied. Ordering follows impact: the defeat acknowledgement first, then
// combat morale, ambush, and the resource hooks.
func DefaultRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			{
				EventID: "PLAYER_DEFEATED",
				Chance:  1.0,
				When:    Condition{Outcome: string(OutcomeDefeat)},
				Narrative: "Your recent defeat resonates through the region; " +
					"rival factions will be emboldened.",
				Payload: map[string]any{"global_morale_debuff": 5},
			},
			{
				EventID: "CRITICAL_HIT_MORALE_BOOST",
				Chance:  0.5,
				When: Condition{
					Outcome:         string(OutcomeCriticalHit),
					ReputationAbove: intPtr(10),
				},
				Narrative: "Your devastating blow inspires nearby allies! " +
					"Word of your prowess spreads.",
				Payload: map[string]any{"reputation_bonus": 2, "party_morale_boost": 10},
			},
			{
				EventID: "BANDIT_AMBUSH",
				Chance:  0.35,
				When: Condition{
					ReputationBelow: intPtr(-5),
					RequiredTags:    []string{"forest"},
				},
				Narrative: "A group of disgruntled bandits emerges from the shadows, " +
					"intent on collecting the bounty on your head.",
				Payload: map[string]any{"npc_type": "bandit_leader", "count": 3},
			},
			{
				EventID: "RESOURCE_SHORTAGE_QUEST",
				Chance:  0.25,
				When: Condition{
					ResourceBelow: intPtr(10),
					RequiredTags:  []string{"town"},
				},
				Narrative: "The townsfolk are desperate for supplies. " +
					"A merchant approaches with an urgent request.",
				Payload: map[string]any{"quest_id": "supply_run_001", "reward_gold": 50},
			},
			{
				EventID: "SILVER_DEPOSIT_FOUND",
				Chance:  0.15,
				When: Condition{
					ResourceBelow: intPtr(20),
					RequiredTags:  []string{"mine"},
				},
				Narrative: "You discover a promising, unexploited vein of silver ore. " +
					"Extracting it requires finesse.",
				Payload: map[string]any{"skill_check": "Mining", "difficulty": 15},
			},
		},
		Ambient: &StoryEvent{
			Type:      "AMBIENT_FLAVOR_NEUTRAL",
			Narrative: "The immediate area is quiet, offering a moment of respite.",
			Payload:   map[string]any{"player_stamina_regenerate": 1},
		},
	}
}
