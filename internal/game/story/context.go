// Package story implements the reactive narrative event engine: an ordered,
// weighted rule table evaluated against a world-state snapshot, emitting
// story events for the narrative layer to render.
package story

// CombatOutcome labels the most recent combat result carried in the world
// snapshot.
type CombatOutcome string

const (
	OutcomeNone        CombatOutcome = ""
	OutcomeVictory     CombatOutcome = "VICTORY"
	OutcomeDefeat      CombatOutcome = "DEFEAT"
	OutcomeCriticalHit CombatOutcome = "CRITICAL_HIT"
)

// WorldStateContext is the immutable snapshot one evaluation pass reads.
// The surrounding application rebuilds it for every invocation; the engine
// never mutates it.
type WorldStateContext struct {
	PlayerReputation     int
	KingdomResourceLevel int // conceptually bounded 0-100
	LastCombatOutcome    CombatOutcome
	CurrentLocationTags  []string
}

// HasTag reports whether the current location carries the given tag.
func (c WorldStateContext) HasTag(tag string) bool {
	for _, t := range c.CurrentLocationTags {
		if t == tag {
			return true
		}
	}
	return false
}

// StoryEvent is one emitted narrative event. Events are produced, handed to
// the narrative layer, and never persisted by this engine.
type StoryEvent struct {
	Type      string
	Narrative string
	Payload   map[string]any
}
