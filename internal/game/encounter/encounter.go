// Package encounter implements the combat encounter state machine and the
// concurrent engine that hosts many encounters at once.
//
// An encounter moves PENDING -> ACTIVE -> RESOLVED. Turn resolution for one
// encounter is serialized behind a per-encounter mutex; distinct encounters
// share nothing mutable and run fully in parallel.
package encounter

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fulcrumworks/fulcrum/internal/game/character"
)

// Status is the encounter lifecycle state.
type Status int

const (
	// StatusPending: participants assembling, no turn order yet.
	StatusPending Status = iota
	// StatusActive: turn order fixed, turns cycling.
	StatusActive
	// StatusResolved: terminal. One side has no living participants, or an
	// explicit end was signaled.
	StatusResolved
)

// String returns the lifecycle state name.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusResolved:
		return "RESOLVED"
	default:
		return "PENDING"
	}
}

// ActionKind is the closed set of player-submittable actions.
type ActionKind int

const (
	// ActionPass ends the turn without acting. A staggered actor recovers.
	ActionPass ActionKind = iota
	// ActionAttack is a weapon attack against TargetID.
	ActionAttack
	// ActionAbility invokes the named ability, anchored on TargetID unless
	// the ability is self-targeting.
	ActionAbility
)

// Action is one submitted turn action.
type Action struct {
	Kind     ActionKind
	TargetID string
	Ability  string
}

// Encounter is the live state of one combat. All fields are guarded by mu;
// the engine never hands the struct out, only Snapshot values.
type Encounter struct {
	mu sync.Mutex

	id       uuid.UUID
	location string
	status   Status

	participants map[string]*character.Sheet // encounter-scoped clones
	joined       []string                    // join order, for PENDING listing

	order      []string       // initiative order, fixed at activation
	initiative map[string]int // actor ID -> initiative total
	turnIndex  int
	round      int

	log []string
}

// ParticipantView is one participant's public state inside a Snapshot.
type ParticipantView struct {
	ID         string
	Name       string
	Kind       character.Kind
	CurrentHP  int
	MaxHP      int
	Statuses   []string
	Pos        character.Position
	Initiative int
}

// Snapshot is a point-in-time copy of an encounter's observable state.
type Snapshot struct {
	ID           uuid.UUID
	Location     string
	Status       Status
	Round        int
	TurnOrder    []string
	CurrentActor string // empty unless StatusActive
	Participants []ParticipantView
	Log          []string
}

// currentActor returns the participant at the turn pointer.
// Caller holds mu; status must be StatusActive.
func (e *Encounter) currentActor() *character.Sheet {
	return e.participants[e.order[e.turnIndex]]
}

// advanceTurn moves the turn pointer to the next living participant,
// incrementing the round counter each time the order wraps. Caller holds mu.
//
// Postcondition: the turn pointer indexes a living participant, or the
// encounter is no longer one both sides can fight (caller resolves it).
func (e *Encounter) advanceTurn() {
	for range e.order {
		e.turnIndex++
		if e.turnIndex >= len(e.order) {
			e.turnIndex = 0
			e.round++
		}
		if !e.currentActor().IsDefeated() {
			return
		}
	}
}

// sideAlive reports whether any participant of kind is still standing.
// Caller holds mu.
func (e *Encounter) sideAlive(kind character.Kind) bool {
	for _, p := range e.participants {
		if p.Kind == kind && !p.IsDefeated() {
			return true
		}
	}
	return false
}

// oneSided reports whether at most one side still has living participants.
// Caller holds mu.
func (e *Encounter) oneSided() bool {
	return !e.sideAlive(character.KindPlayer) || !e.sideAlive(character.KindNPC)
}

// fixOrder computes the initiative order: descending by initiative total,
// ties broken by actor ID ascending so equal rolls order identically on
// every run. Caller holds mu; initiative must be populated.
func (e *Encounter) fixOrder() {
	order := make([]string, 0, len(e.participants))
	for id := range e.participants {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if e.initiative[a] != e.initiative[b] {
			return e.initiative[a] > e.initiative[b]
		}
		return a < b
	})
	e.order = order
	e.turnIndex = 0
}

// snapshot builds a Snapshot copy. Caller holds mu.
func (e *Encounter) snapshot() Snapshot {
	snap := Snapshot{
		ID:       e.id,
		Location: e.location,
		Status:   e.status,
		Round:    e.round,
		Log:      append([]string(nil), e.log...),
	}

	ids := e.order
	if len(ids) == 0 {
		ids = e.joined
	}
	snap.TurnOrder = append([]string(nil), e.order...)
	if e.status == StatusActive {
		snap.CurrentActor = e.order[e.turnIndex]
	}
	for _, id := range ids {
		p := e.participants[id]
		snap.Participants = append(snap.Participants, ParticipantView{
			ID:         p.ID,
			Name:       p.Name,
			Kind:       p.Kind,
			CurrentHP:  p.CurrentHP,
			MaxHP:      p.MaxHP,
			Statuses:   append([]string(nil), p.Statuses...),
			Pos:        p.Pos,
			Initiative: e.initiative[id],
		})
	}
	return snap
}

// roster returns the participants in initiative order, for iteration during
// resolution. Caller holds mu.
func (e *Encounter) roster() []*character.Sheet {
	out := make([]*character.Sheet, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.participants[id])
	}
	return out
}
