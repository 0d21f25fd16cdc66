package encounter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumworks/fulcrum/internal/game/character"
	"github.com/fulcrumworks/fulcrum/internal/game/dice"
	"github.com/fulcrumworks/fulcrum/internal/game/effect"
	"github.com/fulcrumworks/fulcrum/internal/game/encounter"
	"github.com/fulcrumworks/fulcrum/internal/game/talent"
)

// fixedSource returns a scripted sequence of Intn values, then repeats the
// last one. Float64 always returns 0.
type fixedSource struct {
	vals []int
	i    int
}

func (f *fixedSource) Intn(n int) int {
	v := f.vals[f.i]
	if f.i < len(f.vals)-1 {
		f.i++
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func (f *fixedSource) Float64() float64 { return 0 }

func newEngine(src dice.Source, catalog *effect.Catalog) *encounter.Engine {
	return encounter.NewEngine(encounter.Config{
		Source:  src,
		Talents: talent.NewRegistry(),
		Catalog: catalog,
	})
}

func player(id string, hp int) *character.Sheet {
	return &character.Sheet{
		ID: id, Name: id, Kind: character.KindPlayer,
		MaxHP: hp, CurrentHP: hp,
	}
}

func foe(id string, hp int) *character.Sheet {
	return &character.Sheet{
		ID: id, Name: id, Kind: character.KindNPC,
		MaxHP: hp, CurrentHP: hp,
	}
}

func TestStartRequiresTwoParticipants(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{0}}, nil)
	_, err := g.Start("arena", []*character.Sheet{player("solo", 10)})
	assert.Error(t, err)
}

func TestStartRejectsDuplicateIDs(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{0}}, nil)
	_, err := g.Start("arena", []*character.Sheet{player("dup", 10), foe("dup", 10)})
	assert.Error(t, err)
}

func TestStartClonesParticipants(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{9}}, nil)
	hero := player("hero", 10)
	id, err := g.Start("arena", []*character.Sheet{hero, foe("rat", 4)})
	require.NoError(t, err)

	hero.CurrentHP = 1 // the caller's record, not the combat copy

	snap, err := g.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Participants[0].CurrentHP)
}

func TestBeginOrdersByInitiativeThenID(t *testing.T) {
	// Join order zed, abel, mook; every d20 rolls the same face, so the
	// tie-break on actor ID must produce abel, mook, zed.
	g := newEngine(&fixedSource{vals: []int{9}}, nil)
	id, err := g.Start("arena", []*character.Sheet{
		player("zed", 10), player("abel", 10), foe("mook", 10),
	})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	snap, err := g.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, encounter.StatusActive, snap.Status)
	assert.Equal(t, []string{"abel", "mook", "zed"}, snap.TurnOrder)
	assert.Equal(t, "abel", snap.CurrentActor)
	assert.Equal(t, 1, snap.Round)
}

func TestBeginHigherInitiativeActsFirst(t *testing.T) {
	// First joiner rolls 3, second rolls 18.
	g := newEngine(&fixedSource{vals: []int{2, 17}}, nil)
	id, err := g.Start("arena", []*character.Sheet{player("slow", 10), foe("quick", 10)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	snap, _ := g.Snapshot(id)
	assert.Equal(t, []string{"quick", "slow"}, snap.TurnOrder)
}

func TestBeginResolvesImmediatelyWhenOneSided(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{9}}, nil)
	downed := foe("downed", 10)
	downed.CurrentHP = 0
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), downed})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	snap, _ := g.Snapshot(id)
	assert.Equal(t, encounter.StatusResolved, snap.Status)

	_, err = g.HandlePlayerAction(id, "hero", encounter.Action{Kind: encounter.ActionPass})
	assert.ErrorIs(t, err, encounter.ErrEncounterResolved)
}

func TestPendingEncounterRejectsTurns(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{9}}, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 4)})
	require.NoError(t, err)

	_, err = g.HandlePlayerAction(id, "hero", encounter.Action{Kind: encounter.ActionPass})
	assert.ErrorIs(t, err, encounter.ErrEncounterNotActive)
}

func TestUnknownEncounterAndActor(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{9}}, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 4)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	_, err = g.Snapshot([16]byte{1})
	assert.ErrorIs(t, err, encounter.ErrEncounterNotFound)

	_, err = g.HandlePlayerAction(id, "stranger", encounter.Action{Kind: encounter.ActionPass})
	assert.ErrorIs(t, err, encounter.ErrUnknownActor)
}

func TestOutOfTurnActionRejectedWithoutMutation(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{17, 2}}, nil) // hero first
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 4)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	before, _ := g.Snapshot(id)
	_, err = g.HandlePlayerAction(id, "rat", encounter.Action{Kind: encounter.ActionPass})
	assert.ErrorIs(t, err, encounter.ErrNotYourTurn)

	after, _ := g.Snapshot(id)
	assert.Equal(t, before, after)
}

func TestAttackHitsAndAdvancesTurn(t *testing.T) {
	// Initiative: hero 18, rat 3. Attack: hero d20 face 16 vs rat face 5,
	// margin 11 = solid hit (+2). Damage 1d4 face 3, +2 = 5.
	src := &fixedSource{vals: []int{17, 2, 15, 4, 2}}
	g := newEngine(src, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 12)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	report, err := g.HandlePlayerAction(id, "hero", encounter.Action{
		Kind: encounter.ActionAttack, TargetID: "rat",
	})
	require.NoError(t, err)
	assert.False(t, report.Resolved)
	require.NotEmpty(t, report.Narrative)
	assert.Contains(t, report.Narrative[0], "solid hit")

	snap, _ := g.Snapshot(id)
	assert.Equal(t, "rat", snap.CurrentActor)
	for _, p := range snap.Participants {
		if p.ID == "rat" {
			assert.Equal(t, 7, p.CurrentHP)
		}
	}
}

func TestAttackFumbleStaggersAttacker(t *testing.T) {
	// Initiative hero 18, rat 3; then hero rolls a natural 1.
	src := &fixedSource{vals: []int{17, 2, 0, 9}}
	g := newEngine(src, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 12)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	report, err := g.HandlePlayerAction(id, "hero", encounter.Action{
		Kind: encounter.ActionAttack, TargetID: "rat",
	})
	require.NoError(t, err)
	assert.Contains(t, report.Narrative[0], "misses")

	snap, _ := g.Snapshot(id)
	for _, p := range snap.Participants {
		if p.ID == "hero" {
			assert.Contains(t, p.Statuses, "Staggered")
		}
	}
}

func TestAttackInvalidTargets(t *testing.T) {
	src := &fixedSource{vals: []int{17, 2, 9}}
	g := newEngine(src, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 12)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	_, err = g.HandlePlayerAction(id, "hero", encounter.Action{
		Kind: encounter.ActionAttack, TargetID: "hero",
	})
	assert.ErrorIs(t, err, encounter.ErrInvalidTarget)

	_, err = g.HandlePlayerAction(id, "hero", encounter.Action{
		Kind: encounter.ActionAttack, TargetID: "ghost",
	})
	assert.ErrorIs(t, err, encounter.ErrUnknownActor)

	// Neither rejection consumed the turn.
	snap, _ := g.Snapshot(id)
	assert.Equal(t, "hero", snap.CurrentActor)
}

func TestKillingLastFoeResolvesEncounter(t *testing.T) {
	// Hero hits a 1 HP rat: any landed blow ends it.
	src := &fixedSource{vals: []int{17, 2, 15, 4, 2}}
	g := newEngine(src, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 1)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	report, err := g.HandlePlayerAction(id, "hero", encounter.Action{
		Kind: encounter.ActionAttack, TargetID: "rat",
	})
	require.NoError(t, err)
	assert.True(t, report.Resolved)
	assert.Contains(t, report.Narrative, "rat is defeated")

	snap, _ := g.Snapshot(id)
	assert.Equal(t, encounter.StatusResolved, snap.Status)
	assert.Empty(t, snap.CurrentActor)
}

func TestDefeatedParticipantIsSkipped(t *testing.T) {
	// Order: hero (18), mook (8), rat (3). Hero kills mook; the turn must
	// skip straight to rat.
	src := &fixedSource{vals: []int{17, 7, 2, 15, 4, 2}}
	g := newEngine(src, nil)
	id, err := g.Start("arena", []*character.Sheet{
		player("hero", 10), foe("mook", 1), foe("rat", 8),
	})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	_, err = g.HandlePlayerAction(id, "hero", encounter.Action{
		Kind: encounter.ActionAttack, TargetID: "mook",
	})
	require.NoError(t, err)

	snap, _ := g.Snapshot(id)
	assert.Equal(t, encounter.StatusActive, snap.Status)
	assert.Equal(t, "rat", snap.CurrentActor)

	_, err = g.HandlePlayerAction(id, "mook", encounter.Action{Kind: encounter.ActionPass})
	assert.ErrorIs(t, err, encounter.ErrNotYourTurn)
}

func TestNPCTurnAttacksPlayer(t *testing.T) {
	// Initiative: rat 18, hero 3. Rat's attack: face 16 vs face 5, margin
	// 11 solid hit; 1d4 face 3 + 2 = 5 damage.
	src := &fixedSource{vals: []int{2, 17, 15, 4, 2}}
	g := newEngine(src, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 8)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	report, err := g.HandleNPCTurn(id)
	require.NoError(t, err)
	assert.Equal(t, "rat", report.ActorID)

	snap, _ := g.Snapshot(id)
	assert.Equal(t, "hero", snap.CurrentActor)
	for _, p := range snap.Participants {
		if p.ID == "hero" {
			assert.Equal(t, 5, p.CurrentHP)
		}
	}
}

func TestNPCTurnRejectedWhenPlayerIsCurrent(t *testing.T) {
	src := &fixedSource{vals: []int{17, 2}}
	g := newEngine(src, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 8)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	_, err = g.HandleNPCTurn(id)
	assert.ErrorIs(t, err, encounter.ErrNotYourTurn)
}

func TestStaggeredNPCRecoversOnItsTurn(t *testing.T) {
	src := &fixedSource{vals: []int{2, 17, 9}}
	g := newEngine(src, nil)
	rat := foe("rat", 8)
	rat.Statuses = []string{"Staggered"}
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), rat})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	report, err := g.HandleNPCTurn(id)
	require.NoError(t, err)
	assert.Contains(t, report.Narrative[0], "regains footing")

	snap, _ := g.Snapshot(id)
	for _, p := range snap.Participants {
		if p.ID == "rat" {
			assert.Empty(t, p.Statuses)
		}
	}
}

func TestUnknownAbilityRejected(t *testing.T) {
	src := &fixedSource{vals: []int{17, 2, 9}}
	g := newEngine(src, effect.NewCatalog())
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 8)})
	require.NoError(t, err)
	require.NoError(t, g.Begin(id))

	_, err = g.HandlePlayerAction(id, "hero", encounter.Action{
		Kind: encounter.ActionAbility, Ability: "Meteor Swarm", TargetID: "rat",
	})
	assert.ErrorIs(t, err, encounter.ErrUnknownAbility)

	snap, _ := g.Snapshot(id)
	assert.Equal(t, "hero", snap.CurrentActor)
}

func TestEndAndRemove(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{9}}, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 8)})
	require.NoError(t, err)

	require.NoError(t, g.End(id))
	snap, _ := g.Snapshot(id)
	assert.Equal(t, encounter.StatusResolved, snap.Status)
	assert.ErrorIs(t, g.End(id), encounter.ErrEncounterResolved)

	g.Remove(id)
	_, err = g.Snapshot(id)
	assert.ErrorIs(t, err, encounter.ErrEncounterNotFound)
}

func TestAddParticipantOnlyWhilePending(t *testing.T) {
	g := newEngine(&fixedSource{vals: []int{9}}, nil)
	id, err := g.Start("arena", []*character.Sheet{player("hero", 10), foe("rat", 8)})
	require.NoError(t, err)

	require.NoError(t, g.AddParticipant(id, foe("rat2", 8)))
	require.NoError(t, g.Begin(id))
	assert.Error(t, g.AddParticipant(id, foe("rat3", 8)))

	snap, _ := g.Snapshot(id)
	assert.Len(t, snap.Participants, 3)
}
