package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumworks/fulcrum/internal/game/character"
	"github.com/fulcrumworks/fulcrum/internal/storage/postgres"
	"github.com/fulcrumworks/fulcrum/internal/testutil"
)

func newRepo(t *testing.T) *postgres.CharacterRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewCharacterRepository(pc.RawPool)
}

func sampleSheet(id string) *character.Sheet {
	return &character.Sheet{
		ID:     id,
		Kind:   character.KindPlayer,
		Name:   "Kara",
		Stats:  map[string]int{"Might": 14, "Grace": 12},
		Skills: map[string]int{"Swords": 4, "Dodge": 2},
		Talents: []string{
			"Might Mastery", "Sword Specialist",
		},
		Equipment: []character.Item{
			{Name: "Longsword", Slot: "weapon", DamageDice: "1d8", Stat: "Might", Skill: "Swords"},
			{Name: "Chainmail", Slot: "armor", DamageReduction: 2},
		},
		MaxHP:     24,
		CurrentHP: 24,
		Pos:       character.Position{X: 3, Y: 1},
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	want := sampleSheet("kara-01")
	require.NoError(t, repo.Create(ctx, want))

	got, err := repo.Get(ctx, "kara-01")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Stats, got.Stats)
	assert.Equal(t, want.Skills, got.Skills)
	assert.Equal(t, want.Talents, got.Talents)
	assert.Equal(t, want.Equipment, got.Equipment)
	assert.Equal(t, want.MaxHP, got.MaxHP)
	assert.Equal(t, want.Pos, got.Pos)

	assert.ErrorIs(t, repo.Create(ctx, want), postgres.ErrCharacterExists)
}

func TestCharacterNotFoundIsHardFailure(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "nobody")
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)

	assert.ErrorIs(t, repo.SaveCombatResult(ctx, "nobody", 5, nil), postgres.ErrCharacterNotFound)
}

func TestSaveCombatResult(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleSheet("kara-02")))
	require.NoError(t, repo.SaveCombatResult(ctx, "kara-02", 9, []string{"Staggered"}))

	got, err := repo.Get(ctx, "kara-02")
	require.NoError(t, err)
	assert.Equal(t, 9, got.CurrentHP)
	assert.Equal(t, []string{"Staggered"}, got.Statuses)
}

func TestSaveEncounterResultsIsAtomic(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleSheet("kara-03")))

	err := repo.SaveEncounterResults(ctx, []postgres.ParticipantResult{
		{ID: "kara-03", CurrentHP: 1},
		{ID: "nobody", CurrentHP: 1},
	})
	require.ErrorIs(t, err, postgres.ErrCharacterNotFound)

	// The batch rolled back: kara's HP is untouched.
	got, err := repo.Get(ctx, "kara-03")
	require.NoError(t, err)
	assert.Equal(t, 24, got.CurrentHP)
}
