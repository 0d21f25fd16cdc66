package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fulcrumworks/fulcrum/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no
// results. Unlike a talent lookup miss, this is a hard failure: combat
// cannot proceed against a participant that does not exist.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterExists is returned when creating a character with an ID
// already present.
var ErrCharacterExists = errors.New("character already exists")

// CharacterRepository provides sheet persistence: the engine reads current
// stats and HP from here before an encounter and writes HP and status deltas
// back after it.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts a new character sheet.
//
// Precondition: s.ID and s.Name must be non-empty.
// Postcondition: Returns ErrCharacterExists on a duplicate ID.
func (r *CharacterRepository) Create(ctx context.Context, s *character.Sheet) error {
	// Nil slices and maps would encode as SQL NULL; the schema wants empty
	// collections instead.
	stats := s.Stats
	if stats == nil {
		stats = map[string]int{}
	}
	skills := s.Skills
	if skills == nil {
		skills = map[string]int{}
	}
	equipment := s.Equipment
	if equipment == nil {
		equipment = []character.Item{}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO characters
			(id, kind, name, stats, skills, talents, equipment, abilities,
			 behavior_tags, max_hp, current_hp, statuses, pos_x, pos_y)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.Kind.String(), s.Name, stats, skills, orEmpty(s.Talents),
		equipment, orEmpty(s.Abilities), orEmpty(s.BehaviorTags), s.MaxHP,
		s.CurrentHP, orEmpty(s.Statuses), s.Pos.X, s.Pos.Y,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("inserting character %q: %w", s.ID, ErrCharacterExists)
		}
		return fmt.Errorf("inserting character %q: %w", s.ID, err)
	}
	return nil
}

// Get fetches a character sheet by ID.
//
// Postcondition: Returns ErrCharacterNotFound when no row matches.
func (r *CharacterRepository) Get(ctx context.Context, id string) (*character.Sheet, error) {
	var (
		s    character.Sheet
		kind string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, kind, name, stats, skills, talents, equipment, abilities,
		       behavior_tags, max_hp, current_hp, statuses, pos_x, pos_y
		FROM characters
		WHERE id = $1`, id,
	).Scan(&s.ID, &kind, &s.Name, &s.Stats, &s.Skills, &s.Talents,
		&s.Equipment, &s.Abilities, &s.BehaviorTags, &s.MaxHP, &s.CurrentHP,
		&s.Statuses, &s.Pos.X, &s.Pos.Y)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("character %q: %w", id, ErrCharacterNotFound)
		}
		return nil, fmt.Errorf("fetching character %q: %w", id, err)
	}
	if kind == character.KindNPC.String() {
		s.Kind = character.KindNPC
	}
	return &s, nil
}

// SaveCombatResult writes one participant's post-encounter HP and statuses
// back to the persistent record.
//
// Postcondition: Returns ErrCharacterNotFound when no row matches.
func (r *CharacterRepository) SaveCombatResult(ctx context.Context, id string, currentHP int, statuses []string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters
		SET current_hp = $2, statuses = $3
		WHERE id = $1`,
		id, currentHP, orEmpty(statuses),
	)
	if err != nil {
		return fmt.Errorf("saving combat result for %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("character %q: %w", id, ErrCharacterNotFound)
	}
	return nil
}

// ParticipantResult is one participant's post-encounter delta.
type ParticipantResult struct {
	ID        string
	CurrentHP int
	Statuses  []string
}

// SaveEncounterResults writes a whole encounter's deltas in one
// transaction, so a half-persisted encounter is never observable.
//
// Postcondition: All rows update or none do; a missing participant aborts
// the batch with ErrCharacterNotFound.
func (r *CharacterRepository) SaveEncounterResults(ctx context.Context, results []ParticipantResult) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning result transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, res := range results {
		tag, err := tx.Exec(ctx, `
			UPDATE characters
			SET current_hp = $2, statuses = $3
			WHERE id = $1`,
			res.ID, res.CurrentHP, orEmpty(res.Statuses),
		)
		if err != nil {
			return fmt.Errorf("saving result for %q: %w", res.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("character %q: %w", res.ID, ErrCharacterNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing result transaction: %w", err)
	}
	return nil
}

// Delete removes a character record.
//
// Postcondition: Returns ErrCharacterNotFound when no row matches.
func (r *CharacterRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting character %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("character %q: %w", id, ErrCharacterNotFound)
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
