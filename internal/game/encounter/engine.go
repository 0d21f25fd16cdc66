package encounter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulcrumworks/fulcrum/internal/game/character"
	"github.com/fulcrumworks/fulcrum/internal/game/dice"
	"github.com/fulcrumworks/fulcrum/internal/game/effect"
	"github.com/fulcrumworks/fulcrum/internal/game/rules"
	"github.com/fulcrumworks/fulcrum/internal/game/talent"
)

// Sentinel errors surfaced to callers. Lookup misses for talents and held
// abilities are absorbed as zero contribution elsewhere; these are the hard
// failures.
var (
	// ErrEncounterNotFound: the encounter ID is not registered.
	ErrEncounterNotFound = errors.New("encounter not found")
	// ErrEncounterResolved: the encounter is terminal; no further turns.
	ErrEncounterResolved = errors.New("encounter already resolved")
	// ErrEncounterNotActive: turn resolution requested before activation.
	ErrEncounterNotActive = errors.New("encounter not active")
	// ErrUnknownActor: the actor or target ID is not a participant.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrNotYourTurn: the acting participant is not at the turn pointer.
	ErrNotYourTurn = errors.New("not this actor's turn")
	// ErrInvalidTarget: the target is defeated or otherwise not actionable.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrUnknownAbility: the named ability is not in the catalog.
	ErrUnknownAbility = errors.New("unknown ability")
)

// Stat and skill names the engine reaches for when equipment does not name
// its own. The taxonomy is external reference data; missing names degrade to
// neutral values on the sheet, never errors.
const (
	initiativeStat   = "Grace"
	defaultAtkStat   = "Might"
	defaultAtkSkill  = "Brawling"
	defenseStat      = "Grace"
	defenseSkill     = "Dodge"
	statusStaggered  = "Staggered"
	defaultFistsDice = "1d4"
)

// Config carries the engine's injected collaborators.
type Config struct {
	// Source supplies all randomness. Must be safe for concurrent use.
	Source dice.Source
	// Talents resolves talent names to modifier lists.
	Talents talent.Provider
	// Catalog resolves ability names to effect lists. Nil means no
	// abilities are usable.
	Catalog *effect.Catalog
	// Logger may be nil for a no-op logger.
	Logger *zap.Logger
	// UnarmedDice is the damage expression used when an attacker holds no
	// weapon. Empty selects "1d4".
	UnarmedDice string
}

// Engine manages all live encounters, keyed by encounter ID.
// All methods are safe for concurrent use; turns within one encounter are
// serialized, distinct encounters proceed in parallel.
type Engine struct {
	mu         sync.RWMutex
	encounters map[uuid.UUID]*Encounter

	src        dice.Source
	roller     *dice.Roller
	talents    talent.Provider
	catalog    *effect.Catalog
	dispatcher *effect.Dispatcher
	logger     *zap.Logger
	unarmed    string
}

// NewEngine creates an Engine from cfg.
//
// Precondition: cfg.Source and cfg.Talents must be non-nil.
func NewEngine(cfg Config) *Engine {
	if cfg.Source == nil {
		panic("encounter.NewEngine: Source must not be nil")
	}
	if cfg.Talents == nil {
		panic("encounter.NewEngine: Talents must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = effect.NewCatalog()
	}
	unarmed := cfg.UnarmedDice
	if unarmed == "" {
		unarmed = defaultFistsDice
	}
	return &Engine{
		encounters: make(map[uuid.UUID]*Encounter),
		src:        cfg.Source,
		roller:     dice.NewLoggedRoller(cfg.Source, logger),
		talents:    cfg.Talents,
		catalog:    catalog,
		dispatcher: effect.NewDispatcher(cfg.Source, logger),
		logger:     logger,
		unarmed:    unarmed,
	}
}

// Start registers a new PENDING encounter at location with the given
// participants. Sheets are deep-cloned: combat mutates the encounter-scoped
// copies, never the caller's records.
//
// Postcondition: Returns the new encounter's ID, or an error when fewer than
// two participants or duplicate participant IDs are supplied.
func (g *Engine) Start(location string, sheets []*character.Sheet) (uuid.UUID, error) {
	if len(sheets) < 2 {
		return uuid.Nil, fmt.Errorf("starting encounter: need at least 2 participants, got %d", len(sheets))
	}

	enc := &Encounter{
		id:           uuid.New(),
		location:     location,
		status:       StatusPending,
		participants: make(map[string]*character.Sheet, len(sheets)),
		initiative:   make(map[string]int, len(sheets)),
	}
	for _, s := range sheets {
		if s.ID == "" {
			return uuid.Nil, fmt.Errorf("starting encounter: participant %q has no ID", s.Name)
		}
		if _, dup := enc.participants[s.ID]; dup {
			return uuid.Nil, fmt.Errorf("starting encounter: duplicate participant ID %q", s.ID)
		}
		enc.participants[s.ID] = s.Clone()
		enc.joined = append(enc.joined, s.ID)
	}

	g.mu.Lock()
	g.encounters[enc.id] = enc
	g.mu.Unlock()

	g.logger.Info("encounter started",
		zap.String("encounter", enc.id.String()),
		zap.String("location", location),
		zap.Int("participants", len(sheets)))
	return enc.id, nil
}

// AddParticipant joins another actor to a PENDING encounter.
//
// Postcondition: The sheet is cloned on success; an encounter past PENDING
// is never mutated.
func (g *Engine) AddParticipant(id uuid.UUID, sheet *character.Sheet) error {
	enc, err := g.get(id)
	if err != nil {
		return err
	}
	enc.mu.Lock()
	defer enc.mu.Unlock()

	if enc.status == StatusResolved {
		return fmt.Errorf("adding participant: %w", ErrEncounterResolved)
	}
	if enc.status != StatusPending {
		return fmt.Errorf("adding participant: turn order already fixed")
	}
	if sheet.ID == "" {
		return fmt.Errorf("adding participant: sheet has no ID")
	}
	if _, dup := enc.participants[sheet.ID]; dup {
		return fmt.Errorf("adding participant: duplicate ID %q", sheet.ID)
	}
	enc.participants[sheet.ID] = sheet.Clone()
	enc.joined = append(enc.joined, sheet.ID)
	return nil
}

// Begin transitions a PENDING encounter to ACTIVE: initiative is rolled for
// every participant (1d20 plus the derived Grace modifier, through the check
// resolver), the turn order is fixed descending with ID-ascending
// tie-breaks, and the pointer starts at the top.
//
// A participant already at zero HP never receives a turn: if the encounter
// is one-sided at activation it transitions straight to RESOLVED.
func (g *Engine) Begin(id uuid.UUID) error {
	enc, err := g.get(id)
	if err != nil {
		return err
	}
	enc.mu.Lock()
	defer enc.mu.Unlock()

	switch enc.status {
	case StatusActive:
		return fmt.Errorf("beginning encounter: already active")
	case StatusResolved:
		return fmt.Errorf("beginning encounter: %w", ErrEncounterResolved)
	}

	// Roll in join order so a seeded source reproduces the same initiative
	// assignment on every run.
	for _, pid := range enc.joined {
		p := enc.participants[pid]
		check, err := rules.ResolveCheck(rules.CheckInput{
			DiceExpr:  "1d20",
			StatScore: p.StatScore(initiativeStat),
		}, g.src)
		if err != nil {
			return fmt.Errorf("rolling initiative for %q: %w", pid, err)
		}
		enc.initiative[pid] = check.FinalTotal
	}
	enc.fixOrder()
	enc.status = StatusActive
	enc.round = 1
	enc.logf("combat begins at %s", enc.location)

	if enc.oneSided() {
		enc.status = StatusResolved
		enc.logf("combat ends before a blow lands")
	} else if enc.currentActor().IsDefeated() {
		enc.advanceTurn()
	}

	g.logger.Info("encounter activated",
		zap.String("encounter", enc.id.String()),
		zap.Strings("order", enc.order),
		zap.String("status", enc.status.String()))
	return nil
}

// Snapshot returns a point-in-time copy of the encounter's state.
func (g *Engine) Snapshot(id uuid.UUID) (Snapshot, error) {
	enc, err := g.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	enc.mu.Lock()
	defer enc.mu.Unlock()
	return enc.snapshot(), nil
}

// End signals an explicit end condition (flee, scripted interruption) and
// marks the encounter RESOLVED.
func (g *Engine) End(id uuid.UUID) error {
	enc, err := g.get(id)
	if err != nil {
		return err
	}
	enc.mu.Lock()
	defer enc.mu.Unlock()

	if enc.status == StatusResolved {
		return fmt.Errorf("ending encounter: %w", ErrEncounterResolved)
	}
	enc.status = StatusResolved
	enc.logf("combat breaks off")
	return nil
}

// Remove drops the encounter record. The ephemeral combat copies of every
// participant are discarded with it.
func (g *Engine) Remove(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.encounters, id)
}

func (g *Engine) get(id uuid.UUID) (*Encounter, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	enc, ok := g.encounters[id]
	if !ok {
		return nil, fmt.Errorf("encounter %s: %w", id, ErrEncounterNotFound)
	}
	return enc, nil
}

// logf appends one narration line to the encounter log. Caller holds mu.
func (e *Encounter) logf(format string, args ...any) {
	e.log = append(e.log, fmt.Sprintf(format, args...))
}
