// Package main provides a development harness that runs one scripted
// encounter end to end: load reference data, fight a small skirmish with the
// NPC policy driving the monsters, then feed the outcome to the event engine
// and print whatever the world throws back.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulcrumworks/fulcrum/internal/config"
	"github.com/fulcrumworks/fulcrum/internal/game/character"
	"github.com/fulcrumworks/fulcrum/internal/game/dice"
	"github.com/fulcrumworks/fulcrum/internal/game/effect"
	"github.com/fulcrumworks/fulcrum/internal/game/encounter"
	"github.com/fulcrumworks/fulcrum/internal/game/story"
	"github.com/fulcrumworks/fulcrum/internal/game/talent"
	"github.com/fulcrumworks/fulcrum/internal/observability"
	"github.com/fulcrumworks/fulcrum/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	location := flag.String("location", "forest clearing", "encounter location name")
	reputation := flag.Int("reputation", -8, "player reputation fed to the event engine")
	resources := flag.Int("resources", 35, "kingdom resource level fed to the event engine")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.Engine.Seed != 0 {
		src = dice.NewSeededSource(cfg.Engine.Seed)
		logger.Info("using seeded dice source", zap.Uint64("seed", cfg.Engine.Seed))
	} else {
		src = dice.NewCryptoSource()
	}

	talents, err := talent.LoadDirectory(cfg.Engine.TalentDir)
	if err != nil {
		logger.Fatal("loading talents", zap.String("dir", cfg.Engine.TalentDir), zap.Error(err))
	}
	logger.Info("loaded talents", zap.Int("count", talents.Len()))

	catalog := effect.NewCatalog()
	if err := catalog.LoadDirectory(cfg.Engine.AbilityDir); err != nil {
		logger.Fatal("loading abilities", zap.String("dir", cfg.Engine.AbilityDir), zap.Error(err))
	}
	logger.Info("loaded abilities", zap.Int("count", catalog.Len()))

	ruleSet := story.DefaultRules()
	if cfg.Engine.EventRules != "" {
		ruleSet, err = story.LoadRules(cfg.Engine.EventRules)
		if err != nil {
			logger.Fatal("loading event rules", zap.String("path", cfg.Engine.EventRules), zap.Error(err))
		}
		logger.Info("loaded event rules", zap.Int("count", len(ruleSet.Rules)))
	}

	engine := encounter.NewEngine(encounter.Config{
		Source:      src,
		Talents:     talents,
		Catalog:     catalog,
		Logger:      logger,
		UnarmedDice: cfg.Engine.UnarmedDice,
	})
	events := story.NewEngine(story.Config{
		Rules:     ruleSet,
		Source:    src,
		Evaluator: scripting.NewEvaluator(cfg.Scripting.InstructionLimit),
		Logger:    logger,
	})

	heroID := "hero"
	id, err := engine.Start(*location, demoParty(heroID))
	if err != nil {
		logger.Fatal("starting encounter", zap.Error(err))
	}
	if err := engine.Begin(id); err != nil {
		logger.Fatal("beginning encounter", zap.Error(err))
	}
	logger.Info("encounter started",
		zap.String("id", id.String()),
		zap.Duration("startup", time.Since(start)),
	)

	outcome := runSkirmish(engine, id, heroID, logger)

	fmt.Println()
	fmt.Println("--- the world reacts ---")
	ctx := story.WorldStateContext{
		PlayerReputation:     *reputation,
		KingdomResourceLevel: *resources,
		LastCombatOutcome:    outcome,
		CurrentLocationTags:  []string{"forest", "wilderness"},
	}
	for _, ev := range events.CheckAndGenerateEvents(ctx) {
		if ev.Narrative != "" {
			fmt.Printf("[%s] %s\n", ev.Type, ev.Narrative)
		} else {
			fmt.Printf("[%s]\n", ev.Type)
		}
	}
}

// runSkirmish plays the encounter to resolution. The hero always swings at
// the first living monster; NPCs run the decision policy. Returns the combat
// outcome for the event engine.
func runSkirmish(engine *encounter.Engine, id uuid.UUID, heroID string, logger *zap.Logger) story.CombatOutcome {
	for turn := 0; ; turn++ {
		if turn > 200 {
			logger.Fatal("encounter did not resolve within 200 turns")
		}
		snap, err := engine.Snapshot(id)
		if err != nil {
			logger.Fatal("snapshot", zap.Error(err))
		}
		if snap.Status == encounter.StatusResolved {
			return outcomeFor(snap, heroID)
		}

		var report encounter.TurnReport
		if snap.CurrentActor == heroID {
			target := firstLivingMonster(snap)
			if target == "" {
				report, err = engine.HandlePlayerAction(id, heroID, encounter.Action{Kind: encounter.ActionPass})
			} else {
				report, err = engine.HandlePlayerAction(id, heroID, encounter.Action{
					Kind:     encounter.ActionAttack,
					TargetID: target,
				})
			}
		} else {
			report, err = engine.HandleNPCTurn(id)
		}
		if err != nil {
			logger.Fatal("resolving turn", zap.Error(err))
		}
		for _, line := range report.Narrative {
			fmt.Println(line)
		}
	}
}

func firstLivingMonster(snap encounter.Snapshot) string {
	for _, p := range snap.Participants {
		if p.Kind == character.KindNPC && p.CurrentHP > 0 {
			return p.ID
		}
	}
	return ""
}

func outcomeFor(snap encounter.Snapshot, heroID string) story.CombatOutcome {
	for _, p := range snap.Participants {
		if p.ID == heroID {
			if p.CurrentHP > 0 {
				return story.OutcomeVictory
			}
			return story.OutcomeDefeat
		}
	}
	return story.OutcomeNone
}

// demoParty builds the fixed roster: one armed hero against a bruiser and a
// cowardly cutpurse.
func demoParty(heroID string) []*character.Sheet {
	hero := &character.Sheet{
		ID:   heroID,
		Kind: character.KindPlayer,
		Name: "Aldric",
		Stats: map[string]int{
			"Might":   16,
			"Grace":   13,
			"Grit":    14,
			"Cunning": 10,
		},
		Skills: map[string]int{
			"Swords": 6,
			"Dodge":  3,
		},
		Talents: []string{"Might Mastery", "Sword Specialist"},
		Equipment: []character.Item{
			{Name: "Longsword", Slot: "weapon", DamageDice: "1d8", Stat: "Might", Skill: "Swords"},
			{Name: "Chain Shirt", Slot: "armor", DamageReduction: 2},
		},
		Abilities: []string{"Minor Heal"},
		MaxHP:     24,
		CurrentHP: 24,
		Pos:       character.Position{X: 0, Y: 0},
	}
	bruiser := &character.Sheet{
		ID:    "bruiser",
		Kind:  character.KindNPC,
		Name:  "Bandit Bruiser",
		Stats: map[string]int{"Might": 14, "Grace": 10, "Grit": 12},
		Skills: map[string]int{
			"Brawling": 4,
			"Dodge":    1,
		},
		Equipment: []character.Item{
			{Name: "Cudgel", Slot: "weapon", DamageDice: "1d6", Stat: "Might", Skill: "Brawling"},
		},
		BehaviorTags: []string{"targets_weakest"},
		MaxHP:        16,
		CurrentHP:    16,
		Pos:          character.Position{X: 2, Y: 1},
	}
	cutpurse := &character.Sheet{
		ID:    "cutpurse",
		Kind:  character.KindNPC,
		Name:  "Bandit Cutpurse",
		Stats: map[string]int{"Might": 10, "Grace": 14, "Grit": 8},
		Skills: map[string]int{
			"Knives": 3,
			"Dodge":  4,
		},
		Equipment: []character.Item{
			{Name: "Dirk", Slot: "weapon", DamageDice: "1d4", Stat: "Grace", Skill: "Knives"},
		},
		BehaviorTags: []string{"cowardly"},
		MaxHP:        10,
		CurrentHP:    10,
		Pos:          character.Position{X: -1, Y: 2},
	}
	return []*character.Sheet{hero, bruiser, cutpurse}
}
