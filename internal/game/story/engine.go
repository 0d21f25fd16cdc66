package story

import (
	"go.uber.org/zap"

	"github.com/fulcrumworks/fulcrum/internal/game/dice"
	"github.com/fulcrumworks/fulcrum/internal/scripting"
)

// Engine evaluates the rule table against world snapshots. An evaluation
// pass is stateless; one Engine may serve many concurrent callers as long as
// its random source is safe for concurrent use.
type Engine struct {
	rules   []Rule
	ambient StoryEvent
	src     dice.Source
	eval    *scripting.Evaluator
	logger  *zap.Logger
}

// Config carries the event engine's collaborators.
type Config struct {
	// Rules is the ordered table. Zero rules means only the ambient event
	// ever fires.
	Rules RuleSet
	// Source supplies the per-rule probability draws.
	Source dice.Source
	// Evaluator runs rules' optional Lua predicates. Nil disables them:
	// a rule with a Lua predicate then never fires.
	Evaluator *scripting.Evaluator
	// Logger may be nil for a no-op logger.
	Logger *zap.Logger
}

// NewEngine creates an event engine from cfg.
//
// Precondition: cfg.Source must be non-nil.
func NewEngine(cfg Config) *Engine {
	if cfg.Source == nil {
		panic("story.NewEngine: Source must not be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ambient := StoryEvent{Type: "AMBIENT_FLAVOR_NEUTRAL"}
	if cfg.Rules.Ambient != nil {
		ambient = *cfg.Rules.Ambient
	}
	return &Engine{
		rules:   cfg.Rules.Rules,
		ambient: ambient,
		src:     cfg.Source,
		eval:    cfg.Evaluator,
		logger:  logger,
	}
}

// CheckAndGenerateEvents runs one evaluation pass. Rules are visited in
// table order; every rule whose condition holds and whose probability draw
// lands below its chance emits its event — multiple rules may fire in one
// pass. A pass that fires nothing emits the ambient event, so callers always
// receive at least one event.
//
// A failing Lua predicate (script error, non-boolean result) disables that
// rule for the pass and is logged; it never aborts the evaluation.
//
// Postcondition: Returns a non-empty slice.
func (e *Engine) CheckAndGenerateEvents(ctx WorldStateContext) []StoryEvent {
	var events []StoryEvent

	for _, rule := range e.rules {
		if !rule.When.holds(ctx) {
			continue
		}
		if rule.When.Lua != "" {
			ok, err := e.evalLua(rule.When.Lua, ctx)
			if err != nil {
				e.logger.Warn("event rule predicate failed",
					zap.String("event", rule.EventID),
					zap.Error(err))
				continue
			}
			if !ok {
				continue
			}
		}
		if e.src.Float64() >= rule.Chance {
			continue
		}
		events = append(events, rule.event())
		e.logger.Debug("story event generated", zap.String("event", rule.EventID))
	}

	if len(events) == 0 {
		events = append(events, e.ambient)
	}
	return events
}

func (e *Engine) evalLua(script string, ctx WorldStateContext) (bool, error) {
	if e.eval == nil {
		return false, nil
	}
	return e.eval.EvalPredicate(script, scripting.PredicateContext{
		Reputation: ctx.PlayerReputation,
		Resources:  ctx.KingdomResourceLevel,
		Outcome:    string(ctx.LastCombatOutcome),
		Tags:       ctx.CurrentLocationTags,
	})
}
