package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// PredicateContext is the world snapshot exposed to a predicate script as
// the global table `ctx`:
//
//	ctx.reputation  (number)
//	ctx.resources   (number)
//	ctx.outcome     (string, "" when no recent combat)
//	ctx.tags        (array of strings)
//	has_tag(name)   (helper function)
type PredicateContext struct {
	Reputation int
	Resources  int
	Outcome    string
	Tags       []string
}

// Evaluator runs predicate scripts in fresh sandboxed VMs. Each evaluation
// gets its own LState, so scripts cannot leak state into later evaluations
// and concurrent evaluations never share a VM.
type Evaluator struct {
	instLimit int
}

// NewEvaluator creates an Evaluator. instLimit 0 selects the default
// instruction limit.
func NewEvaluator(instLimit int) *Evaluator {
	return &Evaluator{instLimit: instLimit}
}

// EvalPredicate runs script, a Lua chunk that must return a boolean, against
// ctx. Scripts that error, exceed the instruction limit, or return a
// non-boolean yield an error; the caller decides whether that counts as
// false.
//
// Postcondition: Returns (result, nil) only when the chunk cleanly returned
// a boolean.
func (e *Evaluator) EvalPredicate(script string, ctx PredicateContext) (bool, error) {
	L := NewSandboxedState(e.instLimit)
	defer L.Close()

	tbl := L.NewTable()
	L.SetField(tbl, "reputation", lua.LNumber(ctx.Reputation))
	L.SetField(tbl, "resources", lua.LNumber(ctx.Resources))
	L.SetField(tbl, "outcome", lua.LString(ctx.Outcome))

	tags := L.NewTable()
	for _, t := range ctx.Tags {
		tags.Append(lua.LString(t))
	}
	L.SetField(tbl, "tags", tags)
	L.SetGlobal("ctx", tbl)

	L.SetGlobal("has_tag", L.NewFunction(func(L *lua.LState) int {
		want := L.CheckString(1)
		for _, t := range ctx.Tags {
			if t == want {
				L.Push(lua.LTrue)
				return 1
			}
		}
		L.Push(lua.LFalse)
		return 1
	}))

	if err := L.DoString(script); err != nil {
		return false, fmt.Errorf("evaluating predicate: %w", err)
	}

	ret := L.Get(-1)
	b, ok := ret.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("predicate returned %s, want boolean", ret.Type())
	}
	return bool(b), nil
}
