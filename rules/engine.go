package rules

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine evaluates the build order. Rules are checked highest priority first
// and the first rule whose condition holds is the only one that acts in that
// window.
type Engine struct {
	rules        []*Rule
	lastDiagTick int
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled, lastDiagTick: -idleDiagEvery}, nil
}

// Rules returns the compiled rule table in evaluation order.
func (e *Engine) Rules() []*Rule { return e.rules }

// Evaluate runs one window and returns the name of the rule that fired, or ""
// if none did. A failing action ends the window without trying lower rules.
func (e *Engine) Evaluate(env Env) string {
	for _, r := range e.rules {
		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}

		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "tick", env.Tick)
		if err := r.Action(env); err != nil {
			slog.Warn("rule action error", "rule", r.Name, "tick", env.Tick, "error", err)
		}
		return r.Name
	}

	e.logIdleDiagnostics(env)
	return ""
}

const idleDiagEvery = 500

// logIdleDiagnostics helps debug "why isn't the bot building anything?".
// Throttled by tick to avoid log spam.
func (e *Engine) logIdleDiagnostics(env Env) {
	if env.Tick-e.lastDiagTick < idleDiagEvery {
		return
	}
	e.lastDiagTick = env.Tick

	structures := make(map[string]int, len(env.Inv.Structures))
	for name, list := range env.Inv.Structures {
		structures[name] = len(list)
	}
	slog.Info("build order idle",
		"tick", env.Tick,
		"main", env.Inv.Main != nil,
		"structures", structures,
		"resources", env.Inv.Resources,
	)
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
