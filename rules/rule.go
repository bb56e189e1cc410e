package rules

import "github.com/expr-lang/expr/vm"

// ActionFunc carries out a rule once its condition holds.
type ActionFunc func(env Env) error

// Rule is one row of the build order: a condition → action pair.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
