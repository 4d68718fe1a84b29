package worldflow

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// completionEnv is the variable set a world-completion rule expression
// sees, mirroring the teacher's DAG edge condition environment but built
// from ledger counters instead of node outputs.
type completionEnv struct {
	AllCompletedExceptPosts bool
	PostsCreated            int
	PostsPredicted          int
}

// defaultCompletionRule matches spec.md §4.7(i)'s closing condition: the
// world is done once every other stage has finished, or the predicted post
// count has been reached, whichever comes first.
const defaultCompletionRule = "AllCompletedExceptPosts || PostsCreated >= PostsPredicted"

// evalCompletionRule compiles and runs rule (or defaultCompletionRule if
// rule is empty) against env, grounded on the teacher's expr-lang/expr
// edge-condition evaluator.
func evalCompletionRule(rule string, env completionEnv) (bool, error) {
	if rule == "" {
		rule = defaultCompletionRule
	}

	program, err := expr.Compile(rule, expr.Env(completionEnv{}), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("compile completion rule %q: %w", rule, err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("run completion rule: %w", err)
	}

	done, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("completion rule %q did not evaluate to a bool", rule)
	}
	return done, nil
}
