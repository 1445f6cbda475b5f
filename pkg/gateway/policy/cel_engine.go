package policy

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// DynamicRule represents an operator-defined deny rule (e.g. from YAML).
// Rules can only veto commands the static allowlist already admitted; they
// can never widen the allowlist.
type DynamicRule struct {
	ID          string `yaml:"id" json:"id"`
	Condition   string `yaml:"condition" json:"condition"` // CEL expression: "provider == 'aws' && verb == 'ls'"
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// EvaluationContext is the variable set exposed to rule expressions.
type EvaluationContext struct {
	Provider string
	Command  string
	Verb     string
	Tokens   []string
}

// RuleEngine manages the compilation and execution of dynamic rules.
type RuleEngine struct {
	env      *cel.Env
	programs map[string]cel.Program
	order    []string
}

// NewRuleEngine initializes the CEL environment with the supported variable
// declarations.
func NewRuleEngine() (*RuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("provider", decls.String),
			decls.NewVar("command", decls.String),
			decls.NewVar("verb", decls.String),
			decls.NewVar("tokens", decls.NewListType(decls.String)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	return &RuleEngine{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Compile compiles a list of rules into executable programs. Compilation
// errors are fatal: a rules file that does not parse must stop startup
// rather than silently weaken the policy.
func (e *RuleEngine) Compile(rules []DynamicRule) error {
	for _, r := range rules {
		ast, issues := e.env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}

		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}

		e.programs[r.ID] = prg
		e.order = append(e.order, r.ID)
	}
	return nil
}

// Evaluate returns the IDs of rules whose condition matched. Evaluation
// errors on a single rule are logged and skipped, matching the fail-closed
// posture upstream: the static allowlist already admitted the command.
func (e *RuleEngine) Evaluate(evalCtx EvaluationContext) ([]string, error) {
	vars := map[string]interface{}{
		"provider": evalCtx.Provider,
		"command":  evalCtx.Command,
		"verb":     evalCtx.Verb,
		"tokens":   evalCtx.Tokens,
	}

	var matches []string
	for _, id := range e.order {
		prg := e.programs[id]
		out, _, err := prg.Eval(vars)
		if err != nil {
			slog.Error("Rule evaluation failed", "rule_id", id, "error", err)
			continue
		}

		// Rules return a boolean (true = match/deny).
		if match, ok := out.Value().(bool); ok && match {
			matches = append(matches, id)
		}
	}

	return matches, nil
}

// Size reports the number of compiled rules.
func (e *RuleEngine) Size() int {
	return len(e.programs)
}
