// Package rule evaluates user-configurable validation rules against
// catalog and document payloads. Rules are CEL boolean expressions over
// a `self` variable holding the entity; a rule that evaluates to false
// rejects the write with its configured message.
package rule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"

	"stockpro/internal/core/apperror"
)

// Rule is one configured validation rule.
type Rule struct {
	// Name identifies the rule in configuration and error details.
	Name string `json:"name" mapstructure:"name"`

	// Expression is a CEL boolean expression over `self`, e.g.
	// `self.minQuantity <= self.quantity` or
	// `self.ncm.matches('^[0-9]{8}$')`.
	Expression string `json:"expression" mapstructure:"expression"`

	// Message is shown to the user when the rule rejects the entity.
	Message string `json:"message" mapstructure:"message"`
}

type compiled struct {
	rule    Rule
	program cel.Program
}

// Engine holds compiled rules for one entity kind.
type Engine struct {
	rules []compiled
}

// NewEngine compiles the rules. A rule that doesn't compile is a
// configuration error reported immediately, not at evaluation time.
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(cel.Variable("self", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	e := &Engine{rules: make([]compiled, 0, len(rules))}
	for _, r := range rules {
		ast, iss := env.Compile(r.Expression)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, iss.Err())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		e.rules = append(e.rules, compiled{rule: r, program: program})
	}
	return e, nil
}

// Validate evaluates every rule against the entity. The entity is
// passed through its JSON form, so rules address the same field names
// the API exposes.
func (e *Engine) Validate(ctx context.Context, entity any) error {
	if len(e.rules) == 0 {
		return nil
	}

	self, err := toMap(entity)
	if err != nil {
		return fmt.Errorf("encode entity for rules: %w", err)
	}

	for _, c := range e.rules {
		out, _, err := c.program.ContextEval(ctx, map[string]any{"self": self})
		if err != nil {
			return apperror.NewValidation(fmt.Sprintf("rule %q failed to evaluate: %v", c.rule.Name, err)).
				WithDetail("rule", c.rule.Name)
		}
		passed, isBool := out.Value().(bool)
		if !isBool {
			return apperror.NewValidation(fmt.Sprintf("rule %q must evaluate to a boolean", c.rule.Name)).
				WithDetail("rule", c.rule.Name)
		}
		if !passed {
			msg := c.rule.Message
			if msg == "" {
				msg = fmt.Sprintf("validation rule %q rejected the entity", c.rule.Name)
			}
			return apperror.NewValidation(msg).WithDetail("rule", c.rule.Name)
		}
	}
	return nil
}

func toMap(entity any) (map[string]any, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
