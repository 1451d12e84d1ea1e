// Package policy evaluates outbound playground requests against a rego policy.
package policy

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/open-policy-agent/opa/rego"
	"github.com/xiaot623/gogo/playground/internal/domain"
)

// Decisions returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content. The
// module must declare package request_policy.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.request_policy"),
		rego.Module("request_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads the policy module from path, or the default policy
// when path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Evaluate runs the policy against a payload.
// Returns: decision (allow or block), the reasons collected by the policy, error
func (e *Engine) Evaluate(ctx context.Context, payload domain.Payload) (string, []string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}(payload)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, nil, nil
	}
	doc, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return DecisionAllow, nil, nil
	}

	decision, _ := doc["decision"].(string)
	if decision == "" {
		decision = DecisionAllow
	}
	var reasons []string
	if set, ok := doc["reasons"].([]interface{}); ok {
		for _, r := range set {
			if s, ok := r.(string); ok {
				reasons = append(reasons, s)
			}
		}
	}
	sort.Strings(reasons)
	return decision, reasons, nil
}

// Check returns a *domain.PolicyError when the payload is blocked.
func (e *Engine) Check(ctx context.Context, payload domain.Payload) error {
	decision, reasons, err := e.Evaluate(ctx, payload)
	if err != nil {
		return err
	}
	if decision == DecisionAllow {
		return nil
	}
	reason := ""
	if len(reasons) > 0 {
		reason = reasons[0]
	}
	return &domain.PolicyError{Decision: decision, Reason: reason}
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package request_policy

default decision = "allow"

valid_model {
	is_string(input.model)
	input.model != ""
}

decision = "block" {
	count(reasons) > 0
}

reasons[msg] {
	not valid_model
	msg := "model is required"
}

reasons[msg] {
	input.max_tokens <= 0
	msg := "max_tokens must be positive"
}
`
