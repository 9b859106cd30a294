// Package policy evaluates the outgoing-query policy with OPA before a chat
// message is sent.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Decision values produced by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query          rego.PreparedEvalQuery
	maxQueryLength int
}

// NewEngine creates a new policy engine with the given policy content.
// The module must define data.query_policy.result as {"decision", "reason"}.
func NewEngine(ctx context.Context, policyContent string, maxQueryLength int) (*Engine, error) {
	r := rego.New(
		rego.Query("data.query_policy.result"),
		rego.Module("query_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query, maxQueryLength: maxQueryLength}, nil
}

// NewEngineFromFile loads the policy module from path, or DefaultPolicy when path is empty.
func NewEngineFromFile(ctx context.Context, path string, maxQueryLength int) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy, maxQueryLength)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy %s: %w", path, err)
	}
	return NewEngine(ctx, string(content), maxQueryLength)
}

// Check evaluates the policy for an outgoing query.
func (e *Engine) Check(ctx context.Context, query string) (string, string, error) {
	return e.Evaluate(ctx, map[string]interface{}{
		"query":            query,
		"max_query_length": e.maxQueryLength,
	})
}

// Evaluate runs the policy against input.
// Returns: decision (allow, block), reason (optional), error
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "default", nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return "", "", fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}
	decision, _ := obj["decision"].(string)
	reason, _ := obj["reason"].(string)
	if decision == "" {
		return "", "", fmt.Errorf("policy result has no decision")
	}
	return decision, reason, nil
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package query_policy

default reason := ""

reason := "query is empty" if {
	trim_space(input.query) == ""
} else := msg if {
	input.max_query_length > 0
	count(input.query) > input.max_query_length
	msg := sprintf("query exceeds %d characters", [input.max_query_length])
}

default decision := "allow"

decision := "block" if reason != ""

result := {"decision": decision, "reason": reason}
`
