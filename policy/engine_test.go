package policy

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)
	return engine
}

func TestDefaultPolicyAllows(t *testing.T) {
	engine := newDefaultEngine(t)

	decision, reasons, err := engine.Evaluate(context.Background(), domain.Payload{
		"model":      "gpt-4o",
		"stream":     true,
		"max_tokens": 512,
		"messages": []interface{}{
			map[string]interface{}{"role": "user", "content": "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
	assert.Empty(t, reasons)
}

func TestDefaultPolicyBlocks(t *testing.T) {
	engine := newDefaultEngine(t)

	decision, reasons, err := engine.Evaluate(context.Background(), domain.Payload{
		"model":      "",
		"max_tokens": json.Number("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)
	assert.Equal(t, []string{"max_tokens must be positive", "model is required"}, reasons)
}

func TestCheckReturnsPolicyError(t *testing.T) {
	engine := newDefaultEngine(t)

	err := engine.Check(context.Background(), domain.Payload{"messages": []interface{}{}})
	var policyErr *domain.PolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, DecisionBlock, policyErr.Decision)
	assert.Equal(t, "model is required", policyErr.Reason)
	assert.Equal(t, domain.ErrorCodePolicy, domain.Describe(err).Code)

	assert.NoError(t, engine.Check(context.Background(), domain.Payload{"model": "m"}))
}

func TestNewEngineFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.rego")
	require.NoError(t, os.WriteFile(path, []byte(`
package request_policy

default decision = "allow"

decision = "block" {
	input.model == "forbidden"
}
`), 0o644))

	engine, err := NewEngineFromFile(context.Background(), path)
	require.NoError(t, err)

	err = engine.Check(context.Background(), domain.Payload{"model": "forbidden"})
	var policyErr *domain.PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Empty(t, policyErr.Reason)
	assert.NoError(t, engine.Check(context.Background(), domain.Payload{"model": ""}))

	_, err = NewEngineFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.rego"))
	assert.Error(t, err)
}

func TestNewEngineInvalidModule(t *testing.T) {
	_, err := NewEngine(context.Background(), "package request_policy\n\ndecision = {")
	assert.Error(t, err)
}
