package policy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/pdfchat/internal/chat"
)

var _ chat.Guard = (*Engine)(nil)

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy, 10)
	require.NoError(t, err)

	cases := []struct {
		name     string
		query    string
		decision string
		reason   string
	}{
		{"plain query", "refunds?", DecisionAllow, ""},
		{"exactly at limit", strings.Repeat("a", 10), DecisionAllow, ""},
		{"blank", "   ", DecisionBlock, "query is empty"},
		{"too long", strings.Repeat("a", 11), DecisionBlock, "query exceeds 10 characters"},
		{"counts runes not bytes", strings.Repeat("é", 10), DecisionAllow, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, reason, err := engine.Check(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.decision, decision)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestDefaultPolicyWithoutLengthLimit(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy, 0)
	require.NoError(t, err)

	decision, _, err := engine.Check(ctx, strings.Repeat("a", 100000))
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestNewEngineRejectsInvalidPolicy(t *testing.T) {
	_, err := NewEngine(context.Background(), "package broken\nresult := {", 10)
	assert.Error(t, err)
}

func TestNewEngineFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "policy.rego")
	custom := `
package query_policy

result := {"decision": "block", "reason": "read-only mode"}
`
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o600))

	engine, err := NewEngineFromFile(ctx, path, 10)
	require.NoError(t, err)
	decision, reason, err := engine.Check(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)
	assert.Equal(t, "read-only mode", reason)

	_, err = NewEngineFromFile(ctx, filepath.Join(t.TempDir(), "missing.rego"), 10)
	assert.Error(t, err)

	engine, err = NewEngineFromFile(ctx, "", 10)
	require.NoError(t, err)
	decision, _, err = engine.Check(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestSessionUsesEngineAsGuard(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy, 5)
	require.NoError(t, err)

	store := chat.NewMemoryStore()
	s := chat.NewSession("f", "ws://unused", nil, store, chat.WithGuard(engine))

	err = s.SendMessage(nil, "far too long", "0")
	var policyErr *chat.PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Equal(t, "query exceeds 5 characters", policyErr.Reason)
	assert.Equal(t, 0, store.Len())
}
