// file: internal/middleware/chain_test.go
package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// appendingMiddleware tags the response so execution order is observable.
func appendingMiddleware(tag string) mcptypes.MiddlewareFunc {
	return func(next mcptypes.MessageHandler) mcptypes.MessageHandler {
		return func(ctx context.Context, message []byte) ([]byte, error) {
			resp, err := next(ctx, message)
			if err != nil {
				return nil, err
			}
			return append(resp, []byte(tag)...), nil
		}
	}
}

func TestChain_NoMiddleware_CallsFinalHandler(t *testing.T) {
	final := func(_ context.Context, message []byte) ([]byte, error) {
		return message, nil
	}

	chain := NewChain(final)
	handler := chain.Handler()

	resp, err := handler(context.Background(), []byte("hello"))
	require.NoError(t, err, "Plain chain should not error.")
	assert.Equal(t, "hello", string(resp), "Final handler should receive the message unchanged.")
}

func TestChain_Middleware_RunsInRegistrationOrder(t *testing.T) {
	final := func(_ context.Context, _ []byte) ([]byte, error) {
		return []byte("base"), nil
	}

	chain := NewChain(final)
	chain.Use(appendingMiddleware("-first"))
	chain.Use(appendingMiddleware("-second"))
	handler := chain.Handler()

	resp, err := handler(context.Background(), []byte("{}"))
	require.NoError(t, err, "Chained handler should not error.")
	// Inner middleware appends first, so the first registered tag lands last.
	assert.Equal(t, "base-second-first", string(resp), "Middleware should wrap in registration order.")
}

func TestChain_UseAfterFinalize_ReturnsFreshChain(t *testing.T) {
	final := func(_ context.Context, _ []byte) ([]byte, error) {
		return []byte("base"), nil
	}

	chain := NewChain(final)
	_ = chain.Handler()

	extended := chain.Use(appendingMiddleware("-late"))
	resp, err := extended.Handler()(context.Background(), []byte("{}"))
	require.NoError(t, err, "Extended chain should not error.")
	assert.Equal(t, "base-late", string(resp), "Use after finalize should yield a working chain.")
}
