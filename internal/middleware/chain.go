// Package middleware provides chainable handlers for processing MCP messages,
// like validation. It implements the Chain interface defined in the mcptypes
// package for building message processing pipelines.
// file: internal/middleware/chain.go
package middleware

import (
	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// middlewareChain implements the Chain interface for building middleware stacks.
type middlewareChain struct {
	handler     mcptypes.MessageHandler
	middlewares []mcptypes.MiddlewareFunc
	finalized   bool
}

// NewChain creates a new middleware chain with the given final handler.
func NewChain(finalHandler mcptypes.MessageHandler) mcptypes.Chain {
	return &middlewareChain{
		handler:     finalHandler,
		middlewares: make([]mcptypes.MiddlewareFunc, 0),
		finalized:   false,
	}
}

// Use adds a middleware function to the chain.
func (c *middlewareChain) Use(middleware mcptypes.MiddlewareFunc) mcptypes.Chain {
	if c.finalized {
		return NewChain(c.handler).Use(middleware)
	}

	c.middlewares = append(c.middlewares, middleware)
	return c
}

// Handler returns the composed handler. Middleware runs in the order it was
// added, with the final handler last.
func (c *middlewareChain) Handler() mcptypes.MessageHandler {
	if c.finalized {
		return c.handler
	}

	handler := c.handler
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}

	c.finalized = true
	c.handler = handler

	return handler
}
