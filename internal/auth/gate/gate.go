// Package gate provides a cancellable wait for an identity to appear.
// Checkout uses it when a guest must sign in before submitting: Wait
// blocks until some other goroutine resolves the gate with an identity,
// dismisses it, or the caller's context ends. A waiter is always
// released exactly once; no path leaks a pending waiter.
package gate

import (
	"context"
	"sync"

	"github.com/puntadaestudio/puntada-backend/internal/auth"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
)

type outcome struct {
	identity *auth.Identity
	err      error
}

// Gate is a one-shot rendezvous between waiting requests and a later
// sign-in. The first Resolve or Dismiss settles it permanently; every
// subsequent call is a no-op.
type Gate struct {
	mu      sync.Mutex
	settled bool
	out     outcome
	done    chan struct{}
}

// New creates an open gate.
func New() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Wait blocks until the gate settles or ctx ends. Any number of
// goroutines may wait on the same gate.
func (g *Gate) Wait(ctx context.Context) (*auth.Identity, error) {
	select {
	case <-g.done:
		return g.out.identity, g.out.err
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ctx.Err(), "authentication wait canceled")
	}
}

// Resolve settles the gate with the signed-in identity.
func (g *Gate) Resolve(identity *auth.Identity) {
	g.settle(outcome{identity: identity})
}

// Dismiss settles the gate with a rejection, signalling the shopper
// backed out of signing in.
func (g *Gate) Dismiss() {
	g.settle(outcome{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication dismissed")})
}

func (g *Gate) settle(out outcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.settled {
		return
	}
	g.settled = true
	g.out = out
	close(g.done)
}
