package gate

import (
	"context"
	"sync"

	"github.com/puntadaestudio/puntada-backend/internal/auth"
)

// Registry tracks at most one open gate per checkout session so a
// sign-in elsewhere in the browser can release a parked submission.
type Registry struct {
	mu    sync.Mutex
	gates map[string]*Gate
}

func NewRegistry() *Registry {
	return &Registry{gates: map[string]*Gate{}}
}

// Await joins the session's pending gate, opening one when none exists,
// and blocks until it settles or ctx ends.
func (r *Registry) Await(ctx context.Context, sessionID string) (*auth.Identity, error) {
	r.mu.Lock()
	g, ok := r.gates[sessionID]
	if !ok {
		g = New()
		r.gates[sessionID] = g
	}
	r.mu.Unlock()

	identity, err := g.Wait(ctx)

	// A settled gate is spent; drop it so the session can open a fresh
	// one. A canceled wait leaves the open gate behind for retries.
	select {
	case <-g.done:
		r.mu.Lock()
		if r.gates[sessionID] == g {
			delete(r.gates, sessionID)
		}
		r.mu.Unlock()
	default:
	}
	return identity, err
}

// Resolve settles the session's pending gate with the signed-in
// identity. Returns false when no submission was waiting.
func (r *Registry) Resolve(sessionID string, identity *auth.Identity) bool {
	g := r.take(sessionID)
	if g == nil {
		return false
	}
	g.Resolve(identity)
	return true
}

// Dismiss rejects the session's pending gate, signalling the shopper
// backed out of signing in. Returns false when no submission was waiting.
func (r *Registry) Dismiss(sessionID string) bool {
	g := r.take(sessionID)
	if g == nil {
		return false
	}
	g.Dismiss()
	return true
}

func (r *Registry) take(sessionID string) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.gates[sessionID]
	delete(r.gates, sessionID)
	return g
}
