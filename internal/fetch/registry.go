package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateToken is returned when a token is registered twice.
var ErrDuplicateToken = errors.New("callback token already registered")

// Pending is the handle returned by Register. Done delivers the payload at
// most once.
type Pending struct {
	token string
	done  chan json.RawMessage
}

// Token returns the callback token.
func (p *Pending) Token() string {
	return p.token
}

// Done returns the channel that receives the payload when the token is resolved.
func (p *Pending) Done() <-chan json.RawMessage {
	return p.done
}

// Registry maps callback tokens to pending requests. Entries are removed by
// the first Resolve or by Remove, whichever comes first.
type Registry struct {
	mu      sync.Mutex
	pending map[string]*Pending
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]*Pending)}
}

// Register adds token and returns its pending handle.
func (r *Registry) Register(token string) (*Pending, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pending[token]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, token)
	}
	p := &Pending{token: token, done: make(chan json.RawMessage, 1)}
	r.pending[token] = p
	return p, nil
}

// Resolve delivers payload to token's pending handle and removes the entry.
// It reports false when the token is unknown or already settled.
func (r *Registry) Resolve(token string, payload json.RawMessage) bool {
	r.mu.Lock()
	p, ok := r.pending[token]
	if ok {
		delete(r.pending, token)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	p.done <- payload
	return true
}

// Remove drops token without resolving it. It is safe to call repeatedly.
func (r *Registry) Remove(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[token]; !ok {
		return false
	}
	delete(r.pending, token)
	return true
}

// Has reports whether token is still registered.
func (r *Registry) Has(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[token]
	return ok
}

// Len returns the number of outstanding tokens.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
