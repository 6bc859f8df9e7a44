package tracker

import (
	"crypto/subtle"
	"sync"
)

// AdminGate is a shared-secret placeholder in front of status updates. It is not a
// security boundary.
type AdminGate struct {
	secret string

	mu       sync.Mutex
	unlocked bool
}

func NewAdminGate(secret string) *AdminGate {
	return &AdminGate{secret: secret}
}

func (g *AdminGate) Unlock(secret string) bool {
	ok := g.secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(g.secret)) == 1

	g.mu.Lock()
	g.unlocked = ok
	g.mu.Unlock()

	return ok
}

func (g *AdminGate) Lock() {
	g.mu.Lock()
	g.unlocked = false
	g.mu.Unlock()
}

func (g *AdminGate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.unlocked
}
