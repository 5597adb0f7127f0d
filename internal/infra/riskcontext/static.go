package riskcontext

import (
	"context"
	"sync"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
)

// StaticProvider serves a fixed baseline context with per-session overrides.
// Deployments with a real device or geo feed replace this provider.
type StaticProvider struct {
	mu        sync.RWMutex
	baseline  domain.SessionContext
	overrides map[string]domain.SessionContext
}

var _ port.ContextProvider = (*StaticProvider)(nil)

func NewStaticProvider(baseline domain.SessionContext) *StaticProvider {
	return &StaticProvider{
		baseline:  baseline,
		overrides: make(map[string]domain.SessionContext),
	}
}

// SetOverride pins a context for a single session.
func (p *StaticProvider) SetOverride(sessionID string, sc domain.SessionContext) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides[sessionID] = sc
}

// ClearOverride removes a pinned context.
func (p *StaticProvider) ClearOverride(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.overrides, sessionID)
}

func (p *StaticProvider) ContextFor(_ context.Context, sessionID string) (domain.SessionContext, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if sc, ok := p.overrides[sessionID]; ok {
		return sc, nil
	}
	return p.baseline, nil
}
