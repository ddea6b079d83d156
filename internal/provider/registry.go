package provider

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/skillsmd/skillsmd/internal/types"
)

// Registry holds an ordered collection of providers plus a fallback that is
// consulted only when no registered provider matches. The well-known
// provider lives in the fallback slot so it never pre-empts a more specific
// match.
type Registry struct {
	providers []HostProvider
	fallback  HostProvider
}

// NewRegistry creates an empty registry with no fallback.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry builds the standard provider set: HuggingFace before
// Mintlify, with the well-known provider as the unregistered fallback.
func NewDefaultRegistry(client *resty.Client) *Registry {
	if client == nil {
		client = NewHTTPClient()
	}

	r := NewRegistry()
	r.Register(NewHuggingFaceProvider(client))
	r.Register(NewMintlifyProvider(client))
	r.fallback = NewWellKnownProvider(client)
	return r
}

// Register appends a provider. Registering a second provider with an
// already-known id is a no-op.
func (r *Registry) Register(p HostProvider) {
	for _, existing := range r.providers {
		if existing.ID() == p.ID() {
			return
		}
	}
	r.providers = append(r.providers, p)
}

// SetFallback sets the provider tried after all registered ones.
func (r *Registry) SetFallback(p HostProvider) {
	r.fallback = p
}

// Find returns the first registered provider whose Match accepts the URL,
// or nil when none does. The fallback is not consulted here.
func (r *Registry) Find(rawURL string) HostProvider {
	for _, p := range r.providers {
		if p.Match(rawURL).Matches {
			return p
		}
	}
	return nil
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []HostProvider {
	return append([]HostProvider(nil), r.providers...)
}

// FetchRemoteSkill resolves a URL to a skill: registered providers first in
// order, then the fallback. Returns (nil, nil) when nothing matches or the
// matched host has no valid skill at the URL.
func (r *Registry) FetchRemoteSkill(ctx context.Context, rawURL string) (*types.RemoteSkill, error) {
	if p := r.Find(rawURL); p != nil {
		return p.FetchSkill(ctx, rawURL)
	}

	if r.fallback != nil && r.fallback.Match(rawURL).Matches {
		return r.fallback.FetchSkill(ctx, rawURL)
	}

	return nil, nil
}
