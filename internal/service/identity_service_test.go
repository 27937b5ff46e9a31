package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	userID string
	err    error
}

func (p *stubProvider) Validate(ctx context.Context, credential string) (string, error) {
	return p.userID, p.err
}

func TestResolveAuthenticated(t *testing.T) {
	r := NewIdentityResolver(&stubProvider{userID: "u1"}, "test-ns")
	assert.Equal(t, "u1", r.ResolveAuthenticated(context.Background(), "some.token"))
}

func TestResolveAuthenticatedDowngradesFailures(t *testing.T) {
	// Any provider failure means "no identity", never an error.
	r := NewIdentityResolver(&stubProvider{err: errors.New("provider unreachable")}, "test-ns")
	assert.Equal(t, "", r.ResolveAuthenticated(context.Background(), "some.token"))
}

func TestResolveAuthenticatedEmptyCredential(t *testing.T) {
	provider := &stubProvider{userID: "u1"}
	r := NewIdentityResolver(provider, "test-ns")
	assert.Equal(t, "", r.ResolveAuthenticated(context.Background(), ""))
}

func TestAnonymousHandleDeterministic(t *testing.T) {
	r := NewIdentityResolver(&stubProvider{}, "test-ns")

	h1 := r.AnonymousHandle("15551234567")
	h2 := r.AnonymousHandle("15551234567")
	assert.Equal(t, h1, h2, "same external id must always yield the same handle")

	h3 := r.AnonymousHandle("15559876543")
	assert.NotEqual(t, h1, h3, "different external ids must yield different handles")

	assert.True(t, strings.HasPrefix(h1, "anon_"))
	assert.Len(t, h1, len("anon_")+16)
	// The raw identifier must never leak into the handle.
	assert.NotContains(t, h1, "15551234567")
}

func TestAnonymousHandleNamespaceScoped(t *testing.T) {
	a := NewIdentityResolver(&stubProvider{}, "ns-a")
	b := NewIdentityResolver(&stubProvider{}, "ns-b")
	assert.NotEqual(t, a.AnonymousHandle("15551234567"), b.AnonymousHandle("15551234567"))
}

func TestEphemeralHandleFreshPerCall(t *testing.T) {
	r := NewIdentityResolver(&stubProvider{}, "test-ns")

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		h := r.EphemeralHandle()
		assert.True(t, strings.HasPrefix(h, "temp_"))
		assert.False(t, seen[h], "ephemeral handles must not repeat")
		seen[h] = true
	}
}
