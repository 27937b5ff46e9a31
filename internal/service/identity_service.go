package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"

	"github.com/google/uuid"
)

// IdentityProvider validates an opaque bearer credential and returns the
// authenticated user id it belongs to.
type IdentityProvider interface {
	Validate(ctx context.Context, credential string) (string, error)
}

// IdentityResolver derives a stable principal identifier for an inbound
// request: an authenticated user id, a deterministic anonymous handle for a
// durable external identifier, or a fresh ephemeral session handle.
type IdentityResolver interface {
	// ResolveAuthenticated returns the authenticated user id for a bearer
	// credential, or "" on any validation failure. Authentication is optional
	// at this layer — a broken identity provider must never block anonymous
	// ingestion.
	ResolveAuthenticated(ctx context.Context, credential string) string

	// AnonymousHandle derives a stable handle from a durable external
	// identifier (a phone number). Same input, same output, always.
	AnonymousHandle(externalID string) string

	// EphemeralHandle mints a fresh opaque session handle for first-contact
	// anonymous web clients. No determinism guarantee.
	EphemeralHandle() string
}

type identityResolver struct {
	provider     IdentityProvider
	namespaceKey []byte
}

// NewIdentityResolver creates an identity resolver. The namespace keys the
// anonymous-handle derivation, scoping handles to this deployment.
func NewIdentityResolver(provider IdentityProvider, namespace string) IdentityResolver {
	if namespace == "" {
		panic("identity namespace cannot be empty") // Critical configuration
	}
	return &identityResolver{
		provider:     provider,
		namespaceKey: []byte(namespace),
	}
}

func (r *identityResolver) ResolveAuthenticated(ctx context.Context, credential string) string {
	if credential == "" {
		return ""
	}
	userID, err := r.provider.Validate(ctx, credential)
	if err != nil {
		// Malformed, expired, provider unreachable — all downgrade to
		// "no authenticated identity".
		log.Printf("INFO: Bearer credential rejected: %v", err)
		return ""
	}
	return userID
}

// AnonymousHandle is a one-way, namespace-scoped derivation: HMAC-SHA256 over
// the external identifier, hex-truncated for readability. The raw identifier
// is never used as the handle itself.
func (r *identityResolver) AnonymousHandle(externalID string) string {
	mac := hmac.New(sha256.New, r.namespaceKey)
	mac.Write([]byte(externalID))
	return "anon_" + hex.EncodeToString(mac.Sum(nil))[:16]
}

func (r *identityResolver) EphemeralHandle() string {
	return "temp_" + uuid.NewString()[:16]
}
