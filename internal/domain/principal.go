package domain

// Principal is the resolved identity attributed to a request: an
// authenticated user id, an anonymous session handle, or both when an
// authenticated caller uploads within a tracked session.
type Principal struct {
	UserID        string // Authenticated user id ("" when anonymous)
	SessionHandle string // Anonymous handle ("" when none supplied)
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != ""
}

func (p Principal) HasSession() bool {
	return p.SessionHandle != ""
}

// IsResolved reports whether the principal carries any identity at all.
// A record can only be attributed to a resolved principal.
func (p Principal) IsResolved() bool {
	return p.IsAuthenticated() || p.HasSession()
}

// Identifier returns the component used in storage keys: the user id if
// authenticated, else the session handle, else "unknown".
func (p Principal) Identifier() string {
	if p.UserID != "" {
		return p.UserID
	}
	if p.SessionHandle != "" {
		return p.SessionHandle
	}
	return "unknown"
}
