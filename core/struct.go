package core

// Party identifies a caller of the ballot contract. It is derived from the
// caller's public key by the auth package and is opaque everywhere else.
type Party string

// Anonymous is the party of an unsigned request.
const Anonymous Party = ""

// IsAnonymous reports whether the party carries no identity.
func (p Party) IsAnonymous() bool {
	return p == Anonymous
}

// Short returns a prefix of the identity for log lines.
func (p Party) Short() string {
	if p == Anonymous {
		return "<anonymous>"
	}
	if len(p) > 12 {
		return string(p[:12])
	}
	return string(p)
}

// DefaultStateKey is the store key under which the poll is persisted.
const DefaultStateKey = "state"
