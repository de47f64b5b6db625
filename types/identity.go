package types

// Identity is an opaque, already-authenticated caller identity.
// The engine never inspects its contents beyond equality: authentication
// happens upstream, and whatever the identity provider hands over (a
// wallet address, a subject claim, a service account name) is carried
// through as-is.
type Identity string

// Nobody is the zero Identity.
const Nobody Identity = ""

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool { return i == Nobody }

// Equal reports whether two identities are the same principal.
func (i Identity) Equal(other Identity) bool { return i == other }

// String returns the raw identity string.
func (i Identity) String() string { return string(i) }
