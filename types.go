package goSessionAuth

// AuthState is the coarse-grained authentication state derived from a session
// record. It is a closed enumeration: no other states exist, and transitions
// happen only through explicit session writes.
type AuthState uint8

const (
	// StateUnauthenticated means no valid user could be derived.
	StateUnauthenticated AuthState = iota
	// StateNeedsMfa means a user is established but a second factor is
	// outstanding. A session in this state must not be treated as fully
	// authenticated.
	StateNeedsMfa
	// StateAuthenticated means the user is fully verified.
	StateAuthenticated
)

// String describes the string operation and its observable behavior.
func (s AuthState) String() string {
	switch s {
	case StateNeedsMfa:
		return "needs_mfa"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// AuthToken is the per-request result of authentication derivation. It is
// produced fresh by [Provider.GetAuthToken], owned by the request-handling
// context, and never persisted.
type AuthToken[U any] struct {
	User  U
	State AuthState
}

// NewAuthToken describes the newauthtoken operation and its observable behavior.
func NewAuthToken[U any](user U, state AuthState) *AuthToken[U] {
	return &AuthToken[U]{User: user, State: state}
}
