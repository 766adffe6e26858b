package auth

import "github.com/darasahq/darasa/core/user"

// Guard statuses. Content is only served in StatusAuthorized, so nothing
// protected is ever rendered before role validation completes.
type GuardStatus int

const (
	StatusChecking GuardStatus = iota
	StatusRedirecting
	StatusDenied
	StatusAuthorized
)

func (s GuardStatus) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusRedirecting:
		return "redirecting"
	case StatusDenied:
		return "denied"
	case StatusAuthorized:
		return "authorized"
	}
	return "unknown"
}

// GuardResult carries the status and, for redirecting/denied, the target.
type GuardResult struct {
	Status GuardStatus
	Target string
}

// Guard gates access to content requiring a given role, driven by the
// manager's state.
type Guard struct {
	Required user.Role
}

func NewGuard(required user.Role) Guard {
	return Guard{Required: required}
}

// Evaluate maps an auth state to a guard decision:
// checking while validation has not completed, redirecting home when not
// authenticated, denied on role mismatch, authorized otherwise.
func (g Guard) Evaluate(st State) GuardResult {
	if st.Loading {
		return GuardResult{Status: StatusChecking}
	}
	if st.User == nil {
		return GuardResult{Status: StatusRedirecting, Target: PathHome}
	}
	if st.User.Role != g.Required {
		return GuardResult{Status: StatusDenied, Target: PathAccessDenied}
	}
	return GuardResult{Status: StatusAuthorized}
}
