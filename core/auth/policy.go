package auth

import (
	"sort"
	"strings"

	"github.com/darasahq/darasa/core/user"
)

// Well-known paths.
const (
	PathHome         = "/"
	PathLogin        = "/auth/login"
	PathAccessDenied = "/access-denied"
)

// Dashboards by role.
var dashboards = map[user.Role]string{
	user.RoleTeacher: "/teacher",
	user.RoleStudent: "/student",
}

// Dashboard returns the landing dashboard for a role.
func Dashboard(role user.Role) string {
	if p, ok := dashboards[role]; ok {
		return p
	}
	return dashboards[user.RoleStudent]
}

// Decision is the outcome of evaluating a request against the policy.
type Decision struct {
	Allow  bool
	Target string // redirect target when !Allow
}

var (
	allow    = Decision{Allow: true}
	redirect = func(target string) Decision { return Decision{Target: target} }
)

type rule struct {
	prefix string
	role   user.Role
}

// Policy is the static mapping from path prefix to required role, consulted
// on every request. Longest matching prefix wins; prefixes are unique.
type Policy struct {
	rules    []rule
	landings map[string]bool
}

// NewPolicy builds a policy from prefix->role rules and a set of landing
// paths (where an authenticated user is bounced straight to their dashboard).
func NewPolicy(rules map[string]user.Role, landings ...string) *Policy {
	p := &Policy{
		rules:    make([]rule, 0, len(rules)),
		landings: make(map[string]bool, len(landings)),
	}
	for prefix, role := range rules {
		p.rules = append(p.rules, rule{prefix: prefix, role: role})
	}
	// longest prefix first is the canonical tie-break
	sort.Slice(p.rules, func(i, j int) bool {
		if len(p.rules[i].prefix) != len(p.rules[j].prefix) {
			return len(p.rules[i].prefix) > len(p.rules[j].prefix)
		}
		return p.rules[i].prefix < p.rules[j].prefix
	})
	for _, l := range landings {
		p.landings[l] = true
	}
	return p
}

// DefaultPolicy is the app's route policy table.
func DefaultPolicy() *Policy {
	return NewPolicy(map[string]user.Role{
		"/teacher":                  user.RoleTeacher,
		"/student":                  user.RoleStudent,
		"/content-generator":        user.RoleTeacher,
		"/question-paper-generator": user.RoleTeacher,
		"/knowledge-base":           user.RoleTeacher,
		"/visual-aids":              user.RoleTeacher,
		"/worksheet-generator":      user.RoleTeacher,
		"/lesson-planner":           user.RoleTeacher,
		"/reading-assessment":       user.RoleTeacher,
		"/storytelling":             user.RoleStudent,
		"/educational-games":        user.RoleStudent,
		"/image-generator":          user.RoleTeacher,
		"/game-creator":             user.RoleTeacher,
	}, PathHome, PathLogin)
}

// RequiredRole returns the role required for a path, if any.
func (p *Policy) RequiredRole(path string) (user.Role, bool) {
	for _, r := range p.rules {
		if strings.HasPrefix(path, r.prefix) {
			return r.role, true
		}
	}
	return "", false
}

// Evaluate is a pure function of (request path, cookie hints) deciding
// whether to let the request through or redirect it.
//
// Landing paths are handled before the protected-route check, which also
// prevents redirect loops. The role cookie is only a hint: callers must have
// verified the auth token before trusting authenticated=true.
func (p *Policy) Evaluate(path string, authenticated bool, roleHint string) Decision {
	if p.landings[path] {
		if authenticated && roleHint != "" {
			return redirect(Dashboard(user.ParseRole(roleHint)))
		}
		return allow
	}

	required, ok := p.RequiredRole(path)
	if !ok {
		return allow
	}
	if !authenticated {
		return redirect(PathHome)
	}
	if user.ParseRole(roleHint) != required {
		return redirect(PathAccessDenied)
	}
	return allow
}
