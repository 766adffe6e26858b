package user

import "strings"

// The legacy client encoded a user's display name and role as a single
// delimited string ("<name>|<role>") in the auth provider's displayName field.
// The codec is confined to this boundary; everything else uses the structured
// Name and Role fields.

const labelDelimiter = "|"

// ParseLabel splits a composite display label on the first delimiter.
// A malformed label (missing delimiter, unknown role) yields the whole string
// as the name and RoleStudent; it never fails.
func ParseLabel(label string) (name string, role Role) {
	parts := strings.SplitN(label, labelDelimiter, 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return name, RoleStudent
	}
	return name, ParseRole(parts[1])
}

// FormatLabel encodes name and role back into the composite form for records
// written by the legacy client.
func FormatLabel(name string, role Role) string {
	return name + labelDelimiter + string(role)
}
