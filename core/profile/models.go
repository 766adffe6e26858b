package profile

import (
	"time"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// Registration statuses
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Status string

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Profile is the persisted metadata about an identity beyond the session
// store's own record. Created at signup, mutated by the approval action,
// never deleted.
type Profile struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Role      user.Role `json:"role" db:"role"`
	Status    Status    `json:"status" db:"status"`
	School    string    `json:"school,omitempty" db:"school"`
	Grade     string    `json:"grade,omitempty" db:"grade"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (p *Profile) IsApproved() bool {
	return p.Status == StatusApproved
}

// NewProfile contains information needed to create a new Profile at signup.
type NewProfile struct {
	UserID string    `json:"user_id" validate:"required"`
	Role   user.Role `json:"role" validate:"omitempty,role"`
	School string    `json:"school"`
	Grade  string    `json:"grade"`
}

func (np *NewProfile) Validate() error {
	np.School = core.CleanString(np.School)
	np.Grade = core.CleanString(np.Grade)
	if np.Role == "" {
		np.Role = user.RoleStudent
	}
	return core.Validate.Struct(np)
}
