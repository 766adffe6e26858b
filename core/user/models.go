package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/darasahq/darasa/core"
)

// Roles
const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleTeacher, RoleStudent}

type Role string

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole returns the Role matching `s`; anything unknown defaults to RoleStudent.
func ParseRole(s string) Role {
	if r := Role(core.CleanString(s, true /* lower */)); r.Valid() {
		return r
	}
	return RoleStudent
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"omitempty,role"`
}

func (nu *NewUser) Validate(svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     Role   `json:"role" validate:"omitempty,role"`
	IsActive *bool  `json:"is_active"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (uu *UpdateUser) Validate(usr User, svc Service) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	if uu.Email != "" && uu.Email != usr.Email {
		return svc.CheckEmailUniqueness(uu.Email, usr)
	}
	return nil
}

// Registration is the outcome of an email pre-check before signup.
type Registration struct {
	IsRegistered bool `json:"is_registered"`
	Role         Role `json:"role,omitempty"`
}
