package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		CheckRegistration(ctx context.Context, email string) (Registration, error)
		Update(ctx context.Context, usr User, uu UpdateUser) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckEmailUniqueness(email string, excludedUsers ...User) error {
	err := svc.repo.CheckEmailUniqueness(context.Background(), email, excludedUsers...)
	if err == ErrEmailExists {
		return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return err
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// CheckRegistration reports whether an identity already exists for `email`.
// Used to prevent duplicate-account creation before signup.
func (svc *service) CheckRegistration(ctx context.Context, email string) (Registration, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Registration{}, nil
		}
		return Registration{}, errors.Wrap(err, "finding user by email")
	}
	return Registration{IsRegistered: true, Role: usr.Role}, nil
}

func (svc *service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	if err := uu.Validate(usr, svc); err != nil {
		return User{}, err
	}

	if uu.Name != "" {
		usr.Name = uu.Name
	}
	if uu.Email != "" {
		usr.Email = uu.Email
	}
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}
