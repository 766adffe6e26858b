package profile

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

var ErrNotFound = errors.New("profile not found")

type (
	Repository interface {
		CreateProfile(ctx context.Context, prof Profile) (Profile, error)
		GetProfileByUserID(ctx context.Context, userID string) (Profile, error)
		UpdateProfile(ctx context.Context, prof Profile) (Profile, error)
	}

	Service interface {
		Create(ctx context.Context, np NewProfile) (Profile, error)
		GetByUserID(ctx context.Context, userID string) (Profile, error)
		Approve(ctx context.Context, usr user.User) (Profile, error)
		Reject(ctx context.Context, usr user.User) (Profile, error)
	}

	service struct {
		repo Repository
		mail core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mail: mailSvc}
}

func (svc *service) Create(ctx context.Context, np NewProfile) (Profile, error) {
	if err := np.Validate(); err != nil {
		return Profile{}, err
	}

	now := time.Now().UTC()
	prof := Profile{
		UserID:    np.UserID,
		Role:      np.Role,
		Status:    StatusPending,
		School:    np.School,
		Grade:     np.Grade,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateProfile(ctx, prof)
}

func (svc *service) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	return svc.repo.GetProfileByUserID(ctx, userID)
}

// Approve marks the user's registration as approved and notifies them.
func (svc *service) Approve(ctx context.Context, usr user.User) (Profile, error) {
	return svc.setStatus(ctx, usr, StatusApproved, "registration-approved", "Registration approved")
}

// Reject marks the user's registration as rejected and notifies them.
func (svc *service) Reject(ctx context.Context, usr user.User) (Profile, error) {
	return svc.setStatus(ctx, usr, StatusRejected, "registration-rejected", "Registration update")
}

func (svc *service) setStatus(ctx context.Context, usr user.User, status Status, tmpl, subject string) (Profile, error) {
	prof, err := svc.repo.GetProfileByUserID(ctx, usr.ID)
	if err != nil {
		return Profile{}, errors.Wrap(err, "finding profile by user ID")
	}
	prof.Status = status
	prof.UpdatedAt = time.Now().UTC()
	prof, err = svc.repo.UpdateProfile(ctx, prof)
	if err != nil {
		return Profile{}, errors.Wrap(err, "updating profile")
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: usr,
	})
	return prof, nil
}
