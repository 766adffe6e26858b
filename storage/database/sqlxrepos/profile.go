package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/profile"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) CreateProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO profile (user_id, role, status, school, grade, created_at, updated_at)
		VALUES (:user_id, :role, :status, :school, :grade, :created_at, :updated_at)`,
		prof,
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return prof, nil
}

func (repo *profileRepository) GetProfileByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	var prof profile.Profile
	err := repo.db.GetContext(ctx, &prof, `SELECT * FROM profile WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, errors.Wrap(err, "getting profile by user ID")
	}
	return prof, nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE profile
		SET role = :role, status = :status, school = :school, grade = :grade, updated_at = :updated_at
		WHERE user_id = :user_id`,
		prof,
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "updating profile")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}
	return prof, nil
}
