package inmemdb

import (
	"context"

	"github.com/darasahq/darasa/core/profile"
)

type profileRepository struct {
	db *profileTable
}

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db.profile}
}

func (repo *profileRepository) CreateProfile(_ context.Context, prof profile.Profile) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[prof.UserID] = &prof
	return prof, nil
}

func (repo *profileRepository) GetProfileByUserID(_ context.Context, userID string) (profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if userID != "" {
		if prof, ok := repo.db.table[userID]; ok {
			return *prof, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpdateProfile(_ context.Context, prof profile.Profile) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prof.UserID]; !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	repo.db.table[prof.UserID] = &prof
	return prof, nil
}
