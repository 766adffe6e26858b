package inmemdb

import (
	"sync"

	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
)

type (
	DB struct {
		user    *userTable
		profile *profileTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User // keyed by ID
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*profile.Profile // keyed by UserID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		profile: &profileTable{table: make(map[string]*profile.Profile)},
	}
	return db, nil
}
