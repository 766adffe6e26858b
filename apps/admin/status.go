package main

import (
	"context"

	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
)

func (cli *commandLine) setRegistrationStatus(email string, action func(ctx context.Context, usr user.User) (profile.Profile, error)) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = action(ctx, usr)
	return err
}
