package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
)

// addTeacher creates a teacher account with an approved profile, or promotes
// an existing user to teacher.
func (cli *commandLine) addTeacher(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		usr, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:     name,
			Email:    email,
			Password: pwd,
			Role:     user.RoleTeacher,
		})
		if err != nil {
			return err
		}
	} else {
		active := true
		usr, err = cli.usrSvc.Update(ctx, usr, user.UpdateUser{
			Name:     name,
			Role:     user.RoleTeacher,
			Password: pwd,
			IsActive: &active,
		})
		if err != nil {
			return err
		}
	}

	if _, err = cli.profSvc.GetByUserID(ctx, usr.ID); err != nil {
		if errors.Cause(err) != profile.ErrNotFound {
			return err
		}
		if _, err = cli.profSvc.Create(ctx, profile.NewProfile{UserID: usr.ID, Role: user.RoleTeacher}); err != nil {
			return err
		}
	}
	_, err = cli.profSvc.Approve(ctx, usr)
	return err
}
