package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	"github.com/darasahq/darasa/storage/database/inmemdb"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed, %v", err)
	}
	return &commandLine{
		usrSvc:  user.NewService(inmemdb.NewUserRepository(db)),
		profSvc: profile.NewService(inmemdb.NewProfileRepository(db), emailsvc.NewConsoleServiceMock()),
	}
}

func createUser(t *testing.T, cli *commandLine, name, email, pwd string, role user.Role) user.User {
	t.Helper()

	usr, err := cli.usrSvc.Create(context.Background(), user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}
	return usr
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)
	cli.db = sqlx.NewDb(&sql.DB{}, "postgres") // never touched; gooseRunFunc is mocked

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, cli, "Awe", "awe@test.cd", "or1g1nal", user.RoleStudent)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "n3wpassw0rd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := cli.usrSvc.GetByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetByID() failed, %v", err)
				}
				if refreshed.CheckPassword("n3wpassw0rd") != nil {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_resetPassword_shortPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, cli, "Awe", "awe@test.cd", "or1g1nal", user.RoleStudent)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("12345"), nil }

	if err := cli.run([]string{"admin", "resetpassword", "-email", usr.Email}); err == nil {
		t.Fatal("cli.run() accepted a short password")
	}
	refreshed, err := cli.usrSvc.GetByID(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("GetByID() failed, %v", err)
	}
	if refreshed.CheckPassword("or1g1nal") != nil {
		t.Error("password changed despite the validation failure")
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli := setup(t)

	student := createUser(t, cli, "Stu", "stu@test.cd", "passw0rd", user.RoleStudent)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("t3acherpwd"), nil }

	tests := []cliTest{
		{name: "no email", args: []string{"addteacher"}, wantErr: errHelp},
		{name: "new teacher", args: []string{"addteacher", "-email", "prof@test.cd", "-name", "Prof"}, extra: "prof@test.cd"},
		{name: "promote existing student", args: []string{"addteacher", "-email", student.Email}, extra: student.Email},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			ctx := context.Background()
			email := tt.extra.(string)
			usr, err := cli.usrSvc.GetByEmail(ctx, email)
			if err != nil {
				t.Fatalf("GetByEmail() failed, %v", err)
			}
			if usr.Role != user.RoleTeacher {
				t.Errorf("Role = %v, want %v", usr.Role, user.RoleTeacher)
			}
			prof, err := cli.profSvc.GetByUserID(ctx, usr.ID)
			if err != nil {
				t.Fatalf("GetByUserID() failed, %v", err)
			}
			if prof.Status != profile.StatusApproved {
				t.Errorf("Status = %v, want %v", prof.Status, profile.StatusApproved)
			}
		})
	}
}

func Test_commandLine_addTeacher_defaultName(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("t3acherpwd"), nil }

	if err := cli.run([]string{"admin", "addteacher", "-email", "noname@test.cd"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	usr, err := cli.usrSvc.GetByEmail(context.Background(), "noname@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if usr.Name != "noname" {
		t.Errorf("Name = %q, want %q", usr.Name, "noname")
	}
}

func Test_commandLine_registrationStatus(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	usr := createUser(t, cli, "Pending", "pending@test.cd", "passw0rd", user.RoleStudent)
	if _, err := cli.profSvc.Create(ctx, profile.NewProfile{UserID: usr.ID, Role: usr.Role}); err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	tests := []cliTest{
		{name: "approve: no email", args: []string{"approve"}, wantErr: errHelp},
		{name: "approve: user not found", args: []string{"approve", "-email", "lol@test.cd"}, wantErr: user.ErrNotFound},
		{name: "approve", args: []string{"approve", "-email", usr.Email}, extra: profile.StatusApproved},
		{name: "reject", args: []string{"reject", "-email", usr.Email}, extra: profile.StatusRejected},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			prof, err := cli.profSvc.GetByUserID(ctx, usr.ID)
			if err != nil {
				t.Fatalf("GetByUserID() failed, %v", err)
			}
			if want := tt.extra.(profile.Status); prof.Status != want {
				t.Errorf("Status = %v, want %v", prof.Status, want)
			}
		})
	}
}
