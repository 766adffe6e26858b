package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sqlx.DB // nil when running on the in-memory repos
	usrSvc  user.Service
	profSvc profile.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addteacher -email EMAIL [-name NAME] - create (or promote) an approved teacher account")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  approve -email EMAIL - approve a pending registration")
	fmt.Println("  reject -email EMAIL - reject a pending registration")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (goose commands)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ExitOnError)
	addTeacherEmail := addTeacherCmd.String("email", "", "The teacher's email. The password will be prompted next.")
	addTeacherName := addTeacherCmd.String("name", "", "The teacher's display name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	approveCmd := flag.NewFlagSet("approve", flag.ExitOnError)
	approveEmail := approveCmd.String("email", "", "The user's email.")

	rejectCmd := flag.NewFlagSet("reject", flag.ExitOnError)
	rejectEmail := rejectCmd.String("email", "", "The user's email.")

	switch args[1] {
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeacherEmail == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		return cli.addTeacher(*addTeacherEmail, *addTeacherName, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "approve":
		if err := approveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *approveEmail == "" {
			approveCmd.Usage()
			return errHelp
		}
		return cli.setRegistrationStatus(*approveEmail, cli.profSvc.Approve)
	case "reject":
		if err := rejectCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rejectEmail == "" {
			rejectCmd.Usage()
			return errHelp
		}
		return cli.setRegistrationStatus(*rejectEmail, cli.profSvc.Reject)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
