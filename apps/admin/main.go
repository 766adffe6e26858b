package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	"github.com/darasahq/darasa/storage/database"
	"github.com/darasahq/darasa/storage/database/inmemdb"
	"github.com/darasahq/darasa/storage/database/sqlxrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var (
		db       *sqlx.DB
		usrRepo  user.Repository
		profRepo profile.Repository
	)
	if core.Conf.Database.URL != "" {
		var err error
		db, err = database.Open(core.Conf)
		errAndDie(err)
		defer db.Close()
		usrRepo = sqlxrepos.NewUserRepository(db)
		profRepo = sqlxrepos.NewProfileRepository(db)
	} else {
		mem, err := inmemdb.Open()
		errAndDie(err)
		usrRepo = inmemdb.NewUserRepository(mem)
		profRepo = inmemdb.NewProfileRepository(mem)
	}

	usrSvc := user.NewService(usrRepo)
	profSvc := profile.NewService(profRepo, emailsvc.NewConsoleService())

	cli := commandLine{
		db:      db,
		usrSvc:  usrSvc,
		profSvc: profSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
