package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	echoapi "github.com/darasahq/darasa/api/echo"
	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/auth"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	sendgridmail "github.com/darasahq/darasa/services/email/sendgrid"
	logsvc "github.com/darasahq/darasa/services/logger"
	"github.com/darasahq/darasa/storage/database"
	"github.com/darasahq/darasa/storage/database/inmemdb"
	"github.com/darasahq/darasa/storage/database/sqlxrepos"
	"github.com/darasahq/darasa/storage/kv"
	"github.com/darasahq/darasa/storage/sessions"
)

const shutdownTimeout = 20 * time.Second

func main() {
	conf := core.Conf

	// =========================================================================
	// Set up Dependencies

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.RollbarToken != "" {
		rollbarLogger := logsvc.NewRollbarLogger(std, conf)
		rollbarLogger.Enable(!conf.Debug)
		logger = rollbarLogger
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	var mailSvc core.EmailService
	if conf.SendgridAPIKey != "" && !conf.Debug {
		mailSvc = sendgridmail.NewService()
	} else {
		mailSvc = emailsvc.NewConsoleService()
	}

	// set up repositories; an empty database URL keeps everything in memory
	var (
		usrRepo  user.Repository
		profRepo profile.Repository
	)
	if conf.Database.URL != "" {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer db.Close()
		usrRepo = sqlxrepos.NewUserRepository(db)
		profRepo = sqlxrepos.NewProfileRepository(db)
	} else {
		db, err := inmemdb.Open()
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening in-memory database: %v", err), err)
		}
		usrRepo = inmemdb.NewUserRepository(db)
		profRepo = inmemdb.NewProfileRepository(db)
	}

	var sessStore session.Store
	if conf.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal(fmt.Sprintf("pinging redis: %v", err), err)
		}
		cancel()
		defer client.Close()
		sessStore = sessions.NewRedisStore(client)
	} else {
		sessStore = sessions.NewInMemStore()
	}

	usrSvc := user.NewService(usrRepo)
	profSvc := profile.NewService(profRepo, mailSvc)

	mgr := auth.NewManager(auth.Options{
		Sessions: sessStore,
		Authn:    session.NewAuthenticator(usrSvc),
		Users:    usrSvc,
		Profiles: profSvc,
		KV:       kv.NewStore(),
		Logger:   logger,
	})
	mgr.Start()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:  fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port),
		Users:    usrSvc,
		Profiles: profSvc,
		Sessions: sessStore,
		Manager:  mgr,
		Logger:   logger,
		SignalShutdown: func() {
			shutdown <- syscall.SIGTERM
		},
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s:%d", conf.Server.Host, conf.Server.Port))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
		}
	}
}
