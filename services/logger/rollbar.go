package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	rollbarerrs "github.com/rollbar/rollbar-go/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// RollbarLogger forwards entries to Rollbar and echoes them to a standard
// logger for local output.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrs.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// report sends the entry to Rollbar at the given level. The first user.User
// among the args becomes the entry's Rollbar person rather than payload
// data; errors and maps pass through as extras.
func (l RollbarLogger) report(level func(...interface{}), msg string, args []interface{}) {
	payload := []interface{}{msg}
	personSet := false
	for _, arg := range args {
		usr, ok := arg.(user.User)
		if !ok {
			payload = append(payload, arg)
			continue
		}
		if !personSet {
			rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
			personSet = true
		}
	}
	if !personSet {
		rollbar.ClearPerson()
	}
	level(payload...)
}

func (l RollbarLogger) echo(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.report(rollbar.Debug, msg, args)
	l.echo(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.Info, msg, args)
	l.echo(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.Warning, msg, args)
	l.echo(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.Error, msg, args)
	l.echo(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.Critical, msg, args)
	l.echo(msg, args)
	l.std.Fatal(msg)
}
