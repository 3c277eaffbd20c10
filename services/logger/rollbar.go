package logsvc

import (
	"context"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/user"
)

// RollbarLogger writes every entry to a std logger and reports it to Rollbar.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger configures the global Rollbar client. Reporting is off in debug or without a token.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnabled(!conf.Debug && conf.RollbarToken != "")
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

// person picks the identity the entry is about, if any, and strips it from args.
// Accepted extras: error, map[string]interface{}, user.User or *user.User.
func person(args []interface{}) (*rollbar.Person, []interface{}) {
	var who *rollbar.Person
	rest := make([]interface{}, 0, len(args))
	for _, arg := range args {
		var usr *user.User
		switch v := arg.(type) {
		case user.User:
			usr = &v
		case *user.User:
			if v == nil {
				continue
			}
			usr = v
		default:
			rest = append(rest, arg)
			continue
		}
		if who == nil {
			who = &rollbar.Person{Id: usr.ID, Username: usr.DisplayName(), Email: usr.Email}
		}
	}
	return who, rest
}

// log reports one item. The person travels with the item, not through the client's shared state.
func (l RollbarLogger) log(level, msg string, args []interface{}) {
	who, rest := person(args)
	item := append([]interface{}{msg}, rest...)
	if who != nil {
		item = append(item, rollbar.NewPersonContext(context.Background(), who))
	}
	rollbar.Log(level, item...)

	l.std.Println(msg)
	for _, arg := range rest {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
