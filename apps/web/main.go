package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/dig"

	dig_container "github.com/trezcool/assignflow/apps/web/di/dig"
	echoweb "github.com/trezcool/assignflow/apps/web/echo"
	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/session"
	appfs "github.com/trezcool/assignflow/fs"
)

type appParams struct {
	dig.In
	Conf           *core.Config
	Logger         core.Logger
	Backend        *dig_container.Backend
	Sessions       *session.Registry
	ClosePersister func() error `name:"closePersister"`
	Server         echoweb.Server
	Shutdown       dig_container.ShutdownChannel
}

func main() {
	c := dig_container.New()
	must(c.Invoke(run))
}

func run(p appParams) {
	conf, logger := p.Conf, p.Logger

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, backend %q", conf.Build, conf.Backend.Driver))

	if err := core.ParseEmailTemplates(appfs.FS, conf.Debug || conf.TestMode); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	defer func() {
		if err := p.Backend.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing backend: %v", err), err)
		}
	}()
	defer func() {
		if err := p.ClosePersister(); err != nil {
			logger.Error(fmt.Sprintf("closing session store: %v", err), err)
		}
	}()
	defer logger.Info("Application stopped")

	if err := p.Sessions.StartSweeper(conf.Server.SessionSweepSpec); err != nil {
		logger.Fatal(fmt.Sprintf("starting session sweeper: %v", err), err)
	}
	defer p.Sessions.Shutdown()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Service

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("listening on %s", conf.Server.Address))
		serverErrors <- p.Server.Start()
	}()

	signal.Notify(p.Shutdown, os.Interrupt, syscall.SIGTERM)

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-p.Shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := p.Server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
