package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/fixtures"
	logsvc "github.com/trezcool/assignflow/services/logger"
	"github.com/trezcool/assignflow/services/supabase"
	"github.com/trezcool/assignflow/storage/database"
	pgrepos "github.com/trezcool/assignflow/storage/database/postgres"
	"github.com/trezcool/assignflow/storage/remote"
)

var logger core.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	errAndDie(database.Ping(ctx, db, 10))
	cancel()

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	// start CLI
	client := supabase.NewClient(conf.Backend.URL, conf.Backend.AnonKey, supabase.WithTimeout(conf.Backend.Timeout))
	cli := commandLine{
		db:         db,
		profiles:   pgrepos.NewProfileRepository(db),
		newAuth:    remote.AuthFactory(client),
		roster:     fixtures.MustDefault().Roster,
		validate:   validate,
		translator: translator,
		logger:     logger,
		out:        os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("\nerror: " + err.Error())
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error())
	}
}
