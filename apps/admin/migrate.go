package main

import (
	"github.com/trezcool/assignflow/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
