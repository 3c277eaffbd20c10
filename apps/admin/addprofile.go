package main

import (
	"context"
	"fmt"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/user"
)

// addProfile validates np and stores it as a profile row.
func (cli *commandLine) addProfile(np user.NewProfile) error {
	if err := cli.validate.Struct(np); err != nil {
		return core.TranslateValidation(err, cli.translator)
	}
	p, err := cli.profiles.CreateProfile(context.Background(), np.Profile())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created profile %s: %s (%s)\n", p.ID, p.FullName.String, p.Role)
	return nil
}
