package main

import (
	"context"
	"fmt"

	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/user"
)

// checkLogin signs in the way the sign-in page does, then signs out again.
func (cli *commandLine) checkLogin(email, pwd string, role user.Role) error {
	ctx := context.Background()
	store := session.NewStore("admin-cli", cli.newAuth(""), cli.profiles, cli.roster, cli.logger)
	defer store.Close()
	store.Init(ctx)

	res := store.SignIn(ctx, email, pwd, role)
	if !res.OK {
		return user.ErrInvalidCredentials
	}
	usr, _ := store.Identity()
	fmt.Fprintf(cli.out, "%s: %s <%s> is a %s\n", res.Source, usr.DisplayName(), usr.Email, usr.Role)

	store.SignOut(ctx)
	return nil
}
