package user

import (
	"strings"

	"github.com/trezcool/assignflow/core"
)

// Roster is the fixture list of demo accounts used when the remote backend cannot authenticate.
type Roster struct {
	accounts []Account
}

func NewRoster(accounts ...Account) *Roster {
	return &Roster{accounts: accounts}
}

// inNamespace tells whether an account with role `have` may sign in through the `want` role toggle.
// Students and staff are separate namespaces; an empty toggle matches both.
func inNamespace(have, want Role) bool {
	switch {
	case want == "":
		return true
	case want == RoleStudent:
		return have == RoleStudent
	default:
		return have.IsStaff()
	}
}

// Match finds the account with the given email (case-insensitive) in the role's namespace and checks its password.
func (r *Roster) Match(email, password string, role Role) (User, error) {
	email = core.CleanString(email, true /* lower */)
	for i := range r.accounts {
		acc := &r.accounts[i]
		if strings.ToLower(acc.Email) != email || !inNamespace(acc.Role, role) {
			continue
		}
		if err := acc.CheckPassword(password); err != nil {
			return User{}, ErrInvalidCredentials
		}
		return acc.User, nil
	}
	return User{}, ErrInvalidCredentials
}

func (r *Roster) Get(id string) (User, bool) {
	for _, acc := range r.accounts {
		if acc.ID == id {
			return acc.User, true
		}
	}
	return User{}, false
}

func (r *Roster) Users() []User {
	users := make([]User, 0, len(r.accounts))
	for _, acc := range r.accounts {
		users = append(users, acc.User)
	}
	return users
}

func (r *Roster) Students() []User {
	users := make([]User, 0, len(r.accounts))
	for _, acc := range r.accounts {
		if acc.IsStudent() {
			users = append(users, acc.User)
		}
	}
	return users
}
