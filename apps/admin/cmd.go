package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/session"
	"github.com/trezcool/assignflow/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	profiles   user.ProfileRepository
	newAuth    session.AuthFactory
	roster     *user.Roster
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) against the database")
	fmt.Fprintln(cli.out, "  addprofile -id UUID -name NAME -role ROLE [-department D] [-studentid ID] [-semester N] [-section S] [-cgpa F] - create a profile")
	fmt.Fprintln(cli.out, "  checklogin -email EMAIL [-role teacher|student] - check credentials like the sign-in page does")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addProfileCmd := flag.NewFlagSet("addprofile", flag.ExitOnError)
	addProfileCmd.SetOutput(cli.out)
	addProfileID := addProfileCmd.String("id", "", "The auth user id (UUID) the profile belongs to.")
	addProfileName := addProfileCmd.String("name", "", "Full name.")
	addProfileRole := addProfileCmd.String("role", "", "admin, teacher or student.")
	addProfileDept := addProfileCmd.String("department", "", "Department.")
	addProfileStudentID := addProfileCmd.String("studentid", "", "Student id, required for students.")
	addProfileSemester := addProfileCmd.Int("semester", 0, "Semester (1-12).")
	addProfileSection := addProfileCmd.String("section", "", "Section.")
	addProfileCGPA := addProfileCmd.Float64("cgpa", 0, "CGPA (0-10).")

	checkLoginCmd := flag.NewFlagSet("checklogin", flag.ExitOnError)
	checkLoginCmd.SetOutput(cli.out)
	checkLoginEmail := checkLoginCmd.String("email", "", "The account email. The password will be prompted next.")
	checkLoginRole := checkLoginCmd.String("role", "", "teacher or student; empty matches any demo account.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addprofile":
		if err := addProfileCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addProfileID == "" && *addProfileName == "" {
			addProfileCmd.Usage()
			return errHelp
		}
		return cli.addProfile(user.NewProfile{
			ID:         *addProfileID,
			FullName:   *addProfileName,
			Role:       user.Role(*addProfileRole),
			Department: *addProfileDept,
			StudentID:  *addProfileStudentID,
			Semester:   *addProfileSemester,
			Section:    *addProfileSection,
			CGPA:       *addProfileCGPA,
		})
	case "checklogin":
		if err := checkLoginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *checkLoginEmail == "" {
			checkLoginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			checkLoginCmd.Usage()
			return errHelp
		}
		role := user.Role(*checkLoginRole)
		if !role.Valid() {
			role = ""
		}
		return cli.checkLogin(*checkLoginEmail, string(pwd), role)
	default:
		cli.printUsage()
		return errHelp
	}
}
