package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/assignment"
	"github.com/trezcool/assignflow/core/course"
	"github.com/trezcool/assignflow/core/navigation"
	"github.com/trezcool/assignflow/core/submission"
	"github.com/trezcool/assignflow/core/support"
	"github.com/trezcool/assignflow/core/user"
)

type loginForm struct {
	Email    string    `form:"email"`
	Password string    `form:"password"`
	Role     user.Role `form:"role"`
}

func (s *server) login(ctx echo.Context) error {
	store, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var form loginForm
	if err := bindForm(ctx, &form); err != nil {
		return err
	}
	if !form.Role.Valid() {
		form.Role = ""
	}

	res := store.SignIn(ctx.Request().Context(), form.Email, form.Password, form.Role)
	if !res.OK {
		return render(ctx, http.StatusUnauthorized, "login", loginData{
			Email: form.Email,
			Role:  form.Role,
			Error: res.Error,
		})
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *server) logout(ctx echo.Context) error {
	store, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	store.SignOut(ctx.Request().Context())
	s.opts.Sessions.Close(store.ID())
	s.clearSessionCookie(ctx)
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

func (s *server) createAssignment(ctx echo.Context) error {
	store, usr, err := allowedTo(ctx, navigation.KeyAssignments)
	if err != nil {
		return err
	}

	var na assignment.NewAssignment
	err = bindForm(ctx, &na)
	if err == nil {
		na.Clean()
		err = s.opts.Validate.Struct(na)
	}
	if err != nil {
		fields, ok := s.validationFields(err)
		if !ok {
			return errors.Wrap(err, "validating NewAssignment")
		}
		form := assignmentForm{Open: true, Values: na, Errors: fields}
		return render(ctx, http.StatusBadRequest, "assignments", s.assignmentsData(ctx, store, viewQuery{}, form))
	}

	b := s.board(store)
	reqCtx := store.Authorize(ctx.Request().Context())
	b.Mount(reqCtx)
	res := b.Create(reqCtx, na, usr.ID)
	if res.Reconcile == core.ReconcileLocal {
		return ctx.Redirect(http.StatusSeeOther, "/assignments?saved=local")
	}
	return ctx.Redirect(http.StatusSeeOther, "/assignments")
}

func (s *server) deleteAssignment(ctx echo.Context) error {
	store, _, err := allowedTo(ctx, navigation.KeyAssignments)
	if err != nil {
		return err
	}

	b := s.board(store)
	reqCtx := store.Authorize(ctx.Request().Context())
	b.Mount(reqCtx)
	if _, ok := b.Get(ctx.Param("id")); !ok {
		return errHttpNotFound
	}
	// a failed remote delete already refetched the list; the page shows what is left
	b.Delete(reqCtx, ctx.Param("id"))
	return ctx.Redirect(http.StatusSeeOther, "/assignments")
}

func (s *server) gradeSubmission(ctx echo.Context) error {
	store, _, err := allowedTo(ctx, navigation.KeySubmissions)
	if err != nil {
		return err
	}

	id := ctx.Param("id")
	d := s.desk(store)
	if _, ok := d.Get(id); !ok {
		return errHttpNotFound
	}

	var g submission.Grade
	err = bindForm(ctx, &g)
	if err == nil {
		err = s.opts.Validate.Struct(g)
	}
	if err != nil {
		fields, ok := s.validationFields(err)
		if !ok {
			return errors.Wrap(err, "validating Grade")
		}
		return render(ctx, http.StatusBadRequest, "submissions", s.submissionsData(store, id, gradeForm{Values: g, Errors: fields}))
	}

	if _, err := d.SaveGrade(id, g); err != nil {
		if err == core.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "saving grade")
	}
	return ctx.Redirect(http.StatusSeeOther, "/submissions")
}

func (s *server) submitAssignment(ctx echo.Context) error {
	store, usr, err := allowedTo(ctx, navigation.KeyMyAssignments)
	if err != nil {
		return err
	}

	id := ctx.Param("id")
	var found *assignment.Assignment
	for _, a := range s.opts.Fixtures.Assignments() {
		if a.ID == id {
			a := a
			found = &a
			break
		}
	}
	if found == nil {
		return errHttpNotFound
	}

	s.myDesk(store).Submit(*found, course.DemoStudentID, usr.DisplayName(), time.Now())
	return ctx.Redirect(http.StatusSeeOther, "/my-assignments")
}

func (s *server) askFaculty(ctx echo.Context) error {
	_, usr, err := allowedTo(ctx, navigation.KeySupport)
	if err != nil {
		return err
	}

	var q support.Query
	err = bindForm(ctx, &q)
	if err == nil {
		q.Clean()
		err = s.opts.Validate.Struct(q)
	}
	if err != nil {
		fields, ok := s.validationFields(err)
		if !ok {
			return errors.Wrap(err, "validating Query")
		}
		return render(ctx, http.StatusBadRequest, "support", supportData{Values: q, Errors: fields})
	}

	if err := s.opts.Support.Ask(usr, q); err != nil {
		return errors.Wrap(err, "asking faculty")
	}
	return ctx.Redirect(http.StatusSeeOther, "/support?sent=1")
}
