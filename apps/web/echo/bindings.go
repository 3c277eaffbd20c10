package echoweb

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core"
)

// viewQuery holds the query parameters the pages understand.
type viewQuery struct {
	Tab      string `query:"tab"`
	Search   string `query:"q"`
	Category string `query:"category"`
	Dept     string `query:"dept"`
	Student  string `query:"student"`
	Grade    string `query:"grade"`
	Filter   string `query:"filter"`
	Saved    string `query:"saved"`
	Sent     bool   `query:"sent"`
}

func (q *viewQuery) Bind(ctx echo.Context) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, q); err != nil {
		return errors.Wrap(err, "binding query params")
	}
	q.Search = core.CleanString(q.Search)
	return nil
}

var errInvalidForm = errors.New("invalid form data")

// bindForm binds the posted form into dest. Malformed values, e.g. letters in a number field,
// are reported as a validation error so the form can be shown again.
func bindForm(ctx echo.Context, dest interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(ctx, dest); err != nil {
		return core.NewValidationError(errInvalidForm)
	}
	return nil
}

// validationFields returns the per-field messages of a validation error, translated.
// The second value is false for any other error.
func (s *server) validationFields(err error) (map[string]string, bool) {
	vErr, ok := errors.Cause(core.TranslateValidation(err, s.opts.Translator)).(*core.ValidationError)
	if !ok {
		return nil, false
	}
	if len(vErr.Fields) == 0 {
		return map[string]string{"": vErr.Error()}, true
	}
	return vErr.FieldMap(), true
}
