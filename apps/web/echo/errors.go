package echoweb

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core"
)

var (
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
	errHttpCourseNotFound = echo.NewHTTPError(http.StatusNotFound, "Course not found")
)

type errorPage struct {
	Code    int
	Title   string
	Message string
	Fields  map[string]string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		page := errorPage{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			page.Code = origErr.Code
			page.Message = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			page.Code = http.StatusBadRequest
			page.Fields = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				page.Fields[vErr.Field()] = vErr.Translate(translator)
			}
		case *core.ValidationError:
			page.Code = http.StatusBadRequest
			if origErr.Fields != nil {
				page.Fields = origErr.FieldMap()
			} else {
				page.Message = origErr.Error()
			}
		default: // any other error is a server error
			page.Code = http.StatusInternalServerError
			page.Message = http.StatusText(http.StatusInternalServerError)

			args := []interface{}{errors.Wrap(err, page.Message)}
			if usr := getContextUser(ctx); usr != nil {
				args = append(args, *usr)
			}
			logger.Error(fmt.Sprintf("%s %s: %v", ctx.Request().Method, ctx.Request().URL.Path, err), args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}
		page.Title = http.StatusText(page.Code)
		if ctx.Echo().Debug && page.Code == http.StatusInternalServerError {
			page.Message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(page.Code)
			} else {
				err = render(ctx, page.Code, "error", page)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
