package core

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("not found")

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	return err.Err.Error()
}

// FieldMap returns the field errors keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// TranslateValidation turns validator errors into a *ValidationError carrying translated field messages.
// Any other error is returned as is.
func TranslateValidation(err error, translator ut.Translator) error {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)})
	}
	return NewValidationError(nil, flds...)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
