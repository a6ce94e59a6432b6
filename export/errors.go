package export

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind classifies export failures.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
	KindNotImpl    ErrorKind = "not_implemented"
)

// kindCategories pairs each kind with its go-errors category. The kind
// string doubles as the text code.
var kindCategories = map[ErrorKind]errorslib.Category{
	KindValidation: errorslib.CategoryValidation,
	KindNotFound:   errorslib.CategoryNotFound,
	KindTimeout:    errorslib.CategoryOperation,
	KindCanceled:   errorslib.CategoryOperation,
	KindNotImpl:    errorslib.CategoryOperation,
	KindInternal:   errorslib.CategoryInternal,
}

// ExportError carries a kind alongside a message and optional cause.
type ExportError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ExportError) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewError creates an export error.
func NewError(kind ErrorKind, msg string, err error) *ExportError {
	return &ExportError{Kind: kind, Msg: msg, Err: err}
}

// AsGoError converts err for go-errors aware boundaries. go-errors values
// pass through unchanged.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}
	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	msg := err.Error()
	var exportErr *ExportError
	if errors.As(err, &exportErr) && exportErr.Msg != "" {
		msg = exportErr.Msg
	}

	kind := KindFromError(err)
	category, ok := kindCategories[kind]
	if !ok {
		kind, category = KindInternal, errorslib.CategoryInternal
	}
	return errorslib.New(msg, category).WithTextCode(string(kind))
}

// KindFromError reports the kind of err. Context errors win over wrapped
// kinds; go-errors values map by text code, then by category.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr.Kind
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		if _, ok := kindCategories[ErrorKind(ge.TextCode)]; ok {
			return ErrorKind(ge.TextCode)
		}
		switch ge.Category {
		case errorslib.CategoryValidation:
			return KindValidation
		case errorslib.CategoryNotFound:
			return KindNotFound
		}
	}
	return KindInternal
}
