package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every error response.
//
// It does not implement error, so echo renders it as it is.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (e *ErrorResponse) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Error *string `json:"error"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}
	if f.Error == nil {
		return fmt.Errorf(`required field missing: "error"`)
	}
	e.Error = *f.Error
	return nil
}

type errorOptions struct {
	cause error
}

type ErrorMessageOption func(in *errorOptions) *errorOptions

// WithError records the cause. It is logged, not sent to clients.
func WithError(err error) ErrorMessageOption {
	return func(in *errorOptions) *errorOptions {
		if err != nil {
			in.cause = err
		}
		return in
	}
}

func NewErrorMessage(code int, message string, opts ...ErrorMessageOption) *echo.HTTPError {
	o := &errorOptions{}
	for _, opt := range opts {
		o = opt(o)
	}

	he := echo.NewHTTPError(code, ErrorResponse{Error: message})
	if o.cause != nil {
		he = he.SetInternal(o.cause)
	}
	return he
}

func BadRequest(message string, err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusBadRequest, message, WithError(err))
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

// InternalServerError tells err as it is.
func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusInternalServerError, err.Error(), WithError(err))
}

// Normalize converts any error into an HTTPError with an ErrorResponse body.
//
// Errors which are not HTTPError become 500.
func Normalize(err error) *echo.HTTPError {
	he := new(echo.HTTPError)
	if !errors.As(err, &he) {
		return InternalServerError(err)
	}

	var message string
	switch m := he.Message.(type) {
	case ErrorResponse:
		if _, nested := he.Internal.(*echo.HTTPError); !nested {
			return he
		}
		message = m.Error
	case string:
		message = m
	case error:
		message = m.Error()
	default:
		message = http.StatusText(he.Code)
	}

	var opts []ErrorMessageOption
	if _, nested := he.Internal.(*echo.HTTPError); !nested {
		opts = append(opts, WithError(he.Internal))
	}
	return NewErrorMessage(he.Code, message, opts...)
}

// HTTPErrorHandler renders errors with the ErrorResponse body, and logs them.
func HTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		he := Normalize(err)
		if he.Code >= http.StatusInternalServerError {
			c.Logger().Errorf("error: %+v", err)
		} else {
			c.Logger().Infof("error: %+v", err)
		}
		e.DefaultHTTPErrorHandler(he, c)
	}
}
