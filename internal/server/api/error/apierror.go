// Package apierror builds the problem documents returned by the control API.
package apierror

import (
	"errors"

	"github.com/Alia5/viashift/apitypes"
)

func ErrBadRequest(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: detail}
}
func ErrUnauthorized(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 401, Title: "Unauthorized", Detail: detail}
}
func ErrNotFound(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 404, Title: "Not Found", Detail: detail}
}
func ErrConflict(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 409, Title: "Conflict", Detail: detail}
}
func ErrUnavailable(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 503, Title: "Service Unavailable", Detail: detail}
}
func ErrInternal(detail string) *apitypes.ApiError {
	return &apitypes.ApiError{Status: 500, Title: "Internal Server Error", Detail: detail}
}

// WrapError normalizes any error into *apitypes.ApiError. Wrapped API errors
// keep their status; everything else becomes an internal error.
func WrapError(err error) *apitypes.ApiError {
	if err == nil {
		return nil
	}
	var ae *apitypes.ApiError
	if errors.As(err, &ae) {
		return ae
	}
	var av apitypes.ApiError
	if errors.As(err, &av) {
		return &av
	}
	return ErrInternal(err.Error())
}
