package api

import apierror "github.com/Alia5/viashift/internal/server/api/error"

// Factory helpers returning *apitypes.ApiError (single canonical error type).
var (
	ErrBadRequest   = apierror.ErrBadRequest
	ErrUnauthorized = apierror.ErrUnauthorized
	ErrNotFound     = apierror.ErrNotFound
	ErrConflict     = apierror.ErrConflict
	ErrUnavailable  = apierror.ErrUnavailable
	ErrInternal     = apierror.ErrInternal
	WrapError       = apierror.WrapError
)
