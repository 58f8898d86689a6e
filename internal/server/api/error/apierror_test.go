package apierror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/viashift/apitypes"
	apierror "github.com/Alia5/viashift/internal/server/api/error"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{name: "api error", err: apierror.ErrNotFound("x"), wantStatus: 404, wantDetail: "x"},
		{name: "wrapped api error", err: fmt.Errorf("route: %w", apierror.ErrUnavailable("busy")), wantStatus: 503, wantDetail: "busy"},
		{name: "api error value", err: apitypes.ApiError{Status: 409, Title: "Conflict", Detail: "dup"}, wantStatus: 409, wantDetail: "dup"},
		{name: "plain error", err: errors.New("boom"), wantStatus: 500, wantDetail: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apierror.WrapError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantDetail, got.Detail)
		})
	}
	assert.Nil(t, apierror.WrapError(nil))
}
