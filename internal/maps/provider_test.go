package maps

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{errors.New("maps: OVER_QUERY_LIMIT - You have exceeded your rate-limit"), ErrRateLimited},
		{errors.New("maps: OVER_DAILY_LIMIT - "), ErrRateLimited},
		{errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), ErrRateLimited},
		{errors.New("unexpected status 429"), ErrRateLimited},
		{errors.New("maps: NOT_FOUND - "), ErrNotFound},
		{errors.New("maps: ZERO_RESULTS - "), ErrNotFound},
		{errors.New("maps: REQUEST_DENIED - key invalid"), ErrTransient},
		{errors.New("dial tcp: connection refused"), ErrTransient},
		{fmt.Errorf("get: %w", context.DeadlineExceeded), ErrTransient},
		{context.Canceled, ErrTransient},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.err), tt.err.Error())
	}
	assert.NoError(t, classify(nil))
}

func TestError_Is(t *testing.T) {
	cause := errors.New("maps: OVER_QUERY_LIMIT - ")
	err := error(newError("geocode", "Campinas, SP", ErrRateLimited, cause))

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Campinas, SP")

	var mErr *Error
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &mErr))
	assert.Equal(t, "geocode", mErr.Op)

	bare := newError("route", "a -> b", ErrNotFound, nil)
	assert.ErrorIs(t, bare, ErrNotFound)
	assert.Equal(t, `route "a -> b": no match found`, bare.Error())
}
