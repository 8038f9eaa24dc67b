package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_IsMatchesByType(t *testing.T) {
	sentinel := New(ErrorTypeInvalidPattern, "invalid pattern")
	detailed := NewInvalidPattern("a..b", "empty segment")

	assert.True(t, stderrors.Is(detailed, sentinel))
	assert.False(t, stderrors.Is(detailed, New(ErrorTypeInvalidKey, "invalid key")))
	assert.Equal(t, CodeInvalidPattern, detailed.Code)
	assert.Equal(t, "a..b", detailed.Details["pattern"])
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := stderrors.New("boom")
	appErr := FromError(plain)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeUnknown, appErr.Type)
	assert.Equal(t, "boom", appErr.Error())
	assert.True(t, stderrors.Is(appErr, plain))

	original := NewConfig("bad config")
	assert.Same(t, original, FromError(original))
}

func TestPanicMessage(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "handler exploded", "handler exploded"},
		{"error", stderrors.New("wrapped failure"), "wrapped failure"},
		{"int", 42, "42"},
		{"nil", nil, "panic with nil value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PanicMessage(tt.value))
		})
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("kaboom")
	}

	err := run()
	require.Error(t, err)
	assert.Equal(t, ErrorTypePanic, TypeOf(err))
	assert.Equal(t, "kaboom", err.Error())

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.NotEmpty(t, appErr.Stack)
}

func TestErrorChain(t *testing.T) {
	chain := NewErrorChain()
	assert.NoError(t, chain.Err())

	first := NewNotFound("subscription", "sub_1")
	chain.Add(nil).Add(first).Add(stderrors.New("second"))

	require.Error(t, chain.Err())
	assert.Len(t, chain.Errors(), 2)
	assert.Equal(t, "subscription not found; second", chain.Error())
	assert.True(t, stderrors.Is(chain, New(ErrorTypeNotFound, "")))
}
