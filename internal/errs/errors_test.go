package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	cause := errors.New("ORA-12541: TNS:no listener")

	assert.Equal(t, "[config] missing DB_HOST", New(ErrKindConfig, "missing DB_HOST").Error())
	assert.Equal(t,
		"[connection_failed] ping failed: ORA-12541: TNS:no listener",
		Wrap(ErrKindConnectionFailed, "ping failed", cause).Error(),
	)
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrKindQueryFailed, "sample query failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"config", New(ErrKindConfig, "x"), IsConfig},
		{"not found", New(ErrKindNotFound, "x"), IsNotFound},
		{"timeout", New(ErrKindTimeout, "x"), IsTimeout},
		{"connection", New(ErrKindConnectionFailed, "x"), IsConnectionFailed},
		{"query", New(ErrKindQueryFailed, "x"), IsQueryFailed},
		{"invalid input", New(ErrKindInvalidInput, "x"), IsInvalidInput},
		{"permission", New(ErrKindPermissionDenied, "x"), IsPermissionDenied},
		{"empty sample", New(ErrKindEmptySample, "x"), IsEmptySample},
		{"filter too large", New(ErrKindFilterTooLarge, "x"), IsFilterTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("stage 1: %w", tt.err)), "predicate must see through fmt wrapping")
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
	assert.Equal(t, "unknown", ErrKindUnknown.String())
}
