package ocpperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Protocol, "Protocol"},
		{Transient, "Transient"},
		{Permanent, "Permanent"},
		{Invariant, "Invariant"},
		{External, "External"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestNewProtocol_CarriesCode(t *testing.T) {
	err := NewProtocol("dispatcher.Handle", CodeFormationViolation, "bad payload", nil)
	assert.Equal(t, Protocol, err.Kind)
	assert.Equal(t, CodeFormationViolation, err.Code)
	assert.Contains(t, err.Error(), "bad payload")
}

func TestError_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewTransient("rpc.Connect", "dial failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NewPermanent("security.SetProfile", "cannot downgrade profile", nil))
	assert.Equal(t, Permanent, KindOf(wrapped))

	assert.Equal(t, Invariant, KindOf(errors.New("plain error")))
	assert.Equal(t, Invariant, KindOf(nil))
}
