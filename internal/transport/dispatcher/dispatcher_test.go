package dispatcher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/ocpperr"
)

func TestDispatcher_RegisterAndHandle(t *testing.T) {
	d := New()
	err := d.Register("Reset", false, func(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
		return map[string]string{"status": "Accepted"}, true, "", ""
	})
	require.NoError(t, err)

	resp, callErr := d.HandleCall(context.Background(), "Reset", json.RawMessage(`{}`))
	require.Nil(t, callErr)
	assert.Equal(t, "Accepted", resp.(map[string]string)["status"])
}

func TestDispatcher_DuplicateRegistrationFailsWithoutAllowReplace(t *testing.T) {
	d := New()
	fn := func(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) { return nil, true, "", "" }
	require.NoError(t, d.Register("Reset", false, fn))
	err := d.Register("Reset", false, fn)
	assert.Error(t, err)
}

func TestDispatcher_AllowReplaceOverwrites(t *testing.T) {
	d := New()
	require.NoError(t, d.Register("Reset", false, func(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
		return "first", true, "", ""
	}))
	require.NoError(t, d.Register("Reset", true, func(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
		return "second", true, "", ""
	}))

	resp, callErr := d.HandleCall(context.Background(), "Reset", json.RawMessage(`{}`))
	require.Nil(t, callErr)
	assert.Equal(t, "second", resp)
}

func TestDispatcher_UnknownActionYieldsNotImplemented(t *testing.T) {
	d := New()
	_, callErr := d.HandleCall(context.Background(), "SomeFutureAction", json.RawMessage(`{}`))
	require.NotNil(t, callErr)
	assert.Equal(t, ocpperr.CodeNotImplemented, callErr.Code)
}

func TestDispatcher_FalseWithoutErrorFieldsIsInternalError(t *testing.T) {
	d := New()
	require.NoError(t, d.Register("Reset", false, func(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
		return nil, false, "", ""
	}))

	_, callErr := d.HandleCall(context.Background(), "Reset", json.RawMessage(`{}`))
	require.NotNil(t, callErr)
	assert.Equal(t, ocpperr.CodeInternalError, callErr.Code)
}

func TestDispatcher_FalseWithErrorFieldsPropagatesCode(t *testing.T) {
	d := New()
	require.NoError(t, d.Register("Reset", false, func(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
		return nil, false, ocpperr.CodeNotSupported, "reset type not supported"
	}))

	_, callErr := d.HandleCall(context.Background(), "Reset", json.RawMessage(`{}`))
	require.NotNil(t, callErr)
	assert.Equal(t, ocpperr.CodeNotSupported, callErr.Code)
	assert.Equal(t, "reset type not supported", callErr.Message)
}
