package sender

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/domain/validation"
	"github.com/go-ocpp/chargepoint/internal/ocpperr"
)

type fakeCaller struct {
	connected bool
	response  json.RawMessage
	err       *ocpperr.Error
}

func (f *fakeCaller) IsConnected() bool { return f.connected }
func (f *fakeCaller) Call(ctx context.Context, action string, payload interface{}) (json.RawMessage, *ocpperr.Error) {
	return f.response, f.err
}

func TestSender_Send_Ok(t *testing.T) {
	caller := &fakeCaller{connected: true, response: json.RawMessage(`{"status":"Accepted"}`)}
	s := New(caller, validation.NewValidator())

	result := s.Send(context.Background(), "Heartbeat", ocpp16.HeartbeatRequest{})
	require.Equal(t, Ok, result.Outcome)
	assert.JSONEq(t, `{"status":"Accepted"}`, string(result.Response))
}

func TestSender_Send_Disconnected(t *testing.T) {
	caller := &fakeCaller{connected: false}
	s := New(caller, validation.NewValidator())

	result := s.Send(context.Background(), "Heartbeat", ocpp16.HeartbeatRequest{})
	assert.Equal(t, Disconnected, result.Outcome)
}

func TestSender_Send_Nok(t *testing.T) {
	caller := &fakeCaller{connected: true, err: ocpperr.NewProtocol("rpc.Call", ocpperr.CodeNotSupported, "unsupported", nil)}
	s := New(caller, validation.NewValidator())

	result := s.Send(context.Background(), "Heartbeat", ocpp16.HeartbeatRequest{})
	assert.Equal(t, Nok, result.Outcome)
	assert.Equal(t, ocpperr.CodeNotSupported, result.ErrorCode)
}

func TestSender_Send_Timeout(t *testing.T) {
	caller := &fakeCaller{connected: true, err: ocpperr.NewTransient("rpc.Call", "timed out waiting for response", nil)}
	s := New(caller, validation.NewValidator())

	result := s.Send(context.Background(), "Heartbeat", ocpp16.HeartbeatRequest{})
	assert.Equal(t, Timeout, result.Outcome)
}

func TestSender_Send_InvalidResponse(t *testing.T) {
	caller := &fakeCaller{connected: true, response: json.RawMessage(`not json`)}
	s := New(caller, validation.NewValidator())

	result := s.Send(context.Background(), "Heartbeat", ocpp16.HeartbeatRequest{})
	assert.Equal(t, InvalidResponse, result.Outcome)
}

func TestSender_Send_InvalidPayload(t *testing.T) {
	caller := &fakeCaller{connected: true}
	s := New(caller, validation.NewValidator())

	result := s.Send(context.Background(), "UnknownFutureAction", ocpp16.HeartbeatRequest{})
	assert.Equal(t, InvalidPayload, result.Outcome)
}
