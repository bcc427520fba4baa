package transaction

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/connector"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

func newTestGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	gw, err := storage.Open(config.StorageConfig{
		DatabasePath: filepath.Join(t.TempDir(), "chargepoint.db"),
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

type fakeAuthorizer struct{ result AuthResult }

func (f *fakeAuthorizer) Authorize(ctx context.Context, idTag string, connected bool) (AuthResult, error) {
	return f.result, nil
}

type fakeSender struct {
	connected bool
	outcome   sender.Outcome
	response  json.RawMessage
	sent      []string
	dropAfter int // when > 0, the sender reports disconnected after this many sends
}

func (f *fakeSender) IsConnected() bool { return f.connected }
func (f *fakeSender) Send(ctx context.Context, action string, payload interface{}) sender.Result {
	f.sent = append(f.sent, action)
	if f.dropAfter > 0 && len(f.sent) >= f.dropAfter {
		f.connected = false
	}
	if f.outcome != sender.Ok {
		return sender.Result{Outcome: f.outcome}
	}
	return sender.Result{Outcome: sender.Ok, Response: f.response}
}

type fakeMeters struct {
	started map[int]int
	stopped []int
}

func (f *fakeMeters) StartSampling(connectorID, transactionID int) {
	if f.started == nil {
		f.started = make(map[int]int)
	}
	f.started[connectorID] = transactionID
}
func (f *fakeMeters) StopSampling(connectorID int) { f.stopped = append(f.stopped, connectorID) }

type fakeProfiles struct {
	assigned int
	cleared  []int
}

func (f *fakeProfiles) AssignPendingTxProfiles(ctx context.Context, connectorID, transactionID int) error {
	f.assigned++
	return nil
}
func (f *fakeProfiles) ClearConnectorProfiles(ctx context.Context, connectorID, transactionID int) error {
	f.cleared = append(f.cleared, connectorID)
	return nil
}

type fakeHost struct{ deauthorized []int }

func (f *fakeHost) TransactionDeAuthorized(connectorID int) {
	f.deauthorized = append(f.deauthorized, connectorID)
}

func newManager(t *testing.T, authResult AuthResult, snd *fakeSender) (*Manager, *connector.Registry, *fakeMeters, *fakeProfiles, *fakeHost) {
	t.Helper()
	gw := newTestGateway(t)
	reg, err := connector.Open(context.Background(), gw, 1)
	require.NoError(t, err)
	meters := &fakeMeters{}
	profiles := &fakeProfiles{}
	host := &fakeHost{}
	m := New(gw, reg, &fakeAuthorizer{result: authResult}, snd, meters, profiles, host)
	return m, reg, meters, profiles, host
}

func TestStartTransaction_OnlineAssignsCentralSystemID(t *testing.T) {
	conf, err := json.Marshal(ocpp16.StartTransactionResponse{
		IdTagInfo: ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}, TransactionId: 42,
	})
	require.NoError(t, err)
	snd := &fakeSender{connected: true, outcome: sender.Ok, response: conf}
	m, reg, meters, profiles, _ := newManager(t, AuthResult{Status: ocpp16.AuthorizationStatusAccepted}, snd)

	res, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, true)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.AuthorizationStatusAccepted, res.Status)
	assert.Equal(t, 42, res.TransactionID)

	rec, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, 42, rec.TransactionID)
	assert.Equal(t, string(ocpp16.ChargePointStatusCharging), rec.Status)
	assert.Equal(t, 42, meters.started[1])
	assert.Equal(t, 1, profiles.assigned)
}

func TestStartTransaction_OfflineAssignsNegativeLocalID(t *testing.T) {
	snd := &fakeSender{connected: false}
	m, reg, _, _, _ := newManager(t, AuthResult{Status: ocpp16.AuthorizationStatusAccepted}, snd)

	res, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, true)
	require.NoError(t, err)
	assert.Less(t, res.TransactionID, 0)

	rec, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, res.TransactionID, rec.TransactionIDOffline)

	length, err := m.gw.LenFifo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, length)
}

func TestStartTransaction_RejectsWhenNotAuthorized(t *testing.T) {
	snd := &fakeSender{connected: true}
	m, _, _, _, _ := newManager(t, AuthResult{Status: ocpp16.AuthorizationStatusInvalid}, snd)

	res, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, true)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.AuthorizationStatusInvalid, res.Status)
	assert.Zero(t, res.TransactionID)
}

func TestStartTransaction_RejectsWhenConnectorAlreadyCharging(t *testing.T) {
	snd := &fakeSender{connected: true}
	m, reg, _, _, _ := newManager(t, AuthResult{Status: ocpp16.AuthorizationStatusAccepted}, snd)
	_, err := reg.Mutate(context.Background(), 1, func(c *storage.ConnectorRecord) { c.TransactionID = 7 })
	require.NoError(t, err)

	res, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, true)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.AuthorizationStatusConcurrentTx, res.Status)
}

func TestStartTransaction_RejectsReservationHeldByAnotherIDTag(t *testing.T) {
	snd := &fakeSender{connected: true}
	m, reg, _, _, _ := newManager(t, AuthResult{Status: ocpp16.AuthorizationStatusAccepted}, snd)
	_, err := reg.Mutate(context.Background(), 1, func(c *storage.ConnectorRecord) {
		c.ReservationID = 9
		c.ReservationIDTag = "OTHER"
	})
	require.NoError(t, err)

	res, err := m.StartTransaction(context.Background(), 1, "TAG1", 0, true)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.AuthorizationStatusInvalid, res.Status)
}

func TestStartTransaction_ClearsMatchingReservation(t *testing.T) {
	conf, err := json.Marshal(ocpp16.StartTransactionResponse{
		IdTagInfo: ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}, TransactionId: 5,
	})
	require.NoError(t, err)
	snd := &fakeSender{connected: true, outcome: sender.Ok, response: conf}
	m, reg, _, _, _ := newManager(t, AuthResult{Status: ocpp16.AuthorizationStatusAccepted}, snd)
	_, err = reg.Mutate(context.Background(), 1, func(c *storage.ConnectorRecord) {
		c.ReservationID = 9
		c.ReservationIDTag = "TAG1"
	})
	require.NoError(t, err)

	_, err = m.StartTransaction(context.Background(), 1, "TAG1", 0, true)
	require.NoError(t, err)

	rec, ok := reg.Get(1)
	require.True(t, ok)
	assert.Zero(t, rec.ReservationID)
}

func TestStopTransaction_OnlineClearsConnectorAndNotifiesDeAuthorization(t *testing.T) {
	info := ocpp16.AuthorizationStatusBlocked
	conf, err := json.Marshal(ocpp16.StopTransactionResponse{IdTagInfo: &ocpp16.IdTagInfo{Status: info}})
	require.NoError(t, err)
	snd := &fakeSender{connected: true, outcome: sender.Ok, response: conf}
	m, reg, meters, profiles, host := newManager(t, AuthResult{}, snd)
	_, err = reg.Mutate(context.Background(), 1, func(c *storage.ConnectorRecord) {
		c.TransactionID = 5
		c.Status = string(ocpp16.ChargePointStatusCharging)
	})
	require.NoError(t, err)

	err = m.StopTransaction(context.Background(), 1, "TAG1", 100, ocpp16.ReasonLocal)
	require.NoError(t, err)

	rec, ok := reg.Get(1)
	require.True(t, ok)
	assert.Zero(t, rec.TransactionID)
	assert.Equal(t, string(ocpp16.ChargePointStatusAvailable), rec.Status)
	assert.Len(t, meters.stopped, 1)
	assert.Len(t, profiles.cleared, 1)
	assert.Len(t, host.deauthorized, 1)
}

func TestStopTransaction_OfflineEnqueuesFifo(t *testing.T) {
	snd := &fakeSender{connected: false}
	m, reg, _, _, _ := newManager(t, AuthResult{}, snd)
	_, err := reg.Mutate(context.Background(), 1, func(c *storage.ConnectorRecord) { c.TransactionID = 5 })
	require.NoError(t, err)

	err = m.StopTransaction(context.Background(), 1, "TAG1", 100, ocpp16.ReasonLocal)
	require.NoError(t, err)

	length, err := m.gw.LenFifo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, length)
}

func TestStopTransaction_RejectsWithoutActiveTransaction(t *testing.T) {
	snd := &fakeSender{connected: true}
	m, _, _, _, _ := newManager(t, AuthResult{}, snd)

	err := m.StopTransaction(context.Background(), 1, "TAG1", 100, ocpp16.ReasonLocal)
	assert.Error(t, err)
}
