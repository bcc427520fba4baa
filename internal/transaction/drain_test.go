package transaction

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

func enqueueStartTransaction(t *testing.T, m *Manager, connectorID, localID int) {
	t.Helper()
	req := ocpp16.StartTransactionRequest{ConnectorId: connectorID, IdTag: "TAG1", MeterStart: 0}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	_, err = m.gw.EnqueueFifo(context.Background(), connectorID, string(ocpp16.ActionStartTransaction), string(body))
	require.NoError(t, err)
	_, err = m.connectors.Mutate(context.Background(), connectorID, func(c *storage.ConnectorRecord) {
		c.TransactionID = localID
		c.TransactionIDOffline = localID
	})
	require.NoError(t, err)
}

func TestDrainFifo_SuccessfulDeliveryPopsEntry(t *testing.T) {
	conf, err := json.Marshal(ocpp16.StartTransactionResponse{
		IdTagInfo: ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}, TransactionId: 77,
	})
	require.NoError(t, err)
	snd := &fakeSender{connected: true, outcome: sender.Ok, response: conf}
	m, _, _, _, _ := newManager(t, AuthResult{}, snd)
	enqueueStartTransaction(t, m, 1, -1)

	require.NoError(t, m.DrainFifo(context.Background()))

	n, err := m.gw.LenFifo(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{string(ocpp16.ActionStartTransaction)}, snd.sent)
}

func TestDrainFifo_DisconnectedReturnsImmediately(t *testing.T) {
	snd := &fakeSender{connected: false}
	m, _, _, _, _ := newManager(t, AuthResult{}, snd)
	enqueueStartTransaction(t, m, 1, -1)

	require.NoError(t, m.DrainFifo(context.Background()))

	n, err := m.gw.LenFifo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, snd.sent)
}

func TestDrainFifo_NonRecoverableErrorDropsEntry(t *testing.T) {
	snd := &fakeSender{connected: true, outcome: sender.Nok}
	m, _, _, _, _ := newManager(t, AuthResult{}, snd)
	enqueueStartTransaction(t, m, 1, -1)

	require.NoError(t, m.DrainFifo(context.Background()))

	n, err := m.gw.LenFifo(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainFifo_UnrecognizedActionIsDropped(t *testing.T) {
	snd := &fakeSender{connected: true, outcome: sender.Ok}
	m, _, _, _, _ := newManager(t, AuthResult{}, snd)
	_, err := m.gw.EnqueueFifo(context.Background(), 1, "NotARealAction", `{}`)
	require.NoError(t, err)

	require.NoError(t, m.DrainFifo(context.Background()))

	n, err := m.gw.LenFifo(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, snd.sent)
}

func TestReconcileOfflineTransactionID_RewritesConnectorAndBufferedMeterValues(t *testing.T) {
	conf, err := json.Marshal(ocpp16.StartTransactionResponse{
		IdTagInfo: ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusAccepted}, TransactionId: 99,
	})
	require.NoError(t, err)
	// The link drops right after the StartTransaction is delivered, so the
	// drain stops and the rewritten MeterValues entry stays queued.
	snd := &fakeSender{connected: true, outcome: sender.Ok, response: conf, dropAfter: 1}
	m, reg, _, _, host := newManager(t, AuthResult{}, snd)
	enqueueStartTransaction(t, m, 1, -5)

	require.NoError(t, m.gw.AppendMeterValue(context.Background(), -5, 1, "2026-07-31T00:00:00Z", `{"timestamp":"2026-07-31T00:00:00Z"}`))

	_, err = m.gw.EnqueueFifo(context.Background(), 1, string(ocpp16.ActionMeterValues), `{"connectorId":1,"transactionId":-5}`)
	require.NoError(t, err)

	require.NoError(t, m.DrainFifo(context.Background()))

	rec, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, 99, rec.TransactionID)
	assert.Zero(t, rec.TransactionIDOffline)
	assert.Empty(t, host.deauthorized)

	values, err := m.gw.ListMeterValuesByTransaction(context.Background(), 99)
	require.NoError(t, err)
	assert.Len(t, values, 1)

	n, err := m.gw.LenFifo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entry, err := m.gw.PeekFifo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, string(ocpp16.ActionMeterValues), entry.Action)
	assert.Contains(t, entry.PayloadJSON, `"transactionId":99`)
}

func TestReconcileOfflineTransactionID_NonAcceptedNotifiesHost(t *testing.T) {
	conf, err := json.Marshal(ocpp16.StartTransactionResponse{
		IdTagInfo: ocpp16.IdTagInfo{Status: ocpp16.AuthorizationStatusBlocked}, TransactionId: 12,
	})
	require.NoError(t, err)
	snd := &fakeSender{connected: true, outcome: sender.Ok, response: conf}
	m, _, _, _, host := newManager(t, AuthResult{}, snd)
	enqueueStartTransaction(t, m, 1, -2)

	require.NoError(t, m.DrainFifo(context.Background()))

	assert.Equal(t, []int{1}, host.deauthorized)
}
