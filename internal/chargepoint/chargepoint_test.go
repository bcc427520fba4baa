package chargepoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/hostapi"
	"github.com/go-ocpp/chargepoint/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Identity: config.IdentityConfig{ChargePointVendor: "Acme", ChargePointModel: "Zap"},
		CentralSystem: config.CentralSystemConfig{
			ChargePointIdentifier: "CP001",
			Url:                   "ws://localhost:9999/ocpp",
			ConnectionTimeout:     time.Second,
			CallTimeout:           time.Second,
			ReconnectBackoffMin:   time.Second,
			ReconnectBackoffMax:   time.Second,
		},
		OCPP: config.OCPPConfig{
			NumberOfConnectors:           2,
			AuthorizationCacheEnabled:    true,
			AuthorizationCacheMaxSize:    100,
			LocalAuthListEnabled:         true,
			LocalAuthListMaxLength:       100,
			MaxChargingProfilesInstalled: 10,
		},
	}
}

func newTestChargePoint(t *testing.T) *ChargePoint {
	t.Helper()
	gw, err := storage.Open(config.StorageConfig{
		DatabasePath: filepath.Join(t.TempDir(), "chargepoint.db"),
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	hw := Hardware{
		Meters:      hostapi.NewSyntheticMeter(10),
		Files:       hostapi.NewFileTransfer(t.TempDir()),
		Transaction: hostapi.NewRelayLog(),
	}
	cp, err := New(testConfig(), gw, hw, nil)
	require.NoError(t, err)
	return cp
}

func TestNew_BuildsEveryConnector(t *testing.T) {
	cp := newTestChargePoint(t)
	assert.Equal(t, 3, cp.conns.Count()) // connector 0 plus 2 configured

	rec, ok := cp.GetConnectorStatus(1)
	require.True(t, ok)
	assert.Equal(t, string(ocpp16.ChargePointStatusAvailable), rec.Status)
}

func TestResetConnectorData_ClearsTransactionFields(t *testing.T) {
	cp := newTestChargePoint(t)
	ctx := context.Background()

	_, err := cp.conns.Mutate(ctx, 1, func(c *storage.ConnectorRecord) {
		c.TransactionID = 42
		c.Status = string(ocpp16.ChargePointStatusCharging)
	})
	require.NoError(t, err)

	require.NoError(t, cp.ResetConnectorData(ctx, 1))

	rec, ok := cp.GetConnectorStatus(1)
	require.True(t, ok)
	assert.Equal(t, 0, rec.TransactionID)
	assert.Equal(t, string(ocpp16.ChargePointStatusAvailable), rec.Status)
}

func TestResetConnectorData_RefusesWhileStarted(t *testing.T) {
	cp := newTestChargePoint(t)
	cp.started = true
	err := cp.ResetConnectorData(context.Background(), 1)
	assert.Error(t, err)
}

func TestResetData_DrainsOfflineQueueAndCache(t *testing.T) {
	cp := newTestChargePoint(t)
	ctx := context.Background()

	_, err := cp.gw.EnqueueFifo(ctx, 1, "StatusNotification", `{}`)
	require.NoError(t, err)
	require.NoError(t, cp.gw.PutAuthCacheEntry(ctx, storage.AuthCacheEntry{IDTag: "TAG1", Status: "Accepted"}))

	require.NoError(t, cp.ResetData(ctx))

	_, err = cp.gw.PeekFifo(ctx)
	assert.ErrorIs(t, err, storage.ErrFifoEmpty)
	count, err := cp.gw.CountAuthCacheEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetSetpoint_NoProfilesInstalled(t *testing.T) {
	cp := newTestChargePoint(t)
	cpLimit, connectorLimit, err := cp.GetSetpoint(context.Background(), 1, ocpp16.ChargingRateUnitW)
	require.NoError(t, err)
	assert.Nil(t, cpLimit)
	assert.Nil(t, connectorLimit)
}

func TestActiveTransaction_NoneRunning(t *testing.T) {
	cp := newTestChargePoint(t)
	assert.Nil(t, cp.activeTransaction(1))
}

func TestGetRegistrationStatus_DefaultsUnset(t *testing.T) {
	cp := newTestChargePoint(t)
	assert.Equal(t, ocpp16.RegistrationStatus(""), cp.GetRegistrationStatus())
}
