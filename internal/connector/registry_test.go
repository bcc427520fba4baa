package connector

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/storage"
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

func TestOpen_SeedsDefaultsOnEmptyDatabase(t *testing.T) {
	gw := newTestGateway(t)
	reg, err := Open(context.Background(), gw, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, reg.Count()) // connector 0 + two physical connectors
	for id := 0; id < 3; id++ {
		rec, ok := reg.Get(id)
		require.True(t, ok)
		assert.Equal(t, string(ocpp16.ChargePointStatusAvailable), rec.Status)
	}
}

func TestOpen_ResyncsOnCountMismatch(t *testing.T) {
	gw := newTestGateway(t)

	reg, err := Open(context.Background(), gw, 1)
	require.NoError(t, err)
	_, err = reg.Mutate(context.Background(), 1, func(c *storage.ConnectorRecord) {
		c.Status = string(ocpp16.ChargePointStatusCharging)
	})
	require.NoError(t, err)

	// Reconfigured with more connectors: the persisted count (2) disagrees
	// with the new configured count (3 + aggregate = 4), triggering a wipe.
	reg2, err := Open(context.Background(), gw, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, reg2.Count())
	rec, ok := reg2.Get(1)
	require.True(t, ok)
	assert.Equal(t, string(ocpp16.ChargePointStatusAvailable), rec.Status, "resync should have reset to defaults")
}

func TestMutate_PersistsImmediately(t *testing.T) {
	gw := newTestGateway(t)
	reg, err := Open(context.Background(), gw, 1)
	require.NoError(t, err)

	_, err = reg.Mutate(context.Background(), 1, func(c *storage.ConnectorRecord) {
		c.Status = string(ocpp16.ChargePointStatusFaulted)
		c.ErrorCode = string(ocpp16.ChargePointErrorCodeGroundFailure)
	})
	require.NoError(t, err)

	persisted, err := gw.GetConnector(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, string(ocpp16.ChargePointStatusFaulted), persisted.Status)
	assert.Equal(t, string(ocpp16.ChargePointErrorCodeGroundFailure), persisted.ErrorCode)
}

func TestMutate_UnknownConnectorErrors(t *testing.T) {
	gw := newTestGateway(t)
	reg, err := Open(context.Background(), gw, 1)
	require.NoError(t, err)

	_, err = reg.Mutate(context.Background(), 99, func(c *storage.ConnectorRecord) {})
	assert.Error(t, err)
}

func TestList_ReturnsAllConnectorsOrderedByID(t *testing.T) {
	gw := newTestGateway(t)
	reg, err := Open(context.Background(), gw, 2)
	require.NoError(t, err)

	list := reg.List()
	require.Len(t, list, 3)
	for i, rec := range list {
		assert.Equal(t, i, rec.ID)
	}
}
