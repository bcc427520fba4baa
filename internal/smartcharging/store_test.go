package smartcharging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
)

func newStoreTestStore(t *testing.T, cfg config.OCPPConfig) *Store {
	t.Helper()
	gw := newScheduleTestGateway(t)
	return New(gw, cfg)
}

func basicProfile(id, stackLevel int, purpose ocpp16.ChargingProfilePurpose) ocpp16.ChargingProfile {
	return ocpp16.ChargingProfile{
		ChargingProfileId:      id,
		StackLevel:             stackLevel,
		ChargingProfilePurpose: purpose,
		ChargingProfileKind:    ocpp16.ChargingProfileKindRelative,
		ChargingSchedule: ocpp16.ChargingSchedule{
			ChargingRateUnit: ocpp16.ChargingRateUnitA,
			ChargingSchedulePeriod: []ocpp16.ChargingSchedulePeriod{
				{StartPeriod: 0, Limit: 16, NumberPhases: numberPhases(3)},
			},
		},
	}
}

func TestInstall_RejectsTxProfileOnConnectorZero(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	status, err := s.Install(context.Background(), 0, basicProfile(1, 0, ocpp16.ChargingProfilePurposeTxProfile))
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ChargingProfileStatusRejected, status)
}

func TestInstall_RejectsNonZeroFirstPeriod(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	p := basicProfile(1, 0, ocpp16.ChargingProfilePurposeTxDefaultProfile)
	p.ChargingSchedule.ChargingSchedulePeriod[0].StartPeriod = 5
	status, err := s.Install(context.Background(), 1, p)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ChargingProfileStatusRejected, status)
}

func TestInstall_EvictsProfileOccupyingSameSlot(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	ctx := context.Background()

	status, err := s.Install(ctx, 1, basicProfile(1, 0, ocpp16.ChargingProfilePurposeTxDefaultProfile))
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ChargingProfileStatusAccepted, status)

	status, err = s.Install(ctx, 1, basicProfile(2, 0, ocpp16.ChargingProfilePurposeTxDefaultProfile))
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ChargingProfileStatusAccepted, status)

	records, err := s.gw.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].ProfileID)
}

func TestInstall_RejectsPastCap(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 1})
	ctx := context.Background()

	status, err := s.Install(ctx, 1, basicProfile(1, 0, ocpp16.ChargingProfilePurposeTxDefaultProfile))
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ChargingProfileStatusAccepted, status)

	status, err = s.Install(ctx, 1, basicProfile(2, 1, ocpp16.ChargingProfilePurposeTxDefaultProfile))
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ChargingProfileStatusRejected, status)
}

func TestClear_ByIDAlwaysAccepted(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	ctx := context.Background()
	_, err := s.Install(ctx, 1, basicProfile(1, 0, ocpp16.ChargingProfilePurposeTxDefaultProfile))
	require.NoError(t, err)

	id := 1
	status, err := s.Clear(ctx, &id, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ClearChargingProfileStatusAccepted, status)

	records, err := s.gw.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 0)
}

func TestClear_ByCriteriaUnknownWhenNoMatch(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	ctx := context.Background()
	connectorID := 5
	status, err := s.Clear(ctx, nil, &connectorID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ocpp16.ClearChargingProfileStatusUnknown, status)
}

func TestAssignPendingTxProfiles_BindsConnectorZeroTemplateAndRemovesTemplate(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	ctx := context.Background()

	template := basicProfile(1, 0, ocpp16.ChargingProfilePurposeTxProfile)
	_, err := s.gw.InsertProfile(ctx, toRecord(0, template))
	require.NoError(t, err)

	err = s.AssignPendingTxProfiles(ctx, 1, 77)
	require.NoError(t, err)

	records, err := s.gw.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].ConnectorID)
	assert.Equal(t, 77, records[0].TransactionID)
}

func TestClearConnectorProfiles_OnlyRemovesTransactionBoundProfile(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	ctx := context.Background()

	_, err := s.Install(ctx, 1, basicProfile(1, 0, ocpp16.ChargingProfilePurposeTxDefaultProfile))
	require.NoError(t, err)

	txProfile := basicProfile(2, 1, ocpp16.ChargingProfilePurposeTxProfile)
	rec := toRecord(1, txProfile)
	rec.TransactionID = 77
	_, err = s.gw.InsertProfile(ctx, rec)
	require.NoError(t, err)

	err = s.ClearConnectorProfiles(ctx, 1, 77)
	require.NoError(t, err)

	records, err := s.gw.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, string(ocpp16.ChargingProfilePurposeTxDefaultProfile), records[0].Purpose)
}

func TestClearConnectorProfiles_NoopWhenNoTransaction(t *testing.T) {
	s := newStoreTestStore(t, config.OCPPConfig{MaxChargingProfilesInstalled: 10})
	err := s.ClearConnectorProfiles(context.Background(), 1, 0)
	assert.NoError(t, err)
}
