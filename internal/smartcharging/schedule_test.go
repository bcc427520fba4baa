package smartcharging

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

func newScheduleTestGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	gw, err := storage.Open(config.StorageConfig{
		DatabasePath: filepath.Join(t.TempDir(), "chargepoint.db"),
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

func numberPhases(n int) *int { return &n }

func TestResolve_NoInstalledProfilesReturnsEmptySchedule(t *testing.T) {
	gw := newScheduleTestGateway(t)
	cfg := config.OCPPConfig{OperatingVoltage: 230}
	now := time.Now()

	sched, err := Resolve(context.Background(), gw, cfg, 1, now, 3600, ocpp16.ChargingRateUnitA, nil)
	require.NoError(t, err)
	assert.Equal(t, 3600, *sched.Duration)
	require.Len(t, sched.ChargingSchedulePeriod, 1)
	assert.Equal(t, 0, sched.ChargingSchedulePeriod[0].StartPeriod)
	assert.Zero(t, sched.ChargingSchedulePeriod[0].Limit)
}

func TestResolve_SingleRelativeProfileFillsWindowWhenNoDuration(t *testing.T) {
	gw := newScheduleTestGateway(t)
	cfg := config.OCPPConfig{OperatingVoltage: 230}
	now := time.Now()

	_, err := gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID: 1,
		ProfileID:   1,
		StackLevel:  0,
		Purpose:     string(ocpp16.ChargingProfilePurposeTxDefaultProfile),
		Kind:        string(ocpp16.ChargingProfileKindRelative),
		RateUnit:    string(ocpp16.ChargingRateUnitA),
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 16, NumberPhases: 3},
		},
	})
	require.NoError(t, err)

	sched, err := Resolve(context.Background(), gw, cfg, 1, now, 3600, ocpp16.ChargingRateUnitA, nil)
	require.NoError(t, err)
	assert.Equal(t, 3600, *sched.Duration)
	require.Len(t, sched.ChargingSchedulePeriod, 1)
	assert.Equal(t, 0, sched.ChargingSchedulePeriod[0].StartPeriod)
	assert.Equal(t, 16.0, sched.ChargingSchedulePeriod[0].Limit)
}

func TestResolve_ProfileDurationShorterThanWindowBoundsOutputDuration(t *testing.T) {
	gw := newScheduleTestGateway(t)
	cfg := config.OCPPConfig{OperatingVoltage: 230}
	now := time.Now()

	_, err := gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID:     1,
		ProfileID:       1,
		StackLevel:      0,
		Purpose:         string(ocpp16.ChargingProfilePurposeTxDefaultProfile),
		Kind:            string(ocpp16.ChargingProfileKindRelative),
		RateUnit:        string(ocpp16.ChargingRateUnitA),
		DurationSeconds: 600,
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 16, NumberPhases: 3},
		},
	})
	require.NoError(t, err)

	sched, err := Resolve(context.Background(), gw, cfg, 1, now, 3600, ocpp16.ChargingRateUnitA, nil)
	require.NoError(t, err)
	assert.Equal(t, 600, *sched.Duration)
}

func TestResolve_ChargePointMaxProfileAppliesAcrossAllConnectors(t *testing.T) {
	gw := newScheduleTestGateway(t)
	cfg := config.OCPPConfig{OperatingVoltage: 230}
	now := time.Now()

	_, err := gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID: 0,
		ProfileID:   1,
		StackLevel:  0,
		Purpose:     string(ocpp16.ChargingProfilePurposeChargePointMaxProfile),
		Kind:        string(ocpp16.ChargingProfileKindRelative),
		RateUnit:    string(ocpp16.ChargingRateUnitA),
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 10, NumberPhases: 3},
		},
	})
	require.NoError(t, err)
	_, err = gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID: 1,
		ProfileID:   2,
		StackLevel:  0,
		Purpose:     string(ocpp16.ChargingProfilePurposeTxDefaultProfile),
		Kind:        string(ocpp16.ChargingProfileKindRelative),
		RateUnit:    string(ocpp16.ChargingRateUnitA),
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 32, NumberPhases: 3},
		},
	})
	require.NoError(t, err)

	sched, err := Resolve(context.Background(), gw, cfg, 1, now, 3600, ocpp16.ChargingRateUnitA, nil)
	require.NoError(t, err)
	require.Len(t, sched.ChargingSchedulePeriod, 1)
	assert.Equal(t, 10.0, sched.ChargingSchedulePeriod[0].Limit)
}

func TestResolve_TxProfileTakesPriorityOverTxDefaultWhenTransactionActive(t *testing.T) {
	gw := newScheduleTestGateway(t)
	cfg := config.OCPPConfig{OperatingVoltage: 230}
	now := time.Now()
	tx := &ActiveTransaction{ID: 99, Start: now}

	_, err := gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID: 1,
		ProfileID:   1,
		StackLevel:  0,
		Purpose:     string(ocpp16.ChargingProfilePurposeTxDefaultProfile),
		Kind:        string(ocpp16.ChargingProfileKindRelative),
		RateUnit:    string(ocpp16.ChargingRateUnitA),
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 16, NumberPhases: 3},
		},
	})
	require.NoError(t, err)
	_, err = gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID:   1,
		ProfileID:     2,
		StackLevel:    0,
		Purpose:       string(ocpp16.ChargingProfilePurposeTxProfile),
		Kind:          string(ocpp16.ChargingProfileKindRelative),
		RateUnit:      string(ocpp16.ChargingRateUnitA),
		TransactionID: 99,
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 6, NumberPhases: 3},
		},
	})
	require.NoError(t, err)

	sched, err := Resolve(context.Background(), gw, cfg, 1, now, 3600, ocpp16.ChargingRateUnitA, tx)
	require.NoError(t, err)
	require.Len(t, sched.ChargingSchedulePeriod, 1)
	assert.Equal(t, 6.0, sched.ChargingSchedulePeriod[0].Limit)
}

// TestResolve_AbsoluteProfileExpiryRevealsLowerStackProfileBehind reproduces
// two TxDefaultProfiles on the same connector: a stack-5 Absolute profile
// starting 300s from now and lasting 2000s, and a stack-4 Relative profile
// starting now. Once the stack-5 profile's duration elapses at t=2300, its
// stack-4 underlay reappears for the period it still covers.
func TestResolve_AbsoluteProfileExpiryRevealsLowerStackProfileBehind(t *testing.T) {
	gw := newScheduleTestGateway(t)
	cfg := config.OCPPConfig{OperatingVoltage: 230}
	// RFC3339 formatting (used for StartSchedule below) drops sub-second
	// precision; truncate so the offset math lands on whole seconds.
	now := time.Now().Truncate(time.Second)

	_, err := gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID:     1,
		ProfileID:       1,
		StackLevel:      5,
		Purpose:         string(ocpp16.ChargingProfilePurposeTxDefaultProfile),
		Kind:            string(ocpp16.ChargingProfileKindAbsolute),
		RateUnit:        string(ocpp16.ChargingRateUnitA),
		StartSchedule:   now.Add(300 * time.Second).UTC().Format(time.RFC3339),
		DurationSeconds: 2000,
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 16, NumberPhases: 1},
			{StartPeriod: 1000, Limit: 10, NumberPhases: 2},
			{StartPeriod: 1700, Limit: 32, NumberPhases: 3},
		},
	})
	require.NoError(t, err)
	_, err = gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID: 1,
		ProfileID:   2,
		StackLevel:  4,
		Purpose:     string(ocpp16.ChargingProfilePurposeTxDefaultProfile),
		Kind:        string(ocpp16.ChargingProfileKindRelative),
		RateUnit:    string(ocpp16.ChargingRateUnitA),
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 8, NumberPhases: 2},
			{StartPeriod: 200, Limit: 20, NumberPhases: 3},
			{StartPeriod: 500, Limit: 18, NumberPhases: 3},
		},
	})
	require.NoError(t, err)

	sched, err := Resolve(context.Background(), gw, cfg, 1, now, 3600, ocpp16.ChargingRateUnitA, nil)
	require.NoError(t, err)
	assert.Equal(t, 3600, *sched.Duration)

	type period struct {
		start int
		limit float64
		phase int
	}
	want := []period{
		{0, 8, 2},
		{200, 20, 3},
		{300, 16, 1},
		{1300, 10, 2},
		{2000, 32, 3},
		{2300, 18, 3},
	}
	require.Len(t, sched.ChargingSchedulePeriod, len(want))
	for i, w := range want {
		got := sched.ChargingSchedulePeriod[i]
		assert.Equal(t, w.start, got.StartPeriod, "period %d start", i)
		assert.Equal(t, w.limit, got.Limit, "period %d limit", i)
		assert.Equal(t, w.phase, *got.NumberPhases, "period %d phases", i)
	}
}

func TestGetSetpoint_ReflectsFirstSecondOfCompositeSchedule(t *testing.T) {
	gw := newScheduleTestGateway(t)
	cfg := config.OCPPConfig{OperatingVoltage: 230}
	now := time.Now()

	_, err := gw.InsertProfile(context.Background(), storage.ChargingProfileRecord{
		ConnectorID: 1,
		ProfileID:   1,
		StackLevel:  0,
		Purpose:     string(ocpp16.ChargingProfilePurposeTxDefaultProfile),
		Kind:        string(ocpp16.ChargingProfileKindRelative),
		RateUnit:    string(ocpp16.ChargingRateUnitA),
		Periods: []storage.ChargingPeriod{
			{StartPeriod: 0, Limit: 20, NumberPhases: 3},
		},
	})
	require.NoError(t, err)

	cp, connector, err := GetSetpoint(context.Background(), gw, cfg, 1, now, ocpp16.ChargingRateUnitA, nil)
	require.NoError(t, err)
	assert.Nil(t, cp)
	require.NotNil(t, connector)
	assert.Equal(t, 20.0, connector.Value)
}
