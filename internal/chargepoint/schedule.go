package chargepoint

import (
	"context"
	"time"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/smartcharging"
)

// activeTransaction builds the smartcharging.ActiveTransaction describing
// connectorID's in-progress transaction, or nil if none is running.
func (cp *ChargePoint) activeTransaction(connectorID int) *smartcharging.ActiveTransaction {
	rec, ok := cp.conns.Get(connectorID)
	if !ok || rec.TransactionID == 0 {
		return nil
	}
	start := time.Now()
	if rec.TransactionStart != "" {
		if t, err := time.Parse(time.RFC3339, rec.TransactionStart); err == nil {
			start = t
		}
	}
	return &smartcharging.ActiveTransaction{ID: rec.TransactionID, Start: start}
}

// resolveSchedule computes the composite schedule for connectorID over the
// next durationSeconds, in the requested rate unit.
func (cp *ChargePoint) resolveSchedule(ctx context.Context, connectorID, durationSeconds int, unit ocpp16.ChargingRateUnit) (ocpp16.ChargingSchedule, error) {
	tx := cp.activeTransaction(connectorID)
	return smartcharging.Resolve(ctx, cp.gw, cp.cfg.OCPP, connectorID, time.Now(), durationSeconds, unit, tx)
}

// GetSetpoint resolves the instantaneous charge-rate limit currently in
// effect for connectorID, combining any ChargePointMaxProfile with whatever
// TxDefaultProfile/TxProfile applies to its active transaction, if any.
func (cp *ChargePoint) GetSetpoint(ctx context.Context, connectorID int, unit ocpp16.ChargingRateUnit) (cpLimit, connectorLimit *smartcharging.Setpoint, err error) {
	tx := cp.activeTransaction(connectorID)
	return smartcharging.GetSetpoint(ctx, cp.gw, cp.cfg.OCPP, connectorID, time.Now(), unit, tx)
}
