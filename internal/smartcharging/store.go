// Package smartcharging implements the profile store and the composite
// schedule / setpoint resolution algorithm for the three charging-profile
// purposes.
package smartcharging

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/storage"
)

// Store owns installed charging profiles: install-with-eviction under the
// per-slot/per-cap rules, clearing, and binding TxProfile templates to a
// newly started transaction.
type Store struct {
	gw  *storage.Gateway
	cfg config.OCPPConfig
}

// New builds a Store.
func New(gw *storage.Gateway, cfg config.OCPPConfig) *Store {
	return &Store{gw: gw, cfg: cfg}
}

// Install validates and installs a profile, evicting whatever profile
// already occupies its (connector, stack level, purpose) slot.
func (s *Store) Install(ctx context.Context, connectorID int, p ocpp16.ChargingProfile) (ocpp16.ChargingProfileStatus, error) {
	if err := validateProfile(connectorID, p); err != nil {
		return ocpp16.ChargingProfileStatusRejected, nil
	}

	existing, err := s.gw.ListProfiles(ctx)
	if err != nil {
		return "", err
	}
	slotOccupied := false
	for _, rec := range existing {
		if rec.ConnectorID == connectorID && rec.StackLevel == p.StackLevel && rec.Purpose == string(p.ChargingProfilePurpose) {
			slotOccupied = true
			break
		}
	}
	if !slotOccupied && s.cfg.MaxChargingProfilesInstalled > 0 && len(existing) >= s.cfg.MaxChargingProfilesInstalled {
		return ocpp16.ChargingProfileStatusRejected, nil
	}

	if err := s.gw.DeleteProfileBySlot(ctx, connectorID, p.StackLevel, string(p.ChargingProfilePurpose)); err != nil {
		return "", err
	}

	rec := toRecord(connectorID, p)
	if _, err := s.gw.InsertProfile(ctx, rec); err != nil {
		return "", err
	}
	return ocpp16.ChargingProfileStatusAccepted, nil
}

// Clear removes installed profiles matching whichever criteria are set,
// mirroring ClearChargingProfileRequest's optional id/connectorId/
// purpose/stackLevel filter.
func (s *Store) Clear(ctx context.Context, id, connectorID *int, purpose *ocpp16.ChargingProfilePurpose, stackLevel *int) (ocpp16.ClearChargingProfileStatus, error) {
	if id != nil {
		if err := s.gw.DeleteProfile(ctx, *id); err != nil {
			return "", err
		}
		return ocpp16.ClearChargingProfileStatusAccepted, nil
	}

	records, err := s.gw.ListProfiles(ctx)
	if err != nil {
		return "", err
	}
	matched := false
	for _, rec := range records {
		if connectorID != nil && rec.ConnectorID != *connectorID {
			continue
		}
		if purpose != nil && rec.Purpose != string(*purpose) {
			continue
		}
		if stackLevel != nil && rec.StackLevel != *stackLevel {
			continue
		}
		if err := s.gw.DeleteProfile(ctx, rec.ProfileID); err != nil {
			return "", err
		}
		matched = true
	}
	if !matched {
		return ocpp16.ClearChargingProfileStatusUnknown, nil
	}
	return ocpp16.ClearChargingProfileStatusAccepted, nil
}

// AssignPendingTxProfiles binds every unbound TxProfile template relevant
// to connectorID (installed on connector 0, or already on connectorID
// without a transaction) to the newly started transaction. Implements
// transaction.ProfileAssigner.
func (s *Store) AssignPendingTxProfiles(ctx context.Context, connectorID, transactionID int) error {
	records, err := s.gw.ListProfiles(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Purpose != string(ocpp16.ChargingProfilePurposeTxProfile) || rec.TransactionID != 0 {
			continue
		}
		if rec.ConnectorID != 0 && rec.ConnectorID != connectorID {
			continue
		}

		bound := rec
		bound.ConnectorID = connectorID
		bound.TransactionID = transactionID

		if err := s.gw.DeleteProfile(ctx, rec.ProfileID); err != nil {
			return err
		}
		if err := s.gw.DeleteProfileBySlot(ctx, connectorID, bound.StackLevel, bound.Purpose); err != nil {
			return err
		}
		if _, err := s.gw.InsertProfile(ctx, bound); err != nil {
			return err
		}
	}
	return nil
}

// ClearConnectorProfiles removes the TxProfile bound to transactionID once
// it ends. Implements transaction.ProfileAssigner.
func (s *Store) ClearConnectorProfiles(ctx context.Context, connectorID, transactionID int) error {
	if transactionID == 0 {
		return nil
	}
	return s.gw.DeleteProfileByTransaction(ctx, connectorID, transactionID)
}

func validateProfile(connectorID int, p ocpp16.ChargingProfile) error {
	if connectorID == 0 && p.ChargingProfilePurpose == ocpp16.ChargingProfilePurposeTxProfile {
		return fmt.Errorf("smartcharging: TxProfile may not be installed on connector 0")
	}
	periods := p.ChargingSchedule.ChargingSchedulePeriod
	if len(periods) == 0 || periods[0].StartPeriod != 0 {
		return fmt.Errorf("smartcharging: schedule periods must start at 0")
	}
	for i := 1; i < len(periods); i++ {
		if periods[i].StartPeriod <= periods[i-1].StartPeriod {
			return fmt.Errorf("smartcharging: schedule periods must be strictly ascending")
		}
	}
	return nil
}

func toRecord(connectorID int, p ocpp16.ChargingProfile) storage.ChargingProfileRecord {
	rec := storage.ChargingProfileRecord{
		ConnectorID: connectorID,
		ProfileID:   p.ChargingProfileId,
		StackLevel:  p.StackLevel,
		Purpose:     string(p.ChargingProfilePurpose),
		Kind:        string(p.ChargingProfileKind),
		RateUnit:    string(p.ChargingSchedule.ChargingRateUnit),
	}
	if p.RecurrencyKind != nil {
		rec.Recurrency = string(*p.RecurrencyKind)
	}
	if p.ValidFrom != nil {
		rec.ValidFrom = p.ValidFrom.Time.UTC().Format(time.RFC3339)
	}
	if p.ValidTo != nil {
		rec.ValidTo = p.ValidTo.Time.UTC().Format(time.RFC3339)
	}
	if p.ChargingSchedule.StartSchedule != nil {
		rec.StartSchedule = p.ChargingSchedule.StartSchedule.Time.UTC().Format(time.RFC3339)
	}
	if p.ChargingSchedule.Duration != nil {
		rec.DurationSeconds = *p.ChargingSchedule.Duration
	}
	if p.ChargingSchedule.MinChargingRate != nil {
		rec.MinChargingRate = *p.ChargingSchedule.MinChargingRate
	}
	if p.TransactionId != nil {
		rec.TransactionID = *p.TransactionId
	}
	for _, period := range periods(p) {
		rec.Periods = append(rec.Periods, storage.ChargingPeriod{
			StartPeriod: period.StartPeriod,
			Limit:       period.Limit,
			NumberPhases: numberPhasesOrZero(period),
		})
	}
	return rec
}

func periods(p ocpp16.ChargingProfile) []ocpp16.ChargingSchedulePeriod {
	return p.ChargingSchedule.ChargingSchedulePeriod
}

func numberPhasesOrZero(period ocpp16.ChargingSchedulePeriod) int {
	if period.NumberPhases == nil {
		return 0
	}
	return *period.NumberPhases
}
