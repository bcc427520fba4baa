package storage

import (
	"context"
	"fmt"
)

// ChargingPeriod is one entry of a charging schedule.
type ChargingPeriod struct {
	StartPeriod  int     `json:"start_period"`
	Limit        float64 `json:"limit"`
	NumberPhases int     `json:"number_phases,omitempty"`
}

// ChargingProfileRecord is the persisted form of a smart-charging profile.
type ChargingProfileRecord struct {
	RowID           int64
	ConnectorID     int
	ProfileID       int
	StackLevel      int
	Purpose         string
	Kind            string
	Recurrency      string
	ValidFrom       string
	ValidTo         string
	RateUnit        string
	StartSchedule   string
	DurationSeconds int
	MinChargingRate float64
	Periods         []ChargingPeriod
	TransactionID   int
	InstalledAt     string
}

const profileColumns = `row_id, connector_id, profile_id, stack_level, purpose, kind, recurrency,
	valid_from, valid_to, rate_unit, start_schedule, duration_seconds, min_charging_rate,
	periods_json, transaction_id, installed_at`

func scanProfile(scanner interface{ Scan(...interface{}) error }, periodsJSON *string) (ChargingProfileRecord, error) {
	var p ChargingProfileRecord
	err := scanner.Scan(
		&p.RowID, &p.ConnectorID, &p.ProfileID, &p.StackLevel, &p.Purpose, &p.Kind, &p.Recurrency,
		&p.ValidFrom, &p.ValidTo, &p.RateUnit, &p.StartSchedule, &p.DurationSeconds, &p.MinChargingRate,
		periodsJSON, &p.TransactionID, &p.InstalledAt,
	)
	return p, err
}

// ListProfiles returns every installed profile, most recently installed last.
func (g *Gateway) ListProfiles(ctx context.Context) ([]ChargingProfileRecord, error) {
	rows, err := g.Query(ctx, `SELECT `+profileColumns+` FROM ChargingProfiles ORDER BY row_id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list charging profiles: %w", err)
	}
	defer rows.Close()

	var out []ChargingProfileRecord
	for rows.Next() {
		var periodsJSON string
		p, err := scanProfile(rows, &periodsJSON)
		if err != nil {
			return nil, fmt.Errorf("storage: scan charging profile: %w", err)
		}
		if err := decodePeriods(periodsJSON, &p.Periods); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountProfiles reports how many profiles are installed, to enforce the
// configured cap before installing another.
func (g *Gateway) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := g.QueryRow(ctx, `SELECT COUNT(*) FROM ChargingProfiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count charging profiles: %w", err)
	}
	return n, nil
}

// DeleteProfileBySlot evicts whatever profile occupies
// (connector_id, stack_level, purpose), the slot a newly installed profile
// of the same purpose and stack level must take over.
func (g *Gateway) DeleteProfileBySlot(ctx context.Context, connectorID, stackLevel int, purpose string) error {
	_, err := g.Exec(ctx, `
		DELETE FROM ChargingProfiles WHERE connector_id = ? AND stack_level = ? AND purpose = ?
	`, connectorID, stackLevel, purpose)
	if err != nil {
		return fmt.Errorf("storage: evict charging profile slot: %w", err)
	}
	return nil
}

// InsertProfile installs a new profile row and returns its row id, used as
// the tie-breaker for "most recently installed" among equal stack levels.
func (g *Gateway) InsertProfile(ctx context.Context, p ChargingProfileRecord) (int64, error) {
	periodsJSON, err := encodePeriods(p.Periods)
	if err != nil {
		return 0, err
	}

	res, err := g.Exec(ctx, `
		INSERT INTO ChargingProfiles (
			connector_id, profile_id, stack_level, purpose, kind, recurrency,
			valid_from, valid_to, rate_unit, start_schedule, duration_seconds,
			min_charging_rate, periods_json, transaction_id, installed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ConnectorID, p.ProfileID, p.StackLevel, p.Purpose, p.Kind, p.Recurrency,
		p.ValidFrom, p.ValidTo, p.RateUnit, p.StartSchedule, p.DurationSeconds,
		p.MinChargingRate, periodsJSON, p.TransactionID, now(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: insert charging profile: %w", err)
	}
	return res.LastInsertId()
}

// DeleteProfile removes one profile by its charging-profile id.
func (g *Gateway) DeleteProfile(ctx context.Context, profileID int) error {
	_, err := g.Exec(ctx, `DELETE FROM ChargingProfiles WHERE profile_id = ?`, profileID)
	if err != nil {
		return fmt.Errorf("storage: delete charging profile %d: %w", profileID, err)
	}
	return nil
}

// DeleteProfilesByConnector removes every profile installed on a connector;
// used by ResetConnectorData.
func (g *Gateway) DeleteProfilesByConnector(ctx context.Context, connectorID int) error {
	_, err := g.Exec(ctx, `DELETE FROM ChargingProfiles WHERE connector_id = ?`, connectorID)
	if err != nil {
		return fmt.Errorf("storage: delete charging profiles for connector %d: %w", connectorID, err)
	}
	return nil
}

// DeleteProfileByTransaction removes the TxProfile bound to a transaction
// once it ends.
func (g *Gateway) DeleteProfileByTransaction(ctx context.Context, connectorID, transactionID int) error {
	_, err := g.Exec(ctx, `
		DELETE FROM ChargingProfiles WHERE connector_id = ? AND transaction_id = ?
	`, connectorID, transactionID)
	if err != nil {
		return fmt.Errorf("storage: delete tx profile: %w", err)
	}
	return nil
}
