package storage

import (
	"context"
	"fmt"
)

// ConnectorRecord is the persisted row for one connector, index 0 being the
// charge-point-wide aggregate.
type ConnectorRecord struct {
	ID                     int
	Status                 string
	LastNotifiedStatus     string
	ErrorCode              string
	Info                   string
	VendorID               string
	VendorError            string
	StatusTimestamp        string
	TransactionID          int
	TransactionIDOffline   int
	TransactionStart       string
	TransactionIDTag       string
	TransactionParentIDTag string
	ReservationID          int
	ReservationIDTag       string
	ReservationParentIDTag string
	ReservationExpiryDate  string
}

const connectorColumns = `id, status, last_notified_status, error_code, info, vendor_id, vendor_error,
	status_timestamp, transaction_id, transaction_id_offline, transaction_start,
	transaction_id_tag, transaction_parent_id_tag, reservation_id, reservation_id_tag,
	reservation_parent_id_tag, reservation_expiry_date`

func scanConnector(scanner interface{ Scan(...interface{}) error }) (ConnectorRecord, error) {
	var c ConnectorRecord
	err := scanner.Scan(
		&c.ID, &c.Status, &c.LastNotifiedStatus, &c.ErrorCode, &c.Info, &c.VendorID, &c.VendorError,
		&c.StatusTimestamp, &c.TransactionID, &c.TransactionIDOffline, &c.TransactionStart,
		&c.TransactionIDTag, &c.TransactionParentIDTag, &c.ReservationID, &c.ReservationIDTag,
		&c.ReservationParentIDTag, &c.ReservationExpiryDate,
	)
	return c, err
}

// ListConnectors returns every persisted connector row, ordered by id.
func (g *Gateway) ListConnectors(ctx context.Context) ([]ConnectorRecord, error) {
	rows, err := g.Query(ctx, `SELECT `+connectorColumns+` FROM Connectors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list connectors: %w", err)
	}
	defer rows.Close()

	var out []ConnectorRecord
	for rows.Next() {
		c, err := scanConnector(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan connector: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetConnector loads one connector row by id.
func (g *Gateway) GetConnector(ctx context.Context, id int) (ConnectorRecord, error) {
	row := g.QueryRow(ctx, `SELECT `+connectorColumns+` FROM Connectors WHERE id = ?`, id)
	c, err := scanConnector(row)
	if err != nil {
		return ConnectorRecord{}, err
	}
	return c, nil
}

// UpsertConnector inserts a fresh connector row or replaces it wholesale; the
// connector registry persists on every state change it cares about.
func (g *Gateway) UpsertConnector(ctx context.Context, c ConnectorRecord) error {
	_, err := g.Exec(ctx, `
		INSERT INTO Connectors (`+connectorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			last_notified_status = excluded.last_notified_status,
			error_code = excluded.error_code,
			info = excluded.info,
			vendor_id = excluded.vendor_id,
			vendor_error = excluded.vendor_error,
			status_timestamp = excluded.status_timestamp,
			transaction_id = excluded.transaction_id,
			transaction_id_offline = excluded.transaction_id_offline,
			transaction_start = excluded.transaction_start,
			transaction_id_tag = excluded.transaction_id_tag,
			transaction_parent_id_tag = excluded.transaction_parent_id_tag,
			reservation_id = excluded.reservation_id,
			reservation_id_tag = excluded.reservation_id_tag,
			reservation_parent_id_tag = excluded.reservation_parent_id_tag,
			reservation_expiry_date = excluded.reservation_expiry_date
	`,
		c.ID, c.Status, c.LastNotifiedStatus, c.ErrorCode, c.Info, c.VendorID, c.VendorError,
		c.StatusTimestamp, c.TransactionID, c.TransactionIDOffline, c.TransactionStart,
		c.TransactionIDTag, c.TransactionParentIDTag, c.ReservationID, c.ReservationIDTag,
		c.ReservationParentIDTag, c.ReservationExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert connector %d: %w", c.ID, err)
	}
	return nil
}

// DeleteAllConnectors truncates the table; used by connector.Open when the
// persisted connector count differs from configuration, before the registry
// reseeds rows 0..N.
func (g *Gateway) DeleteAllConnectors(ctx context.Context) error {
	_, err := g.Exec(ctx, `DELETE FROM Connectors`)
	if err != nil {
		return fmt.Errorf("storage: delete connectors: %w", err)
	}
	return nil
}

// DeleteConnector removes a single connector row.
func (g *Gateway) DeleteConnector(ctx context.Context, id int) error {
	_, err := g.Exec(ctx, `DELETE FROM Connectors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: delete connector %d: %w", id, err)
	}
	return nil
}
