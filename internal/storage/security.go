package storage

import (
	"context"
	"fmt"
)

// SecurityLogRecord is one entry of the append-only, bounded security log.
type SecurityLogRecord struct {
	RowID     int64
	Timestamp string
	Type      string
	Message   string
	Critical  bool
}

// AppendSecurityLog inserts a new security event and, if the table has
// grown past maxEntries, evicts the oldest rows to make room.
func (g *Gateway) AppendSecurityLog(ctx context.Context, entry SecurityLogRecord, maxEntries int) error {
	_, err := g.Exec(ctx, `
		INSERT INTO SecurityLogs (timestamp, type, message, critical) VALUES (?, ?, ?, ?)
	`, entry.Timestamp, entry.Type, entry.Message, boolToInt(entry.Critical))
	if err != nil {
		return fmt.Errorf("storage: append security log: %w", err)
	}

	if maxEntries <= 0 {
		return nil
	}
	_, err = g.Exec(ctx, `
		DELETE FROM SecurityLogs WHERE row_id NOT IN (
			SELECT row_id FROM SecurityLogs ORDER BY row_id DESC LIMIT ?
		)
	`, maxEntries)
	if err != nil {
		return fmt.Errorf("storage: trim security log: %w", err)
	}
	return nil
}

// ListSecurityLog returns every retained security log entry, oldest first.
func (g *Gateway) ListSecurityLog(ctx context.Context) ([]SecurityLogRecord, error) {
	rows, err := g.Query(ctx, `SELECT row_id, timestamp, type, message, critical FROM SecurityLogs ORDER BY row_id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list security log: %w", err)
	}
	defer rows.Close()

	var out []SecurityLogRecord
	for rows.Next() {
		var e SecurityLogRecord
		var critical int
		if err := rows.Scan(&e.RowID, &e.Timestamp, &e.Type, &e.Message, &critical); err != nil {
			return nil, fmt.Errorf("storage: scan security log entry: %w", err)
		}
		e.Critical = critical != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// ClearSecurityLog empties the log, used by clearSecurityEvents.
func (g *Gateway) ClearSecurityLog(ctx context.Context) error {
	_, err := g.Exec(ctx, `DELETE FROM SecurityLogs`)
	if err != nil {
		return fmt.Errorf("storage: clear security log: %w", err)
	}
	return nil
}

// CaCertificateRecord is one installed central-system (or manufacturer)
// root certificate.
type CaCertificateRecord struct {
	RowID       int64
	Serial      string
	Subject     string
	PEM         string
	InstalledAt string
}

// InsertCaCertificate installs a new CA certificate.
func (g *Gateway) InsertCaCertificate(ctx context.Context, serial, subject, pem string) (int64, error) {
	res, err := g.Exec(ctx, `
		INSERT INTO CaCertificates (serial, subject, pem, installed_at) VALUES (?, ?, ?, ?)
	`, serial, subject, pem, now())
	if err != nil {
		return 0, fmt.Errorf("storage: insert CA certificate: %w", err)
	}
	return res.LastInsertId()
}

// ListCaCertificates returns every installed CA certificate.
func (g *Gateway) ListCaCertificates(ctx context.Context) ([]CaCertificateRecord, error) {
	rows, err := g.Query(ctx, `SELECT row_id, serial, subject, pem, installed_at FROM CaCertificates`)
	if err != nil {
		return nil, fmt.Errorf("storage: list CA certificates: %w", err)
	}
	defer rows.Close()

	var out []CaCertificateRecord
	for rows.Next() {
		var c CaCertificateRecord
		if err := rows.Scan(&c.RowID, &c.Serial, &c.Subject, &c.PEM, &c.InstalledAt); err != nil {
			return nil, fmt.Errorf("storage: scan CA certificate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCaCertificate removes one CA certificate by serial.
func (g *Gateway) DeleteCaCertificate(ctx context.Context, serial string) (bool, error) {
	res, err := g.Exec(ctx, `DELETE FROM CaCertificates WHERE serial = ?`, serial)
	if err != nil {
		return false, fmt.Errorf("storage: delete CA certificate %s: %w", serial, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CpCertificateRecord is the charge point's own certificate, or an
// in-flight CSR awaiting a CertificateSigned response.
type CpCertificateRecord struct {
	RowID         int64
	UseType       string
	PEM           string
	PrivateKeyRef string
	CSR           string
	Status        string
	InstalledAt   string
}

// InsertCpCertificate records a new CP certificate row, e.g. a freshly
// generated CSR (Status = "Pending") or an installed certificate.
func (g *Gateway) InsertCpCertificate(ctx context.Context, c CpCertificateRecord) (int64, error) {
	res, err := g.Exec(ctx, `
		INSERT INTO CpCertificates (use_type, pem, private_key_ref, csr, status, installed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.UseType, c.PEM, c.PrivateKeyRef, c.CSR, c.Status, now())
	if err != nil {
		return 0, fmt.Errorf("storage: insert CP certificate: %w", err)
	}
	return res.LastInsertId()
}

// UpdateCpCertificateStatus transitions a CP certificate/CSR's lifecycle
// status, optionally attaching the signed certificate PEM.
func (g *Gateway) UpdateCpCertificateStatus(ctx context.Context, rowID int64, status, pem string) error {
	_, err := g.Exec(ctx, `
		UPDATE CpCertificates SET status = ?, pem = CASE WHEN ? != '' THEN ? ELSE pem END WHERE row_id = ?
	`, status, pem, pem, rowID)
	if err != nil {
		return fmt.Errorf("storage: update CP certificate %d: %w", rowID, err)
	}
	return nil
}

// ListCpCertificates returns every CP certificate/CSR row.
func (g *Gateway) ListCpCertificates(ctx context.Context) ([]CpCertificateRecord, error) {
	rows, err := g.Query(ctx, `
		SELECT row_id, use_type, pem, private_key_ref, csr, status, installed_at FROM CpCertificates
	`)
	if err != nil {
		return nil, fmt.Errorf("storage: list CP certificates: %w", err)
	}
	defer rows.Close()

	var out []CpCertificateRecord
	for rows.Next() {
		var c CpCertificateRecord
		if err := rows.Scan(&c.RowID, &c.UseType, &c.PEM, &c.PrivateKeyRef, &c.CSR, &c.Status, &c.InstalledAt); err != nil {
			return nil, fmt.Errorf("storage: scan CP certificate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCpCertificate removes one CP certificate row.
func (g *Gateway) DeleteCpCertificate(ctx context.Context, rowID int64) error {
	_, err := g.Exec(ctx, `DELETE FROM CpCertificates WHERE row_id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("storage: delete CP certificate %d: %w", rowID, err)
	}
	return nil
}

// LogRequestRecord tracks a GetLog upload request through to
// completion, surfaced back to the CS via LogStatusNotification.
type LogRequestRecord struct {
	RowID          int64
	RequestID      int
	LogType        string
	Status         string
	RemoteLocation string
	CreatedAt      string
}

// InsertLogRequest records a new diagnostics/security log upload request.
func (g *Gateway) InsertLogRequest(ctx context.Context, r LogRequestRecord) (int64, error) {
	res, err := g.Exec(ctx, `
		INSERT INTO Logs (request_id, log_type, status, remote_location, created_at) VALUES (?, ?, ?, ?, ?)
	`, r.RequestID, r.LogType, r.Status, r.RemoteLocation, now())
	if err != nil {
		return 0, fmt.Errorf("storage: insert log request: %w", err)
	}
	return res.LastInsertId()
}

// UpdateLogRequestStatus transitions a log request's status as the upload
// progresses (Uploading, Uploaded, UploadFailure, ...).
func (g *Gateway) UpdateLogRequestStatus(ctx context.Context, requestID int, status string) error {
	_, err := g.Exec(ctx, `UPDATE Logs SET status = ? WHERE request_id = ?`, status, requestID)
	if err != nil {
		return fmt.Errorf("storage: update log request %d: %w", requestID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
