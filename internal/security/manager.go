// Package security owns the append-only security event log, CA/CP
// certificate lifecycle, and CSR handling for the Security Profile
// extension to Core.
package security

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

// Sender is the subset of sender.Sender the manager depends on.
type Sender interface {
	Send(ctx context.Context, action string, payload interface{}) sender.Result
	IsConnected() bool
}

// Manager owns the security event log and the CA/CP certificate store.
type Manager struct {
	gw  *storage.Gateway
	snd Sender
	cfg config.OCPPConfig
}

// New builds a Manager.
func New(gw *storage.Gateway, snd Sender, cfg config.OCPPConfig) *Manager {
	return &Manager{gw: gw, snd: snd, cfg: cfg}
}

// LogEvent appends a security event to the bounded log and, if notify is
// set and the charge point is connected, reports it immediately via
// SecurityEventNotification (otherwise it stays in the log for a later
// GetLog upload).
func (m *Manager) LogEvent(ctx context.Context, eventType ocpp16.SecurityEvent, message string, critical, notify bool) {
	entry := storage.SecurityLogRecord{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Type:      string(eventType),
		Message:   message,
		Critical:  critical,
	}
	if err := m.gw.AppendSecurityLog(ctx, entry, m.cfg.SecurityLogMaxEntries); err != nil {
		logger.ErrorWithErr(err, "security: append security log")
	}

	if !notify || !m.snd.IsConnected() {
		return
	}
	req := ocpp16.SecurityEventNotificationRequest{
		Type:      eventType,
		Timestamp: ocpp16.DateTime{Time: time.Now()},
	}
	if message != "" {
		req.TechInfo = &message
	}
	m.snd.Send(ctx, string(ocpp16.ActionSecurityEventNotification), req)
}

// ListLog returns every retained security log entry, oldest first.
func (m *Manager) ListLog(ctx context.Context) ([]storage.SecurityLogRecord, error) {
	return m.gw.ListSecurityLog(ctx)
}

// ClearLog empties the security log, logging the clear itself per the
// standard event vocabulary.
func (m *Manager) ClearLog(ctx context.Context) error {
	if err := m.gw.ClearSecurityLog(ctx); err != nil {
		return err
	}
	m.LogEvent(ctx, ocpp16.SecurityEventSecurityLogWasCleared, "", true, false)
	return nil
}

// InstallCertificate parses and stores a CA certificate. Only
// CentralSystemRootCertificate/ManufacturerRootCertificate use is
// supported; both are kept in the same CaCertificates table since the
// charge point does not act as a relying party for one over the other.
func (m *Manager) InstallCertificate(ctx context.Context, certType ocpp16.CertificateUseType, pemData string) (ocpp16.CertificateStatus, error) {
	cert, err := parseCertificate(pemData)
	if err != nil {
		return ocpp16.CertificateStatusRejected, nil
	}

	serial := hex.EncodeToString(cert.SerialNumber.Bytes())
	if _, err := m.gw.InsertCaCertificate(ctx, serial, cert.Subject.String(), pemData); err != nil {
		return "", fmt.Errorf("security: install CA certificate: %w", err)
	}
	return ocpp16.CertificateStatusAccepted, nil
}

// DeleteCertificate removes the CA certificate whose serial number
// matches hash.SerialNumber. Matching only on serial (rather than the
// full issuer name/key hash) is a deliberate simplification: verifying
// issuer hashes requires the signing CA's own certificate, which this
// charge point does not otherwise retain.
func (m *Manager) DeleteCertificate(ctx context.Context, hash ocpp16.CertificateHashData) (ocpp16.DeleteCertificateStatus, error) {
	ok, err := m.gw.DeleteCaCertificate(ctx, hash.SerialNumber)
	if err != nil {
		return "", fmt.Errorf("security: delete CA certificate: %w", err)
	}
	if !ok {
		return ocpp16.DeleteCertificateStatusNotFound, nil
	}
	return ocpp16.DeleteCertificateStatusAccepted, nil
}

// InstalledCertificateIds lists the hash data of every installed CA
// certificate. certType is not used for filtering: the CA table stores no
// use type, so every installed certificate is listed.
func (m *Manager) InstalledCertificateIds(ctx context.Context, certType *ocpp16.CertificateUseType) ([]ocpp16.CertificateHashData, error) {
	records, err := m.gw.ListCaCertificates(ctx)
	if err != nil {
		return nil, fmt.Errorf("security: list CA certificates: %w", err)
	}
	out := make([]ocpp16.CertificateHashData, 0, len(records))
	for _, rec := range records {
		cert, err := parseCertificate(rec.PEM)
		if err != nil {
			continue
		}
		out = append(out, ocpp16.CertificateHashData{
			HashAlgorithm:  "SHA256",
			IssuerNameHash: hashHex(cert.RawIssuer),
			IssuerKeyHash:  hashHex(cert.RawSubjectPublicKeyInfo),
			SerialNumber:   rec.Serial,
		})
	}
	return out, nil
}

// RequestCertificateSigning generates a charge-point keypair and PEM CSR,
// stores it as a Pending CP certificate row, and submits it via
// SignCertificate. Returns the new row id so CertificateSigned can later
// be matched against it.
func (m *Manager) RequestCertificateSigning(ctx context.Context, useType, commonName string) (int64, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return 0, fmt.Errorf("security: generate CP key: %w", err)
	}
	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return 0, fmt.Errorf("security: marshal CP key: %w", err)
	}
	keyPEM := string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes}))

	csrTemplate := x509.CertificateRequest{
		Subject:            pkix.Name{CommonName: commonName},
		SignatureAlgorithm: x509.ECDSAWithSHA256,
	}
	csrBytes, err := x509.CreateCertificateRequest(rand.Reader, &csrTemplate, key)
	if err != nil {
		return 0, fmt.Errorf("security: create CSR: %w", err)
	}
	csrPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: csrBytes}))

	rowID, err := m.gw.InsertCpCertificate(ctx, storage.CpCertificateRecord{
		UseType:       useType,
		PrivateKeyRef: keyPEM,
		CSR:           csrPEM,
		Status:        "Pending",
	})
	if err != nil {
		return 0, fmt.Errorf("security: store pending CP certificate: %w", err)
	}

	res := m.snd.Send(ctx, string(ocpp16.ActionSignCertificate), ocpp16.SignCertificateRequest{Csr: csrPEM})
	if res.Outcome == sender.Ok {
		var conf ocpp16.SignCertificateResponse
		if err := json.Unmarshal(res.Response, &conf); err == nil && conf.Status != ocpp16.CertificateSignedStatusAccepted {
			_ = m.gw.UpdateCpCertificateStatus(ctx, rowID, "Rejected", "")
		}
	}
	return rowID, nil
}

// AcceptSignedCertificate installs a signed certificate chain delivered by
// CertificateSigned, matching it to the oldest Pending CP certificate row.
func (m *Manager) AcceptSignedCertificate(ctx context.Context, certificateChain string) (ocpp16.CertificateSignedStatus, error) {
	if _, err := parseCertificate(certificateChain); err != nil {
		return ocpp16.CertificateSignedStatusRejected, nil
	}

	records, err := m.gw.ListCpCertificates(ctx)
	if err != nil {
		return "", fmt.Errorf("security: list CP certificates: %w", err)
	}
	var pendingRowID int64 = -1
	for _, rec := range records {
		if rec.Status == "Pending" {
			pendingRowID = rec.RowID
			break
		}
	}
	if pendingRowID < 0 {
		return ocpp16.CertificateSignedStatusRejected, nil
	}

	if err := m.gw.UpdateCpCertificateStatus(ctx, pendingRowID, "Accepted", certificateChain); err != nil {
		return "", fmt.Errorf("security: install signed CP certificate: %w", err)
	}
	return ocpp16.CertificateSignedStatusAccepted, nil
}

func parseCertificate(pemData string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("security: no PEM block found")
	}
	return x509.ParseCertificate(block.Bytes)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
