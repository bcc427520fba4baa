// hostapi.go holds the methods an embedding application calls to drive
// this client: pushing local events up to the central system and reading
// back connection/registration/connector state. It is distinct from the
// Hardware callbacks in chargepoint.go, which flow the opposite direction
// (this module calling out to device-specific code an embedder supplies).
package chargepoint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/events"
	"github.com/go-ocpp/chargepoint/internal/ocpperr"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

// Reconnect drops any live connection and lets the transport's reconnect
// loop dial again immediately, picking up configuration changes (a new
// AuthorizationKey, a new central system URL) that only take effect on a
// fresh dial.
func (cp *ChargePoint) Reconnect() {
	cp.transport.Stop()
}

// ResetData clears the authorization cache, the security log, every
// connector's transaction/status/reservation fields (with its charging
// profiles and buffered meter values) and the offline request queue, and
// resets the offline transaction counter. The local authorization list,
// installed certificates, log requests and other internal configuration
// keys are left as they are. It refuses to run while the client is
// started, since a live transaction or pending cache entry would be
// silently discarded out from under the central system.
func (cp *ChargePoint) ResetData(ctx context.Context) error {
	if cp.isStarted() {
		return ocpperr.NewInvariant("chargepoint.ResetData", "cannot reset data while running", nil)
	}

	if err := cp.gw.ClearAuthCache(ctx); err != nil {
		return fmt.Errorf("chargepoint: clear auth cache: %w", err)
	}
	if err := cp.gw.ClearSecurityLog(ctx); err != nil {
		return fmt.Errorf("chargepoint: clear security log: %w", err)
	}
	for _, rec := range cp.conns.List() {
		if err := cp.ResetConnectorData(ctx, rec.ID); err != nil {
			return err
		}
	}
	for {
		entry, err := cp.gw.PeekFifo(ctx)
		if err == storage.ErrFifoEmpty {
			break
		}
		if err != nil {
			return fmt.Errorf("chargepoint: drain offline queue: %w", err)
		}
		if err := cp.gw.PopFifo(ctx, entry.RowID); err != nil {
			return fmt.Errorf("chargepoint: drain offline queue: %w", err)
		}
	}
	return cp.gw.SetConfig(ctx, storage.KeyOfflineTransactionCounter, "0")
}

// ResetConnectorData clears connectorID's transaction, reservation, and
// status fields back to Available, and drops any charging profiles or
// buffered meter values bound to it. Like ResetData, it refuses to run
// while the client is started.
func (cp *ChargePoint) ResetConnectorData(ctx context.Context, connectorID int) error {
	if cp.isStarted() {
		return ocpperr.NewInvariant("chargepoint.ResetConnectorData", "cannot reset connector data while running", nil)
	}

	rec, ok := cp.conns.Get(connectorID)
	if !ok {
		return ocpperr.NewInvariant("chargepoint.ResetConnectorData", fmt.Sprintf("no such connector %d", connectorID), nil)
	}
	if rec.TransactionID != 0 {
		if err := cp.gw.DeleteMeterValuesByTransaction(ctx, rec.TransactionID); err != nil {
			return fmt.Errorf("chargepoint: clear buffered meter values: %w", err)
		}
	}
	if err := cp.gw.DeleteProfilesByConnector(ctx, connectorID); err != nil {
		return fmt.Errorf("chargepoint: clear charging profiles: %w", err)
	}

	_, err := cp.conns.Mutate(ctx, connectorID, func(c *storage.ConnectorRecord) {
		id := c.ID
		*c = storage.ConnectorRecord{ID: id, Status: string(ocpp16.ChargePointStatusAvailable), ErrorCode: string(ocpp16.ChargePointErrorCodeNoError)}
	})
	return err
}

// GetRegistrationStatus reports the last known BootNotification verdict.
func (cp *ChargePoint) GetRegistrationStatus() ocpp16.RegistrationStatus {
	return cp.statusMgr.RegistrationStatus()
}

// GetConnectorStatus returns connectorID's current snapshot.
func (cp *ChargePoint) GetConnectorStatus(connectorID int) (storage.ConnectorRecord, bool) {
	return cp.conns.Get(connectorID)
}

// StatusNotification reports connectorID's transition to status to the
// central system, subject to the configured debounce policy.
func (cp *ChargePoint) StatusNotification(ctx context.Context, connectorID int, status ocpp16.ChargePointStatus, errorCode ocpp16.ChargePointErrorCode, info string) {
	cp.statusMgr.NotifyStatus(ctx, connectorID, status, errorCode, info)
}

// Authorize resolves idTag's authorization decision through the local
// list, cache, and central system, in that precedence.
func (cp *ChargePoint) Authorize(ctx context.Context, idTag string) (ocpp16.AuthorizationStatus, string, error) {
	res, err := cp.authPipe.Authorize(ctx, idTag, cp.transport.IsConnected())
	if err != nil {
		return "", "", err
	}
	return res.Status, res.ParentIDTag, nil
}

// StartTransaction opens a transaction on connectorID for idTag.
func (cp *ChargePoint) StartTransaction(ctx context.Context, connectorID int, idTag string, meterStart int) (ocpp16.AuthorizationStatus, int, error) {
	res, err := cp.txns.StartTransaction(ctx, connectorID, idTag, meterStart, cp.statusMgr.OfflineLatchOpen(ctx) || cp.transport.IsConnected())
	if err != nil {
		return "", 0, err
	}
	return res.Status, res.TransactionID, nil
}

// StopTransaction closes connectorID's active transaction.
func (cp *ChargePoint) StopTransaction(ctx context.Context, connectorID int, idTag string, meterStop int, reason ocpp16.Reason) error {
	return cp.txns.StopTransaction(ctx, connectorID, idTag, meterStop, reason)
}

// DataTransfer sends a vendor-specific DataTransfer.req and returns the
// central system's reply.
func (cp *ChargePoint) DataTransfer(ctx context.Context, vendorID, messageID string, data interface{}) (ocpp16.DataTransferStatus, interface{}, error) {
	req := ocpp16.DataTransferRequest{VendorId: vendorID, Data: data}
	if messageID != "" {
		req.MessageId = &messageID
	}
	res := cp.sender.Send(ctx, string(ocpp16.ActionDataTransfer), req)
	if res.Outcome != sender.Ok {
		return "", nil, fmt.Errorf("chargepoint: data transfer: %s", res.ErrorMessage)
	}
	var conf ocpp16.DataTransferResponse
	if err := cp.unmarshalResponse(res, &conf); err != nil {
		return "", nil, err
	}
	return conf.Status, conf.Data, nil
}

// SendMeterValues forces an out-of-cycle MeterValues.req for connectorID.
func (cp *ChargePoint) SendMeterValues(ctx context.Context, connectorID int) error {
	return cp.meters.Trigger(ctx, connectorID)
}

// NotifyFirmwareUpdateStatus reports a firmware update phase driven by the
// embedding host rather than this client's own UpdateFirmware flow (e.g. a
// host applying a firmware image it fetched through its own channel).
func (cp *ChargePoint) NotifyFirmwareUpdateStatus(ctx context.Context, status ocpp16.FirmwareStatus) {
	cp.sender.Send(ctx, string(ocpp16.ActionFirmwareStatusNotification), ocpp16.FirmwareStatusNotificationRequest{Status: status})
}

// NotifySignedUpdateFirmwareStatus reports a Security-extension firmware
// update phase, keyed by the request id the SignedUpdateFirmware.req
// carried (nil when the update was not central-system-initiated).
func (cp *ChargePoint) NotifySignedUpdateFirmwareStatus(ctx context.Context, status ocpp16.FirmwareStatus, requestID *int) {
	cp.sender.Send(ctx, string(ocpp16.ActionSignedFirmwareStatusNotification), ocpp16.SignedFirmwareStatusNotificationRequest{Status: status, RequestId: requestID})
}

// LogSecurityEvent appends an entry to the local security log, optionally
// notifying the central system immediately.
func (cp *ChargePoint) LogSecurityEvent(ctx context.Context, eventType ocpp16.SecurityEvent, message string, critical, notify bool) {
	cp.security.LogEvent(ctx, eventType, message, critical, notify)
	cp.recorder.Emit(ctx, events.NewSecurityEventLogged(
		cp.cfg.CentralSystem.ChargePointIdentifier, string(eventType), message, critical, cp.recorder.Metadata()))
}

// ClearSecurityEvents empties the local security log.
func (cp *ChargePoint) ClearSecurityEvents(ctx context.Context) error {
	return cp.security.ClearLog(ctx)
}

// SignCertificate requests a new Charge Point certificate for useType,
// generating the key pair and CSR locally.
func (cp *ChargePoint) SignCertificate(ctx context.Context, useType ocpp16.CertificateUseType, commonName string) (int64, error) {
	return cp.security.RequestCertificateSigning(ctx, string(useType), commonName)
}

// unmarshalResponse decodes a successful sender.Result's response payload,
// a pattern repeated by every Host API method that needs the reply body
// rather than just its outcome.
func (cp *ChargePoint) unmarshalResponse(res sender.Result, v interface{}) error {
	if err := json.Unmarshal(res.Response, v); err != nil {
		return fmt.Errorf("chargepoint: decode response: %w", err)
	}
	return nil
}
