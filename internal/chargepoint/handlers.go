package chargepoint

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/ocpperr"
)

// registerHandlers binds every central-system-initiated action this client
// answers to the dispatcher. Actions outside this set (RemoteStartTransaction,
// ChangeConfiguration, ReserveNow, and the rest of the core profile's
// connector-control messages) are not part of this client's scope and are
// left unregistered, surfacing as NotImplemented if ever called.
func (cp *ChargePoint) registerHandlers() {
	must := func(action ocpp16.Action, fn handlerFunc) {
		if err := cp.dispatcher.Register(string(action), false, fn); err != nil {
			logger.ErrorWithErr(err, "chargepoint: register handler")
		}
	}

	must(ocpp16.ActionSetChargingProfile, cp.handleSetChargingProfile)
	must(ocpp16.ActionClearChargingProfile, cp.handleClearChargingProfile)
	must(ocpp16.ActionGetCompositeSchedule, cp.handleGetCompositeSchedule)
	must(ocpp16.ActionTriggerMessage, cp.handleTriggerMessage)
	must(ocpp16.ActionExtendedTriggerMessage, cp.handleExtendedTriggerMessage)
	must(ocpp16.ActionCertificateSigned, cp.handleCertificateSigned)
	must(ocpp16.ActionDeleteCertificate, cp.handleDeleteCertificate)
	must(ocpp16.ActionGetInstalledCertificateIds, cp.handleGetInstalledCertificateIds)
	must(ocpp16.ActionInstallCertificate, cp.handleInstallCertificate)
	must(ocpp16.ActionGetLog, cp.handleGetLog)
	must(ocpp16.ActionGetDiagnostics, cp.handleGetDiagnostics)
	must(ocpp16.ActionUpdateFirmware, cp.handleUpdateFirmware)
}

// handlerFunc matches dispatcher.HandlerFunc without importing that
// package's name into every signature below.
type handlerFunc = func(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string)

func decodeFail(err error) (interface{}, bool, string, string) {
	return nil, false, ocpperr.CodeFormationViolation, err.Error()
}

func (cp *ChargePoint) handleSetChargingProfile(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.SetChargingProfileRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status, err := cp.profiles.Install(ctx, req.ConnectorId, req.CsChargingProfiles)
	if err != nil {
		logger.ErrorWithErr(err, "chargepoint: install charging profile")
		return nil, false, ocpperr.CodeInternalError, err.Error()
	}
	return ocpp16.SetChargingProfileResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleClearChargingProfile(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.ClearChargingProfileRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status, err := cp.profiles.Clear(ctx, req.Id, req.ConnectorId, req.ChargingProfilePurpose, req.StackLevel)
	if err != nil {
		logger.ErrorWithErr(err, "chargepoint: clear charging profile")
		return nil, false, ocpperr.CodeInternalError, err.Error()
	}
	return ocpp16.ClearChargingProfileResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleGetCompositeSchedule(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.GetCompositeScheduleRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}

	unit := ocpp16.ChargingRateUnit("W")
	if req.ChargingRateUnit != nil {
		unit = *req.ChargingRateUnit
	}

	schedule, err := cp.resolveSchedule(ctx, req.ConnectorId, req.Duration, unit)
	if err != nil {
		return ocpp16.GetCompositeScheduleResponse{Status: ocpp16.GetCompositeScheduleStatusRejected}, true, "", ""
	}

	connectorID := req.ConnectorId
	return ocpp16.GetCompositeScheduleResponse{
		Status:           ocpp16.GetCompositeScheduleStatusAccepted,
		ConnectorId:      &connectorID,
		ScheduleStart:    &ocpp16.DateTime{Time: nowUTC()},
		ChargingSchedule: &schedule,
	}, true, "", ""
}

func (cp *ChargePoint) handleTriggerMessage(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.TriggerMessageRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status := cp.triggers.Trigger(ctx, req.RequestedMessage, req.ConnectorId)
	return ocpp16.TriggerMessageResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleExtendedTriggerMessage(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.ExtendedTriggerMessageRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status := cp.triggers.TriggerExtended(ctx, req.RequestedMessage, req.ConnectorId)
	return ocpp16.ExtendedTriggerMessageResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleCertificateSigned(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.CertificateSignedRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status, err := cp.security.AcceptSignedCertificate(ctx, req.CertificateChain)
	if err != nil {
		logger.ErrorWithErr(err, "chargepoint: accept signed certificate")
		return ocpp16.CertificateSignedResponse{Status: ocpp16.CertificateSignedStatusRejected}, true, "", ""
	}
	return ocpp16.CertificateSignedResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleDeleteCertificate(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.DeleteCertificateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status, err := cp.security.DeleteCertificate(ctx, req.CertificateHashData)
	if err != nil {
		logger.ErrorWithErr(err, "chargepoint: delete certificate")
		return nil, false, ocpperr.CodeInternalError, err.Error()
	}
	return ocpp16.DeleteCertificateResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleGetInstalledCertificateIds(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.GetInstalledCertificateIdsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	ids, err := cp.security.InstalledCertificateIds(ctx, req.CertificateType)
	if err != nil {
		logger.ErrorWithErr(err, "chargepoint: list installed certificates")
		return nil, false, ocpperr.CodeInternalError, err.Error()
	}
	status := "Accepted"
	if len(ids) == 0 {
		status = "NotFound"
	}
	return ocpp16.GetInstalledCertificateIdsResponse{Status: status, CertificateHashData: ids}, true, "", ""
}

func (cp *ChargePoint) handleInstallCertificate(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.InstallCertificateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status, err := cp.security.InstallCertificate(ctx, req.CertificateType, req.Certificate)
	if err != nil {
		logger.ErrorWithErr(err, "chargepoint: install certificate")
		return nil, false, ocpperr.CodeInternalError, err.Error()
	}
	return ocpp16.InstallCertificateResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleGetLog(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.GetLogRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	status, err := cp.maint.GetLog(ctx, req.LogType, req.RequestId, req.Log.RemoteLocation, dateTimeToTime(req.Log.OldestTimestamp), dateTimeToTime(req.Log.LatestTimestamp))
	if err != nil {
		logger.ErrorWithErr(err, "chargepoint: get log")
		return nil, false, ocpperr.CodeInternalError, err.Error()
	}
	return ocpp16.GetLogResponse{Status: status}, true, "", ""
}

func (cp *ChargePoint) handleGetDiagnostics(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.GetDiagnosticsRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	cp.maint.GetDiagnostics(ctx, req.Location, dateTimeToTime(req.StartTime), dateTimeToTime(req.StopTime))
	return ocpp16.GetDiagnosticsResponse{}, true, "", ""
}

func (cp *ChargePoint) handleUpdateFirmware(ctx context.Context, payload json.RawMessage) (interface{}, bool, string, string) {
	var req ocpp16.UpdateFirmwareRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return decodeFail(err)
	}
	cp.maint.UpdateFirmware(ctx, req.Location, req.RetrieveDate.Time)
	return ocpp16.UpdateFirmwareResponse{}, true, "", ""
}

func dateTimeToTime(dt *ocpp16.DateTime) *time.Time {
	if dt == nil {
		return nil
	}
	t := dt.Time
	return &t
}

func nowUTC() time.Time { return time.Now().UTC() }
