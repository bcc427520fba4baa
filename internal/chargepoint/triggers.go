package chargepoint

import (
	"context"

	"github.com/go-ocpp/chargepoint/internal/connector"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/trigger"
)

// buildTriggerRegistry wires every TriggerMessage/ExtendedTriggerMessage
// kind this client can resend on demand to the manager that owns it. The
// DiagnosticsStatusNotification, FirmwareStatusNotification and
// LogStatusNotification handlers send nothing and return nil, so those
// triggers are answered Accepted with no notification following.
func (cp *ChargePoint) buildTriggerRegistry(conns *connector.Registry) *trigger.Registry {
	reg := trigger.New(conns)

	reg.Register(ocpp16.MessageTriggerBootNotification, func(ctx context.Context, _ int) error {
		return cp.statusMgr.ResendBootNotification(ctx)
	})
	reg.Register(ocpp16.MessageTriggerHeartbeat, func(ctx context.Context, _ int) error {
		return cp.statusMgr.SendHeartbeatNow(ctx)
	})
	reg.Register(ocpp16.MessageTriggerStatusNotification, func(ctx context.Context, connectorID int) error {
		return cp.statusMgr.ResendStatusNotification(ctx, connectorID)
	})
	reg.Register(ocpp16.MessageTriggerMeterValues, func(ctx context.Context, connectorID int) error {
		return cp.meters.Trigger(ctx, connectorID)
	})
	reg.Register(ocpp16.MessageTriggerDiagnosticsStatusNotification, func(ctx context.Context, _ int) error {
		return nil
	})
	reg.Register(ocpp16.MessageTriggerFirmwareStatusNotification, func(ctx context.Context, _ int) error {
		return nil
	})

	reg.RegisterExtended(ocpp16.MessageTriggerExtendedBootNotification, func(ctx context.Context, _ int) error {
		return cp.statusMgr.ResendBootNotification(ctx)
	})
	reg.RegisterExtended(ocpp16.MessageTriggerExtendedHeartbeat, func(ctx context.Context, _ int) error {
		return cp.statusMgr.SendHeartbeatNow(ctx)
	})
	reg.RegisterExtended(ocpp16.MessageTriggerExtendedStatusNotification, func(ctx context.Context, connectorID int) error {
		return cp.statusMgr.ResendStatusNotification(ctx, connectorID)
	})
	reg.RegisterExtended(ocpp16.MessageTriggerExtendedMeterValues, func(ctx context.Context, connectorID int) error {
		return cp.meters.Trigger(ctx, connectorID)
	})
	reg.RegisterExtended(ocpp16.MessageTriggerExtendedLogStatusNotification, func(ctx context.Context, _ int) error {
		return nil
	})
	reg.RegisterExtended(ocpp16.MessageTriggerExtendedFirmwareStatusNotification, func(ctx context.Context, _ int) error {
		return nil
	})
	reg.RegisterExtended(ocpp16.MessageTriggerExtendedSignChargePointCertificate, func(ctx context.Context, _ int) error {
		_, err := cp.security.RequestCertificateSigning(ctx, string(ocpp16.CertificateUseCentralSystemRootCertificate), cp.cfg.CentralSystem.ChargePointIdentifier)
		return err
	})

	return reg
}
