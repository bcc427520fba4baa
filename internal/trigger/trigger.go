// Package trigger serves TriggerMessage and ExtendedTriggerMessage calls
// by dispatching to the manager that owns each requested message, the
// same small-registry shape internal/transport/dispatcher uses for
// inbound CALLs.
package trigger

import (
	"context"

	"github.com/go-ocpp/chargepoint/internal/connector"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
)

// Func serves one requested message, resending (or sending for the first
// time) it out of band.
type Func func(ctx context.Context, connectorID int) error

// connectorRequired lists the messages that must be triggered for a
// specific, existing connector rather than the charge point as a whole.
var connectorRequired = map[ocpp16.MessageTrigger]bool{
	ocpp16.MessageTriggerStatusNotification: true,
	ocpp16.MessageTriggerMeterValues:        true,
}

var connectorRequiredExtended = map[ocpp16.MessageTriggerExtended]bool{
	ocpp16.MessageTriggerExtendedStatusNotification: true,
	ocpp16.MessageTriggerExtendedMeterValues:        true,
}

// Registry maps requested message kinds to the handler that serves them.
// A kind with no registered handler yields NotImplemented, per the
// standard TriggerMessage/ExtendedTriggerMessage status vocabulary.
type Registry struct {
	connectors *connector.Registry
	core       map[ocpp16.MessageTrigger]Func
	extended   map[ocpp16.MessageTriggerExtended]Func
}

// New builds an empty Registry.
func New(connectors *connector.Registry) *Registry {
	return &Registry{
		connectors: connectors,
		core:       make(map[ocpp16.MessageTrigger]Func),
		extended:   make(map[ocpp16.MessageTriggerExtended]Func),
	}
}

// Register binds a core MessageTrigger kind to fn.
func (r *Registry) Register(kind ocpp16.MessageTrigger, fn Func) {
	r.core[kind] = fn
}

// RegisterExtended binds a Security-extension MessageTriggerExtended kind
// to fn.
func (r *Registry) RegisterExtended(kind ocpp16.MessageTriggerExtended, fn Func) {
	r.extended[kind] = fn
}

// Trigger serves a TriggerMessageRequest.
func (r *Registry) Trigger(ctx context.Context, kind ocpp16.MessageTrigger, connectorID *int) ocpp16.TriggerMessageStatus {
	fn, ok := r.core[kind]
	if !ok {
		return ocpp16.TriggerMessageStatusNotImplemented
	}
	id, status, ok := r.resolveConnector(connectorRequired[kind], connectorID)
	if !ok {
		return status
	}
	if err := fn(ctx, id); err != nil {
		return ocpp16.TriggerMessageStatusRejected
	}
	return ocpp16.TriggerMessageStatusAccepted
}

// TriggerExtended serves an ExtendedTriggerMessageRequest.
func (r *Registry) TriggerExtended(ctx context.Context, kind ocpp16.MessageTriggerExtended, connectorID *int) ocpp16.TriggerMessageStatus {
	fn, ok := r.extended[kind]
	if !ok {
		return ocpp16.TriggerMessageStatusNotImplemented
	}
	id, status, ok := r.resolveConnector(connectorRequiredExtended[kind], connectorID)
	if !ok {
		return status
	}
	if err := fn(ctx, id); err != nil {
		return ocpp16.TriggerMessageStatusRejected
	}
	return ocpp16.TriggerMessageStatusAccepted
}

func (r *Registry) resolveConnector(required bool, connectorID *int) (int, ocpp16.TriggerMessageStatus, bool) {
	if connectorID == nil {
		if required {
			return 0, ocpp16.TriggerMessageStatusRejected, false
		}
		return 0, "", true
	}
	if _, ok := r.connectors.Get(*connectorID); !ok {
		return 0, ocpp16.TriggerMessageStatusRejected, false
	}
	return *connectorID, "", true
}
