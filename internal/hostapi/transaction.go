package hostapi

import "github.com/go-ocpp/chargepoint/internal/logger"

// RelayLog implements transaction.Host by logging the de-authorization
// instead of driving a physical contactor. An embedder wiring a real
// relay/contactor supplies its own implementation of the same interface;
// this default only exists so cmd/chargepoint has something to pass in.
type RelayLog struct{}

// NewRelayLog builds a RelayLog.
func NewRelayLog() *RelayLog { return &RelayLog{} }

// TransactionDeAuthorized implements transaction.Host.
func (r *RelayLog) TransactionDeAuthorized(connectorID int) {
	logger.Warnf("hostapi: connector %d de-authorized mid-transaction, relay release delegated to host", connectorID)
}
