// Package transaction implements the start/stop rules for charging
// transactions: authorization, reservation/active-transaction guards,
// online and offline transaction id assignment, and reconciliation of
// offline-assigned ids once the FIFO drains after a reconnect.
package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-ocpp/chargepoint/internal/connector"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/ocpperr"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

// Sender is the subset of sender.Sender the manager depends on.
type Sender interface {
	Send(ctx context.Context, action string, payload interface{}) sender.Result
	IsConnected() bool
}

// AuthResult is the outcome of an authorization decision, mirroring
// auth.Result without importing that package (keeps the dependency
// direction one-way: auth does not need to know about transactions).
type AuthResult struct {
	Status      ocpp16.AuthorizationStatus
	ParentIDTag string
}

// Authorizer resolves an idTag's authorization decision.
type Authorizer interface {
	Authorize(ctx context.Context, idTag string, connected bool) (AuthResult, error)
}

// MeterSampler starts/stops the per-connector sampled meter-value timer
// bound to a transaction's lifetime.
type MeterSampler interface {
	StartSampling(connectorID, transactionID int)
	StopSampling(connectorID int)
}

// ProfileAssigner binds pending TxProfile templates to a newly started
// transaction, and removes the TxProfile bound to one once it ends.
type ProfileAssigner interface {
	AssignPendingTxProfiles(ctx context.Context, connectorID, transactionID int) error
	ClearConnectorProfiles(ctx context.Context, connectorID, transactionID int) error
}

// Host receives transaction lifecycle notifications the manager cannot
// resolve on its own.
type Host interface {
	TransactionDeAuthorized(connectorID int)
}

// Manager owns transaction start/stop and offline reconciliation.
type Manager struct {
	gw         *storage.Gateway
	connectors *connector.Registry
	authz      Authorizer
	snd        Sender
	meters     MeterSampler
	profiles   ProfileAssigner
	host       Host
}

// New builds a Manager.
func New(gw *storage.Gateway, connectors *connector.Registry, authz Authorizer, snd Sender, meters MeterSampler, profiles ProfileAssigner, host Host) *Manager {
	return &Manager{gw: gw, connectors: connectors, authz: authz, snd: snd, meters: meters, profiles: profiles, host: host}
}

// StartResult reports the outcome of a startTransaction attempt.
type StartResult struct {
	Status        ocpp16.AuthorizationStatus
	TransactionID int
}

// StartTransaction resolves authorization, checks the connector's guards,
// and opens a transaction — online, or offline with a locally generated
// negative transaction id when disconnected.
func (m *Manager) StartTransaction(ctx context.Context, connectorID int, idTag string, meterStart int, registrationOK bool) (StartResult, error) {
	if !registrationOK {
		return StartResult{Status: ocpp16.AuthorizationStatusInvalid}, nil
	}

	connected := m.snd.IsConnected()
	auth, err := m.authz.Authorize(ctx, idTag, connected)
	if err != nil {
		return StartResult{}, fmt.Errorf("transaction: authorize: %w", err)
	}
	if auth.Status != ocpp16.AuthorizationStatusAccepted {
		return StartResult{Status: auth.Status}, nil
	}

	rec, ok := m.connectors.Get(connectorID)
	if !ok {
		return StartResult{}, ocpperr.NewInvariant("transaction.StartTransaction", fmt.Sprintf("no such connector %d", connectorID), nil)
	}
	if rec.TransactionID != 0 {
		return StartResult{Status: ocpp16.AuthorizationStatusConcurrentTx}, nil
	}
	if rec.ReservationID != 0 && rec.ReservationIDTag != idTag && rec.ReservationParentIDTag != idTag {
		return StartResult{Status: ocpp16.AuthorizationStatusInvalid}, nil
	}

	txID, err := m.assignTransactionID(ctx, connectorID, idTag, meterStart, connected)
	if err != nil {
		return StartResult{}, err
	}

	if _, err := m.connectors.Mutate(ctx, connectorID, func(c *storage.ConnectorRecord) {
		c.Status = string(ocpp16.ChargePointStatusCharging)
		c.TransactionID = txID
		c.TransactionIDTag = idTag
		c.TransactionParentIDTag = auth.ParentIDTag
		c.TransactionStart = now()
		c.ReservationID = 0
		c.ReservationIDTag = ""
		c.ReservationParentIDTag = ""
		if txID < 0 {
			c.TransactionIDOffline = txID
		}
	}); err != nil {
		return StartResult{}, fmt.Errorf("transaction: persist start: %w", err)
	}

	m.meters.StartSampling(connectorID, txID)
	if err := m.profiles.AssignPendingTxProfiles(ctx, connectorID, txID); err != nil {
		logger.ErrorWithErr(err, "transaction: assign pending tx profiles")
	}

	return StartResult{Status: ocpp16.AuthorizationStatusAccepted, TransactionID: txID}, nil
}

func (m *Manager) assignTransactionID(ctx context.Context, connectorID int, idTag string, meterStart int, connected bool) (int, error) {
	req := ocpp16.StartTransactionRequest{
		ConnectorId: connectorID,
		IdTag:       idTag,
		MeterStart:  meterStart,
		Timestamp:   ocpp16.DateTime{Time: time.Now()},
	}

	if !connected {
		offlineID, err := m.nextOfflineTransactionID(ctx)
		if err != nil {
			return 0, err
		}
		body, err := json.Marshal(req)
		if err != nil {
			return 0, fmt.Errorf("transaction: encode offline StartTransaction: %w", err)
		}
		if _, err := m.gw.EnqueueFifo(ctx, connectorID, string(ocpp16.ActionStartTransaction), string(body)); err != nil {
			return 0, fmt.Errorf("transaction: enqueue offline StartTransaction: %w", err)
		}
		return offlineID, nil
	}

	res := m.snd.Send(ctx, string(ocpp16.ActionStartTransaction), req)
	if res.Outcome != sender.Ok {
		// The connection dropped between the IsConnected check and the
		// send; fall back to an offline-assigned id so the transaction
		// still opens and reconciles once reconnected.
		return m.assignTransactionID(ctx, connectorID, idTag, meterStart, false)
	}

	var conf ocpp16.StartTransactionResponse
	if err := json.Unmarshal(res.Response, &conf); err != nil {
		return 0, fmt.Errorf("transaction: decode StartTransaction.conf: %w", err)
	}
	return conf.TransactionId, nil
}

func (m *Manager) nextOfflineTransactionID(ctx context.Context) (int, error) {
	n, err := m.gw.GetConfigInt(ctx, storage.KeyOfflineTransactionCounter, 0)
	if err != nil {
		return 0, err
	}
	n++
	if err := m.gw.SetConfig(ctx, storage.KeyOfflineTransactionCounter, fmt.Sprintf("%d", n)); err != nil {
		return 0, err
	}
	return -n, nil
}

// StopTransaction closes connectorID's active transaction, collecting
// buffered meter values and enqueueing (or sending) the StopTransaction.
func (m *Manager) StopTransaction(ctx context.Context, connectorID int, idTag string, meterStop int, reason ocpp16.Reason) error {
	rec, ok := m.connectors.Get(connectorID)
	if !ok || rec.TransactionID == 0 {
		return ocpperr.NewInvariant("transaction.StopTransaction", fmt.Sprintf("no active transaction on connector %d", connectorID), nil)
	}

	txID := rec.TransactionID
	txData, err := m.collectTransactionData(ctx, txID)
	if err != nil {
		return err
	}

	req := ocpp16.StopTransactionRequest{
		MeterStop:       meterStop,
		Timestamp:       ocpp16.DateTime{Time: time.Now()},
		TransactionId:   txID,
		Reason:          &reason,
		TransactionData: txData,
	}
	if idTag != "" {
		req.IdTag = &idTag
	}

	connected := m.snd.IsConnected()
	if connected {
		res := m.snd.Send(ctx, string(ocpp16.ActionStopTransaction), req)
		if res.Outcome == sender.Ok {
			var conf ocpp16.StopTransactionResponse
			if err := json.Unmarshal(res.Response, &conf); err == nil && conf.IdTagInfo != nil &&
				conf.IdTagInfo.Status != ocpp16.AuthorizationStatusAccepted {
				m.host.TransactionDeAuthorized(connectorID)
			}
		} else {
			connected = false
		}
	}
	if !connected {
		body, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("transaction: encode offline StopTransaction: %w", err)
		}
		if _, err := m.gw.EnqueueFifo(ctx, connectorID, string(ocpp16.ActionStopTransaction), string(body)); err != nil {
			return fmt.Errorf("transaction: enqueue offline StopTransaction: %w", err)
		}
	}

	if err := m.gw.DeleteMeterValuesByTransaction(ctx, txID); err != nil {
		logger.ErrorWithErr(err, "transaction: clear buffered meter values")
	}
	if err := m.profiles.ClearConnectorProfiles(ctx, connectorID, txID); err != nil {
		logger.ErrorWithErr(err, "transaction: clear connector profiles")
	}
	m.meters.StopSampling(connectorID)

	_, err = m.connectors.Mutate(ctx, connectorID, func(c *storage.ConnectorRecord) {
		c.Status = string(ocpp16.ChargePointStatusAvailable)
		c.TransactionID = 0
		c.TransactionIDOffline = 0
		c.TransactionIDTag = ""
		c.TransactionParentIDTag = ""
		c.TransactionStart = ""
	})
	return err
}

func (m *Manager) collectTransactionData(ctx context.Context, transactionID int) ([]ocpp16.MeterValue, error) {
	records, err := m.gw.ListMeterValuesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction: collect stop-transaction meter values: %w", err)
	}
	out := make([]ocpp16.MeterValue, 0, len(records))
	for _, r := range records {
		var mv ocpp16.MeterValue
		if err := json.Unmarshal([]byte(r.ValueJSON), &mv); err != nil {
			logger.ErrorWithErr(err, "transaction: decode buffered meter value")
			continue
		}
		out = append(out, mv)
	}
	return out, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
