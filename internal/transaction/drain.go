package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/domain/serialization"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

var fifoSerializer = serialization.NewSerializer(serialization.FormatJSON)

// DrainFifo delivers queued offline requests in order, one at a time, as
// long as the transport stays connected: the head entry is sent once; on
// success it is popped and the backoff resets; on a recoverable error the
// drain pauses and retries the same entry; on a non-recoverable error the
// entry is dropped and the failure logged.
func (m *Manager) DrainFifo(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Second),
		backoff.WithMaxInterval(30*time.Second),
		backoff.WithMaxElapsedTime(0),
	)

	for {
		if !m.snd.IsConnected() {
			return nil
		}

		entry, err := m.gw.PeekFifo(ctx)
		if errors.Is(err, storage.ErrFifoEmpty) {
			return nil
		}
		if err != nil {
			return err
		}

		recoverable, err := m.deliverFifoEntry(ctx, entry)
		if err == nil {
			if err := m.gw.PopFifo(ctx, entry.RowID); err != nil {
				return err
			}
			bo.Reset()
			continue
		}

		if !recoverable {
			logger.ErrorWithErr(err, "transaction: dropping undeliverable offline request")
			if err := m.gw.PopFifo(ctx, entry.RowID); err != nil {
				return err
			}
			continue
		}

		d, boErr := bo.NextBackOff()
		if boErr != nil {
			return boErr
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// deliverFifoEntry sends one queued entry, reconciling its locally
// generated id against the central system's assignment when it is a
// StartTransaction. Returns (recoverable, err): err is nil on success.
func (m *Manager) deliverFifoEntry(ctx context.Context, entry storage.FifoEntry) (bool, error) {
	payload, err := decodeFifoPayload(entry.Action, entry.PayloadJSON)
	if err != nil {
		return false, err
	}

	res := m.snd.Send(ctx, entry.Action, payload)

	switch res.Outcome {
	case sender.Ok:
	case sender.Disconnected, sender.Timeout:
		return true, errNotDelivered
	case sender.InvalidPayload, sender.InvalidResponse, sender.Nok:
		return false, errNotDelivered
	default:
		return false, errNotDelivered
	}

	if entry.Action == string(ocpp16.ActionStartTransaction) {
		return false, m.reconcileOfflineTransactionID(ctx, entry.ConnectorID, res.Response)
	}
	return false, nil
}

var errNotDelivered = errors.New("transaction: offline request not delivered")

// decodeFifoPayload rehydrates a queued request's JSON into its concrete
// OCPP request type, so the sender's validator sees a real struct rather
// than raw bytes.
func decodeFifoPayload(action, body string) (interface{}, error) {
	t := fifoSerializer.GetPayloadType(action, true)
	if t == nil {
		return nil, errNotDelivered
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal([]byte(body), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// reconcileOfflineTransactionID rewrites a connector's locally generated
// negative transaction id to the central system's assignment once its
// queued StartTransaction is finally acknowledged.
func (m *Manager) reconcileOfflineTransactionID(ctx context.Context, connectorID int, response json.RawMessage) error {
	var conf ocpp16.StartTransactionResponse
	if err := json.Unmarshal(response, &conf); err != nil {
		return err
	}

	rec, ok := m.connectors.Get(connectorID)
	if !ok || rec.TransactionIDOffline == 0 {
		return nil
	}
	localID := rec.TransactionIDOffline

	if conf.IdTagInfo.Status != ocpp16.AuthorizationStatusAccepted {
		m.host.TransactionDeAuthorized(connectorID)
	}

	if err := m.gw.RewriteOfflineTransactionID(ctx, localID, conf.TransactionId); err != nil {
		return err
	}

	_, err := m.connectors.Mutate(ctx, connectorID, func(c *storage.ConnectorRecord) {
		if c.TransactionID == localID {
			c.TransactionID = conf.TransactionId
		}
		c.TransactionIDOffline = 0
	})
	return err
}
