package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrFifoEmpty is returned by PeekFifo/DequeueFifo when no request is queued.
var ErrFifoEmpty = errors.New("storage: request FIFO is empty")

// FifoEntry is one persisted request awaiting delivery once the charge
// point reconnects. Only transaction-related actions are queued here.
type FifoEntry struct {
	RowID       int64
	ConnectorID int
	Action      string
	PayloadJSON string
	EnqueuedAt  string
}

// EnqueueFifo appends a request to the tail of the offline queue.
func (g *Gateway) EnqueueFifo(ctx context.Context, connectorID int, action, payloadJSON string) (int64, error) {
	res, err := g.Exec(ctx, `
		INSERT INTO RequestFifo (connector_id, action, payload_json, enqueued_at) VALUES (?, ?, ?, ?)
	`, connectorID, action, payloadJSON, now())
	if err != nil {
		return 0, fmt.Errorf("storage: enqueue fifo entry: %w", err)
	}
	return res.LastInsertId()
}

// PeekFifo returns the oldest queued request without removing it, so the
// drain loop can retry the same entry across a failed attempt.
func (g *Gateway) PeekFifo(ctx context.Context) (FifoEntry, error) {
	var e FifoEntry
	row := g.QueryRow(ctx, `
		SELECT row_id, connector_id, action, payload_json, enqueued_at
		FROM RequestFifo ORDER BY row_id ASC LIMIT 1
	`)
	err := row.Scan(&e.RowID, &e.ConnectorID, &e.Action, &e.PayloadJSON, &e.EnqueuedAt)
	if err == sql.ErrNoRows {
		return FifoEntry{}, ErrFifoEmpty
	}
	if err != nil {
		return FifoEntry{}, fmt.Errorf("storage: peek fifo: %w", err)
	}
	return e, nil
}

// PopFifo removes the given row, called once its delivery succeeds (or is
// permanently abandoned).
func (g *Gateway) PopFifo(ctx context.Context, rowID int64) error {
	_, err := g.Exec(ctx, `DELETE FROM RequestFifo WHERE row_id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("storage: pop fifo entry %d: %w", rowID, err)
	}
	return nil
}

// RewriteOfflineTransactionID replaces a locally generated transaction id
// with the central system's assignment everywhere it was recorded: buffered
// meter values, and any still-queued MeterValues/StopTransaction FIFO
// entries for the same transaction.
func (g *Gateway) RewriteOfflineTransactionID(ctx context.Context, oldID, newID int) error {
	if _, err := g.Exec(ctx, `UPDATE MeterValuesTx SET transaction_id = ? WHERE transaction_id = ?`, newID, oldID); err != nil {
		return fmt.Errorf("storage: rewrite meter value transaction id: %w", err)
	}

	rows, err := g.Query(ctx, `
		SELECT row_id, payload_json FROM RequestFifo WHERE action IN ('MeterValues', 'StopTransaction')
	`)
	if err != nil {
		return fmt.Errorf("storage: scan fifo entries for transaction id rewrite: %w", err)
	}
	type pending struct {
		rowID int64
		body  string
	}
	var updates []pending
	for rows.Next() {
		var rowID int64
		var body string
		if err := rows.Scan(&rowID, &body); err != nil {
			rows.Close()
			return fmt.Errorf("storage: scan fifo entry: %w", err)
		}
		rewritten, changed, err := rewriteTransactionIDField(body, oldID, newID)
		if err != nil {
			rows.Close()
			return err
		}
		if changed {
			updates = append(updates, pending{rowID: rowID, body: rewritten})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, u := range updates {
		if _, err := g.Exec(ctx, `UPDATE RequestFifo SET payload_json = ? WHERE row_id = ?`, u.body, u.rowID); err != nil {
			return fmt.Errorf("storage: rewrite fifo entry %d: %w", u.rowID, err)
		}
	}
	return nil
}

func rewriteTransactionIDField(body string, oldID, newID int) (string, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return "", false, fmt.Errorf("storage: decode fifo payload: %w", err)
	}
	raw, ok := fields["transactionId"]
	if !ok {
		return body, false, nil
	}
	var current int
	if err := json.Unmarshal(raw, &current); err != nil || current != oldID {
		return body, false, nil
	}
	fields["transactionId"], _ = json.Marshal(newID)
	out, err := json.Marshal(fields)
	if err != nil {
		return "", false, fmt.Errorf("storage: encode fifo payload: %w", err)
	}
	return string(out), true, nil
}

// LenFifo reports how many requests are queued.
func (g *Gateway) LenFifo(ctx context.Context) (int, error) {
	var n int
	if err := g.QueryRow(ctx, `SELECT COUNT(*) FROM RequestFifo`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count fifo entries: %w", err)
	}
	return n, nil
}
