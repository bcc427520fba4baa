package storage

import (
	"context"
	"fmt"
)

// MeterValueRecord is one buffered sampled/aligned/triggered meter value
// belonging to a transaction, persisted so stop-transaction aggregation
// survives a restart and offline buffering never loses samples.
type MeterValueRecord struct {
	RowID         int64
	TransactionID int
	ConnectorID   int
	Timestamp     string
	ValueJSON     string
}

// AppendMeterValue buffers one sampled meter value for a transaction.
func (g *Gateway) AppendMeterValue(ctx context.Context, transactionID, connectorID int, timestamp, valueJSON string) error {
	_, err := g.Exec(ctx, `
		INSERT INTO MeterValuesTx (transaction_id, connector_id, timestamp, value_json) VALUES (?, ?, ?, ?)
	`, transactionID, connectorID, timestamp, valueJSON)
	if err != nil {
		return fmt.Errorf("storage: append meter value: %w", err)
	}
	return nil
}

// ListMeterValuesByTransaction returns every buffered sample for a
// transaction, oldest first, used to build StopTransaction.req's
// transactionData.
func (g *Gateway) ListMeterValuesByTransaction(ctx context.Context, transactionID int) ([]MeterValueRecord, error) {
	rows, err := g.Query(ctx, `
		SELECT row_id, transaction_id, connector_id, timestamp, value_json
		FROM MeterValuesTx WHERE transaction_id = ? ORDER BY row_id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("storage: list meter values for transaction %d: %w", transactionID, err)
	}
	defer rows.Close()

	var out []MeterValueRecord
	for rows.Next() {
		var m MeterValueRecord
		if err := rows.Scan(&m.RowID, &m.TransactionID, &m.ConnectorID, &m.Timestamp, &m.ValueJSON); err != nil {
			return nil, fmt.Errorf("storage: scan meter value: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMeterValuesByTransaction discards a transaction's buffered samples;
// StopTransaction calls it once its request, carrying them as
// transactionData, has been sent or queued in the FIFO.
func (g *Gateway) DeleteMeterValuesByTransaction(ctx context.Context, transactionID int) error {
	_, err := g.Exec(ctx, `DELETE FROM MeterValuesTx WHERE transaction_id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("storage: delete meter values for transaction %d: %w", transactionID, err)
	}
	return nil
}

// CountMeterValuesByContext counts a transaction's buffered samples whose
// value_json was tagged with the given reading context, used to enforce
// StopTxnAlignedDataMaxLength/StopTxnSampledDataMaxLength.
func (g *Gateway) CountMeterValuesByContext(ctx context.Context, transactionID int, readingContext string) (int, error) {
	var n int
	err := g.QueryRow(ctx, `
		SELECT COUNT(*) FROM MeterValuesTx
		WHERE transaction_id = ? AND value_json LIKE '%"context":"'||?||'"%'
	`, transactionID, readingContext).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: count meter values by context: %w", err)
	}
	return n, nil
}

// DeleteOldestMeterValueByContext removes a transaction's single oldest
// buffered sample tagged with the given reading context, keeping a bounded
// table once StopTxn*DataMaxLength is reached.
func (g *Gateway) DeleteOldestMeterValueByContext(ctx context.Context, transactionID int, readingContext string) error {
	_, err := g.Exec(ctx, `
		DELETE FROM MeterValuesTx WHERE row_id = (
			SELECT row_id FROM MeterValuesTx
			WHERE transaction_id = ? AND value_json LIKE '%"context":"'||?||'"%'
			ORDER BY row_id ASC LIMIT 1
		)
	`, transactionID, readingContext)
	if err != nil {
		return fmt.Errorf("storage: delete oldest meter value by context: %w", err)
	}
	return nil
}
