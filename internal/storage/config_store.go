package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// Internal configuration keys, process-wide rows vended from InternalConfig.
const (
	KeyStackVersion              = "StackVersion"
	KeyStartDate                 = "StartDate"
	KeyUptime                    = "Uptime"
	KeyDisconnectedTime          = "DisconnectedTime"
	KeyTotalUptime               = "TotalUptime"
	KeyTotalDisconnectedTime     = "TotalDisconnectedTime"
	KeyLastConnectionUrl         = "LastConnectionUrl"
	KeyLastRegistrationStatus    = "LastRegistrationStatus"
	KeyOfflineTransactionCounter = "OfflineTransactionCounter"
	keyLocalAuthListVersion      = "LocalAuthListVersion"
)

// GetConfig reads a raw internal configuration value, returning ok=false if
// the key has never been set.
func (g *Gateway) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := g.QueryRow(ctx, `SELECT value FROM InternalConfig WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get config %s: %w", key, err)
	}
	return value, true, nil
}

// GetConfigInt reads a key as an integer, returning def if unset or
// unparsable.
func (g *Gateway) GetConfigInt(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := g.GetConfig(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, nil
	}
	return n, nil
}

// SetConfig upserts an internal configuration value.
func (g *Gateway) SetConfig(ctx context.Context, key, value string) error {
	return g.WithTx(ctx, func(tx *sql.Tx) error {
		return setConfigTx(ctx, tx, key, value)
	})
}

func setConfigTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO InternalConfig (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("storage: set config %s: %w", key, err)
	}
	return nil
}
