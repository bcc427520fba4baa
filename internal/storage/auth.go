package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// AuthCacheEntry mirrors one row of the Accepted-only authorization cache.
type AuthCacheEntry struct {
	IDTag       string
	Status      string
	ParentIDTag string
	Expiry      string
	LastUsed    string
}

// AuthLocalListEntry mirrors one row of the authorization local list.
type AuthLocalListEntry struct {
	IDTag       string
	Status      string
	ParentIDTag string
	Expiry      string
}

// GetAuthCacheEntry loads one cached authorization decision, or
// sql.ErrNoRows if idTag has never been cached.
func (g *Gateway) GetAuthCacheEntry(ctx context.Context, idTag string) (AuthCacheEntry, error) {
	var e AuthCacheEntry
	row := g.QueryRow(ctx, `
		SELECT id_tag, status, parent_id_tag, expiry, last_used FROM AuthentCache WHERE id_tag = ?
	`, idTag)
	err := row.Scan(&e.IDTag, &e.Status, &e.ParentIDTag, &e.Expiry, &e.LastUsed)
	return e, err
}

// PutAuthCacheEntry inserts or refreshes a cached Accepted decision.
func (g *Gateway) PutAuthCacheEntry(ctx context.Context, e AuthCacheEntry) error {
	e.LastUsed = now()
	_, err := g.Exec(ctx, `
		INSERT INTO AuthentCache (id_tag, status, parent_id_tag, expiry, last_used)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id_tag) DO UPDATE SET
			status = excluded.status,
			parent_id_tag = excluded.parent_id_tag,
			expiry = excluded.expiry,
			last_used = excluded.last_used
	`, e.IDTag, e.Status, e.ParentIDTag, e.Expiry, e.LastUsed)
	if err != nil {
		return fmt.Errorf("storage: put auth cache entry %s: %w", e.IDTag, err)
	}
	return nil
}

// CountAuthCacheEntries reports the cache's current size.
func (g *Gateway) CountAuthCacheEntries(ctx context.Context) (int, error) {
	var n int
	if err := g.QueryRow(ctx, `SELECT COUNT(*) FROM AuthentCache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count auth cache entries: %w", err)
	}
	return n, nil
}

// EvictOldestAuthCacheEntry deletes the least-recently-used cache row and
// returns its id tag (empty if the cache was already empty), so the
// in-memory mirror can drop the same key.
func (g *Gateway) EvictOldestAuthCacheEntry(ctx context.Context) (string, error) {
	row := g.QueryRow(ctx, `SELECT id_tag FROM AuthentCache ORDER BY last_used ASC, rowid ASC LIMIT 1`)
	var idTag string
	if err := row.Scan(&idTag); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("storage: find oldest auth cache entry: %w", err)
	}

	if _, err := g.Exec(ctx, `DELETE FROM AuthentCache WHERE id_tag = ?`, idTag); err != nil {
		return "", fmt.Errorf("storage: evict oldest auth cache entry: %w", err)
	}
	return idTag, nil
}

// DeleteAuthCacheEntry removes a single cached entry, used when an online
// Authorize response invalidates a previously cached Accepted decision.
func (g *Gateway) DeleteAuthCacheEntry(ctx context.Context, idTag string) error {
	_, err := g.Exec(ctx, `DELETE FROM AuthentCache WHERE id_tag = ?`, idTag)
	if err != nil {
		return fmt.Errorf("storage: delete auth cache entry %s: %w", idTag, err)
	}
	return nil
}

// ClearAuthCache empties the cache, used by ClearCache.req.
func (g *Gateway) ClearAuthCache(ctx context.Context) error {
	_, err := g.Exec(ctx, `DELETE FROM AuthentCache`)
	if err != nil {
		return fmt.Errorf("storage: clear auth cache: %w", err)
	}
	return nil
}

// ListAuthCacheEntries loads the whole cache, used to repopulate the
// in-memory LRU on startup.
func (g *Gateway) ListAuthCacheEntries(ctx context.Context) ([]AuthCacheEntry, error) {
	rows, err := g.Query(ctx, `SELECT id_tag, status, parent_id_tag, expiry, last_used FROM AuthentCache`)
	if err != nil {
		return nil, fmt.Errorf("storage: list auth cache entries: %w", err)
	}
	defer rows.Close()

	var out []AuthCacheEntry
	for rows.Next() {
		var e AuthCacheEntry
		if err := rows.Scan(&e.IDTag, &e.Status, &e.ParentIDTag, &e.Expiry, &e.LastUsed); err != nil {
			return nil, fmt.Errorf("storage: scan auth cache entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetLocalListEntry looks up one id tag on the local list.
func (g *Gateway) GetLocalListEntry(ctx context.Context, idTag string) (AuthLocalListEntry, error) {
	var e AuthLocalListEntry
	row := g.QueryRow(ctx, `
		SELECT id_tag, status, parent_id_tag, expiry FROM AuthentLocalList WHERE id_tag = ?
	`, idTag)
	err := row.Scan(&e.IDTag, &e.Status, &e.ParentIDTag, &e.Expiry)
	return e, err
}

// ListLocalListEntries returns the whole local list.
func (g *Gateway) ListLocalListEntries(ctx context.Context) ([]AuthLocalListEntry, error) {
	rows, err := g.Query(ctx, `SELECT id_tag, status, parent_id_tag, expiry FROM AuthentLocalList`)
	if err != nil {
		return nil, fmt.Errorf("storage: list local list entries: %w", err)
	}
	defer rows.Close()

	var out []AuthLocalListEntry
	for rows.Next() {
		var e AuthLocalListEntry
		if err := rows.Scan(&e.IDTag, &e.Status, &e.ParentIDTag, &e.Expiry); err != nil {
			return nil, fmt.Errorf("storage: scan local list entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ReplaceLocalList atomically empties and repopulates the local list, used
// by a Full SendLocalList update.
func (g *Gateway) ReplaceLocalList(ctx context.Context, entries []AuthLocalListEntry, version int) error {
	return g.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM AuthentLocalList`); err != nil {
			return fmt.Errorf("storage: clear local list: %w", err)
		}
		for _, e := range entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO AuthentLocalList (id_tag, status, parent_id_tag, expiry) VALUES (?, ?, ?, ?)
			`, e.IDTag, e.Status, e.ParentIDTag, e.Expiry); err != nil {
				return fmt.Errorf("storage: insert local list entry %s: %w", e.IDTag, err)
			}
		}
		return setConfigTx(ctx, tx, keyLocalAuthListVersion, fmt.Sprintf("%d", version))
	})
}

// ApplyLocalListDifferential upserts or removes entries in place and bumps
// the stored version, used by a Differential SendLocalList update.
func (g *Gateway) ApplyLocalListDifferential(ctx context.Context, upserts []AuthLocalListEntry, removals []string, version int) error {
	return g.WithTx(ctx, func(tx *sql.Tx) error {
		for _, idTag := range removals {
			if _, err := tx.ExecContext(ctx, `DELETE FROM AuthentLocalList WHERE id_tag = ?`, idTag); err != nil {
				return fmt.Errorf("storage: remove local list entry %s: %w", idTag, err)
			}
		}
		for _, e := range upserts {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO AuthentLocalList (id_tag, status, parent_id_tag, expiry) VALUES (?, ?, ?, ?)
				ON CONFLICT(id_tag) DO UPDATE SET
					status = excluded.status, parent_id_tag = excluded.parent_id_tag, expiry = excluded.expiry
			`, e.IDTag, e.Status, e.ParentIDTag, e.Expiry); err != nil {
				return fmt.Errorf("storage: upsert local list entry %s: %w", e.IDTag, err)
			}
		}
		return setConfigTx(ctx, tx, keyLocalAuthListVersion, fmt.Sprintf("%d", version))
	})
}

// LocalListVersion returns the local list's current version, or 0 if it has
// never been set (per GetLocalListVersion.conf semantics).
func (g *Gateway) LocalListVersion(ctx context.Context) (int, error) {
	v, err := g.GetConfigInt(ctx, keyLocalAuthListVersion, 0)
	if err != nil {
		return 0, fmt.Errorf("storage: read local list version: %w", err)
	}
	return v, nil
}
