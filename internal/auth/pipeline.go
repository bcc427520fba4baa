// Package auth resolves Authorize.req decisions against the local
// authorization list, the authorization cache, and the central system,
// following the precedence the charge point must apply whether or not it is
// currently connected.
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-ocpp/chargepoint/internal/cache"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

// Sender is the subset of sender.Sender the pipeline depends on.
type Sender interface {
	Send(ctx context.Context, action string, payload interface{}) sender.Result
}

// Config carries the OCPP configuration keys the pipeline consults.
type Config struct {
	CacheEnabled          bool
	CacheMaxSize          int
	LocalListEnabled      bool
	LocalListMaxLength    int
	LocalPreAuthorize     bool
	LocalAuthorizeOffline bool
}

// Result is the resolved authorization decision.
type Result struct {
	Status      ocpp16.AuthorizationStatus
	ParentIDTag string
}

// Pipeline resolves Authorize decisions per the configured precedence.
type Pipeline struct {
	gw  *storage.Gateway
	snd Sender
	cfg Config
	mem *cache.LRUCache
}

// New builds a Pipeline and warms its in-memory cache from storage. The
// in-memory cache is configured never to self-evict: internal/storage's
// AuthentCache table is the sole authority over capacity and eviction order,
// so the memory mirror is only ever shrunk by an explicit Delete alongside a
// storage delete.
func New(gw *storage.Gateway, snd Sender, cfg Config) (*Pipeline, error) {
	mem := cache.NewLRUCache(&cache.CacheConfig{
		ShardCount: 1,
		MaxSize:    1 << 40,
	})

	p := &Pipeline{gw: gw, snd: snd, cfg: cfg, mem: mem}

	entries, err := gw.ListAuthCacheEntries(context.Background())
	if err != nil {
		return nil, fmt.Errorf("auth: warm cache: %w", err)
	}
	for _, e := range entries {
		p.mem.Set(e.IDTag, e, 0)
	}
	return p, nil
}

// Authorize resolves idTag's status following the configured precedence:
// the local list is authoritative when it holds the tag; otherwise the
// cache is consulted or bypassed depending on connectivity and the
// local-pre-authorize / local-authorize-offline flags.
func (p *Pipeline) Authorize(ctx context.Context, idTag string, connected bool) (Result, error) {
	if p.cfg.LocalListEnabled {
		if entry, err := p.gw.GetLocalListEntry(ctx, idTag); err == nil {
			return Result{Status: ocpp16.AuthorizationStatus(entry.Status), ParentIDTag: entry.ParentIDTag}, nil
		}
	}

	if connected && !p.cfg.LocalPreAuthorize {
		return p.authorizeOnline(ctx, idTag)
	}

	if connected && p.cfg.LocalPreAuthorize {
		if cached, ok := p.cacheGet(idTag); ok {
			return cached, nil
		}
		return p.authorizeOnline(ctx, idTag)
	}

	// Disconnected.
	if p.cfg.LocalAuthorizeOffline {
		if cached, ok := p.cacheGet(idTag); ok {
			return cached, nil
		}
	}
	return Result{Status: ocpp16.AuthorizationStatusInvalid}, nil
}

// authorizeOnline performs the Authorize.req/.conf round trip, caching an
// Accepted response and invalidating any stale cached entry on anything else.
func (p *Pipeline) authorizeOnline(ctx context.Context, idTag string) (Result, error) {
	res := p.snd.Send(ctx, "Authorize", ocpp16.AuthorizeRequest{IdTag: idTag})
	if res.Outcome != sender.Ok {
		return Result{Status: ocpp16.AuthorizationStatusInvalid}, nil
	}

	var conf ocpp16.AuthorizeResponse
	if err := json.Unmarshal(res.Response, &conf); err != nil {
		return Result{}, fmt.Errorf("auth: decode Authorize.conf: %w", err)
	}

	result := Result{Status: conf.IdTagInfo.Status}
	if conf.IdTagInfo.ParentIdTag != nil {
		result.ParentIDTag = *conf.IdTagInfo.ParentIdTag
	}

	if conf.IdTagInfo.Status == ocpp16.AuthorizationStatusAccepted {
		if err := p.cachePut(ctx, idTag, conf.IdTagInfo); err != nil {
			logger.ErrorWithErr(err, "auth: cache put")
		}
	} else {
		if err := p.cacheInvalidate(ctx, idTag); err != nil {
			logger.ErrorWithErr(err, "auth: cache invalidate")
		}
	}
	return result, nil
}

func (p *Pipeline) cacheGet(idTag string) (Result, bool) {
	if !p.cfg.CacheEnabled {
		return Result{}, false
	}
	v, ok := p.mem.Get(idTag)
	if !ok {
		return Result{}, false
	}
	e := v.(storage.AuthCacheEntry)
	return Result{Status: ocpp16.AuthorizationStatus(e.Status), ParentIDTag: e.ParentIDTag}, true
}

func (p *Pipeline) cachePut(ctx context.Context, idTag string, info ocpp16.IdTagInfo) error {
	if !p.cfg.CacheEnabled {
		return nil
	}

	count, err := p.gw.CountAuthCacheEntries(ctx)
	if err != nil {
		return err
	}
	if count >= p.cfg.CacheMaxSize {
		evicted, err := p.gw.EvictOldestAuthCacheEntry(ctx)
		if err != nil {
			return err
		}
		if evicted != "" {
			p.mem.Delete(evicted)
		}
	}

	entry := storage.AuthCacheEntry{IDTag: idTag, Status: string(info.Status)}
	if info.ParentIdTag != nil {
		entry.ParentIDTag = *info.ParentIdTag
	}
	if err := p.gw.PutAuthCacheEntry(ctx, entry); err != nil {
		return err
	}
	p.mem.Set(idTag, entry, 0)
	return nil
}

func (p *Pipeline) cacheInvalidate(ctx context.Context, idTag string) error {
	if err := p.gw.DeleteAuthCacheEntry(ctx, idTag); err != nil {
		return err
	}
	p.mem.Delete(idTag)
	return nil
}

// ClearCache empties the authorization cache. It is rejected when the cache
// is globally disabled.
func (p *Pipeline) ClearCache(ctx context.Context) (bool, error) {
	if !p.cfg.CacheEnabled {
		return false, nil
	}
	if err := p.gw.ClearAuthCache(ctx); err != nil {
		return false, err
	}
	if err := p.mem.Clear(); err != nil {
		return false, err
	}
	return true, nil
}

// LocalListEntry is one entry of a SendLocalList update. A nil IdTagInfo
// means "delete this id tag" in a Differential update, or an invalid entry
// in a Full update (every Full entry must carry an IdTagInfo).
type LocalListEntry struct {
	IDTag     string
	IdTagInfo *ocpp16.IdTagInfo
}

// ApplyLocalList applies a SendLocalList update and reports the resulting
// UpdateStatus. The persisted list is left untouched on any failure path.
func (p *Pipeline) ApplyLocalList(ctx context.Context, updateType ocpp16.UpdateType, version int, entries []LocalListEntry) (ocpp16.UpdateStatus, error) {
	if !p.cfg.LocalListEnabled {
		return ocpp16.UpdateStatusNotSupported, nil
	}

	current, err := p.gw.LocalListVersion(ctx)
	if err != nil {
		return "", err
	}
	if version <= current {
		return ocpp16.UpdateStatusVersionMismatch, nil
	}

	switch updateType {
	case ocpp16.UpdateTypeFull:
		return p.applyFull(ctx, version, entries)
	case ocpp16.UpdateTypeDifferential:
		return p.applyDifferential(ctx, version, entries)
	default:
		return ocpp16.UpdateStatusFailed, nil
	}
}

func (p *Pipeline) applyFull(ctx context.Context, version int, entries []LocalListEntry) (ocpp16.UpdateStatus, error) {
	if len(entries) > p.cfg.LocalListMaxLength {
		return ocpp16.UpdateStatusFailed, nil
	}

	records := make([]storage.AuthLocalListEntry, 0, len(entries))
	for _, e := range entries {
		if e.IdTagInfo == nil {
			return ocpp16.UpdateStatusFailed, nil
		}
		records = append(records, toRecord(e))
	}

	if err := p.gw.ReplaceLocalList(ctx, records, version); err != nil {
		return "", err
	}
	return ocpp16.UpdateStatusAccepted, nil
}

func (p *Pipeline) applyDifferential(ctx context.Context, version int, entries []LocalListEntry) (ocpp16.UpdateStatus, error) {
	existing, err := p.gw.ListLocalListEntries(ctx)
	if err != nil {
		return "", err
	}
	present := make(map[string]bool, len(existing))
	for _, e := range existing {
		present[e.IDTag] = true
	}

	var upserts []storage.AuthLocalListEntry
	var removals []string
	projected := len(present)
	for _, e := range entries {
		if e.IdTagInfo == nil {
			removals = append(removals, e.IDTag)
			if present[e.IDTag] {
				projected--
			}
			continue
		}
		upserts = append(upserts, toRecord(e))
		if !present[e.IDTag] {
			projected++
		}
	}

	if projected > p.cfg.LocalListMaxLength {
		return ocpp16.UpdateStatusFailed, nil
	}

	if err := p.gw.ApplyLocalListDifferential(ctx, upserts, removals, version); err != nil {
		return "", err
	}
	return ocpp16.UpdateStatusAccepted, nil
}

func toRecord(e LocalListEntry) storage.AuthLocalListEntry {
	rec := storage.AuthLocalListEntry{IDTag: e.IDTag, Status: string(e.IdTagInfo.Status)}
	if e.IdTagInfo.ParentIdTag != nil {
		rec.ParentIDTag = *e.IdTagInfo.ParentIdTag
	}
	return rec
}
