// Package chargepoint wires every protocol component — transport, auth,
// transactions, meter values, status, smart charging, security,
// maintenance — into a single client and exposes the surface an embedding
// application drives: start/stop the connection, push local events up to
// the central system, and read back the client's current state.
package chargepoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ocpp/chargepoint/internal/auth"
	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/connector"
	"github.com/go-ocpp/chargepoint/internal/domain/validation"
	"github.com/go-ocpp/chargepoint/internal/events"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/maintenance"
	"github.com/go-ocpp/chargepoint/internal/metervalues"
	"github.com/go-ocpp/chargepoint/internal/metrics"
	"github.com/go-ocpp/chargepoint/internal/ocpperr"
	"github.com/go-ocpp/chargepoint/internal/security"
	"github.com/go-ocpp/chargepoint/internal/smartcharging"
	"github.com/go-ocpp/chargepoint/internal/status"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/storage/presence"
	"github.com/go-ocpp/chargepoint/internal/timer"
	"github.com/go-ocpp/chargepoint/internal/transaction"
	"github.com/go-ocpp/chargepoint/internal/transport/dispatcher"
	"github.com/go-ocpp/chargepoint/internal/transport/rpc"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
	"github.com/go-ocpp/chargepoint/internal/trigger"
	"github.com/go-ocpp/chargepoint/internal/workerpool"
)

// Hardware is every device-facing callback an embedder must supply so this
// module never has to open a file or read a meter register itself.
type Hardware struct {
	Meters      metervalues.ValueSource
	Files       maintenance.Host
	Transaction transaction.Host
}

// ChargePoint is one running OCPP 1.6 client: a single WebSocket session
// to a central system plus the local state that survives a disconnect.
type ChargePoint struct {
	cfg *config.Config
	gw  *storage.Gateway

	timers *timer.Pool
	pool   *workerpool.Pool
	conns  *connector.Registry

	transport  *rpc.Transport
	dispatcher *dispatcher.Dispatcher
	sender     *sender.Sender

	authPipe  *auth.Pipeline
	txns      *transaction.Manager
	meters    *metervalues.Manager
	statusMgr *status.Manager
	profiles  *smartcharging.Store
	triggers  *trigger.Registry
	security  *security.Manager
	maint     *maintenance.Manager
	recorder  *events.Recorder
	presence  *presence.Mirror

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	runWg   sync.WaitGroup
}

// New assembles a ChargePoint from cfg, an opened storage gateway, and the
// hardware callbacks an embedder supplies. The returned client is not yet
// connected; call Start to dial the central system.
func New(cfg *config.Config, gw *storage.Gateway, hw Hardware, sink events.Sink) (*ChargePoint, error) {
	ctx := context.Background()

	conns, err := connector.Open(ctx, gw, cfg.OCPP.NumberOfConnectors)
	if err != nil {
		return nil, fmt.Errorf("chargepoint: open connector registry: %w", err)
	}

	timers := timer.New()
	pool := workerpool.New(4)
	validator := validation.NewValidator()

	cp := &ChargePoint{
		cfg:    cfg,
		gw:     gw,
		timers: timers,
		pool:   pool,
		conns:  conns,
	}

	cp.dispatcher = dispatcher.New()

	opts := rpc.Options{
		URL:                   cfg.CentralSystem.Url,
		ChargePointIdentifier: cfg.CentralSystem.ChargePointIdentifier,
		SecurityProfile:       cfg.CentralSystem.SecurityProfile,
		AuthorizationKey:      cfg.CentralSystem.AuthorizationKey,
		ConnectionTimeout:     cfg.CentralSystem.ConnectionTimeout,
		CallTimeout:           cfg.CentralSystem.CallTimeout,
		ReconnectBackoffMin:   cfg.CentralSystem.ReconnectBackoffMin,
		ReconnectBackoffMax:   cfg.CentralSystem.ReconnectBackoffMax,
	}
	opts.URL = cfg.WebSocketURL()

	cp.transport = rpc.New(opts, cp.dispatcher, cp)
	cp.sender = sender.New(cp.transport, validator)

	authPipe, err := auth.New(gw, cp.sender, auth.Config{
		CacheEnabled:          cfg.OCPP.AuthorizationCacheEnabled,
		CacheMaxSize:          cfg.OCPP.AuthorizationCacheMaxSize,
		LocalListEnabled:      cfg.OCPP.LocalAuthListEnabled,
		LocalListMaxLength:    cfg.OCPP.LocalAuthListMaxLength,
		LocalPreAuthorize:     cfg.OCPP.LocalPreAuthorize,
		LocalAuthorizeOffline: cfg.OCPP.LocalAuthorizeOffline,
	})
	if err != nil {
		return nil, fmt.Errorf("chargepoint: build auth pipeline: %w", err)
	}
	cp.authPipe = authPipe

	cp.profiles = smartcharging.New(gw, cfg.OCPP)
	cp.meters = metervalues.New(cp.sender, conns, gw, timers, hw.Meters, cfg.OCPP)
	cp.statusMgr = status.New(cp.sender, conns, gw, timers, cfg.Identity, cfg.OCPP.MinStatusDuration)
	cp.security = security.New(gw, cp.sender, cfg.OCPP)
	cp.maint = maintenance.New(cp.sender, gw, pool, hw.Files)
	cp.txns = transaction.New(gw, conns, authAdapter{authPipe}, cp.sender, cp.meters, cp.profiles, hw.Transaction)
	cp.triggers = cp.buildTriggerRegistry(conns)
	cp.recorder = events.NewRecorder(sink, "chargepoint")

	if cfg.Redis.Enabled {
		mirror, err := presence.New(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("chargepoint: build presence mirror: %w", err)
		}
		cp.presence = mirror
	}

	cp.registerHandlers()
	return cp, nil
}

// authAdapter adapts auth.Pipeline's Result to transaction.AuthResult so
// the two packages don't need to share a type: transaction only depends on
// an Authorizer-shaped interface, not on the auth package itself.
type authAdapter struct {
	p *auth.Pipeline
}

func (a authAdapter) Authorize(ctx context.Context, idTag string, connected bool) (transaction.AuthResult, error) {
	res, err := a.p.Authorize(ctx, idTag, connected)
	if err != nil {
		return transaction.AuthResult{}, err
	}
	return transaction.AuthResult{Status: res.Status, ParentIDTag: res.ParentIDTag}, nil
}

// Start dials the central system and keeps the connection alive until ctx
// is cancelled or Stop is called. It returns once the reconnect loop has
// been launched, not once a connection succeeds.
func (cp *ChargePoint) Start(ctx context.Context) error {
	cp.mu.Lock()
	if cp.started {
		cp.mu.Unlock()
		return ocpperr.NewInvariant("chargepoint.Start", "already started", nil)
	}
	cp.started = true
	runCtx, cancel := context.WithCancel(ctx)
	cp.cancel = cancel
	cp.mu.Unlock()

	cp.timers.Start()

	cp.runWg.Add(1)
	go func() {
		defer cp.runWg.Done()
		if err := cp.transport.Run(runCtx); err != nil {
			logger.ErrorWithErr(err, "chargepoint: transport loop exited")
		}
	}()
	return nil
}

// Stop halts the reconnect loop, closes any live connection, and stops the
// timer pool and worker pool. It blocks until everything has wound down.
func (cp *ChargePoint) Stop() {
	cp.mu.Lock()
	if !cp.started {
		cp.mu.Unlock()
		return
	}
	cp.started = false
	cancel := cp.cancel
	cp.mu.Unlock()

	cp.transport.Stop()
	if cancel != nil {
		cancel()
	}
	cp.runWg.Wait()
	cp.timers.Stop()
	cp.pool.Stop()
	if cp.presence != nil {
		if err := cp.presence.Close(); err != nil {
			logger.ErrorWithErr(err, "chargepoint: close presence mirror")
		}
	}
	if err := cp.recorder.Close(); err != nil {
		logger.ErrorWithErr(err, "chargepoint: close event recorder")
	}
}

// isStarted reports whether the client is currently running, used to guard
// operations that would otherwise race a live connection.
func (cp *ChargePoint) isStarted() bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.started
}

// OnConnected implements rpc.Listener. It never blocks the caller: the
// boot handshake runs on its own goroutine because it needs the transport's
// read loop running to receive its own BootNotification.conf.
func (cp *ChargePoint) OnConnected() {
	metrics.ConnectionState.Set(2)
	cp.statusMgr.OnConnected()
	cp.recorder.Emit(context.Background(), events.NewChargePointConnected(
		cp.cfg.CentralSystem.ChargePointIdentifier, cp.cfg.Identity.ChargePointVendor, cp.cfg.Identity.ChargePointModel,
		cp.recorder.Metadata()))

	if cp.presence != nil {
		if err := cp.presence.SetConnected(context.Background(), cp.cfg.CentralSystem.ChargePointIdentifier); err != nil {
			logger.ErrorWithErr(err, "chargepoint: update presence mirror")
		}
	}

	go func() {
		if err := cp.statusMgr.Boot(context.Background()); err != nil {
			logger.ErrorWithErr(err, "chargepoint: boot handshake")
		}
	}()
}

// OnDisconnected implements rpc.Listener.
func (cp *ChargePoint) OnDisconnected(err error) {
	metrics.ConnectionState.Set(0)
	cp.statusMgr.OnDisconnected(err)
	reason := "connection lost"
	if err != nil {
		reason = err.Error()
	}
	cp.recorder.Emit(context.Background(), events.NewChargePointDisconnected(
		cp.cfg.CentralSystem.ChargePointIdentifier, reason, cp.recorder.Metadata()))

	if cp.presence != nil {
		if perr := cp.presence.SetDisconnected(context.Background(), cp.cfg.CentralSystem.ChargePointIdentifier); perr != nil {
			logger.ErrorWithErr(perr, "chargepoint: update presence mirror")
		}
	}
}
