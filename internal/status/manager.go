// Package status drives the boot handshake, heartbeat scheduling, and
// connector status reporting: the charge point's view of its own
// registration and operational state towards the central system.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/connector"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/timer"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

// Sender is the subset of sender.Sender the manager depends on.
type Sender interface {
	Send(ctx context.Context, action string, payload interface{}) sender.Result
}

const (
	heartbeatTimerName = "heartbeat"
	bootRetryTimerName = "boot-retry"
	defaultInterval    = 60 * time.Second
)

// debounced tracks a connector transition awaiting the minStatusDuration
// window, so only the final state in a quick Preparing/Finishing flap is
// reported to the central system.
type debounced struct {
	status    ocpp16.ChargePointStatus
	errorCode ocpp16.ChargePointErrorCode
	info      string
}

// Manager owns the boot handshake, heartbeat interval, and connector status
// reporting policy (debounced reporting, offline buffering, offline latch).
type Manager struct {
	snd        Sender
	connectors *connector.Registry
	gw         *storage.Gateway
	timers     *timer.Pool
	identity   config.IdentityConfig
	minStatus  time.Duration

	mu                 sync.Mutex
	registrationStatus ocpp16.RegistrationStatus
	connected          bool
	pendingReport      map[int]bool // connectors whose latest status hasn't reached the CS yet
	debouncing         map[int]*debounced
}

// New builds a Manager. minStatusDuration of 0 disables debounced reporting.
func New(snd Sender, connectors *connector.Registry, gw *storage.Gateway, timers *timer.Pool, identity config.IdentityConfig, minStatusDuration time.Duration) *Manager {
	return &Manager{
		snd:           snd,
		connectors:    connectors,
		gw:            gw,
		timers:        timers,
		identity:      identity,
		minStatus:     minStatusDuration,
		pendingReport: make(map[int]bool),
		debouncing:    make(map[int]*debounced),
	}
}

// RegistrationStatus reports the last known registration verdict.
func (m *Manager) RegistrationStatus() ocpp16.RegistrationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registrationStatus
}

// OfflineLatchOpen reports whether host-initiated operations may proceed
// without a fresh Accepted handshake: true once the charge point has ever
// been accepted, even if currently disconnected.
func (m *Manager) OfflineLatchOpen(ctx context.Context) bool {
	v, ok, err := m.gw.GetConfig(ctx, storage.KeyLastRegistrationStatus)
	if err != nil {
		logger.ErrorWithErr(err, "status: read last registration status")
		return false
	}
	return ok && v == string(ocpp16.RegistrationStatusAccepted)
}

// Boot performs the BootNotification handshake and reacts to its verdict.
func (m *Manager) Boot(ctx context.Context) error {
	req := ocpp16.BootNotificationRequest{
		ChargePointVendor: m.identity.ChargePointVendor,
		ChargePointModel:  m.identity.ChargePointModel,
	}
	if m.identity.ChargePointSerialNumber != "" {
		req.ChargePointSerialNumber = &m.identity.ChargePointSerialNumber
	}
	if m.identity.ChargeBoxSerialNumber != "" {
		req.ChargeBoxSerialNumber = &m.identity.ChargeBoxSerialNumber
	}
	if m.identity.FirmwareVersion != "" {
		req.FirmwareVersion = &m.identity.FirmwareVersion
	}
	if m.identity.Iccid != "" {
		req.Iccid = &m.identity.Iccid
	}
	if m.identity.Imsi != "" {
		req.Imsi = &m.identity.Imsi
	}
	if m.identity.MeterType != "" {
		req.MeterType = &m.identity.MeterType
	}
	if m.identity.MeterSerialNumber != "" {
		req.MeterSerialNumber = &m.identity.MeterSerialNumber
	}

	res := m.snd.Send(ctx, string(ocpp16.ActionBootNotification), req)
	if res.Outcome != sender.Ok {
		return m.handleBootFailure(ctx)
	}

	var conf ocpp16.BootNotificationResponse
	if err := json.Unmarshal(res.Response, &conf); err != nil {
		return fmt.Errorf("status: decode BootNotification.conf: %w", err)
	}

	interval := time.Duration(conf.Interval) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}

	if err := m.gw.SetConfig(ctx, storage.KeyLastRegistrationStatus, string(conf.Status)); err != nil {
		logger.ErrorWithErr(err, "status: persist registration status")
	}

	m.mu.Lock()
	m.registrationStatus = conf.Status
	m.mu.Unlock()

	switch conf.Status {
	case ocpp16.RegistrationStatusAccepted:
		m.timers.Cancel(bootRetryTimerName)
		m.timers.Every(heartbeatTimerName, interval, func() { m.sendHeartbeat(context.Background()) })
		m.flushPendingStatus(ctx)
	case ocpp16.RegistrationStatusPending, ocpp16.RegistrationStatusRejected:
		m.timers.After(bootRetryTimerName, interval, func() { _ = m.Boot(context.Background()) })
	}
	return nil
}

func (m *Manager) handleBootFailure(ctx context.Context) error {
	m.timers.After(bootRetryTimerName, defaultInterval, func() { _ = m.Boot(context.Background()) })
	return nil
}

// sendHeartbeat is invoked by the timer pool's own goroutine.
func (m *Manager) sendHeartbeat(ctx context.Context) {
	res := m.snd.Send(ctx, string(ocpp16.ActionHeartbeat), ocpp16.HeartbeatRequest{})
	if res.Outcome != sender.Ok {
		return
	}
	var conf ocpp16.HeartbeatResponse
	if err := json.Unmarshal(res.Response, &conf); err != nil {
		logger.ErrorWithErr(err, "status: decode Heartbeat.conf")
	}
}

// SendHeartbeatNow sends an out-of-cycle Heartbeat, used to serve a
// TriggerMessage request without disturbing the scheduled interval.
func (m *Manager) SendHeartbeatNow(ctx context.Context) error {
	m.sendHeartbeat(ctx)
	return nil
}

// ResendBootNotification re-runs the boot handshake, used to serve a
// TriggerMessage(BootNotification) request.
func (m *Manager) ResendBootNotification(ctx context.Context) error {
	return m.Boot(ctx)
}

// ResendStatusNotification re-sends connectorID's last known status,
// used to serve a TriggerMessage(StatusNotification) request.
func (m *Manager) ResendStatusNotification(ctx context.Context, connectorID int) error {
	rec, ok := m.connectors.Get(connectorID)
	if !ok {
		return fmt.Errorf("status: no such connector %d", connectorID)
	}
	m.sendStatusNotification(ctx, connectorID, ocpp16.ChargePointStatus(rec.Status), ocpp16.ChargePointErrorCode(rec.ErrorCode), rec.Info)
	return nil
}

// ResetHeartbeat restarts the heartbeat countdown with interval, if a
// heartbeat is scheduled. Nothing in the module calls it: no transport spy
// is installed, so outbound frames do not restart the countdown.
func (m *Manager) ResetHeartbeat(interval time.Duration) {
	if interval <= 0 || !m.timers.Active(heartbeatTimerName) {
		return
	}
	m.timers.Every(heartbeatTimerName, interval, func() { m.sendHeartbeat(context.Background()) })
}

// OnConnected implements rpc.Listener.
func (m *Manager) OnConnected() {
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
}

// OnDisconnected implements rpc.Listener.
func (m *Manager) OnDisconnected(err error) {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	m.timers.Cancel(heartbeatTimerName)
}

// NotifyStatus reports connectorID's transition to status, applying the
// debounced-reporting policy for Preparing/Finishing and buffering the
// latest state per connector while disconnected.
func (m *Manager) NotifyStatus(ctx context.Context, connectorID int, status ocpp16.ChargePointStatus, errorCode ocpp16.ChargePointErrorCode, info string) {
	rec, ok := m.connectors.Get(connectorID)
	if ok && rec.LastNotifiedStatus == string(status) {
		return
	}

	m.mu.Lock()
	if _, pending := m.debouncing[connectorID]; pending {
		// A debounce window is already running for this connector: this
		// transition supersedes whatever was pending and will be the one
		// reported when the window elapses.
		m.debouncing[connectorID] = &debounced{status: status, errorCode: errorCode, info: info}
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if m.minStatus > 0 && isTransient(string(status)) {
		m.debounce(ctx, connectorID, status, errorCode, info)
		return
	}

	m.report(ctx, connectorID, status, errorCode, info)
}

func isTransient(status string) bool {
	return status == string(ocpp16.ChargePointStatusPreparing) || status == string(ocpp16.ChargePointStatusFinishing)
}

func (m *Manager) debounce(ctx context.Context, connectorID int, status ocpp16.ChargePointStatus, errorCode ocpp16.ChargePointErrorCode, info string) {
	m.mu.Lock()
	m.debouncing[connectorID] = &debounced{status: status, errorCode: errorCode, info: info}
	m.mu.Unlock()

	timerName := fmt.Sprintf("status-debounce-%d", connectorID)
	m.timers.After(timerName, m.minStatus, func() {
		m.mu.Lock()
		pending, ok := m.debouncing[connectorID]
		delete(m.debouncing, connectorID)
		m.mu.Unlock()
		if !ok {
			return
		}
		m.report(context.Background(), connectorID, pending.status, pending.errorCode, pending.info)
	})
}

func (m *Manager) report(ctx context.Context, connectorID int, status ocpp16.ChargePointStatus, errorCode ocpp16.ChargePointErrorCode, info string) {
	_, err := m.connectors.Mutate(ctx, connectorID, func(c *storage.ConnectorRecord) {
		c.Status = string(status)
		c.LastNotifiedStatus = string(status)
		c.ErrorCode = string(errorCode)
		c.Info = info
	})
	if err != nil {
		logger.ErrorWithErr(err, "status: persist connector status")
		return
	}

	m.mu.Lock()
	connected := m.connected
	m.mu.Unlock()

	if !connected {
		m.mu.Lock()
		m.pendingReport[connectorID] = true
		m.mu.Unlock()
		return
	}

	m.sendStatusNotification(ctx, connectorID, status, errorCode, info)
}

func (m *Manager) sendStatusNotification(ctx context.Context, connectorID int, status ocpp16.ChargePointStatus, errorCode ocpp16.ChargePointErrorCode, info string) {
	req := ocpp16.StatusNotificationRequest{ConnectorId: connectorID, ErrorCode: errorCode, Status: status}
	if info != "" {
		req.Info = &info
	}
	res := m.snd.Send(ctx, string(ocpp16.ActionStatusNotification), req)
	if res.Outcome == sender.Ok {
		m.mu.Lock()
		delete(m.pendingReport, connectorID)
		m.mu.Unlock()
	}
}

// flushPendingStatus re-sends the latest reported status for every
// connector that changed while disconnected, called on an Accepted
// handshake (boot or reconnect).
func (m *Manager) flushPendingStatus(ctx context.Context) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.pendingReport))
	for id := range m.pendingReport {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		rec, ok := m.connectors.Get(id)
		if !ok {
			continue
		}
		m.sendStatusNotification(ctx, id, ocpp16.ChargePointStatus(rec.Status), ocpp16.ChargePointErrorCode(rec.ErrorCode), rec.Info)
	}
}
