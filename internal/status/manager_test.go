package status

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/connector"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/timer"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
)

func newTestGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	gw, err := storage.Open(config.StorageConfig{
		DatabasePath: filepath.Join(t.TempDir(), "chargepoint.db"),
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	outcome sender.Outcome
	body    json.RawMessage
}

func (f *fakeSender) Send(ctx context.Context, action string, payload interface{}) sender.Result {
	f.mu.Lock()
	f.sent = append(f.sent, action)
	f.mu.Unlock()
	if f.outcome != sender.Ok {
		return sender.Result{Outcome: f.outcome}
	}
	return sender.Result{Outcome: sender.Ok, Response: f.body}
}

func (f *fakeSender) sentActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

func bootAcceptedBody(t *testing.T, intervalSeconds int) json.RawMessage {
	t.Helper()
	body, err := json.Marshal(ocpp16.BootNotificationResponse{
		Status:      ocpp16.RegistrationStatusAccepted,
		CurrentTime: ocpp16.DateTime{Time: time.Now()},
		Interval:    intervalSeconds,
	})
	require.NoError(t, err)
	return body
}

func newManager(t *testing.T, snd *fakeSender, minStatus time.Duration) (*Manager, *connector.Registry) {
	t.Helper()
	gw := newTestGateway(t)
	reg, err := connector.Open(context.Background(), gw, 1)
	require.NoError(t, err)
	timers := timer.New()
	timers.Start()
	t.Cleanup(timers.Stop)

	m := New(snd, reg, gw, timers, config.IdentityConfig{ChargePointVendor: "Acme", ChargePointModel: "X1"}, minStatus)
	return m, reg
}

func TestBoot_AcceptedSchedulesHeartbeatAndPersistsStatus(t *testing.T) {
	snd := &fakeSender{outcome: sender.Ok, body: bootAcceptedBody(t, 60)}
	m, _ := newManager(t, snd, 0)

	require.NoError(t, m.Boot(context.Background()))
	assert.Equal(t, ocpp16.RegistrationStatusAccepted, m.RegistrationStatus())
	assert.Contains(t, snd.sentActions(), "BootNotification")
}

func TestBoot_PendingSchedulesRetry(t *testing.T) {
	body, err := json.Marshal(ocpp16.BootNotificationResponse{
		Status: ocpp16.RegistrationStatusPending, CurrentTime: ocpp16.DateTime{Time: time.Now()}, Interval: 0,
	})
	require.NoError(t, err)
	snd := &fakeSender{outcome: sender.Ok, body: body}
	m, _ := newManager(t, snd, 0)

	require.NoError(t, m.Boot(context.Background()))
	assert.Equal(t, ocpp16.RegistrationStatusPending, m.RegistrationStatus())
}

func TestNotifyStatus_ReportsImmediatelyWhenConnectedAndNotTransient(t *testing.T) {
	snd := &fakeSender{outcome: sender.Ok, body: json.RawMessage(`{}`)}
	m, reg := newManager(t, snd, 0)
	m.OnConnected()

	m.NotifyStatus(context.Background(), 1, ocpp16.ChargePointStatusCharging, ocpp16.ChargePointErrorCodeNoError, "")

	assert.Contains(t, snd.sentActions(), "StatusNotification")
	rec, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, string(ocpp16.ChargePointStatusCharging), rec.LastNotifiedStatus)
}

func TestNotifyStatus_BuffersWhileDisconnected(t *testing.T) {
	snd := &fakeSender{outcome: sender.Ok, body: json.RawMessage(`{}`)}
	m, reg := newManager(t, snd, 0)

	m.NotifyStatus(context.Background(), 1, ocpp16.ChargePointStatusCharging, ocpp16.ChargePointErrorCodeNoError, "")

	assert.NotContains(t, snd.sentActions(), "StatusNotification")
	rec, ok := reg.Get(1)
	require.True(t, ok)
	assert.Equal(t, string(ocpp16.ChargePointStatusCharging), rec.LastNotifiedStatus, "the in-memory record is still updated even though the CS wasn't told")
}

func TestNotifyStatus_DebouncesTransientTransitions(t *testing.T) {
	snd := &fakeSender{outcome: sender.Ok, body: json.RawMessage(`{}`)}
	m, _ := newManager(t, snd, 30*time.Millisecond)
	m.OnConnected()

	m.NotifyStatus(context.Background(), 1, ocpp16.ChargePointStatusPreparing, ocpp16.ChargePointErrorCodeNoError, "")
	m.NotifyStatus(context.Background(), 1, ocpp16.ChargePointStatusCharging, ocpp16.ChargePointErrorCodeNoError, "")

	assert.Empty(t, snd.sentActions(), "neither transition should report before the debounce window elapses")

	time.Sleep(80 * time.Millisecond)
	assert.Contains(t, snd.sentActions(), "StatusNotification")
}

func TestOfflineLatchOpen_TrueOnlyAfterAcceptedPersisted(t *testing.T) {
	snd := &fakeSender{outcome: sender.Ok, body: bootAcceptedBody(t, 60)}
	m, _ := newManager(t, snd, 0)

	assert.False(t, m.OfflineLatchOpen(context.Background()))
	require.NoError(t, m.Boot(context.Background()))
	assert.True(t, m.OfflineLatchOpen(context.Background()))
}
