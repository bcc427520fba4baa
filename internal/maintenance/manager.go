// Package maintenance drives the diagnostics upload, firmware update, and
// log upload status state machines. The actual file collection/transfer
// is delegated to a host callback; this package owns only the
// request/response bookkeeping and the status notification sequence.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/storage"
	"github.com/go-ocpp/chargepoint/internal/transport/sender"
	"github.com/go-ocpp/chargepoint/internal/workerpool"
)

// Sender is the subset of sender.Sender the manager depends on.
type Sender interface {
	Send(ctx context.Context, action string, payload interface{}) sender.Result
}

// Host performs the actual file I/O the manager only sequences. All
// methods run on a worker pool goroutine and may block.
type Host interface {
	CollectDiagnostics(ctx context.Context, start, stop *time.Time) (localPath string, err error)
	UploadFile(ctx context.Context, remoteLocation, localPath string) error
	DownloadFirmware(ctx context.Context, location string) (localPath string, err error)
	InstallFirmware(ctx context.Context, localPath string) error
	CollectLog(ctx context.Context, logType ocpp16.LogType, oldest, latest *time.Time) (localPath string, err error)
}

// Manager sequences GetDiagnostics, UpdateFirmware, and GetLog jobs.
type Manager struct {
	snd  Sender
	gw   *storage.Gateway
	pool *workerpool.Pool
	host Host
}

// New builds a Manager.
func New(snd Sender, gw *storage.Gateway, pool *workerpool.Pool, host Host) *Manager {
	return &Manager{snd: snd, gw: gw, pool: pool, host: host}
}

// GetDiagnostics starts an asynchronous diagnostics collection and upload
// job. The file name is not known synchronously — GetDiagnostics.conf
// omits it, and the upload's outcome is reported via
// DiagnosticsStatusNotification as it progresses.
func (m *Manager) GetDiagnostics(ctx context.Context, remoteLocation string, start, stop *time.Time) {
	m.pool.Submit(func() {
		bg := context.Background()
		path, err := m.host.CollectDiagnostics(bg, start, stop)
		if err != nil {
			logger.ErrorWithErr(err, "maintenance: collect diagnostics")
			m.notifyDiagnostics(bg, ocpp16.DiagnosticsStatusUploadFailed)
			return
		}
		m.notifyDiagnostics(bg, ocpp16.DiagnosticsStatusUploading)
		if err := m.host.UploadFile(bg, remoteLocation, path); err != nil {
			logger.ErrorWithErr(err, "maintenance: upload diagnostics")
			m.notifyDiagnostics(bg, ocpp16.DiagnosticsStatusUploadFailed)
			return
		}
		m.notifyDiagnostics(bg, ocpp16.DiagnosticsStatusUploaded)
	})
}

func (m *Manager) notifyDiagnostics(ctx context.Context, status ocpp16.DiagnosticsStatus) {
	m.snd.Send(ctx, string(ocpp16.ActionDiagnosticsStatusNotification), ocpp16.DiagnosticsStatusNotificationRequest{Status: status})
}

// UpdateFirmware starts an asynchronous download-then-install job.
func (m *Manager) UpdateFirmware(ctx context.Context, location string, retrieveDate time.Time) {
	m.pool.Submit(func() {
		bg := context.Background()
		wait := time.Until(retrieveDate)
		if wait > 0 {
			time.Sleep(wait)
		}

		m.notifyFirmware(bg, ocpp16.FirmwareStatusDownloading)
		path, err := m.host.DownloadFirmware(bg, location)
		if err != nil {
			logger.ErrorWithErr(err, "maintenance: download firmware")
			m.notifyFirmware(bg, ocpp16.FirmwareStatusDownloadFailed)
			return
		}
		m.notifyFirmware(bg, ocpp16.FirmwareStatusDownloaded)

		m.notifyFirmware(bg, ocpp16.FirmwareStatusInstalling)
		if err := m.host.InstallFirmware(bg, path); err != nil {
			logger.ErrorWithErr(err, "maintenance: install firmware")
			m.notifyFirmware(bg, ocpp16.FirmwareStatusInstallationFailed)
			return
		}
		m.notifyFirmware(bg, ocpp16.FirmwareStatusInstalled)
	})
}

func (m *Manager) notifyFirmware(ctx context.Context, status ocpp16.FirmwareStatus) {
	m.snd.Send(ctx, string(ocpp16.ActionFirmwareStatusNotification), ocpp16.FirmwareStatusNotificationRequest{Status: status})
}

// GetLog records a log upload job and starts it asynchronously, returning
// the status to report in the GetLog.conf. The status is always Accepted;
// a job already running for the same type is not detected.
func (m *Manager) GetLog(ctx context.Context, logType ocpp16.LogType, requestID int, remoteLocation string, oldest, latest *time.Time) (ocpp16.LogStatusRequestStatus, error) {
	if _, err := m.gw.InsertLogRequest(ctx, storage.LogRequestRecord{
		RequestID:      requestID,
		LogType:        string(logType),
		Status:         string(ocpp16.LogStatusIdle),
		RemoteLocation: remoteLocation,
	}); err != nil {
		return "", fmt.Errorf("maintenance: record log request: %w", err)
	}

	m.pool.Submit(func() {
		bg := context.Background()
		m.notifyLog(bg, requestID, ocpp16.LogStatusUploading)
		_ = m.gw.UpdateLogRequestStatus(bg, requestID, string(ocpp16.LogStatusUploading))

		path, err := m.host.CollectLog(bg, logType, oldest, latest)
		if err != nil {
			logger.ErrorWithErr(err, "maintenance: collect log")
			m.notifyLog(bg, requestID, ocpp16.LogStatusUploadFailure)
			_ = m.gw.UpdateLogRequestStatus(bg, requestID, string(ocpp16.LogStatusUploadFailure))
			return
		}
		if err := m.host.UploadFile(bg, remoteLocation, path); err != nil {
			logger.ErrorWithErr(err, "maintenance: upload log")
			m.notifyLog(bg, requestID, ocpp16.LogStatusUploadFailure)
			_ = m.gw.UpdateLogRequestStatus(bg, requestID, string(ocpp16.LogStatusUploadFailure))
			return
		}
		m.notifyLog(bg, requestID, ocpp16.LogStatusUploaded)
		_ = m.gw.UpdateLogRequestStatus(bg, requestID, string(ocpp16.LogStatusUploaded))
	})
	return ocpp16.LogStatusRequestAccepted, nil
}

func (m *Manager) notifyLog(ctx context.Context, requestID int, status ocpp16.LogStatus) {
	m.snd.Send(ctx, string(ocpp16.ActionLogStatusNotification), ocpp16.LogStatusNotificationRequest{Status: status, RequestId: requestID})
}
