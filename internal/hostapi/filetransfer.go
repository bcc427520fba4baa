package hostapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
)

// FileTransfer implements maintenance.Host over plain HTTP(S) GET/PUT
// against the locations a central system supplies in GetDiagnostics,
// UpdateFirmware, and GetLog. It is a minimal default, provided only so
// cmd/chargepoint has something working to hand to internal/maintenance;
// a host with its own upload protocol (FTP, SFTP) supplies its own
// implementation of the same interface.
type FileTransfer struct {
	WorkDir string
	Client  *http.Client
}

// NewFileTransfer builds a FileTransfer staging downloads/uploads under
// workDir.
func NewFileTransfer(workDir string) *FileTransfer {
	return &FileTransfer{WorkDir: workDir, Client: &http.Client{Timeout: 5 * time.Minute}}
}

// CollectDiagnostics has nothing of its own to collect: this module keeps
// its operational history in internal/storage, not in a filesystem log
// bundle, so it writes an empty placeholder file instead.
func (f *FileTransfer) CollectDiagnostics(ctx context.Context, start, stop *time.Time) (string, error) {
	return f.writePlaceholder("diagnostics-*.log")
}

// UploadFile PUTs localPath's contents to remoteLocation.
func (f *FileTransfer) UploadFile(ctx context.Context, remoteLocation, localPath string) error {
	data, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("hostapi: open %s for upload: %w", localPath, err)
	}
	defer data.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, remoteLocation, data)
	if err != nil {
		return fmt.Errorf("hostapi: build upload request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("hostapi: upload to %s: %w", remoteLocation, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("hostapi: upload to %s: status %s", remoteLocation, resp.Status)
	}
	return nil
}

// DownloadFirmware GETs location into a local staging file.
func (f *FileTransfer) DownloadFirmware(ctx context.Context, location string) (string, error) {
	return f.download(ctx, location, "firmware-*.bin")
}

// InstallFirmware has no real device to flash; it only validates the
// staged file exists and removes it, standing in for an embedder's actual
// installation step.
func (f *FileTransfer) InstallFirmware(ctx context.Context, localPath string) error {
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("hostapi: staged firmware missing: %w", err)
	}
	return os.Remove(localPath)
}

// CollectLog has the same placeholder limitation as CollectDiagnostics:
// this module keeps its own history in internal/storage, not in a
// filesystem log a central system's log request format expects.
func (f *FileTransfer) CollectLog(ctx context.Context, logType ocpp16.LogType, oldest, latest *time.Time) (string, error) {
	return f.writePlaceholder("log-*.txt")
}

func (f *FileTransfer) download(ctx context.Context, location, pattern string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", fmt.Errorf("hostapi: build download request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("hostapi: download %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("hostapi: download %s: status %s", location, resp.Status)
	}

	if err := os.MkdirAll(f.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("hostapi: create work dir: %w", err)
	}
	out, err := os.CreateTemp(f.WorkDir, pattern)
	if err != nil {
		return "", fmt.Errorf("hostapi: stage download: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("hostapi: write staged download: %w", err)
	}
	return out.Name(), nil
}

func (f *FileTransfer) writePlaceholder(pattern string) (string, error) {
	if err := os.MkdirAll(f.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("hostapi: create work dir: %w", err)
	}
	out, err := os.CreateTemp(f.WorkDir, pattern)
	if err != nil {
		return "", fmt.Errorf("hostapi: stage placeholder: %w", err)
	}
	defer out.Close()
	return out.Name(), nil
}
