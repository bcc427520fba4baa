// Package metervalues drives the three meter-value triggers — clock-aligned,
// sampled, and triggered — and the bounded stop-transaction aggregation that
// survives a restart.
package metervalues

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
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
	IsConnected() bool
}

// ValueSource supplies one measurement, the host's window into the physical
// meter hardware.
type ValueSource interface {
	GetMeterValue(connectorID int, measurand ocpp16.Measurand, phase *ocpp16.Phase) (string, error)
}

const (
	clockAlignedTimerName = "meter-clock-aligned"
	sampledTimerPrefix    = "meter-sampled-"
)

// Manager schedules and assembles MeterValues reports.
type Manager struct {
	snd        Sender
	connectors *connector.Registry
	gw         *storage.Gateway
	timers     *timer.Pool
	values     ValueSource
	cfg        config.OCPPConfig
}

// New builds a Manager.
func New(snd Sender, connectors *connector.Registry, gw *storage.Gateway, timers *timer.Pool, values ValueSource, cfg config.OCPPConfig) *Manager {
	return &Manager{snd: snd, connectors: connectors, gw: gw, timers: timers, values: values, cfg: cfg}
}

// StartClockAligned arms the process-wide clock-aligned timer, a no-op if
// ClockAlignedDataInterval is 0.
func (m *Manager) StartClockAligned(ctx context.Context) {
	if m.cfg.ClockAlignedDataInterval <= 0 {
		return
	}
	m.timers.Every(clockAlignedTimerName, m.cfg.ClockAlignedDataInterval, func() {
		m.tickClockAligned(ctx)
	})
}

// StopClockAligned cancels the clock-aligned timer.
func (m *Manager) StopClockAligned() {
	m.timers.Cancel(clockAlignedTimerName)
}

func (m *Manager) tickClockAligned(ctx context.Context) {
	ids := append([]int{0}, connectorIDs(m.connectors.List())...)
	for _, id := range ids {
		mv, err := m.buildMeterValue(id, m.cfg.MeterValuesAlignedData, ocpp16.ReadingContextSampleClock)
		if err != nil {
			logger.ErrorWithErr(err, "metervalues: build clock-aligned sample")
			continue
		}
		if len(mv.SampledValue) == 0 {
			continue
		}

		var txID int
		if id != 0 {
			if rec, ok := m.connectors.Get(id); ok {
				txID = rec.TransactionID
			}
		}
		if txID != 0 {
			if err := m.bufferStopTxnSample(ctx, txID, mv, ocpp16.ReadingContextSampleClock, m.cfg.StopTxnAlignedData, m.cfg.StopTxnAlignedDataMaxLength); err != nil {
				logger.ErrorWithErr(err, "metervalues: buffer clock-aligned stop-transaction sample")
			}
		}
		m.sendOrBuffer(ctx, id, txID, mv)
	}
}

// StartSampling arms connectorID's per-transaction sampled timer. Implements
// transaction.MeterSampler.
func (m *Manager) StartSampling(connectorID, transactionID int) {
	if m.cfg.MeterValueSampleInterval <= 0 {
		return
	}
	ctx := context.Background()
	m.timers.Every(sampledTimerName(connectorID), m.cfg.MeterValueSampleInterval, func() {
		m.tickSampled(ctx, connectorID, transactionID)
	})
}

// StopSampling cancels connectorID's sampled timer. Implements
// transaction.MeterSampler.
func (m *Manager) StopSampling(connectorID int) {
	m.timers.Cancel(sampledTimerName(connectorID))
}

func (m *Manager) tickSampled(ctx context.Context, connectorID, transactionID int) {
	mv, err := m.buildMeterValue(connectorID, m.cfg.MeterValuesSampledData, ocpp16.ReadingContextSamplePeriodic)
	if err != nil {
		logger.ErrorWithErr(err, "metervalues: build sampled reading")
		return
	}
	if len(mv.SampledValue) == 0 {
		return
	}
	if err := m.bufferStopTxnSample(ctx, transactionID, mv, ocpp16.ReadingContextSamplePeriodic, m.cfg.StopTxnSampledData, m.cfg.StopTxnSampledDataMaxLength); err != nil {
		logger.ErrorWithErr(err, "metervalues: buffer sampled stop-transaction sample")
	}
	m.sendOrBuffer(ctx, connectorID, transactionID, mv)
}

// Trigger produces one immediate sample for a standard or extended
// TriggerMessage request for MeterValues.
func (m *Manager) Trigger(ctx context.Context, connectorID int) error {
	measurands := m.cfg.MeterValuesSampledData
	if connectorID == 0 {
		measurands = m.cfg.MeterValuesAlignedData
	}
	mv, err := m.buildMeterValue(connectorID, measurands, ocpp16.ReadingContextTrigger)
	if err != nil {
		return err
	}
	var txID int
	if connectorID != 0 {
		if rec, ok := m.connectors.Get(connectorID); ok {
			txID = rec.TransactionID
		}
	}
	m.sendOrBuffer(ctx, connectorID, txID, mv)
	return nil
}

func (m *Manager) buildMeterValue(connectorID int, measurands []string, readingCtx ocpp16.ReadingContext) (ocpp16.MeterValue, error) {
	mv := ocpp16.MeterValue{Timestamp: ocpp16.DateTime{Time: time.Now()}}
	for _, spec := range measurands {
		measurand, phase := parseMeasurandSpec(spec)
		value, err := m.values.GetMeterValue(connectorID, measurand, phase)
		if err != nil {
			logger.ErrorWithErr(err, fmt.Sprintf("metervalues: read %s on connector %d", measurand, connectorID))
			continue
		}
		sv := ocpp16.SampledValue{Value: value, Context: &readingCtx, Measurand: &measurand}
		if phase != nil {
			sv.Phase = phase
		}
		format := ocpp16.ValueFormatRaw
		sv.Format = &format
		location := sampleLocation(connectorID)
		sv.Location = &location
		if unit := measurandUnit(measurand); unit != nil {
			sv.Unit = unit
		}
		mv.SampledValue = append(mv.SampledValue, sv)
	}
	return mv, nil
}

// sampleLocation is the measurement point reported for a sample: the
// chargepoint-wide connector reads at the Inlet, every per-connector read at
// the Outlet.
func sampleLocation(connectorID int) ocpp16.Location {
	if connectorID == 0 {
		return ocpp16.LocationInlet
	}
	return ocpp16.LocationOutlet
}

// measurandUnit returns the conventional OCPP unit for measurand, or nil for
// measurands the schema leaves dimensionless (e.g. Frequency, RPM).
func measurandUnit(measurand ocpp16.Measurand) *ocpp16.UnitOfMeasure {
	var unit ocpp16.UnitOfMeasure
	switch measurand {
	case ocpp16.MeasurandCurrentExport, ocpp16.MeasurandCurrentImport, ocpp16.MeasurandCurrentOffered:
		unit = ocpp16.UnitOfMeasureA
	case ocpp16.MeasurandEnergyActiveExportRegister, ocpp16.MeasurandEnergyActiveImportRegister,
		ocpp16.MeasurandEnergyReactiveExportRegister, ocpp16.MeasurandEnergyReactiveImportRegister:
		unit = ocpp16.UnitOfMeasureKWh
	case ocpp16.MeasurandEnergyActiveExportInterval, ocpp16.MeasurandEnergyActiveImportInterval,
		ocpp16.MeasurandEnergyReactiveExportInterval, ocpp16.MeasurandEnergyReactiveImportInterval:
		unit = ocpp16.UnitOfMeasureWh
	case ocpp16.MeasurandPowerActiveExport, ocpp16.MeasurandPowerActiveImport, ocpp16.MeasurandPowerOffered:
		unit = ocpp16.UnitOfMeasureKW
	case ocpp16.MeasurandPowerReactiveExport, ocpp16.MeasurandPowerReactiveImport:
		unit = ocpp16.UnitOfMeasureKvar
	case ocpp16.MeasurandVoltage:
		unit = ocpp16.UnitOfMeasureV
	case ocpp16.MeasurandTemperature:
		unit = ocpp16.UnitOfMeasureCelsius
	case ocpp16.MeasurandSoC, ocpp16.MeasurandPowerFactor:
		unit = ocpp16.UnitOfMeasurePercent
	default:
		return nil
	}
	return &unit
}

// parseMeasurandSpec splits a configured "Measurand" or "Measurand@Phase"
// entry, the csv-within-array shape the rest of the pack's OCPP config
// surfaces use for per-phase measurands.
func parseMeasurandSpec(spec string) (ocpp16.Measurand, *ocpp16.Phase) {
	parts := strings.SplitN(spec, "@", 2)
	measurand := ocpp16.Measurand(parts[0])
	if len(parts) == 1 {
		return measurand, nil
	}
	phase := ocpp16.Phase(parts[1])
	return measurand, &phase
}

func (m *Manager) sendOrBuffer(ctx context.Context, connectorID, transactionID int, mv ocpp16.MeterValue) {
	req := ocpp16.MeterValuesRequest{ConnectorId: connectorID, MeterValue: []ocpp16.MeterValue{mv}}
	if transactionID != 0 {
		req.TransactionId = &transactionID
	}

	if m.snd.IsConnected() {
		if res := m.snd.Send(ctx, string(ocpp16.ActionMeterValues), req); res.Outcome == sender.Ok {
			return
		}
	}

	if transactionID == 0 {
		return
	}
	body, err := json.Marshal(req)
	if err != nil {
		logger.ErrorWithErr(err, "metervalues: encode offline MeterValues")
		return
	}
	if _, err := m.gw.EnqueueFifo(ctx, connectorID, string(ocpp16.ActionMeterValues), string(body)); err != nil {
		logger.ErrorWithErr(err, "metervalues: enqueue offline MeterValues")
	}
}

func (m *Manager) bufferStopTxnSample(ctx context.Context, transactionID int, mv ocpp16.MeterValue, readingCtx ocpp16.ReadingContext, configured []string, maxLen int) error {
	if len(configured) == 0 || maxLen <= 0 {
		return nil
	}

	body, err := json.Marshal(mv)
	if err != nil {
		return fmt.Errorf("metervalues: encode stop-transaction sample: %w", err)
	}
	if err := m.gw.AppendMeterValue(ctx, transactionID, 0, mv.Timestamp.Time.UTC().Format(time.RFC3339), string(body)); err != nil {
		return err
	}

	count, err := m.gw.CountMeterValuesByContext(ctx, transactionID, string(readingCtx))
	if err != nil {
		return err
	}
	for count > maxLen {
		if err := m.gw.DeleteOldestMeterValueByContext(ctx, transactionID, string(readingCtx)); err != nil {
			return err
		}
		count--
	}
	return nil
}

// GetTxStopMeterValues returns a transaction's buffered stop-transaction
// samples, oldest first, for StopTransactionRequest.TransactionData.
func (m *Manager) GetTxStopMeterValues(ctx context.Context, transactionID int) ([]ocpp16.MeterValue, error) {
	records, err := m.gw.ListMeterValuesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("metervalues: collect stop-transaction samples: %w", err)
	}
	out := make([]ocpp16.MeterValue, 0, len(records))
	for _, r := range records {
		var mv ocpp16.MeterValue
		if err := json.Unmarshal([]byte(r.ValueJSON), &mv); err != nil {
			logger.ErrorWithErr(err, "metervalues: decode buffered sample")
			continue
		}
		out = append(out, mv)
	}
	return out, nil
}

func sampledTimerName(connectorID int) string {
	return fmt.Sprintf("%s%d", sampledTimerPrefix, connectorID)
}

func connectorIDs(records []storage.ConnectorRecord) []int {
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
