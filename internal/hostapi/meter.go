// Package hostapi provides the default implementations of the callback
// interfaces internal/transaction, internal/metervalues, and
// internal/maintenance depend on to reach actual meter hardware and file
// storage, rather than modelling that hardware itself. These defaults let
// cmd/chargepoint run standalone; an embedder with real hardware is
// expected to supply its own implementations of the same interfaces.
package hostapi

import (
	"fmt"
	"sync"

	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
)

// SyntheticMeter implements metervalues.ValueSource with a monotonically
// increasing energy register per connector, advancing a fixed amount each
// time it is read. It stands in for real meter hardware, which this module
// never touches directly.
type SyntheticMeter struct {
	mu         sync.Mutex
	register   map[int]float64
	incrementW float64
}

// NewSyntheticMeter builds a SyntheticMeter that advances each connector's
// register by incrementWh on every read.
func NewSyntheticMeter(incrementWh float64) *SyntheticMeter {
	return &SyntheticMeter{register: make(map[int]float64), incrementW: incrementWh}
}

// GetMeterValue implements metervalues.ValueSource. Only the energy
// register measurand is supported; anything else is reported as
// unavailable rather than fabricated.
func (m *SyntheticMeter) GetMeterValue(connectorID int, measurand ocpp16.Measurand, phase *ocpp16.Phase) (string, error) {
	if measurand != ocpp16.MeasurandEnergyActiveImportRegister {
		return "", fmt.Errorf("hostapi: no synthetic reading for measurand %q", measurand)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.register[connectorID] += m.incrementW
	return fmt.Sprintf("%.1f", m.register[connectorID]), nil
}
