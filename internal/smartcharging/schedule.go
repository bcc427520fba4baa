package smartcharging

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/domain/ocpp16"
	"github.com/go-ocpp/chargepoint/internal/storage"
)

// unbounded marks a segment that runs to the end of the query window.
const unbounded = 1 << 30

// segment is one constant-limit interval, offsets in seconds from the query
// instant ("now").
type segment struct {
	start, end int
	limit      float64
	phases     int
}

// candidate is one installed profile resolved into absolute-offset segments
// for a single composite-schedule query.
type candidate struct {
	stackLevel  int
	installedAt int64
	rateUnit    ocpp16.ChargingRateUnit
	minRate     float64
	segments    []segment
}

// ActiveTransaction describes the transaction (if any) running on the
// queried connector, needed to resolve Relative start times and to decide
// whether TxProfile applies at all.
type ActiveTransaction struct {
	ID    int
	Start time.Time
}

// Setpoint is an instantaneous limit resolved for one purpose.
type Setpoint struct {
	Value           float64
	NumberPhases    int
	MinChargingRate float64
}

// Resolve computes the composite schedule for connectorID over
// [now, now+windowSeconds) in requestedUnit.
func Resolve(ctx context.Context, gw *storage.Gateway, cfg config.OCPPConfig, connectorID int, now time.Time, windowSeconds int, requestedUnit ocpp16.ChargingRateUnit, tx *ActiveTransaction) (ocpp16.ChargingSchedule, error) {
	records, err := gw.ListProfiles(ctx)
	if err != nil {
		return ocpp16.ChargingSchedule{}, fmt.Errorf("smartcharging: list profiles: %w", err)
	}

	cpMax := resolvePurposeTimeline(records, ocpp16.ChargingProfilePurposeChargePointMaxProfile, connectorID, now, windowSeconds, tx, cfg.OperatingVoltage, requestedUnit)

	var connectorLimit []segment
	var dominantMinRate float64
	if tx != nil {
		txSegs, minRate := resolvePurposeSegmentsWithRate(records, ocpp16.ChargingProfilePurposeTxProfile, connectorID, now, windowSeconds, tx, cfg.OperatingVoltage, requestedUnit)
		if len(txSegs) > 0 {
			connectorLimit, dominantMinRate = txSegs, minRate
		}
	}
	if connectorLimit == nil {
		connectorLimit, dominantMinRate = resolvePurposeSegmentsWithRate(records, ocpp16.ChargingProfilePurposeTxDefaultProfile, connectorID, now, windowSeconds, tx, cfg.OperatingVoltage, requestedUnit)
	}

	merged := mergeMin(connectorLimit, cpMax)
	merged = clip(merged, windowSeconds)
	merged = coalesce(merged)

	duration := outputDuration(merged, windowSeconds)

	out := ocpp16.ChargingSchedule{
		ChargingRateUnit: requestedUnit,
		Duration:         &duration,
	}
	if dominantMinRate > 0 {
		out.MinChargingRate = &dominantMinRate
	}
	for _, s := range merged {
		period := s
		np := period.phases
		out.ChargingSchedulePeriod = append(out.ChargingSchedulePeriod, ocpp16.ChargingSchedulePeriod{
			StartPeriod:  period.start,
			Limit:        period.limit,
			NumberPhases: &np,
		})
	}
	if len(out.ChargingSchedulePeriod) == 0 {
		zero := 0
		out.ChargingSchedulePeriod = []ocpp16.ChargingSchedulePeriod{{StartPeriod: 0, Limit: 0, NumberPhases: &zero}}
	}
	return out, nil
}

// GetSetpoint evaluates the first second of the composite schedule,
// reporting a charge-point-wide and a connector setpoint.
func GetSetpoint(ctx context.Context, gw *storage.Gateway, cfg config.OCPPConfig, connectorID int, now time.Time, unit ocpp16.ChargingRateUnit, tx *ActiveTransaction) (cp *Setpoint, connector *Setpoint, err error) {
	records, err := gw.ListProfiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("smartcharging: list profiles: %w", err)
	}

	cpSegs := resolvePurposeTimeline(records, ocpp16.ChargingProfilePurposeChargePointMaxProfile, connectorID, now, 1, tx, cfg.OperatingVoltage, unit)
	if s := segmentAt(cpSegs, 0); s != nil {
		cp = &Setpoint{Value: s.limit, NumberPhases: s.phases}
	}

	var connSegs []segment
	var minRate float64
	if tx != nil {
		connSegs, minRate = resolvePurposeSegmentsWithRate(records, ocpp16.ChargingProfilePurposeTxProfile, connectorID, now, 1, tx, cfg.OperatingVoltage, unit)
	}
	if len(connSegs) == 0 {
		connSegs, minRate = resolvePurposeSegmentsWithRate(records, ocpp16.ChargingProfilePurposeTxDefaultProfile, connectorID, now, 1, tx, cfg.OperatingVoltage, unit)
	}
	merged := mergeMin(connSegs, cpSegs)
	if s := segmentAt(merged, 0); s != nil {
		connector = &Setpoint{Value: s.limit, NumberPhases: s.phases, MinChargingRate: minRate}
	}
	return cp, connector, nil
}

func segmentAt(segs []segment, t int) *segment {
	for i := range segs {
		if segs[i].start <= t && t < segs[i].end {
			return &segs[i]
		}
	}
	return nil
}

func resolvePurposeSegmentsWithRate(records []storage.ChargingProfileRecord, purpose ocpp16.ChargingProfilePurpose, connectorID int, now time.Time, window int, tx *ActiveTransaction, voltage float64, requestedUnit ocpp16.ChargingRateUnit) ([]segment, float64) {
	candidates := collectCandidates(records, purpose, connectorID, now, window, tx, voltage, requestedUnit)
	segs := selectByStackLevel(candidates, window)
	var minRate float64
	if dominant := dominantCandidate(candidates); dominant != nil {
		minRate = dominant.minRate
	}
	return segs, minRate
}

// dominantCandidate picks the candidate selectByStackLevel favors overall:
// highest stack level, ties broken by most recently installed.
func dominantCandidate(candidates []candidate) *candidate {
	var best *candidate
	for i := range candidates {
		c := &candidates[i]
		if best == nil || c.stackLevel > best.stackLevel ||
			(c.stackLevel == best.stackLevel && c.installedAt > best.installedAt) {
			best = c
		}
	}
	return best
}

func resolvePurposeTimeline(records []storage.ChargingProfileRecord, purpose ocpp16.ChargingProfilePurpose, connectorID int, now time.Time, window int, tx *ActiveTransaction, voltage float64, requestedUnit ocpp16.ChargingRateUnit) []segment {
	candidates := collectCandidates(records, purpose, connectorID, now, window, tx, voltage, requestedUnit)
	return selectByStackLevel(candidates, window)
}

// collectCandidates filters installed profiles relevant to (purpose,
// connectorID), resolves each one's wall-clock start per its kind, and
// converts its periods into absolute-offset-from-now segments.
func collectCandidates(records []storage.ChargingProfileRecord, purpose ocpp16.ChargingProfilePurpose, connectorID int, now time.Time, window int, tx *ActiveTransaction, voltage float64, requestedUnit ocpp16.ChargingRateUnit) []candidate {
	var out []candidate
	for _, rec := range records {
		if rec.Purpose != string(purpose) {
			continue
		}
		switch purpose {
		case ocpp16.ChargingProfilePurposeChargePointMaxProfile:
			if rec.ConnectorID != 0 {
				continue
			}
		case ocpp16.ChargingProfilePurposeTxDefaultProfile:
			if rec.ConnectorID != 0 && rec.ConnectorID != connectorID {
				continue
			}
		case ocpp16.ChargingProfilePurposeTxProfile:
			if tx == nil || rec.ConnectorID != connectorID || rec.TransactionID != tx.ID {
				continue
			}
		}
		if !validNow(rec, now) {
			continue
		}

		start, ok := resolveStart(rec, now, tx)
		if !ok {
			continue
		}
		offset := int(start.Sub(now).Seconds())

		segs := buildSegments(rec, offset, window)
		if len(segs) == 0 {
			continue
		}

		factor := conversionFactor(ocpp16.ChargingRateUnit(rec.RateUnit), requestedUnit, voltage, dominantPhases(rec))
		if factor != 1 {
			for i := range segs {
				segs[i].limit *= factor
			}
		}

		out = append(out, candidate{
			stackLevel:  rec.StackLevel,
			installedAt: rec.RowID,
			rateUnit:    ocpp16.ChargingRateUnit(rec.RateUnit),
			minRate:     rec.MinChargingRate,
			segments:    segs,
		})
	}
	return out
}

func dominantPhases(rec storage.ChargingProfileRecord) int {
	for _, p := range rec.Periods {
		if p.NumberPhases > 0 {
			return p.NumberPhases
		}
	}
	return 1
}

// conversionFactor returns the multiplier applied to a limit expressed in
// `from` so it reads in `to`, using operating_voltage * number_phases as the
// Amp<->Watt factor.
func conversionFactor(from, to ocpp16.ChargingRateUnit, voltage float64, phases int) float64 {
	if from == to || from == "" || voltage <= 0 || phases <= 0 {
		return 1
	}
	switch {
	case from == ocpp16.ChargingRateUnitA && to == ocpp16.ChargingRateUnitW:
		return voltage * float64(phases)
	case from == ocpp16.ChargingRateUnitW && to == ocpp16.ChargingRateUnitA:
		return 1 / (voltage * float64(phases))
	default:
		return 1
	}
}

func validNow(rec storage.ChargingProfileRecord, now time.Time) bool {
	if rec.ValidFrom != "" {
		if from, err := time.Parse(time.RFC3339, rec.ValidFrom); err == nil && now.Before(from) {
			return false
		}
	}
	if rec.ValidTo != "" {
		if to, err := time.Parse(time.RFC3339, rec.ValidTo); err == nil && now.After(to) {
			return false
		}
	}
	return true
}

func resolveStart(rec storage.ChargingProfileRecord, now time.Time, tx *ActiveTransaction) (time.Time, bool) {
	switch rec.Kind {
	case string(ocpp16.ChargingProfileKindAbsolute):
		if rec.StartSchedule == "" {
			return time.Time{}, false
		}
		start, err := time.Parse(time.RFC3339, rec.StartSchedule)
		if err != nil {
			return time.Time{}, false
		}
		return start, true

	case string(ocpp16.ChargingProfileKindRelative):
		if tx != nil {
			return tx.Start, true
		}
		return now, true

	case string(ocpp16.ChargingProfileKindRecurring):
		if rec.StartSchedule == "" {
			return time.Time{}, false
		}
		ref, err := time.Parse(time.RFC3339, rec.StartSchedule)
		if err != nil {
			return time.Time{}, false
		}
		period := 24 * time.Hour
		if rec.Recurrency == string(ocpp16.RecurrencyKindWeekly) {
			period = 7 * 24 * time.Hour
		}
		duration := time.Duration(rec.DurationSeconds) * time.Second
		if rec.DurationSeconds == 0 {
			duration = 24 * time.Hour
			if rec.Recurrency == string(ocpp16.RecurrencyKindWeekly) {
				duration = 7 * 24 * time.Hour
			}
		}
		start := ref
		for start.Add(duration).Before(now) || start.Add(duration).Equal(now) {
			start = start.Add(period)
		}
		for start.After(now) {
			start = start.Add(-period)
		}
		return start, true
	}
	return time.Time{}, false
}

// buildSegments converts a profile's periods into absolute offsets from
// the query instant, clipped to [0, window).
func buildSegments(rec storage.ChargingProfileRecord, startOffset, window int) []segment {
	if len(rec.Periods) == 0 {
		return nil
	}
	end := unbounded
	if rec.DurationSeconds > 0 {
		end = startOffset + rec.DurationSeconds
	}
	if end > window {
		end = unbounded
	}

	var segs []segment
	for i, p := range rec.Periods {
		segStart := startOffset + p.StartPeriod
		segEnd := end
		if i+1 < len(rec.Periods) {
			segEnd = startOffset + rec.Periods[i+1].StartPeriod
		}
		if segStart >= segEnd {
			continue
		}
		phases := p.NumberPhases
		if phases == 0 {
			phases = 1
		}
		segs = append(segs, segment{start: segStart, end: segEnd, limit: p.Limit, phases: phases})
	}
	return segs
}

// selectByStackLevel merges same-purpose candidates into one timeline,
// picking the highest stack level active at each boundary (ties broken by
// most recently installed).
func selectByStackLevel(candidates []candidate, window int) []segment {
	if len(candidates) == 0 {
		return nil
	}
	boundaries := map[int]bool{0: true, window: true}
	for _, c := range candidates {
		for _, s := range c.segments {
			boundaries[clampInt(s.start, 0, window)] = true
			if s.end < window {
				boundaries[clampInt(s.end, 0, window)] = true
			}
		}
	}
	points := sortedKeys(boundaries)

	var out []segment
	for i := 0; i+1 < len(points); i++ {
		t := points[i]
		next := points[i+1]

		var best *segment
		var bestCandidate *candidate
		for ci := range candidates {
			c := &candidates[ci]
			s := segmentAt(c.segments, t)
			if s == nil {
				continue
			}
			if best == nil || c.stackLevel > bestCandidate.stackLevel ||
				(c.stackLevel == bestCandidate.stackLevel && c.installedAt > bestCandidate.installedAt) {
				best = s
				bestCandidate = c
			}
		}
		if best == nil {
			continue
		}
		out = append(out, segment{start: t, end: next, limit: best.limit, phases: best.phases})
	}
	return out
}

// mergeMin combines a connector-limit timeline with a charge-point-limit
// timeline, taking min(limit) at every boundary; an empty side imposes no
// limit.
func mergeMin(connector, cp []segment) []segment {
	if len(cp) == 0 {
		return connector
	}
	if len(connector) == 0 {
		return cp
	}

	boundaries := map[int]bool{}
	for _, s := range connector {
		boundaries[s.start] = true
		boundaries[s.end] = true
	}
	for _, s := range cp {
		boundaries[s.start] = true
		boundaries[s.end] = true
	}
	points := sortedKeys(boundaries)

	var out []segment
	for i := 0; i+1 < len(points); i++ {
		t, next := points[i], points[i+1]
		cs := segmentAt(connector, t)
		ps := segmentAt(cp, t)
		switch {
		case cs == nil && ps == nil:
			continue
		case cs == nil:
			out = append(out, segment{start: t, end: next, limit: ps.limit, phases: ps.phases})
		case ps == nil:
			out = append(out, segment{start: t, end: next, limit: cs.limit, phases: cs.phases})
		case cs.limit <= ps.limit:
			out = append(out, segment{start: t, end: next, limit: cs.limit, phases: cs.phases})
		default:
			out = append(out, segment{start: t, end: next, limit: ps.limit, phases: ps.phases})
		}
	}
	return out
}

func clip(segs []segment, window int) []segment {
	var out []segment
	for _, s := range segs {
		if s.end <= 0 || s.start >= window {
			continue
		}
		if s.start < 0 {
			s.start = 0
		}
		if s.end > window {
			s.end = window
		}
		out = append(out, s)
	}
	return out
}

func coalesce(segs []segment) []segment {
	var out []segment
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].limit == s.limit && out[n-1].phases == s.phases && out[n-1].end == s.start {
			out[n-1].end = s.end
			continue
		}
		out = append(out, s)
	}
	return out
}

func outputDuration(segs []segment, window int) int {
	if len(segs) == 0 {
		return window
	}
	last := segs[len(segs)-1].end
	if last < window {
		return last
	}
	return window
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
