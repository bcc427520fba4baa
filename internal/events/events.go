// Package events defines the lifecycle event vocabulary a charge point
// client emits for external consumption (a message broker, a local log
// sink, a test spy) and the Recorder that publishes them.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names one kind of lifecycle event.
type Type string

const (
	TypeChargePointConnected    Type = "charge_point.connected"
	TypeChargePointDisconnected Type = "charge_point.disconnected"
	TypeChargePointRegistered   Type = "charge_point.registered"
	TypeConnectorStatusChanged  Type = "connector.status_changed"
	TypeTransactionStarted      Type = "transaction.started"
	TypeTransactionStopped      Type = "transaction.stopped"
	TypeMeterValuesReceived     Type = "meter_values.received"
	TypeSecurityEventLogged     Type = "security.event_logged"
)

// Severity is how urgently an event should be surfaced downstream.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Metadata carries event envelope fields that aren't part of the payload
// proper.
type Metadata struct {
	Source          string            `json:"source"`
	ProtocolVersion string            `json:"protocol_version"`
	Custom          map[string]string `json:"custom,omitempty"`
}

// Event is the interface every lifecycle event satisfies.
type Event interface {
	GetID() string
	GetType() Type
	GetChargePointID() string
	GetTimestamp() time.Time
	GetSeverity() Severity
	GetMetadata() Metadata
	GetPayload() interface{}
	ToJSON() ([]byte, error)
}

// Base is embedded by every concrete event and implements everything but
// GetPayload/ToJSON.
type Base struct {
	ID            string   `json:"id"`
	Type          Type     `json:"type"`
	ChargePointID string   `json:"charge_point_id"`
	Timestamp     time.Time `json:"timestamp"`
	Severity      Severity `json:"severity"`
	Metadata      Metadata `json:"metadata"`
}

func newBase(t Type, chargePointID string, severity Severity, md Metadata) Base {
	return Base{
		ID:            uuid.New().String(),
		Type:          t,
		ChargePointID: chargePointID,
		Timestamp:     time.Now().UTC(),
		Severity:      severity,
		Metadata:      md,
	}
}

func (b Base) GetID() string               { return b.ID }
func (b Base) GetType() Type                { return b.Type }
func (b Base) GetChargePointID() string     { return b.ChargePointID }
func (b Base) GetTimestamp() time.Time      { return b.Timestamp }
func (b Base) GetSeverity() Severity        { return b.Severity }
func (b Base) GetMetadata() Metadata        { return b.Metadata }

// ChargePointConnectedEvent reports a successful transport connection.
type ChargePointConnectedEvent struct {
	Base
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
}

func (e ChargePointConnectedEvent) GetPayload() interface{} {
	return map[string]interface{}{"vendor": e.Vendor, "model": e.Model}
}
func (e ChargePointConnectedEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewChargePointConnected builds a ChargePointConnectedEvent.
func NewChargePointConnected(chargePointID, vendor, model string, md Metadata) ChargePointConnectedEvent {
	return ChargePointConnectedEvent{
		Base:   newBase(TypeChargePointConnected, chargePointID, SeverityInfo, md),
		Vendor: vendor,
		Model:  model,
	}
}

// ChargePointDisconnectedEvent reports a transport drop.
type ChargePointDisconnectedEvent struct {
	Base
	Reason string `json:"reason"`
}

func (e ChargePointDisconnectedEvent) GetPayload() interface{} {
	return map[string]interface{}{"reason": e.Reason}
}
func (e ChargePointDisconnectedEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewChargePointDisconnected builds a ChargePointDisconnectedEvent.
func NewChargePointDisconnected(chargePointID, reason string, md Metadata) ChargePointDisconnectedEvent {
	return ChargePointDisconnectedEvent{
		Base:   newBase(TypeChargePointDisconnected, chargePointID, SeverityWarning, md),
		Reason: reason,
	}
}

// ChargePointRegisteredEvent reports a BootNotification Accepted response.
type ChargePointRegisteredEvent struct {
	Base
	Interval int `json:"interval"`
}

func (e ChargePointRegisteredEvent) GetPayload() interface{} {
	return map[string]interface{}{"interval": e.Interval}
}
func (e ChargePointRegisteredEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewChargePointRegistered builds a ChargePointRegisteredEvent.
func NewChargePointRegistered(chargePointID string, interval int, md Metadata) ChargePointRegisteredEvent {
	return ChargePointRegisteredEvent{
		Base:     newBase(TypeChargePointRegistered, chargePointID, SeverityInfo, md),
		Interval: interval,
	}
}

// ConnectorStatusChangedEvent reports a connector status transition.
type ConnectorStatusChangedEvent struct {
	Base
	ConnectorID    int    `json:"connector_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status"`
	ErrorCode      string `json:"error_code,omitempty"`
}

func (e ConnectorStatusChangedEvent) GetPayload() interface{} {
	return map[string]interface{}{
		"connector_id":    e.ConnectorID,
		"status":          e.Status,
		"previous_status": e.PreviousStatus,
		"error_code":      e.ErrorCode,
	}
}
func (e ConnectorStatusChangedEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewConnectorStatusChanged builds a ConnectorStatusChangedEvent.
func NewConnectorStatusChanged(chargePointID string, connectorID int, status, previousStatus, errorCode string, md Metadata) ConnectorStatusChangedEvent {
	return ConnectorStatusChangedEvent{
		Base:           newBase(TypeConnectorStatusChanged, chargePointID, SeverityInfo, md),
		ConnectorID:    connectorID,
		Status:         status,
		PreviousStatus: previousStatus,
		ErrorCode:      errorCode,
	}
}

// TransactionStartedEvent reports a new transaction.
type TransactionStartedEvent struct {
	Base
	TransactionID int       `json:"transaction_id"`
	ConnectorID   int       `json:"connector_id"`
	IdTag         string    `json:"id_tag"`
	MeterStart    int       `json:"meter_start"`
	StartTime     time.Time `json:"start_time"`
}

func (e TransactionStartedEvent) GetPayload() interface{} {
	return map[string]interface{}{
		"transaction_id": e.TransactionID,
		"connector_id":   e.ConnectorID,
		"id_tag":         e.IdTag,
		"meter_start":    e.MeterStart,
		"start_time":     e.StartTime,
	}
}
func (e TransactionStartedEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewTransactionStarted builds a TransactionStartedEvent.
func NewTransactionStarted(chargePointID string, transactionID, connectorID int, idTag string, meterStart int, startTime time.Time, md Metadata) TransactionStartedEvent {
	return TransactionStartedEvent{
		Base:          newBase(TypeTransactionStarted, chargePointID, SeverityInfo, md),
		TransactionID: transactionID,
		ConnectorID:   connectorID,
		IdTag:         idTag,
		MeterStart:    meterStart,
		StartTime:     startTime,
	}
}

// TransactionStoppedEvent reports a transaction end.
type TransactionStoppedEvent struct {
	Base
	TransactionID int       `json:"transaction_id"`
	ConnectorID   int       `json:"connector_id"`
	MeterStop     int       `json:"meter_stop"`
	Reason        string    `json:"reason,omitempty"`
	StopTime      time.Time `json:"stop_time"`
}

func (e TransactionStoppedEvent) GetPayload() interface{} {
	return map[string]interface{}{
		"transaction_id": e.TransactionID,
		"connector_id":   e.ConnectorID,
		"meter_stop":     e.MeterStop,
		"reason":         e.Reason,
		"stop_time":      e.StopTime,
	}
}
func (e TransactionStoppedEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewTransactionStopped builds a TransactionStoppedEvent.
func NewTransactionStopped(chargePointID string, transactionID, connectorID, meterStop int, reason string, stopTime time.Time, md Metadata) TransactionStoppedEvent {
	return TransactionStoppedEvent{
		Base:          newBase(TypeTransactionStopped, chargePointID, SeverityInfo, md),
		TransactionID: transactionID,
		ConnectorID:   connectorID,
		MeterStop:     meterStop,
		Reason:        reason,
		StopTime:      stopTime,
	}
}

// MeterValuesReceivedEvent reports a batch of sampled readings taken
// locally and about to be (or already) reported upstream.
type MeterValuesReceivedEvent struct {
	Base
	ConnectorID   int      `json:"connector_id"`
	TransactionID *int     `json:"transaction_id,omitempty"`
	SampleCount   int      `json:"sample_count"`
}

func (e MeterValuesReceivedEvent) GetPayload() interface{} {
	return map[string]interface{}{
		"connector_id":   e.ConnectorID,
		"transaction_id": e.TransactionID,
		"sample_count":   e.SampleCount,
	}
}
func (e MeterValuesReceivedEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewMeterValuesReceived builds a MeterValuesReceivedEvent.
func NewMeterValuesReceived(chargePointID string, connectorID int, transactionID *int, sampleCount int, md Metadata) MeterValuesReceivedEvent {
	return MeterValuesReceivedEvent{
		Base:          newBase(TypeMeterValuesReceived, chargePointID, SeverityInfo, md),
		ConnectorID:   connectorID,
		TransactionID: transactionID,
		SampleCount:   sampleCount,
	}
}

// SecurityEventLoggedEvent mirrors an entry appended to the security log.
type SecurityEventLoggedEvent struct {
	Base
	SecurityEventType string `json:"security_event_type"`
	Message           string `json:"message,omitempty"`
	Critical          bool   `json:"critical"`
}

func (e SecurityEventLoggedEvent) GetPayload() interface{} {
	return map[string]interface{}{
		"security_event_type": e.SecurityEventType,
		"message":             e.Message,
		"critical":            e.Critical,
	}
}
func (e SecurityEventLoggedEvent) ToJSON() ([]byte, error) { return json.Marshal(e) }

// NewSecurityEventLogged builds a SecurityEventLoggedEvent.
func NewSecurityEventLogged(chargePointID, securityEventType, message string, critical bool, md Metadata) SecurityEventLoggedEvent {
	severity := SeverityInfo
	if critical {
		severity = SeverityCritical
	}
	return SecurityEventLoggedEvent{
		Base:              newBase(TypeSecurityEventLogged, chargePointID, severity, md),
		SecurityEventType: securityEventType,
		Message:           message,
		Critical:          critical,
	}
}
