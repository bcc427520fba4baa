// Package ocpp16 defines the wire types of the OCPP 1.6-J protocol: the
// three message kinds (CALL/CALLRESULT/CALLERROR), every Core/Firmware
// Management/Local Auth List/Reservation/Smart Charging/Trigger Message/
// Security extension request-response pair, and the enumerations they use.
package ocpp16

import (
	"time"
)

// MessageType is the first element of an OCPP-J array frame.
type MessageType int

const (
	// Call identifies a request frame: [2, messageId, action, payload].
	Call MessageType = 2
	// CallResult identifies a response frame: [3, messageId, payload].
	CallResult MessageType = 3
	// CallError identifies an error frame:
	// [4, messageId, errorCode, errorDescription, errorDetails].
	CallError MessageType = 4
)

// Action names an OCPP action carried by a CALL frame.
type Action string

const (
	// Core Profile Actions
	ActionAuthorize              Action = "Authorize"
	ActionBootNotification       Action = "BootNotification"
	ActionChangeAvailability     Action = "ChangeAvailability"
	ActionChangeConfiguration    Action = "ChangeConfiguration"
	ActionClearCache             Action = "ClearCache"
	ActionDataTransfer           Action = "DataTransfer"
	ActionGetConfiguration       Action = "GetConfiguration"
	ActionHeartbeat              Action = "Heartbeat"
	ActionMeterValues            Action = "MeterValues"
	ActionRemoteStartTransaction Action = "RemoteStartTransaction"
	ActionRemoteStopTransaction  Action = "RemoteStopTransaction"
	ActionReset                  Action = "Reset"
	ActionStartTransaction       Action = "StartTransaction"
	ActionStatusNotification     Action = "StatusNotification"
	ActionStopTransaction        Action = "StopTransaction"
	ActionUnlockConnector        Action = "UnlockConnector"

	// Firmware Management Profile Actions
	ActionGetDiagnostics    Action = "GetDiagnostics"
	ActionDiagnosticsStatusNotification Action = "DiagnosticsStatusNotification"
	ActionFirmwareStatusNotification    Action = "FirmwareStatusNotification"
	ActionUpdateFirmware    Action = "UpdateFirmware"

	// Local Auth List Management Profile Actions
	ActionGetLocalListVersion Action = "GetLocalListVersion"
	ActionSendLocalList       Action = "SendLocalList"

	// Reservation Profile Actions
	ActionCancelReservation Action = "CancelReservation"
	ActionReserveNow        Action = "ReserveNow"

	// Smart Charging Profile Actions
	ActionClearChargingProfile Action = "ClearChargingProfile"
	ActionGetCompositeSchedule Action = "GetCompositeSchedule"
	ActionSetChargingProfile   Action = "SetChargingProfile"

	// Trigger Message Profile Actions
	ActionTriggerMessage         Action = "TriggerMessage"
	ActionExtendedTriggerMessage Action = "ExtendedTriggerMessage"

	// Security Extension Actions
	ActionCertificateSigned            Action = "CertificateSigned"
	ActionDeleteCertificate             Action = "DeleteCertificate"
	ActionGetInstalledCertificateIds    Action = "GetInstalledCertificateIds"
	ActionInstallCertificate            Action = "InstallCertificate"
	ActionLogStatusNotification         Action = "LogStatusNotification"
	ActionGetLog                        Action = "GetLog"
	ActionSecurityEventNotification     Action = "SecurityEventNotification"
	ActionSignCertificate               Action = "SignCertificate"
	ActionSignedFirmwareStatusNotification Action = "SignedFirmwareStatusNotification"
	ActionSignedUpdateFirmware          Action = "SignedUpdateFirmware"
)

// ChargePointStatus is the operational status of a connector.
type ChargePointStatus string

const (
	ChargePointStatusAvailable     ChargePointStatus = "Available"
	ChargePointStatusPreparing     ChargePointStatus = "Preparing"
	ChargePointStatusCharging      ChargePointStatus = "Charging"
	ChargePointStatusSuspendedEVSE ChargePointStatus = "SuspendedEVSE"
	ChargePointStatusSuspendedEV   ChargePointStatus = "SuspendedEV"
	ChargePointStatusFinishing     ChargePointStatus = "Finishing"
	ChargePointStatusReserved      ChargePointStatus = "Reserved"
	ChargePointStatusUnavailable   ChargePointStatus = "Unavailable"
	ChargePointStatusFaulted       ChargePointStatus = "Faulted"
)

// ChargePointErrorCode is the error code accompanying a status report.
type ChargePointErrorCode string

const (
	ChargePointErrorCodeConnectorLockFailure         ChargePointErrorCode = "ConnectorLockFailure"
	ChargePointErrorCodeEVCommunicationError         ChargePointErrorCode = "EVCommunicationError"
	ChargePointErrorCodeGroundFailure                ChargePointErrorCode = "GroundFailure"
	ChargePointErrorCodeHighTemperature              ChargePointErrorCode = "HighTemperature"
	ChargePointErrorCodeInternalError                ChargePointErrorCode = "InternalError"
	ChargePointErrorCodeLocalListConflict            ChargePointErrorCode = "LocalListConflict"
	ChargePointErrorCodeNoError                      ChargePointErrorCode = "NoError"
	ChargePointErrorCodeOtherError                   ChargePointErrorCode = "OtherError"
	ChargePointErrorCodeOverCurrentFailure           ChargePointErrorCode = "OverCurrentFailure"
	ChargePointErrorCodeOverVoltage                  ChargePointErrorCode = "OverVoltage"
	ChargePointErrorCodePowerMeterFailure            ChargePointErrorCode = "PowerMeterFailure"
	ChargePointErrorCodePowerSwitchFailure           ChargePointErrorCode = "PowerSwitchFailure"
	ChargePointErrorCodeReaderFailure                ChargePointErrorCode = "ReaderFailure"
	ChargePointErrorCodeResetFailure                 ChargePointErrorCode = "ResetFailure"
	ChargePointErrorCodeUnderVoltage                 ChargePointErrorCode = "UnderVoltage"
	ChargePointErrorCodeWeakSignal                   ChargePointErrorCode = "WeakSignal"
)

// RegistrationStatus is the central system's BootNotification verdict.
type RegistrationStatus string

const (
	RegistrationStatusAccepted RegistrationStatus = "Accepted"
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

// AuthorizationStatus is the verdict carried by an IdTagInfo.
type AuthorizationStatus string

const (
	AuthorizationStatusAccepted     AuthorizationStatus = "Accepted"
	AuthorizationStatusBlocked      AuthorizationStatus = "Blocked"
	AuthorizationStatusExpired      AuthorizationStatus = "Expired"
	AuthorizationStatusInvalid      AuthorizationStatus = "Invalid"
	AuthorizationStatusConcurrentTx AuthorizationStatus = "ConcurrentTx"
)

// ResetType selects a hard or soft reset.
type ResetType string

const (
	ResetTypeHard ResetType = "Hard"
	ResetTypeSoft ResetType = "Soft"
)

// AvailabilityType is the requested operative/inoperative state.
type AvailabilityType string

const (
	AvailabilityTypeInoperative AvailabilityType = "Inoperative"
	AvailabilityTypeOperative   AvailabilityType = "Operative"
)

// AvailabilityStatus is the response to a ChangeAvailability request.
type AvailabilityStatus string

const (
	AvailabilityStatusAccepted  AvailabilityStatus = "Accepted"
	AvailabilityStatusRejected  AvailabilityStatus = "Rejected"
	AvailabilityStatusScheduled AvailabilityStatus = "Scheduled"
)

// ConfigurationStatus is the response to a ChangeConfiguration request.
type ConfigurationStatus string

const (
	ConfigurationStatusAccepted       ConfigurationStatus = "Accepted"
	ConfigurationStatusRejected       ConfigurationStatus = "Rejected"
	ConfigurationStatusRebootRequired ConfigurationStatus = "RebootRequired"
	ConfigurationStatusNotSupported   ConfigurationStatus = "NotSupported"
)

// ClearCacheStatus is the response to a ClearCache request.
type ClearCacheStatus string

const (
	ClearCacheStatusAccepted ClearCacheStatus = "Accepted"
	ClearCacheStatusRejected ClearCacheStatus = "Rejected"
)

// UnlockStatus is the response to an UnlockConnector request.
type UnlockStatus string

const (
	UnlockStatusUnlocked         UnlockStatus = "Unlocked"
	UnlockStatusUnlockFailed     UnlockStatus = "UnlockFailed"
	UnlockStatusNotSupported     UnlockStatus = "NotSupported"
	UnlockStatusOngoingAuthorizedTransaction UnlockStatus = "OngoingAuthorizedTransaction"
)

// Reason is the stop reason of a transaction.
type Reason string

const (
	ReasonEmergencyStop     Reason = "EmergencyStop"
	ReasonEVDisconnected    Reason = "EVDisconnected"
	ReasonHardReset         Reason = "HardReset"
	ReasonLocal             Reason = "Local"
	ReasonOther             Reason = "Other"
	ReasonPowerLoss         Reason = "PowerLoss"
	ReasonReboot            Reason = "Reboot"
	ReasonRemote            Reason = "Remote"
	ReasonSoftReset         Reason = "SoftReset"
	ReasonUnlockCommand     Reason = "UnlockCommand"
	ReasonDeAuthorized      Reason = "DeAuthorized"
)

// RemoteStartStopStatus is the response to a remote start/stop request.
type RemoteStartStopStatus string

const (
	RemoteStartStopStatusAccepted RemoteStartStopStatus = "Accepted"
	RemoteStartStopStatusRejected RemoteStartStopStatus = "Rejected"
)

// DateTime wraps time.Time to marshal in OCPP's RFC3339 wire format.
type DateTime struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (dt DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.Time.Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (dt *DateTime) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" {
		return nil
	}
	str = str[1 : len(str)-1] // strip quotes
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	dt.Time = t
	return nil
}

// IdToken is a bare OCPP identifier token.
type IdToken struct {
	IdToken string `json:"idToken" validate:"required,max=20"`
}

// IdTagInfo carries the authorization verdict for an idTag.
type IdTagInfo struct {
	ExpiryDate  *DateTime            `json:"expiryDate,omitempty"`
	ParentIdTag *string              `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	Status      AuthorizationStatus  `json:"status" validate:"required"`
}

// KeyValue is one configuration entry.
type KeyValue struct {
	Key      string  `json:"key" validate:"required,max=50"`
	Readonly bool    `json:"readonly"`
	Value    *string `json:"value,omitempty" validate:"omitempty,max=500"`
}

// MeterValue is one timestamped group of sampled readings.
type MeterValue struct {
	Timestamp    DateTime      `json:"timestamp" validate:"required"`
	SampledValue []SampledValue `json:"sampledValue" validate:"required,min=1"`
}

// SampledValue is one measurement within a MeterValue.
type SampledValue struct {
	Value     string     `json:"value" validate:"required"`
	Context   *ReadingContext `json:"context,omitempty"`
	Format    *ValueFormat    `json:"format,omitempty"`
	Measurand *Measurand      `json:"measurand,omitempty"`
	Phase     *Phase          `json:"phase,omitempty"`
	Location  *Location       `json:"location,omitempty"`
	Unit      *UnitOfMeasure  `json:"unit,omitempty"`
}

// ReadingContext explains why a sample was taken.
type ReadingContext string

const (
	ReadingContextInterruptionBegin ReadingContext = "Interruption.Begin"
	ReadingContextInterruptionEnd   ReadingContext = "Interruption.End"
	ReadingContextSampleClock       ReadingContext = "Sample.Clock"
	ReadingContextSamplePeriodic    ReadingContext = "Sample.Periodic"
	ReadingContextTransactionBegin  ReadingContext = "Transaction.Begin"
	ReadingContextTransactionEnd    ReadingContext = "Transaction.End"
	ReadingContextTrigger           ReadingContext = "Trigger"
	ReadingContextOther             ReadingContext = "Other"
)

// ValueFormat is the encoding of SampledValue.Value.
type ValueFormat string

const (
	ValueFormatRaw       ValueFormat = "Raw"
	ValueFormatSignedData ValueFormat = "SignedData"
)

// Measurand is the physical quantity a SampledValue reports.
type Measurand string

const (
	MeasurandCurrentExport                Measurand = "Current.Export"
	MeasurandCurrentImport                Measurand = "Current.Import"
	MeasurandCurrentOffered               Measurand = "Current.Offered"
	MeasurandEnergyActiveExportRegister   Measurand = "Energy.Active.Export.Register"
	MeasurandEnergyActiveImportRegister   Measurand = "Energy.Active.Import.Register"
	MeasurandEnergyReactiveExportRegister Measurand = "Energy.Reactive.Export.Register"
	MeasurandEnergyReactiveImportRegister Measurand = "Energy.Reactive.Import.Register"
	MeasurandEnergyActiveExportInterval   Measurand = "Energy.Active.Export.Interval"
	MeasurandEnergyActiveImportInterval   Measurand = "Energy.Active.Import.Interval"
	MeasurandEnergyReactiveExportInterval Measurand = "Energy.Reactive.Export.Interval"
	MeasurandEnergyReactiveImportInterval Measurand = "Energy.Reactive.Import.Interval"
	MeasurandFrequency                    Measurand = "Frequency"
	MeasurandPowerActiveExport            Measurand = "Power.Active.Export"
	MeasurandPowerActiveImport            Measurand = "Power.Active.Import"
	MeasurandPowerFactor                  Measurand = "Power.Factor"
	MeasurandPowerOffered                 Measurand = "Power.Offered"
	MeasurandPowerReactiveExport          Measurand = "Power.Reactive.Export"
	MeasurandPowerReactiveImport          Measurand = "Power.Reactive.Import"
	MeasurandRPM                          Measurand = "RPM"
	MeasurandSoC                          Measurand = "SoC"
	MeasurandTemperature                  Measurand = "Temperature"
	MeasurandVoltage                      Measurand = "Voltage"
)

// Phase identifies the electrical phase a SampledValue was taken on.
type Phase string

const (
	PhaseL1   Phase = "L1"
	PhaseL2   Phase = "L2"
	PhaseL3   Phase = "L3"
	PhaseN    Phase = "N"
	PhaseL1N  Phase = "L1-N"
	PhaseL2N  Phase = "L2-N"
	PhaseL3N  Phase = "L3-N"
	PhaseL1L2 Phase = "L1-L2"
	PhaseL2L3 Phase = "L2-L3"
	PhaseL3L1 Phase = "L3-L1"
)

// Location is the measurement point of a SampledValue.
type Location string

const (
	LocationBody   Location = "Body"
	LocationCable  Location = "Cable"
	LocationEV     Location = "EV"
	LocationInlet  Location = "Inlet"
	LocationOutlet Location = "Outlet"
)

// UnitOfMeasure is the unit of a SampledValue.
type UnitOfMeasure string

const (
	UnitOfMeasureWh       UnitOfMeasure = "Wh"
	UnitOfMeasureKWh      UnitOfMeasure = "kWh"
	UnitOfMeasureVarh     UnitOfMeasure = "varh"
	UnitOfMeasureKvarh    UnitOfMeasure = "kvarh"
	UnitOfMeasureW        UnitOfMeasure = "W"
	UnitOfMeasureKW       UnitOfMeasure = "kW"
	UnitOfMeasureVA       UnitOfMeasure = "VA"
	UnitOfMeasureKVA      UnitOfMeasure = "kVA"
	UnitOfMeasureVar      UnitOfMeasure = "var"
	UnitOfMeasureKvar     UnitOfMeasure = "kvar"
	UnitOfMeasureA        UnitOfMeasure = "A"
	UnitOfMeasureV        UnitOfMeasure = "V"
	UnitOfMeasureCelsius  UnitOfMeasure = "Celsius"
	UnitOfMeasureFahrenheit UnitOfMeasure = "Fahrenheit"
	UnitOfMeasureK        UnitOfMeasure = "K"
	UnitOfMeasurePercent  UnitOfMeasure = "Percent"
)

// ReservationStatus is the response to a ReserveNow request.
type ReservationStatus string

const (
	ReservationStatusAccepted   ReservationStatus = "Accepted"
	ReservationStatusFaulted    ReservationStatus = "Faulted"
	ReservationStatusOccupied   ReservationStatus = "Occupied"
	ReservationStatusRejected   ReservationStatus = "Rejected"
	ReservationStatusUnavailable ReservationStatus = "Unavailable"
)

// CancelReservationStatus is the response to a CancelReservation request.
type CancelReservationStatus string

const (
	CancelReservationStatusAccepted CancelReservationStatus = "Accepted"
	CancelReservationStatusRejected CancelReservationStatus = "Rejected"
)

// UpdateType distinguishes a full Local Authorization List replacement from
// a differential one.
type UpdateType string

const (
	UpdateTypeDifferential UpdateType = "Differential"
	UpdateTypeFull         UpdateType = "Full"
)

// UpdateStatus is the response to a SendLocalList request.
type UpdateStatus string

const (
	UpdateStatusAccepted       UpdateStatus = "Accepted"
	UpdateStatusFailed         UpdateStatus = "Failed"
	UpdateStatusNotSupported   UpdateStatus = "NotSupported"
	UpdateStatusVersionMismatch UpdateStatus = "VersionMismatch"
)

// ChargingProfileStatus is the response to a SetChargingProfile request.
type ChargingProfileStatus string

const (
	ChargingProfileStatusAccepted    ChargingProfileStatus = "Accepted"
	ChargingProfileStatusRejected    ChargingProfileStatus = "Rejected"
	ChargingProfileStatusNotSupported ChargingProfileStatus = "NotSupported"
)

// ClearChargingProfileStatus is the response to a ClearChargingProfile request.
type ClearChargingProfileStatus string

const (
	ClearChargingProfileStatusAccepted ClearChargingProfileStatus = "Accepted"
	ClearChargingProfileStatusUnknown  ClearChargingProfileStatus = "Unknown"
)

// GetCompositeScheduleStatus is the response status to a
// GetCompositeSchedule request.
type GetCompositeScheduleStatus string

const (
	GetCompositeScheduleStatusAccepted GetCompositeScheduleStatus = "Accepted"
	GetCompositeScheduleStatusRejected GetCompositeScheduleStatus = "Rejected"
)

// MessageTrigger is the kind of report a TriggerMessage asks for.
type MessageTrigger string

const (
	MessageTriggerBootNotification         MessageTrigger = "BootNotification"
	MessageTriggerDiagnosticsStatusNotification MessageTrigger = "DiagnosticsStatusNotification"
	MessageTriggerFirmwareStatusNotification MessageTrigger = "FirmwareStatusNotification"
	MessageTriggerHeartbeat                MessageTrigger = "Heartbeat"
	MessageTriggerMeterValues              MessageTrigger = "MeterValues"
	MessageTriggerStatusNotification        MessageTrigger = "StatusNotification"
)

// MessageTriggerExtended extends MessageTrigger with the Security extension
// targets carried by ExtendedTriggerMessage.req.
type MessageTriggerExtended string

const (
	MessageTriggerExtendedBootNotification              MessageTriggerExtended = "BootNotification"
	MessageTriggerExtendedLogStatusNotification         MessageTriggerExtended = "LogStatusNotification"
	MessageTriggerExtendedFirmwareStatusNotification    MessageTriggerExtended = "FirmwareStatusNotification"
	MessageTriggerExtendedHeartbeat                     MessageTriggerExtended = "Heartbeat"
	MessageTriggerExtendedMeterValues                   MessageTriggerExtended = "MeterValues"
	MessageTriggerExtendedSignChargePointCertificate    MessageTriggerExtended = "SignChargePointCertificate"
	MessageTriggerExtendedStatusNotification            MessageTriggerExtended = "StatusNotification"
)

// TriggerMessageStatus is the response to a TriggerMessage/
// ExtendedTriggerMessage request.
type TriggerMessageStatus string

const (
	TriggerMessageStatusAccepted       TriggerMessageStatus = "Accepted"
	TriggerMessageStatusRejected       TriggerMessageStatus = "Rejected"
	TriggerMessageStatusNotImplemented TriggerMessageStatus = "NotImplemented"
)

// DiagnosticsStatus is the current phase of a diagnostics upload job.
type DiagnosticsStatus string

const (
	DiagnosticsStatusIdle        DiagnosticsStatus = "Idle"
	DiagnosticsStatusUploaded    DiagnosticsStatus = "Uploaded"
	DiagnosticsStatusUploadFailed DiagnosticsStatus = "UploadFailed"
	DiagnosticsStatusUploading   DiagnosticsStatus = "Uploading"
)

// FirmwareStatus is the current phase of a firmware update job.
type FirmwareStatus string

const (
	FirmwareStatusDownloaded        FirmwareStatus = "Downloaded"
	FirmwareStatusDownloadFailed    FirmwareStatus = "DownloadFailed"
	FirmwareStatusDownloading       FirmwareStatus = "Downloading"
	FirmwareStatusIdle              FirmwareStatus = "Idle"
	FirmwareStatusInstallationFailed FirmwareStatus = "InstallationFailed"
	FirmwareStatusInstalling        FirmwareStatus = "Installing"
	FirmwareStatusInstalled         FirmwareStatus = "Installed"
)

// CertificateSignedStatus is the response to a CertificateSigned request.
type CertificateSignedStatus string

const (
	CertificateSignedStatusAccepted CertificateSignedStatus = "Accepted"
	CertificateSignedStatusRejected CertificateSignedStatus = "Rejected"
)

// CertificateStatus is the response to an InstallCertificate request.
type CertificateStatus string

const (
	CertificateStatusAccepted CertificateStatus = "Accepted"
	CertificateStatusFailed   CertificateStatus = "Failed"
	CertificateStatusRejected CertificateStatus = "Rejected"
)

// DeleteCertificateStatus is the response to a DeleteCertificate request.
type DeleteCertificateStatus string

const (
	DeleteCertificateStatusAccepted      DeleteCertificateStatus = "Accepted"
	DeleteCertificateStatusFailed        DeleteCertificateStatus = "Failed"
	DeleteCertificateStatusNotFound      DeleteCertificateStatus = "NotFound"
)

// CertificateUseType distinguishes which root store a certificate belongs to.
type CertificateUseType string

const (
	CertificateUseCentralSystemRootCertificate CertificateUseType = "CentralSystemRootCertificate"
	CertificateUseManufacturerRootCertificate  CertificateUseType = "ManufacturerRootCertificate"
)

// LogType distinguishes a diagnostics log from a security log upload.
type LogType string

const (
	LogTypeDiagnosticsLog LogType = "DiagnosticsLog"
	LogTypeSecurityLog    LogType = "SecurityLog"
)

// LogStatus is the current phase of a log upload job.
type LogStatus string

const (
	LogStatusBadMessage     LogStatus = "BadMessage"
	LogStatusIdle           LogStatus = "Idle"
	LogStatusNotSupportedOp LogStatus = "NotSupportedOperation"
	LogStatusPermissionDenied LogStatus = "PermissionDenied"
	LogStatusUploaded       LogStatus = "Uploaded"
	LogStatusUploadFailure  LogStatus = "UploadFailure"
	LogStatusUploading      LogStatus = "Uploading"
)

// LogStatusRequestStatus is the response to a GetLog request.
type LogStatusRequestStatus string

const (
	LogStatusRequestAccepted       LogStatusRequestStatus = "Accepted"
	LogStatusRequestRejected       LogStatusRequestStatus = "Rejected"
	LogStatusRequestAcceptedCanceled LogStatusRequestStatus = "AcceptedCanceled"
)

// UpdateFirmwareStatus is the response to a SignedUpdateFirmware request.
type UpdateFirmwareStatus string

const (
	UpdateFirmwareStatusAccepted       UpdateFirmwareStatus = "Accepted"
	UpdateFirmwareStatusRejected       UpdateFirmwareStatus = "Rejected"
	UpdateFirmwareStatusAcceptedCanceled UpdateFirmwareStatus = "AcceptedCanceled"
	UpdateFirmwareStatusInvalidCertificate UpdateFirmwareStatus = "InvalidCertificate"
	UpdateFirmwareStatusRevokedCertificate UpdateFirmwareStatus = "RevokedCertificate"
)

// SecurityEvent names a CP-generated security incident, logged and
// optionally reported via SecurityEventNotification.req.
type SecurityEvent string

const (
	SecurityEventFirmwareUpdated                 SecurityEvent = "FirmwareUpdated"
	SecurityEventFailedToAuthenticateAtCentralSystem SecurityEvent = "FailedToAuthenticateAtCentralSystem"
	SecurityEventCentralSystemFailedToAuthenticate SecurityEvent = "CentralSystemFailedToAuthenticate"
	SecurityEventSettingSystemTime                SecurityEvent = "SettingSystemTime"
	SecurityEventStartupOfTheDevice                SecurityEvent = "StartupOfTheDevice"
	SecurityEventResetOrReboot                     SecurityEvent = "ResetOrReboot"
	SecurityEventSecurityLogWasCleared             SecurityEvent = "SecurityLogWasCleared"
	SecurityEventInvalidChargePointCertificate     SecurityEvent = "InvalidChargePointCertificate"
	SecurityEventInvalidCentralSystemCertificate    SecurityEvent = "InvalidCentralSystemCertificate"
	SecurityEventInvalidFirmwareSigningCertificate SecurityEvent = "InvalidFirmwareSigningCertificate"
	SecurityEventInvalidFirmwareSignature           SecurityEvent = "InvalidFirmwareSignature"
	SecurityEventReconfigurationOfSecurityParameters SecurityEvent = "ReconfigurationOfSecurityParameters"
	SecurityEventMemoryExhaustion                   SecurityEvent = "MemoryExhaustion"
	SecurityEventConnectionLoss                     SecurityEvent = "ConnectionLoss"
)

// AuthorizationData describes one entry of a SendLocalList update.
type AuthorizationData struct {
	IdTag     string     `json:"idTag" validate:"required,max=20"`
	IdTagInfo *IdTagInfo `json:"idTagInfo,omitempty"`
}
