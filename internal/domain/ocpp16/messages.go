package ocpp16

// Message is the generic decoded shape of any OCPP-J frame; CallMessage,
// CallResultMessage and CallErrorMessage are its three concrete variants.
type Message struct {
	MessageTypeID MessageType `json:"messageTypeId"`
	MessageID     string      `json:"messageId"`
	Action        Action      `json:"action,omitempty"`
	Payload       interface{} `json:"payload,omitempty"`
}

// CallMessage is a request frame: [2, messageId, action, payload].
type CallMessage struct {
	MessageTypeID MessageType `json:"messageTypeId"`
	MessageID     string      `json:"messageId"`
	Action        Action      `json:"action"`
	Payload       interface{} `json:"payload"`
}

// CallResultMessage is a response frame: [3, messageId, payload].
type CallResultMessage struct {
	MessageTypeID MessageType `json:"messageTypeId"`
	MessageID     string      `json:"messageId"`
	Payload       interface{} `json:"payload"`
}

// CallErrorMessage is an error frame:
// [4, messageId, errorCode, errorDescription, errorDetails].
type CallErrorMessage struct {
	MessageTypeID    MessageType `json:"messageTypeId"`
	MessageID        string      `json:"messageId"`
	ErrorCode        string      `json:"errorCode"`
	ErrorDescription string      `json:"errorDescription"`
	ErrorDetails     interface{} `json:"errorDetails,omitempty"`
}

// BootNotificationRequest is sent once at startup and after every boot
// registration rejection/pending retry.
type BootNotificationRequest struct {
	ChargePointVendor       string  `json:"chargePointVendor" validate:"required,max=20"`
	ChargePointModel        string  `json:"chargePointModel" validate:"required,max=20"`
	ChargePointSerialNumber *string `json:"chargePointSerialNumber,omitempty" validate:"omitempty,max=25"`
	ChargeBoxSerialNumber   *string `json:"chargeBoxSerialNumber,omitempty" validate:"omitempty,max=25"`
	FirmwareVersion         *string `json:"firmwareVersion,omitempty" validate:"omitempty,max=50"`
	Iccid                   *string `json:"iccid,omitempty" validate:"omitempty,max=20"`
	Imsi                    *string `json:"imsi,omitempty" validate:"omitempty,max=20"`
	MeterType               *string `json:"meterType,omitempty" validate:"omitempty,max=25"`
	MeterSerialNumber       *string `json:"meterSerialNumber,omitempty" validate:"omitempty,max=25"`
}

// BootNotificationResponse carries the registration verdict and heartbeat interval.
type BootNotificationResponse struct {
	Status      RegistrationStatus `json:"status" validate:"required"`
	CurrentTime DateTime           `json:"currentTime" validate:"required"`
	Interval    int                `json:"interval" validate:"required,min=0"`
}

// HeartbeatRequest carries no fields.
type HeartbeatRequest struct{}

// HeartbeatResponse returns the central system's clock.
type HeartbeatResponse struct {
	CurrentTime DateTime `json:"currentTime" validate:"required"`
}

// StatusNotificationRequest reports a connector's status transition.
type StatusNotificationRequest struct {
	ConnectorId     int                   `json:"connectorId" validate:"required,min=0"`
	ErrorCode       ChargePointErrorCode  `json:"errorCode" validate:"required"`
	Info            *string               `json:"info,omitempty" validate:"omitempty,max=50"`
	Status          ChargePointStatus     `json:"status" validate:"required"`
	Timestamp       *DateTime             `json:"timestamp,omitempty"`
	VendorId        *string               `json:"vendorId,omitempty" validate:"omitempty,max=255"`
	VendorErrorCode *string               `json:"vendorErrorCode,omitempty" validate:"omitempty,max=50"`
}

// StatusNotificationResponse carries no fields.
type StatusNotificationResponse struct{}

// AuthorizeRequest asks the central system to authorize an idTag.
type AuthorizeRequest struct {
	IdTag string `json:"idTag" validate:"required,max=20"`
}

// AuthorizeResponse carries the authorization verdict.
type AuthorizeResponse struct {
	IdTagInfo IdTagInfo `json:"idTagInfo" validate:"required"`
}

// StartTransactionRequest opens a transaction on a connector.
type StartTransactionRequest struct {
	ConnectorId   int       `json:"connectorId" validate:"required,min=1"`
	IdTag         string    `json:"idTag" validate:"required,max=20"`
	MeterStart    int       `json:"meterStart" validate:"required,min=0"`
	ReservationId *int      `json:"reservationId,omitempty"`
	Timestamp     DateTime  `json:"timestamp" validate:"required"`
}

// StartTransactionResponse assigns the transaction id.
type StartTransactionResponse struct {
	IdTagInfo     IdTagInfo `json:"idTagInfo" validate:"required"`
	TransactionId int       `json:"transactionId" validate:"required"`
}

// StopTransactionRequest closes a transaction.
type StopTransactionRequest struct {
	IdTag             *string       `json:"idTag,omitempty" validate:"omitempty,max=20"`
	MeterStop         int           `json:"meterStop" validate:"required,min=0"`
	Timestamp         DateTime      `json:"timestamp" validate:"required"`
	TransactionId     int           `json:"transactionId" validate:"required"`
	Reason            *Reason       `json:"reason,omitempty"`
	TransactionData   []MeterValue  `json:"transactionData,omitempty"`
}

// StopTransactionResponse optionally re-authorizes the stopping idTag.
type StopTransactionResponse struct {
	IdTagInfo *IdTagInfo `json:"idTagInfo,omitempty"`
}

// MeterValuesRequest reports one or more sampled meter readings.
type MeterValuesRequest struct {
	ConnectorId     int          `json:"connectorId" validate:"required,min=0"`
	TransactionId   *int         `json:"transactionId,omitempty"`
	MeterValue      []MeterValue `json:"meterValue" validate:"required,min=1"`
}

// MeterValuesResponse carries no fields.
type MeterValuesResponse struct{}

// DataTransferRequest carries a vendor-specific payload.
type DataTransferRequest struct {
	VendorId  string      `json:"vendorId" validate:"required,max=255"`
	MessageId *string     `json:"messageId,omitempty" validate:"omitempty,max=50"`
	Data      interface{} `json:"data,omitempty"`
}

// DataTransferResponse carries the vendor's reply.
type DataTransferResponse struct {
	Status DataTransferStatus `json:"status" validate:"required"`
	Data   interface{}        `json:"data,omitempty"`
}

// DataTransferStatus is the response to a DataTransfer request.
type DataTransferStatus string

const (
	DataTransferStatusAccepted         DataTransferStatus = "Accepted"
	DataTransferStatusRejected         DataTransferStatus = "Rejected"
	DataTransferStatusUnknownMessageId DataTransferStatus = "UnknownMessageId"
	DataTransferStatusUnknownVendorId  DataTransferStatus = "UnknownVendorId"
)

// ResetRequest asks the charge point to reboot.
type ResetRequest struct {
	Type ResetType `json:"type" validate:"required"`
}

// ResetResponse is the response to a Reset request.
type ResetResponse struct {
	Status ResetStatus `json:"status" validate:"required"`
}

// ResetStatus is the response to a Reset request.
type ResetStatus string

const (
	ResetStatusAccepted ResetStatus = "Accepted"
	ResetStatusRejected ResetStatus = "Rejected"
)

// ChangeAvailabilityRequest asks to change a connector's operative state.
type ChangeAvailabilityRequest struct {
	ConnectorId int              `json:"connectorId" validate:"required,min=0"`
	Type        AvailabilityType `json:"type" validate:"required"`
}

// ChangeAvailabilityResponse is the response to a ChangeAvailability request.
type ChangeAvailabilityResponse struct {
	Status AvailabilityStatus `json:"status" validate:"required"`
}

// GetConfigurationRequest asks for the value of one or more keys.
type GetConfigurationRequest struct {
	Key []string `json:"key,omitempty"`
}

// GetConfigurationResponse returns known and unknown configuration keys.
type GetConfigurationResponse struct {
	ConfigurationKey []KeyValue `json:"configurationKey,omitempty"`
	UnknownKey       []string   `json:"unknownKey,omitempty"`
}

// ChangeConfigurationRequest asks to set one configuration key.
type ChangeConfigurationRequest struct {
	Key   string `json:"key" validate:"required,max=50"`
	Value string `json:"value" validate:"required,max=500"`
}

// ChangeConfigurationResponse is the response to a ChangeConfiguration request.
type ChangeConfigurationResponse struct {
	Status ConfigurationStatus `json:"status" validate:"required"`
}

// ClearCacheRequest asks to clear the authorization cache.
type ClearCacheRequest struct{}

// ClearCacheResponse is the response to a ClearCache request.
type ClearCacheResponse struct {
	Status ClearCacheStatus `json:"status" validate:"required"`
}

// UnlockConnectorRequest asks to unlock a connector's plug.
type UnlockConnectorRequest struct {
	ConnectorId int `json:"connectorId" validate:"required,min=1"`
}

// UnlockConnectorResponse is the response to an UnlockConnector request.
type UnlockConnectorResponse struct {
	Status UnlockStatus `json:"status" validate:"required"`
}

// RemoteStartTransactionRequest asks the charge point to start a transaction.
type RemoteStartTransactionRequest struct {
	ConnectorId   *int                `json:"connectorId,omitempty" validate:"omitempty,min=1"`
	IdTag         string              `json:"idTag" validate:"required,max=20"`
	ChargingProfile *ChargingProfile  `json:"chargingProfile,omitempty"`
}

// RemoteStartTransactionResponse is the response to a RemoteStartTransaction request.
type RemoteStartTransactionResponse struct {
	Status RemoteStartStopStatus `json:"status" validate:"required"`
}

// RemoteStopTransactionRequest asks the charge point to stop a transaction.
type RemoteStopTransactionRequest struct {
	TransactionId int `json:"transactionId" validate:"required"`
}

// RemoteStopTransactionResponse is the response to a RemoteStopTransaction request.
type RemoteStopTransactionResponse struct {
	Status RemoteStartStopStatus `json:"status" validate:"required"`
}

// ChargingProfile describes a charging schedule and where it applies.
type ChargingProfile struct {
	ChargingProfileId      int                    `json:"chargingProfileId" validate:"required"`
	TransactionId          *int                   `json:"transactionId,omitempty"`
	StackLevel             int                    `json:"stackLevel" validate:"required,min=0"`
	ChargingProfilePurpose ChargingProfilePurpose `json:"chargingProfilePurpose" validate:"required"`
	ChargingProfileKind    ChargingProfileKind    `json:"chargingProfileKind" validate:"required"`
	RecurrencyKind         *RecurrencyKind        `json:"recurrencyKind,omitempty"`
	ValidFrom              *DateTime              `json:"validFrom,omitempty"`
	ValidTo                *DateTime              `json:"validTo,omitempty"`
	ChargingSchedule       ChargingSchedule       `json:"chargingSchedule" validate:"required"`
}

// ChargingProfilePurpose names which profile stack a ChargingProfile belongs to.
type ChargingProfilePurpose string

const (
	ChargingProfilePurposeChargePointMaxProfile ChargingProfilePurpose = "ChargePointMaxProfile"
	ChargingProfilePurposeTxDefaultProfile      ChargingProfilePurpose = "TxDefaultProfile"
	ChargingProfilePurposeTxProfile             ChargingProfilePurpose = "TxProfile"
)

// ChargingProfileKind is the scheduling kind of a ChargingProfile.
type ChargingProfileKind string

const (
	ChargingProfileKindAbsolute  ChargingProfileKind = "Absolute"
	ChargingProfileKindRecurring ChargingProfileKind = "Recurring"
	ChargingProfileKindRelative  ChargingProfileKind = "Relative"
)

// RecurrencyKind is the recurrence period of a Recurring profile.
type RecurrencyKind string

const (
	RecurrencyKindDaily  RecurrencyKind = "Daily"
	RecurrencyKindWeekly RecurrencyKind = "Weekly"
)

// ChargingSchedule is an ordered list of charging rate limits over time.
type ChargingSchedule struct {
	Duration               *int                     `json:"duration,omitempty" validate:"omitempty,min=0"`
	StartSchedule          *DateTime                `json:"startSchedule,omitempty"`
	ChargingRateUnit       ChargingRateUnit         `json:"chargingRateUnit" validate:"required"`
	ChargingSchedulePeriod []ChargingSchedulePeriod `json:"chargingSchedulePeriod" validate:"required,min=1"`
	MinChargingRate        *float64                 `json:"minChargingRate,omitempty"`
}

// ChargingRateUnit is the unit a ChargingSchedulePeriod's Limit is expressed in.
type ChargingRateUnit string

const (
	ChargingRateUnitW ChargingRateUnit = "W"
	ChargingRateUnitA ChargingRateUnit = "A"
)

// ChargingSchedulePeriod is one rate limit valid from StartPeriod onward.
type ChargingSchedulePeriod struct {
	StartPeriod  int      `json:"startPeriod" validate:"required,min=0"`
	Limit        float64  `json:"limit" validate:"required"`
	NumberPhases *int     `json:"numberPhases,omitempty" validate:"omitempty,min=1,max=3"`
}

// GetLocalListVersionRequest asks for the current Local Authorization List
// version.
type GetLocalListVersionRequest struct{}

// GetLocalListVersionResponse carries the list version, -1 if the charge
// point has no Local Authorization List installed.
type GetLocalListVersionResponse struct {
	ListVersion int `json:"listVersion" validate:"required"`
}

// SendLocalListRequest carries a full or differential Local Authorization
// List update.
type SendLocalListRequest struct {
	ListVersion            int                 `json:"listVersion" validate:"required"`
	LocalAuthorizationList []AuthorizationData `json:"localAuthorizationList,omitempty"`
	UpdateType             UpdateType          `json:"updateType" validate:"required"`
}

// SendLocalListResponse is the response to a SendLocalList request.
type SendLocalListResponse struct {
	Status UpdateStatus `json:"status" validate:"required"`
}

// ReserveNowRequest asks the charge point to reserve a connector for an
// idTag until ExpiryDate.
type ReserveNowRequest struct {
	ConnectorId   int       `json:"connectorId" validate:"required,min=0"`
	ExpiryDate    DateTime  `json:"expiryDate" validate:"required"`
	IdTag         string    `json:"idTag" validate:"required,max=20"`
	ParentIdTag   *string   `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	ReservationId int       `json:"reservationId" validate:"required"`
}

// ReserveNowResponse is the response to a ReserveNow request.
type ReserveNowResponse struct {
	Status ReservationStatus `json:"status" validate:"required"`
}

// CancelReservationRequest asks the charge point to cancel a reservation.
type CancelReservationRequest struct {
	ReservationId int `json:"reservationId" validate:"required"`
}

// CancelReservationResponse is the response to a CancelReservation request.
type CancelReservationResponse struct {
	Status CancelReservationStatus `json:"status" validate:"required"`
}

// SetChargingProfileRequest installs a ChargingProfile on a connector
// (connector 0 targets the charge point as a whole).
type SetChargingProfileRequest struct {
	ConnectorId     int             `json:"connectorId" validate:"required,min=0"`
	CsChargingProfiles ChargingProfile `json:"csChargingProfiles" validate:"required"`
}

// SetChargingProfileResponse is the response to a SetChargingProfile request.
type SetChargingProfileResponse struct {
	Status ChargingProfileStatus `json:"status" validate:"required"`
}

// ClearChargingProfileRequest clears one or more installed profiles by id
// or by (connectorId, purpose, stackLevel) criteria.
type ClearChargingProfileRequest struct {
	Id                     *int                    `json:"id,omitempty"`
	ConnectorId            *int                    `json:"connectorId,omitempty"`
	ChargingProfilePurpose *ChargingProfilePurpose `json:"chargingProfilePurpose,omitempty"`
	StackLevel             *int                    `json:"stackLevel,omitempty"`
}

// ClearChargingProfileResponse is the response to a ClearChargingProfile
// request.
type ClearChargingProfileResponse struct {
	Status ClearChargingProfileStatus `json:"status" validate:"required"`
}

// GetCompositeScheduleRequest asks for the resolved schedule that results
// from combining every profile applicable to a connector.
type GetCompositeScheduleRequest struct {
	ConnectorId      int               `json:"connectorId" validate:"required,min=0"`
	Duration         int               `json:"duration" validate:"required,min=0"`
	ChargingRateUnit *ChargingRateUnit `json:"chargingRateUnit,omitempty"`
}

// GetCompositeScheduleResponse carries the resolved schedule, when accepted.
type GetCompositeScheduleResponse struct {
	Status           GetCompositeScheduleStatus `json:"status" validate:"required"`
	ConnectorId      *int                       `json:"connectorId,omitempty"`
	ScheduleStart    *DateTime                  `json:"scheduleStart,omitempty"`
	ChargingSchedule *ChargingSchedule          `json:"chargingSchedule,omitempty"`
}

// TriggerMessageRequest asks the charge point to (re)send a Core profile
// message.
type TriggerMessageRequest struct {
	RequestedMessage MessageTrigger `json:"requestedMessage" validate:"required"`
	ConnectorId      *int           `json:"connectorId,omitempty" validate:"omitempty,min=1"`
}

// TriggerMessageResponse is the response to a TriggerMessage request.
type TriggerMessageResponse struct {
	Status TriggerMessageStatus `json:"status" validate:"required"`
}

// ExtendedTriggerMessageRequest asks the charge point to (re)send a
// Security extension message.
type ExtendedTriggerMessageRequest struct {
	RequestedMessage MessageTriggerExtended `json:"requestedMessage" validate:"required"`
	ConnectorId      *int                   `json:"connectorId,omitempty" validate:"omitempty,min=1"`
}

// ExtendedTriggerMessageResponse is the response to an
// ExtendedTriggerMessage request.
type ExtendedTriggerMessageResponse struct {
	Status TriggerMessageStatus `json:"status" validate:"required"`
}

// GetDiagnosticsRequest asks the charge point to upload a diagnostics file.
type GetDiagnosticsRequest struct {
	Location      string    `json:"location" validate:"required"`
	Retries       *int      `json:"retries,omitempty"`
	RetryInterval *int      `json:"retryInterval,omitempty"`
	StartTime     *DateTime `json:"startTime,omitempty"`
	StopTime      *DateTime `json:"stopTime,omitempty"`
}

// GetDiagnosticsResponse optionally names the file that will be uploaded.
type GetDiagnosticsResponse struct {
	FileName *string `json:"fileName,omitempty" validate:"omitempty,max=255"`
}

// DiagnosticsStatusNotificationRequest reports the phase of a diagnostics
// upload job.
type DiagnosticsStatusNotificationRequest struct {
	Status DiagnosticsStatus `json:"status" validate:"required"`
}

// DiagnosticsStatusNotificationResponse carries no fields.
type DiagnosticsStatusNotificationResponse struct{}

// UpdateFirmwareRequest asks the charge point to download and install new
// firmware.
type UpdateFirmwareRequest struct {
	Location      string    `json:"location" validate:"required"`
	Retries       *int      `json:"retries,omitempty"`
	RetrieveDate  DateTime  `json:"retrieveDate" validate:"required"`
	RetryInterval *int      `json:"retryInterval,omitempty"`
}

// UpdateFirmwareResponse carries no fields.
type UpdateFirmwareResponse struct{}

// FirmwareStatusNotificationRequest reports the phase of a firmware update
// job.
type FirmwareStatusNotificationRequest struct {
	Status FirmwareStatus `json:"status" validate:"required"`
}

// FirmwareStatusNotificationResponse carries no fields.
type FirmwareStatusNotificationResponse struct{}

// SignCertificateRequest submits a PEM-encoded CSR for central system
// signing.
type SignCertificateRequest struct {
	Csr string `json:"csr" validate:"required,max=5500"`
}

// SignCertificateResponse is the response to a SignCertificate request.
type SignCertificateResponse struct {
	Status CertificateSignedStatus `json:"status" validate:"required"`
}

// CertificateSignedRequest delivers a signed certificate chain to install.
type CertificateSignedRequest struct {
	CertificateChain string `json:"certificateChain" validate:"required,max=10000"`
}

// CertificateSignedResponse is the response to a CertificateSigned request.
type CertificateSignedResponse struct {
	Status CertificateSignedStatus `json:"status" validate:"required"`
}

// InstallCertificateRequest asks the charge point to install a CA
// certificate.
type InstallCertificateRequest struct {
	CertificateType CertificateUseType `json:"certificateType" validate:"required"`
	Certificate     string             `json:"certificate" validate:"required,max=5500"`
}

// InstallCertificateResponse is the response to an InstallCertificate
// request.
type InstallCertificateResponse struct {
	Status CertificateStatus `json:"status" validate:"required"`
}

// DeleteCertificateRequest asks the charge point to delete an installed CA
// certificate, identified by its hash data.
type DeleteCertificateRequest struct {
	CertificateHashData CertificateHashData `json:"certificateHashData" validate:"required"`
}

// DeleteCertificateResponse is the response to a DeleteCertificate request.
type DeleteCertificateResponse struct {
	Status DeleteCertificateStatus `json:"status" validate:"required"`
}

// CertificateHashData identifies an X.509 certificate without transmitting
// it.
type CertificateHashData struct {
	HashAlgorithm  string `json:"hashAlgorithm" validate:"required"`
	IssuerNameHash string `json:"issuerNameHash" validate:"required,max=128"`
	IssuerKeyHash  string `json:"issuerKeyHash" validate:"required,max=128"`
	SerialNumber   string `json:"serialNumber" validate:"required,max=40"`
}

// GetInstalledCertificateIdsRequest asks for the hash data of every
// installed CA certificate of the given type.
type GetInstalledCertificateIdsRequest struct {
	CertificateType *CertificateUseType `json:"certificateType,omitempty"`
}

// GetInstalledCertificateIdsResponse lists the installed certificates.
type GetInstalledCertificateIdsResponse struct {
	Status               string                `json:"status" validate:"required"`
	CertificateHashData  []CertificateHashData `json:"certificateHashData,omitempty"`
}

// SecurityEventNotificationRequest reports a security incident, optionally
// carrying technical details.
type SecurityEventNotificationRequest struct {
	Type      SecurityEvent `json:"type" validate:"required,max=50"`
	Timestamp DateTime      `json:"timestamp" validate:"required"`
	TechInfo  *string       `json:"techInfo,omitempty" validate:"omitempty,max=255"`
}

// SecurityEventNotificationResponse carries no fields.
type SecurityEventNotificationResponse struct{}

// GetLogRequest asks the charge point to upload a diagnostics or security
// log.
type GetLogRequest struct {
	LogType       LogType   `json:"logType" validate:"required"`
	RequestId     int       `json:"requestId" validate:"required"`
	Retries       *int      `json:"retries,omitempty"`
	RetryInterval *int      `json:"retryInterval,omitempty"`
	Log           LogParameters `json:"log" validate:"required"`
}

// LogParameters bounds the time window and upload destination of a log
// request.
type LogParameters struct {
	RemoteLocation  string    `json:"remoteLocation" validate:"required"`
	OldestTimestamp *DateTime `json:"oldestTimestamp,omitempty"`
	LatestTimestamp *DateTime `json:"latestTimestamp,omitempty"`
}

// GetLogResponse optionally names the file that will be uploaded.
type GetLogResponse struct {
	Status   LogStatusRequestStatus `json:"status" validate:"required"`
	Filename *string                `json:"filename,omitempty" validate:"omitempty,max=255"`
}

// LogStatusNotificationRequest reports the phase of a log upload job.
type LogStatusNotificationRequest struct {
	Status    LogStatus `json:"status" validate:"required"`
	RequestId int       `json:"requestId" validate:"required"`
}

// LogStatusNotificationResponse carries no fields.
type LogStatusNotificationResponse struct{}

// SignedUpdateFirmwareRequest asks the charge point to download and install
// a signed firmware image.
type SignedUpdateFirmwareRequest struct {
	RequestId     int              `json:"requestId" validate:"required"`
	Retries       *int             `json:"retries,omitempty"`
	RetryInterval *int             `json:"retryInterval,omitempty"`
	Firmware      FirmwareImage    `json:"firmware" validate:"required"`
}

// FirmwareImage is a signed firmware download descriptor.
type FirmwareImage struct {
	Location           string   `json:"location" validate:"required"`
	RetrieveDateTime    DateTime `json:"retrieveDateTime" validate:"required"`
	InstallDateTime     *DateTime `json:"installDateTime,omitempty"`
	SigningCertificate  string   `json:"signingCertificate" validate:"required,max=5500"`
	Signature           string   `json:"signature" validate:"required,max=800"`
}

// SignedUpdateFirmwareResponse is the response to a SignedUpdateFirmware
// request.
type SignedUpdateFirmwareResponse struct {
	Status UpdateFirmwareStatus `json:"status" validate:"required"`
}

// SignedFirmwareStatusNotificationRequest reports the phase of a signed
// firmware update job, carrying the RequestId that identifies the job.
type SignedFirmwareStatusNotificationRequest struct {
	Status    FirmwareStatus `json:"status" validate:"required"`
	RequestId *int           `json:"requestId,omitempty"`
}

// SignedFirmwareStatusNotificationResponse carries no fields.
type SignedFirmwareStatusNotificationResponse struct{}
