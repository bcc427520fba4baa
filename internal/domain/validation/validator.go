package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator validates OCPP messages and payloads.
type Validator struct {
	validate *validator.Validate
}

// ValidationError reports one field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// ValidationErrors collects multiple ValidationError values.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// NewValidator builds a Validator with OCPP-specific rules registered.
func NewValidator() *Validator {
	validate := validator.New()
	
	// register OCPP-specific rules
	registerCustomValidations(validate)
	
	return &Validator{
		validate: validate,
	}
}

// ValidateStruct validates s against its `validate` struct tags.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	
	var validationErrors ValidationErrors
	
	if validatorErrors, ok := err.(validator.ValidationErrors); ok {
		for _, validatorError := range validatorErrors {
			validationError := ValidationError{
				Field:   validatorError.Field(),
				Tag:     validatorError.Tag(),
				Value:   fmt.Sprintf("%v", validatorError.Value()),
				Message: getErrorMessage(validatorError),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}
	
	return validationErrors
}

// ValidateJSON checks that data is syntactically valid JSON.
func (v *Validator) ValidateJSON(data []byte) error {
	var temp interface{}
	return json.Unmarshal(data, &temp)
}

// ValidateOCPPMessage validates the envelope and payload of one OCPP-J frame.
func (v *Validator) ValidateOCPPMessage(messageType int, messageID string, action string, payload interface{}) error {
	// message type
	if messageType < 2 || messageType > 4 {
		return ValidationError{
			Field:   "messageType",
			Tag:     "range",
			Value:   strconv.Itoa(messageType),
			Message: "Message type must be 2 (Call), 3 (CallResult), or 4 (CallError)",
		}
	}
	
	// message id
	if messageID == "" {
		return ValidationError{
			Field:   "messageId",
			Tag:     "required",
			Value:   "",
			Message: "Message ID is required",
		}
	}
	
	if len(messageID) > 36 {
		return ValidationError{
			Field:   "messageId",
			Tag:     "max",
			Value:   messageID,
			Message: "Message ID must not exceed 36 characters",
		}
	}
	
	// Call frames must carry a known action
	if messageType == 2 {
		if action == "" {
			return ValidationError{
				Field:   "action",
				Tag:     "required",
				Value:   "",
				Message: "Action is required for Call messages",
			}
		}
		
		if !isValidAction(action) {
			return ValidationError{
				Field:   "action",
				Tag:     "invalid",
				Value:   action,
				Message: "Invalid OCPP action",
			}
		}
	}
	
	// payload
	if payload != nil {
		return v.ValidateStruct(payload)
	}
	
	return nil
}

// registerCustomValidations registers the OCPP-specific validator tags.
func registerCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("ocpp_datetime", validateOCPPDateTime)
	validate.RegisterValidation("ocpp_id_token", validateOCPPIdToken)
	validate.RegisterValidation("ocpp_connector_id", validateOCPPConnectorId)
	validate.RegisterValidation("ocpp_meter_value", validateOCPPMeterValue)
	validate.RegisterValidation("ocpp_status", validateOCPPStatus)
}

// validateOCPPDateTime validates an RFC3339 timestamp string.
func validateOCPPDateTime(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // empty is allowed; required handles mandatoriness separately
	}
	
	// OCPP uses RFC3339
	_, err := time.Parse(time.RFC3339, value)
	return err == nil
}

// validateOCPPIdToken validates an idTag/idToken string.
func validateOCPPIdToken(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	
	// idTag length limit
	if len(value) > 20 {
		return false
	}
	
	// alphanumeric only
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9]+$`, value)
	return matched
}

// validateOCPPConnectorId validates a connector id.
func validateOCPPConnectorId(fl validator.FieldLevel) bool {
	value := fl.Field().Int()
	// connector ids are non-negative
	return value >= 0
}

// validateOCPPMeterValue validates a numeric meter reading string.
func validateOCPPMeterValue(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	
	// must parse as a number
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// validateOCPPStatus validates a ChargePointStatus string.
func validateOCPPStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	
	// valid status values
	validStatuses := map[string]bool{
		"Available":     true,
		"Preparing":     true,
		"Charging":      true,
		"SuspendedEVSE": true,
		"SuspendedEV":   true,
		"Finishing":     true,
		"Reserved":      true,
		"Unavailable":   true,
		"Faulted":       true,
	}
	
	return validStatuses[value]
}

// isValidAction reports whether action names a known OCPP action.
func isValidAction(action string) bool {
	validActions := map[string]bool{
		// Core Profile
		"Authorize":              true,
		"BootNotification":       true,
		"ChangeAvailability":     true,
		"ChangeConfiguration":    true,
		"ClearCache":             true,
		"DataTransfer":           true,
		"GetConfiguration":       true,
		"Heartbeat":              true,
		"MeterValues":            true,
		"RemoteStartTransaction": true,
		"RemoteStopTransaction":  true,
		"Reset":                  true,
		"StartTransaction":       true,
		"StatusNotification":     true,
		"StopTransaction":        true,
		"UnlockConnector":        true,
		
		// Firmware Management Profile
		"GetDiagnostics":                   true,
		"DiagnosticsStatusNotification":    true,
		"FirmwareStatusNotification":       true,
		"UpdateFirmware":                   true,
		
		// Local Auth List Management Profile
		"GetLocalListVersion": true,
		"SendLocalList":       true,
		
		// Reservation Profile
		"CancelReservation": true,
		"ReserveNow":        true,
		
		// Smart Charging Profile
		"ClearChargingProfile": true,
		"GetCompositeSchedule": true,
		"SetChargingProfile":   true,
		
		// Trigger Message Profile
		"TriggerMessage":         true,
		"ExtendedTriggerMessage": true,

		// Security Extension
		"CertificateSigned":                 true,
		"DeleteCertificate":                 true,
		"GetInstalledCertificateIds":        true,
		"InstallCertificate":                true,
		"LogStatusNotification":             true,
		"GetLog":                            true,
		"SecurityEventNotification":         true,
		"SignCertificate":                   true,
		"SignedFirmwareStatusNotification":  true,
		"SignedUpdateFirmware":              true,
	}

	return validActions[action]
}

// getErrorMessage turns a validator.FieldError into a human-readable message.
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must not exceed %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email", fe.Field())
	case "url":
		return fmt.Sprintf("Field '%s' must be a valid URL", fe.Field())
	case "ocpp_datetime":
		return fmt.Sprintf("Field '%s' must be a valid RFC3339 datetime", fe.Field())
	case "ocpp_id_token":
		return fmt.Sprintf("Field '%s' must be a valid ID token (max 20 alphanumeric characters)", fe.Field())
	case "ocpp_connector_id":
		return fmt.Sprintf("Field '%s' must be a valid connector ID (>= 0)", fe.Field())
	case "ocpp_meter_value":
		return fmt.Sprintf("Field '%s' must be a valid numeric meter value", fe.Field())
	case "ocpp_status":
		return fmt.Sprintf("Field '%s' must be a valid OCPP status", fe.Field())
	default:
		return fmt.Sprintf("Field '%s' failed validation for tag '%s'", fe.Field(), fe.Tag())
	}
}

// ValidateMessageSize rejects frames larger than maxSize bytes.
func (v *Validator) ValidateMessageSize(data []byte, maxSize int) error {
	if len(data) > maxSize {
		return ValidationError{
			Field:   "message",
			Tag:     "max_size",
			Value:   fmt.Sprintf("%d bytes", len(data)),
			Message: fmt.Sprintf("Message size %d bytes exceeds maximum allowed size %d bytes", len(data), maxSize),
		}
	}
	return nil
}

// ValidateChargePointID validates a charge point identifier.
func (v *Validator) ValidateChargePointID(chargePointID string) error {
	if chargePointID == "" {
		return ValidationError{
			Field:   "chargePointId",
			Tag:     "required",
			Value:   "",
			Message: "Charge point ID is required",
		}
	}
	
	if len(chargePointID) > 20 {
		return ValidationError{
			Field:   "chargePointId",
			Tag:     "max",
			Value:   chargePointID,
			Message: "Charge point ID must not exceed 20 characters",
		}
	}
	
	// alphanumeric and hyphen only
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9\-]+$`, chargePointID)
	if !matched {
		return ValidationError{
			Field:   "chargePointId",
			Tag:     "format",
			Value:   chargePointID,
			Message: "Charge point ID can only contain alphanumeric characters and hyphens",
		}
	}
	
	return nil
}

// ValidateProtocolVersion validates a negotiated OCPP subprotocol string.
func (v *Validator) ValidateProtocolVersion(version string) error {
	validVersions := map[string]bool{
		"ocpp1.6": true,
	}
	
	if !validVersions[version] {
		return ValidationError{
			Field:   "protocolVersion",
			Tag:     "invalid",
			Value:   version,
			Message: "Unsupported protocol version",
		}
	}
	
	return nil
}
