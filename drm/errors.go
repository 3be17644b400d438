package drm

import (
	"errors"
	"fmt"
)

var (
	// ErrDispatchUnsupported is returned by agents that cannot dispatch DRM messages.
	ErrDispatchUnsupported = errors.New("drm: agent does not support sendDRMMessage")

	// ErrRequestInFlight is returned when a request is rejected because another transaction is pending.
	ErrRequestInFlight = errors.New("drm: a transaction is already in flight")

	// ErrTimeout is wrapped by errors of kind Timeout.
	ErrTimeout = errors.New("drm: transaction timed out")
)

// Kind classifies a negotiation failure.
type Kind int

const (
	NoLicense Kind = iota
	InvalidLicense
	LicenseValid
	UnspecifiedError
	CannotProcessRequest
	WrongFormat
	UserConsentNeeded
	UnknownDrmSystem
	DispatchFailure
	Timeout
)

var kindNames = map[Kind]string{
	NoLicense:            "no_license",
	InvalidLicense:       "invalid_license",
	LicenseValid:         "license_valid",
	UnspecifiedError:     "unspecified_error",
	CannotProcessRequest: "cannot_process_request",
	WrongFormat:          "wrong_format",
	UserConsentNeeded:    "user_consent_needed",
	UnknownDrmSystem:     "unknown_drm_system",
	DispatchFailure:      "dispatch_failure",
	Timeout:              "timeout",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a negotiation failure reported to a transaction's failure callback.
type Error struct {
	Kind Kind
	// Code is the agent's native result or rights code, -1 when the failure did not come from the agent.
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// rightsErrors maps onDRMRightsError codes. Codes at or above rightsValidThreshold are not failures.
var rightsErrors = map[int]struct {
	kind    Kind
	message string
}{
	0: {NoLicense, "DRM: No license error"},
	1: {InvalidLicense, "DRM: Invalid license error"},
	2: {LicenseValid, "DRM: License valid"},
}

const rightsValidThreshold = 2

// resultErrors maps non-zero onDRMMessageResult codes.
var resultErrors = map[int]struct {
	kind    Kind
	message string
}{
	1: {UnspecifiedError, "DRM: Unspecified error"},
	2: {CannotProcessRequest, "DRM: Cannot process request"},
	3: {WrongFormat, "DRM: Wrong format"},
	4: {UserConsentNeeded, "DRM: User Consent Needed"},
	5: {UnknownDrmSystem, "DRM: Unknown DRM system"},
}

// RightsError maps a rights error code to an Error. Unmapped codes become UnspecifiedError.
func RightsError(code int) *Error {
	if m, ok := rightsErrors[code]; ok {
		return &Error{Kind: m.kind, Code: code, Message: m.message}
	}
	return &Error{Kind: UnspecifiedError, Code: code, Message: fmt.Sprintf("DRM: Rights error %d", code)}
}

// ResultError maps a non-zero message result code to an Error. Unmapped codes become UnspecifiedError.
func ResultError(code int) *Error {
	if m, ok := resultErrors[code]; ok {
		return &Error{Kind: m.kind, Code: code, Message: m.message}
	}
	return &Error{Kind: UnspecifiedError, Code: code, Message: fmt.Sprintf("DRM: Unspecified error (code %d)", code)}
}
