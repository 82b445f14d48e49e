package device

import (
	"fmt"
)

type ErrorKind uint8

const (
	ErrorKindNoDeviceFound = ErrorKind(iota + 1)
	ErrorKindDeviceNotFound
	ErrorKindConfigurationRejected
)

func (this ErrorKind) String() string {
	switch this {
	case ErrorKindNoDeviceFound:
		return "no-device-found"
	case ErrorKindDeviceNotFound:
		return "device-not-found"
	case ErrorKindConfigurationRejected:
		return "configuration-rejected"
	default:
		return fmt.Sprintf("illegal-error-kind-%d", this)
	}
}

var (
	ErrNoDeviceFound         = &Error{Kind: ErrorKindNoDeviceFound}
	ErrDeviceNotFound        = &Error{Kind: ErrorKindDeviceNotFound}
	ErrConfigurationRejected = &Error{Kind: ErrorKindConfigurationRejected}
)

// Error is the only error type the Registry reports. Use errors.Is with one
// of the Err* variables to check the kind.
type Error struct {
	Kind       ErrorKind
	DeviceKind Kind
	Device     string
	Cause      error
}

func (this *Error) Error() string {
	switch this.Kind {
	case ErrorKindNoDeviceFound:
		return "No audio device found"
	case ErrorKindDeviceNotFound:
		if this.Device == "" {
			return fmt.Sprintf("%s device not found", this.DeviceKind.Title())
		}
		return fmt.Sprintf("%s device not found: %s", this.DeviceKind.Title(), this.Device)
	case ErrorKindConfigurationRejected:
		if this.Cause != nil {
			return fmt.Sprintf("%s device %s was rejected: %v", this.DeviceKind.Title(), this.Device, this.Cause)
		}
		return fmt.Sprintf("%s device %s was rejected", this.DeviceKind.Title(), this.Device)
	default:
		return this.Kind.String()
	}
}

func (this *Error) Unwrap() error {
	return this.Cause
}

func (this *Error) Is(target error) bool {
	if v, ok := target.(*Error); ok {
		return v.Kind == this.Kind
	}
	return false
}

func newNoDeviceFound(cause error) *Error {
	return &Error{Kind: ErrorKindNoDeviceFound, Cause: cause}
}

func newDeviceNotFound(kind Kind, name string, cause error) *Error {
	return &Error{Kind: ErrorKindDeviceNotFound, DeviceKind: kind, Device: name, Cause: cause}
}

func newConfigurationRejected(kind Kind, name string, cause error) *Error {
	return &Error{Kind: ErrorKindConfigurationRejected, DeviceKind: kind, Device: name, Cause: cause}
}
