package device

import (
	"fmt"
	"slices"
)

// Enumeration holds the device names as reported by the host, in host order.
type Enumeration struct {
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

func (this Enumeration) Of(kind Kind) []string {
	switch kind {
	case KindInput:
		return this.Inputs
	case KindOutput:
		return this.Outputs
	default:
		panic(fmt.Errorf("illegal-device-kind-%d", kind))
	}
}

// Contains reports an exact, case-sensitive match of name.
func (this Enumeration) Contains(kind Kind, name string) bool {
	return slices.Contains(this.Of(kind), name)
}

func (this Enumeration) IsZero() bool {
	return len(this.Inputs) == 0 && len(this.Outputs) == 0
}

// Host is the host audio subsystem as seen by the Registry.
type Host interface {
	// Enumerate returns all currently visible endpoints. If the host reports
	// no active device at all it returns ErrNoDeviceFound.
	Enumerate() (Enumeration, error)

	// Apply makes the given configuration active. It either applies the
	// whole pair or nothing.
	Apply(Configuration) error
}
