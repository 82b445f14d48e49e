package device

import (
	"github.com/blaubaer/audio-router/pkg/common"
)

// Filter hides devices from the enumeration, for example monitor sources.
type Filter struct {
	IncludedNames common.Regexp `yaml:"includedNames,omitempty"`
	ExcludedNames common.Regexp `yaml:"excludedNames,omitempty"`
}

func (this *Filter) SetupConfiguration(using common.FlagHolder) {
	using.Flag("devices.includedNames", "Only devices which names match are offered.").
		Envar("AR_DEVICES_INCLUDED_NAMES").
		SetValue(&this.IncludedNames)
	using.Flag("devices.excludedNames", "Devices which names match are never offered.").
		Envar("AR_DEVICES_EXCLUDED_NAMES").
		SetValue(&this.ExcludedNames)
}

func (this Filter) Accepts(name string) bool {
	if v := this.IncludedNames; v.HasContent() {
		if !v.MatchString(name) {
			return false
		}
	}
	if v := this.ExcludedNames; v.HasContent() {
		if v.MatchString(name) {
			return false
		}
	}
	return true
}

// Apply returns the accepted names in their original order. The result is
// never nil.
func (this Filter) Apply(names []string) []string {
	result := make([]string, 0, len(names))
	for _, name := range names {
		if this.Accepts(name) {
			result = append(result, name)
		}
	}
	return result
}

func (this Filter) ApplyTo(in Enumeration) Enumeration {
	return Enumeration{
		Inputs:  this.Apply(in.Inputs),
		Outputs: this.Apply(in.Outputs),
	}
}
