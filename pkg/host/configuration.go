package host

import (
	"fmt"
	"github.com/blaubaer/audio-router/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type:   TypeDefault,
		Static: NewStaticConfiguration(),
	}
}

type Configuration struct {
	Type   Type                `yaml:"type"`
	Static StaticConfiguration `yaml:"static,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("host", fmt.Sprintf("Audio subsystem to use. Possible values: %v", AllTypes)).
		Envar("AR_HOST").
		SetValue(&this.Type)

	this.Static.SetupConfiguration(using)
}

func NewStaticConfiguration() StaticConfiguration {
	return StaticConfiguration{
		Inputs:  []string{"Input 1", "Input 2", "Input 3"},
		Outputs: []string{"Output 1", "Output 2", "Output 3"},
	}
}

type StaticConfiguration struct {
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
}

func (this *StaticConfiguration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("host.static.input", "Input device offered by the static host. Can be repeated.").
		Envar("AR_HOST_STATIC_INPUTS").
		StringsVar(&this.Inputs)
	using.Flag("host.static.output", "Output device offered by the static host. Can be repeated.").
		Envar("AR_HOST_STATIC_OUTPUTS").
		StringsVar(&this.Outputs)
}
