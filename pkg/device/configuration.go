package device

import (
	"fmt"
)

// Configuration is the active pair of input and output device. An empty
// side means nothing has been selected for it yet.
type Configuration struct {
	Input  string `yaml:"input,omitempty" json:"input"`
	Output string `yaml:"output,omitempty" json:"output"`
}

func (this Configuration) Get(kind Kind) string {
	switch kind {
	case KindInput:
		return this.Input
	case KindOutput:
		return this.Output
	default:
		panic(fmt.Errorf("illegal-device-kind-%d", kind))
	}
}

func (this Configuration) With(kind Kind, name string) Configuration {
	switch kind {
	case KindInput:
		this.Input = name
	case KindOutput:
		this.Output = name
	default:
		panic(fmt.Errorf("illegal-device-kind-%d", kind))
	}
	return this
}

func (this Configuration) IsZero() bool {
	return this.Input == "" && this.Output == ""
}

func (this Configuration) String() string {
	return fmt.Sprintf("input=%q, output=%q", this.Input, this.Output)
}
