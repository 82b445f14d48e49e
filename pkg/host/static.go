package host

import (
	"fmt"
	"github.com/blaubaer/audio-router/pkg/device"
	"slices"
	"sync"
)

// Static offers a fixed set of devices. It is used where no real audio
// subsystem is reachable and in tests.
type Static struct {
	conf *StaticConfiguration

	active device.Configuration
	mutex  sync.RWMutex
}

func NewStatic(inputs, outputs []string) *Static {
	return &Static{conf: &StaticConfiguration{
		Inputs:  inputs,
		Outputs: outputs,
	}}
}

func (this *Static) Initialize() error {
	return nil
}

func (this *Static) Dispose() error {
	return nil
}

func (this *Static) Enumerate() (device.Enumeration, error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if len(this.conf.Inputs) == 0 && len(this.conf.Outputs) == 0 {
		return device.Enumeration{}, device.ErrNoDeviceFound
	}

	return device.Enumeration{
		Inputs:  slices.Clone(this.conf.Inputs),
		Outputs: slices.Clone(this.conf.Outputs),
	}, nil
}

func (this *Static) Apply(c device.Configuration) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if c.Input != "" && !slices.Contains(this.conf.Inputs, c.Input) {
		return fmt.Errorf("input %q is not offered", c.Input)
	}
	if c.Output != "" && !slices.Contains(this.conf.Outputs, c.Output) {
		return fmt.Errorf("output %q is not offered", c.Output)
	}

	this.active = c
	return nil
}

// Active returns the last applied configuration.
func (this *Static) Active() device.Configuration {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.active
}

func (this *Static) GetType() Type {
	return TypeStatic
}
