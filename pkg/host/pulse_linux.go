//go:build linux

package host

import (
	"fmt"
	"github.com/blaubaer/audio-router/pkg/device"
	log "github.com/echocat/slf4g"
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
	"sync"
)

func init() {
	register(TypePulse, func(*Configuration) Host {
		return &Pulse{}
	})
}

// Pulse talks to a PulseAudio (or pipewire-pulse) server. Applying a
// configuration changes the server's default source and sink.
type Pulse struct {
	client *pulse.Client
	mutex  sync.Mutex
}

func (this *Pulse) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.client != nil {
		return nil
	}

	client, err := pulse.NewClient(pulse.ClientApplicationName("audio-router"))
	if err != nil {
		return fmt.Errorf("cannot connect to pulse server: %w", err)
	}

	this.client = client
	return nil
}

func (this *Pulse) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.client != nil {
		this.client.Close()
		this.client = nil
	}
	return nil
}

func (this *Pulse) Enumerate() (device.Enumeration, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	sources, sinks, err := this.endpoints()
	if err != nil {
		return device.Enumeration{}, err
	}

	result := device.Enumeration{
		Inputs:  make([]string, len(sources)),
		Outputs: make([]string, len(sinks)),
	}
	for i, v := range sources {
		result.Inputs[i] = v.Name()
	}
	for i, v := range sinks {
		result.Outputs[i] = v.Name()
	}
	return result, nil
}

func (this *Pulse) Apply(c device.Configuration) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	sources, sinks, err := this.endpoints()
	if err != nil {
		return err
	}

	var source *pulse.Source
	var sink *pulse.Sink
	if c.Input != "" {
		if source = pulseFind(sources, c.Input); source == nil {
			return fmt.Errorf("source %q disappeared", c.Input)
		}
	}
	if c.Output != "" {
		if sink = pulseFind(sinks, c.Output); sink == nil {
			return fmt.Errorf("sink %q disappeared", c.Output)
		}
	}

	var previousSource *pulse.Source
	if source != nil {
		if previousSource, err = this.client.DefaultSource(); err != nil {
			return fmt.Errorf("cannot get default source: %w", err)
		}
		if err := this.client.RawRequest(&proto.SetDefaultSource{SourceName: source.ID()}, nil); err != nil {
			return fmt.Errorf("cannot set default source to %q: %w", source.ID(), err)
		}
	}

	if sink != nil {
		if err := this.client.RawRequest(&proto.SetDefaultSink{SinkName: sink.ID()}, nil); err != nil {
			if previousSource != nil {
				if rErr := this.client.RawRequest(&proto.SetDefaultSource{SourceName: previousSource.ID()}, nil); rErr != nil {
					log.With("source", previousSource.ID()).
						WithError(rErr).
						Warn("Cannot restore previous default source.")
				}
			}
			return fmt.Errorf("cannot set default sink to %q: %w", sink.ID(), err)
		}
	}

	return nil
}

func (this *Pulse) GetType() Type {
	return TypePulse
}

func (this *Pulse) endpoints() ([]*pulse.Source, []*pulse.Sink, error) {
	if this.client == nil {
		return nil, nil, ErrNotInitialized
	}

	sources, err := this.client.ListSources()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot list pulse sources: %w", err)
	}
	sinks, err := this.client.ListSinks()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot list pulse sinks: %w", err)
	}
	if len(sources) == 0 && len(sinks) == 0 {
		return nil, nil, device.ErrNoDeviceFound
	}
	return sources, sinks, nil
}

type pulseEndpoint interface {
	ID() string
	Name() string
}

func pulseFind[T pulseEndpoint](in []T, name string) T {
	var zero T
	for _, v := range in {
		if v.Name() == name {
			return v
		}
	}
	return zero
}
