package device

import (
	"errors"
	"fmt"
	log "github.com/echocat/slf4g"
	"sync"
)

// ChangeListener is notified after a selection changed the active
// Configuration.
type ChangeListener func(previous, current Configuration)

// Registry is the only place which talks to the Host and the only owner of
// the active Configuration.
type Registry struct {
	host     Host
	filter   Filter
	listener ChangeListener

	current Configuration
	mutex   sync.RWMutex
}

func NewRegistry(host Host, filter Filter) *Registry {
	if host == nil {
		panic(errors.New("nil host"))
	}
	return &Registry{
		host:   host,
		filter: filter,
	}
}

// OnChange registers the listener called after every successful selection
// which changed the Configuration. It replaces any previous listener.
func (this *Registry) OnChange(listener ChangeListener) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.listener = listener
}

// ListDevices rescans the host on every call. The returned slices are
// never nil.
func (this *Registry) ListDevices() (inputs, outputs []string, err error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	e, err := this.enumerate()
	if err != nil {
		return nil, nil, err
	}
	return e.Inputs, e.Outputs, nil
}

func (this *Registry) SelectInput(name string) error {
	return this.Select(KindInput, name)
}

func (this *Registry) SelectOutput(name string) error {
	return this.Select(KindOutput, name)
}

// Select validates name against the current enumeration of kind and applies
// it on success. On any failure the active Configuration stays untouched.
func (this *Registry) Select(kind Kind, name string) error {
	previous, next, err := this.selectLocked(kind, name)
	if err != nil {
		log.With("kind", kind).
			With("device", name).
			WithError(err).
			Info("Device selection failed.")
		return err
	}

	log.With("kind", kind).
		With("device", name).
		Info("Device selected.")

	if previous != next {
		this.mutex.RLock()
		listener := this.listener
		this.mutex.RUnlock()
		if listener != nil {
			listener(previous, next)
		}
	}
	return nil
}

func (this *Registry) selectLocked(kind Kind, name string) (previous, next Configuration, _ error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	previous = this.current

	e, err := this.enumerate()
	if err != nil {
		return previous, previous, newDeviceNotFound(kind, name, err)
	}
	if !e.Contains(kind, name) {
		return previous, previous, newDeviceNotFound(kind, name, nil)
	}

	next = previous.With(kind, name)
	other := kind.Other()
	if v := next.Get(other); v != "" && !e.Contains(other, v) {
		log.With("kind", other).
			With("device", v).
			Info("Previously selected device disappeared, deselecting it.")
		next = next.With(other, "")
	}
	if err := this.host.Apply(next); err != nil {
		return previous, previous, newConfigurationRejected(kind, name, err)
	}

	this.current = next
	return previous, next, nil
}

// Current returns the active Configuration.
func (this *Registry) Current() Configuration {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.current
}

func (this *Registry) enumerate() (Enumeration, error) {
	e, err := this.host.Enumerate()
	if v, ok := err.(*Error); ok && v.Kind == ErrorKindNoDeviceFound {
		return Enumeration{}, v
	}
	if err != nil {
		return Enumeration{}, newNoDeviceFound(fmt.Errorf("cannot enumerate devices: %w", err))
	}
	return this.filter.ApplyTo(e), nil
}
