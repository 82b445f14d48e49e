package host

import (
	"errors"
	"fmt"
	"github.com/blaubaer/audio-router/pkg/device"
	log "github.com/echocat/slf4g"
	"sync"
)

var ErrNotInitialized = errors.New("host not initialized")

// Facade is the Host selected by the Configuration. For TypeAuto it probes
// the available backends in order and keeps the first one which initializes.
type Facade struct {
	Host

	lock sync.RWMutex
}

func (this *Facade) Initialize(conf *Configuration) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Host != nil {
		return nil
	}

	if conf.Type != TypeAuto {
		h, err := newInstance(conf.Type, conf)
		if err != nil {
			return err
		}
		if err := h.Initialize(); err != nil {
			return fmt.Errorf("cannot initialize host %v: %w", conf.Type, err)
		}
		this.Host = h
		return nil
	}

	h, err := initializeAuto(autoCandidates.Available(), conf)
	if err != nil {
		return err
	}
	this.Host = h
	return nil
}

// initializeAuto returns the first of candidates which reports devices. If
// none does, the first one which initialized is returned anyway, so its
// enumeration reports the missing devices.
func initializeAuto(candidates Types, conf *Configuration) (Host, error) {
	var fallback Host
	for _, t := range candidates {
		h, err := newInstance(t, conf)
		if err != nil {
			if fallback != nil {
				_ = fallback.Dispose()
			}
			return nil, err
		}
		if err := h.Initialize(); err != nil {
			log.With("host", t).
				WithError(err).
				Info("Host not usable, trying the next one...")
			continue
		}
		if _, err := h.Enumerate(); errors.Is(err, device.ErrNoDeviceFound) {
			if fallback == nil {
				fallback = h
			} else {
				_ = h.Dispose()
			}
			log.With("host", t).
				Info("Host does not report any device, trying the next one...")
			continue
		}
		if fallback != nil {
			_ = fallback.Dispose()
		}
		log.With("host", t).
			Debug("Host selected.")
		return h, nil
	}

	if fallback != nil {
		log.With("host", fallback.GetType()).
			Warn("No host reports any device, keeping the first usable one.")
		return fallback, nil
	}

	return nil, fmt.Errorf("none of the hosts %v is usable; select --host=%v to serve configured names", candidates, TypeStatic)
}

func (this *Facade) Enumerate() (device.Enumeration, error) {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Host; v != nil {
		return v.Enumerate()
	}
	return device.Enumeration{}, ErrNotInitialized
}

func (this *Facade) Apply(c device.Configuration) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Host; v != nil {
		return v.Apply(c)
	}
	return ErrNotInitialized
}

func (this *Facade) Dispose() error {
	this.lock.Lock()
	defer this.lock.Unlock()

	defer func() {
		this.Host = nil
	}()

	if v := this.Host; v != nil {
		return v.Dispose()
	}
	return nil
}

func (this *Facade) GetType() Type {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Host; v != nil {
		return v.GetType()
	}

	return TypeAuto
}
