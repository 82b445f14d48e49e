package host

import (
	"fmt"
	"github.com/blaubaer/audio-router/pkg/device"
)

// Host is one backend of the host audio subsystem.
type Host interface {
	device.Host

	Initialize() error
	Dispose() error
	GetType() Type
}

type factory func(*Configuration) Host

// factories is populated by the backends available on the current platform
// and build.
var factories = map[Type]factory{
	TypeStatic: func(conf *Configuration) Host {
		return &Static{conf: &conf.Static}
	},
}

func register(t Type, f factory) {
	if _, exists := factories[t]; exists {
		panic(fmt.Errorf("host type %v registered twice", t))
	}
	factories[t] = f
}

func newInstance(t Type, conf *Configuration) (Host, error) {
	f, ok := factories[t]
	if !ok {
		return nil, fmt.Errorf("host type %v is not supported by this build; available: %v", t, AllTypes.Available())
	}
	return f(conf), nil
}
