//go:build cgo

package host

import (
	"fmt"
	"github.com/blaubaer/audio-router/pkg/device"
	log "github.com/echocat/slf4g"
	"github.com/gen2brain/malgo"
	"sync"
)

func init() {
	register(TypeMalgo, func(*Configuration) Host {
		return &Malgo{}
	})
}

// Malgo uses miniaudio. Applying a configuration opens (but does not start)
// a device on the selected endpoints; miniaudio refusing to open it is what
// rejects the configuration.
type Malgo struct {
	ctx    *malgo.AllocatedContext
	opened *malgo.Device
	mutex  sync.Mutex
}

type malgoEndpoint struct {
	id   malgo.DeviceID
	name string
}

func (this *Malgo) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.ctx != nil {
		return nil
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("cannot initialize miniaudio context: %w", err)
	}

	this.ctx = ctx
	return nil
}

func (this *Malgo) Dispose() (rErr error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.opened != nil {
		this.opened.Uninit()
		this.opened = nil
	}
	if this.ctx != nil {
		rErr = this.ctx.Uninit()
		this.ctx.Free()
		this.ctx = nil
	}
	return rErr
}

func (this *Malgo) Enumerate() (device.Enumeration, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	captures, playbacks, err := this.endpoints()
	if err != nil {
		return device.Enumeration{}, err
	}

	return device.Enumeration{
		Inputs:  malgoNames(captures),
		Outputs: malgoNames(playbacks),
	}, nil
}

func (this *Malgo) Apply(c device.Configuration) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if c.IsZero() {
		this.closeOpened()
		return nil
	}

	captures, playbacks, err := this.endpoints()
	if err != nil {
		return err
	}

	var typ malgo.DeviceType
	switch {
	case c.Input != "" && c.Output != "":
		typ = malgo.Duplex
	case c.Input != "":
		typ = malgo.Capture
	default:
		typ = malgo.Playback
	}

	config := malgo.DefaultDeviceConfig(typ)
	config.Alsa.NoMMap = 1

	var captureId, playbackId malgo.DeviceID
	if c.Input != "" {
		v, ok := malgoFind(captures, c.Input)
		if !ok {
			return fmt.Errorf("capture device %q disappeared", c.Input)
		}
		captureId = v.id
		config.Capture.DeviceID = captureId.Pointer()
	}
	if c.Output != "" {
		v, ok := malgoFind(playbacks, c.Output)
		if !ok {
			return fmt.Errorf("playback device %q disappeared", c.Output)
		}
		playbackId = v.id
		config.Playback.DeviceID = playbackId.Pointer()
	}

	opened, err := malgo.InitDevice(this.ctx.Context, config, malgo.DeviceCallbacks{
		Data: func(_, _ []byte, _ uint32) {},
	})
	if err != nil {
		return fmt.Errorf("miniaudio cannot open %v: %w", c, err)
	}

	this.closeOpened()
	this.opened = opened
	return nil
}

func (this *Malgo) GetType() Type {
	return TypeMalgo
}

func (this *Malgo) closeOpened() {
	if this.opened != nil {
		this.opened.Uninit()
		this.opened = nil
	}
}

func (this *Malgo) endpoints() (captures, playbacks []malgoEndpoint, err error) {
	if this.ctx == nil {
		return nil, nil, ErrNotInitialized
	}

	if captures, err = this.endpointsOf(malgo.Capture); err != nil {
		return nil, nil, err
	}
	if playbacks, err = this.endpointsOf(malgo.Playback); err != nil {
		return nil, nil, err
	}
	if len(captures) == 0 && len(playbacks) == 0 {
		return nil, nil, device.ErrNoDeviceFound
	}
	return captures, playbacks, nil
}

func (this *Malgo) endpointsOf(typ malgo.DeviceType) (result []malgoEndpoint, _ error) {
	infos, err := this.ctx.Devices(typ)
	if err != nil {
		return nil, fmt.Errorf("cannot list miniaudio devices: %w", err)
	}

	seen := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		name := info.Name()
		// Some backends report the same endpoint twice.
		if _, ok := seen[name]; ok {
			log.With("device", name).
				Debug("Duplicate device name ignored.")
			continue
		}
		seen[name] = struct{}{}
		result = append(result, malgoEndpoint{info.ID, name})
	}
	return result, nil
}

func malgoFind(in []malgoEndpoint, name string) (malgoEndpoint, bool) {
	for _, v := range in {
		if v.name == name {
			return v, true
		}
	}
	return malgoEndpoint{}, false
}

func malgoNames(in []malgoEndpoint) []string {
	result := make([]string, len(in))
	for i, v := range in {
		result[i] = v.name
	}
	return result
}

