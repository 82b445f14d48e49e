//go:build windows

package host

import (
	"fmt"
	"github.com/blaubaer/audio-router/pkg/device"
	"github.com/go-ole/go-ole"
	"github.com/moutend/go-wca/pkg/wca"
	"sync"
	"unsafe"
)

func init() {
	register(TypeWca, func(*Configuration) Host {
		return &Wca{}
	})
}

// Wca uses the Windows Core Audio API. Applying a configuration activates an
// IAudioClient on every selected endpoint and asks it for its mix format; an
// endpoint which cannot provide one rejects the configuration.
type Wca struct {
	initialized bool
	mutex       sync.RWMutex
}

func (this *Wca) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.initialized {
		return nil
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		return fmt.Errorf("failed to initialize ole: %v", err)
	}

	this.initialized = true
	return nil
}

func (this *Wca) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.initialized {
		return nil
	}

	ole.CoUninitialize()
	this.initialized = false

	return nil
}

func (this *Wca) Enumerate() (result device.Enumeration, _ error) {
	err := this.withEnumerator(func(de *wca.IMMDeviceEnumerator) (err error) {
		if result.Inputs, err = this.namesOf(de, wca.ECapture); err != nil {
			return err
		}
		if result.Outputs, err = this.namesOf(de, wca.ERender); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return device.Enumeration{}, err
	}
	if result.IsZero() {
		return device.Enumeration{}, device.ErrNoDeviceFound
	}
	return result, nil
}

func (this *Wca) Apply(c device.Configuration) error {
	return this.withEnumerator(func(de *wca.IMMDeviceEnumerator) error {
		if c.Input != "" {
			if err := this.probe(de, wca.ECapture, c.Input); err != nil {
				return err
			}
		}
		if c.Output != "" {
			if err := this.probe(de, wca.ERender, c.Output); err != nil {
				return err
			}
		}
		return nil
	})
}

func (this *Wca) GetType() Type {
	return TypeWca
}

func (this *Wca) withEnumerator(f func(*wca.IMMDeviceEnumerator) error) error {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if !this.initialized {
		return ErrNotInitialized
	}

	var de *wca.IMMDeviceEnumerator
	if err := wca.CoCreateInstance(wca.CLSID_MMDeviceEnumerator, 0, wca.CLSCTX_ALL, wca.IID_IMMDeviceEnumerator, &de); err != nil {
		return fmt.Errorf("cannot ceate IMMDeviceEnumerator instance: %w", err)
	}
	defer de.Release()

	return f(de)
}

func (this *Wca) namesOf(enumerator *wca.IMMDeviceEnumerator, flow uint32) (result []string, _ error) {
	err := this.eachDevice(enumerator, flow, func(_ *wca.IMMDevice, name string) (bool, error) {
		result = append(result, name)
		return true, nil
	})
	return result, err
}

func (this *Wca) probe(enumerator *wca.IMMDeviceEnumerator, flow uint32, name string) error {
	found := false
	err := this.eachDevice(enumerator, flow, func(candidate *wca.IMMDevice, candidateName string) (bool, error) {
		if candidateName != name {
			return true, nil
		}
		found = true

		var ac *wca.IAudioClient
		if err := candidate.Activate(wca.IID_IAudioClient, wca.CLSCTX_ALL, nil, &ac); err != nil {
			return false, fmt.Errorf("cannot activate audio client of %q: %w", name, err)
		}
		defer ac.Release()

		var wfx *wca.WAVEFORMATEX
		if err := ac.GetMixFormat(&wfx); err != nil {
			return false, fmt.Errorf("cannot get mix format of %q: %w", name, err)
		}
		defer ole.CoTaskMemFree(uintptr(unsafe.Pointer(wfx)))

		return false, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("endpoint %q disappeared", name)
	}
	return nil
}

func (this *Wca) eachDevice(enumerator *wca.IMMDeviceEnumerator, flow uint32, consumer func(*wca.IMMDevice, string) (bool, error)) error {
	var collection *wca.IMMDeviceCollection
	if err := enumerator.EnumAudioEndpoints(flow, wca.DEVICE_STATE_ACTIVE, &collection); err != nil {
		return fmt.Errorf("cannot query IMMDevices: %w", err)
	}
	defer collection.Release()

	var count uint32
	if err := collection.GetCount(&count); err != nil {
		return fmt.Errorf("cannot get count of IMMDevice collection: %w", err)
	}

	for i := uint32(0); i < count; i++ {
		canContinue, err := this.visitDeviceOf(collection, i, consumer)
		if err != nil {
			return err
		}
		if !canContinue {
			return nil
		}
	}

	return nil
}

func (this *Wca) visitDeviceOf(collection *wca.IMMDeviceCollection, deviceIndex uint32, consumer func(*wca.IMMDevice, string) (bool, error)) (bool, error) {
	var d *wca.IMMDevice
	if err := collection.Item(deviceIndex, &d); err != nil {
		return false, fmt.Errorf("cannot get item %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer d.Release()

	var propertyStore *wca.IPropertyStore
	if err := d.OpenPropertyStore(wca.STGM_READ, &propertyStore); err != nil {
		return false, fmt.Errorf("cannot get properties of device %d of IMMDevice collection: %w", deviceIndex, err)
	}
	defer propertyStore.Release()

	var name wca.PROPVARIANT
	if err := propertyStore.GetValue(&wca.PKEY_Device_FriendlyName, &name); err != nil {
		return false, fmt.Errorf("cannot get name of device %d of IMMDevice collection: %w", deviceIndex, err)
	}

	return consumer(d, name.String())
}
