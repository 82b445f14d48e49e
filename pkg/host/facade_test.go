package host

import (
	"errors"
	"github.com/blaubaer/audio-router/pkg/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestFacade_notInitialized(t *testing.T) {
	var instance Facade

	_, err := instance.Enumerate()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, instance.Apply(device.Configuration{}), ErrNotInitialized)
	assert.Equal(t, TypeAuto, instance.GetType())
	assert.NoError(t, instance.Dispose())
}

func TestFacade_Dispose(t *testing.T) {
	conf := NewConfiguration()
	conf.Type = TypeStatic

	var instance Facade
	require.NoError(t, instance.Initialize(&conf))
	require.NoError(t, instance.Dispose())

	_, err := instance.Enumerate()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestType_Set(t *testing.T) {
	cases := map[string]Type{
		"":           TypeAuto,
		"auto":       TypeAuto,
		"static":     TypeStatic,
		"miniaudio":  TypeMalgo,
		"PulseAudio": TypePulse,
		"wca":        TypeWca,
	}
	for plain, expected := range cases {
		var actual Type
		require.NoError(t, actual.Set(plain), plain)
		assert.Equal(t, expected, actual, plain)
	}

	var actual Type
	assert.EqualError(t, actual.Set("jack"), "illegal-host-type: jack")
}

func TestType_IsAvailable(t *testing.T) {
	assert.True(t, TypeAuto.IsAvailable())
	assert.True(t, TypeStatic.IsAvailable())
	assert.NotContains(t, autoCandidates, TypeStatic)
	assert.Equal(t, "auto,static,malgo,pulse,wca", AllTypes.String())
}

type fakeBackend struct {
	typ         Type
	initErr     error
	enumeration device.Enumeration
	disposed    bool
}

func (this *fakeBackend) Initialize() error {
	return this.initErr
}

func (this *fakeBackend) Dispose() error {
	this.disposed = true
	return nil
}

func (this *fakeBackend) Enumerate() (device.Enumeration, error) {
	if this.enumeration.IsZero() {
		return device.Enumeration{}, device.ErrNoDeviceFound
	}
	return this.enumeration, nil
}

func (this *fakeBackend) Apply(device.Configuration) error {
	return nil
}

func (this *fakeBackend) GetType() Type {
	return this.typ
}

// withBackends replaces every registered backend by the given ones for the
// duration of the test.
func withBackends(t *testing.T, backends ...*fakeBackend) {
	previous := factories
	factories = map[Type]factory{}
	for _, b := range backends {
		b := b
		factories[b.typ] = func(*Configuration) Host { return b }
	}
	t.Cleanup(func() { factories = previous })
}

func TestFacade_Initialize_autoPrefersBackendWithDevices(t *testing.T) {
	empty := &fakeBackend{typ: TypePulse}
	broken := &fakeBackend{typ: TypeWca, initErr: errors.New("no com")}
	full := &fakeBackend{typ: TypeMalgo, enumeration: device.Enumeration{Inputs: []string{"Mic"}}}
	withBackends(t, broken, empty, full)

	conf := NewConfiguration()
	var instance Facade
	require.NoError(t, instance.Initialize(&conf))
	defer func() { _ = instance.Dispose() }()

	assert.Equal(t, TypeMalgo, instance.GetType())
	assert.True(t, empty.disposed)
}

func TestFacade_Initialize_autoKeepsBackendWithoutDevices(t *testing.T) {
	empty := &fakeBackend{typ: TypePulse}
	alsoEmpty := &fakeBackend{typ: TypeMalgo}
	withBackends(t, empty, alsoEmpty)

	conf := NewConfiguration()
	var instance Facade
	require.NoError(t, instance.Initialize(&conf))
	defer func() { _ = instance.Dispose() }()

	assert.Equal(t, TypePulse, instance.GetType())
	assert.False(t, empty.disposed)
	assert.True(t, alsoEmpty.disposed)

	_, err := instance.Enumerate()
	assert.ErrorIs(t, err, device.ErrNoDeviceFound)

	registry := device.NewRegistry(&instance, device.Filter{})
	_, _, err = registry.ListDevices()
	assert.ErrorIs(t, err, device.ErrNoDeviceFound)
}

func TestFacade_Initialize_autoNeverChoosesStatic(t *testing.T) {
	withBackends(t, &fakeBackend{typ: TypePulse, initErr: errors.New("no server")})
	factories[TypeStatic] = func(conf *Configuration) Host {
		return &Static{conf: &conf.Static}
	}

	conf := NewConfiguration()
	var instance Facade
	assert.Error(t, instance.Initialize(&conf))
	assert.Equal(t, TypeAuto, instance.GetType())

	conf.Type = TypeStatic
	require.NoError(t, instance.Initialize(&conf))
	defer func() { _ = instance.Dispose() }()
	assert.Equal(t, TypeStatic, instance.GetType())
}
