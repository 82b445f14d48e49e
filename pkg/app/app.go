package app

import (
	"context"
	"dario.cat/mergo"
	"errors"
	"fmt"
	"github.com/blaubaer/audio-router/pkg/client"
	"github.com/blaubaer/audio-router/pkg/common"
	"github.com/blaubaer/audio-router/pkg/device"
	"github.com/blaubaer/audio-router/pkg/host"
	"github.com/blaubaer/audio-router/pkg/instance"
	"github.com/blaubaer/audio-router/pkg/preset"
	"github.com/blaubaer/audio-router/pkg/server"
	"github.com/blaubaer/audio-router/pkg/transport"
	log "github.com/echocat/slf4g"
	"os"
	"reflect"
)

func NewApp() *App {
	return &App{
		config: NewConfiguration(),
	}
}

type App struct {
	Host              host.Facade
	ConfigurationFile string

	configFromFlags Configuration
	config          Configuration
	configLoaded    bool

	lock     *instance.Lock
	registry *device.Registry
	listener transport.Listener
	server   *server.Server
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		Envar("AR_CONFIGURATION").
		StringVar(&this.ConfigurationFile)
}

// Configuration returns the effective configuration. It is only complete
// after LoadConfiguration or Initialize.
func (this *App) Configuration() Configuration {
	return this.config
}

// LoadConfiguration reads the configuration file and lets every provided
// flag override it. It is enough for the commands which only talk to a
// running server.
func (this *App) LoadConfiguration() error {
	if this.configLoaded {
		return nil
	}
	this.config = NewConfiguration()

	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := mergo.Merge(&this.config, this.configFromFlags, mergo.WithOverride, mergo.WithTransformers(flagTransformers{})); err != nil {
		return fmt.Errorf("cannot apply flags to configuration: %w", err)
	}

	this.configLoaded = true
	return nil
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

// Initialize prepares everything the server needs. If it fails nothing stays
// allocated, especially not the command endpoint.
func (this *App) Initialize(ctx context.Context) (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.LoadConfiguration(); err != nil {
		return err
	}

	lock, err := instance.Acquire(this.config.lockFile())
	if err != nil {
		return err
	}
	this.lock = lock

	if err := this.Host.Initialize(&this.config.Host); err != nil {
		return err
	}
	log.With("host", this.Host.GetType()).
		Info("Audio host ready.")

	listener, err := transport.Listen(ctx, this.config.Transport)
	if err != nil {
		return fmt.Errorf("cannot bind command endpoint %s: %w", this.config.Transport.ListenAddress(), err)
	}
	this.listener = listener

	if err := this.saveConf(false); err != nil {
		return err
	}

	// The host is only touched once the endpoint is bound.
	this.registry = device.NewRegistry(&this.Host, this.config.Devices)
	this.server = server.New(listener, this.registry)
	if this.config.Preset.ApplyOnStart {
		this.applyPreset()
	}
	if this.config.Preset.SaveOnChange {
		this.registry.OnChange(this.savePreset)
	}

	success = true
	return nil
}

// Run serves commands until ctx is done.
func (this *App) Run(ctx context.Context) error {
	if this.server == nil {
		return errors.New("app not initialized")
	}
	return this.server.Serve(ctx)
}

// Address is the address the command endpoint is bound to. It is only
// available after Initialize.
func (this *App) Address() string {
	if v := this.listener; v != nil {
		return v.Address()
	}
	return ""
}

// Registry is available after Initialize.
func (this *App) Registry() *device.Registry {
	return this.registry
}

// Client connects to the server configured for this app.
func (this *App) Client(ctx context.Context) (*client.Client, error) {
	if err := this.LoadConfiguration(); err != nil {
		return nil, err
	}
	return client.Dial(ctx, this.config.Transport)
}

func (this *App) PresetStore() preset.Store {
	return preset.Store{File: this.config.Preset.File}
}

func (this *App) applyPreset() {
	store := this.PresetStore()
	p, err := store.Load()
	if errors.Is(err, preset.ErrNotFound) {
		log.WithError(err).Info("No preset to apply.")
		return
	}
	if err != nil {
		log.WithError(err).Warn("Cannot load preset.")
		return
	}

	for _, kind := range device.AllKinds {
		name := p.Configuration().Get(kind)
		if name == "" {
			continue
		}
		if err := this.registry.Select(kind, name); err != nil {
			log.With("kind", kind).
				With("device", name).
				WithError(err).
				Warn("Cannot apply device of preset.")
		}
	}
}

func (this *App) savePreset(_, current device.Configuration) {
	store := this.PresetStore()
	if err := store.Save(preset.FromConfiguration(current)); err != nil {
		log.WithError(err).
			Warn("Cannot save preset.")
		return
	}
	log.With("preset", current).
		Debug("Preset saved.")
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
			// Ok, we should save...
		} else if err != nil {
			return err
		} else {
			// Does exist, skip...
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

func (this *App) Dispose() (rErr error) {
	if v := this.server; v != nil {
		common.KeepFirst(&rErr, v.Close())
	} else if v := this.listener; v != nil {
		common.KeepFirst(&rErr, v.Close())
	}
	this.server, this.listener, this.registry = nil, nil, nil

	common.KeepFirst(&rErr, this.Host.Dispose())

	common.KeepFirst(&rErr, this.lock.Release())
	this.lock = nil

	return rErr
}

var regexpType = reflect.TypeOf(common.Regexp{})

// flagTransformers makes a regular expression provided by flag win over the
// one of the file, but only if it was provided at all.
type flagTransformers struct{}

func (flagTransformers) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != regexpType {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if v, ok := src.Interface().(common.Regexp); ok && v.HasContent() && dst.CanSet() {
			dst.Set(src)
		}
		return nil
	}
}
