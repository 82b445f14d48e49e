package app

import (
	"fmt"
	"github.com/adrg/xdg"
	"github.com/blaubaer/audio-router/pkg/common"
	"github.com/blaubaer/audio-router/pkg/device"
	"github.com/blaubaer/audio-router/pkg/host"
	"github.com/blaubaer/audio-router/pkg/transport"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"path/filepath"
)

const appName = "audio-router"

func NewConfiguration() Configuration {
	return Configuration{
		Transport: transport.NewConfiguration(),
		Host:      host.NewConfiguration(),
	}
}

type Configuration struct {
	PreventAutoSave bool   `yaml:"preventAutoSave"`
	LockFile        string `yaml:"lockFile,omitempty"`

	Transport transport.Configuration `yaml:"transport,omitempty"`
	Host      host.Configuration      `yaml:"host,omitempty"`
	Devices   device.Filter           `yaml:"devices,omitempty"`
	Preset    PresetConfiguration     `yaml:"preset,omitempty"`
}

type PresetConfiguration struct {
	File         string `yaml:"file,omitempty"`
	ApplyOnStart bool   `yaml:"applyOnStart,omitempty"`
	SaveOnChange bool   `yaml:"saveOnChange,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("AR_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)
	using.Flag("lockFile", "File which ensures only one server runs at the same time.").
		Envar("AR_LOCK_FILE").
		StringVar(&this.LockFile)

	this.Transport.SetupConfiguration(using)
	this.Host.SetupConfiguration(using)
	this.Devices.SetupConfiguration(using)
	this.Preset.SetupConfiguration(using)
}

func (this *PresetConfiguration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preset.file", "File the preset is stored in. Default: preset.json inside the documents directory.").
		Envar("AR_PRESET_FILE").
		StringVar(&this.File)
	using.Flag("preset.applyOnStart", "Selects the devices of the preset when the server starts.").
		Envar("AR_PRESET_APPLY_ON_START").
		BoolVar(&this.ApplyOnStart)
	using.Flag("preset.saveOnChange", "Stores the preset every time the device selection changed.").
		Envar("AR_PRESET_SAVE_ON_CHANGE").
		BoolVar(&this.SaveOnChange)
}

func (this *Configuration) lockFile() string {
	if v := this.LockFile; v != "" {
		return v
	}
	if fn, err := xdg.RuntimeFile(filepath.Join(appName, appName+".lock")); err == nil {
		return fn
	}
	return filepath.Join(os.TempDir(), appName+".lock")
}

func (this *Configuration) loadFrom(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(this); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (this *Configuration) loadFromFile(fn string, ignoreNotFound bool) error {
	f, err := os.Open(fn)
	if os.IsNotExist(err) && ignoreNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.loadFrom(f); err != nil {
		return fmt.Errorf("cannot load configuration file %q: %w", fn, err)
	}

	return nil
}

func (this *Configuration) saveTo(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc.Encode(this)
}

func (this *Configuration) saveToFile(fn string) error {
	_ = os.MkdirAll(filepath.Dir(fn), 0700)

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("cannot open configuration file %q: %w", fn, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := this.saveTo(f); err != nil {
		return fmt.Errorf("cannot write file %q: %w", fn, err)
	}

	return nil
}

func defaultConfigurationFile() string {
	if fn, err := xdg.ConfigFile(filepath.Join(appName, "configuration.yml")); err == nil {
		return fn
	}
	return "configuration.yml"
}
