package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"github.com/blaubaer/audio-router/pkg/device"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("Preset file not found")

// Preset is the document a user stores to restore a device selection.
type Preset struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func FromConfiguration(c device.Configuration) Preset {
	return Preset{Input: c.Input, Output: c.Output}
}

func (this Preset) Configuration() device.Configuration {
	return device.Configuration{Input: this.Input, Output: this.Output}
}

func (this Preset) IsZero() bool {
	return this.Input == "" && this.Output == ""
}

func DefaultFile() string {
	if dir := xdg.UserDirs.Documents; dir != "" {
		return filepath.Join(dir, "preset.json")
	}
	return "preset.json"
}

type Store struct {
	File string
}

func (this Store) file() string {
	if v := this.File; v != "" {
		return v
	}
	return DefaultFile()
}

func (this Store) Load() (Preset, error) {
	fn := this.file()
	b, err := os.ReadFile(fn)
	if os.IsNotExist(err) {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, fn)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("cannot read preset file %q: %w", fn, err)
	}

	var result Preset
	if err := json.Unmarshal(b, &result); err != nil {
		return Preset{}, fmt.Errorf("cannot parse preset file %q: %w", fn, err)
	}
	return result, nil
}

func (this Store) Save(p Preset) error {
	fn := this.file()
	b, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return err
	}

	_ = os.MkdirAll(filepath.Dir(fn), 0700)

	tmp := fn + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0600); err != nil {
		return fmt.Errorf("cannot write preset file %q: %w", fn, err)
	}
	if err := os.Rename(tmp, fn); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot write preset file %q: %w", fn, err)
	}
	return nil
}
