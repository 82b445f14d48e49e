package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"

	"github.com/blaubaer/audio-router/pkg/app"
	"github.com/blaubaer/audio-router/pkg/client"
	"github.com/blaubaer/audio-router/pkg/device"
	"github.com/blaubaer/audio-router/pkg/preset"
)

func main() {
	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(func(v *formatter.Text) {
			bv := true
			v.AllowMultiLineMessage = &bv
			v.MultiLineMessageAfterFields = &bv
		}),
		"json": formatter.NewJson(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.NewApp()
	timeout := 10 * time.Second

	cmd := kingpin.New("audio-router", "Selects the active audio input and output device on request of a controller.")
	a.SetupConfiguration(cmd)

	cmd.Flag("log.level", "").
		SetValue(lv.Level)
	cmd.Flag("log.format", "").
		Default("text").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "").
		Default("always").
		SetValue(lv.Consumer.Formatter.ColorMode)
	cmd.Flag("client.timeout", "How long a client command waits for the reply of the server.").
		Envar("AR_CLIENT_TIMEOUT").
		Default(timeout.String()).
		DurationVar(&timeout)

	cmd.Command("serve", "Serves device commands until terminated.").
		Default().
		Action(func(*kingpin.ParseContext) error {
			return serve(ctx, a)
		})

	cmd.Command("devices", "Lists the devices offered by the running server.").
		Action(func(*kingpin.ParseContext) error {
			return withClient(ctx, a, timeout, func(ctx context.Context, c *client.Client) error {
				devices, err := c.GetDevices(ctx)
				if err != nil {
					return err
				}
				client.PrintDevices(os.Stdout, devices.Inputs, devices.Outputs)
				return nil
			})
		})

	setInput := cmd.Command("set-input", "Selects the input device of the running server.")
	inputName := setInput.Arg("device name", "").Required().String()
	setInput.Action(func(*kingpin.ParseContext) error {
		return withClient(ctx, a, timeout, func(ctx context.Context, c *client.Client) error {
			return printMessage(c.SetInput(ctx, *inputName))
		})
	})

	setOutput := cmd.Command("set-output", "Selects the output device of the running server.")
	outputName := setOutput.Arg("device name", "").Required().String()
	setOutput.Action(func(*kingpin.ParseContext) error {
		return withClient(ctx, a, timeout, func(ctx context.Context, c *client.Client) error {
			return printMessage(c.SetOutput(ctx, *outputName))
		})
	})

	cmd.Command("shell", "Opens an interactive shell connected to the running server.").
		Action(func(*kingpin.ParseContext) error {
			c, err := a.Client(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			sh := client.Shell{Client: c, Dial: a.Client, Out: os.Stdout, Timeout: timeout}
			return sh.Run(ctx)
		})

	presetCmd := cmd.Command("preset", "Stores or restores a device selection.")
	presetSave := presetCmd.Command("save", "Stores the given devices as preset after the running server confirmed they exist.")
	presetInput := presetSave.Flag("input", "Input device of the preset.").String()
	presetOutput := presetSave.Flag("output", "Output device of the preset.").String()
	presetSave.Action(func(*kingpin.ParseContext) error {
		return withClient(ctx, a, timeout, func(ctx context.Context, c *client.Client) error {
			return savePreset(ctx, a, c, preset.Preset{Input: *presetInput, Output: *presetOutput})
		})
	})
	presetCmd.Command("load", "Selects the devices of the preset on the running server.").
		Action(func(*kingpin.ParseContext) error {
			return withClient(ctx, a, timeout, func(ctx context.Context, c *client.Client) error {
				return loadPreset(ctx, a, c)
			})
		})

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}

func serve(ctx context.Context, a *app.App) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Dispose(); err != nil {
			log.WithError(err).Warn("Cannot dispose application.")
		}
	}()

	if err := a.Run(ctx); err != nil {
		return err
	}
	log.Info("Terminated. Going down...")
	return nil
}

func withClient(ctx context.Context, a *app.App, timeout time.Duration, fn func(context.Context, *client.Client) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := a.Client(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return fn(ctx, c)
}

func printMessage(msg string, err error) error {
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, msg)
	return nil
}

func savePreset(ctx context.Context, a *app.App, c *client.Client, p preset.Preset) error {
	if p.IsZero() {
		return errors.New("neither --input nor --output provided")
	}
	devices, err := c.GetDevices(ctx)
	if err != nil {
		return err
	}
	offered := device.Enumeration{Inputs: devices.Inputs, Outputs: devices.Outputs}
	if v := p.Input; v != "" && !offered.Contains(device.KindInput, v) {
		return fmt.Errorf("input device not offered by the server: %s", v)
	}
	if v := p.Output; v != "" && !offered.Contains(device.KindOutput, v) {
		return fmt.Errorf("output device not offered by the server: %s", v)
	}

	store := a.PresetStore()
	if err := store.Save(p); err != nil {
		return err
	}
	log.With("preset", p).Info("Preset saved.")
	return nil
}

func loadPreset(ctx context.Context, a *app.App, c *client.Client) error {
	p, err := a.PresetStore().Load()
	if err != nil {
		return err
	}
	if v := p.Input; v != "" {
		if err := printMessage(c.SetInput(ctx, v)); err != nil {
			return err
		}
	}
	if v := p.Output; v != "" {
		if err := printMessage(c.SetOutput(ctx, v)); err != nil {
			return err
		}
	}
	return nil
}
