package client

import (
	"context"
	"errors"
	"fmt"
	"github.com/blaubaer/audio-router/pkg/common"
	"github.com/blaubaer/audio-router/pkg/protocol"
	"github.com/chzyer/readline"
	log "github.com/echocat/slf4g"
	"io"
	"strings"
	"sync"
	"time"
)

var ErrExit = errors.New("exit")

const shellHelp = `Commands:
  devices              lists input and output devices
  input <device name>  selects the input device
  output <device name> selects the output device
  raw <json>           sends the payload as is
  help                 shows this help
  exit                 leaves the shell
`

// Shell is an interactive front-end for a Client. If Dial is set a broken
// connection is replaced by a new one on the next command.
type Shell struct {
	Client  *Client
	Dial    func(context.Context) (*Client, error)
	Out     io.Writer
	Timeout time.Duration

	lastInputs  []string
	lastOutputs []string
	mutex       sync.RWMutex
}

func (this *Shell) Run(ctx context.Context) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "audio-router> ",
		AutoComplete:    this.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("could not open terminal: %w", err)
	}
	defer func() {
		_ = l.Close()
	}()
	if this.Out == nil {
		this.Out = l.Stdout()
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not read from terminal: %w", err)
		}

		if err := this.Execute(ctx, line); errors.Is(err, ErrExit) {
			return nil
		} else if err != nil {
			_, _ = fmt.Fprintf(this.Out, "error: %v\n", err)
		}
	}
}

// Execute runs one line of shell input.
func (this *Shell) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	if v := this.Timeout; v > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v)
		defer cancel()
	}

	switch strings.ToLower(verb) {
	case "devices", "ls", "list":
		return this.withClient(ctx, func(c *Client) error {
			devices, err := c.GetDevices(ctx)
			if err != nil {
				return err
			}
			this.remember(devices)
			PrintDevices(this.Out, devices.Inputs, devices.Outputs)
			return nil
		})
	case "input", "in":
		if rest == "" {
			return errors.New("usage: input <device name>")
		}
		return this.withClient(ctx, func(c *Client) error {
			msg, err := c.SetInput(ctx, rest)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(this.Out, msg)
			return nil
		})
	case "output", "out":
		if rest == "" {
			return errors.New("usage: output <device name>")
		}
		return this.withClient(ctx, func(c *Client) error {
			msg, err := c.SetOutput(ctx, rest)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(this.Out, msg)
			return nil
		})
	case "raw":
		return this.withClient(ctx, func(c *Client) error {
			reply, err := c.Raw(ctx, []byte(rest))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(this.Out, string(reply))
			return nil
		})
	case "help", "?":
		_, _ = fmt.Fprint(this.Out, shellHelp)
		return nil
	case "exit", "quit":
		return ErrExit
	default:
		log.With("verb", verb).Debug("Unknown shell command.")
		return fmt.Errorf("unknown command %q, try help", verb)
	}
}

// withClient runs fn with the current Client. A transport error or an
// expired ctx may have closed the connection, so the Client is dropped then
// and dialed again on the next command.
func (this *Shell) withClient(ctx context.Context, fn func(*Client) error) error {
	if this.Client == nil {
		if this.Dial == nil {
			return errors.New("not connected")
		}
		c, err := this.Dial(ctx)
		if err != nil {
			return err
		}
		this.Client = c
	}

	err := fn(this.Client)
	_, failure := common.AsError[protocol.Failure](err)
	if this.Dial != nil && ((err != nil && !failure) || ctx.Err() != nil) {
		_ = this.Client.Close()
		this.Client = nil
		log.With("error", err).
			Debug("Connection dropped, dialing again on the next command.")
	}
	return err
}

func (this *Shell) remember(devices protocol.Devices) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.lastInputs, this.lastOutputs = devices.Inputs, devices.Outputs
}

func (this *Shell) last() (inputs, outputs []string) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return this.lastInputs, this.lastOutputs
}

func (this *Shell) completer() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("devices"),
		readline.PcItem("input", readline.PcItemDynamic(func(string) []string {
			inputs, _ := this.last()
			return inputs
		})),
		readline.PcItem("output", readline.PcItemDynamic(func(string) []string {
			_, outputs := this.last()
			return outputs
		})),
		readline.PcItem("raw"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func PrintDevices(to io.Writer, inputs, outputs []string) {
	section := func(title string, names []string) {
		_, _ = fmt.Fprintf(to, "%s:\n", title)
		if len(names) == 0 {
			_, _ = fmt.Fprintln(to, "  (none)")
		}
		for _, name := range names {
			_, _ = fmt.Fprintf(to, "  %s\n", name)
		}
	}
	section("Inputs", inputs)
	section("Outputs", outputs)
}
