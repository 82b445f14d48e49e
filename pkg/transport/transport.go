package transport

import (
	"context"
	"errors"
	"fmt"
	"github.com/blaubaer/audio-router/pkg/common"
	"strings"
)

var (
	ErrClosed           = errors.New("endpoint closed")
	ErrReplyPending     = errors.New("previous request not replied yet")
	ErrNoPendingRequest = errors.New("no request pending")
)

// Listener is a bound endpoint with strict request/reply discipline: every
// Receive must be followed by exactly one Reply before the next Receive.
type Listener interface {
	Receive(ctx context.Context) ([]byte, error)
	Reply(ctx context.Context, payload []byte) error
	Address() string
	Close() error
}

// Client sends one request and waits for its reply.
type Client interface {
	Request(ctx context.Context, payload []byte) ([]byte, error)
	Close() error
}

func NewConfiguration() Configuration {
	return Configuration{
		Type: TypeDefault,
	}
}

type Configuration struct {
	Type    Type   `yaml:"type"`
	Address string `yaml:"address,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("transport", fmt.Sprintf("Transport of the command endpoint. Possible values: %v", AllTypes)).
		Envar("AR_TRANSPORT").
		SetValue(&this.Type)
	using.Flag("transport.address", "Address of the command endpoint. Default depends on the transport.").
		Envar("AR_TRANSPORT_ADDRESS").
		StringVar(&this.Address)
}

func (this Configuration) ListenAddress() string {
	if v := this.Address; v != "" {
		return v
	}
	return this.Type.defaultListenAddress()
}

// DialAddress derives the address a client on the same host connects to.
func (this Configuration) DialAddress() string {
	address := this.ListenAddress()
	switch this.Type {
	case TypeZmq:
		return strings.Replace(address, "://*:", "://127.0.0.1:", 1)
	case TypeWebsocket:
		if strings.HasPrefix(address, "ws://") || strings.HasPrefix(address, "wss://") {
			return address
		}
		if strings.HasPrefix(address, ":") {
			address = "127.0.0.1" + address
		}
		return "ws://" + address + websocketPath
	default:
		return address
	}
}

// Listen binds the endpoint. A bind failure is returned as is; nothing
// stays allocated in that case.
func Listen(ctx context.Context, conf Configuration) (Listener, error) {
	switch conf.Type {
	case TypeZmq:
		return ListenZmq(ctx, conf.ListenAddress())
	case TypeWebsocket:
		return ListenWebsocket(conf.ListenAddress())
	default:
		return nil, fmt.Errorf("unsupported transport type: %v", conf.Type)
	}
}

func Dial(ctx context.Context, conf Configuration) (Client, error) {
	switch conf.Type {
	case TypeZmq:
		return DialZmq(ctx, conf.DialAddress())
	case TypeWebsocket:
		return DialWebsocket(ctx, conf.DialAddress())
	default:
		return nil, fmt.Errorf("unsupported transport type: %v", conf.Type)
	}
}
