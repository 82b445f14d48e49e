package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/blaubaer/audio-router/pkg/common"
	"github.com/blaubaer/audio-router/pkg/device"
	"github.com/blaubaer/audio-router/pkg/protocol"
	"github.com/blaubaer/audio-router/pkg/transport"
	log "github.com/echocat/slf4g"
	"sync/atomic"
)

// Registry is what the Server needs of device.Registry.
type Registry interface {
	ListDevices() (inputs, outputs []string, err error)
	SelectInput(name string) error
	SelectOutput(name string) error
}

// Server answers one Command per request, strictly one after another.
type Server struct {
	listener transport.Listener
	registry Registry

	state atomic.Uint32
}

// New takes ownership of the already bound listener.
func New(listener transport.Listener, registry Registry) *Server {
	if listener == nil {
		panic(errors.New("nil listener"))
	}
	if registry == nil {
		panic(errors.New("nil registry"))
	}
	return &Server{
		listener: listener,
		registry: registry,
	}
}

func (this *Server) State() State {
	return State(this.state.Load())
}

// setState never leaves StateClosed.
func (this *Server) setState(v State) {
	for {
		current := this.state.Load()
		if State(current) == StateClosed {
			return
		}
		if this.state.CompareAndSwap(current, uint32(v)) {
			return
		}
	}
}

// Serve processes requests until ctx is done or the listener is closed,
// both of which are a regular end and return nil. It never returns because
// of the content of a request.
func (this *Server) Serve(ctx context.Context) error {
	if this.State() == StateClosed {
		return transport.ErrClosed
	}

	logger := log.With("address", this.listener.Address())
	logger.Info("Serving commands.")

	for {
		this.setState(StateServing)
		payload, err := this.listener.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				logger.Debug("Serving ended.")
				return nil
			}
			return fmt.Errorf("cannot receive next request: %w", err)
		}

		rsp := this.Handle(payload)

		this.setState(StateReplying)
		b, err := protocol.EncodeResponse(rsp)
		if err != nil {
			logger.WithError(err).Error("Cannot encode response.")
			b, _ = protocol.EncodeResponse(protocol.Failure{Message: "Internal error"})
		}
		if err := this.listener.Reply(ctx, b); err != nil {
			if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
				logger.Debug("Serving ended.")
				return nil
			}
			logger.WithError(err).Warn("Cannot send reply.")
		}
	}
}

// Handle decodes payload and dispatches it. It always produces exactly one
// Response.
func (this *Server) Handle(payload []byte) protocol.Response {
	this.setState(StateDecoding)
	cmd, err := protocol.DecodeCommand(payload)
	if errors.Is(err, protocol.ErrMalformedRequest) {
		log.WithError(err).Info("Malformed request received.")
		return protocol.Failure{Message: protocol.MessageInvalidJSON}
	}
	if err != nil {
		log.WithError(err).Info("Unknown command received.")
		return protocol.Failure{Message: protocol.MessageUnknownCommand}
	}

	this.setState(StateDispatching)
	return this.Dispatch(cmd)
}

func (this *Server) Dispatch(cmd protocol.Command) protocol.Response {
	log.With("action", cmd.Action()).
		Debug("Dispatching command.")

	switch v := cmd.(type) {
	case protocol.GetDevices:
		inputs, outputs, err := this.registry.ListDevices()
		if err != nil {
			return failureOf(err)
		}
		return protocol.Devices{Inputs: inputs, Outputs: outputs}
	case protocol.SetInput:
		if err := this.registry.SelectInput(v.DeviceName); err != nil {
			return failureOf(err)
		}
		return protocol.Success{Message: "Input device set successfully"}
	case protocol.SetOutput:
		if err := this.registry.SelectOutput(v.DeviceName); err != nil {
			return failureOf(err)
		}
		return protocol.Success{Message: "Output device set successfully"}
	default:
		return protocol.Failure{Message: protocol.MessageUnknownCommand}
	}
}

// Close releases the endpoint. A running Serve returns afterwards.
func (this *Server) Close() error {
	this.state.Store(uint32(StateClosed))
	return this.listener.Close()
}

func failureOf(err error) protocol.Response {
	if v, ok := common.AsError[*device.Error](err); ok {
		return protocol.Failure{Message: v.Error()}
	}
	return protocol.Failure{Message: err.Error()}
}
