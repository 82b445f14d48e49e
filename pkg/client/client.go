package client

import (
	"context"
	"errors"
	"fmt"
	"github.com/blaubaer/audio-router/pkg/protocol"
	"github.com/blaubaer/audio-router/pkg/transport"
)

// Client speaks the command protocol to a running server.
type Client struct {
	transport transport.Client
}

func New(t transport.Client) *Client {
	if t == nil {
		panic(errors.New("nil transport"))
	}
	return &Client{transport: t}
}

func Dial(ctx context.Context, conf transport.Configuration) (*Client, error) {
	t, err := transport.Dial(ctx, conf)
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

// Do sends cmd. A protocol level error is returned as protocol.Failure.
func (this *Client) Do(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	payload, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}
	reply, err := this.transport.Request(ctx, payload)
	if err != nil {
		return nil, err
	}
	rsp, err := protocol.DecodeResponse(reply)
	if err != nil {
		return nil, err
	}
	if v, ok := rsp.(protocol.Failure); ok {
		return nil, v
	}
	return rsp, nil
}

// Raw sends payload as is and returns the reply as is.
func (this *Client) Raw(ctx context.Context, payload []byte) ([]byte, error) {
	return this.transport.Request(ctx, payload)
}

func (this *Client) GetDevices(ctx context.Context) (protocol.Devices, error) {
	rsp, err := this.Do(ctx, protocol.GetDevices{})
	if err != nil {
		return protocol.Devices{}, err
	}
	v, ok := rsp.(protocol.Devices)
	if !ok {
		return protocol.Devices{}, fmt.Errorf("unexpected response to %s: %T", protocol.ActionGetDevices, rsp)
	}
	return v, nil
}

func (this *Client) SetInput(ctx context.Context, name string) (string, error) {
	return this.set(ctx, protocol.SetInput{DeviceName: name})
}

func (this *Client) SetOutput(ctx context.Context, name string) (string, error) {
	return this.set(ctx, protocol.SetOutput{DeviceName: name})
}

func (this *Client) set(ctx context.Context, cmd protocol.Command) (string, error) {
	rsp, err := this.Do(ctx, cmd)
	if err != nil {
		return "", err
	}
	v, ok := rsp.(protocol.Success)
	if !ok {
		return "", fmt.Errorf("unexpected response to %s: %T", cmd.Action(), rsp)
	}
	return v.Message, nil
}

func (this *Client) Close() error {
	return this.transport.Close()
}
