package client

import (
	"bytes"
	"context"
	"github.com/blaubaer/audio-router/pkg/device"
	"github.com/blaubaer/audio-router/pkg/host"
	"github.com/blaubaer/audio-router/pkg/protocol"
	"github.com/blaubaer/audio-router/pkg/server"
	"github.com/blaubaer/audio-router/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func startServer(t *testing.T, ctx context.Context) (*Client, *device.Registry, transport.Configuration) {
	t.Helper()

	listener, err := transport.ListenWebsocket("127.0.0.1:0")
	require.NoError(t, err)

	registry := device.NewRegistry(host.NewStatic(
		[]string{"Mic A", "Mic B"},
		[]string{"Speakers", "Headphones"},
	), device.Filter{})
	srv := server.New(listener, registry)

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	conf := transport.Configuration{
		Type:    transport.TypeWebsocket,
		Address: listener.Address(),
	}
	c, err := Dial(ctx, conf)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		require.NoError(t, srv.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return c, registry, conf
}

func TestClient_endToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	instance, registry, _ := startServer(t, ctx)

	devices, err := instance.GetDevices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mic A", "Mic B"}, devices.Inputs)
	assert.Equal(t, []string{"Speakers", "Headphones"}, devices.Outputs)

	msg, err := instance.SetInput(ctx, "Mic B")
	require.NoError(t, err)
	assert.Equal(t, "Input device set successfully", msg)

	_, err = instance.SetInput(ctx, "Mic C")
	var failure protocol.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Input device not found: Mic C", failure.Message)

	msg, err = instance.SetOutput(ctx, "Headphones")
	require.NoError(t, err)
	assert.Equal(t, "Output device set successfully", msg)

	assert.Equal(t, device.Configuration{Input: "Mic B", Output: "Headphones"}, registry.Current())
}

func TestClient_Raw(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	instance, _, _ := startServer(t, ctx)

	reply, err := instance.Raw(ctx, []byte(`{"action":`))
	require.NoError(t, err)
	assert.Equal(t, `{"status":"error","message":"Invalid JSON"}`, string(reply))

	reply, err = instance.Raw(ctx, []byte(`{"action":"noop"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"status":"error","message":"Unknown or invalid command"}`, string(reply))
}

func TestShell_Execute(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, registry, _ := startServer(t, ctx)

	var out bytes.Buffer
	instance := &Shell{Client: c, Out: &out, Timeout: 5 * time.Second}

	require.NoError(t, instance.Execute(ctx, "devices"))
	assert.Equal(t, "Inputs:\n  Mic A\n  Mic B\nOutputs:\n  Speakers\n  Headphones\n", out.String())
	assert.Equal(t, []string{"Mic A", "Mic B"}, instance.lastInputs)

	out.Reset()
	require.NoError(t, instance.Execute(ctx, "input   Mic A "))
	assert.Equal(t, "Input device set successfully\n", out.String())
	assert.Equal(t, "Mic A", registry.Current().Input)

	assert.EqualError(t, instance.Execute(ctx, "output Nope"), "Output device not found: Nope")
	assert.EqualError(t, instance.Execute(ctx, "output"), "usage: output <device name>")
	assert.EqualError(t, instance.Execute(ctx, "dance"), `unknown command "dance", try help`)
	assert.ErrorIs(t, instance.Execute(ctx, "exit"), ErrExit)
	assert.NoError(t, instance.Execute(ctx, "   "))

	out.Reset()
	require.NoError(t, instance.Execute(ctx, `raw {"action":"get_devices"}`))
	assert.Equal(t, `{"status":"success","inputs":["Mic A","Mic B"],"outputs":["Speakers","Headphones"]}`+"\n", out.String())
}

func TestShell_Execute_dialsAgainAfterExpiredCommand(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, registry, conf := startServer(t, ctx)

	var out bytes.Buffer
	dials := 0
	instance := &Shell{Client: c, Out: &out, Timeout: 5 * time.Second, Dial: func(ctx context.Context) (*Client, error) {
		dials++
		return Dial(ctx, conf)
	}}
	defer func() {
		if v := instance.Client; v != nil {
			_ = v.Close()
		}
	}()

	expired, expire := context.WithCancel(ctx)
	expire()
	_ = instance.Execute(expired, "devices")
	assert.Nil(t, instance.Client)

	out.Reset()
	require.NoError(t, instance.Execute(ctx, "input Mic B"))
	assert.Equal(t, "Input device set successfully\n", out.String())
	assert.Equal(t, "Mic B", registry.Current().Input)
	assert.Equal(t, 1, dials)

	assert.EqualError(t, instance.Execute(ctx, "input Nope"), "Input device not found: Nope")
	assert.NotNil(t, instance.Client)
	assert.Equal(t, 1, dials)
}

func TestShell_Execute_completionReadsConcurrently(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, _, _ := startServer(t, ctx)

	instance := &Shell{Client: c, Out: &bytes.Buffer{}}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				_, _ = instance.last()
			}
		}
	}()

	for i := 0; i < 10; i++ {
		require.NoError(t, instance.Execute(ctx, "devices"))
	}
	close(stop)
	<-done

	inputs, outputs := instance.last()
	assert.Equal(t, []string{"Mic A", "Mic B"}, inputs)
	assert.Equal(t, []string{"Speakers", "Headphones"}, outputs)
}

func TestShell_Execute_notConnected(t *testing.T) {
	instance := &Shell{Out: &bytes.Buffer{}}

	assert.EqualError(t, instance.Execute(context.Background(), "devices"), "not connected")
}

func TestPrintDevices_empty(t *testing.T) {
	var out bytes.Buffer
	PrintDevices(&out, nil, []string{"Speakers"})
	assert.Equal(t, "Inputs:\n  (none)\nOutputs:\n  Speakers\n", out.String())
}
