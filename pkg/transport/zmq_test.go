package transport

import (
	"context"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"testing"
	"time"
)

func TestZmq_requestReply(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	address := freeZmqAddress(t)
	listener, err := ListenZmq(ctx, address)
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	go echoPrefixed(ctx, listener)

	client, err := DialZmq(ctx, address)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	for _, payload := range []string{`{"action":"get_devices"}`, "second"} {
		actual, err := client.Request(ctx, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, "reply:"+payload, string(actual))
	}
}

func TestZmq_replyWithoutRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listener, err := ListenZmq(ctx, freeZmqAddress(t))
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	assert.ErrorIs(t, listener.Reply(ctx, []byte("nobody asked")), ErrNoPendingRequest)
}

func TestZmq_receiveCanceled(t *testing.T) {
	listener, err := ListenZmq(context.Background(), freeZmqAddress(t))
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = listener.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = listener.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConfiguration_addresses(t *testing.T) {
	zmq := Configuration{Type: TypeZmq}
	assert.Equal(t, "tcp://*:5555", zmq.ListenAddress())
	assert.Equal(t, "tcp://127.0.0.1:5555", zmq.DialAddress())

	ws := Configuration{Type: TypeWebsocket}
	assert.Equal(t, "127.0.0.1:5556", ws.ListenAddress())
	assert.Equal(t, "ws://127.0.0.1:5556/", ws.DialAddress())

	ws.Address = ":7000"
	assert.Equal(t, "ws://127.0.0.1:7000/", ws.DialAddress())
}

func TestType_Set(t *testing.T) {
	var actual Type
	require.NoError(t, actual.Set("WebSocket"))
	assert.Equal(t, TypeWebsocket, actual)
	require.NoError(t, actual.Set("zeromq"))
	assert.Equal(t, TypeZmq, actual)
	assert.EqualError(t, actual.Set("http"), "illegal-transport-type: http")
	assert.Equal(t, "zmq,websocket", AllTypes.String())
}

func freeZmqAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return fmt.Sprintf("tcp://127.0.0.1:%d", port)
}
