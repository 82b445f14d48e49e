package transport

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestWebsocket_requestReply(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listener, err := ListenWebsocket("127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	go echoPrefixed(ctx, listener)

	client, err := DialWebsocket(ctx, "ws://"+listener.Address()+"/")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	for _, payload := range []string{"first", "second", "third"} {
		actual, err := client.Request(ctx, []byte(payload))
		require.NoError(t, err)
		assert.Equal(t, "reply:"+payload, string(actual))
	}
}

func TestWebsocket_discipline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listener, err := ListenWebsocket("127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	assert.ErrorIs(t, listener.Reply(ctx, []byte("nobody asked")), ErrNoPendingRequest)

	client, err := DialWebsocket(ctx, "ws://"+listener.Address()+"/")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	replied := make(chan []byte, 1)
	go func() {
		v, _ := client.Request(ctx, []byte("one"))
		replied <- v
	}()

	actual, err := listener.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one", string(actual))

	_, err = listener.Receive(ctx)
	assert.ErrorIs(t, err, ErrReplyPending)

	require.NoError(t, listener.Reply(ctx, []byte("done")))
	assert.Equal(t, "done", string(<-replied))
}

func TestWebsocket_receiveCanceled(t *testing.T) {
	listener, err := ListenWebsocket("127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = listener.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebsocket_closed(t *testing.T) {
	listener, err := ListenWebsocket("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, listener.Close())
	require.NoError(t, listener.Close())

	_, err = listener.Receive(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWebsocket_bindFailure(t *testing.T) {
	first, err := ListenWebsocket("127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	_, err = ListenWebsocket(first.Address())
	assert.ErrorContains(t, err, "cannot bind")
}

func echoPrefixed(ctx context.Context, listener Listener) {
	for {
		payload, err := listener.Receive(ctx)
		if err != nil {
			return
		}
		if err := listener.Reply(ctx, append([]byte("reply:"), payload...)); err != nil {
			return
		}
	}
}
