package transport

import (
	"context"
	"fmt"
	"github.com/go-zeromq/zmq4"
	"sync"
)

// ListenZmq binds a ZeroMQ REP socket. The REP socket itself enforces the
// alternation of receive and send.
func ListenZmq(ctx context.Context, address string) (*ZmqListener, error) {
	socket := zmq4.NewRep(ctx)
	if err := socket.Listen(address); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("cannot bind %s: %w", address, err)
	}

	result := &ZmqListener{
		socket:  socket,
		address: address,
	}
	if addr := socket.Addr(); addr != nil {
		result.address = "tcp://" + addr.String()
	}
	return result, nil
}

type ZmqListener struct {
	socket  zmq4.Socket
	address string

	pending bool
	closed  bool
	mutex   sync.Mutex
}

func (this *ZmqListener) Receive(ctx context.Context) ([]byte, error) {
	if err := this.checkState(false); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() { _ = this.Close() })
	defer stop()

	msg, err := this.socket.Recv()
	if err != nil {
		if cErr := ctx.Err(); cErr != nil {
			return nil, cErr
		}
		if this.isClosed() {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("cannot receive from %s: %w", this.address, err)
	}

	this.mutex.Lock()
	this.pending = true
	this.mutex.Unlock()

	return msg.Bytes(), nil
}

func (this *ZmqListener) Reply(ctx context.Context, payload []byte) error {
	if err := this.checkState(true); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { _ = this.Close() })
	defer stop()

	this.mutex.Lock()
	this.pending = false
	this.mutex.Unlock()

	if err := this.socket.Send(zmq4.NewMsg(payload)); err != nil {
		return fmt.Errorf("cannot reply via %s: %w", this.address, err)
	}
	return nil
}

func (this *ZmqListener) Address() string {
	return this.address
}

func (this *ZmqListener) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.closed {
		return nil
	}
	this.closed = true
	return this.socket.Close()
}

func (this *ZmqListener) checkState(expectPending bool) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.closed {
		return ErrClosed
	}
	if this.pending && !expectPending {
		return ErrReplyPending
	}
	if !this.pending && expectPending {
		return ErrNoPendingRequest
	}
	return nil
}

func (this *ZmqListener) isClosed() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.closed
}

// DialZmq connects a ZeroMQ REQ socket.
func DialZmq(ctx context.Context, address string) (*ZmqClient, error) {
	socket := zmq4.NewReq(ctx)
	if err := socket.Dial(address); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("cannot connect to %s: %w", address, err)
	}
	return &ZmqClient{socket: socket, address: address}, nil
}

type ZmqClient struct {
	socket  zmq4.Socket
	address string
	mutex   sync.Mutex
}

// Request sends payload and waits for the reply. If ctx ends first the
// socket is closed, as a REQ socket cannot recover from a missing reply.
func (this *ZmqClient) Request(ctx context.Context, payload []byte) ([]byte, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = this.socket.Close() })
	defer stop()

	if err := this.socket.Send(zmq4.NewMsg(payload)); err != nil {
		if cErr := ctx.Err(); cErr != nil {
			return nil, cErr
		}
		return nil, fmt.Errorf("cannot send request to %s: %w", this.address, err)
	}
	msg, err := this.socket.Recv()
	if err != nil {
		if cErr := ctx.Err(); cErr != nil {
			return nil, cErr
		}
		return nil, fmt.Errorf("cannot receive reply from %s: %w", this.address, err)
	}
	return msg.Bytes(), nil
}

func (this *ZmqClient) Close() error {
	return this.socket.Close()
}
