package transport

import (
	"context"
	"errors"
	"fmt"
	log "github.com/echocat/slf4g"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"net"
	"net/http"
	"sync"
	"time"
)

const websocketPath = "/"

// ListenWebsocket binds a HTTP endpoint which upgrades to websocket. Every
// message of every connection is a request; all of them are handed out one
// by one through Receive. A connection does not get to send its next request
// processed before it got the reply of the previous one.
func ListenWebsocket(address string) (*WebsocketListener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("cannot bind %s: %w", address, err)
	}

	result := &WebsocketListener{
		listener:    ln,
		requests:    make(chan *websocketRequest),
		closed:      make(chan struct{}),
		connections: make(map[*websocket.Conn]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(websocketPath, result.handle)
	result.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	result.group.Go(func() error {
		if err := result.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	return result, nil
}

type WebsocketListener struct {
	listener net.Listener
	server   *http.Server
	upgrader websocket.Upgrader
	group    errgroup.Group

	requests chan *websocketRequest
	pending  *websocketRequest

	closed      chan struct{}
	closeOnce   sync.Once
	connections map[*websocket.Conn]struct{}
	mutex       sync.Mutex
}

type websocketRequest struct {
	payload []byte
	reply   chan []byte
}

func (this *WebsocketListener) Receive(ctx context.Context) ([]byte, error) {
	this.mutex.Lock()
	pending := this.pending
	this.mutex.Unlock()
	if pending != nil {
		return nil, ErrReplyPending
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-this.closed:
		return nil, ErrClosed
	case req := <-this.requests:
		this.mutex.Lock()
		this.pending = req
		this.mutex.Unlock()
		return req.payload, nil
	}
}

func (this *WebsocketListener) Reply(ctx context.Context, payload []byte) error {
	this.mutex.Lock()
	req := this.pending
	this.pending = nil
	this.mutex.Unlock()
	if req == nil {
		return ErrNoPendingRequest
	}

	select {
	case req.reply <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-this.closed:
		return ErrClosed
	}
}

func (this *WebsocketListener) Address() string {
	return this.listener.Addr().String()
}

func (this *WebsocketListener) Close() (rErr error) {
	this.closeOnce.Do(func() {
		close(this.closed)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rErr = this.server.Shutdown(ctx)

		this.mutex.Lock()
		for conn := range this.connections {
			_ = conn.Close()
		}
		this.mutex.Unlock()

		if err := this.group.Wait(); err != nil && rErr == nil {
			rErr = err
		}
	})
	return rErr
}

func (this *WebsocketListener) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := this.upgrader.Upgrade(w, r, nil)
	if err != nil {
		var herr websocket.HandshakeError
		if !errors.As(err, &herr) {
			log.WithError(err).
				With("remote", r.RemoteAddr).
				Warn("Cannot upgrade connection.")
		}
		return
	}

	if !this.track(conn) {
		_ = conn.Close()
		return
	}
	defer this.untrack(conn)

	logger := log.With("remote", r.RemoteAddr)
	logger.Debug("Client connected.")

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WithError(err).Info("Client connection broke.")
			} else {
				logger.Debug("Client disconnected.")
			}
			return
		}

		req := &websocketRequest{payload: payload, reply: make(chan []byte, 1)}
		select {
		case this.requests <- req:
		case <-this.closed:
			return
		}

		var reply []byte
		select {
		case reply = <-req.reply:
		case <-this.closed:
			return
		}

		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			logger.WithError(err).Info("Cannot send reply.")
			return
		}
	}
}

func (this *WebsocketListener) track(conn *websocket.Conn) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	select {
	case <-this.closed:
		return false
	default:
	}
	this.connections[conn] = struct{}{}
	return true
}

func (this *WebsocketListener) untrack(conn *websocket.Conn) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	delete(this.connections, conn)
	_ = conn.Close()
}

// DialWebsocket connects to a ListenWebsocket endpoint; url has to be of
// the form ws://host:port/.
func DialWebsocket(ctx context.Context, url string) (*WebsocketClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", url, err)
	}
	return &WebsocketClient{conn: conn, url: url}, nil
}

type WebsocketClient struct {
	conn  *websocket.Conn
	url   string
	mutex sync.Mutex
}

func (this *WebsocketClient) Request(ctx context.Context, payload []byte) ([]byte, error) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	deadline := time.Time{}
	if v, ok := ctx.Deadline(); ok {
		deadline = v
	}
	_ = this.conn.SetWriteDeadline(deadline)
	_ = this.conn.SetReadDeadline(deadline)

	stop := context.AfterFunc(ctx, func() { _ = this.conn.Close() })
	defer stop()

	if err := this.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if cErr := ctx.Err(); cErr != nil {
			return nil, cErr
		}
		return nil, fmt.Errorf("cannot send request to %s: %w", this.url, err)
	}
	_, reply, err := this.conn.ReadMessage()
	if err != nil {
		if cErr := ctx.Err(); cErr != nil {
			return nil, cErr
		}
		return nil, fmt.Errorf("cannot receive reply from %s: %w", this.url, err)
	}
	return reply, nil
}

func (this *WebsocketClient) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	_ = this.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return this.conn.Close()
}
