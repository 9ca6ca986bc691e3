package rtspctl

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type wsReader struct {
	wc *websocket.Conn

	buf []byte
}

func (r *wsReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		var msgType int
		var err error
		msgType, r.buf, err = r.wc.ReadMessage()
		if err != nil {
			return 0, err
		}

		if msgType != websocket.BinaryMessage {
			return 0, fmt.Errorf("unexpected message type %v", msgType)
		}
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]

	return n, nil
}

type wsWriter struct {
	wc *websocket.Conn

	mutex sync.Mutex
}

func (w *wsWriter) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	err := w.wc.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// sessionTunnelWebSocket is a net.Conn that carries RTSP messages
// inside binary WebSocket messages.
type sessionTunnelWebSocket struct {
	wconn *websocket.Conn
	r     *wsReader
	w     *wsWriter
}

func (tu *sessionTunnelWebSocket) Read(b []byte) (int, error) {
	return tu.r.Read(b)
}

func (tu *sessionTunnelWebSocket) Write(b []byte) (int, error) {
	return tu.w.Write(b)
}

func (tu *sessionTunnelWebSocket) Close() error {
	return tu.wconn.Close()
}

func (tu *sessionTunnelWebSocket) LocalAddr() net.Addr {
	return tu.wconn.LocalAddr()
}

func (tu *sessionTunnelWebSocket) RemoteAddr() net.Addr {
	return tu.wconn.RemoteAddr()
}

func (tu *sessionTunnelWebSocket) SetDeadline(t time.Time) error {
	err := tu.wconn.SetReadDeadline(t)
	if err != nil {
		return err
	}
	return tu.wconn.SetWriteDeadline(t)
}

func (tu *sessionTunnelWebSocket) SetReadDeadline(t time.Time) error {
	return tu.wconn.SetReadDeadline(t)
}

func (tu *sessionTunnelWebSocket) SetWriteDeadline(t time.Time) error {
	return tu.wconn.SetWriteDeadline(t)
}

func newSessionTunnelWebSocket(
	ctx context.Context,
	dialContext func(ctx context.Context, network, address string) (net.Conn, error),
	addr string,
	tlsConfig *tls.Config,
) (net.Conn, error) {
	var ur string
	if tlsConfig != nil {
		ur = "wss"
	} else {
		ur = "ws"
	}
	ur += "://" + addr + "/"

	wconn, _, err := (&websocket.Dialer{
		NetDialContext:  dialContext,
		TLSClientConfig: tlsConfig,
		Subprotocols:    []string{webSocketSubprotocol},
	}).DialContext(ctx, ur, nil) //nolint:bodyclose
	if err != nil {
		return nil, err
	}

	return &sessionTunnelWebSocket{
		wconn: wconn,
		r:     &wsReader{wc: wconn},
		w:     &wsWriter{wc: wconn},
	}, nil
}
