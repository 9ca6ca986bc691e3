package rtspctl

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/bluenviron/rtspctl/pkg/base"
	"github.com/bluenviron/rtspctl/pkg/conn"
)

// webSocketRW adapts a WebSocket connection to io.ReadWriter.
type webSocketRW struct {
	r *wsReader
	w *wsWriter
}

func (rw *webSocketRW) Read(p []byte) (int, error) {
	return rw.r.Read(p)
}

func (rw *webSocketRW) Write(p []byte) (int, error) {
	return rw.w.Write(p)
}

func TestSessionTunnelWebSocket(t *testing.T) {
	methods := make(chan base.Method, 10)

	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := websocket.Upgrader{
			Subprotocols: []string{webSocketSubprotocol},
		}

		wconn, err := u.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer wconn.Close()

		c := conn.NewConn(&webSocketRW{
			r: &wsReader{wc: wconn},
			w: &wsWriter{wc: wconn},
		})

		req, err := c.ReadRequest()
		if err != nil {
			return
		}
		methods <- req.Method

		res := okResponse(req)
		res.Header.Set("CSeq", strconv.FormatInt(int64(req.CSeq), 10))
		c.WriteResponse(res) //nolint:errcheck
	}))
	defer hs.Close()

	logger, _ := test.NewNullLogger()

	s, err := NewBuilder().
		URL("rtsp://" + strings.TrimPrefix(hs.URL, "http://") + "/stream").
		Tunnel(TunnelWebSocket).
		Timeout(2 * time.Second).
		Logger(logger).
		DialContext((&net.Dialer{}).DialContext).
		Build()
	require.NoError(t, err)

	res, err := s.Connect()
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
	require.Equal(t, testSDP, res.Body)
	require.Equal(t, StateConnected, s.State())
	require.Equal(t, base.Describe, <-methods)

	err = s.Teardown()
	require.NoError(t, err)
	require.Equal(t, base.Teardown, <-methods)
}

func TestSessionTunnelWebSocketRejectsText(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := websocket.Upgrader{
			Subprotocols: []string{webSocketSubprotocol},
		}

		wconn, err := u.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer wconn.Close()

		_, _, err = wconn.ReadMessage()
		if err != nil {
			return
		}

		wconn.WriteMessage(websocket.TextMessage, []byte("RTSP/1.0 200 OK\r\n\r\n")) //nolint:errcheck
		wconn.ReadMessage()                                                          //nolint:errcheck
	}))
	defer hs.Close()

	logger, _ := test.NewNullLogger()

	s, err := NewBuilder().
		URL("rtsp://" + strings.TrimPrefix(hs.URL, "http://") + "/stream").
		Tunnel(TunnelWebSocket).
		Timeout(2 * time.Second).
		Logger(logger).
		DialContext((&net.Dialer{}).DialContext).
		Build()
	require.NoError(t, err)

	_, err = s.Options()
	require.EqualError(t, err, "read failed: unexpected message type 1")
}

func TestWebSocketReaderSplitsMessages(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wconn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer wconn.Close()

		wconn.WriteMessage(websocket.BinaryMessage, []byte("0123456789")) //nolint:errcheck
		wconn.ReadMessage()                                              //nolint:errcheck
	}))
	defer hs.Close()

	wconn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(hs.URL, "http"), nil) //nolint:bodyclose
	require.NoError(t, err)
	defer wconn.Close()

	r := &wsReader{wc: wconn}
	var out bytes.Buffer

	buf := make([]byte, 4)
	for out.Len() < 10 {
		n, err := r.Read(buf)
		require.NoError(t, err)
		require.LessOrEqual(t, n, 4)
		out.Write(buf[:n])
	}

	require.Equal(t, "0123456789", out.String())
}
