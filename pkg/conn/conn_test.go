package conn

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/rtspctl/pkg/base"
)

func headerOf(kvs ...string) base.Header {
	var h base.Header
	for i := 0; i < len(kvs); i += 2 {
		h.Set(kvs[i], kvs[i+1])
	}
	return h
}

func TestRead(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  []byte
		dec  interface{}
	}{
		{
			"request",
			[]byte("DESCRIBE rtsp://example.com/media.mp4 RTSP/1.0\r\n" +
				"Accept: application/sdp\r\n" +
				"CSeq: 2\r\n" +
				"\r\n"),
			&base.Request{
				Method: base.Describe,
				URL:    base.MustParseURL("rtsp://example.com/media.mp4"),
				CSeq:   2,
				Header: headerOf("Accept", "application/sdp"),
			},
		},
		{
			"response",
			[]byte("RTSP/1.0 200 OK\r\n" +
				"CSeq: 1\r\n" +
				"Public: DESCRIBE, SETUP, TEARDOWN, PLAY, PAUSE\r\n" +
				"\r\n"),
			&base.Response{
				StatusCode:    200,
				StatusMessage: "OK",
				Header: headerOf(
					"CSeq", "1",
					"Public", "DESCRIBE, SETUP, TEARDOWN, PLAY, PAUSE",
				),
			},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			buf := bytes.NewBuffer(ca.enc)
			conn := NewConn(buf)
			dec, err := conn.Read()
			require.NoError(t, err)
			require.Equal(t, ca.dec, dec)
		})
	}
}

func TestReadError(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(&buf)
	_, err := conn.Read()
	require.Error(t, err)
}

func TestReadResponseBody(t *testing.T) {
	buf := bytes.NewBufferString("RTSP/1.0 200 OK\r\n" +
		"CSeq: 2\r\n" +
		"Content-Type: application/sdp\r\n" +
		"Content-Length: 27\r\n" +
		"\r\n" +
		"v=0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"RTSP/1.0 200 OK\r\n" +
		"CSeq: 3\r\n" +
		"\r\n")
	conn := NewConn(buf)

	res, err := conn.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
	require.Equal(t, "v=0\r\nm=video 0 RTP/AVP 96\r\n", res.Body)

	res, err = conn.ReadResponse()
	require.NoError(t, err)
	v, _ := res.Header.Get("CSeq")
	require.Equal(t, "3", v)
	require.Empty(t, res.Body)
}

func TestReadResponseMalformed(t *testing.T) {
	conn := NewConn(bytes.NewBufferString("garbage\r\n\r\n"))
	res, err := conn.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, base.StatusCode(0), res.StatusCode)
	require.Equal(t, base.ResponseErrorMalformedStatus, res.ErrorMessage)
}

func TestReadResponseTruncated(t *testing.T) {
	conn := NewConn(bytes.NewBufferString("RTSP/1.0 200 OK\r\nCSeq: 1\r\n"))
	res, err := conn.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)

	conn = NewConn(bytes.NewBufferString("RTSP/1.0 200 OK\r\nContent-Length: 10\r\n\r\nabc"))
	_, err = conn.ReadResponse()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadResponseContentLengthErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		raw  string
		err  string
	}{
		{
			"invalid",
			"RTSP/1.0 200 OK\r\nContent-Length: abc\r\n\r\n",
			"invalid Content-Length (abc)",
		},
		{
			"too big",
			"RTSP/1.0 200 OK\r\nContent-Length: 1000000\r\n\r\n",
			"Content-Length exceeds 131072 (it's 1000000)",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			conn := NewConn(bytes.NewBufferString(ca.raw))
			_, err := conn.ReadResponse()
			require.EqualError(t, err, ca.err)
		})
	}
}

func TestWriteRequest(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(&buf)
	err := conn.WriteRequest(&base.Request{
		Method: base.Options,
		URL:    base.MustParseURL("rtsp://example.com/media.mp4"),
		CSeq:   1,
		Header: headerOf(
			"Require", "implicit-play",
			"Proxy-Require", "gzipped-messages",
		),
	})
	require.NoError(t, err)
	require.Equal(t, "OPTIONS rtsp://example.com/media.mp4 RTSP/1.0\r\n"+
		"Cseq: 1\r\n"+
		"Require: implicit-play\r\n"+
		"Proxy-Require: gzipped-messages\r\n"+
		"\r\n", buf.String())

	req, err := NewConn(&buf).ReadRequest()
	require.NoError(t, err)
	require.Equal(t, 1, req.CSeq)
}

func TestWriteRequestError(t *testing.T) {
	var buf bytes.Buffer
	err := NewConn(&buf).WriteRequest(&base.Request{Method: base.Options})
	require.EqualError(t, err, "URL not provided")
	require.Zero(t, buf.Len())
}

func TestWriteResponse(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(&buf)
	err := conn.WriteResponse(&base.Response{
		StatusCode:    base.StatusOK,
		StatusMessage: "OK",
		Header: headerOf(
			"CSeq", "2",
			"Session", "645252166",
			"Date", "Sat, Aug 16 2014 02:22:28 GMT",
		),
		Body: "v=0\r\n",
	})
	require.NoError(t, err)

	res, err := conn.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, res.StatusCode)
	v, _ := res.Header.Get("Session")
	require.Equal(t, "645252166", v)
	require.Equal(t, "v=0\r\n", res.Body)
}
