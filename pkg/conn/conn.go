// Package conn contains a RTSP connection implementation.
package conn

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bluenviron/rtspctl/pkg/base"
)

const (
	readBufferSize   = 4096
	maxHeadSize      = 64 * 1024
	maxContentLength = 128 * 1024
)

// Conn is a RTSP connection.
type Conn struct {
	w  io.Writer
	br *bufio.Reader
}

// NewConn allocates a Conn.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		w:  rw,
		br: bufio.NewReaderSize(rw, readBufferSize),
	}
}

func contentLength(head string) (int, error) {
	for _, line := range strings.Split(head, "\r\n")[1:] {
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}

		if !strings.EqualFold(strings.TrimSpace(line[:i]), "Content-Length") {
			continue
		}

		v := strings.TrimSpace(line[i+1:])
		cl, err := strconv.ParseUint(v, 10, 31)
		if err != nil {
			return 0, fmt.Errorf("invalid Content-Length (%v)", v)
		}

		if cl > maxContentLength {
			return 0, fmt.Errorf("Content-Length exceeds %d (it's %d)", maxContentLength, cl)
		}

		return int(cl), nil
	}

	return 0, nil
}

// readMessage reads the raw text of a message: the head, up to and including
// the empty line, and a body of Content-Length bytes.
// If the stream ends inside the head, the bytes read so far are returned.
func (c *Conn) readMessage() (string, error) {
	var sb strings.Builder

	for {
		line, err := c.br.ReadString('\n')
		sb.WriteString(line)

		if err != nil {
			if err == io.EOF && sb.Len() != 0 {
				return sb.String(), nil
			}
			return "", err
		}

		if sb.Len() > maxHeadSize {
			return "", fmt.Errorf("message head exceeds %d bytes", maxHeadSize)
		}

		// first line can't be empty
		if sb.Len() == len(line) && strings.TrimRight(line, "\r\n") == "" {
			sb.Reset()
			continue
		}

		if line == "\r\n" || line == "\n" {
			break
		}
	}

	head := sb.String()

	cl, err := contentLength(head)
	if err != nil {
		return "", err
	}

	if cl == 0 {
		return head, nil
	}

	body := make([]byte, cl)
	_, err = io.ReadFull(c.br, body)
	if err != nil {
		return "", err
	}

	return head + string(body), nil
}

// Read reads a Request or a Response.
func (c *Conn) Read() (interface{}, error) {
	byts, err := c.br.Peek(2)
	if err != nil {
		return nil, err
	}

	if byts[0] == 'R' && byts[1] == 'T' {
		return c.ReadResponse()
	}

	return c.ReadRequest()
}

// ReadRequest reads a Request.
func (c *Conn) ReadRequest() (*base.Request, error) {
	raw, err := c.readMessage()
	if err != nil {
		return nil, err
	}

	return base.ParseRequest(raw)
}

// ReadResponse reads a Response.
// Malformed responses are not returned as errors: they are decoded into a
// Response with ErrorMessage set.
func (c *Conn) ReadResponse() (*base.Response, error) {
	raw, err := c.readMessage()
	if err != nil {
		return nil, err
	}

	return base.ParseResponse(raw), nil
}

// WriteRequest writes a request.
func (c *Conn) WriteRequest(req *base.Request) error {
	buf, err := req.Marshal()
	if err != nil {
		return err
	}

	_, err = c.w.Write(buf)
	return err
}

// WriteResponse writes a response.
func (c *Conn) WriteResponse(res *base.Response) error {
	_, err := c.w.Write(res.Marshal())
	return err
}
