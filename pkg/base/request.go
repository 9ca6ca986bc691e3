// Package base contains the primitives of the RTSP protocol.
package base

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	rtspProtocol10 = "RTSP/1.0"
)

// Method is the method of a RTSP request.
type Method string

// methods.
const (
	Announce     Method = "ANNOUNCE"
	Describe     Method = "DESCRIBE"
	GetParameter Method = "GET_PARAMETER"
	Options      Method = "OPTIONS"
	Pause        Method = "PAUSE"
	Play         Method = "PLAY"
	Record       Method = "RECORD"
	Setup        Method = "SETUP"
	SetParameter Method = "SET_PARAMETER"
	Teardown     Method = "TEARDOWN"
)

// headers written from dedicated Request fields.
var reservedRequestHeaders = map[string]struct{}{
	"CSeq":           {},
	"User-Agent":     {},
	"Session":        {},
	"Range":          {},
	"Content-Length": {},
}

// Request is a RTSP request.
type Request struct {
	// request method
	Method Method

	// request url
	URL *URL

	// session token. Empty until assigned by the server.
	Session string

	// sequence number
	CSeq int

	// (optional) range expression
	Range string

	// (optional) body
	Body []byte

	// additional headers
	Header Header

	// (optional) user agent
	UserAgent string
}

// Marshal encodes a Request.
func (req Request) Marshal() ([]byte, error) {
	if req.Method == "" {
		return nil, fmt.Errorf("empty method")
	}

	if req.URL == nil {
		return nil, fmt.Errorf("URL not provided")
	}

	if req.CSeq < 0 {
		return nil, fmt.Errorf("invalid CSeq (%d)", req.CSeq)
	}

	var sb strings.Builder

	sb.WriteString(string(req.Method) + " " + req.URL.CloneWithoutCredentials().String() + " " + rtspProtocol10 + "\r\n")
	sb.WriteString("Cseq: " + strconv.FormatInt(int64(req.CSeq), 10) + "\r\n")

	if req.UserAgent != "" {
		sb.WriteString("User-Agent: " + req.UserAgent + "\r\n")
	}

	if req.Session != "" {
		sb.WriteString("Session: " + req.Session + "\r\n")
	}

	sb.WriteString(req.Header.marshal(reservedRequestHeaders))

	if req.Range != "" {
		sb.WriteString("Range: " + req.Range + "\r\n")
	}

	if len(req.Body) != 0 {
		sb.WriteString("Content-Length: " + strconv.FormatInt(int64(len(req.Body)), 10) + "\r\n")
	}

	sb.WriteString("\r\n")
	sb.Write(req.Body)

	return []byte(sb.String()), nil
}

// String implements fmt.Stringer.
func (req Request) String() string {
	buf, _ := req.Marshal()
	return string(buf)
}

// ParseRequest decodes a raw request.
// Structured fields (CSeq, Session, Range, User-Agent) are extracted from the header
// and removed from it.
func ParseRequest(raw string) (*Request, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty request")
	}

	lines := strings.Split(raw, "\r\n")

	parts := strings.SplitN(lines[0], " ", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid request line (%v)", lines[0])
	}

	if parts[2] != rtspProtocol10 {
		return nil, fmt.Errorf("expected '%s', got '%s'", rtspProtocol10, parts[2])
	}

	u, err := ParseURL(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid URL (%v)", parts[1])
	}

	req := &Request{
		Method: Method(parts[0]),
		URL:    u,
	}

	n := req.Header.parse(lines[1:])

	if v, ok := req.Header.Get("CSeq"); ok {
		tmp, err := strconv.ParseUint(v, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid CSeq (%v)", v)
		}
		req.CSeq = int(tmp)
		req.Header.Del("CSeq")
	}

	if v, ok := req.Header.Get("Session"); ok {
		req.Session = v
		req.Header.Del("Session")
	}

	if v, ok := req.Header.Get("Range"); ok {
		req.Range = v
		req.Header.Del("Range")
	}

	if v, ok := req.Header.Get("User-Agent"); ok {
		req.UserAgent = v
		req.Header.Del("User-Agent")
	}

	req.Header.Del("Content-Length")

	if 1+n < len(lines) {
		body := strings.Join(lines[1+n:], "\r\n")
		if body != "" {
			req.Body = []byte(body)
		}
	}

	return req, nil
}
