/*
Package rtspctl is a RTSP 1.0 control client.

A Session drives a media session on a RTSP server through its lifecycle:
describe, setup, play and pause, teardown.
Each request is carried by a dedicated connection, that is opened before
the request is sent and closed after the response has been read.
*/
package rtspctl

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bluenviron/rtspctl/pkg/base"
	"github.com/bluenviron/rtspctl/pkg/bytecounter"
	"github.com/bluenviron/rtspctl/pkg/conn"
	"github.com/bluenviron/rtspctl/pkg/headers"
	"github.com/bluenviron/rtspctl/pkg/liberrors"
	"github.com/bluenviron/rtspctl/pkg/sdp"
)

// State is the state of a Session.
type State int

// states.
const (
	StateIdle State = iota
	StateConnected
	StateStreaming
	StatePaused
	StateClosed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"

	case StateConnected:
		return "connected"

	case StateStreaming:
		return "streaming"

	case StatePaused:
		return "paused"

	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var (
	statesConnected = []State{StateConnected, StateStreaming, StatePaused}
	statesOpen      = []State{StateIdle, StateConnected, StateStreaming, StatePaused}
)

// Session is a RTSP control session.
// It must be created with a Builder.
// Methods can be called by multiple goroutines; lifecycle operations are serialized.
type Session struct {
	url            *base.URL
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	userAgent      string
	dialContext    DialContextFunc
	tlsConfig      *tls.Config
	tunnel         Tunnel
	onRequest      func(*base.Request)
	onResponse     func(*base.Response)
	id             uuid.UUID
	log            logrus.FieldLogger

	cseq     cseqCounter
	requests atomic.Uint64
	counters bytecounter.Counters

	mutex       sync.Mutex
	state       State
	session     string
	contentBase *base.URL
	transports  []headers.Transport
	playRange   *headers.Range
}

// ID returns the local identifier of the session, used in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// URL returns the server URL.
func (s *Session) URL() *base.URL {
	return s.url.Clone()
}

// State returns the current state.
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// SessionID returns the session token assigned by the server.
// It is empty until Connect succeeds.
func (s *Session) SessionID() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.session
}

// ContentBase returns the Content-Base received in reply to Connect, or nil.
func (s *Session) ContentBase() *base.URL {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.contentBase == nil {
		return nil
	}
	return s.contentBase.Clone()
}

// Transports returns the transports accepted by the server, in setup order.
// When the server does not reply with a Transport header, the requested
// transport is reported.
func (s *Session) Transports() []headers.Transport {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]headers.Transport(nil), s.transports...)
}

// PlayRange returns the Range sent by the server in reply to the last
// successful PLAY request, or nil.
func (s *Session) PlayRange() *headers.Range {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.playRange
}

func (s *Session) checkState(allowed ...State) error {
	if s.state == StateClosed {
		return liberrors.ErrClientTerminated{}
	}

	for _, a := range allowed {
		if s.state == a {
			return nil
		}
	}

	allowedList := make([]fmt.Stringer, len(allowed))
	for i, a := range allowed {
		allowedList[i] = a
	}

	return liberrors.ErrClientWrongState{AllowedList: allowedList, State: s.state}
}

func (s *Session) setState(state State) {
	if state == s.state {
		return
	}

	s.log.WithFields(logrus.Fields{
		"from": s.state,
		"to":   state,
	}).Info("state changed")

	s.state = state
}

// do performs a single exchange: dial, write the request, read the response, close.
func (s *Session) do(req *base.Request) (*base.Response, error) {
	req.CSeq = s.cseq.next()
	req.Session = s.session
	req.UserAgent = s.userAgent

	log := s.log.WithFields(logrus.Fields{
		"method": req.Method,
		"cseq":   req.CSeq,
	})

	s.onRequest(req)
	log.WithField("url", req.URL.CloneWithoutCredentials()).Debug("sending request")

	ctx, cancel := context.WithTimeout(context.Background(), s.connectTimeout)
	defer cancel()

	nconn, err := s.dial(ctx)
	if err != nil {
		log.WithError(err).Warn("unable to connect")
		return nil, liberrors.ErrClientConnection{Op: "dial", Err: err}
	}
	defer nconn.Close()

	c := conn.NewConn(bytecounter.New(nconn, &s.counters))

	nconn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	err = c.WriteRequest(req)
	if err != nil {
		return nil, connectionError("write", err)
	}

	s.requests.Add(1)

	nconn.SetReadDeadline(time.Now().Add(s.readTimeout))
	res, err := c.ReadResponse()
	if err != nil {
		return nil, connectionError("read", err)
	}

	s.onResponse(res)
	log.WithField("status", res.StatusCode).Debug("response received")

	if res.StatusCode == 0 {
		return res, liberrors.ErrClientInvalidResponse{Message: res.ErrorMessage}
	}

	return res, nil
}

func connectionError(op string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		op += " timeout"
	}
	return liberrors.ErrClientConnection{Op: op, Err: err}
}

// doStateful performs an exchange and checks the status code.
func (s *Session) doStateful(req *base.Request) (*base.Response, error) {
	res, err := s.do(req)
	if err != nil {
		return res, err
	}

	if !res.Successful() {
		return res, liberrors.ErrClientWrongStatusCode{
			Code: res.StatusCode, Message: res.StatusMessage,
		}
	}

	return res, nil
}

func (s *Session) updateSessionID(res *base.Response, required bool) error {
	v, ok := res.Header.Get("Session")
	if !ok {
		if required {
			return liberrors.ErrClientSessionHeaderInvalid{Err: fmt.Errorf("header not provided")}
		}
		return nil
	}

	var sx headers.Session
	err := sx.Unmarshal(v)
	if err != nil {
		return liberrors.ErrClientSessionHeaderInvalid{Err: err}
	}

	s.session = sx.Session
	return nil
}

// Connect writes a DESCRIBE request and stores the session token provided
// by the server. The session moves to the connected state.
// In case of failure, the session remains idle.
func (s *Session) Connect() (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(StateIdle)
	if err != nil {
		return nil, err
	}

	res, err := s.doStateful(s.describeRequest())
	if err != nil {
		return res, err
	}

	err = s.updateSessionID(res, true)
	if err != nil {
		return res, err
	}

	if v, ok := res.Header.Get("Content-Base"); ok {
		if cb, err2 := base.ParseURL(v); err2 == nil {
			s.contentBase = cb
		}
	}

	s.setState(StateConnected)

	return res, nil
}

func (s *Session) describeRequest() *base.Request {
	req := &base.Request{
		Method: base.Describe,
		URL:    s.url,
	}
	req.Header.Set("Accept", "application/sdp")
	return req
}

// Describe writes a DESCRIBE request and reads a Response.
// The session state is not changed.
func (s *Session) Describe() (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesOpen...)
	if err != nil {
		return nil, err
	}

	return s.doStateful(s.describeRequest())
}

// DescribeInfo writes a DESCRIBE request and decodes the SDP contained in the response.
func (s *Session) DescribeInfo() (*sdp.Info, *base.Response, error) {
	res, err := s.Describe()
	if err != nil {
		return nil, res, err
	}

	info, err := sdp.Parse(res.Body)
	if err != nil {
		return nil, res, err
	}

	return info, res, nil
}

// Options writes an OPTIONS request and reads a Response.
func (s *Session) Options() (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesOpen...)
	if err != nil {
		return nil, err
	}

	return s.doStateful(&base.Request{
		Method: base.Options,
		URL:    s.url,
	})
}

func (s *Session) setup(u *base.URL, th headers.Transport) (*base.Response, error) {
	req := &base.Request{
		Method: base.Setup,
		URL:    u,
	}
	req.Header.Set("Transport", th.Marshal())

	res, err := s.doStateful(req)
	if err != nil {
		return res, err
	}

	accepted := th
	if v, ok := res.Header.Get("Transport"); ok {
		err = accepted.Unmarshal(v)
		if err != nil {
			return res, liberrors.ErrClientTransportHeaderInvalid{Err: err}
		}

		if accepted.Protocol != th.Protocol {
			return res, liberrors.ErrClientTransportHeaderInvalid{
				Err: fmt.Errorf("protocol %v was requested, but server replied with %v",
					th.Protocol, accepted.Protocol),
			}
		}
	}

	err = s.updateSessionID(res, false)
	if err != nil {
		return res, err
	}

	s.transports = append(s.transports, accepted)

	return res, nil
}

// Setup writes a SETUP request for the track with the given index.
// The track URL is the session URL followed by /trackID=<index>.
func (s *Session) Setup(trackIndex int, th headers.Transport) (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesConnected...)
	if err != nil {
		return nil, err
	}

	u := s.url.Clone()
	u.AddControlAttribute("trackID=" + strconv.FormatInt(int64(trackIndex), 10))

	return s.setup(u, th)
}

// SetupMedia writes a SETUP request for a media description.
// The track URL is obtained from the control attribute, resolved against
// the Content-Base, or the session URL when Content-Base is missing.
func (s *Session) SetupMedia(md *sdp.MediaDescription, th headers.Transport) (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesConnected...)
	if err != nil {
		return nil, err
	}

	if md == nil {
		return nil, liberrors.ErrClientMediaNotProvided{}
	}

	baseURL := s.contentBase
	if baseURL == nil {
		baseURL = s.url
	}

	u, err := md.URL(baseURL)
	if err != nil {
		return nil, err
	}

	return s.setup(u, th)
}

func (s *Session) play(ra *headers.Range) (*base.Response, error) {
	err := s.checkState(StateConnected, StatePaused)
	if err != nil {
		return nil, err
	}

	req := &base.Request{
		Method: base.Play,
		URL:    s.url,
	}
	if ra != nil {
		req.Range = ra.Marshal()
	}

	res, err := s.doStateful(req)
	if err != nil {
		return res, err
	}

	s.playRange = nil
	if v, ok := res.Header.Get("Range"); ok {
		var rh headers.Range
		err = rh.Unmarshal(v)
		if err != nil {
			s.log.WithError(err).Warn("invalid Range header in PLAY response")
		} else {
			s.playRange = &rh
		}
	}

	s.setState(StateStreaming)

	return res, nil
}

// Play writes a PLAY request.
// If ra is nil, the stream is played from the beginning (npt=00:00:00.00-).
// The session moves to the streaming state.
func (s *Session) Play(ra *headers.Range) (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if ra == nil {
		ra = &headers.Range{
			Value: &headers.RangeNPT{
				Clock: true,
			},
		}
	}

	return s.play(ra)
}

// Resume writes a PLAY request without range, that continues the stream
// from where it was paused.
func (s *Session) Resume() (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.play(nil)
}

// Pause writes a PAUSE request.
// The session moves to the paused state.
func (s *Session) Pause() (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(StateStreaming)
	if err != nil {
		return nil, err
	}

	res, err := s.doStateful(&base.Request{
		Method: base.Pause,
		URL:    s.url,
	})
	if err != nil {
		return res, err
	}

	s.setState(StatePaused)

	return res, nil
}

// Record writes a RECORD request.
func (s *Session) Record() (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesConnected...)
	if err != nil {
		return nil, err
	}

	return s.doStateful(&base.Request{
		Method: base.Record,
		URL:    s.url,
	})
}

// GetParameter writes a GET_PARAMETER request that asks for a parameter.
func (s *Session) GetParameter(name string) (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesConnected...)
	if err != nil {
		return nil, err
	}

	req := &base.Request{
		Method: base.GetParameter,
		URL:    s.url,
		Body:   []byte(name + "\r\n"),
	}
	req.Header.Set("Content-Type", "text/parameters")

	return s.doStateful(req)
}

// SetParameter writes a SET_PARAMETER request that sets a parameter.
func (s *Session) SetParameter(name string, value string) (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesConnected...)
	if err != nil {
		return nil, err
	}

	req := &base.Request{
		Method: base.SetParameter,
		URL:    s.url,
		Body:   []byte(name + ": " + value + "\r\n"),
	}
	req.Header.Set("Content-Type", "text/parameters")

	return s.doStateful(req)
}

// Announce writes an ANNOUNCE request that contains the given description.
func (s *Session) Announce(info *sdp.Info) (*base.Response, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.checkState(statesOpen...)
	if err != nil {
		return nil, err
	}

	byts, err := info.Marshal()
	if err != nil {
		return nil, err
	}

	req := &base.Request{
		Method: base.Announce,
		URL:    s.url,
		Body:   byts,
	}
	req.Header.Set("Content-Type", "application/sdp")

	return s.doStateful(req)
}

// Teardown writes a TEARDOWN request, if the session is connected, and then
// closes the session. The status code of the response is ignored.
// Transport errors are returned after the session has been closed.
func (s *Session) Teardown() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var err error

	if s.checkState(statesConnected...) == nil {
		_, err = s.do(&base.Request{
			Method: base.Teardown,
			URL:    s.url,
		})

		var ierr liberrors.ErrClientInvalidResponse
		if errors.As(err, &ierr) {
			err = nil
		}

		if err != nil {
			s.log.WithError(err).Warn("teardown failed")
		}
	}

	s.doClose()

	return err
}

// Close closes the session without notifying the server.
// It can be called multiple times.
func (s *Session) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.doClose()
	return nil
}

func (s *Session) doClose() {
	s.setState(StateClosed)
}
