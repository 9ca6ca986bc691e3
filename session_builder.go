package rtspctl

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bluenviron/rtspctl/pkg/base"
	"github.com/bluenviron/rtspctl/pkg/liberrors"
)

// Builder allows to create a Session.
// The server URL is the only mandatory parameter.
type Builder struct {
	url            string
	timeout        time.Duration
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	user           *url.Userinfo
	userAgent      string
	logger         logrus.FieldLogger
	dialContext    DialContextFunc
	tlsConfig      *tls.Config
	tunnel         Tunnel
	onRequest      func(*base.Request)
	onResponse     func(*base.Response)
}

// NewBuilder allocates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// URL sets the server URL, i.e. rtsp://myhost:8554/mystream.
func (b *Builder) URL(v string) *Builder {
	b.url = v
	return b
}

// Timeout sets the timeout of dial, read and write operations.
// Specific timeouts take precedence.
// It defaults to 10 seconds.
func (b *Builder) Timeout(v time.Duration) *Builder {
	b.timeout = v
	return b
}

// ConnectTimeout sets the timeout of dial operations.
func (b *Builder) ConnectTimeout(v time.Duration) *Builder {
	b.connectTimeout = v
	return b
}

// ReadTimeout sets the timeout of read operations.
func (b *Builder) ReadTimeout(v time.Duration) *Builder {
	b.readTimeout = v
	return b
}

// WriteTimeout sets the timeout of write operations.
func (b *Builder) WriteTimeout(v time.Duration) *Builder {
	b.writeTimeout = v
	return b
}

// Credentials sets the credentials of the server URL.
// They are stored in the URL returned by Session.URL and are never
// written into the request line.
func (b *Builder) Credentials(user string, pass string) *Builder {
	b.user = url.UserPassword(user, pass)
	return b
}

// UserAgent sets the value of the User-Agent header.
// It defaults to "rtspctl".
func (b *Builder) UserAgent(v string) *Builder {
	b.userAgent = v
	return b
}

// Logger sets the logger.
// It defaults to the logrus standard logger.
func (b *Builder) Logger(v logrus.FieldLogger) *Builder {
	b.logger = v
	return b
}

// DialContext sets the function used to open connections.
// It defaults to a net.Dialer that honors proxy environment variables.
func (b *Builder) DialContext(v DialContextFunc) *Builder {
	b.dialContext = v
	return b
}

// TLSConfig sets the TLS configuration used with rtsps URLs.
func (b *Builder) TLSConfig(v *tls.Config) *Builder {
	b.tlsConfig = v
	return b
}

// Tunnel sets the tunnel method.
func (b *Builder) Tunnel(v Tunnel) *Builder {
	b.tunnel = v
	return b
}

// OnRequest sets a callback that is called before every request.
func (b *Builder) OnRequest(v func(*base.Request)) *Builder {
	b.onRequest = v
	return b
}

// OnResponse sets a callback that is called after every response.
func (b *Builder) OnResponse(v func(*base.Response)) *Builder {
	b.onResponse = v
	return b
}

func pickTimeout(specific time.Duration, generic time.Duration) time.Duration {
	if specific > 0 {
		return specific
	}
	if generic > 0 {
		return generic
	}
	return defaultTimeout
}

// Build validates parameters and allocates a Session.
func (b *Builder) Build() (*Session, error) {
	if b.url == "" {
		return nil, liberrors.ErrClientURLMissing{}
	}

	u, err := base.ParseURL(b.url)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if b.user != nil {
		u.User = b.user
	}

	if b.tunnel != TunnelNone && b.tunnel != TunnelWebSocket {
		return nil, fmt.Errorf("unsupported tunnel: %v", b.tunnel)
	}

	s := &Session{
		url:            u,
		connectTimeout: pickTimeout(b.connectTimeout, b.timeout),
		readTimeout:    pickTimeout(b.readTimeout, b.timeout),
		writeTimeout:   pickTimeout(b.writeTimeout, b.timeout),
		userAgent:      b.userAgent,
		dialContext:    b.dialContext,
		tlsConfig:      b.tlsConfig,
		tunnel:         b.tunnel,
		onRequest:      b.onRequest,
		onResponse:     b.onResponse,
		id:             uuid.New(),
		state:          StateIdle,
	}

	if s.userAgent == "" {
		s.userAgent = defaultUserAgent
	}

	if s.dialContext == nil {
		s.dialContext = defaultDialContext(s.connectTimeout)
	}

	if s.onRequest == nil {
		s.onRequest = func(*base.Request) {
		}
	}

	if s.onResponse == nil {
		s.onResponse = func(*base.Response) {
		}
	}

	logger := b.logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s.log = logger.WithFields(logrus.Fields{
		"client": s.id.String(),
		"url":    u.CloneWithoutCredentials().String(),
	})

	return s, nil
}
