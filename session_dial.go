package rtspctl

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"golang.org/x/net/proxy"
)

// DialContextFunc is the signature of the function used to open connections.
type DialContextFunc func(ctx context.Context, network, address string) (net.Conn, error)

// defaultDialContext returns a dialer that honors ALL_PROXY and NO_PROXY.
func defaultDialContext(connectTimeout time.Duration) DialContextFunc {
	d := proxy.FromEnvironmentUsing(&net.Dialer{Timeout: connectTimeout})

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		if cd, ok := d.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, address)
		}
		return d.Dial(network, address)
	}
}

func (s *Session) tlsConfigForDial() *tls.Config {
	if s.url.Scheme != "rtsps" {
		return nil
	}

	var tlsConfig *tls.Config
	if s.tlsConfig != nil {
		tlsConfig = s.tlsConfig.Clone()
	} else {
		tlsConfig = &tls.Config{}
	}

	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = s.url.Hostname()
	}

	return tlsConfig
}

// dial opens the connection used by a single exchange.
func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	addr := s.url.Address()
	tlsConfig := s.tlsConfigForDial()

	if s.tunnel == TunnelWebSocket {
		return newSessionTunnelWebSocket(ctx, s.dialContext, addr, tlsConfig)
	}

	nconn, err := s.dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if tlsConfig != nil {
		tconn := tls.Client(nconn, tlsConfig)

		err = tconn.HandshakeContext(ctx)
		if err != nil {
			nconn.Close()
			return nil, err
		}

		return tconn, nil
	}

	return nconn, nil
}
