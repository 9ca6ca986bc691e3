package rtspctl

import (
	"fmt"
)

// Tunnel is a tunnel method.
type Tunnel int

// tunnel methods.
const (
	TunnelNone Tunnel = iota
	TunnelWebSocket
)

// String implements fmt.Stringer.
func (t Tunnel) String() string {
	switch t {
	case TunnelNone:
		return "none"

	case TunnelWebSocket:
		return "websocket"
	}
	return "unknown"
}

func parseTunnel(v string) (Tunnel, error) {
	switch v {
	case "", "none":
		return TunnelNone, nil

	case "websocket":
		return TunnelWebSocket, nil
	}
	return 0, fmt.Errorf("unsupported tunnel '%s'", v)
}
