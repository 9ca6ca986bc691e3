package rtspctl

import (
	"time"
)

const (
	// CSeq values wrap to 0 when they reach this value.
	cseqWrap = 65535

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "rtspctl"

	// sub-protocol of the WebSocket tunnel, as defined by ONVIF
	webSocketSubprotocol = "rtsp.onvif.org"
)
