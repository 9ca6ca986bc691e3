package headers

import (
	"fmt"
	"strconv"
	"strings"
)

// TransportProtocol is a transport protocol.
type TransportProtocol int

// transport protocols.
const (
	TransportProtocolUDP TransportProtocol = iota
	TransportProtocolTCP
)

// String implements fmt.Stringer.
func (p TransportProtocol) String() string {
	if p == TransportProtocolTCP {
		return "TCP"
	}
	return "UDP"
}

// TransportDelivery is a delivery method.
type TransportDelivery int

// transport delivery methods.
const (
	TransportDeliveryUnicast TransportDelivery = iota
	TransportDeliveryMulticast
)

// String implements fmt.Stringer.
func (d TransportDelivery) String() string {
	if d == TransportDeliveryMulticast {
		return "multicast"
	}
	return "unicast"
}

// TransportMode is a transport mode.
type TransportMode int

const (
	// TransportModePlay is the "play" transport mode
	TransportModePlay TransportMode = iota

	// TransportModeRecord is the "record" transport mode
	TransportModeRecord
)

// String implements fmt.Stringer.
func (tm TransportMode) String() string {
	switch tm {
	case TransportModePlay:
		return "play"

	case TransportModeRecord:
		return "record"
	}
	return "unknown"
}

// Transport is a Transport header.
type Transport struct {
	// protocol of the stream
	Protocol TransportProtocol

	// (optional) delivery method of the stream
	Delivery *TransportDelivery

	// (optional) destination IP
	Destination *string

	// (optional) TTL
	TTL *uint

	// (optional) ports
	Ports *[2]int

	// (optional) client ports
	ClientPorts *[2]int

	// (optional) server ports
	ServerPorts *[2]int

	// (optional) interleaved frame IDs
	InterleavedIDs *[2]int

	// (optional) SSRC of the packets of the stream
	SSRC *uint32

	// (optional) mode
	Mode *TransportMode
}

var transportProfiles = map[string]TransportProtocol{
	"RTP/AVP":     TransportProtocolUDP,
	"RTP/AVP/UDP": TransportProtocolUDP,
	"RTP/AVP/TCP": TransportProtocolTCP,
}

func unmarshalPorts(v string) (*[2]int, error) {
	first, second, paired := strings.Cut(v, "-")

	p1, err := strconv.ParseUint(first, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid ports (%v)", v)
	}

	if !paired {
		return &[2]int{int(p1), int(p1) + 1}, nil
	}

	p2, err := strconv.ParseUint(second, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid ports (%v)", v)
	}

	return &[2]int{int(p1), int(p2)}, nil
}

func marshalPorts(ports [2]int) string {
	return strconv.Itoa(ports[0]) + "-" + strconv.Itoa(ports[1])
}

func (h *Transport) unmarshalParam(key string, val string) error {
	var err error

	switch key {
	case "unicast":
		v := TransportDeliveryUnicast
		h.Delivery = &v

	case "multicast":
		v := TransportDeliveryMulticast
		h.Delivery = &v

	case "destination":
		h.Destination = &val

	case "ttl":
		v, err2 := strconv.ParseUint(val, 10, 8)
		if err2 != nil {
			return fmt.Errorf("invalid TTL (%v)", val)
		}
		vu := uint(v)
		h.TTL = &vu

	case "port":
		h.Ports, err = unmarshalPorts(val)

	case "client_port":
		h.ClientPorts, err = unmarshalPorts(val)

	case "server_port":
		h.ServerPorts, err = unmarshalPorts(val)

	case "interleaved":
		h.InterleavedIDs, err = unmarshalPorts(val)

	case "ssrc":
		v, err2 := strconv.ParseUint(strings.TrimSpace(val), 16, 32)
		if err2 != nil {
			return fmt.Errorf("invalid SSRC (%v)", val)
		}
		vu := uint32(v)
		h.SSRC = &vu

	case "mode":
		switch strings.ToLower(strings.Trim(val, `"`)) {
		case "play":
			v := TransportModePlay
			h.Mode = &v

		// receive is used by older servers in place of record
		case "record", "receive":
			v := TransportModeRecord
			h.Mode = &v

		default:
			return fmt.Errorf("invalid transport mode: '%s'", val)
		}
	}

	return err
}

// Unmarshal decodes a Transport header.
// Unknown parameters are ignored.
func (h *Transport) Unmarshal(v string) error {
	if v == "" {
		return fmt.Errorf("value not provided")
	}

	*h = Transport{}

	profile, params, _ := strings.Cut(v, ";")

	proto, ok := transportProfiles[strings.TrimSpace(profile)]
	if !ok {
		return fmt.Errorf("invalid protocol (%v)", v)
	}
	h.Protocol = proto

	for _, param := range strings.Split(params, ";") {
		param = strings.TrimSpace(param)
		if param == "" {
			continue
		}

		key, val, _ := strings.Cut(param, "=")

		err := h.unmarshalParam(strings.ToLower(key), val)
		if err != nil {
			return err
		}
	}

	return nil
}

// Marshal encodes a Transport header.
func (h Transport) Marshal() string {
	var b strings.Builder

	if h.Protocol == TransportProtocolTCP {
		b.WriteString("RTP/AVP/TCP")
	} else {
		b.WriteString("RTP/AVP")
	}

	add := func(param string) {
		b.WriteString(";" + param)
	}

	if h.Delivery != nil {
		add(h.Delivery.String())
	}
	if h.Destination != nil {
		add("destination=" + *h.Destination)
	}
	if h.TTL != nil {
		add("ttl=" + strconv.FormatUint(uint64(*h.TTL), 10))
	}
	if h.Ports != nil {
		add("port=" + marshalPorts(*h.Ports))
	}
	if h.ClientPorts != nil {
		add("client_port=" + marshalPorts(*h.ClientPorts))
	}
	if h.ServerPorts != nil {
		add("server_port=" + marshalPorts(*h.ServerPorts))
	}
	if h.InterleavedIDs != nil {
		add("interleaved=" + marshalPorts(*h.InterleavedIDs))
	}
	if h.SSRC != nil {
		add("ssrc=" + strings.ToUpper(strconv.FormatUint(uint64(*h.SSRC), 16)))
	}
	if h.Mode != nil {
		add("mode=" + h.Mode.String())
	}

	return b.String()
}
