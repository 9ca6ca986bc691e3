package sdp

import (
	"strconv"
	"strings"

	psdp "github.com/pion/sdp/v3"
)

func marshalOrigin(v string) psdp.Origin {
	o := psdp.Origin{
		Username:       "-",
		NetworkType:    "IN",
		AddressType:    "IP4",
		UnicastAddress: "127.0.0.1",
	}

	fields := strings.Fields(v)
	if len(fields) != 6 {
		return o
	}

	sessionID, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return o
	}

	sessionVersion, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return o
	}

	return psdp.Origin{
		Username:       fields[0],
		SessionID:      sessionID,
		SessionVersion: sessionVersion,
		NetworkType:    fields[3],
		AddressType:    fields[4],
		UnicastAddress: fields[5],
	}
}

func (m MediaDescription) marshal() *psdp.MediaDescription {
	md := &psdp.MediaDescription{
		MediaName: psdp.MediaName{
			Media:   string(m.Type),
			Port:    psdp.RangedPort{Value: m.Port},
			Protos:  strings.Split(m.Protocol, "/"),
			Formats: m.Formats,
		},
	}

	if m.RTPMap != nil {
		md.Attributes = append(md.Attributes, psdp.Attribute{
			Key:   "rtpmap",
			Value: *m.RTPMap,
		})
	}

	if m.FMTP != nil {
		md.Attributes = append(md.Attributes, psdp.Attribute{
			Key:   "fmtp",
			Value: *m.FMTP,
		})
	}

	if m.Control != nil {
		md.Attributes = append(md.Attributes, psdp.Attribute{
			Key:   "control",
			Value: *m.Control,
		})
	}

	return md
}

// Marshal encodes the description in SDP.
func (i Info) Marshal() ([]byte, error) {
	var sessionName psdp.SessionName
	if i.SessionName != "" {
		sessionName = psdp.SessionName(i.SessionName)
	} else {
		// RFC 4566: If a session has no meaningful name, the
		// value "s= " SHOULD be used (i.e., a single space as the session name).
		sessionName = psdp.SessionName(" ")
	}

	version, err := strconv.Atoi(i.Version)
	if err != nil {
		version = 0
	}

	sout := &psdp.SessionDescription{
		Version:     psdp.Version(version),
		Origin:      marshalOrigin(i.Origin),
		SessionName: sessionName,
		// required by Darwin Streaming Server
		ConnectionInformation: &psdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &psdp.Address{Address: "0.0.0.0"},
		},
		TimeDescriptions: []psdp.TimeDescription{
			{Timing: psdp.Timing{StartTime: 0, StopTime: 0}},
		},
		MediaDescriptions: make([]*psdp.MediaDescription, len(i.Medias)),
	}

	if i.Control != nil {
		sout.Attributes = append(sout.Attributes, psdp.Attribute{
			Key:   "control",
			Value: *i.Control,
		})
	}

	for j, md := range i.Medias {
		sout.MediaDescriptions[j] = md.marshal()
	}

	return sout.Marshal()
}
