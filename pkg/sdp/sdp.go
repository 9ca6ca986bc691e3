// Package sdp contains a tolerant SDP (RFC 4566) decoder that extracts
// the information needed to control a RTSP session.
package sdp

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrEmpty is returned by Parse when the input is empty or contains only spaces.
var ErrEmpty = errors.New("SDP is empty")

// defaults of fields missing from the description.
const (
	DefaultVersion = "0"
	DefaultOrigin  = "-"
)

var (
	reVersion     = regexp.MustCompile(`(?m)^v=(\d+)`)
	reOrigin      = regexp.MustCompile(`(?m)^o=([^\r\n]*)`)
	reSessionName = regexp.MustCompile(`(?m)^s=([^\r\n]*)`)
	reMediaStart  = regexp.MustCompile(`(?m)^m=`)
	reMediaLine   = regexp.MustCompile(`^m=(\S+)[ \t]+(\d+)(?:/\d+)?[ \t]+(\S+)[ \t]*([^\r\n]*)`)
	reRTPMap      = regexp.MustCompile(`(?m)^a=rtpmap:([^\r\n]*)`)
	reControl     = regexp.MustCompile(`(?m)^a=control:([^\r\n]*)`)
	reFMTP        = regexp.MustCompile(`(?m)^a=fmtp:([^\r\n]*)`)
)

// MediaType is the type of a media description.
type MediaType string

// media types.
const (
	MediaTypeVideo       MediaType = "video"
	MediaTypeAudio       MediaType = "audio"
	MediaTypeApplication MediaType = "application"
	MediaTypeData        MediaType = "data"
)

func mediaTypeFromToken(tok string) MediaType {
	switch strings.ToLower(tok) {
	case "video":
		return MediaTypeVideo

	case "audio":
		return MediaTypeAudio

	case "data":
		return MediaTypeData
	}
	return MediaTypeApplication
}

// MediaDescription is a media description (a m= line and its attributes).
type MediaDescription struct {
	// media type. Unknown types are reported as application.
	Type MediaType

	// advertised port
	Port int

	// transport profile, i.e. RTP/AVP
	Protocol string

	// format tokens, i.e. RTP payload types
	Formats []string

	// (optional) value of the rtpmap attribute
	RTPMap *string

	// (optional) value of the control attribute
	Control *string

	// (optional) value of the fmtp attribute
	FMTP *string
}

// Info is the content of a SDP.
type Info struct {
	// protocol version
	Version string

	// content of the o= line
	Origin string

	// session name
	SessionName string

	// (optional) session-level control attribute
	Control *string

	// media descriptions, in order of appearance
	Medias []*MediaDescription
}

func firstSubmatch(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func optionalSubmatch(re *regexp.Regexp, s string) *string {
	v, ok := firstSubmatch(re, s)
	if !ok {
		return nil
	}
	return &v
}

func parseMedia(segment string) (*MediaDescription, bool) {
	m := reMediaLine.FindStringSubmatch(segment)
	if m == nil {
		return nil, false
	}

	port, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}

	return &MediaDescription{
		Type:     mediaTypeFromToken(m[1]),
		Port:     port,
		Protocol: m[3],
		Formats:  strings.Fields(m[4]),
		RTPMap:   optionalSubmatch(reRTPMap, segment),
		Control:  optionalSubmatch(reControl, segment),
		FMTP:     optionalSubmatch(reFMTP, segment),
	}, true
}

// Parse decodes a SDP.
// Missing or malformed lines never cause an error; media descriptions whose
// m= line cannot be decoded are skipped.
func Parse(text string) (*Info, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	info := &Info{
		Version: DefaultVersion,
		Origin:  DefaultOrigin,
		Medias:  []*MediaDescription{},
	}

	if v, ok := firstSubmatch(reVersion, text); ok {
		info.Version = v
	}

	if v, ok := firstSubmatch(reOrigin, text); ok {
		info.Origin = v
	}

	if v, ok := firstSubmatch(reSessionName, text); ok {
		info.SessionName = v
	}

	starts := reMediaStart.FindAllStringIndex(text, -1)

	sessionPart := text
	if len(starts) != 0 {
		sessionPart = text[:starts[0][0]]
	}

	info.Control = optionalSubmatch(reControl, sessionPart)

	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}

		md, ok := parseMedia(text[start[0]:end])
		if !ok {
			continue
		}

		info.Medias = append(info.Medias, md)
	}

	return info, nil
}

// HasMedia returns whether the description contains at least one media.
func (i Info) HasMedia() bool {
	return len(i.Medias) != 0
}

// MediasByType returns the medias of the given type.
// Comparison is case-insensitive.
func (i Info) MediasByType(typ string) []*MediaDescription {
	var ret []*MediaDescription
	for _, md := range i.Medias {
		if strings.EqualFold(string(md.Type), typ) {
			ret = append(ret, md)
		}
	}
	return ret
}

// FirstVideo returns the first video media, or nil.
func (i Info) FirstVideo() *MediaDescription {
	if mds := i.MediasByType(string(MediaTypeVideo)); len(mds) != 0 {
		return mds[0]
	}
	return nil
}

// FirstAudio returns the first audio media, or nil.
func (i Info) FirstAudio() *MediaDescription {
	if mds := i.MediasByType(string(MediaTypeAudio)); len(mds) != 0 {
		return mds[0]
	}
	return nil
}
