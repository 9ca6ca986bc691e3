package sdp

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"

	"github.com/bluenviron/rtspctl/pkg/base"
)

// RTPMapInfo is the decoded content of a rtpmap attribute.
type RTPMapInfo struct {
	PayloadType uint8
	Encoding    string
	ClockRate   int

	// 0 when not provided
	Channels int
}

// RTPMapInfo decodes the rtpmap attribute.
func (m MediaDescription) RTPMapInfo() (*RTPMapInfo, error) {
	if m.RTPMap == nil {
		return nil, fmt.Errorf("rtpmap attribute not provided")
	}

	parts := strings.SplitN(*m.RTPMap, " ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid rtpmap (%v)", *m.RTPMap)
	}

	pt, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid payload type (%v)", parts[0])
	}

	tmp := strings.Split(strings.TrimSpace(parts[1]), "/")
	if len(tmp) < 2 || tmp[0] == "" {
		return nil, fmt.Errorf("invalid rtpmap (%v)", *m.RTPMap)
	}

	clockRate, err := strconv.ParseUint(tmp[1], 10, 31)
	if err != nil {
		return nil, fmt.Errorf("invalid clock rate (%v)", tmp[1])
	}

	ret := &RTPMapInfo{
		PayloadType: uint8(pt),
		Encoding:    tmp[0],
		ClockRate:   int(clockRate),
	}

	if len(tmp) >= 3 {
		ch, err := strconv.ParseUint(tmp[2], 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid channel count (%v)", tmp[2])
		}
		ret.Channels = int(ch)
	}

	return ret, nil
}

// FMTPParams decodes the fmtp attribute into a key-value map.
// Keys are lower case. It returns nil when the attribute is missing.
func (m MediaDescription) FMTPParams() map[string]string {
	if m.FMTP == nil {
		return nil
	}

	enc := *m.FMTP

	// strip payload type
	if i := strings.IndexByte(enc, ' '); i >= 0 {
		if _, err := strconv.ParseUint(enc[:i], 10, 8); err == nil {
			enc = enc[i+1:]
		}
	}

	ret := make(map[string]string)

	for _, kv := range strings.Split(enc, ";") {
		kv = strings.Trim(kv, " ")

		if len(kv) == 0 {
			continue
		}

		tmp := strings.SplitN(kv, "=", 2)
		if len(tmp) != 2 {
			continue
		}

		ret[strings.ToLower(tmp[0])] = tmp[1]
	}

	return ret
}

// H264SPS decodes the H264 SPS contained in the sprop-parameter-sets
// parameter of the fmtp attribute.
func (m MediaDescription) H264SPS() (*h264.SPS, error) {
	val, ok := m.FMTPParams()["sprop-parameter-sets"]
	if !ok {
		return nil, fmt.Errorf("sprop-parameter-sets not provided")
	}

	tmp := strings.Split(val, ",")

	byts, err := base64.StdEncoding.DecodeString(tmp[0])
	if err != nil {
		return nil, fmt.Errorf("invalid sprop-parameter-sets (%v)", val)
	}

	// some cameras ship parameters with Annex-B prefix
	byts = bytes.TrimPrefix(byts, []byte{0, 0, 0, 1})

	var sps h264.SPS
	err = sps.Unmarshal(byts)
	if err != nil {
		return nil, fmt.Errorf("invalid SPS: %w", err)
	}

	return &sps, nil
}

// MPEG4AudioConfig decodes the MPEG-4 audio configuration contained in the
// config parameter of the fmtp attribute.
func (m MediaDescription) MPEG4AudioConfig() (*mpeg4audio.Config, error) {
	val, ok := m.FMTPParams()["config"]
	if !ok {
		return nil, fmt.Errorf("config not provided")
	}

	enc, err := hex.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("invalid AAC config (%v)", val)
	}

	var conf mpeg4audio.Config
	err = conf.Unmarshal(enc)
	if err != nil {
		return nil, fmt.Errorf("invalid AAC config (%v)", val)
	}

	return &conf, nil
}

// URL returns the absolute URL of the media.
func (m MediaDescription) URL(contentBase *base.URL) (*base.URL, error) {
	if contentBase == nil {
		return nil, fmt.Errorf("Content-Base header not provided")
	}

	// no control attribute, use base URL
	if m.Control == nil || *m.Control == "" || *m.Control == "*" {
		return contentBase.Clone(), nil
	}

	control := *m.Control

	// control attribute contains an absolute path
	if strings.HasPrefix(control, "rtsp://") ||
		strings.HasPrefix(control, "rtsps://") {
		ur, err := base.ParseURL(control)
		if err != nil {
			return nil, err
		}

		// copy host and credentials
		ur.Host = contentBase.Host
		ur.User = contentBase.User
		return ur, nil
	}

	ur := contentBase.Clone()
	ur.AddControlAttribute(control)
	return ur, nil
}
