package base

import (
	"net/http"
	"strings"
)

func headerKeyNormalize(in string) string {
	switch strings.ToLower(in) {
	case "rtp-info":
		return "RTP-Info"

	case "www-authenticate":
		return "WWW-Authenticate"

	case "cseq":
		return "CSeq"
	}
	return http.CanonicalHeaderKey(in)
}

// Header is a set of RTSP header entries.
// Keys are unique and normalized; iteration follows insertion order.
// The zero value is an empty header ready to use.
type Header struct {
	keys   []string
	values map[string]string
}

// Set sets the value of a key. If the key is already present, its value is
// replaced and its position is kept.
func (h *Header) Set(key string, value string) {
	key = headerKeyNormalize(key)

	if h.values == nil {
		h.values = make(map[string]string)
	}

	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Get returns the value of a key.
func (h Header) Get(key string) (string, bool) {
	v, ok := h.values[headerKeyNormalize(key)]
	return v, ok
}

// Del removes a key.
func (h *Header) Del(key string) {
	key = headerKeyNormalize(key)

	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)

	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i:i], h.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (h Header) Keys() []string {
	ret := make([]string, len(h.keys))
	copy(ret, h.keys)
	return ret
}

// Len returns the number of entries.
func (h Header) Len() int {
	return len(h.keys)
}

// Clone returns a deep copy.
func (h Header) Clone() Header {
	var ret Header
	for _, k := range h.keys {
		ret.Set(k, h.values[k])
	}
	return ret
}

func (h Header) marshal(skip map[string]struct{}) string {
	var sb strings.Builder
	for _, k := range h.keys {
		if _, ok := skip[k]; ok {
			continue
		}
		sb.WriteString(k + ": " + h.values[k] + "\r\n")
	}
	return sb.String()
}

// parse reads header lines until the first blank line.
// It returns the index of the line following the blank line.
func (h *Header) parse(lines []string) int {
	for i, line := range lines {
		if line == "" {
			return i + 1
		}

		pos := strings.IndexByte(line, ':')
		if pos < 0 {
			continue
		}

		key := strings.TrimSpace(line[:pos])
		if key == "" {
			continue
		}

		h.Set(key, strings.TrimSpace(line[pos+1:]))
	}
	return len(lines)
}
