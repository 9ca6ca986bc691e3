// Package headers contains various RTSP headers.
package headers

import (
	"fmt"
	"strconv"
	"strings"
)

// Session is a Session header.
type Session struct {
	// session id
	Session string

	// (optional) a timeout
	Timeout *uint
}

// Unmarshal decodes a Session header.
func (h *Session) Unmarshal(v string) error {
	parts := strings.Split(v, ";")

	h.Session = strings.TrimSpace(parts[0])
	if h.Session == "" {
		return fmt.Errorf("value not provided")
	}

	h.Timeout = nil

	for _, part := range parts[1:] {
		// remove leading spaces
		part = strings.TrimLeft(part, " ")

		keyval := strings.Split(part, "=")
		if len(keyval) != 2 {
			return fmt.Errorf("invalid value")
		}

		key, strValue := keyval[0], keyval[1]
		if key != "timeout" {
			return fmt.Errorf("invalid key '%s'", key)
		}

		iv, err := strconv.ParseUint(strValue, 10, 32)
		if err != nil {
			return err
		}
		uiv := uint(iv)

		h.Timeout = &uiv
	}

	return nil
}

// Marshal encodes a Session header.
func (h Session) Marshal() string {
	ret := h.Session

	if h.Timeout != nil {
		ret += ";timeout=" + strconv.FormatUint(uint64(*h.Timeout), 10)
	}

	return ret
}
