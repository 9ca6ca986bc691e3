package base

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// default ports.
const (
	DefaultPort       = 554
	DefaultSecurePort = 322
)

// URL is a RTSP URL.
// This is basically an HTTP URL with some additional functions to handle
// control attributes.
type URL url.URL

// escapeZone percent-encodes the zone identifier of an IPv6 host,
// i.e. [fe80::1%eth0] becomes [fe80::1%25eth0].
func escapeZone(s string) string {
	i := strings.Index(s, "://")
	if i < 0 {
		return s
	}
	start := i + 3

	end := strings.IndexByte(s[start:], '/')
	if end < 0 {
		end = len(s)
	} else {
		end += start
	}

	open := strings.IndexByte(s[start:end], '[')
	if open < 0 {
		return s
	}
	open += start

	closing := strings.IndexByte(s[open:end], ']')
	if closing < 0 {
		return s
	}
	closing += open

	zone := strings.IndexByte(s[open:closing], '%')
	if zone < 0 {
		return s
	}
	zone += open

	if strings.HasPrefix(s[zone:closing], "%25") {
		return s
	}

	return s[:zone] + "%25" + s[zone+1:]
}

// ParseURL parses a RTSP URL.
// Zone identifiers of IPv6 hosts are accepted with or without percent-encoding.
func ParseURL(s string) (*URL, error) {
	u, err := url.Parse(escapeZone(s))
	if err != nil {
		return nil, err
	}

	if u.Scheme != "rtsp" && u.Scheme != "rtsps" {
		return nil, fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}

	if u.Opaque != "" {
		return nil, fmt.Errorf("URLs with opaque data are not supported")
	}

	if u.Host == "" {
		return nil, fmt.Errorf("host not provided")
	}

	return (*URL)(u), nil
}

// MustParseURL is like ParseURL but panics in case of errors.
func MustParseURL(s string) *URL {
	u, err := ParseURL(s)
	if err != nil {
		panic(err)
	}
	return u
}

// String implements fmt.Stringer.
func (u *URL) String() string {
	return (*url.URL)(u).String()
}

// Clone clones a URL.
func (u *URL) Clone() *URL {
	return (*URL)(&url.URL{
		Scheme:     u.Scheme,
		User:       u.User,
		Host:       u.Host,
		Path:       u.Path,
		RawPath:    u.RawPath,
		ForceQuery: u.ForceQuery,
		RawQuery:   u.RawQuery,
	})
}

// CloneWithoutCredentials clones a URL without its credentials.
func (u *URL) CloneWithoutCredentials() *URL {
	return (*URL)(&url.URL{
		Scheme:     u.Scheme,
		Host:       u.Host,
		Path:       u.Path,
		RawPath:    u.RawPath,
		ForceQuery: u.ForceQuery,
		RawQuery:   u.RawQuery,
	})
}

// Hostname returns the host without port.
func (u *URL) Hostname() string {
	return (*url.URL)(u).Hostname()
}

// Address returns host and port of the URL.
// If the URL does not carry a port, the default port of the scheme is used.
func (u *URL) Address() string {
	port := (*url.URL)(u).Port()
	if port == "" {
		if u.Scheme == "rtsps" {
			port = strconv.FormatInt(DefaultSecurePort, 10)
		} else {
			port = strconv.FormatInt(DefaultPort, 10)
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// AddControlAttribute adds a control attribute to a RTSP url.
func (u *URL) AddControlAttribute(controlPath string) {
	if controlPath == "" {
		return
	}

	strURL := u.String()

	// insert the control attribute at the end of the url
	// if there's a query, insert it after the query
	// otherwise insert it after the path
	if controlPath[0] != '?' && !strings.HasSuffix(strURL, "/") {
		strURL += "/"
	}

	nu, err := ParseURL(strURL + controlPath)
	if err != nil {
		return
	}
	*u = *nu
}
