package relayurl

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

var defaultPorts = map[string]string{
	SchemeWS:  "80",
	SchemeWSS: "443",
}

// Parse validates raw as a ws:// or wss:// URL and derives its equality key.
// Hosts compare case-insensitively.
func Parse(raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	// ws:host parses as opaque; browsers read it as ws://host.
	if u.Opaque != "" {
		if u, err = url.Parse(u.Scheme + "://" + u.Opaque); err != nil {
			return Address{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
		}
	}
	if u.Scheme != SchemeWS && u.Scheme != SchemeWSS {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidScheme, raw)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Address{}, fmt.Errorf("%w: %s", ErrMissingHost, raw)
	}

	port := u.Port()
	if port == "" {
		port = defaultPorts[u.Scheme]
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return Address{}, fmt.Errorf("%w: port out of range: %s", ErrInvalidURL, raw)
	} else {
		port = strconv.Itoa(n)
	}

	path := u.EscapedPath()
	if path == "/" {
		path = ""
	}

	return Address{
		Raw:    raw,
		Scheme: u.Scheme,
		Host:   host,
		Port:   port,
		Path:   path,
	}, nil
}

// Normalize returns the equality key of raw.
func Normalize(raw string) (string, error) {
	a, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return a.Key(), nil
}

// Key is scheme://host:port/path. It is only used for dedup and equality,
// never shown in place of Raw.
func (a Address) Key() string {
	return a.Scheme + "://" + net.JoinHostPort(a.Host, a.Port) + a.Path
}

func (a Address) String() string { return a.Raw }

// HealthURL maps ws->http and wss->https, keeping host, port and path, and
// appends the /health endpoint.
func (a Address) HealthURL() string {
	scheme := "http"
	if a.Scheme == SchemeWSS {
		scheme = "https"
	}
	base := scheme + "://" + net.JoinHostPort(a.Host, a.Port) + a.Path
	if strings.HasSuffix(base, "/") {
		return base + "health"
	}
	return base + "/health"
}

// IsOnion reports whether the relay is a Tor hidden service.
func (a Address) IsOnion() bool {
	return strings.HasSuffix(a.Host, ".onion")
}

// ParseAll parses every entry and stops at the first bad one.
func ParseAll(raws []string) ([]Address, error) {
	out := make([]Address, 0, len(raws))
	for _, raw := range raws {
		a, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
