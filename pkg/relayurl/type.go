package relayurl

import "errors"

var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrInvalidScheme = errors.New("protocol must be ws:// or wss://")
	ErrMissingHost   = errors.New("hostname required")
)

const (
	SchemeWS  = "ws"
	SchemeWSS = "wss"
)

// Address is a parsed relay endpoint. Raw keeps the operator's text untouched;
// everything else is derived from it.
type Address struct {
	Raw    string
	Scheme string
	Host   string // lower-cased, without brackets for IPv6
	Port   string
	Path   string // "" when the URL path is empty or "/"
}
