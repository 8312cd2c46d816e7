package protocol

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// AgentTracesPath is the trace agent endpoint that accepts msgpack
// encoded trace lists.
const AgentTracesPath = "/v0.4/traces"

// ResolveAddr takes a URL-style collector address,
// resolves it and returns a net.Addr that corresponds to the
// string. If any error (in URL decoding, destructuring or resolving)
// occurs, ResolveAddr returns the respective error.
//
// Valid address examples are:
//   udp6://127.0.0.1:8000
//   unix:///tmp/foo.sock
//   tcp://127.0.0.1:9002
func ResolveAddr(str string) (net.Addr, error) {
	u, err := url.Parse(str)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "unix", "unixgram", "unixpacket":
		addr, err := net.ResolveUnixAddr(u.Scheme, u.Path)
		if err != nil {
			return nil, err
		}
		return addr, nil
	case "tcp6", "tcp4", "tcp":
		addr, err := net.ResolveTCPAddr(u.Scheme, u.Host)
		if err != nil {
			return nil, err
		}
		return addr, nil
	case "udp6", "udp4", "udp":
		addr, err := net.ResolveUDPAddr(u.Scheme, u.Host)
		if err != nil {
			return nil, err
		}
		return addr, nil
	}
	return nil, fmt.Errorf("unknown address family %q on address %q", u.Scheme, u.String())
}

// AgentEndpoint recognizes http:// and https:// collector addresses
// and returns the URL traces should be POSTed to. An address without a
// path gets AgentTracesPath appended. The second return value is false
// for any other kind of address.
func AgentEndpoint(str string) (string, bool) {
	u, err := url.Parse(str)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if strings.TrimSuffix(u.Path, "/") == "" {
		u.Path = AgentTracesPath
	}
	return u.String(), true
}
