package domain

import (
	"net"
	"strings"
)

// Endpoint is one monitored node.
type Endpoint struct {
	Host    string // as listed in the endpoint file, may carry a port
	URL     string
	ShortID string // last label of the host, shown instead of the full address
}

// NewEndpoint builds the status URL and short identifier for a host.
func NewEndpoint(host string) Endpoint {
	host = strings.TrimSpace(host)
	return Endpoint{
		Host:    host,
		URL:     "http://" + host + "/status?",
		ShortID: shortID(host),
	}
}

func shortID(host string) string {
	name := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		name = h
	} else if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[:i], ":") {
		name = host[:i]
	}
	name = strings.Trim(name, "[]")

	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		return name[i+1:]
	}
	return name
}
