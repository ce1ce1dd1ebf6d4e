package builder

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeHost lower-cases a host and converts internationalized labels to
// their ASCII form so hosts compare and derive names consistently. A port is
// kept. Hosts idna rejects are only lower-cased.
func NormalizeHost(host string) string {
	name, port := host, ""
	if h, p, err := net.SplitHostPort(host); err == nil {
		name, port = h, p
	}

	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		ascii = name
	}
	ascii = strings.ToLower(ascii)

	if port != "" {
		return net.JoinHostPort(ascii, port)
	}
	return ascii
}

// PickServiceHost returns the first host containing "api", else the first
// host, else "".
func PickServiceHost(hosts []string) string {
	for _, h := range hosts {
		if strings.Contains(h, "api") {
			return h
		}
	}
	if len(hosts) > 0 {
		return hosts[0]
	}
	return ""
}
