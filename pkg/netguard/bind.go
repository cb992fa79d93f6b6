package netguard

import (
	"fmt"
	"net"
	"strings"
)

// EnsureLocalOnly rejects non-loopback bind addresses. The dev tracker
// serves unauthenticated close data, so it must never listen beyond the
// local machine.
func EnsureLocalOnly(addr string) error {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	if !isLoopbackHost(strings.TrimSpace(host)) {
		return fmt.Errorf("refusing to bind non-loopback address %q; the tracker service is local-only", addr)
	}
	return nil
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
