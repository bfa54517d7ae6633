package utils

import (
	"fmt"
	"net"
)

// CheckListenAddress fails if addr cannot be bound right now.
func CheckListenAddress(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address '%s': %w", addr, err)
	}

	Verbose("Checking if port %s is available on %s", port, host)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}

	return listener.Close()
}
