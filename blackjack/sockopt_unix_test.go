//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package blackjack

import (
	"net"
	"testing"
)

func TestListenDiscoverySharesPort(t *testing.T) {
	probe, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		t.Fatal(err)
	}
	port := probe.LocalAddr().(*net.UDPAddr).Port
	probe.Close()

	first, err := ListenDiscovery(port)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := ListenDiscovery(port)
	if err != nil {
		t.Fatalf("second listener on port %d: %v", port, err)
	}
	defer second.Close()
}
