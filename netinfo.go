package main

import "net"

// localIP guesses the address other hosts on the LAN would use to reach us.
// Nothing is sent; dialing UDP only selects a route.
func localIP() string {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "0.0.0.0"
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "0.0.0.0"
	}
	return addr.IP.String()
}
