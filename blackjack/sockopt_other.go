//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package blackjack

import "syscall"

func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
