package blackjack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Discovered is a server found through its Offer.
type Discovered struct {
	Addr       string
	TCPPort    uint16
	ServerName string
}

func (d Discovered) TCPAddr() string {
	return net.JoinHostPort(d.Addr, fmt.Sprint(d.TCPPort))
}

// ListenOffer binds the discovery port, shared with other listeners on the
// same host, and waits for the first valid Offer.
func ListenOffer(port int, timeout time.Duration) (*Discovered, error) {
	conn, err := ListenDiscovery(port)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return ListenForOffer(conn, timeout)
}

func ListenDiscovery(port int) (net.PacketConn, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}
	return lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf(":%d", port))
}

// ListenForOffer blocks until a datagram on conn decodes as an Offer. Anything
// else arriving on the port is dropped. A zero timeout waits forever.
func ListenForOffer(conn net.PacketConn, timeout time.Duration) (*Discovered, error) {
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		defer conn.SetReadDeadline(time.Time{})
	}
	// One spare byte so oversized datagrams fail the length check.
	buf := make([]byte, OfferSize+1)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, &TimeoutError{Op: "offer listen", Err: err}
			}
			return nil, err
		}
		offer, err := DecodeOffer(buf[:n])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"from": addr.String(),
				"size": n,
			}).Debugf("dropping datagram: %s", err)
			continue
		}
		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			host = addr.String()
		}
		return &Discovered{
			Addr:       host,
			TCPPort:    offer.TCPPort,
			ServerName: offer.ServerName,
		}, nil
	}
}
