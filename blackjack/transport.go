package blackjack

import (
	"encoding"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Peer wraps one TCP connection and moves whole fixed-size frames over it.
type Peer struct {
	conn net.Conn
}

func NewPeer(conn net.Conn) *Peer {
	return &Peer{conn: conn}
}

func (p *Peer) RemoteAddr() string { return p.conn.RemoteAddr().String() }

func (p *Peer) Close() error { return p.conn.Close() }

func (p *Peer) Send(msg encoding.BinaryMarshaler) error {
	b, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := p.conn.Write(b); err != nil {
		return classifyNetErr("write", err)
	}
	return nil
}

// ReadFrame reads exactly size bytes. A positive timeout bounds the read.
func (p *Peer) ReadFrame(op string, size int, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := p.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, classifyNetErr(op, err)
		}
		defer p.conn.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(p.conn, buf); err != nil {
		return nil, classifyNetErr(op, err)
	}
	return buf, nil
}

func classifyNetErr(op string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &TimeoutError{Op: op, Err: err}
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return &ConnectionError{Op: op, Err: err}
	default:
		return err
	}
}

// TCPTransport accepts game connections and hands each one to HandleConn on
// its own goroutine.
type TCPTransport struct {
	listenAddr string
	listener   net.Listener
	closeOnce  sync.Once

	HandleConn func(net.Conn)
}

func NewTCPTransport(listenAddr string) *TCPTransport {
	return &TCPTransport{listenAddr: listenAddr}
}

func (t *TCPTransport) Listen() error {
	ln, err := net.Listen("tcp", t.listenAddr)
	if err != nil {
		return err
	}
	t.listener = ln
	return nil
}

func (t *TCPTransport) Addr() *net.TCPAddr {
	return t.listener.Addr().(*net.TCPAddr)
}

// ListenAndAccept runs the accept loop until Close. It returns nil once the
// listener has been closed.
func (t *TCPTransport) ListenAndAccept() error {
	if t.listener == nil {
		if err := t.Listen(); err != nil {
			return err
		}
	}
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logrus.Errorf("accept error: %s", err)
			continue
		}
		logrus.WithFields(logrus.Fields{
			"peer": conn.RemoteAddr().String(),
		}).Debug("accepted connection")
		go t.HandleConn(conn)
	}
}

func (t *TCPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if t.listener != nil {
			err = t.listener.Close()
		}
	})
	return err
}
