package blackjack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultUDPPort       = 13122
	DefaultOfferInterval = time.Second
	DefaultBroadcastAddr = "255.255.255.255"
)

type BroadcasterConfig struct {
	ServerName    string
	TCPPort       uint16
	UDPPort       int
	BroadcastAddr string
	Interval      time.Duration
	// OnSent is called after every successful send.
	OnSent func()
}

// Broadcaster periodically sends the server's Offer to the broadcast address
// until stopped. Sends are best effort: failures are logged and the next tick
// tries again.
type Broadcaster struct {
	BroadcasterConfig
	conn    *net.UDPConn
	dst     *net.UDPAddr
	payload []byte
	sent    atomic.Int64

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func NewBroadcaster(cfg BroadcasterConfig) (*Broadcaster, error) {
	if cfg.UDPPort == 0 {
		cfg.UDPPort = DefaultUDPPort
	}
	if cfg.BroadcastAddr == "" {
		cfg.BroadcastAddr = DefaultBroadcastAddr
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultOfferInterval
	}
	payload, err := Offer{TCPPort: cfg.TCPPort, ServerName: cfg.ServerName}.MarshalBinary()
	if err != nil {
		return nil, err
	}
	dst, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", cfg.BroadcastAddr, cfg.UDPPort))
	if err != nil {
		return nil, err
	}
	// Go enables SO_BROADCAST on datagram sockets.
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, err
	}
	return &Broadcaster{
		BroadcasterConfig: cfg,
		conn:              conn,
		dst:               dst,
		payload:           payload,
	}, nil
}

// Start launches the send loop. It stops when ctx is done or Stop is called.
func (b *Broadcaster) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done != nil {
		return
	}
	ctx, b.cancel = context.WithCancel(ctx)
	b.done = make(chan struct{})
	go b.loop(ctx, b.done)

	logrus.WithFields(logrus.Fields{
		"dst":      b.dst.String(),
		"interval": b.Interval,
	}).Info("broadcasting offers")
}

func (b *Broadcaster) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			return
		}
		if _, err := b.conn.WriteToUDP(b.payload, b.dst); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logrus.Warnf("offer broadcast failed: %s", err)
		} else {
			b.sent.Add(1)
			if b.OnSent != nil {
				b.OnSent()
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the loop, closes the socket and waits for the loop to exit.
// It is safe to call from any goroutine and more than once.
func (b *Broadcaster) Stop() error {
	var err error
	b.stopOnce.Do(func() {
		b.mu.Lock()
		cancel, done := b.cancel, b.done
		b.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		err = b.conn.Close()
		if done != nil {
			<-done
		}
	})
	return err
}

func (b *Broadcaster) Sent() int64 { return b.sent.Load() }
