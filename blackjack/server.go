package blackjack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultServerName = "Server"

type ServerConfig struct {
	Name             string
	ListenAddr       string
	UDPPort          int
	BroadcastAddr    string
	OfferInterval    time.Duration
	APIListenAddr    string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	// NewDeck overrides the per-round deck, mostly for tests.
	NewDeck func() *Deck
}

// Server accepts game connections, runs one Session per connection and
// advertises itself with a Broadcaster.
type Server struct {
	ServerConfig
	transport   *TCPTransport
	broadcaster *Broadcaster
	api         *APIServer
	stats       *Stats

	mu     sync.Mutex
	closed bool
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Name == "" {
		cfg.Name = defaultServerName
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":0"
	}
	s := &Server{
		ServerConfig: cfg,
		stats:        &Stats{},
	}
	tr := NewTCPTransport(cfg.ListenAddr)
	tr.HandleConn = s.handleConn
	s.transport = tr
	return s
}

// Listen binds the game port so TCPPort is known before Start.
func (s *Server) Listen() error {
	if s.transport.listener != nil {
		return nil
	}
	if err := s.transport.Listen(); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.ListenAddr, err)
	}
	return nil
}

func (s *Server) TCPPort() int { return s.transport.Addr().Port }

func (s *Server) Stats() *Stats { return s.stats }

// Start begins broadcasting offers, serves the status API if configured, and
// accepts connections until ctx is done or Close is called.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	b, err := NewBroadcaster(BroadcasterConfig{
		ServerName:    s.Name,
		TCPPort:       uint16(s.TCPPort()),
		UDPPort:       s.UDPPort,
		BroadcastAddr: s.BroadcastAddr,
		Interval:      s.OfferInterval,
		OnSent:        s.stats.OfferSent,
	})
	if err != nil {
		s.transport.Close()
		return fmt.Errorf("failed to start offer broadcaster: %w", err)
	}
	var api *APIServer
	if s.APIListenAddr != "" {
		api = NewAPIServer(s.APIListenAddr, s)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		b.Stop()
		return nil
	}
	s.broadcaster = b
	s.api = api
	b.Start(ctx)
	if api != nil {
		go func() {
			if err := api.Run(); err != nil {
				logrus.Errorf("API server error: %s", err)
			}
		}()
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	logrus.WithFields(logrus.Fields{
		"name":     s.Name,
		"tcp-port": s.TCPPort(),
		"udp-port": b.UDPPort,
	}).Info("starting blackjack server...")
	return s.transport.ListenAndAccept()
}

func (s *Server) handleConn(conn net.Conn) {
	peer := conn.RemoteAddr().String()
	s.stats.SessionStarted()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session panic: %v", r)
			conn.Close()
			logrus.WithField("peer", peer).Error(err)
		}
		s.stats.SessionEnded(err)
	}()

	sess := NewSession(conn, SessionConfig{
		HandshakeTimeout: s.HandshakeTimeout,
		ReadTimeout:      s.ReadTimeout,
		NewDeck:          s.NewDeck,
		Stats:            s.stats,
	})
	_, err = sess.Run()
	log := logrus.WithFields(logrus.Fields{
		"session": sess.ID.String(),
		"peer":    peer,
	})
	var connErr *ConnectionError
	switch {
	case err == nil:
	case errors.As(err, &connErr):
		log.Warnf("client disconnected: %s", err)
	default:
		log.Errorf("session aborted: %s", err)
	}
	log.Info("session closed")
}

// Close stops the broadcaster, the listener and the API. Running sessions are
// left to finish on their own.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	b, api := s.broadcaster, s.api
	s.mu.Unlock()

	var errs []error
	if b != nil {
		errs = append(errs, b.Stop())
	}
	errs = append(errs, s.transport.Close())
	if api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		errs = append(errs, api.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
