package blackjack

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"
)

func startTestServer(t *testing.T, udpPort int, newDeck func() *Deck) *Server {
	t.Helper()
	srv := NewServer(ServerConfig{
		Name:          "Test Table",
		ListenAddr:    "127.0.0.1:0",
		UDPPort:       udpPort,
		BroadcastAddr: "127.0.0.1",
		OfferInterval: 20 * time.Millisecond,
		ReadTimeout:   2 * time.Second,
		NewDeck:       newDeck,
	})
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		srv.Close()
		if err := <-errc; err != nil {
			t.Errorf("server returned %v", err)
		}
	})
	return srv
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServerDiscoveryAndPlay(t *testing.T) {
	pc, udpPort := listenLocal(t)
	srv := startTestServer(t, udpPort, stackedDecks(
		Card{10, Hearts}, Card{9, Hearts},
		Card{10, Spades}, Card{8, Spades},
	))

	d, err := ListenForOffer(pc, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if d.ServerName != "Test Table" || int(d.TCPPort) != srv.TCPPort() {
		t.Fatalf("unexpected offer %+v", d)
	}

	c := NewClient(ClientConfig{
		Name:    "alice",
		Rounds:  3,
		Decider: DeciderFunc(alwaysStand),
	})
	tally, err := c.Play(context.Background(), d.TCPAddr())
	if err != nil {
		t.Fatal(err)
	}
	if tally != (Tally{Wins: 3}) {
		t.Fatalf("unexpected tally %+v", tally)
	}

	waitFor(t, func() bool {
		s := srv.Stats().Snapshot()
		return s.TotalSessions == 1 && s.ActiveSessions == 0
	})
	s := srv.Stats().Snapshot()
	if s.RoundsPlayed != 3 || s.ClientWins != 3 || s.FailedSessions != 0 || s.OffersSent == 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestServerConcurrentSessions(t *testing.T) {
	_, udpPort := listenLocal(t)
	srv := startTestServer(t, udpPort, nil)
	addr := fmt.Sprintf("127.0.0.1:%d", srv.TCPPort())

	// A client that vanishes mid-handshake must not disturb the others.
	bad, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	bad.Write([]byte{0xab, 0xcd})
	bad.Close()

	n := 5
	fatal := make(chan error)
	for i := range n {
		go func() {
			c := NewClient(ClientConfig{
				Name:    fmt.Sprint("player", i),
				Rounds:  4,
				Decider: DeciderFunc(hitBelow17),
			})
			tally, err := c.Play(context.Background(), addr)
			if err != nil {
				fatal <- fmt.Errorf("player %d: %w", i, err)
				return
			}
			if tally.Rounds() != 4 {
				fatal <- fmt.Errorf("player %d played %d rounds", i, tally.Rounds())
				return
			}
			fatal <- nil
		}()
	}
	for range n {
		if err := <-fatal; err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool {
		s := srv.Stats().Snapshot()
		return s.TotalSessions == int64(n+1) && s.ActiveSessions == 0
	})
	s := srv.Stats().Snapshot()
	if s.RoundsPlayed != int64(4*n) || s.FailedSessions != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestServerCloseStopsAccepting(t *testing.T) {
	_, udpPort := listenLocal(t)
	srv := startTestServer(t, udpPort, nil)
	addr := fmt.Sprintf("127.0.0.1:%d", srv.TCPPort())
	if err := srv.Close(); err != nil {
		t.Fatal(err)
	}
	if conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		conn.Close()
		t.Fatal("expected dial to fail after Close")
	}
}

func TestClientConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewClient(ClientConfig{Rounds: 1, Decider: DeciderFunc(alwaysStand)})
	if _, err := c.Play(context.Background(), addr); err == nil {
		t.Fatal("expected connect error")
	}
}
