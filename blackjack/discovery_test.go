package blackjack

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

func listenLocal(t *testing.T) (net.PacketConn, int) {
	t.Helper()
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pc.Close() })
	return pc, pc.LocalAddr().(*net.UDPAddr).Port
}

func TestListenForOfferSkipsGarbage(t *testing.T) {
	pc, port := listenLocal(t)
	sender, err := net.Dial("udp4", pc.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()

	badCookie, _ := Offer{TCPPort: 1, ServerName: "impostor"}.MarshalBinary()
	badCookie[0] = 0
	request, _ := Request{Rounds: 3, ClientName: "someone"}.MarshalBinary()
	good, _ := Offer{TCPPort: 4242, ServerName: "Dealer"}.MarshalBinary()
	oversized := append(append([]byte{}, good...), 0)

	for _, b := range [][]byte{[]byte("hello"), badCookie, request, oversized, good} {
		if _, err := sender.Write(b); err != nil {
			t.Fatal(err)
		}
	}

	d, err := ListenForOffer(pc, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if d.ServerName != "Dealer" || d.TCPPort != 4242 || d.Addr != "127.0.0.1" {
		t.Fatalf("unexpected offer %+v (listening on %d)", d, port)
	}
	if d.TCPAddr() != "127.0.0.1:4242" {
		t.Fatalf("unexpected tcp address %s", d.TCPAddr())
	}
}

func TestListenForOfferTimeout(t *testing.T) {
	pc, _ := listenLocal(t)
	start := time.Now()
	_, err := ListenForOffer(pc, 100*time.Millisecond)
	var terr *TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TimeoutError, actual %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout took too long")
	}
}

func TestBroadcasterSendsOffers(t *testing.T) {
	pc, port := listenLocal(t)
	b, err := NewBroadcaster(BroadcasterConfig{
		ServerName:    "Table 7",
		TCPPort:       31337,
		UDPPort:       port,
		BroadcastAddr: "127.0.0.1",
		Interval:      20 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	b.Start(t.Context())
	defer b.Stop()

	for i := 0; i < 3; i++ {
		d, err := ListenForOffer(pc, 2*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if d.ServerName != "Table 7" || d.TCPPort != 31337 {
			t.Fatalf("unexpected offer %+v", d)
		}
	}
	if b.Sent() < 3 {
		t.Fatalf("expected at least 3 sends, actual %d", b.Sent())
	}
}

func TestBroadcasterStop(t *testing.T) {
	_, port := listenLocal(t)
	b, err := NewBroadcaster(BroadcasterConfig{
		ServerName:    "x",
		UDPPort:       port,
		BroadcastAddr: "127.0.0.1",
		Interval:      10 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	b.Start(t.Context())
	time.Sleep(50 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Stop()
		}()
	}
	wg.Wait()

	sent := b.Sent()
	if sent == 0 {
		t.Fatal("expected at least one send before stop")
	}
	time.Sleep(50 * time.Millisecond)
	if b.Sent() != sent {
		t.Fatalf("sends continued after stop: %d then %d", sent, b.Sent())
	}
}

func TestBroadcasterStopWithoutStart(t *testing.T) {
	b, err := NewBroadcaster(BroadcasterConfig{BroadcastAddr: "127.0.0.1", UDPPort: 9})
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- b.Stop() }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}
