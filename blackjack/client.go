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

const defaultConnectTimeout = 5 * time.Second

// RoundView is what the player knows when asked for a decision.
type RoundView struct {
	Round    int
	Rounds   int
	Hand     []Card
	Total    int
	DealerUp Card
}

type Decider interface {
	Decide(view RoundView) (Decision, error)
}

type DeciderFunc func(view RoundView) (Decision, error)

func (f DeciderFunc) Decide(view RoundView) (Decision, error) { return f(view) }

// RoundOutcome describes a finished round from the client's side.
type RoundOutcome struct {
	Round       int
	Hand        []Card
	Dealer      []Card
	PlayerTotal int
	DealerTotal int
	Result      Result
}

type ClientConfig struct {
	Name           string
	Rounds         int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Decider        Decider
	// OnRound, if set, is called after every finished round.
	OnRound func(RoundOutcome)
}

// Client plays one session at a time against a discovered server. The server
// is authoritative; the client only mirrors hands for display and decisions.
type Client struct {
	ClientConfig
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	return &Client{ClientConfig: cfg}
}

func (c *Client) Play(ctx context.Context, addr string) (Tally, error) {
	d := net.Dialer{Timeout: c.ConnectTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return Tally{}, &TimeoutError{Op: "connect", Err: err}
		}
		return Tally{}, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	return c.PlaySession(conn)
}

// PlaySession sends the request over an established connection and plays
// every round. The connection is closed on return.
func (c *Client) PlaySession(conn net.Conn) (Tally, error) {
	var tally Tally
	peer := NewPeer(conn)
	defer peer.Close()

	if c.Decider == nil {
		return tally, errors.New("client has no decider")
	}
	if err := peer.Send(Request{Rounds: c.Rounds, ClientName: c.Name}); err != nil {
		return tally, err
	}
	log := logrus.WithField("server", peer.RemoteAddr())
	for r := 1; r <= c.Rounds; r++ {
		out, err := c.playRound(peer, r)
		if err != nil {
			return tally, fmt.Errorf("round %d: %w", r, err)
		}
		tally.Record(out.Result)
		log.WithFields(logrus.Fields{
			"round":  r,
			"player": out.PlayerTotal,
			"dealer": out.DealerTotal,
			"result": out.Result,
		}).Debug("round finished")
		if c.OnRound != nil {
			c.OnRound(out)
		}
	}
	return tally, nil
}

func (c *Client) recv(peer *Peer) (ServerPayload, error) {
	raw, err := peer.ReadFrame("payload", ServerPayloadSize, c.ReadTimeout)
	if err != nil {
		return ServerPayload{}, err
	}
	return DecodeServerPayload(raw)
}

func (c *Client) playRound(peer *Peer, r int) (RoundOutcome, error) {
	out := RoundOutcome{Round: r}
	var deal [3]Card
	for i := range deal {
		p, err := c.recv(peer)
		if err != nil {
			return out, err
		}
		if p.Result != ResultNotOver {
			return out, fmt.Errorf("unexpected %s result while dealing", p.Result)
		}
		deal[i] = p.Card
	}
	out.Hand = []Card{deal[0], deal[1]}
	out.Dealer = []Card{deal[2]}

	for HandTotal(out.Hand) <= blackjackLimit {
		dec, err := c.Decider.Decide(RoundView{
			Round:    r,
			Rounds:   c.Rounds,
			Hand:     append([]Card(nil), out.Hand...),
			Total:    HandTotal(out.Hand),
			DealerUp: deal[2],
		})
		if err != nil {
			return out, err
		}
		if err := peer.Send(ClientPayload{Decision: dec}); err != nil {
			return out, err
		}
		if dec != DecisionHit {
			break
		}
		p, err := c.recv(peer)
		if err != nil {
			return out, err
		}
		out.Hand = append(out.Hand, p.Card)
		if p.Result != ResultNotOver {
			return c.finish(out, p.Result), nil
		}
	}
	if HandTotal(out.Hand) > blackjackLimit {
		// The server did not call the bust; it is waiting for a decision.
		logrus.WithField("total", HandTotal(out.Hand)).Warn("local bust not confirmed by server, standing")
		if err := peer.Send(ClientPayload{Decision: DecisionStand}); err != nil {
			return out, err
		}
	}

	for {
		p, err := c.recv(peer)
		if err != nil {
			return out, err
		}
		if p.Result == ResultNotOver {
			out.Dealer = append(out.Dealer, p.Card)
			continue
		}
		// The final card repeats the dealer's last card unless the dealer busted on it.
		if out.Dealer[len(out.Dealer)-1] != p.Card {
			out.Dealer = append(out.Dealer, p.Card)
		}
		return c.finish(out, p.Result), nil
	}
}

func (c *Client) finish(out RoundOutcome, res Result) RoundOutcome {
	out.Result = res
	out.PlayerTotal = HandTotal(out.Hand)
	out.DealerTotal = HandTotal(out.Dealer)
	return out
}
