package blackjack

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultReadTimeout      = 10 * time.Second
)

type SessionConfig struct {
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	// NewDeck supplies the deck for each round. Defaults to NewDeck(nil).
	NewDeck func() *Deck
	// Stats, if set, receives aggregate round results.
	Stats *Stats
}

// Session plays every requested round with one connected client.
type Session struct {
	SessionConfig
	ID     uuid.UUID
	peer   *Peer
	log    *logrus.Entry
	tally  Tally
	client string
}

func NewSession(conn net.Conn, cfg SessionConfig) *Session {
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.NewDeck == nil {
		cfg.NewDeck = func() *Deck { return NewDeck(nil) }
	}
	id := uuid.New()
	return &Session{
		SessionConfig: cfg,
		ID:            id,
		peer:          NewPeer(conn),
		log: logrus.WithFields(logrus.Fields{
			"session": id.String(),
			"peer":    conn.RemoteAddr().String(),
		}),
	}
}

// Run reads the client's request, plays the rounds and closes the connection.
// The returned tally covers every round finished before any error.
func (s *Session) Run() (Tally, error) {
	defer s.peer.Close()

	raw, err := s.peer.ReadFrame("handshake", RequestSize, s.HandshakeTimeout)
	if err != nil {
		return s.tally, err
	}
	req, err := DecodeRequest(raw)
	if err != nil {
		return s.tally, fmt.Errorf("bad request: %w", err)
	}
	s.client = req.ClientName
	s.log = s.log.WithField("client", req.ClientName)
	s.log.WithField("rounds", req.Rounds).Info("client connected")

	for r := 1; r <= req.Rounds; r++ {
		log := s.log.WithField("round", fmt.Sprintf("%d/%d", r, req.Rounds))
		log.Debug("round start")
		res, err := s.playRound(log)
		if err != nil {
			return s.tally, fmt.Errorf("round %d: %w", r, err)
		}
		s.tally.Record(res)
		if s.Stats != nil {
			s.Stats.RecordRound(res)
		}
	}
	s.log.WithField("wlt", s.tally.String()).Info("session finished")
	return s.tally, nil
}

func (s *Session) Tally() Tally { return s.tally }

func (s *Session) ClientName() string { return s.client }

type round struct {
	deck   *Deck
	player []Card
	dealer []Card
}

func (rd *round) draw() (Card, error) {
	return rd.deck.Draw()
}

func (s *Session) send(res Result, c Card) error {
	return s.peer.Send(ServerPayload{Result: res, Card: c})
}

func (s *Session) playRound(log *logrus.Entry) (Result, error) {
	rd := &round{deck: s.NewDeck()}
	for i := 0; i < 4; i++ {
		c, err := rd.draw()
		if err != nil {
			return 0, err
		}
		if i < 2 {
			rd.player = append(rd.player, c)
		} else {
			rd.dealer = append(rd.dealer, c)
		}
	}
	for _, c := range []Card{rd.player[0], rd.player[1], rd.dealer[0]} {
		if err := s.send(ResultNotOver, c); err != nil {
			return 0, err
		}
	}

	playerBust, err := s.playerTurn(rd, log)
	if err != nil {
		return 0, err
	}
	if playerBust {
		// A busting hit already went out with the loss.
		return ResultLoss, nil
	}

	hidden := rd.dealer[1]
	if err := s.send(ResultNotOver, hidden); err != nil {
		return 0, err
	}
	dt := HandTotal(rd.dealer)
	log.WithField("total", dt).Debugf("dealer reveals %s", hidden.Short())

	last := hidden
	dealerBust := false
	for dt < dealerStandsOn {
		c, err := rd.draw()
		if err != nil {
			return 0, err
		}
		rd.dealer = append(rd.dealer, c)
		last = c
		dt = HandTotal(rd.dealer)
		log.WithField("total", dt).Debugf("dealer hits %s", c.Short())
		if dt > blackjackLimit {
			dealerBust = true
			break
		}
		if err := s.send(ResultNotOver, c); err != nil {
			return 0, err
		}
	}

	pt := HandTotal(rd.player)
	res := DecideWinner(pt, dt, false, dealerBust)
	if err := s.send(res, last); err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{
		"player": pt,
		"dealer": dt,
		"result": res,
	}).Info("round finished")
	return res, nil
}

// playerTurn reads decisions until the player stands or busts. On a bust the
// loss has already been sent.
func (s *Session) playerTurn(rd *round, log *logrus.Entry) (bool, error) {
	for {
		pt := HandTotal(rd.player)
		if pt > blackjackLimit {
			log.WithField("total", pt).Warn("player bust without a hit")
			return true, nil
		}
		raw, err := s.peer.ReadFrame("decision", ClientPayloadSize, s.ReadTimeout)
		if err != nil {
			return false, err
		}
		p, err := DecodeClientPayload(raw)
		if err != nil {
			return false, fmt.Errorf("bad decision: %w", err)
		}
		switch p.Decision {
		case DecisionHit:
			c, err := rd.draw()
			if err != nil {
				return false, err
			}
			rd.player = append(rd.player, c)
			pt = HandTotal(rd.player)
			log.WithField("total", pt).Debugf("player hits %s", c.Short())
			if pt > blackjackLimit {
				if err := s.send(ResultLoss, c); err != nil {
					return false, err
				}
				log.WithField("total", pt).Info("player bust")
				return true, nil
			}
			if err := s.send(ResultNotOver, c); err != nil {
				return false, err
			}
		case DecisionStand:
			log.WithField("total", pt).Debug("player stands")
			return false, nil
		default:
			log.WithField("decision", string(p.Decision)).Warn("unknown decision, treating as stand")
			return false, nil
		}
	}
}
