package blackjack

import "sync/atomic"

// Stats aggregates results across sessions for the status API. Sessions only
// ever add to it.
type Stats struct {
	activeSessions atomic.Int64
	totalSessions  atomic.Int64
	failedSessions atomic.Int64
	wins           atomic.Int64
	losses         atomic.Int64
	ties           atomic.Int64
	offersSent     atomic.Int64
}

type StatsSnapshot struct {
	ActiveSessions int64 `json:"active_sessions"`
	TotalSessions  int64 `json:"total_sessions"`
	FailedSessions int64 `json:"failed_sessions"`
	RoundsPlayed   int64 `json:"rounds_played"`
	ClientWins     int64 `json:"client_wins"`
	ClientLosses   int64 `json:"client_losses"`
	Ties           int64 `json:"ties"`
	OffersSent     int64 `json:"offers_sent"`
}

func (s *Stats) SessionStarted() {
	s.activeSessions.Add(1)
	s.totalSessions.Add(1)
}

func (s *Stats) SessionEnded(err error) {
	s.activeSessions.Add(-1)
	if err != nil {
		s.failedSessions.Add(1)
	}
}

func (s *Stats) RecordRound(r Result) {
	switch r {
	case ResultWin:
		s.wins.Add(1)
	case ResultLoss:
		s.losses.Add(1)
	case ResultTie:
		s.ties.Add(1)
	}
}

func (s *Stats) OfferSent() { s.offersSent.Add(1) }

func (s *Stats) Snapshot() StatsSnapshot {
	w, l, t := s.wins.Load(), s.losses.Load(), s.ties.Load()
	return StatsSnapshot{
		ActiveSessions: s.activeSessions.Load(),
		TotalSessions:  s.totalSessions.Load(),
		FailedSessions: s.failedSessions.Load(),
		RoundsPlayed:   w + l + t,
		ClientWins:     w,
		ClientLosses:   l,
		Ties:           t,
		OffersSent:     s.offersSent.Load(),
	}
}
