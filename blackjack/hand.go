package blackjack

import "fmt"

const (
	blackjackLimit = 21
	dealerStandsOn = 17
)

type Result uint8

const (
	ResultNotOver Result = iota
	ResultTie
	ResultLoss
	ResultWin
)

func (r Result) String() string {
	switch r {
	case ResultNotOver:
		return "NOT-OVER"
	case ResultTie:
		return "TIE"
	case ResultLoss:
		return "LOSS"
	case ResultWin:
		return "WIN"
	default:
		return "INVALID"
	}
}

func (r Result) valid() bool { return r <= ResultWin }

// HandTotal scores a hand, counting each Ace as 11 and then dropping Aces to 1
// one at a time while the hand would otherwise bust.
func HandTotal(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		total += c.Value()
		if c.Rank == Ace {
			aces++
		}
	}
	for total > blackjackLimit && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func IsBust(cards []Card) bool {
	return HandTotal(cards) > blackjackLimit
}

// DecideWinner resolves a round from the player's point of view.
func DecideWinner(playerTotal, dealerTotal int, playerBust, dealerBust bool) Result {
	switch {
	case playerBust:
		return ResultLoss
	case dealerBust:
		return ResultWin
	case playerTotal > dealerTotal:
		return ResultWin
	case dealerTotal > playerTotal:
		return ResultLoss
	default:
		return ResultTie
	}
}

// Tally counts finished rounds for one connection.
type Tally struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

func (t *Tally) Record(r Result) {
	switch r {
	case ResultWin:
		t.Wins++
	case ResultLoss:
		t.Losses++
	case ResultTie:
		t.Ties++
	}
}

func (t Tally) Rounds() int { return t.Wins + t.Losses + t.Ties }

func (t Tally) WinRate() float64 {
	if t.Rounds() == 0 {
		return 0
	}
	return float64(t.Wins) / float64(t.Rounds())
}

func (t Tally) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Wins, t.Losses, t.Ties)
}
