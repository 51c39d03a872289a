package blackjack

import "testing"

func TestHandTotal(t *testing.T) {
	cases := []struct {
		hand  []Card
		total int
	}{
		{[]Card{{Ace, Hearts}, {6, Clubs}}, 17},
		{[]Card{{Ace, Hearts}, {Ace, Clubs}, {9, Spades}}, 21},
		{[]Card{{Ace, Hearts}, {Ace, Clubs}, {Ace, Spades}, {Ace, Diamonds}, {7, Hearts}}, 21},
		{[]Card{{10, Hearts}, {King, Clubs}}, 20},
		{[]Card{{Ace, Hearts}, {King, Clubs}, {5, Spades}}, 16},
		{[]Card{{Ace, Hearts}, {Ace, Clubs}}, 12},
		{[]Card{{King, Hearts}, {Queen, Clubs}, {2, Spades}}, 22},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := HandTotal(tc.hand); got != tc.total {
			t.Fatalf("%v: expected %d, actual %d", tc.hand, tc.total, got)
		}
	}
	if !IsBust([]Card{{King, Hearts}, {Queen, Clubs}, {2, Spades}}) {
		t.Fatal("expected 22 to bust")
	}
}

func TestDecideWinner(t *testing.T) {
	cases := []struct {
		player, dealer         int
		playerBust, dealerBust bool
		expected               Result
	}{
		{20, 19, false, false, ResultWin},
		{22, 19, true, false, ResultLoss},
		{22, 25, true, true, ResultLoss},
		{18, 22, false, true, ResultWin},
		{19, 19, false, false, ResultTie},
		{17, 20, false, false, ResultLoss},
	}
	for _, tc := range cases {
		got := DecideWinner(tc.player, tc.dealer, tc.playerBust, tc.dealerBust)
		if got != tc.expected {
			t.Fatalf("DecideWinner(%d, %d, %t, %t): expected %s, actual %s",
				tc.player, tc.dealer, tc.playerBust, tc.dealerBust, tc.expected, got)
		}
	}
}

func TestTally(t *testing.T) {
	var tally Tally
	for _, r := range []Result{ResultWin, ResultWin, ResultLoss, ResultTie, ResultNotOver} {
		tally.Record(r)
	}
	if tally != (Tally{Wins: 2, Losses: 1, Ties: 1}) {
		t.Fatalf("unexpected tally %+v", tally)
	}
	if tally.Rounds() != 4 || tally.WinRate() != 0.5 {
		t.Fatalf("unexpected rounds %d / win rate %f", tally.Rounds(), tally.WinRate())
	}
}
