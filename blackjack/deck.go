package blackjack

import (
	"fmt"
	"math/rand/v2"
)

type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "HEARTS"
	case Diamonds:
		return "DIAMONDS"
	case Clubs:
		return "CLUBS"
	case Spades:
		return "SPADES"
	default:
		return "INVALID"
	}
}

func (s Suit) Unicode() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

func (s Suit) valid() bool { return s <= Spades }

type Rank uint8

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

func (r Rank) valid() bool { return r >= Ace && r <= King }

func (r Rank) String() string {
	switch r {
	case Ace:
		return "ACE"
	case Jack:
		return "JACK"
	case Queen:
		return "QUEEN"
	case King:
		return "KING"
	default:
		return fmt.Sprintf("%d", r)
	}
}

func (r Rank) short() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("%d", r)
	}
}

type Card struct {
	Rank Rank
	Suit Suit
}

// Value is the card's face value with the Ace fixed at 11. Scoring goes
// through HandTotal, which lowers Aces as needed.
func (c Card) Value() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank > 10:
		return 10
	default:
		return int(c.Rank)
	}
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s %s", c.Rank, c.Suit, c.Suit.Unicode())
}

func (c Card) Short() string {
	if !c.Suit.valid() {
		return c.Rank.short() + "?"
	}
	return c.Rank.short() + string("HDCS"[c.Suit])
}

func (c Card) validate() error {
	if !c.Rank.valid() {
		return &ValidationError{Field: "rank", Value: c.Rank}
	}
	if !c.Suit.valid() {
		return &ValidationError{Field: "suit", Value: c.Suit}
	}
	return nil
}

// Deck is a single shuffled 52 card deck. It is not safe for concurrent use;
// every round owns its own.
type Deck struct {
	cards []Card
}

// NewDeck returns a freshly shuffled deck. A nil rng uses the global source.
func NewDeck(rng *rand.Rand) *Deck {
	cards := make([]Card, 0, 52)
	for s := Hearts; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng == nil {
		rand.Shuffle(len(cards), swap)
	} else {
		rng.Shuffle(len(cards), swap)
	}
	return &Deck{cards: cards}
}

func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

func (d *Deck) Len() int { return len(d.cards) }
