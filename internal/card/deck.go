package card

import (
	"errors"
	rand "math/rand/v2"
)

// ErrDeckEmpty is returned when a draw or burn is attempted on an
// exhausted deck. A full deck can never run dry during a nine-handed
// hand, so hitting this means the persisted remainder was corrupted.
var ErrDeckEmpty = errors.New("card: deck is empty")

// Deck is an ordered sequence of distinct cards, consumed from the front.
type Deck struct {
	cards []Card
}

// NewDeck creates a standard 52-card deck in canonical order
// (hearts through spades, deuce through ace).
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, New(rank, suit))
		}
	}
	return d
}

// FromCards rebuilds a deck from a persisted remainder. The slice is copied.
func FromCards(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle randomizes the deck in place with a Fisher-Yates pass. Injecting
// the RNG keeps live deals crypto-seeded and tests reproducible.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// DrawN draws n cards from the top.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckEmpty
	}
	cards := make([]Card, n)
	for i := range cards {
		c, err := d.Draw()
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}

// Burn discards the top card before a community street is dealt.
func (d *Deck) Burn() error {
	_, err := d.Draw()
	return err
}

// Remaining returns the number of cards left.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards for persistence.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
