package utils

import (
	"math/rand"
	"time"
)

// Card represents a playing card
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// NewCard creates a new card
func NewCard(rank, suit string) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card
func (c Card) String() string {
	return c.Rank + c.Suit
}

// Value returns the numeric value of a card. Face cards count 10 and an
// ace always counts 11; the table rule has no soft/hard distinction.
func (c Card) Value() int {
	if value, exists := CardRanks[c.Rank]; exists {
		return value
	}
	return 0
}

// IsAce checks if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == "A"
}

// Deck represents a single 52-card deck
type Deck struct {
	Cards      []Card `json:"cards"`
	DealtCards int    `json:"dealt_cards"`
	rng        *rand.Rand
}

// NewDeck creates a freshly shuffled 52-card deck
func NewDeck() *Deck {
	deck := &Deck{
		Cards: make([]Card, 0, 52),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	ranks := []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	for _, suit := range CardSuits {
		for _, rank := range ranks {
			deck.Cards = append(deck.Cards, NewCard(rank, suit))
		}
	}

	deck.Shuffle()
	return deck
}

// NewDeckFromCards builds an unshuffled deck that deals the given cards in
// order. Used to set up known table states. The rng only comes into play
// if the deck runs out and has to reshuffle.
func NewDeckFromCards(cards ...Card) *Deck {
	return &Deck{
		Cards: cards,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Shuffle shuffles the remaining deck uniformly
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
	d.DealtCards = 0
}

// Deal deals one card from the deck
func (d *Deck) Deal() Card {
	if d.DealtCards >= len(d.Cards) {
		// A single-player round can never exhaust 52 cards; guard anyway.
		d.Shuffle()
	}

	card := d.Cards[d.DealtCards]
	d.DealtCards++
	return card
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.Cards) - d.DealtCards
}

// Hand represents an ordered hand of dealt cards
type Hand struct {
	Cards []Card `json:"cards"`
}

// NewHand creates a new empty hand
func NewHand() *Hand {
	return &Hand{Cards: make([]Card, 0, 8)}
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card Card) {
	h.Cards = append(h.Cards, card)
}

// Total returns the summed value of the hand. Aces are always 11.
func (h *Hand) Total() int {
	total := 0
	for _, card := range h.Cards {
		total += card.Value()
	}
	return total
}

// IsBust checks if the hand is over 21
func (h *Hand) IsBust() bool {
	return h.Total() > BlackjackTarget
}

// IsNatural checks for a two-card 21 before any hit
func (h *Hand) IsNatural() bool {
	return len(h.Cards) == 2 && h.Total() == BlackjackTarget
}

// Count returns the number of cards in the hand
func (h *Hand) Count() int {
	return len(h.Cards)
}

// String returns string representation of the hand
func (h *Hand) String() string {
	result := ""
	for i, card := range h.Cards {
		if i > 0 {
			result += " "
		}
		result += card.String()
	}
	return result
}
