package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	deck := NewDeck()
	require.Equal(t, 52, deck.CardsRemaining())

	seen := make(map[string]bool)
	for i := 0; i < 52; i++ {
		card := deck.Deal()
		require.False(t, seen[card.String()], "duplicate card %s", card)
		seen[card.String()] = true
	}
	assert.Len(t, seen, 52)
}

func TestCardValues(t *testing.T) {
	assert.Equal(t, 11, NewCard("A", "♠").Value())
	assert.Equal(t, 10, NewCard("K", "♥").Value())
	assert.Equal(t, 10, NewCard("Q", "♦").Value())
	assert.Equal(t, 10, NewCard("J", "♣").Value())
	assert.Equal(t, 10, NewCard("10", "♠").Value())
	assert.Equal(t, 2, NewCard("2", "♠").Value())
}

func TestAceIsAlways11(t *testing.T) {
	hand := NewHand()
	hand.AddCard(NewCard("A", "♠"))
	hand.AddCard(NewCard("A", "♥"))

	// No soft/hard adjustment: two aces bust.
	assert.Equal(t, 22, hand.Total())
	assert.True(t, hand.IsBust())
}

func TestNatural(t *testing.T) {
	hand := NewHand()
	hand.AddCard(NewCard("A", "♠"))
	hand.AddCard(NewCard("K", "♥"))
	assert.True(t, hand.IsNatural())

	// 21 over three cards is not a natural.
	three := NewHand()
	three.AddCard(NewCard("7", "♠"))
	three.AddCard(NewCard("7", "♥"))
	three.AddCard(NewCard("7", "♦"))
	assert.Equal(t, 21, three.Total())
	assert.False(t, three.IsNatural())
}

func TestDeckFromCardsDealsInOrder(t *testing.T) {
	deck := NewDeckFromCards(NewCard("2", "♠"), NewCard("3", "♥"), NewCard("4", "♦"))

	assert.Equal(t, "2♠", deck.Deal().String())
	assert.Equal(t, "3♥", deck.Deal().String())
	assert.Equal(t, "4♦", deck.Deal().String())
	assert.Equal(t, 0, deck.CardsRemaining())
}

func TestExhaustedFixedDeckReshufflesInsteadOfPanicking(t *testing.T) {
	deck := NewDeckFromCards(NewCard("2", "♠"), NewCard("3", "♥"))
	deck.Deal()
	deck.Deal()
	require.Equal(t, 0, deck.CardsRemaining())

	card := deck.Deal()
	assert.Contains(t, []string{"2♠", "3♥"}, card.String())
}

func TestHandString(t *testing.T) {
	hand := NewHand()
	hand.AddCard(NewCard("10", "♠"))
	hand.AddCard(NewCard("7", "♥"))
	assert.Equal(t, "10♠ 7♥", hand.String())
	assert.Equal(t, 17, hand.Total())
}
