package utils

// Card System
var (
	CardSuits = []string{"♠", "♥", "♦", "♣"}
	CardRanks = map[string]int{
		"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
		"J": 10, "Q": 10, "K": 10, "A": 11,
	}
)

// Blackjack Game Constants
const (
	BlackjackTarget  = 21
	DealerStandValue = 17
)

// Economy
const (
	ResourceCap     = 99
	GatherMinAmount = 1
	GatherMaxAmount = 5
	PromoReward     = 50
	RoundWinPoints  = 1
	DiceWinPoints   = 1
	DiceCount       = 2
	SlotReels       = 3
	SlotWinPoints   = 1
	LeaderboardSize = 5
)

// SlotSymbols is the reel face set; three matching faces win.
var SlotSymbols = []string{"🍒", "🍋", "🔔", "⭐", "7️⃣"}

// ResourceKinds is the fixed set of gatherable inventory categories.
var ResourceKinds = []string{"wood", "stone", "iron", "gold"}

// PromoCodes is the fixed allow-list of redeemable codes, stored lowercase.
// Matching against player input is case-insensitive.
var PromoCodes = []string{"firstpromo2", "welcome", "comeback25"}
