package utils

import (
	"errors"
	"fmt"
	"time"
)

// Game and economy failures surfaced to players. Each maps to a single
// short reply line; raw error text never reaches the chat.
var (
	ErrRoundInProgress  = errors.New("a round is already in progress")
	ErrAlreadyRedeemed  = errors.New("promo code already redeemed")
	ErrUnknownPromo     = errors.New("unknown promo code")
	ErrInventoryFull    = errors.New("inventory full")
	ErrNothingToConvert = errors.New("nothing to convert")
	ErrNothingToDonate  = errors.New("nothing to donate")
)

// Cooldown scopes.
const (
	ScopePersonal = "personal"
	ScopeGlobal   = "global"
)

// CooldownError reports which cooldown window denied an action and how
// long the requester has to wait.
type CooldownError struct {
	Scope     string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s cooldown active for %ds", e.Scope, e.RemainingSeconds())
}

// RemainingSeconds rounds the remaining wait up to whole seconds.
func (e *CooldownError) RemainingSeconds() int {
	secs := int(e.Remaining / time.Second)
	if e.Remaining%time.Second != 0 {
		secs++
	}
	return secs
}
