package blackjack

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"fgb-go/utils"
)

// Round outcomes.
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeTie  = "tie"
)

// Outcome applies the fixed result table to two final totals: a busted
// player always loses, otherwise a busted dealer loses, otherwise the
// higher total wins and equal totals push.
func Outcome(playerTotal, dealerTotal int) string {
	switch {
	case playerTotal > utils.BlackjackTarget:
		return OutcomeLoss
	case dealerTotal > utils.BlackjackTarget:
		return OutcomeWin
	case playerTotal > dealerTotal:
		return OutcomeWin
	case playerTotal < dealerTotal:
		return OutcomeLoss
	default:
		return OutcomeTie
	}
}

// Round is one play-through from deal to settlement. At most one
// non-finished round exists process-wide; once Finished flips the round
// is immutable and its slot may be reused.
type Round struct {
	Player     string
	Handle     string
	Deck       *utils.Deck
	PlayerHand *utils.Hand
	DealerHand *utils.Hand
	StartedAt  time.Time

	DealerResolved bool
	Finished       bool

	timer *quartz.Timer
}

// Engine owns the single live round and drives it to settlement against
// the wall-clock timeout. All entry points serialize on one mutex; the
// timeout watcher checks freshness under the same lock, so a late stand
// and the watcher can never both settle.
type Engine struct {
	mu      sync.Mutex
	clock   quartz.Clock
	timeout time.Duration

	store  *utils.Store
	ledger *utils.CooldownLedger
	notify func(string)
	logger *log.Logger

	round   *Round
	newDeck func() *utils.Deck
}

// NewEngine wires the engine to its collaborators. Replies go through
// notify, which must not block.
func NewEngine(clock quartz.Clock, timeout time.Duration, store *utils.Store, ledger *utils.CooldownLedger, notify func(string), logger *log.Logger) *Engine {
	return &Engine{
		clock:   clock,
		timeout: timeout,
		store:   store,
		ledger:  ledger,
		notify:  notify,
		logger:  logger.WithPrefix("blackjack"),
		newDeck: utils.NewDeck,
	}
}

// Start deals a new round for the player. Fails with ErrRoundInProgress
// while a non-finished round occupies the slot. If either opening hand
// already totals 21 or more, the dealer is resolved and the round
// settles immediately; otherwise the timeout watcher is armed.
func (e *Engine) Start(player, handle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.round != nil && !e.round.Finished {
		return utils.ErrRoundInProgress
	}

	r := &Round{
		Player:     player,
		Handle:     handle,
		Deck:       e.newDeck(),
		PlayerHand: utils.NewHand(),
		DealerHand: utils.NewHand(),
		StartedAt:  e.clock.Now(),
	}
	r.PlayerHand.AddCard(r.Deck.Deal())
	r.DealerHand.AddCard(r.Deck.Deal())
	r.PlayerHand.AddCard(r.Deck.Deal())
	r.DealerHand.AddCard(r.Deck.Deal())

	e.round = r
	e.logger.Info("round started", "player", player)

	if r.PlayerHand.Total() >= utils.BlackjackTarget || r.DealerHand.Total() >= utils.BlackjackTarget {
		e.resolveDealerLocked(r)
		e.settleLocked(r, "")
		return nil
	}

	r.timer = e.clock.AfterFunc(e.timeout, func() { e.expire(r) })

	e.notify(fmt.Sprintf("%s draws %s (%d). Dealer shows %s. Type hit or stand.",
		handle, r.PlayerHand, r.PlayerHand.Total(), r.DealerHand.Cards[0]))
	return nil
}

// Hit draws one card for the round's owner. Calls from anyone else, on a
// finished round, or past the timeout are silent no-ops; the watcher is
// authoritative for expiry. A bust settles as a loss with the dealer
// hand standing as dealt.
func (e *Engine) Hit(player string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.round
	if r == nil || r.Finished || r.Player != player {
		return
	}
	if e.clock.Now().After(r.StartedAt.Add(e.timeout)) {
		return
	}

	r.PlayerHand.AddCard(r.Deck.Deal())
	if r.PlayerHand.IsBust() {
		e.settleLocked(r, "Bust!")
		return
	}

	e.notify(fmt.Sprintf("%s: %s (%d). Type hit or stand.",
		r.Handle, r.PlayerHand, r.PlayerHand.Total()))
}

// Stand resolves the dealer and settles. Owner-only; otherwise a silent
// no-op.
func (e *Engine) Stand(player string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.round
	if r == nil || r.Finished || r.Player != player {
		return
	}

	e.resolveDealerLocked(r)
	e.settleLocked(r, "")
}

// Active reports whether a non-finished round is in flight.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round != nil && !e.round.Finished
}

// expire is the timeout watcher. The freshness check under the lock
// makes it a no-op once the round settled through hit or stand, or once
// the slot holds a later round.
func (e *Engine) expire(r *Round) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.round != r || r.Finished {
		return
	}

	e.logger.Info("round timed out", "player", r.Player)
	e.resolveDealerLocked(r)
	e.settleLocked(r, "Timed out.")
}

// resolveDealerLocked draws the dealer to 17 or beyond. Idempotent: a
// second call returns with the hand unchanged. Caller holds e.mu.
func (e *Engine) resolveDealerLocked(r *Round) {
	if r.DealerResolved {
		return
	}
	for r.DealerHand.Total() < utils.DealerStandValue {
		r.DealerHand.AddCard(r.Deck.Deal())
	}
	r.DealerResolved = true
}

// settleLocked scores the round, applies side effects exactly once and
// frees the slot. Win or loss updates the player's record; a tie updates
// nothing. The cooldown ledger is recorded regardless of outcome.
// Caller holds e.mu.
func (e *Engine) settleLocked(r *Round, note string) {
	if r.Finished {
		return
	}
	r.Finished = true
	if r.timer != nil {
		r.timer.Stop()
	}

	result := Outcome(r.PlayerHand.Total(), r.DealerHand.Total())
	if result != OutcomeTie {
		e.store.RecordOutcome(context.Background(), r.Player, r.Handle, result == OutcomeWin)
	}
	e.ledger.Record(r.Player)

	e.notify(settleText(r, note, result))
	e.logger.Info("round settled", "player", r.Player, "result", result,
		"player_total", r.PlayerHand.Total(), "dealer_total", r.DealerHand.Total())
	e.round = nil
}

// settleText builds the single settlement reply line.
func settleText(r *Round, note, result string) string {
	parts := []string{fmt.Sprintf("%s: %s (%d). Dealer: %s (%d).",
		r.Handle, r.PlayerHand, r.PlayerHand.Total(), r.DealerHand, r.DealerHand.Total())}

	if r.PlayerHand.IsNatural() || r.DealerHand.IsNatural() {
		parts = append(parts, "Natural 21!")
	}
	if note != "" {
		parts = append(parts, note)
	}

	switch result {
	case OutcomeWin:
		parts = append(parts, "You win!")
	case OutcomeLoss:
		parts = append(parts, "You lose.")
	default:
		parts = append(parts, "Push.")
	}
	return strings.Join(parts, " ")
}
