package cogs

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"fgb-go/games/blackjack"
	"fgb-go/models"
	"fgb-go/utils"
)

// Router maps inbound chat events to game and economy actions. It holds
// no state of its own beyond the short dedupe window; everything else is
// delegated to the store, ledger and engine passed in. Moderation
// commands are routed but not authenticated here, that is the channel
// collaborator's responsibility.
type Router struct {
	store    *utils.Store
	ledger   *utils.CooldownLedger
	engine   *blackjack.Engine
	dispatch *utils.Dispatcher
	recent   *utils.RecentCache
	awards   *utils.AwardClient
	logger   *log.Logger
	rng      *rand.Rand
}

// NewRouter wires the router to its collaborators.
func NewRouter(store *utils.Store, ledger *utils.CooldownLedger, engine *blackjack.Engine,
	dispatch *utils.Dispatcher, recent *utils.RecentCache, awards *utils.AwardClient,
	logger *log.Logger) *Router {
	return &Router{
		store:    store,
		ledger:   ledger,
		engine:   engine,
		dispatch: dispatch,
		recent:   recent,
		awards:   awards,
		logger:   logger.WithPrefix("router"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Normalize prepares raw chat text for matching: trimmed, trailing
// punctuation stripped, case-folded.
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimRight(s, "!?.,:;")
	return strings.ToLower(strings.TrimSpace(s))
}

// Handle routes one inbound event. Unrecognized text, duplicate
// deliveries within the dedupe window and blacklisted identities are all
// dropped silently.
func (rt *Router) Handle(ctx context.Context, ev models.Event) {
	norm := Normalize(ev.Text)
	if norm == "" {
		return
	}

	fields := strings.Fields(norm)
	cmd := fields[0]

	switch cmd {
	case "play", "hit", "stand", "inventory", "inv", "gather", "convert",
		"donate", "promo", "top", "dice", "slots", "fund", "ban", "unban", "exempt":
	default:
		return
	}

	if rt.recent.Seen(ev.Identity + "|" + norm) {
		return
	}
	if rt.store.IsBanned(ev.Identity) {
		return
	}

	switch cmd {
	case "play":
		rt.handlePlay(ev)
	case "hit":
		rt.engine.Hit(ev.Identity)
	case "stand":
		rt.engine.Stand(ev.Identity)
	case "inventory", "inv":
		rt.handleInventory(ctx, ev)
	case "gather":
		rt.handleGather(ctx, ev)
	case "convert":
		rt.handleConvert(ctx, ev)
	case "donate":
		rt.handleDonate(ctx, ev)
	case "promo":
		rt.handlePromo(ctx, ev, fields)
	case "top":
		rt.handleTop(ev, fields)
	case "dice":
		rt.handleDice(ctx, ev)
	case "slots":
		rt.handleSlots(ctx, ev)
	case "fund":
		rt.dispatch.Enqueue(fmt.Sprintf("Shared fund: %d points.", rt.store.SharedFund()))
	case "ban", "unban", "exempt":
		rt.handleModeration(ctx, ev, cmd, fields)
	}
}

func (rt *Router) handlePlay(ev models.Event) {
	if err := rt.ledger.CanStart(ev.Identity, rt.store.IsExempt(ev.Identity)); err != nil {
		var cd *utils.CooldownError
		if errors.As(err, &cd) {
			if cd.Scope == utils.ScopePersonal {
				rt.dispatch.Enqueue(fmt.Sprintf("%s, wait %ds before your next round.", ev.Handle, cd.RemainingSeconds()))
			} else {
				rt.dispatch.Enqueue(fmt.Sprintf("%s, the table needs %ds to reset.", ev.Handle, cd.RemainingSeconds()))
			}
		}
		return
	}

	if err := rt.engine.Start(ev.Identity, ev.Handle); err != nil {
		rt.dispatch.Enqueue(fmt.Sprintf("%s, a round is already in progress.", ev.Handle))
	}
}

func (rt *Router) handleInventory(ctx context.Context, ev models.Event) {
	p := rt.store.Player(ctx, ev.Identity, ev.Handle)

	items := make([]string, 0, len(utils.ResourceKinds))
	for _, kind := range utils.ResourceKinds {
		if n := p.Resources[kind]; n > 0 {
			items = append(items, fmt.Sprintf("%s %d", kind, n))
		}
	}
	inv := "empty"
	if len(items) > 0 {
		inv = strings.Join(items, ", ")
	}

	rt.dispatch.Enqueue(fmt.Sprintf("%s: %d points, inventory %s, record %dW/%dL.",
		ev.Handle, p.Points, inv, p.Wins, p.Losses))
}

func (rt *Router) handleGather(ctx context.Context, ev models.Event) {
	if err := rt.ledger.TryGather(); err != nil {
		var cd *utils.CooldownError
		if errors.As(err, &cd) {
			rt.dispatch.Enqueue(fmt.Sprintf("%s, the grounds are picked clean. Try again in %ds.", ev.Handle, cd.RemainingSeconds()))
		}
		return
	}

	kind, amount, err := rt.store.Gather(ctx, ev.Identity, ev.Handle)
	if errors.Is(err, utils.ErrInventoryFull) {
		// Only a successful grant consumes the window.
		rt.ledger.VoidGather()
		rt.dispatch.Enqueue(fmt.Sprintf("%s, your %s inventory is full.", ev.Handle, kind))
		return
	}

	rt.dispatch.Enqueue(fmt.Sprintf("%s gathered %d %s.", ev.Handle, amount, kind))
}

func (rt *Router) handleConvert(ctx context.Context, ev models.Event) {
	points, err := rt.store.Convert(ctx, ev.Identity, ev.Handle)
	if errors.Is(err, utils.ErrNothingToConvert) {
		rt.dispatch.Enqueue(fmt.Sprintf("%s, nothing to convert.", ev.Handle))
		return
	}
	rt.dispatch.Enqueue(fmt.Sprintf("%s converted their inventory into %d points.", ev.Handle, points))
}

func (rt *Router) handleDonate(ctx context.Context, ev models.Event) {
	total, err := rt.store.Donate(ctx, ev.Identity, ev.Handle)
	if errors.Is(err, utils.ErrNothingToDonate) {
		rt.dispatch.Enqueue(fmt.Sprintf("%s, you have nothing to donate.", ev.Handle))
		return
	}
	rt.dispatch.Enqueue(fmt.Sprintf("%s donated %d to the shared fund (now %d).",
		ev.Handle, total, rt.store.SharedFund()))
}

func (rt *Router) handlePromo(ctx context.Context, ev models.Event, fields []string) {
	if len(fields) < 2 {
		return
	}

	reward, err := rt.store.RedeemPromo(ctx, ev.Identity, ev.Handle, fields[1])
	switch {
	case errors.Is(err, utils.ErrAlreadyRedeemed):
		rt.dispatch.Enqueue(fmt.Sprintf("%s, you already redeemed that code.", ev.Handle))
	case errors.Is(err, utils.ErrUnknownPromo):
		rt.dispatch.Enqueue(fmt.Sprintf("%s, that promo code is not valid.", ev.Handle))
	default:
		rt.dispatch.Enqueue(fmt.Sprintf("%s redeemed %s for %d points.", ev.Handle, fields[1], reward))
	}
}

func (rt *Router) handleTop(ev models.Event, fields []string) {
	by := utils.TopByWins
	if len(fields) > 1 {
		switch fields[1] {
		case "losses":
			by = utils.TopByLosses
		case "points":
			by = utils.TopByPoints
		}
	}

	top := rt.store.Top(by, utils.LeaderboardSize)
	if len(top) == 0 {
		rt.dispatch.Enqueue("Nobody has played yet.")
		return
	}

	lines := make([]string, 0, len(top)+1)
	lines = append(lines, fmt.Sprintf("Top by %s:", by))
	for i, p := range top {
		var value int64
		switch by {
		case utils.TopByLosses:
			value = int64(p.Losses)
		case utils.TopByPoints:
			value = p.Points
		default:
			value = int64(p.Wins)
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %d %s", i+1, p.Handle, value, by))
	}
	rt.dispatch.Enqueue(strings.Join(lines, "\n"))
}

func (rt *Router) handleDice(ctx context.Context, ev models.Event) {
	playerSum, playerRolls := rt.rollDice()
	houseSum, houseRolls := rt.rollDice()

	msg := fmt.Sprintf("%s rolls %s (%d), house rolls %s (%d).",
		ev.Handle, playerRolls, playerSum, houseRolls, houseSum)
	switch {
	case playerSum > houseSum:
		rt.store.AddPoints(ctx, ev.Identity, ev.Handle, utils.DiceWinPoints)
		msg += fmt.Sprintf(" You win %d point!", utils.DiceWinPoints)
	case playerSum < houseSum:
		msg += " House wins."
	default:
		msg += " Push."
	}
	rt.dispatch.Enqueue(msg)

	rt.awards.Report(ev.Identity, playerSum)
}

func (rt *Router) handleSlots(ctx context.Context, ev models.Event) {
	reels := make([]string, 0, utils.SlotReels)
	for i := 0; i < utils.SlotReels; i++ {
		reels = append(reels, utils.SlotSymbols[rt.rng.Intn(len(utils.SlotSymbols))])
	}

	win := true
	for _, face := range reels[1:] {
		if face != reels[0] {
			win = false
			break
		}
	}

	msg := fmt.Sprintf("%s spins %s.", ev.Handle, strings.Join(reels, " "))
	if win {
		rt.store.AddPoints(ctx, ev.Identity, ev.Handle, utils.SlotWinPoints)
		msg += fmt.Sprintf(" Jackpot! You win %d point!", utils.SlotWinPoints)
	} else {
		msg += " No match."
	}
	rt.dispatch.Enqueue(msg)
}

// rollDice rolls the configured number of dice, returning the sum and a
// "3+5" style rendering.
func (rt *Router) rollDice() (int, string) {
	sum := 0
	parts := make([]string, 0, utils.DiceCount)
	for i := 0; i < utils.DiceCount; i++ {
		roll := rt.rng.Intn(6) + 1
		sum += roll
		parts = append(parts, fmt.Sprintf("%d", roll))
	}
	return sum, strings.Join(parts, "+")
}

func (rt *Router) handleModeration(ctx context.Context, ev models.Event, cmd string, fields []string) {
	if len(fields) < 2 {
		return
	}
	target := models.PlayerKey(fields[1], ev.ChannelID)

	switch cmd {
	case "ban":
		rt.store.Ban(ctx, target)
		rt.dispatch.Enqueue(fmt.Sprintf("%s is barred from the table.", fields[1]))
	case "unban":
		rt.store.Unban(ctx, target)
		rt.dispatch.Enqueue(fmt.Sprintf("%s may play again.", fields[1]))
	case "exempt":
		rt.store.Exempt(ctx, target)
		rt.dispatch.Enqueue(fmt.Sprintf("%s now skips cooldowns.", fields[1]))
	}
	rt.logger.Info("moderation command", "cmd", cmd, "by", ev.Identity, "target", target)
}
