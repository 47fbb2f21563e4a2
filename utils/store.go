package utils

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"fgb-go/models"
)

// Backend reads and writes the raw durable document. Load returns nil
// bytes with a nil error when no document exists yet.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileBackend keeps the document in a JSON file on disk.
type FileBackend struct {
	Path string
}

func (fb *FileBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(fb.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (fb *FileBackend) Save(ctx context.Context, data []byte) error {
	return os.WriteFile(fb.Path, data, 0o644)
}

// RedisBackend keeps the document as a single JSON value under one key.
type RedisBackend struct {
	Client *redis.Client
	Key    string
}

func (rb *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := rb.Client.Get(ctx, rb.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (rb *RedisBackend) Save(ctx context.Context, data []byte) error {
	return rb.Client.Set(ctx, rb.Key, data, 0).Err()
}

// Store is the exclusive owner of the durable document. Every
// read-modify-write-persist runs as one critical section, so concurrent
// command handling for different players cannot lose updates. Persist
// failures are an operator concern: the mutation stays applied in memory
// and a warning is logged, players never see a raw error.
type Store struct {
	mu      sync.Mutex
	backend Backend
	doc     *models.Document
	logger  *log.Logger
	rng     *rand.Rand
}

// NewStore creates a store over the given backend with empty state.
// Call Load before serving commands.
func NewStore(backend Backend, logger *log.Logger) *Store {
	return &Store{
		backend: backend,
		doc:     models.NewDocument(),
		logger:  logger.WithPrefix("store"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Load reads the durable document. A missing document initializes empty
// state. A malformed document degrades to defaults, keeping whichever
// recognized fields still decode, and schedules a fresh write so the
// backend converges on a valid document.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("state unavailable, starting empty", "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	doc := models.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		doc, _ = decodeSalvaging(data)
		s.logger.Warn("malformed state document, using defaults", "error", err)
		normalizeDocument(doc)

		s.mu.Lock()
		s.doc = doc
		s.persistLocked(ctx)
		s.mu.Unlock()
		return nil
	}

	normalizeDocument(doc)
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// decodeSalvaging recovers individually valid top-level fields from a
// document that does not decode as a whole.
func decodeSalvaging(data []byte) (*models.Document, bool) {
	doc := models.NewDocument()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return doc, false
	}

	salvaged := false
	if v, ok := raw["players"]; ok && json.Unmarshal(v, &doc.Players) == nil {
		salvaged = true
	}
	if v, ok := raw["blacklist"]; ok && json.Unmarshal(v, &doc.Blacklist) == nil {
		salvaged = true
	}
	if v, ok := raw["cooldown_exempt"]; ok && json.Unmarshal(v, &doc.CooldownExempt) == nil {
		salvaged = true
	}
	if v, ok := raw["shared_fund"]; ok && json.Unmarshal(v, &doc.SharedFund) == nil {
		salvaged = true
	}
	return doc, salvaged
}

// normalizeDocument repairs nil maps left behind by partial decodes.
func normalizeDocument(doc *models.Document) {
	if doc.Players == nil {
		doc.Players = make(map[string]*models.PlayerRecord)
	}
	if doc.Blacklist == nil {
		doc.Blacklist = make(map[string]bool)
	}
	if doc.CooldownExempt == nil {
		doc.CooldownExempt = make(map[string]bool)
	}
	for _, p := range doc.Players {
		if p.Resources == nil {
			p.Resources = make(map[string]int)
		}
		if p.RedeemedPromos == nil {
			p.RedeemedPromos = make(map[string]bool)
		}
	}
	doc.Version = models.DocumentVersion
}

// persistLocked writes the document. Caller holds s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.doc)
	if err != nil {
		s.logger.Error("marshal state document", "error", err)
		return
	}
	if err := s.backend.Save(ctx, data); err != nil {
		s.logger.Warn("state not persisted, continuing in memory", "error", err)
	}
}

// playerLocked returns the record for identity, creating it lazily.
// Caller holds s.mu.
func (s *Store) playerLocked(identity, handle string) *models.PlayerRecord {
	p, ok := s.doc.Players[identity]
	if !ok {
		p = models.NewPlayerRecord(identity, handle)
		s.doc.Players[identity] = p
	}
	if handle != "" {
		p.Handle = handle
	}
	return p
}

// Player returns a copy of the player's record, creating and persisting
// it on first interaction.
func (s *Store) Player(ctx context.Context, identity, handle string) models.PlayerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.doc.Players[identity]
	p := s.playerLocked(identity, handle)
	if !existed {
		s.persistLocked(ctx)
	}
	return copyRecord(p)
}

func copyRecord(p *models.PlayerRecord) models.PlayerRecord {
	out := *p
	out.Resources = make(map[string]int, len(p.Resources))
	for k, v := range p.Resources {
		out.Resources[k] = v
	}
	out.RedeemedPromos = make(map[string]bool, len(p.RedeemedPromos))
	for k, v := range p.RedeemedPromos {
		out.RedeemedPromos[k] = v
	}
	return out
}

// RecordOutcome increments the player's win or loss counter, granting
// the round reward on a win. Ties are not recorded and must not reach
// here.
func (s *Store) RecordOutcome(ctx context.Context, identity, handle string, won bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(identity, handle)
	if won {
		p.Wins++
		p.Points += RoundWinPoints
	} else {
		p.Losses++
	}
	s.persistLocked(ctx)
}

// AddPoints grants points to the player.
func (s *Store) AddPoints(ctx context.Context, identity, handle string, points int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(identity, handle)
	p.Points += points
	s.persistLocked(ctx)
}

// Gather grants a random amount of one random resource kind, clamped so
// the kind never exceeds the cap. A kind already at the cap yields
// ErrInventoryFull instead of a grant. The shared gather cooldown is the
// caller's concern.
func (s *Store) Gather(ctx context.Context, identity, handle string) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(identity, handle)

	kind := ResourceKinds[s.rng.Intn(len(ResourceKinds))]
	if p.Resources[kind] >= ResourceCap {
		return kind, 0, ErrInventoryFull
	}

	amount := GatherMinAmount + s.rng.Intn(GatherMaxAmount-GatherMinAmount+1)
	if p.Resources[kind]+amount > ResourceCap {
		amount = ResourceCap - p.Resources[kind]
	}
	p.Resources[kind] += amount
	s.persistLocked(ctx)
	return kind, amount, nil
}

// Convert moves the player's entire resource inventory into points 1:1.
func (s *Store) Convert(ctx context.Context, identity, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(identity, handle)
	total := int64(p.ResourceTotal())
	if total == 0 {
		return 0, ErrNothingToConvert
	}

	p.Points += total
	p.Resources = make(map[string]int)
	s.persistLocked(ctx)
	return total, nil
}

// Donate moves the player's combined points and resources into the
// shared fund, zeroing both.
func (s *Store) Donate(ctx context.Context, identity, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(identity, handle)
	total := p.Points + int64(p.ResourceTotal())
	if total == 0 {
		return 0, ErrNothingToDonate
	}

	s.doc.SharedFund += total
	p.Points = 0
	p.Resources = make(map[string]int)
	s.persistLocked(ctx)
	return total, nil
}

// RedeemPromo validates the code against the fixed allow-list
// (case-insensitive) and grants the reward once per player per code.
func (s *Store) RedeemPromo(ctx context.Context, identity, handle, code string) (int64, error) {
	code = strings.ToLower(strings.TrimSpace(code))

	known := false
	for _, c := range PromoCodes {
		if c == code {
			known = true
			break
		}
	}
	if !known {
		return 0, ErrUnknownPromo
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerLocked(identity, handle)
	if p.RedeemedPromos[code] {
		return 0, ErrAlreadyRedeemed
	}

	p.RedeemedPromos[code] = true
	p.Points += PromoReward
	s.persistLocked(ctx)
	return PromoReward, nil
}

// Leaderboard orderings.
const (
	TopByWins   = "wins"
	TopByLosses = "losses"
	TopByPoints = "points"
)

// Top returns the top n players by the given ordering, ties broken by
// identity ordering.
func (s *Store) Top(by string, n int) []models.PlayerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]models.PlayerRecord, 0, len(s.doc.Players))
	for _, p := range s.doc.Players {
		players = append(players, copyRecord(p))
	}

	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		var av, bv int64
		switch by {
		case TopByLosses:
			av, bv = int64(a.Losses), int64(b.Losses)
		case TopByPoints:
			av, bv = a.Points, b.Points
		default:
			av, bv = int64(a.Wins), int64(b.Wins)
		}
		if av != bv {
			return av > bv
		}
		return a.Identity < b.Identity
	})

	if len(players) > n {
		players = players[:n]
	}
	return players
}

// SharedFund returns the current shared fund total.
func (s *Store) SharedFund() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.SharedFund
}

// Ban adds the identity to the blacklist. Idempotent.
func (s *Store) Ban(ctx context.Context, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Blacklist[identity] = true
	s.persistLocked(ctx)
}

// Unban removes the identity from the blacklist. Idempotent.
func (s *Store) Unban(ctx context.Context, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Blacklist, identity)
	s.persistLocked(ctx)
}

// Exempt adds the identity to the cooldown-exempt list. Idempotent.
func (s *Store) Exempt(ctx context.Context, identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.CooldownExempt[identity] = true
	s.persistLocked(ctx)
}

// IsBanned reports whether the identity is blacklisted.
func (s *Store) IsBanned(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Blacklist[identity]
}

// IsExempt reports whether the identity skips cooldown checks.
func (s *Store) IsExempt(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.CooldownExempt[identity]
}
