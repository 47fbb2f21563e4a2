package models

import "strings"

// PlayerRecord tracks one distinct player identity (name + channel pair).
// Records are created lazily on first interaction and never deleted.
type PlayerRecord struct {
	Identity       string          `json:"identity"`
	Handle         string          `json:"handle"`
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	Points         int64           `json:"points"`
	Resources      map[string]int  `json:"resources"`
	RedeemedPromos map[string]bool `json:"redeemed_promos"`
}

// NewPlayerRecord creates an empty record for the given identity.
func NewPlayerRecord(identity, handle string) *PlayerRecord {
	return &PlayerRecord{
		Identity:       identity,
		Handle:         handle,
		Resources:      make(map[string]int),
		RedeemedPromos: make(map[string]bool),
	}
}

// ResourceTotal returns the combined count across all resource kinds.
func (p *PlayerRecord) ResourceTotal() int {
	total := 0
	for _, n := range p.Resources {
		total += n
	}
	return total
}

// PlayerKey builds the stable identity key for a name within a channel.
func PlayerKey(name, channelID string) string {
	return strings.ToLower(name) + "#" + channelID
}

// Document is the single durable state document: every player record,
// the moderation lists and the shared donation fund. The config store is
// its exclusive writer.
type Document struct {
	Version        int                      `json:"version"`
	Players        map[string]*PlayerRecord `json:"players"`
	Blacklist      map[string]bool          `json:"blacklist"`
	CooldownExempt map[string]bool          `json:"cooldown_exempt"`
	SharedFund     int64                    `json:"shared_fund"`
}

// DocumentVersion is written into every persisted document.
const DocumentVersion = 1

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version:        DocumentVersion,
		Players:        make(map[string]*PlayerRecord),
		Blacklist:      make(map[string]bool),
		CooldownExempt: make(map[string]bool),
	}
}
