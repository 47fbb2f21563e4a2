package models

// Event is one already-parsed inbound chat message. The channel adapter
// fills Identity using PlayerKey so the core never sees raw platform IDs.
type Event struct {
	Identity  string
	Handle    string
	ChannelID string
	Text      string
}
