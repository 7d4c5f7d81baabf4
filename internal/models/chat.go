package models

import (
	"sort"
	"time"
)

// ChatMessage is one entry in the public chat stream or a private
// conversation. User is the document key of the sender; Username is
// the display name captured at send time.
type ChatMessage struct {
	ID            string    `json:"id"`
	User          string    `json:"user"`
	Username      string    `json:"username"`
	UsernameColor string    `json:"username_color"`
	Text          string    `json:"text"`
	MediaURL      string    `json:"media_url,omitempty"`
	MediaType     string    `json:"media_type,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// DMKeyFor builds the deterministic conversation key for two users:
// usernames sorted lexicographically, joined under a dm_ prefix. Both
// participants derive the same key regardless of who opens the chat.
func DMKeyFor(a, b string) string {
	pair := []string{NormalizeUsername(a), NormalizeUsername(b)}
	sort.Strings(pair)
	return "dm_" + pair[0] + "__" + pair[1]
}
