// Package roster models the live guild membership this service reads from
// the chat platform. The platform client itself is an external collaborator;
// only its contract lives here.
package roster

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/guild-birthday/internal/config"
)

// Member is one live guild member as resolved by the platform client.
type Member struct {
	UserID        uint64
	Username      string
	Discriminator string
	Nickname      string // empty when the member has no guild nickname
}

// Tag renders "username#discriminator".
func (m Member) Tag() string {
	return fmt.Sprintf(config.FormatUserTag, m.Username, m.Discriminator)
}

// DisplayName returns the nickname when set, otherwise the username.
func (m Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Username
}

// Resolver is the membership lookup contract implemented by the chat
// platform glue. Calls may block on network I/O.
type Resolver interface {
	// GuildName returns the human-readable name of the guild.
	GuildName(ctx context.Context, guildID uint64) (string, error)

	// Members returns the current member roster of the guild.
	Members(ctx context.Context, guildID uint64) ([]Member, error)
}

// FindMember resolves a query against a member list: an exact numeric ID
// match first, otherwise the first case-insensitive username match in list
// order. Among duplicate usernames the winner is whichever the platform
// listed first; no further tie-break is defined.
func FindMember(members []Member, query string) (Member, bool) {
	if id, err := strconv.ParseUint(query, 10, 64); err == nil {
		for _, m := range members {
			if m.UserID == id {
				return m, true
			}
		}
	}
	for _, m := range members {
		if strings.EqualFold(m.Username, query) {
			return m, true
		}
	}
	return Member{}, false
}

// ByID builds a lookup map over a member list.
func ByID(members []Member) map[uint64]Member {
	byID := make(map[uint64]Member, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}
	return byID
}
