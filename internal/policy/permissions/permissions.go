package permissions

import (
	"context"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"
)

// MemberFetcher queries the live chat membership of a user.
type MemberFetcher func(ctx context.Context, chatID, userID int64) (*api.ChatMember, error)

// Guard gates every command on the operator allow-list, and mutating
// commands additionally on live chat admin status.
type Guard struct {
	allowed map[int64]struct{}
	fetch   MemberFetcher
}

func NewGuard(allowedUserIDs []int64, fetch MemberFetcher) *Guard {
	allowed := make(map[int64]struct{}, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = struct{}{}
	}
	return &Guard{allowed: allowed, fetch: fetch}
}

func (g *Guard) IsAllowed(userID int64) bool {
	if userID == 0 {
		return false
	}
	_, ok := g.allowed[userID]
	return ok
}

// IsAdmin reports whether the user is an administrator or the creator of the
// chat. A failed membership query degrades to false rather than an error.
func (g *Guard) IsAdmin(ctx context.Context, chatID, userID int64) bool {
	member, err := g.fetch(ctx, chatID, userID)
	if err != nil {
		log.WithField("context", "permissions").WithError(err).Debug("membership lookup failed, treating as non-admin")
		return false
	}
	return isPrivileged(member)
}

func isPrivileged(member *api.ChatMember) bool {
	if member == nil {
		return false
	}
	return member.IsCreator() || member.IsAdministrator()
}
