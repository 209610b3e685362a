package moderation

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf16"

	api "github.com/OvyFlash/telegram-bot-api"

	"github.com/wardenbot/warden/internal/bot"
)

// ResolvedTarget is the subject a command acts upon.
type ResolvedTarget struct {
	ID          int64
	DisplayName string
}

var handlePattern = regexp.MustCompile(`@\w+`)

// cleanReason strips @handle tokens from free-text arguments so the resolved
// target is not duplicated inside the stored reason.
func cleanReason(args string) string {
	return strings.TrimSpace(handlePattern.ReplaceAllString(args, ""))
}

func messageText(msg *api.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func messageEntities(msg *api.Message) []api.MessageEntity {
	if len(msg.Entities) > 0 {
		return msg.Entities
	}
	return msg.CaptionEntities
}

// lastMentionHandle extracts the handle (without '@') of the last plain
// mention entity. Entity offsets and lengths count UTF-16 code units, not
// bytes or runes, so the text is sliced in that unit.
func lastMentionHandle(msg *api.Message) string {
	text := messageText(msg)
	if text == "" {
		return ""
	}
	units := utf16.Encode([]rune(text))
	var handle string
	for _, ent := range messageEntities(msg) {
		if ent.Type != "mention" {
			continue
		}
		if ent.Offset < 0 || ent.Length <= 0 || ent.Offset+ent.Length > len(units) {
			continue
		}
		span := string(utf16.Decode(units[ent.Offset : ent.Offset+ent.Length]))
		span = strings.TrimSpace(strings.TrimPrefix(span, "@"))
		if span != "" {
			handle = span
		}
	}
	return handle
}

// resolveTarget determines the subject user: the reply author wins, then a
// resolved text mention, then the last plain @handle looked up in the
// participant directory for this chat. Nil means no target.
func (h *Warden) resolveTarget(ctx context.Context, msg *api.Message) *ResolvedTarget {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		from := msg.ReplyToMessage.From
		return &ResolvedTarget{ID: from.ID, DisplayName: displayName(from)}
	}

	for _, ent := range messageEntities(msg) {
		if ent.Type == "text_mention" && ent.User != nil {
			return &ResolvedTarget{ID: ent.User.ID, DisplayName: displayName(ent.User)}
		}
	}

	handle := lastMentionHandle(msg)
	if handle == "" {
		return nil
	}
	participant, err := h.store.FindParticipantByHandle(ctx, msg.Chat.ID, strings.ToLower(handle))
	if err != nil {
		h.getLogEntry().WithError(err).Error("participant lookup failed")
		return nil
	}
	if participant == nil {
		return nil
	}
	return &ResolvedTarget{ID: participant.UserID, DisplayName: participant.DisplayName()}
}

func displayName(user *api.User) string {
	if name := bot.GetFullName(user); name != "" {
		return name
	}
	return "user"
}
