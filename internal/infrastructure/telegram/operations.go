package telegram

import (
	"context"
	"fmt"

	api "github.com/OvyFlash/telegram-bot-api"
)

// Operations provides the bot API calls the handlers rely on.
type Operations struct {
	bot *api.BotAPI
}

func NewOperations(bot *api.BotAPI) *Operations {
	return &Operations{bot: bot}
}

// SendMessage sends an HTML-formatted reply to a chat.
func (o *Operations) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := api.NewMessage(chatID, text)
	msg.ParseMode = api.ModeHTML
	if _, err := o.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// GetChatMember fetches the live membership record of a user in a chat.
func (o *Operations) GetChatMember(ctx context.Context, chatID, userID int64) (*api.ChatMember, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	member, err := o.bot.GetChatMember(api.GetChatMemberConfig{
		ChatConfigWithUser: api.ChatConfigWithUser{
			UserID: userID,
			ChatConfig: api.ChatConfig{
				ChatID: chatID,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get chat member: %w", err)
	}
	return &member, nil
}

// SetCommands registers the bot command menu.
func (o *Operations) SetCommands(ctx context.Context, commands []api.BotCommand) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if _, err := o.bot.Request(api.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	return nil
}
