package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iamwavecut/tool"

	"github.com/wardenbot/warden/internal/db"
)

func (c *sqliteClient) UpsertParticipant(ctx context.Context, participant *db.Participant) error {
	if participant == nil {
		return nil
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	participant.UsernameLower = sql.NullString{}
	if participant.Username.Valid && participant.Username.String != "" {
		participant.UsernameLower = sql.NullString{String: strings.ToLower(participant.Username.String), Valid: true}
	}
	if participant.UpdatedAt == "" {
		participant.UpdatedAt = db.FormatTime(time.Now())
	}

	query := `
		INSERT INTO participants (chat_id, user_id, username, username_lower, first_name, last_name, updated_at)
		VALUES (:chat_id, :user_id, :username, :username_lower, :first_name, :last_name, :updated_at)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET
			username = excluded.username,
			username_lower = excluded.username_lower,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = excluded.updated_at
	`
	return tool.Err(c.db.NamedExecContext(ctx, query, participant))
}

func (c *sqliteClient) FindParticipantByHandle(ctx context.Context, chatID int64, handleLower string) (*db.Participant, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var participant db.Participant
	err := c.db.GetContext(ctx, &participant, `
		SELECT chat_id, user_id, username, username_lower, first_name, last_name, updated_at
		FROM participants
		WHERE chat_id = ? AND username_lower = ?
	`, chatID, handleLower)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &participant, nil
}
